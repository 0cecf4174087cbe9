// Thin adapters over the OpenCV primitives the enhancement pipeline is built
// from. Every adapter returns a freshly allocated Mat and leaves closing the
// input to the caller, so a pipeline run stays a strict linear chain of
// ownership transfers.
package vision

import (
	"errors"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var ErrNotDecodable = errors.New("image buffer is not decodable")

func Decode(data []byte) (gocv.Mat, error) {
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), err
	}
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), ErrNotDecodable
	}
	return img, nil
}

func EncodeJPEG(img gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	// the buffer views C memory, copy before it is released
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}

func Resize(src gocv.Mat, width, height int, interp gocv.InterpolationFlags) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Resize(src, &dst, image.Pt(width, height), 0, 0, interp)
	return dst
}

func Bilateral(src gocv.Mat, diameter int, sigma float64) gocv.Mat {
	dst := gocv.NewMat()
	gocv.BilateralFilter(src, &dst, diameter, sigma, sigma)
	return dst
}

// Unsharp sharpens by subtracting a Gaussian blur: src*(1+amount) - blur*amount.
func Unsharp(src gocv.Mat, sigma, amount float64) gocv.Mat {
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, image.Pt(0, 0), sigma, sigma, gocv.BorderDefault)

	dst := gocv.NewMat()
	gocv.AddWeighted(src, 1.0+amount, blurred, -amount, 0, &dst)
	return dst
}

func Convolve3x3(src gocv.Mat, kernel [9]float32, scale float32) gocv.Mat {
	k := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	defer k.Close()
	for i, v := range kernel {
		k.SetFloatAt(i/3, i%3, v*scale)
	}

	dst := gocv.NewMat()
	gocv.Filter2D(src, &dst, gocv.MatType(-1), k, image.Pt(-1, -1), 0, gocv.BorderDefault)
	return dst
}

func Blend(a gocv.Mat, alpha float64, b gocv.Mat, beta float64) gocv.Mat {
	dst := gocv.NewMat()
	gocv.AddWeighted(a, alpha, b, beta, 0, &dst)
	return dst
}

func ScaleBrightness(src gocv.Mat, gain, offset float64) gocv.Mat {
	dst := gocv.NewMat()
	src.ConvertToWithParams(&dst, gocv.MatTypeCV8U, float32(gain), float32(offset))
	return dst
}

// EqualizeLuma runs CLAHE on the L channel only, leaving chroma untouched to
// avoid color casts.
func EqualizeLuma(src gocv.Mat, clipLimit float64, tiles int) gocv.Mat {
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(src, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	defer closeAll(channels)

	clahe := gocv.NewCLAHEWithParams(clipLimit, image.Pt(tiles, tiles))
	defer clahe.Close()
	clahe.Apply(channels[0], &channels[0])

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge(channels, &merged)

	dst := gocv.NewMat()
	gocv.CvtColor(merged, &dst, gocv.ColorLabToBGR)
	return dst
}

func BoostColor(src gocv.Mat, satGain, valGain float32) gocv.Mat {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV)

	channels := gocv.Split(hsv)
	defer closeAll(channels)
	channels[1].MultiplyFloat(satGain)
	channels[2].MultiplyFloat(valGain)

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge(channels, &merged)

	dst := gocv.NewMat()
	gocv.CvtColor(merged, &dst, gocv.ColorHSVToBGR)
	return dst
}

func Smooth(src gocv.Mat, ksize int, sigma float64) gocv.Mat {
	dst := gocv.NewMat()
	gocv.GaussianBlur(src, &dst, image.Pt(ksize, ksize), sigma, sigma, gocv.BorderDefault)
	return dst
}

func DetailBoost(src gocv.Mat, sigmaS, sigmaR float32) gocv.Mat {
	dst := gocv.NewMat()
	gocv.DetailEnhance(src, &dst, sigmaS, sigmaR)
	return dst
}

func Grayscale(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	return dst
}

// EllipseMask builds a feathered elliptical alpha mask sized for a face
// region: axes of a third of the width and 0.4 of the height, softened by a
// Gaussian so the composite has no visible seam.
func EllipseMask(rows, cols, feather int) gocv.Mat {
	mask := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	center := image.Pt(cols/2, rows/2)
	axes := image.Pt(cols/3, int(float64(rows)/2.5))
	gocv.Ellipse(&mask, center, axes, 0, 0, 360, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	if feather > 1 {
		blurred := gocv.NewMat()
		gocv.GaussianBlur(mask, &blurred, image.Pt(feather, feather), 0, 0, gocv.BorderDefault)
		mask.Close()
		return blurred
	}
	return mask
}

// MaskedBlend composites overlay onto base per channel through a float alpha
// mask: base + mask*(overlay-base).
func MaskedBlend(base, overlay, mask gocv.Mat) gocv.Mat {
	maskF := gocv.NewMat()
	defer maskF.Close()
	mask.ConvertToWithParams(&maskF, gocv.MatTypeCV32F, 1.0/255.0, 0)

	baseCh := gocv.Split(base)
	defer closeAll(baseCh)
	overlayCh := gocv.Split(overlay)
	defer closeAll(overlayCh)

	blended := make([]gocv.Mat, len(baseCh))
	for i := range baseCh {
		baseF := gocv.NewMat()
		overlayF := gocv.NewMat()
		baseCh[i].ConvertTo(&baseF, gocv.MatTypeCV32F)
		overlayCh[i].ConvertTo(&overlayF, gocv.MatTypeCV32F)

		diff := gocv.NewMat()
		gocv.Subtract(overlayF, baseF, &diff)
		weighted := gocv.NewMat()
		gocv.Multiply(diff, maskF, &weighted)
		sum := gocv.NewMat()
		gocv.Add(baseF, weighted, &sum)

		out := gocv.NewMat()
		sum.ConvertTo(&out, gocv.MatTypeCV8U)
		blended[i] = out

		baseF.Close()
		overlayF.Close()
		diff.Close()
		weighted.Close()
		sum.Close()
	}

	dst := gocv.NewMat()
	gocv.Merge(blended, &dst)
	closeAll(blended)
	return dst
}

func closeAll(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
