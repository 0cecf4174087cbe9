package pipeline

import (
	"image"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"face-enhancer/internal/pkg/vision"
)

// Detection and compositing tuning, preserved from the shipped enhancer.
const (
	facePadding   = 10
	faceScale     = 1.2
	faceNeighbors = 3
	faceMinSize   = 50

	eyeScale     = 1.3
	eyeNeighbors = 2
	eyeMinSize   = 20
	eyeKeep      = 0.6

	mouthStartRatio = 0.6
	mouthSigmaS     = 10
	mouthSigmaR     = 0.15

	skinDiameter = 9
	skinSigma    = 40
	maskFeather  = 11
)

// FaceEnhancer smooths detected face regions, sharpens eye sub-regions,
// boosts mouth detail and composites everything back through a soft
// elliptical mask so the region edge leaves no visible seam.
type FaceEnhancer struct {
	cascades *vision.Cascades
}

func NewFaceEnhancer(cascades *vision.Cascades) *FaceEnhancer {
	return &FaceEnhancer{cascades: cascades}
}

// Enhance returns a new frame and the number of faces processed. The input
// is left open for the caller. Any failure returns an untouched copy and a
// zero count; face work never fails the surrounding pipeline.
func (f *FaceEnhancer) Enhance(frame gocv.Mat) (out gocv.Mat, count int) {
	enhanced := frame.Clone()

	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("stage", stageFace).Warnf("face enhancement recovered: %v", r)
			enhanced.Close()
			out = frame.Clone()
			count = 0
		}
	}()

	gray := vision.Grayscale(frame)
	defer gray.Close()

	faces := f.cascades.DetectFaces(gray, faceScale, faceNeighbors, faceMinSize)
	for _, face := range faces {
		f.enhanceRegion(enhanced, face)
	}

	return enhanced, len(faces)
}

func (f *FaceEnhancer) enhanceRegion(dst gocv.Mat, face image.Rectangle) {
	padded := paddedRect(face, dst.Cols(), dst.Rows(), facePadding)

	// регион смотрит в dst, CopyTo в конце пишет сквозь него
	region := dst.Region(padded)
	defer region.Close()

	original := region.Clone()
	defer original.Close()

	smoothed := vision.Bilateral(region, skinDiameter, skinSigma)
	defer smoothed.Close()

	f.enhanceEyes(region, smoothed)
	enhanceMouth(smoothed)

	mask := vision.EllipseMask(smoothed.Rows(), smoothed.Cols(), maskFeather)
	defer mask.Close()

	blended := vision.MaskedBlend(original, smoothed, mask)
	defer blended.Close()

	blended.CopyTo(&region)
}

// enhanceEyes detects eyes on the pre-smoothing region and sharpens the
// matching rectangles of the smoothed copy in place, blended lightly to
// avoid a haloed look.
func (f *FaceEnhancer) enhanceEyes(region, smoothed gocv.Mat) {
	gray := vision.Grayscale(region)
	defer gray.Close()

	for _, eye := range f.cascades.DetectEyes(gray, eyeScale, eyeNeighbors, eyeMinSize) {
		eyeRegion := smoothed.Region(eye)
		sharpened := vision.Convolve3x3(eyeRegion, crispKernel, 1)
		blended := vision.Blend(eyeRegion, eyeKeep, sharpened, 1-eyeKeep)
		blended.CopyTo(&eyeRegion)
		blended.Close()
		sharpened.Close()
		eyeRegion.Close()
	}
}

// enhanceMouth runs detail recovery over the lower part of the region,
// where the mouth sits after padding.
func enhanceMouth(smoothed gocv.Mat) {
	top := int(float64(smoothed.Rows()) * mouthStartRatio)
	if top >= smoothed.Rows() {
		return
	}

	mouth := smoothed.Region(image.Rect(0, top, smoothed.Cols(), smoothed.Rows()))
	defer mouth.Close()

	detailed := vision.DetailBoost(mouth, mouthSigmaS, mouthSigmaR)
	defer detailed.Close()
	detailed.CopyTo(&mouth)
}

func paddedRect(face image.Rectangle, cols, rows, pad int) image.Rectangle {
	return image.Rect(
		max(0, face.Min.X-pad),
		max(0, face.Min.Y-pad),
		min(cols, face.Max.X+pad),
		min(rows, face.Max.Y+pad),
	)
}
