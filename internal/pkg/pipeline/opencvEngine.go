package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"face-enhancer/config"
	"face-enhancer/internal/entity"
	"face-enhancer/internal/pkg/vision"
)

// OpenCVEngine is the primary tier: the full stage sequence over gocv
// primitives, parameterized by the mode profile.
type OpenCVEngine struct {
	faces       *FaceEnhancer
	quality     int
	qualityFast int
}

func NewOpenCVEngine(cascades *vision.Cascades, cfg config.EnhancerConfig) *OpenCVEngine {
	e := &OpenCVEngine{
		quality:     cfg.JPEGQuality,
		qualityFast: cfg.JPEGQualityFast,
	}
	if cascades != nil {
		e.faces = NewFaceEnhancer(cascades)
	}
	return e
}

func (e *OpenCVEngine) Name() string { return "opencv" }

func (e *OpenCVEngine) Enhance(payload entity.ImagePayload, params entity.EnhanceParams) (*entity.EnhanceResult, error) {
	raw, err := payload.Decode()
	if err != nil {
		return nil, err
	}

	frame, err := vision.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	prof := profileFor(params.Mode)
	r := &run{frame: frame, mode: params.Mode, applied: make([]string, 0, 8)}

	originalWidth, originalHeight := frame.Cols(), frame.Rows()

	// Апскейл — единственный этап, провал которого роняет весь ярус.
	if params.ScaleFactor > 1.0 {
		width := int(float64(originalWidth) * params.ScaleFactor)
		height := int(float64(originalHeight) * params.ScaleFactor)
		next, ok := guardedStage(r.frame, func(m gocv.Mat) gocv.Mat {
			return vision.Resize(m, width, height, prof.interp)
		})
		if !ok {
			r.frame.Close()
			return nil, fmt.Errorf("upscale to %dx%d failed", width, height)
		}
		r.replace(next, stageUpscale)
	}

	if prof.denoise && params.NoiseReduction > 0 {
		r.step(stageDenoise, func(m gocv.Mat) gocv.Mat {
			return vision.Bilateral(m, denoiseDiameter, params.NoiseReduction*denoiseSigmaGain)
		})
	}

	if params.SharpenStrength > 0 {
		if prof.twoStepSharpen {
			// unsharp сам по себе звенит на контрастных границах,
			// ядро возвращает мелкую фактуру
			r.step(stageSharpen, func(m gocv.Mat) gocv.Mat {
				unsharp := vision.Unsharp(m, unsharpSigma, params.SharpenStrength)
				defer unsharp.Close()
				edges := vision.Convolve3x3(unsharp, edgeKernel, edgeKernelGain)
				defer edges.Close()
				return vision.Blend(unsharp, unsharpBlend, edges, 1-unsharpBlend)
			})
		} else {
			r.step(stageSharpen, func(m gocv.Mat) gocv.Mat {
				return vision.Convolve3x3(m, crispKernel, crispKernelGain)
			})
		}
	}

	if params.Contrast > 0 {
		r.step(stageContrast, func(m gocv.Mat) gocv.Mat {
			return vision.ScaleBrightness(m, params.Contrast, prof.contrastOffset)
		})
	}

	if prof.equalize {
		r.step(stageEqualize, func(m gocv.Mat) gocv.Mat {
			return vision.EqualizeLuma(m, claheClip, claheTiles)
		})
	}

	faces := 0
	if prof.faceEligible && params.EnableFaceEnhancement && e.faces != nil {
		next, count := e.faces.Enhance(r.frame)
		r.frame.Close()
		r.frame = next
		faces = count
		if count > 0 {
			r.applied = append(r.applied, stageFace)
		}
	}

	if prof.hsvColor {
		r.step(stageColor, func(m gocv.Mat) gocv.Mat {
			return vision.BoostColor(m, satGain, valGain)
		})
	} else {
		r.step(stageColor, func(m gocv.Mat) gocv.Mat {
			return vision.ScaleBrightness(m, 1.0, prof.brightnessLift)
		})
	}

	if prof.polish {
		r.step(stagePolish, func(m gocv.Mat) gocv.Mat {
			soft := vision.Smooth(m, polishKernel, polishSigma)
			defer soft.Close()
			return vision.Blend(m, 1-polishWeight, soft, polishWeight)
		})
	}

	quality := e.quality
	if prof.fastJPEG {
		quality = e.qualityFast
	}

	enhancedWidth, enhancedHeight := r.frame.Cols(), r.frame.Rows()
	encoded, err := vision.EncodeJPEG(r.frame, quality)
	r.frame.Close()
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	return &entity.EnhanceResult{
		Success:       true,
		EnhancedImage: entity.NewJPEGPayload(encoded),
		Method:        fmt.Sprintf("OpenCV + %s Enhancement", strings.ToUpper(params.Mode)),
		Metrics: &entity.EnhanceMetrics{
			ResolutionBefore: fmt.Sprintf("%dx%d", originalWidth, originalHeight),
			ResolutionAfter:  fmt.Sprintf("%dx%d", enhancedWidth, enhancedHeight),
			ScaleFactor:      measuredScale(enhancedWidth, originalWidth),
			Quality:          prof.qualityLabel,
		},
		Details: &entity.ProcessingDetails{
			FacesDetected:     faces,
			AlgorithmsApplied: r.applied,
			Mode:              params.Mode,
		},
	}, nil
}

// run carries one request's frame through the stage sequence. Each stage
// consumes the current frame and hands back a new one; the old frame is
// closed only after a successful handoff.
type run struct {
	frame   gocv.Mat
	mode    string
	applied []string
}

// step replaces the frame when fn succeeds and keeps it when fn panics, so
// a failed stage degrades to a skip instead of failing the request.
func (r *run) step(name string, fn func(gocv.Mat) gocv.Mat) {
	next, ok := guardedStage(r.frame, fn)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"stage": name,
			"mode":  r.mode,
		}).Warn("stage failed, skipping")
		return
	}
	r.replace(next, name)
}

func (r *run) replace(next gocv.Mat, name string) {
	r.frame.Close()
	r.frame = next
	r.applied = append(r.applied, name)
}

func guardedStage(src gocv.Mat, fn func(gocv.Mat) gocv.Mat) (out gocv.Mat, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return fn(src), true
}

// measuredScale reports the realized upscale ratio from the actual output
// width, not the requested factor.
func measuredScale(after, before int) float64 {
	if before == 0 {
		return 1.0
	}
	return math.Round(float64(after)/float64(before)*10) / 10
}
