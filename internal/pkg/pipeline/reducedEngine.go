package pipeline

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"face-enhancer/config"
	"face-enhancer/internal/entity"
)

const stageDetail = "Detail Filter"

const detailSigma = 2.0

// аналог PIL DETAIL: нормируется на сумму ядра
var detailKernel = [9]float64{
	0, -1, 0,
	-1, 10, -1,
	0, -1, 0,
}

// ReducedEngine is the secondary tier: generic image editing without an
// OpenCV runtime. No denoising, no face work, a fixed detail pass instead
// of the tuned kernels.
type ReducedEngine struct {
	quality     int
	qualityFast int
}

func NewReducedEngine(cfg config.EnhancerConfig) *ReducedEngine {
	return &ReducedEngine{
		quality:     cfg.ReducedQuality,
		qualityFast: cfg.ReducedQualityFast,
	}
}

func (e *ReducedEngine) Name() string { return "imaging" }

func (e *ReducedEngine) Enhance(payload entity.ImagePayload, params entity.EnhanceParams) (*entity.EnhanceResult, error) {
	raw, err := payload.Decode()
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	fast := params.Mode == entity.ModeFast
	applied := make([]string, 0, 4)
	before := img.Bounds()

	var out image.Image = img

	if params.ScaleFactor > 1.0 {
		filter := imaging.Lanczos
		if fast {
			filter = imaging.Linear
		}
		width := int(float64(before.Dx()) * params.ScaleFactor)
		height := int(float64(before.Dy()) * params.ScaleFactor)
		out = imaging.Resize(out, width, height, filter)
		applied = append(applied, stageUpscale)
	}

	if params.Contrast > 0 {
		out = imaging.AdjustContrast(out, (params.Contrast-1)*100)
		applied = append(applied, stageContrast)
	}

	if params.SharpenStrength > 0 {
		out = imaging.Sharpen(out, params.SharpenStrength)
		applied = append(applied, stageSharpen)
	}

	if !fast {
		out = imaging.Sharpen(out, detailSigma)
		out = imaging.Convolve3x3(out, detailKernel, &imaging.ConvolveOptions{Normalize: true})
		applied = append(applied, stageDetail)
	}

	quality := e.quality
	if fast {
		quality = e.qualityFast
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	after := out.Bounds()
	method, label := "Imaging Enhanced Processing", "Imaging Enhanced"
	if fast {
		method, label = "Fast Imaging Processing", "Fast Enhanced"
	}

	return &entity.EnhanceResult{
		Success:       true,
		EnhancedImage: entity.NewJPEGPayload(buf.Bytes()),
		Method:        method,
		Metrics: &entity.EnhanceMetrics{
			ResolutionBefore: fmt.Sprintf("%dx%d", before.Dx(), before.Dy()),
			ResolutionAfter:  fmt.Sprintf("%dx%d", after.Dx(), after.Dy()),
			ScaleFactor:      measuredScale(after.Dx(), before.Dx()),
			Quality:          label,
		},
		Details: &entity.ProcessingDetails{
			AlgorithmsApplied: applied,
			Mode:              params.Mode,
		},
	}, nil
}
