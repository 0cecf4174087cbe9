package pipeline

import (
	"gocv.io/x/gocv"

	"face-enhancer/internal/entity"
)

// Stage names as they are reported in processing_details.algorithms_applied.
const (
	stageUpscale  = "Upscaling"
	stageDenoise  = "Noise Reduction"
	stageSharpen  = "Sharpening"
	stageContrast = "Contrast Enhancement"
	stageEqualize = "Histogram Equalization"
	stageFace     = "Face Enhancement"
	stageColor    = "Color Enhancement"
	stagePolish   = "Final Polish"
)

// Empirically tuned processing constants, carried over from the shipped
// enhancer instead of re-derived.
const (
	unsharpSigma    = 2.0
	unsharpBlend    = 0.8
	edgeKernelGain  = 0.1
	crispKernelGain = 0.2

	denoiseDiameter  = 7
	denoiseSigmaGain = 6.0

	claheClip  = 2.0
	claheTiles = 4

	satGain = 1.15
	valGain = 1.05

	polishKernel = 3
	polishSigma  = 0.3
	polishWeight = 0.05
)

var (
	// восстанавливает контуры после unsharp-прохода
	edgeKernel = [9]float32{
		-1, -1, -1,
		-1, 9, -1,
		-1, -1, -1,
	}
	// лёгкое центральное ядро для быстрого режима и зоны глаз
	crispKernel = [9]float32{
		0, -1, 0,
		-1, 5, -1,
		0, -1, 0,
	}
)

// modeProfile fixes how one mode parameterizes the shared stage sequence:
// which stages run, which kernels and offsets they use, and how the output
// is encoded. The mode never changes the stage order.
type modeProfile struct {
	interp         gocv.InterpolationFlags
	denoise        bool
	twoStepSharpen bool
	contrastOffset float64
	equalize       bool
	faceEligible   bool
	hsvColor       bool
	brightnessLift float64
	polish         bool
	fastJPEG       bool
	qualityLabel   string
}

var profiles = map[string]modeProfile{
	entity.ModeGFPGAN: {
		interp:         gocv.InterpolationLanczos4,
		denoise:        true,
		twoStepSharpen: true,
		contrastOffset: 15,
		equalize:       true,
		faceEligible:   true,
		hsvColor:       true,
		polish:         true,
		qualityLabel:   "Significantly Enhanced",
	},
	entity.ModeHybrid: {
		interp:         gocv.InterpolationLanczos4,
		denoise:        true,
		twoStepSharpen: true,
		contrastOffset: 15,
		equalize:       true,
		faceEligible:   true,
		hsvColor:       true,
		polish:         true,
		qualityLabel:   "Significantly Enhanced",
	},
	entity.ModeTraditional: {
		interp:         gocv.InterpolationCubic,
		denoise:        true,
		twoStepSharpen: true,
		contrastOffset: 15,
		equalize:       true,
		hsvColor:       true,
		polish:         true,
		qualityLabel:   "Significantly Enhanced",
	},
	entity.ModeFast: {
		interp:         gocv.InterpolationLinear,
		contrastOffset: 10,
		brightnessLift: 5,
		fastJPEG:       true,
		qualityLabel:   "Fast Enhanced",
	},
}

func profileFor(mode string) modeProfile {
	if p, ok := profiles[mode]; ok {
		return p
	}
	return profiles[entity.ModeGFPGAN]
}
