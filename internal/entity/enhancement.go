package entity

import "errors"

var (
	ErrNoImageData      = errors.New("no image data received")
	ErrUndecodableImage = errors.New("image payload is not decodable")
	ErrEngineUnavailable = errors.New("enhancement engine unavailable")
)

const (
	ModeGFPGAN      = "gfpgan"
	ModeHybrid      = "hybrid"
	ModeTraditional = "traditional"
	ModeFast        = "fast"
)

type EnhanceParams struct {
	Mode                  string  `json:"mode"`
	ScaleFactor           float64 `json:"scaleFactor"`
	SharpenStrength       float64 `json:"sharpenStrength"`
	NoiseReduction        float64 `json:"noiseReduction"`
	Contrast              float64 `json:"contrast"`
	BlendWeight           float64 `json:"blendWeight"`
	EnableFaceEnhancement bool    `json:"enableFaceEnhancement"`
}

func DefaultEnhanceParams() EnhanceParams {
	return EnhanceParams{
		Mode:                  ModeGFPGAN,
		ScaleFactor:           2.0,
		SharpenStrength:       1.2,
		NoiseReduction:        6.0,
		Contrast:              1.15,
		BlendWeight:           0.8,
		EnableFaceEnhancement: true,
	}
}

func ValidMode(mode string) bool {
	switch mode {
	case ModeGFPGAN, ModeHybrid, ModeTraditional, ModeFast:
		return true
	}
	return false
}

type EnhanceMetrics struct {
	ResolutionBefore string  `json:"resolution_before,omitempty"`
	ResolutionAfter  string  `json:"resolution_after,omitempty"`
	ScaleFactor      float64 `json:"scale_factor"`
	Quality          string  `json:"quality,omitempty"`
	PSNR             string  `json:"psnr,omitempty"`
	SSIM             string  `json:"ssim,omitempty"`
	Sharpness        string  `json:"sharpness,omitempty"`
}

type ProcessingDetails struct {
	FacesDetected     int      `json:"faces_detected"`
	AlgorithmsApplied []string `json:"algorithms_applied"`
	Mode              string   `json:"mode"`
}

type EnhanceResult struct {
	Success        bool               `json:"success"`
	EnhancedImage  ImagePayload       `json:"enhancedImage,omitempty"`
	Method         string             `json:"method,omitempty"`
	Metrics        *EnhanceMetrics    `json:"metrics,omitempty"`
	Details        *ProcessingDetails `json:"processing_details,omitempty"`
	ProcessingTime float64            `json:"processingTime"`
	Error          string             `json:"error,omitempty"`
}

type StatusFeatures struct {
	AIEnhancement          bool `json:"ai_enhancement"`
	TraditionalEnhancement bool `json:"traditional_enhancement"`
	BatchProcessing        bool `json:"batch_processing"`
	RealEnhancement        bool `json:"real_enhancement"`
	FaceDetection          bool `json:"face_detection"`
}

type StatusResponse struct {
	Available       bool           `json:"available"`
	BackendWorking  bool           `json:"backend_working"`
	Models          []string       `json:"models"`
	Mode            string         `json:"mode"`
	Features        StatusFeatures `json:"features"`
	EnhancementNote string         `json:"enhancement_note"`
}
