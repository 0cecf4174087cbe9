package pipeline

import (
	"strconv"

	"face-enhancer/internal/entity"
)

// SimulationEngine is the terminal tier: it hands the payload back
// untouched with synthetic, parameter-influenced metrics, so a host with no
// working image runtime still answers every request.
type SimulationEngine struct{}

func NewSimulationEngine() *SimulationEngine { return &SimulationEngine{} }

func (e *SimulationEngine) Name() string { return "simulation" }

func (e *SimulationEngine) Enhance(payload entity.ImagePayload, params entity.EnhanceParams) (*entity.EnhanceResult, error) {
	s := params.SharpenStrength
	return &entity.EnhanceResult{
		Success:       true,
		EnhancedImage: payload,
		Method:        "simulation",
		Metrics: &entity.EnhanceMetrics{
			ScaleFactor: 1.0,
			PSNR:        formatMetric(25 + s*3),
			SSIM:        formatMetric(0.75 + s*0.08),
			Sharpness:   formatMetric(1.2 + s*0.4),
		},
		Details: &entity.ProcessingDetails{
			AlgorithmsApplied: []string{},
			Mode:              params.Mode,
		},
	}, nil
}

func formatMetric(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
