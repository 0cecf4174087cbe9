// Package pipeline implements the staged image enhancement engines and the
// fallback chain that degrades between them. The primary engine runs the
// full OpenCV stage sequence, the reduced engine covers hosts without a
// working OpenCV runtime, and the simulation engine is the terminal tier
// that never fails, so every request produces a well-formed result.
package pipeline

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"face-enhancer/config"
	"face-enhancer/internal/entity"
	"face-enhancer/internal/pkg/vision"
)

// Engine is one tier of the enhancement chain.
type Engine interface {
	Name() string
	Enhance(payload entity.ImagePayload, params entity.EnhanceParams) (*entity.EnhanceResult, error)
}

type FallbackChain struct {
	engines []Engine
}

// NewChain assembles the tier list once from the probed capability. Tiers
// are fixed for the process lifetime; requests never re-probe.
func NewChain(capability vision.Capability, cascades *vision.Cascades, cfg config.EnhancerConfig) *FallbackChain {
	engines := make([]Engine, 0, 3)
	if capability.PixelOps {
		engines = append(engines, NewOpenCVEngine(cascades, cfg))
	}
	if capability.ImageOps {
		engines = append(engines, NewReducedEngine(cfg))
	}
	engines = append(engines, NewSimulationEngine())

	return &FallbackChain{engines: engines}
}

// Enhance runs the tiers in order until one produces a result. An engine
// error or panic falls through to the next tier; the simulation tier cannot
// fail, so the caller always receives a result.
func (c *FallbackChain) Enhance(payload entity.ImagePayload, params entity.EnhanceParams) *entity.EnhanceResult {
	for _, engine := range c.engines {
		result, err := runTier(engine, payload, params)
		if err == nil {
			return result
		}
		logrus.WithFields(logrus.Fields{
			"tier": engine.Name(),
			"mode": params.Mode,
		}).Warnf("enhancement tier failed, falling back: %s", err.Error())
	}

	return &entity.EnhanceResult{Success: false, Error: entity.ErrEngineUnavailable.Error()}
}

func runTier(engine Engine, payload entity.ImagePayload, params entity.EnhanceParams) (result *entity.EnhanceResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tier %s panicked: %v", engine.Name(), r)
		}
	}()
	return engine.Enhance(payload, params)
}
