package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"face-enhancer/config"
	"face-enhancer/internal/entity"
	"face-enhancer/internal/pkg/vision"
)

// requirePixelRuntime пропускает тест без рабочего OpenCV
func requirePixelRuntime(t *testing.T) vision.Capability {
	t.Helper()

	capability, cascades := vision.Probe(vision.EngineAuto, "")
	if cascades != nil {
		t.Cleanup(cascades.Close)
	}
	if !capability.PixelOps {
		t.Skip("opencv runtime unavailable:", capability.Note)
	}
	return capability
}

func opencvTestEngine() *OpenCVEngine {
	return NewOpenCVEngine(nil, config.EnhancerConfig{JPEGQuality: 95, JPEGQualityFast: 90})
}

// TestOpenCVFastMode проверяет быстрый профиль на одноцветном изображении
func TestOpenCVFastMode(t *testing.T) {
	requirePixelRuntime(t)

	params := entity.EnhanceParams{
		Mode:            entity.ModeFast,
		ScaleFactor:     2.0,
		SharpenStrength: 1.0,
		Contrast:        1.1,
	}

	result, err := opencvTestEngine().Enhance(matJPEG(t, 100, 100), params)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "OpenCV + FAST Enhancement", result.Method)
	assert.Equal(t, "100x100", result.Metrics.ResolutionBefore)
	assert.Equal(t, "200x200", result.Metrics.ResolutionAfter)
	assert.Equal(t, 2.0, result.Metrics.ScaleFactor)
	assert.Equal(t, "Fast Enhanced", result.Metrics.Quality)

	// быстрый профиль не трогает лица и не выравнивает гистограмму
	assert.NotContains(t, result.Details.AlgorithmsApplied, stageFace)
	assert.NotContains(t, result.Details.AlgorithmsApplied, stageEqualize)
	assert.NotContains(t, result.Details.AlgorithmsApplied, stageDenoise)
	assert.Contains(t, result.Details.AlgorithmsApplied, stageUpscale)
	assert.Contains(t, result.Details.AlgorithmsApplied, stageSharpen)
	assert.Equal(t, entity.ModeFast, result.Details.Mode)
}

// TestOpenCVFullProfile проверяет полный набор этапов
func TestOpenCVFullProfile(t *testing.T) {
	requirePixelRuntime(t)

	params := entity.DefaultEnhanceParams()
	params.ScaleFactor = 1.5

	result, err := opencvTestEngine().Enhance(matJPEG(t, 64, 64), params)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "OpenCV + GFPGAN Enhancement", result.Method)
	assert.Equal(t, "96x96", result.Metrics.ResolutionAfter)
	assert.Equal(t, 1.5, result.Metrics.ScaleFactor)
	assert.Equal(t, "Significantly Enhanced", result.Metrics.Quality)

	for _, stage := range []string{stageUpscale, stageDenoise, stageSharpen, stageContrast, stageEqualize, stageColor, stagePolish} {
		assert.Contains(t, result.Details.AlgorithmsApplied, stage)
	}
	// каскады не переданы, лиц быть не может
	assert.Zero(t, result.Details.FacesDetected)
	assert.NotContains(t, result.Details.AlgorithmsApplied, stageFace)

	raw, err := result.EnhancedImage.Decode()
	require.NoError(t, err)
	decoded, err := vision.Decode(raw)
	require.NoError(t, err)
	defer decoded.Close()
	assert.Equal(t, 96, decoded.Cols())
	assert.Equal(t, 96, decoded.Rows())
}

// TestOpenCVStageGates проверяет пропуск этапов при нулевых параметрах
func TestOpenCVStageGates(t *testing.T) {
	requirePixelRuntime(t)

	params := entity.EnhanceParams{
		Mode:        entity.ModeTraditional,
		ScaleFactor: 1.0,
		Contrast:    1.15,
	}

	result, err := opencvTestEngine().Enhance(matJPEG(t, 40, 40), params)
	require.NoError(t, err)

	assert.Equal(t, "40x40", result.Metrics.ResolutionAfter)
	assert.Equal(t, 1.0, result.Metrics.ScaleFactor)
	assert.NotContains(t, result.Details.AlgorithmsApplied, stageUpscale)
	assert.NotContains(t, result.Details.AlgorithmsApplied, stageDenoise)
	assert.NotContains(t, result.Details.AlgorithmsApplied, stageSharpen)
	assert.Contains(t, result.Details.AlgorithmsApplied, stageContrast)
}

// TestOpenCVUndecodable проверяет отказ яруса на мусорных байтах
func TestOpenCVUndecodable(t *testing.T) {
	requirePixelRuntime(t)

	result, err := opencvTestEngine().Enhance(entity.NewJPEGPayload([]byte("garbage")), entity.DefaultEnhanceParams())

	require.Error(t, err)
	assert.Nil(t, result)
}

// matJPEG собирает одноцветный JPEG через gocv
func matJPEG(t *testing.T, width, height int) entity.ImagePayload {
	t.Helper()

	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 120, 180, 0), height, width, gocv.MatTypeCV8UC3)
	defer m.Close()

	data, err := vision.EncodeJPEG(m, 95)
	require.NoError(t, err)
	return entity.NewJPEGPayload(data)
}
