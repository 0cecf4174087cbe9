package ingest

import (
	"strconv"
	"strings"

	"face-enhancer/internal/entity"
)

// Normalize maps a decoded key/value record onto EnhanceParams. Every
// unknown or malformed value resets only its own key to the default; a bad
// record never aborts a request.
func Normalize(values map[string]any) entity.EnhanceParams {
	params := entity.DefaultEnhanceParams()
	if len(values) == 0 {
		return params
	}

	if v, ok := stringValue(values["mode"]); ok && entity.ValidMode(v) {
		params.Mode = v
	}
	if v, ok := floatValue(values["scaleFactor"]); ok && v >= 1.0 {
		params.ScaleFactor = v
	}
	if v, ok := floatValue(values["sharpenStrength"]); ok && v >= 0 {
		params.SharpenStrength = v
	}
	if v, ok := floatValue(values["noiseReduction"]); ok && v >= 0 {
		params.NoiseReduction = v
	}
	if v, ok := floatValue(values["contrast"]); ok && v > 0 {
		params.Contrast = v
	}
	if v, ok := floatValue(values["blendWeight"]); ok && v >= 0 && v <= 1 {
		params.BlendWeight = v
	}
	if v, ok := boolValue(values["enableFaceEnhancement"]); ok {
		params.EnableFaceEnhancement = v
	}

	return params
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(s)), true
}

// floatValue accepts JSON numbers and numeric strings, the two shapes seen
// from real clients.
func floatValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func boolValue(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	case float64:
		return t != 0, true
	}
	return false, false
}
