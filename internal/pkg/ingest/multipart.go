// Tolerant extraction of the image payload and parameter record from a raw
// upload body. Producers of this traffic are known to omit boundary
// terminators, line endings and sometimes the whole multipart framing, so the
// scanner works over byte offsets with an ordered set of recovery rules
// instead of a conforming multipart reader.
package ingest

import (
	"bytes"
	"encoding/json"

	"face-enhancer/internal/entity"
)

var (
	inlineImageMarker = []byte("data:image/")
	boundaryMarker    = []byte("------")
	crlf              = []byte("\r\n")
	lf                = []byte("\n")
	headerSeparator   = []byte("\r\n\r\n")
	fieldTerminator   = []byte("\r\n------")
)

var legacyAnchors = [][]byte{
	[]byte(`{"mode"`),
	[]byte(`{"scaleFactor"`),
	[]byte(`{\"mode\"`),
	[]byte(`{\"scaleFactor\"`),
}

// Parse never fails: a request without a recoverable image yields the zero
// payload, and parameters always resolve, defaulting key by key.
func Parse(raw []byte) (entity.ImagePayload, entity.EnhanceParams) {
	return extractImage(raw), extractParams(raw)
}

func extractImage(raw []byte) entity.ImagePayload {
	if payload, ok := inlineImageRule(raw); ok {
		return payload
	}
	if payload, ok := imageFieldRule(raw); ok {
		return payload
	}
	return ""
}

// inlineImageRule picks up a data URL anywhere in the body. The value runs to
// the first line terminator; without one, to the next boundary marker;
// without either, to the end of input.
func inlineImageRule(raw []byte) (entity.ImagePayload, bool) {
	start := bytes.Index(raw, inlineImageMarker)
	if start < 0 {
		return "", false
	}

	rest := raw[start:]
	end := len(rest)
	if i := bytes.Index(rest, crlf); i >= 0 {
		end = i
	} else if i := bytes.Index(rest, lf); i >= 0 {
		end = i
	} else if i := bytes.Index(rest, boundaryMarker); i >= 0 {
		end = i
	}

	value := bytes.TrimSpace(rest[:end])
	if len(value) <= len(inlineImageMarker) {
		return "", false
	}
	return entity.ImagePayload(value), true
}

// imageFieldRule reads a properly framed form field named "image"; the value
// must itself be a data URL.
func imageFieldRule(raw []byte) (entity.ImagePayload, bool) {
	field, ok := formFieldValue(raw, "image")
	if !ok {
		return "", false
	}

	value := bytes.TrimSpace(field)
	if !bytes.HasPrefix(value, inlineImageMarker) {
		return "", false
	}
	return entity.ImagePayload(value), true
}

func extractParams(raw []byte) entity.EnhanceParams {
	if values, ok := paramsFieldRule(raw); ok {
		return Normalize(values)
	}
	if values, ok := legacyJSONRule(raw); ok {
		return Normalize(values)
	}
	return entity.DefaultEnhanceParams()
}

func paramsFieldRule(raw []byte) (map[string]any, bool) {
	field, ok := formFieldValue(raw, "parameters")
	if !ok {
		return nil, false
	}

	var values map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(field), &values); err != nil {
		return nil, false
	}
	return values, true
}

// legacyJSONRule handles older clients that drop a bare JSON fragment into
// the body, sometimes with escaped quotes. The fragment is recovered by
// brace-depth counting from a known leading key.
func legacyJSONRule(raw []byte) (map[string]any, bool) {
	for _, anchor := range legacyAnchors {
		start := bytes.Index(raw, anchor)
		if start < 0 {
			continue
		}

		fragment, ok := balancedBraces(raw[start:])
		if !ok {
			continue
		}
		fragment = bytes.ReplaceAll(fragment, []byte(`\"`), []byte(`"`))

		var values map[string]any
		if err := json.Unmarshal(fragment, &values); err != nil {
			continue
		}
		return values, true
	}
	return nil, false
}

// formFieldValue returns the bytes between a field's header separator and the
// next boundary; both must be present for the field to count as framed.
func formFieldValue(raw []byte, name string) ([]byte, bool) {
	marker := []byte(`name="` + name + `"`)
	idx := bytes.Index(raw, marker)
	if idx < 0 {
		return nil, false
	}

	rest := raw[idx+len(marker):]
	sep := bytes.Index(rest, headerSeparator)
	if sep < 0 {
		return nil, false
	}

	value := rest[sep+len(headerSeparator):]
	end := bytes.Index(value, fieldTerminator)
	if end < 0 {
		return nil, false
	}
	return value[:end], true
}

func balancedBraces(raw []byte) ([]byte, bool) {
	depth := 0
	for i, b := range raw {
		switch b {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[:i+1], true
			}
		}
	}
	return nil, false
}
