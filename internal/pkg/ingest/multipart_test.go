package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"face-enhancer/internal/entity"
)

func TestParseInlineImage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "crlf terminated",
			body: "junk data:image/png;base64,iVBORw0KGgo=\r\nmore junk",
			want: "data:image/png;base64,iVBORw0KGgo=",
		},
		{
			name: "lf terminated",
			body: "junk data:image/jpeg;base64,/9j/4AAQ\nmore junk",
			want: "data:image/jpeg;base64,/9j/4AAQ",
		},
		{
			name: "boundary terminated without newline",
			body: "data:image/png;base64,iVBORw0KGgo=------WebKitFormBoundaryX--",
			want: "data:image/png;base64,iVBORw0KGgo=",
		},
		{
			name: "end of input without any terminator",
			body: "broken multipart without boundary data:image/png;base64,iVBORw0KGgo=",
			want: "data:image/png;base64,iVBORw0KGgo=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, params := Parse([]byte(tt.body))

			assert.Equal(t, entity.ImagePayload(tt.want), payload)
			assert.Equal(t, entity.DefaultEnhanceParams(), params)
		})
	}
}

func TestParseWellFormedMultipart(t *testing.T) {
	body := multipartBody(map[string]string{
		"image":      "data:image/png;base64,iVBORw0KGgo=",
		"parameters": `{"mode":"fast","scaleFactor":3.0,"enableFaceEnhancement":false}`,
	})

	payload, params := Parse(body)

	assert.Equal(t, entity.ImagePayload("data:image/png;base64,iVBORw0KGgo="), payload)
	assert.Equal(t, entity.ModeFast, params.Mode)
	assert.Equal(t, 3.0, params.ScaleFactor)
	assert.False(t, params.EnableFaceEnhancement)
	// нетронутые ключи остаются на значениях по умолчанию
	assert.Equal(t, 1.2, params.SharpenStrength)
	assert.Equal(t, 6.0, params.NoiseReduction)
}

func TestParseImageFieldAfterStrayMarker(t *testing.T) {
	// degenerate inline marker first, framed field with the real payload after
	body := "prefix data:image/\r\n" + string(multipartBody(map[string]string{
		"image": "data:image/jpeg;base64,/9j/4AAQSkZJRg==",
	}))

	payload, _ := Parse([]byte(body))

	assert.Equal(t, entity.ImagePayload("data:image/jpeg;base64,/9j/4AAQSkZJRg=="), payload)
}

func TestParseNoImage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "no image anywhere", body: "random text without any payload"},
		{name: "marker only", body: "data:image/\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, params := Parse([]byte(tt.body))

			assert.True(t, payload.IsZero())
			assert.Equal(t, entity.DefaultEnhanceParams(), params)
		})
	}
}

func TestParseParameterFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantMode  string
		wantScale float64
	}{
		{
			name: "malformed parameters field falls back to defaults",
			body: string(multipartBody(map[string]string{
				"image":      "data:image/png;base64,iVBORw0KGgo=",
				"parameters": `{"mode": broken json`,
			})),
			wantMode:  entity.ModeGFPGAN,
			wantScale: 2.0,
		},
		{
			name:      "legacy plain json fragment",
			body:      `data:image/png;base64,iVBORw0KGgo=` + "\r\n" + `{"mode": "traditional", "scaleFactor": 1.5}`,
			wantMode:  entity.ModeTraditional,
			wantScale: 1.5,
		},
		{
			name:      "legacy escaped json fragment",
			body:      `data:image/png;base64,iVBORw0KGgo=` + "\r\n" + `{\"scaleFactor\": 4.0, \"mode\": \"hybrid\"}`,
			wantMode:  entity.ModeHybrid,
			wantScale: 4.0,
		},
		{
			name:      "no parameters at all",
			body:      "data:image/png;base64,iVBORw0KGgo=",
			wantMode:  entity.ModeGFPGAN,
			wantScale: 2.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, params := Parse([]byte(tt.body))

			assert.Equal(t, tt.wantMode, params.Mode)
			assert.Equal(t, tt.wantScale, params.ScaleFactor)
		})
	}
}

func TestParseParametersFieldBeatsLegacyFragment(t *testing.T) {
	body := string(multipartBody(map[string]string{
		"image":      "data:image/png;base64,iVBORw0KGgo=",
		"parameters": `{"mode":"fast"}`,
	})) + `{"mode": "traditional"}`

	_, params := Parse([]byte(body))

	assert.Equal(t, entity.ModeFast, params.Mode)
}

func TestFormFieldValue(t *testing.T) {
	body := multipartBody(map[string]string{"parameters": `{"contrast":1.4}`})

	value, ok := formFieldValue(body, "parameters")
	require.True(t, ok)
	assert.Equal(t, `{"contrast":1.4}`, string(value))

	_, ok = formFieldValue(body, "missing")
	assert.False(t, ok)

	// поле без закрывающей границы не считается оформленным
	truncated := []byte("Content-Disposition: form-data; name=\"parameters\"\r\n\r\n{\"contrast\":1.4}")
	_, ok = formFieldValue(truncated, "parameters")
	assert.False(t, ok)
}

func TestBalancedBraces(t *testing.T) {
	fragment, ok := balancedBraces([]byte(`{"a": {"b": 1}, "c": 2} trailing`))
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}, "c": 2}`, string(fragment))

	_, ok = balancedBraces([]byte(`{"a": {"never closed"`))
	assert.False(t, ok)
}

// multipartBody собирает тело запроса в том виде, в каком его шлет браузер
func multipartBody(fields map[string]string) []byte {
	const boundary = "------WebKitFormBoundary7MA4YWxkTrZu0gW"

	var b strings.Builder
	for _, name := range []string{"image", "parameters"} {
		value, ok := fields[name]
		if !ok {
			continue
		}
		b.WriteString(boundary + "\r\n")
		b.WriteString(`Content-Disposition: form-data; name="` + name + `"` + "\r\n")
		b.WriteString("\r\n")
		b.WriteString(value + "\r\n")
	}
	b.WriteString(boundary + "--\r\n")
	return []byte(b.String())
}
