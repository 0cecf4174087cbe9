package entity

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ImagePayload is the on-wire image form, a data URL: "data:<mime>;base64,<body>".
type ImagePayload string

const dataURLPrefix = "data:"

func NewImagePayload(mime string, data []byte) ImagePayload {
	encoded := base64.StdEncoding.EncodeToString(data)
	return ImagePayload("data:" + mime + ";base64," + encoded)
}

func NewJPEGPayload(data []byte) ImagePayload {
	return NewImagePayload("image/jpeg", data)
}

func (p ImagePayload) IsZero() bool {
	return p == ""
}

func (p ImagePayload) MIME() string {
	s := string(p)
	if !strings.HasPrefix(s, dataURLPrefix) {
		return ""
	}
	rest := s[len(dataURLPrefix):]
	if idx := strings.Index(rest, ";"); idx >= 0 {
		return rest[:idx]
	}
	if idx := strings.Index(rest, ","); idx >= 0 {
		return rest[:idx]
	}
	return ""
}

// Decode returns the raw image bytes behind the data URL.
func (p ImagePayload) Decode() ([]byte, error) {
	s := string(p)
	if !strings.HasPrefix(s, dataURLPrefix) {
		return nil, fmt.Errorf("%w: missing data URL header", ErrUndecodableImage)
	}

	idx := strings.Index(s, ",")
	if idx < 0 {
		return nil, fmt.Errorf("%w: missing payload separator", ErrUndecodableImage)
	}

	body := s[idx+1:]
	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		// некоторые клиенты шлют base64 без выравнивания
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(body, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload body", ErrUndecodableImage)
	}

	return data, nil
}
