package model

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// Chart is an encoded chart screenshot.
type Chart struct {
	Name     string
	MIMEType string // image/jpeg or image/png
	Data     string // base64, no data: prefix
}

// maxChartBytes bounds what is inlined into a single request.
const maxChartBytes = 15 << 20

// LoadChart reads a JPEG or PNG file and encodes it for the model.
func LoadChart(path string) (Chart, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Chart{}, newError("load", ErrInvalidImage, "could not read chart", err)
	}
	return NewChart(filepath.Base(path), b)
}

// NewChart encodes raw image bytes. The type is sniffed from the content.
func NewChart(name string, b []byte) (Chart, error) {
	if len(b) == 0 {
		return Chart{}, newError("load", ErrInvalidImage, "invalid image data provided", nil)
	}
	if len(b) > maxChartBytes {
		return Chart{}, newError("load", ErrInvalidImage,
			fmt.Sprintf("image is %d bytes, limit is %d", len(b), maxChartBytes), nil)
	}

	mime := http.DetectContentType(b)
	switch mime {
	case "image/jpeg", "image/png":
	default:
		return Chart{}, newError("load", ErrInvalidImage,
			fmt.Sprintf("unsupported image type %s", mime), nil)
	}
	return Chart{
		Name:     name,
		MIMEType: mime,
		Data:     base64.StdEncoding.EncodeToString(b),
	}, nil
}
