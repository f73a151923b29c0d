package imageformat

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log/slog"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/srwiley/oksvg"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const SVG = "svg"

var ErrUnknownFormat = errors.New("unknown image format")

// Known lists every format Detect can report.
var Known = []string{"png", "jpeg", "gif", "bmp", "tiff", "webp", SVG}

func IsKnown(format string) bool {
	for _, known := range Known {
		if known == format {
			return true
		}
	}
	return false
}

// Detect returns the image format of data without decoding the full image.
func Detect(data []byte) (string, error) {
	if isSVGData(data) {
		icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
		if err != nil {
			return "", fmt.Errorf("%w: invalid svg: %v", ErrUnknownFormat, err)
		}
		slog.Debug("imageformat: detected svg", "view_box_width", icon.ViewBox.W, "view_box_height", icon.ViewBox.H)
		return SVG, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	slog.Debug("imageformat: detected raster image", "format", format, "width", cfg.Width, "height", cfg.Height)
	return format, nil
}

// isSVGData performs a lightweight detection of SVG content from raw bytes.
func isSVGData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	n := len(data)
	if n > 4096 {
		n = 4096
	}
	header := bytes.ToLower(bytes.TrimSpace(data[:n]))
	return bytes.Contains(header, []byte("<svg")) ||
		bytes.Contains(header, []byte("xmlns=\"http://www.w3.org/2000/svg\"")) ||
		bytes.Contains(header, []byte("xmlns='http://www.w3.org/2000/svg'"))
}
