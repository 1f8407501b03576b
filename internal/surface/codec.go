package surface

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"NoteBoard/internal/state"

	"golang.org/x/image/draw"
)

// DataURLPrefix heads every raster sent to the drawing store.
const DataURLPrefix = "data:image/png;base64,"

var encoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// Encode renders s flattened onto bg as PNG.
func Encode(s *Surface, bg color.Color) ([]byte, error) {
	return s.ExportRaster(bg)
}

// EncodeImage writes img as PNG.
func EncodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses PNG bytes. Any failure is a *state.DecodeError.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &state.DecodeError{Err: errors.New("empty raster")}
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &state.DecodeError{Err: err}
	}
	if b := img.Bounds(); b.Empty() {
		return nil, &state.DecodeError{Err: fmt.Errorf("raster has no pixels (%dx%d)", b.Dx(), b.Dy())}
	}
	return img, nil
}

// Flatten composites img over an opaque bg.
func Flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

// EncodeDataURL wraps PNG bytes in a base64 data URL.
func EncodeDataURL(pngData []byte) string {
	return DataURLPrefix + base64.StdEncoding.EncodeToString(pngData)
}

// DecodeDataURL unwraps a base64 PNG data URL.
func DecodeDataURL(s string) ([]byte, error) {
	if !strings.HasPrefix(s, DataURLPrefix) {
		return nil, &state.DecodeError{Err: errors.New("not a png data url")}
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, DataURLPrefix))
	if err != nil {
		return nil, &state.DecodeError{Err: err}
	}
	return data, nil
}
