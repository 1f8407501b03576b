// Package export writes exported drawings to local files.
package export

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// DefaultName is the file name offered for a PNG download.
const DefaultName = "drawing.png"

const (
	pageMargin = 10.0 // mm
	imageName  = "drawing"
)

// WriteFile stores data at path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// PDF writes a single-page A4 document with the PNG centred on it. The page
// is landscape when the image is wider than tall.
func PDF(w io.Writer, data []byte, title string) error {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("read png header: %w", err)
	}

	orientation := "P"
	if cfg.Width > cfg.Height {
		orientation = "L"
	}
	p := gofpdf.New(orientation, "mm", "A4", "")
	p.SetTitle(title, true)
	p.SetCreator("NoteBoard", true)
	p.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(data))

	pageW, pageH := p.GetPageSize()
	x, y, iw, ih := fit(float64(cfg.Width), float64(cfg.Height), pageW-2*pageMargin, pageH-2*pageMargin)
	p.ImageOptions(imageName, pageMargin+x, pageMargin+y, iw, ih, false, opts, 0, "")

	if err := p.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// WritePDF is PDF into a file at path.
func WritePDF(path string, data []byte, title string) error {
	var buf bytes.Buffer
	if err := PDF(&buf, data, title); err != nil {
		return err
	}
	return WriteFile(path, buf.Bytes())
}

// fit scales a w x h box into maxW x maxH and returns its offset and size.
func fit(w, h, maxW, maxH float64) (x, y, fw, fh float64) {
	if w <= 0 || h <= 0 {
		return 0, 0, 0, 0
	}
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	fw, fh = w*scale, h*scale
	return (maxW - fw) / 2, (maxH - fh) / 2, fw, fh
}
