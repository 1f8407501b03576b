// Package surface implements the whiteboard raster: a stroke history replayed
// over a base layer, live stroke capture and PNG serialisation.
package surface

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"NoteBoard/internal/state"

	"github.com/gogpu/gg"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// ErrStale is returned by LoadBackgroundAt when the surface changed after the
// load was requested.
var ErrStale = errors.New("surface changed since load was requested")

// Surface is a fixed-size raster showing a base layer with every stroke of
// the current Drawing painted over it in order.
//
// The base layer is transparent after Clear, or the image given to
// LoadBackground. Painting a stroke incrementally and replaying the whole
// Drawing issue the same gg operations, so the live buffer always equals a
// fresh replay.
type Surface struct {
	// OnChange, when set, is called after every re-render, outside the lock.
	OnChange func()

	mu       sync.Mutex
	width    int
	height   int
	base     *image.RGBA
	dc       *gg.Context
	drawing  state.Drawing
	revision uint64
	log      logrus.FieldLogger
}

// New creates a blank surface of the given pixel size.
func New(width, height int, log logrus.FieldLogger) *Surface {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Surface{
		width:  width,
		height: height,
		base:   image.NewRGBA(image.Rect(0, 0, width, height)),
		log:    log.WithField("component", "surface"),
	}
	s.replayLocked()
	return s
}

// Size returns the pixel dimensions.
func (s *Surface) Size() (width, height int) {
	return s.width, s.height
}

// Revision increases on every clear, stroke start and background load.
func (s *Surface) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Strokes returns copies of the strokes drawn since the last clear or load.
func (s *Surface) Strokes() []state.Stroke {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawing.Strokes()
}

// Clear drops every stroke and the background. There is no undo.
func (s *Surface) Clear() {
	s.mu.Lock()
	s.drawing.Reset()
	s.base = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	s.revision++
	s.replayLocked()
	s.mu.Unlock()

	s.log.Debug("cleared")
	s.changed()
}

// LoadBackground clears the surface and uses img as the base layer. Images of
// a different size are scaled to the surface.
func (s *Surface) LoadBackground(img image.Image) {
	s.mu.Lock()
	s.loadLocked(img)
	s.mu.Unlock()
	s.changed()
}

// LoadBackgroundBytes decodes PNG bytes and loads them as the base layer. On
// a decode error the surface is left untouched.
func (s *Surface) LoadBackgroundBytes(data []byte) error {
	img, err := Decode(data)
	if err != nil {
		return err
	}
	s.LoadBackground(img)
	return nil
}

// LoadBackgroundAt is LoadBackground guarded by a revision taken when the
// load was requested. It returns ErrStale, without touching the surface, if
// anything was drawn, cleared or loaded since.
func (s *Surface) LoadBackgroundAt(rev uint64, img image.Image) error {
	s.mu.Lock()
	if s.revision != rev {
		s.mu.Unlock()
		return ErrStale
	}
	s.loadLocked(img)
	s.mu.Unlock()
	s.changed()
	return nil
}

func (s *Surface) loadLocked(img image.Image) {
	base := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	src := img.Bounds()
	if src.Dx() == s.width && src.Dy() == s.height {
		draw.Draw(base, base.Bounds(), img, src.Min, draw.Src)
	} else {
		s.log.Debugf("scaling background %dx%d to %dx%d", src.Dx(), src.Dy(), s.width, s.height)
		draw.CatmullRom.Scale(base, base.Bounds(), img, src, draw.Src, nil)
	}
	s.base = base
	s.drawing.Reset()
	s.revision++
	s.replayLocked()
}

// Image returns a copy of the raw buffer. Pixels no stroke or background
// covers are transparent.
func (s *Surface) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageLocked()
}

// Snapshot returns the buffer as displayed, flattened onto white.
func (s *Surface) Snapshot() *image.RGBA {
	return Flatten(s.Image(), color.White)
}

// ExportRaster encodes the buffer as PNG, flattened onto bg. A nil bg means
// opaque white.
func (s *Surface) ExportRaster(bg color.Color) ([]byte, error) {
	if bg == nil {
		bg = color.White
	}
	return EncodeImage(Flatten(s.Image(), bg))
}

// Replay repaints the buffer from the base layer and the stroke history.
func (s *Surface) Replay() {
	s.mu.Lock()
	s.replayLocked()
	s.mu.Unlock()
	s.changed()
}

// begin starts a stroke and returns the revision that owns it.
func (s *Surface) begin(p state.Point, c state.RGB, radius float64) uint64 {
	s.mu.Lock()
	st := s.drawing.Begin(p, c, radius)
	s.revision++
	rev := s.revision
	s.paintLocked(st, 0)
	s.mu.Unlock()

	s.changed()
	return rev
}

// extend appends p to the stroke started at rev. It reports false when the
// surface has been cleared or reloaded since.
func (s *Surface) extend(rev uint64, p state.Point) bool {
	s.mu.Lock()
	st := s.drawing.Last()
	if st == nil || s.revision != rev {
		s.mu.Unlock()
		return false
	}
	st.Points = append(st.Points, p)
	s.paintLocked(st, len(st.Points)-1)
	s.mu.Unlock()

	s.changed()
	return true
}

func (s *Surface) replayLocked() {
	if s.dc != nil {
		_ = s.dc.Close()
	}
	pm := gg.NewPixmap(s.width, s.height)
	copy(pm.Data(), s.base.Pix)
	s.dc = gg.NewContext(s.width, s.height, gg.WithPixmap(pm))
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)

	s.drawing.Each(func(st *state.Stroke) {
		for i := range st.Points {
			s.paintLocked(st, i)
		}
	})
}

// paintLocked paints point i of st: a dot for the first point, otherwise the
// segment from the previous point.
func (s *Surface) paintLocked(st *state.Stroke, i int) {
	s.dc.SetColor(st.Color.NRGBA())
	p := st.Points[i]

	var err error
	if i == 0 {
		s.dc.DrawCircle(p.X, p.Y, st.Radius)
		err = s.dc.Fill()
	} else {
		prev := st.Points[i-1]
		s.dc.SetLineWidth(2 * st.Radius)
		s.dc.DrawLine(prev.X, prev.Y, p.X, p.Y)
		err = s.dc.Stroke()
	}
	if err != nil {
		s.log.WithError(err).Warnf("paint stroke %s point %d", st.ID, i)
	}
}

func (s *Surface) imageLocked() *image.RGBA {
	_ = s.dc.FlushGPU()
	img, ok := s.dc.Image().(*image.RGBA)
	if !ok {
		out := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
		draw.Draw(out, out.Bounds(), s.dc.Image(), image.Point{}, draw.Src)
		return out
	}
	return img
}

func (s *Surface) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}
