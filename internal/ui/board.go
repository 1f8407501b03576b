package ui

import (
	"image"

	"NoteBoard/internal/state"
	"NoteBoard/internal/surface"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// BoardWidget shows a surface and feeds pointer input to its stroke capture.
// The surface is drawn stretched to the widget; pointer positions are mapped
// back to surface pixels.
type BoardWidget struct {
	widget.BaseWidget
	capture *surface.Capture
	surface *surface.Surface
	raster  *canvas.Raster
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(c *surface.Capture, s *surface.Surface) *BoardWidget {
	b := &BoardWidget{capture: c, surface: s}
	b.raster = canvas.NewRaster(func(int, int) image.Image {
		return b.surface.Snapshot()
	})
	b.raster.ScaleMode = canvas.ImageScaleSmooth
	b.ExtendBaseWidget(b)
	return b
}

// toSurface maps a widget position to surface pixel coordinates.
func (b *BoardWidget) toSurface(pos fyne.Position) state.Point {
	size := b.Size()
	w, h := b.surface.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return state.Point{X: float64(pos.X), Y: float64(pos.Y)}
	}
	return state.Point{
		X: float64(pos.X) * float64(w) / float64(size.Width),
		Y: float64(pos.Y) * float64(h) / float64(size.Height),
	}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.capture.PointerDown(b.toSurface(e.Position))
	}
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.capture.PointerUp()
	}
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.capture.PointerMove(b.toSurface(e.Position))
}

func (b *BoardWidget) DragEnd() {
	b.capture.PointerUp()
}

// Redraw schedules a repaint on the UI goroutine. It is safe to call from
// any goroutine.
func (b *BoardWidget) Redraw() {
	fyne.Do(b.raster.Refresh)
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return &boardWidgetRenderer{board: b}
}

type boardWidgetRenderer struct {
	board *BoardWidget
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.board.raster}
}

func (r *boardWidgetRenderer) Refresh() {
	r.board.raster.Refresh()
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.board.raster.Resize(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	w, h := r.board.surface.Size()
	return fyne.NewSize(float32(w)/2, float32(h)/2)
}

func (r *boardWidgetRenderer) Destroy() {}
