package ui

import (
	"image/color"

	"NoteBoard/internal/state"
	"NoteBoard/internal/surface"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.DisableableWidget
	Color    state.RGB
	OnTapped func(state.RGB)
}

func newColorSwatch(c state.RGB, tapped func(state.RGB)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color.NRGBA())
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return &swatchRenderer{swatch: s, rect: rect, border: border}
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.Disabled() {
		return
	}
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

type swatchRenderer struct {
	swatch *colorSwatch
	rect   *canvas.Rectangle
	border *canvas.Rectangle
}

func (r *swatchRenderer) Layout(size fyne.Size) {
	r.rect.Resize(size)
	r.border.Resize(size)
}

func (r *swatchRenderer) MinSize() fyne.Size { return r.rect.MinSize() }

func (r *swatchRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.rect, r.border}
}

// Refresh dims the swatch while it is disabled.
func (r *swatchRenderer) Refresh() {
	c := r.swatch.Color.NRGBA()
	if r.swatch.Disabled() {
		c.A = 60
	}
	r.rect.FillColor = c
	r.rect.Refresh()
	r.border.Refresh()
}

func (r *swatchRenderer) Destroy() {}

// Toolbar holds the tool buttons, the palette and the brush size slider.
type Toolbar struct {
	tools    *state.Tools
	capture  *surface.Capture
	brush    *widget.Button
	eraser   *widget.Button
	swatches []*colorSwatch
	slider   *widget.Slider
	current  *canvas.Rectangle
}

// NewToolbar builds the toolbar for the capture's tool state.
func NewToolbar(c *surface.Capture) *Toolbar {
	t := &Toolbar{tools: c.Tools(), capture: c}
	t.brush = widget.NewButtonWithIcon("Brush", theme.DocumentCreateIcon(), func() {
		t.tools.SelectTool(state.ToolBrush)
		t.sync()
	})
	t.eraser = widget.NewButtonWithIcon("Eraser", theme.ContentClearIcon(), func() {
		t.tools.SelectTool(state.ToolEraser)
		t.sync()
	})

	for _, col := range state.Palette {
		t.swatches = append(t.swatches, newColorSwatch(col, func(c state.RGB) {
			t.tools.SelectColor(c)
			t.sync()
		}))
	}

	t.slider = widget.NewSlider(surface.MinRadius, surface.MaxRadius)
	t.slider.Step = 1
	t.slider.SetValue(c.Radius())
	t.slider.OnChanged = func(val float64) {
		t.capture.SetRadius(val)
	}

	t.current = canvas.NewRectangle(color.Black)
	t.current.SetMinSize(fyne.NewSize(20, 20))
	t.sync()
	return t
}

// sync makes the widgets reflect the tool state.
func (t *Toolbar) sync() {
	st := t.tools.State()
	erasing := st.Kind() == state.ToolEraser
	if erasing {
		t.eraser.Importance = widget.HighImportance
		t.brush.Importance = widget.MediumImportance
	} else {
		t.brush.Importance = widget.HighImportance
		t.eraser.Importance = widget.MediumImportance
	}
	t.brush.Refresh()
	t.eraser.Refresh()

	for _, s := range t.swatches {
		if erasing {
			s.Disable()
		} else {
			s.Enable()
		}
	}
	t.current.FillColor = st.DrawColor().NRGBA()
	t.current.Refresh()
}

// Content returns the assembled toolbar.
func (t *Toolbar) Content() fyne.CanvasObject {
	colorBox := container.NewHBox()
	for _, s := range t.swatches {
		colorBox.Add(s)
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), t.slider)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		t.brush,
		t.eraser,
		t.current,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		layout.NewSpacer(),
	)
}
