package state

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Point is a position in surface-local pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RGB is an opaque stroke colour.
type RGB struct {
	R, G, B uint8
}

var (
	Black  = RGB{0, 0, 0}
	Red    = RGB{255, 0, 0}
	Green  = RGB{0, 255, 0}
	Blue   = RGB{0, 0, 255}
	Yellow = RGB{255, 255, 0}
	White  = RGB{255, 255, 255}
)

// Palette is the set of brush colours offered by the toolbar, in display order.
var Palette = []RGB{Black, Red, Green, Blue, Yellow}

// ParseRGB parses "#RRGGBB" or "#RGB" (the leading '#' is optional).
func ParseRGB(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex formats the colour as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// NRGBA returns the colour as a fully opaque color.NRGBA.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *RGB) UnmarshalText(text []byte) error {
	parsed, err := ParseRGB(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Stroke is one pointer-down to pointer-up path. Color and Radius are fixed
// when the stroke starts.
type Stroke struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
	Color  RGB     `json:"color"`
	Radius float64 `json:"radius"`
}

// NewStroke starts a stroke at p.
func NewStroke(p Point, c RGB, radius float64) *Stroke {
	return &Stroke{
		ID:     uuid.NewString(),
		Points: []Point{p},
		Color:  c,
		Radius: radius,
	}
}

// Clone returns a deep copy of the stroke.
func (s *Stroke) Clone() Stroke {
	out := *s
	out.Points = append([]Point(nil), s.Points...)
	return out
}

// Drawing is the ordered stroke history of one editing session.
type Drawing struct {
	strokes []*Stroke
}

// Begin appends a new stroke and returns it.
func (d *Drawing) Begin(p Point, c RGB, radius float64) *Stroke {
	s := NewStroke(p, c, radius)
	d.strokes = append(d.strokes, s)
	return s
}

// Last returns the most recent stroke, or nil.
func (d *Drawing) Last() *Stroke {
	if len(d.strokes) == 0 {
		return nil
	}
	return d.strokes[len(d.strokes)-1]
}

// Each calls fn for every stroke in drawing order.
func (d *Drawing) Each(fn func(*Stroke)) {
	for _, s := range d.strokes {
		fn(s)
	}
}

// Strokes returns deep copies of all strokes.
func (d *Drawing) Strokes() []Stroke {
	out := make([]Stroke, 0, len(d.strokes))
	for _, s := range d.strokes {
		out = append(out, s.Clone())
	}
	return out
}

// Reset drops every stroke.
func (d *Drawing) Reset() {
	d.strokes = nil
}
