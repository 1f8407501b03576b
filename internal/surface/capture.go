package surface

import (
	"sync"

	"NoteBoard/internal/state"
)

const (
	DefaultRadius = 5.0
	MinRadius     = 1.0
	MaxRadius     = 50.0
)

// Capture turns pointer events into strokes on a Surface. Colour comes from
// the shared tool state when a stroke starts; later tool changes do not
// affect a stroke in progress.
type Capture struct {
	surface *Surface
	tools   *state.Tools

	mu     sync.Mutex
	radius float64
	active bool
	rev    uint64
}

// NewCapture wires pointer input for s using the tool state in tools.
func NewCapture(s *Surface, tools *state.Tools) *Capture {
	return &Capture{surface: s, tools: tools, radius: DefaultRadius}
}

// PointerDown starts a new stroke at p, finishing any stroke still open.
func (c *Capture) PointerDown(p state.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rev = c.surface.begin(p, c.tools.State().DrawColor(), c.radius)
	c.active = true
}

// PointerMove extends the open stroke. Moves without a preceding PointerDown
// are ignored and reported as false.
func (c *Capture) PointerMove(p state.Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return false
	}
	if !c.surface.extend(c.rev, p) {
		// cleared or reloaded under the pointer
		c.active = false
		return false
	}
	return true
}

// PointerUp finishes the open stroke.
func (c *Capture) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
}

// Active reports whether a stroke is in progress.
func (c *Capture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SetRadius sets the radius for the next stroke, clamped to
// [MinRadius, MaxRadius], and returns the value applied.
func (c *Capture) SetRadius(r float64) float64 {
	switch {
	case r < MinRadius:
		r = MinRadius
	case r > MaxRadius:
		r = MaxRadius
	}
	c.mu.Lock()
	c.radius = r
	c.mu.Unlock()
	return r
}

func (c *Capture) Radius() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}

// Tools returns the tool state consulted at stroke start.
func (c *Capture) Tools() *state.Tools {
	return c.tools
}
