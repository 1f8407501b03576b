package state

import "sync"

// ToolKind names the two drawing tools.
type ToolKind int

const (
	ToolBrush ToolKind = iota
	ToolEraser
)

func (k ToolKind) String() string {
	switch k {
	case ToolBrush:
		return "brush"
	case ToolEraser:
		return "eraser"
	}
	return "unknown"
}

// ToolState is either a BrushState or an EraserState.
type ToolState interface {
	Kind() ToolKind
	// DrawColor is the colour applied to new strokes.
	DrawColor() RGB
	// BrushColor is the colour the brush uses (or will use again after the eraser).
	BrushColor() RGB
	isToolState()
}

// BrushState paints with Color.
type BrushState struct {
	Color RGB
}

func (BrushState) Kind() ToolKind    { return ToolBrush }
func (s BrushState) DrawColor() RGB  { return s.Color }
func (s BrushState) BrushColor() RGB { return s.Color }
func (BrushState) isToolState()      {}

// EraserState paints white. Resume is restored when switching back to the brush.
type EraserState struct {
	Resume RGB
}

func (EraserState) Kind() ToolKind    { return ToolEraser }
func (EraserState) DrawColor() RGB    { return White }
func (s EraserState) BrushColor() RGB { return s.Resume }
func (EraserState) isToolState()      {}

// SelectTool returns the state after choosing tool k.
func SelectTool(s ToolState, k ToolKind) ToolState {
	if s.Kind() == k {
		return s
	}
	if k == ToolEraser {
		return EraserState{Resume: s.BrushColor()}
	}
	return BrushState{Color: s.BrushColor()}
}

// SelectColor returns the state after choosing colour c. The eraser ignores
// colour changes; ok reports whether the selection was applied.
func SelectColor(s ToolState, c RGB) (next ToolState, ok bool) {
	if s.Kind() == ToolEraser {
		return s, false
	}
	return BrushState{Color: c}, true
}

// Tools holds the live tool state for the toolbar and stroke capture.
type Tools struct {
	mu    sync.RWMutex
	state ToolState
}

func NewTools() *Tools {
	return &Tools{state: BrushState{Color: Black}}
}

func (t *Tools) State() ToolState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *Tools) SelectTool(k ToolKind) ToolState {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = SelectTool(t.state, k)
	return t.state
}

// SelectColor is a no-op returning false while the eraser is active.
func (t *Tools) SelectColor(c RGB) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, ok := SelectColor(t.state, c)
	t.state = next
	return ok
}
