package surface

import (
	"image/color"
	"testing"

	"NoteBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureAppendsInReceiptOrder(t *testing.T) {
	s, c, _ := newTestSurface(100, 100)
	pts := []state.Point{{X: 5, Y: 5}, {X: 9, Y: 1}, {X: 9, Y: 1}, {X: 2, Y: 7}}

	c.PointerDown(pts[0])
	for _, p := range pts[1:] {
		assert.True(t, c.PointerMove(p))
	}
	c.PointerUp()

	strokes := s.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, pts, strokes[0].Points)
	assert.Equal(t, state.Black, strokes[0].Color)
	assert.Equal(t, DefaultRadius, strokes[0].Radius)
}

func TestCaptureIgnoresMovesWithoutPointerDown(t *testing.T) {
	s, c, _ := newTestSurface(100, 100)
	assert.False(t, c.PointerMove(state.Point{X: 1, Y: 1}))

	c.PointerDown(state.Point{X: 1, Y: 1})
	c.PointerUp()
	assert.False(t, c.PointerMove(state.Point{X: 2, Y: 2}))
	assert.False(t, c.Active())

	strokes := s.Strokes()
	require.Len(t, strokes, 1)
	assert.Len(t, strokes[0].Points, 1)
}

func TestStrokeKeepsColourAndRadiusFromStart(t *testing.T) {
	s, c, tools := newTestSurface(100, 100)
	tools.SelectColor(state.Red)
	c.SetRadius(7)
	c.PointerDown(state.Point{X: 10, Y: 10})

	tools.SelectColor(state.Blue)
	c.SetRadius(2)
	c.PointerMove(state.Point{X: 20, Y: 20})
	c.PointerUp()

	strokes := s.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, state.Red, strokes[0].Color)
	assert.Equal(t, 7.0, strokes[0].Radius)
}

func TestEraserPaintsWhite(t *testing.T) {
	s, c, tools := newTestSurface(100, 100)
	tools.SelectColor(state.Red)
	c.PointerDown(state.Point{X: 10, Y: 50})
	c.PointerMove(state.Point{X: 90, Y: 50})
	c.PointerUp()

	tools.SelectTool(state.ToolEraser)
	tools.SelectColor(state.Green)
	c.PointerDown(state.Point{X: 10, Y: 50})
	c.PointerMove(state.Point{X: 90, Y: 50})
	c.PointerUp()

	strokes := s.Strokes()
	require.Len(t, strokes, 2)
	assert.Equal(t, state.White, strokes[1].Color)

	out, err := s.ExportRaster(color.Black)
	require.NoError(t, err)
	assertNear(t, state.White, rgbAt(decodeRGBA(t, out), 50, 50))

	tools.SelectTool(state.ToolBrush)
	assert.Equal(t, state.Red, tools.State().DrawColor())
}

func TestClearDuringStrokeEndsIt(t *testing.T) {
	s, c, _ := newTestSurface(100, 100)
	c.PointerDown(state.Point{X: 1, Y: 1})
	s.Clear()

	assert.False(t, c.PointerMove(state.Point{X: 2, Y: 2}))
	assert.False(t, c.Active())
	assert.Empty(t, s.Strokes())
}

func TestSetRadiusClamps(t *testing.T) {
	_, c, _ := newTestSurface(10, 10)
	assert.Equal(t, MinRadius, c.SetRadius(0))
	assert.Equal(t, MaxRadius, c.SetRadius(500))
	assert.Equal(t, 12.5, c.SetRadius(12.5))
	assert.Equal(t, 12.5, c.Radius())
}
