package ui

import (
	"context"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"NoteBoard/internal/api"
	"NoteBoard/internal/api/apitest"
	"NoteBoard/internal/session"
	"NoteBoard/internal/state"
	"NoteBoard/internal/surface"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func press(b *BoardWidget, x, y float32) {
	b.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	})
}

func drag(b *BoardWidget, x, y float32) {
	b.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}})
}

func TestBoardWidgetMapsPointerToSurface(t *testing.T) {
	test.NewTempApp(t)
	surf := surface.New(100, 60, quietLogger())
	capture := surface.NewCapture(surf, state.NewTools())
	b := NewBoardWidget(capture, surf)
	b.Resize(fyne.NewSize(200, 120))

	press(b, 20, 20)
	drag(b, 100, 60)
	drag(b, 200, 120)
	b.DragEnd()

	strokes := surf.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, []state.Point{{X: 10, Y: 10}, {X: 50, Y: 30}, {X: 100, Y: 60}}, strokes[0].Points)
	assert.False(t, capture.Active())
}

func TestBoardWidgetIgnoresSecondaryButton(t *testing.T) {
	test.NewTempApp(t)
	surf := surface.New(50, 50, quietLogger())
	capture := surface.NewCapture(surf, state.NewTools())
	b := NewBoardWidget(capture, surf)
	b.Resize(fyne.NewSize(50, 50))

	b.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(5, 5)},
		Button:     desktop.MouseButtonSecondary,
	})
	drag(b, 10, 10)

	assert.Empty(t, surf.Strokes())
}

func TestToolbarEraserDisablesPalette(t *testing.T) {
	test.NewTempApp(t)
	surf := surface.New(50, 50, quietLogger())
	capture := surface.NewCapture(surf, state.NewTools())
	tb := NewToolbar(capture)
	require.Len(t, tb.swatches, len(state.Palette))

	test.Tap(tb.swatches[1])
	assert.Equal(t, state.Palette[1], capture.Tools().State().DrawColor())

	test.Tap(tb.eraser)
	assert.Equal(t, state.ToolEraser, capture.Tools().State().Kind())
	for _, s := range tb.swatches {
		assert.True(t, s.Disabled())
	}
	test.Tap(tb.swatches[3])
	assert.Equal(t, state.White, capture.Tools().State().DrawColor())

	test.Tap(tb.brush)
	assert.Equal(t, state.Palette[1], capture.Tools().State().DrawColor())
	for _, s := range tb.swatches {
		assert.False(t, s.Disabled())
	}
}

func TestToolbarSliderSetsRadius(t *testing.T) {
	test.NewTempApp(t)
	surf := surface.New(50, 50, quietLogger())
	capture := surface.NewCapture(surf, state.NewTools())
	tb := NewToolbar(capture)

	assert.Equal(t, capture.Radius(), tb.slider.Value)
	tb.slider.SetValue(12)
	assert.Equal(t, 12.0, capture.Radius())
}

func TestWorkspaceDownload(t *testing.T) {
	test.NewTempApp(t)
	surf := surface.New(80, 40, quietLogger())
	capture := surface.NewCapture(surf, state.NewTools())
	ws := NewWorkspace(context.Background(), session.New(nil, surf, quietLogger()), capture, quietLogger())

	dir := t.TempDir()
	pngPath := filepath.Join(dir, "out", "drawing.png")
	require.NoError(t, ws.Download(pngPath))
	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Width)
	assert.Equal(t, 40, cfg.Height)

	pdfPath := filepath.Join(dir, "drawing.PDF")
	require.NoError(t, ws.Download(pdfPath))
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(data[:5]))
}

func TestWorkspaceEditFlow(t *testing.T) {
	test.NewTempApp(t)
	srv := apitest.NewServer()
	defer srv.Close()

	seed := surface.New(60, 40, quietLogger())
	data, err := surface.Encode(seed, nil)
	require.NoError(t, err)
	ref := state.NewImageRef(srv.Put("sketch.png", data))

	client, err := api.NewClient(srv.URL, api.Options{RateLimit: 1000}, quietLogger())
	require.NoError(t, err)
	surf := surface.New(60, 40, quietLogger())
	sess := session.New(client, surf, quietLogger())
	ws := NewWorkspace(context.Background(), sess, surface.NewCapture(surf, state.NewTools()), quietLogger())
	_ = ws.Content()

	ws.Refresh()
	assert.Eventually(t, func() bool { return len(sess.Images()) == 1 }, 5*time.Second, 10*time.Millisecond)

	ws.OpenForEdit(ref)
	assert.Eventually(t, func() bool { return sess.Editing() != nil }, 5*time.Second, 10*time.Millisecond)

	ws.sync()
	assert.True(t, ws.discard.Visible())
	assert.Equal(t, "Editing sketch.png", ws.editing.Text)
	assert.Equal(t, 1, ws.list.Length())

	ws.Discard()
	ws.sync()
	assert.False(t, ws.discard.Visible())
	assert.Nil(t, sess.Editing())
	assert.Equal(t, "Edit discarded", ws.Status())
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&state.NetworkError{Op: "save drawing", Status: 500, Err: errors.New("boom")}, "Network error: "},
		{&state.DecodeError{Err: errors.New("bad")}, "Could not read drawing: "},
		{&state.ValidationError{Field: "filename", Reason: "must not be empty"}, "Invalid request: "},
		{errors.New("other"), "Error: other"},
	}
	for _, tt := range tests {
		assert.Contains(t, describe(tt.err), tt.want)
	}
}

func TestSavedStatus(t *testing.T) {
	assert.Equal(t, "Saved a.png", savedStatus(state.NewImageRef("/uploads/a.png")))
	assert.Equal(t, "Drawing saved", savedStatus(state.ImageRef{}))
}
