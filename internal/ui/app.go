package ui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"time"

	"NoteBoard/internal/export"
	"NoteBoard/internal/session"
	"NoteBoard/internal/state"
	"NoteBoard/internal/surface"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

// Workspace is the whiteboard screen: toolbar, board, action buttons and
// the gallery of stored drawings.
type Workspace struct {
	ctx     context.Context
	session *session.Session
	capture *surface.Capture
	window  fyne.Window
	log     logrus.FieldLogger

	board   *BoardWidget
	toolbar *Toolbar
	status  *widget.Label
	editing *widget.Label
	save    *widget.Button
	discard *widget.Button
	list    *widget.List

	// images is the listing shown by list; only touched on the UI goroutine.
	images []state.ImageRef
	target *state.ImageRef
}

// NewWorkspace builds the screen and hooks it to the session's callbacks.
// Network operations run on their own goroutines bound to ctx.
func NewWorkspace(ctx context.Context, sess *session.Session, c *surface.Capture, log logrus.FieldLogger) *Workspace {
	if log == nil {
		log = logrus.StandardLogger()
	}
	w := &Workspace{
		ctx:     ctx,
		session: sess,
		capture: c,
		log:     log.WithField("component", "ui"),
		status:  widget.NewLabel("Ready"),
		editing: widget.NewLabel(""),
	}
	w.board = NewBoardWidget(c, sess.Surface())
	w.toolbar = NewToolbar(c)

	w.save = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), w.Save)
	w.save.Importance = widget.HighImportance
	w.discard = widget.NewButtonWithIcon("Discard edit", theme.CancelIcon(), w.Discard)
	w.discard.Hide()

	w.list = widget.NewList(
		func() int { return len(w.images) },
		func() fyne.CanvasObject { return newGalleryRow(w.OpenForEdit, w.Delete) },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			ref := w.images[id]
			obj.(*galleryRow).set(ref, w.target != nil && w.target.Filename == ref.Filename)
		},
	)

	sess.Surface().OnChange = w.board.Redraw
	sess.OnChange = func() { fyne.Do(w.sync) }
	sess.OnError = func(err error) {
		fyne.Do(func() { w.SetStatus(describe(err)) })
	}
	return w
}

// SetWindow gives the workspace a parent for its dialogs.
func (w *Workspace) SetWindow(win fyne.Window) { w.window = win }

// Board returns the drawing widget.
func (w *Workspace) Board() *BoardWidget { return w.board }

// Status returns the status bar text.
func (w *Workspace) Status() string { return w.status.Text }

// SetStatus replaces the status bar text. Call it on the UI goroutine.
func (w *Workspace) SetStatus(text string) { w.status.SetText(text) }

// Content assembles the screen.
func (w *Workspace) Content() fyne.CanvasObject {
	actions := container.NewHBox(
		w.save,
		widget.NewButtonWithIcon("Download", theme.DownloadIcon(), w.showDownload),
		widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), w.Clear),
		w.discard,
		widget.NewSeparator(),
		w.editing,
	)
	gallery := container.NewBorder(
		container.NewHBox(
			widget.NewLabelWithStyle("Saved drawings", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), w.Refresh),
		),
		nil, nil, nil, w.list,
	)
	workArea := container.NewBorder(
		container.NewVBox(w.toolbar.Content(), actions),
		w.status, nil, nil, w.board,
	)
	split := container.NewHSplit(workArea, gallery)
	split.Offset = 0.75
	return split
}

// sync copies session state into the widgets. Call it on the UI goroutine.
func (w *Workspace) sync() {
	w.images = w.session.Images()
	w.target = w.session.Editing()
	if w.target != nil {
		w.editing.SetText("Editing " + w.target.Filename)
		w.discard.Show()
	} else {
		w.editing.SetText("")
		w.discard.Hide()
	}
	if w.session.Saving() {
		w.save.Disable()
	} else {
		w.save.Enable()
	}
	w.list.Refresh()
}

// Refresh reloads the gallery.
func (w *Workspace) Refresh() {
	w.run("refresh gallery", func(ctx context.Context) error {
		return w.session.FetchImages(ctx)
	})
}

// Save stores the board as a new drawing or over the one being edited.
func (w *Workspace) Save() {
	w.SetStatus("Saving...")
	w.run("save", func(ctx context.Context) error {
		ref, err := w.session.Save(ctx)
		if err != nil {
			return err
		}
		fyne.Do(func() { w.SetStatus(savedStatus(ref)) })
		return nil
	})
}

// OpenForEdit loads a stored drawing onto the board.
func (w *Workspace) OpenForEdit(ref state.ImageRef) {
	w.SetStatus("Opening " + ref.Filename + "...")
	w.run("open", func(ctx context.Context) error {
		if err := w.session.OpenForEdit(ctx, ref); err != nil {
			return err
		}
		fyne.Do(func() { w.SetStatus("Editing " + ref.Filename) })
		return nil
	})
}

// Delete removes a stored drawing.
func (w *Workspace) Delete(ref state.ImageRef) {
	do := func() {
		w.run("delete", func(ctx context.Context) error {
			if err := w.session.Delete(ctx, ref.Filename); err != nil {
				return err
			}
			fyne.Do(func() { w.SetStatus("Deleted " + ref.Filename) })
			return nil
		})
	}
	if w.window == nil {
		do()
		return
	}
	dialog.ShowConfirm("Delete drawing", fmt.Sprintf("Delete %s?", ref.Filename), func(ok bool) {
		if ok {
			do()
		}
	}, w.window)
}

// Clear wipes the board. The drawing being edited stays the save target.
func (w *Workspace) Clear() {
	w.session.Clear()
	w.SetStatus("Cleared")
}

// Discard abandons the current edit.
func (w *Workspace) Discard() {
	w.session.Discard()
	w.SetStatus("Edit discarded")
}

// Download writes the board to path: a PDF when path ends in .pdf, otherwise
// a PNG.
func (w *Workspace) Download(path string) error {
	data, err := surface.Encode(w.session.Surface(), color.White)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return export.WritePDF(path, data, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	return export.WriteFile(path, data)
}

func (w *Workspace) showDownload() {
	if w.window == nil {
		return
	}
	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			w.SetStatus(describe(err))
			return
		}
		if uc == nil {
			return
		}
		path := uc.URI().Path()
		_ = uc.Close()
		if err := w.Download(path); err != nil {
			w.log.WithError(err).Warn("download failed")
			w.SetStatus(describe(err))
			return
		}
		w.SetStatus("Downloaded " + filepath.Base(path))
	}, w.window)
	d.SetFileName(export.DefaultName)
	d.Show()
}

// run executes op off the UI goroutine. Session operations report their own
// errors through OnError.
func (w *Workspace) run(name string, op func(ctx context.Context) error) {
	go func() {
		start := time.Now()
		err := op(w.ctx)
		switch {
		case errors.Is(err, session.ErrStaleLoad):
			w.log.Debugf("%s superseded", name)
		case errors.Is(err, session.ErrSaveInProgress):
			fyne.Do(func() { w.SetStatus("A save is already in progress") })
		case err != nil:
			w.log.WithError(err).Debugf("%s failed after %s", name, time.Since(start).Round(time.Millisecond))
		}
	}()
}

func savedStatus(ref state.ImageRef) string {
	if ref.Filename == "" {
		return "Drawing saved"
	}
	return "Saved " + ref.Filename
}

// describe turns an error into status bar text.
func describe(err error) string {
	switch {
	case state.IsNetwork(err):
		return "Network error: " + err.Error()
	case state.IsDecode(err):
		return "Could not read drawing: " + err.Error()
	case state.IsValidation(err):
		return "Invalid request: " + err.Error()
	}
	return "Error: " + err.Error()
}

// RunApp opens the whiteboard window and blocks until it is closed.
func RunApp(ctx context.Context, sess *session.Session, c *surface.Capture, log logrus.FieldLogger) {
	myApp := app.NewWithID("io.noteboard.desktop")
	myWindow := myApp.NewWindow("NoteBoard")
	myWindow.Resize(fyne.NewSize(1280, 800))

	ws := NewWorkspace(ctx, sess, c, log)
	ws.SetWindow(myWindow)
	myWindow.SetContent(ws.Content())
	ws.Refresh()
	myWindow.ShowAndRun()
}
