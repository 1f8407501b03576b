package ui

import (
	"NoteBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// galleryRow is one stored drawing with its Edit and Delete actions.
type galleryRow struct {
	widget.BaseWidget
	ref    state.ImageRef
	label  *widget.Label
	edit   *widget.Button
	remove *widget.Button
}

func newGalleryRow(onEdit, onDelete func(state.ImageRef)) *galleryRow {
	r := &galleryRow{label: widget.NewLabel("")}
	r.label.Truncation = fyne.TextTruncateEllipsis
	r.edit = widget.NewButtonWithIcon("Edit", theme.DocumentCreateIcon(), func() { onEdit(r.ref) })
	r.remove = widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), func() { onDelete(r.ref) })
	r.ExtendBaseWidget(r)
	return r
}

func (r *galleryRow) set(ref state.ImageRef, editing bool) {
	r.ref = ref
	text := ref.Filename
	if editing {
		text += " (editing)"
	}
	r.label.SetText(text)
}

func (r *galleryRow) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(
		container.NewBorder(nil, nil, nil, container.NewHBox(r.edit, r.remove), r.label),
	)
}
