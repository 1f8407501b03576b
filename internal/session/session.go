// Package session coordinates the whiteboard surface with the remote drawing
// store: gallery refresh, save (create or update), delete and edit-load.
package session

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"

	"NoteBoard/internal/state"
	"NoteBoard/internal/surface"

	"github.com/sirupsen/logrus"
)

var (
	// ErrSaveInProgress rejects a save issued while another is in flight.
	ErrSaveInProgress = errors.New("save already in progress")
	// ErrStaleLoad is returned when an edit-load finished after the user
	// drew, cleared, discarded or opened another drawing.
	ErrStaleLoad = errors.New("edit load superseded")
)

// Store is the remote drawing store.
type Store interface {
	List(ctx context.Context) ([]state.ImageRef, error)
	Create(ctx context.Context, png []byte) (state.ImageRef, error)
	Update(ctx context.Context, filename string, png []byte) (state.ImageRef, error)
	Delete(ctx context.Context, filename string) error
	Fetch(ctx context.Context, ref state.ImageRef) ([]byte, error)
}

// Session owns the gallery listing and the editing target for one mounted
// whiteboard. Its network methods block; callers on a UI thread run them in
// their own goroutine.
type Session struct {
	// OnChange is called after the gallery, editing target or saving flag changes.
	OnChange func()
	// OnError receives every error surfaced to the user.
	OnError func(error)

	store      Store
	surface    *surface.Surface
	gallery    *state.Gallery
	background color.Color
	loads      state.Clock
	saving     atomic.Bool

	mu      sync.Mutex
	editing *state.ImageRef

	log logrus.FieldLogger
}

// New creates a session saving surf to store.
func New(store Store, surf *surface.Surface, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		store:      store,
		surface:    surf,
		gallery:    state.NewGallery(log),
		background: color.White,
		log:        log.WithField("component", "session"),
	}
}

// Surface returns the surface this session saves.
func (s *Session) Surface() *surface.Surface { return s.surface }

// Images returns the gallery listing.
func (s *Session) Images() []state.ImageRef { return s.gallery.Images() }

// Editing returns the drawing being revised, or nil for a new drawing.
func (s *Session) Editing() *state.ImageRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return nil
	}
	ref := *s.editing
	return &ref
}

// Saving reports whether a save is in flight.
func (s *Session) Saving() bool { return s.saving.Load() }

// FetchImages refreshes the gallery. On failure the listing is unchanged.
func (s *Session) FetchImages(ctx context.Context) error {
	if err := s.refresh(ctx); err != nil {
		return s.report(err)
	}
	return nil
}

func (s *Session) refresh(ctx context.Context) error {
	images, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("fetch images: %w", err)
	}
	s.gallery.Replace(images)
	s.changed()
	return nil
}

// Save stores the surface: a create for a new drawing, an update of the
// editing target otherwise. On success the session returns to a new drawing
// and the gallery is refreshed; the strokes stay on the surface either way.
func (s *Session) Save(ctx context.Context) (state.ImageRef, error) {
	if s.surface == nil {
		return state.ImageRef{}, s.report(&state.ValidationError{Field: "surface", Reason: "no active raster to save"})
	}
	if !s.saving.CompareAndSwap(false, true) {
		return state.ImageRef{}, ErrSaveInProgress
	}
	s.changed()
	defer func() {
		s.saving.Store(false)
		s.changed()
	}()

	target := s.Editing()
	png, err := surface.Encode(s.surface, s.background)
	if err != nil {
		return state.ImageRef{}, s.report(fmt.Errorf("save drawing: %w", err))
	}

	var ref state.ImageRef
	if target == nil {
		ref, err = s.store.Create(ctx, png)
	} else {
		ref, err = s.store.Update(ctx, target.Filename, png)
	}
	if err != nil {
		return state.ImageRef{}, s.report(fmt.Errorf("save drawing: %w", err))
	}

	s.mu.Lock()
	if target != nil && s.editing != nil && *s.editing == *target {
		s.editing = nil
	}
	s.mu.Unlock()

	before := s.gallery.Images()
	if err := s.refresh(ctx); err != nil {
		s.log.WithError(err).Warn("gallery refresh after save failed")
	} else if ref.Filename == "" {
		// the store did not name the new drawing
		if added, ok := s.gallery.Added(before); ok {
			ref = added
		}
	}
	s.log.WithField("filename", ref.Filename).Infof("saved drawing (%d bytes)", len(png))
	return ref, nil
}

// OpenForEdit loads a stored drawing as the surface background and makes it
// the editing target. Nothing changes unless fetch, decode and load all
// succeed while this is still the latest request.
func (s *Session) OpenForEdit(ctx context.Context, ref state.ImageRef) error {
	if s.surface == nil {
		return s.report(&state.ValidationError{Field: "surface", Reason: "no surface to load into"})
	}
	ticket := s.loads.Next()
	rev := s.surface.Revision()
	log := s.log.WithFields(logrus.Fields{"filename": ref.Filename, "ticket": ticket.ID})

	data, err := s.store.Fetch(ctx, ref)
	if err != nil {
		return s.report(fmt.Errorf("open %s: %w", ref.Filename, err))
	}
	img, err := surface.Decode(data)
	if err != nil {
		return s.report(fmt.Errorf("open %s: %w", ref.Filename, err))
	}

	s.mu.Lock()
	if !s.loads.Current(ticket) {
		s.mu.Unlock()
		log.Debug("dropping superseded load")
		return ErrStaleLoad
	}
	if err := s.surface.LoadBackgroundAt(rev, img); err != nil {
		s.mu.Unlock()
		log.WithError(err).Debug("surface changed during load")
		return ErrStaleLoad
	}
	target := ref
	s.editing = &target
	s.mu.Unlock()

	log.Info("editing drawing")
	s.changed()
	return nil
}

// Discard abandons the edit in progress and clears the surface.
func (s *Session) Discard() {
	s.mu.Lock()
	s.editing = nil
	s.loads.Invalidate()
	s.mu.Unlock()

	s.surface.Clear()
	s.changed()
}

// Clear wipes the surface and cancels any pending edit-load. The editing
// target is kept, so the next save still updates it.
func (s *Session) Clear() {
	s.loads.Invalidate()
	s.surface.Clear()
}

// Delete removes a stored drawing. It is allowed while editing, including
// while editing the deleted drawing; the editing target is left as is.
func (s *Session) Delete(ctx context.Context, filename string) error {
	if filename == "" {
		return s.report(&state.ValidationError{Field: "filename", Reason: "must not be empty"})
	}
	if err := s.store.Delete(ctx, filename); err != nil {
		return s.report(fmt.Errorf("delete %s: %w", filename, err))
	}
	s.gallery.Remove(filename)
	s.changed()
	s.log.WithField("filename", filename).Info("deleted drawing")

	if err := s.refresh(ctx); err != nil {
		s.log.WithError(err).Warn("gallery refresh after delete failed")
	}
	return nil
}

func (s *Session) report(err error) error {
	s.log.WithError(err).Warn("operation failed")
	if s.OnError != nil {
		s.OnError(err)
	}
	return err
}

func (s *Session) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}
