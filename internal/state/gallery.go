package state

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ImageRef identifies a stored drawing.
type ImageRef struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// NewImageRef builds a reference whose Filename is the last segment of path.
func NewImageRef(path string) ImageRef {
	return ImageRef{Path: path, Filename: FilenameOf(path)}
}

// FilenameOf returns the part of path after the final '/'.
func FilenameOf(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Gallery is the ordered listing of stored drawings, as last reported by the
// drawing store.
type Gallery struct {
	mu     sync.RWMutex
	images []ImageRef
	log    logrus.FieldLogger
}

// NewGallery creates an empty gallery.
func NewGallery(log logrus.FieldLogger) *Gallery {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gallery{log: log.WithField("component", "gallery")}
}

// Replace swaps in a freshly fetched listing.
func (g *Gallery) Replace(images []ImageRef) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.images = append([]ImageRef(nil), images...)
	g.log.Debugf("listing replaced: %d images", len(images))
}

// Remove drops every entry with the given filename and reports whether any
// entry was removed.
func (g *Gallery) Remove(filename string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	kept := g.images[:0:0]
	for _, img := range g.images {
		if img.Filename != filename {
			kept = append(kept, img)
		}
	}
	removed := len(kept) != len(g.images)
	g.images = kept
	if removed {
		g.log.Debugf("removed %s", filename)
	}
	return removed
}

// Images returns a copy of the listing in store order.
func (g *Gallery) Images() []ImageRef {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]ImageRef(nil), g.images...)
}

// Added returns the last entry whose filename is not in before. It names a
// drawing the store created without reporting its filename.
func (g *Gallery) Added(before []ImageRef) (ImageRef, bool) {
	known := make(map[string]bool, len(before))
	for _, img := range before {
		known[img.Filename] = true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for i := len(g.images) - 1; i >= 0; i-- {
		if !known[g.images[i].Filename] {
			return g.images[i], true
		}
	}
	return ImageRef{}, false
}
