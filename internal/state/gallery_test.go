package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilenameOf(t *testing.T) {
	assert.Equal(t, "a.png", FilenameOf("/uploads/a.png"))
	assert.Equal(t, "a.png", FilenameOf("a.png"))
	assert.Equal(t, "", FilenameOf("/uploads/"))
}

func TestGalleryRemoveKeepsOrder(t *testing.T) {
	g := NewGallery(nil)
	g.Replace([]ImageRef{
		NewImageRef("/uploads/a.png"),
		NewImageRef("/uploads/b.png"),
		NewImageRef("/uploads/c.png"),
	})

	assert.True(t, g.Remove("b.png"))
	assert.False(t, g.Remove("missing.png"))
	assert.Equal(t, []ImageRef{
		NewImageRef("/uploads/a.png"),
		NewImageRef("/uploads/c.png"),
	}, g.Images())
}

func TestGalleryAdded(t *testing.T) {
	g := NewGallery(nil)
	before := []ImageRef{NewImageRef("/uploads/a.png"), NewImageRef("/uploads/b.png")}
	g.Replace(before)
	_, ok := g.Added(before)
	assert.False(t, ok)

	g.Replace(append(before, NewImageRef("/uploads/c.png")))
	got, ok := g.Added(before)
	require.True(t, ok)
	assert.Equal(t, NewImageRef("/uploads/c.png"), got)
}

func TestGalleryImagesIsACopy(t *testing.T) {
	g := NewGallery(nil)
	in := []ImageRef{NewImageRef("/uploads/a.png")}
	g.Replace(in)
	in[0].Path = "changed"

	out := g.Images()
	out[0].Filename = "changed"
	assert.Equal(t, NewImageRef("/uploads/a.png"), g.Images()[0])
}
