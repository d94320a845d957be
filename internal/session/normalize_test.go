package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamesdabbs/guard/plugin"
)

func TestNormalizeBatchStripsRoot(t *testing.T) {
	batch := plugin.Batch{Modified: []string{"/watch/src/a.rb"}}
	out := NormalizeBatch(batch, []string{"/watch"})
	assert.Equal(t, []string{"src/a.rb"}, out.Modified)
	assert.Empty(t, out.Added)
	assert.Empty(t, out.Removed)
}

func TestNormalizeFirstRootWins(t *testing.T) {
	// With roots ["/a/b", "/a"], a path under /a/b strips /a/b/ specifically.
	out := normalizePath("/a/b/c.go", []string{"/a/b", "/a"})
	assert.Equal(t, "c.go", out)

	// Reversed registration order gives the broader root first.
	out = normalizePath("/a/b/c.go", []string{"/a", "/a/b"})
	assert.Equal(t, "b/c.go", out)
}

func TestNormalizeDirectoryBoundary(t *testing.T) {
	// /ab is not under root /a
	out := normalizePath("/ab/c.go", []string{"/a"})
	assert.Equal(t, "/ab/c.go", out)
}

func TestNormalizePathOutsideRootsUnchanged(t *testing.T) {
	out := normalizePath("already/relative.go", []string{"/watch"})
	assert.Equal(t, "already/relative.go", out)

	out = normalizePath("/elsewhere/x.go", []string{"/watch"})
	assert.Equal(t, "/elsewhere/x.go", out)
}

func TestNormalizePathEqualToRoot(t *testing.T) {
	assert.Equal(t, "", normalizePath("/watch", []string{"/watch"}))
}

func TestNormalizeEmptyBatch(t *testing.T) {
	out := NormalizeBatch(plugin.Batch{}, []string{"/watch"})
	assert.True(t, out.Empty())
}

func TestNormalizeAllCategories(t *testing.T) {
	batch := plugin.Batch{
		Modified: []string{"/watch/a"},
		Added:    []string{"/watch/b"},
		Removed:  []string{"/watch/c"},
	}
	out := NormalizeBatch(batch, []string{"/watch"})
	assert.Equal(t, []string{"a"}, out.Modified)
	assert.Equal(t, []string{"b"}, out.Added)
	assert.Equal(t, []string{"c"}, out.Removed)
}
