package session

import (
	"os"
	"strings"

	"github.com/jamesdabbs/guard/plugin"
)

// NormalizeBatch rewrites each path in the batch relative to the first watch
// root containing it. Roots are checked in registration order, so a tie
// between overlapping roots goes to the earlier one. Paths under no root are
// returned unchanged; they may already be relative. The function is pure.
func NormalizeBatch(batch plugin.Batch, roots []string) plugin.Batch {
	return plugin.Batch{
		Modified: normalizeAll(batch.Modified, roots),
		Added:    normalizeAll(batch.Added, roots),
		Removed:  normalizeAll(batch.Removed, roots),
	}
}

func normalizeAll(paths []string, roots []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = normalizePath(p, roots)
	}
	return out
}

// normalizePath strips the first matching root from the path. A root matches
// only on a directory boundary: the path must equal the root or start with
// root plus a separator, so root "/a" does not claim "/abc".
func normalizePath(path string, roots []string) string {
	sep := string(os.PathSeparator)
	for _, root := range roots {
		if path == root {
			return ""
		}
		if strings.HasPrefix(path, root+sep) {
			return path[len(root)+len(sep):]
		}
	}
	return path
}
