// Package resolve attributes a last-modification time to every tracked
// path by driving a history step source until all paths are accounted for.
package resolve

import (
	"sort"
	"time"
)

// Tracker owns the shrinking set of unresolved paths and the growing map
// of resolved ones. It is not safe for concurrent use; a run drives it
// from a single goroutine.
type Tracker struct {
	unresolved map[string]struct{}
	resolved   map[string]time.Time
}

// NewTracker starts tracking paths. Duplicates are collapsed.
func NewTracker(paths []string) *Tracker {
	t := &Tracker{
		unresolved: make(map[string]struct{}, len(paths)),
		resolved:   make(map[string]time.Time, len(paths)),
	}
	for _, p := range paths {
		t.unresolved[p] = struct{}{}
	}
	return t
}

// Observe resolves path to when if it is still unresolved and reports
// whether it did. Already resolved and untracked paths are left alone.
func (t *Tracker) Observe(path string, when time.Time) bool {
	if _, ok := t.unresolved[path]; !ok {
		return false
	}
	delete(t.unresolved, path)
	t.resolved[path] = when
	return true
}

// IsComplete reports whether every tracked path has been resolved.
func (t *Tracker) IsComplete() bool {
	return len(t.unresolved) == 0
}

// Contains reports whether path is still unresolved.
func (t *Tracker) Contains(path string) bool {
	_, ok := t.unresolved[path]
	return ok
}

// Len returns the number of unresolved paths.
func (t *Tracker) Len() int {
	return len(t.unresolved)
}

// Paths returns the unresolved paths, sorted.
func (t *Tracker) Paths() []string {
	out := make([]string, 0, len(t.unresolved))
	for p := range t.unresolved {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Resolved returns a copy of the resolution map.
func (t *Tracker) Resolved() map[string]time.Time {
	out := make(map[string]time.Time, len(t.resolved))
	for p, when := range t.resolved {
		out[p] = when
	}
	return out
}
