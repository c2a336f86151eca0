package git

import (
	"context"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// changedPaths returns the pending paths whose entry differs between older
// and newer. A nil tree stands for the empty tree. While fewer than
// threshold paths are pending only those entries are compared; otherwise
// the full tree diff is computed and filtered. Subtrees are read through
// lookup so that a missing or corrupt tree object fails the step.
func changedPaths(ctx context.Context, older, newer *object.Tree, pending PendingPaths, threshold int, lookup TreeLookup) ([]string, error) {
	if threshold > 0 && pending.Len() < threshold {
		return scopedDiff(older, newer, pending.Paths(), lookup)
	}
	return fullDiff(ctx, older, newer, pending, lookup)
}

// fullDiff diffs the whole trees and keeps the changes touching a pending path.
func fullDiff(ctx context.Context, older, newer *object.Tree, pending PendingPaths, lookup TreeLookup) ([]string, error) {
	// DiffTree drops subtrees it cannot read instead of failing, so every
	// subtree the diff will descend into is loaded here first.
	if err := checkSubtrees(older, newer, "", lookup); err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, older, newer, &object.DiffTreeOptions{})
	if err != nil {
		return nil, backendError("diff trees", err)
	}

	var paths []string
	for _, change := range changes {
		path := change.To.Name
		if path == "" {
			path = change.From.Name
		}
		if path != "" && pending.Contains(path) {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// checkSubtrees loads, on both sides, every directory whose hash differs
// between older and newer, recursing into them. Identical subtrees are
// skipped the same way the diff skips them.
func checkSubtrees(older, newer *object.Tree, prefix string, lookup TreeLookup) error {
	dirs := func(t *object.Tree) map[string]object.TreeEntry {
		out := make(map[string]object.TreeEntry)
		if t == nil {
			return out
		}
		for _, e := range t.Entries {
			if e.Mode == filemode.Dir {
				out[e.Name] = e
			}
		}
		return out
	}
	before, after := dirs(older), dirs(newer)

	names := make(map[string]struct{}, len(before)+len(after))
	for name := range before {
		names[name] = struct{}{}
	}
	for name := range after {
		names[name] = struct{}{}
	}

	for name := range names {
		b, inBefore := before[name]
		a, inAfter := after[name]
		if inBefore && inAfter && a.Hash == b.Hash {
			continue
		}

		path := joinPath(prefix, name)
		var sub [2]*object.Tree
		for i, side := range []struct {
			entry object.TreeEntry
			ok    bool
		}{{b, inBefore}, {a, inAfter}} {
			if !side.ok {
				continue
			}
			t, err := lookup(side.entry.Hash)
			if err != nil {
				return backendError("read tree "+path, err)
			}
			sub[i] = t
		}
		if err := checkSubtrees(sub[0], sub[1], path, lookup); err != nil {
			return err
		}
	}
	return nil
}

// scopedDiff compares the entries for exactly the given paths.
func scopedDiff(older, newer *object.Tree, paths []string, lookup TreeLookup) ([]string, error) {
	var changed []string
	for _, path := range paths {
		before, err := findEntry(older, path, lookup)
		if err != nil {
			return nil, err
		}
		after, err := findEntry(newer, path, lookup)
		if err != nil {
			return nil, err
		}
		if entryChanged(before, after) {
			changed = append(changed, path)
		}
	}
	return changed, nil
}

func entryChanged(before, after *object.TreeEntry) bool {
	if before == nil || after == nil {
		return before != after
	}
	return before.Hash != after.Hash || before.Mode != after.Mode
}

// findEntry returns the entry at path, or nil when the tree has none. The
// path is walked one component at a time: a missing name or a prefix that
// is not a directory means the entry is absent, while a subtree that cannot
// be read is a backend failure.
func findEntry(tree *object.Tree, path string, lookup TreeLookup) (*object.TreeEntry, error) {
	if tree == nil {
		return nil, nil
	}

	parts := strings.Split(path, "/")
	cur := tree
	for i, name := range parts {
		entry := childEntry(cur, name)
		if entry == nil {
			return nil, nil
		}
		if i == len(parts)-1 {
			return entry, nil
		}
		if entry.Mode != filemode.Dir {
			return nil, nil
		}

		sub, err := lookup(entry.Hash)
		if err != nil {
			return nil, backendError("read tree "+strings.Join(parts[:i+1], "/"), err)
		}
		cur = sub
	}
	return nil, nil
}

func childEntry(tree *object.Tree, name string) *object.TreeEntry {
	for i := range tree.Entries {
		if tree.Entries[i].Name == name {
			return &tree.Entries[i]
		}
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
