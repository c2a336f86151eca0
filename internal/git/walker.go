package git

import (
	"context"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// TreeWalker walks the first-parent chain from the head commit and detects
// changes by comparing each commit's tree with its first parent's tree.
// A merge is therefore credited with everything it brought into the
// mainline, and side-branch commits are never visited.
type TreeWalker struct {
	repo      *git.Repository
	head      *Snapshot
	threshold int

	newer     *object.Commit
	newerTree *object.Tree
	started   bool
	done      bool
}

// NewTreeWalker creates a walker starting at the given head snapshot.
func (r *Repository) NewTreeWalker(head *Snapshot, opts WalkOptions) *TreeWalker {
	return &TreeWalker{
		repo:      r.repo,
		head:      head,
		threshold: opts.PathspecThreshold,
	}
}

func (w *TreeWalker) start() {
	w.started = true
	if w.head == nil || w.head.Empty() {
		w.done = true
		return
	}
	// The head commit is the first reference the older commits are
	// compared against.
	w.newer = w.head.commit
	w.newerTree = w.head.tree
}

// Next compares the current reference commit against its first parent and
// returns the pending paths that differ, attributed to the reference.
func (w *TreeWalker) Next(ctx context.Context, pending PendingPaths) (*ChangeStep, error) {
	if !w.started {
		w.start()
	}
	if w.done {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		older     *object.Commit
		olderTree *object.Tree
	)
	if w.newer.NumParents() == 0 {
		// The reference is the root commit: everything in it was added there.
		w.done = true
	} else {
		var err error
		older, err = w.newer.Parent(0)
		if err != nil {
			return nil, backendError("load parent of "+w.newer.Hash.String(), err)
		}
		olderTree, err = older.Tree()
		if err != nil {
			return nil, backendError("load tree "+older.Hash.String(), err)
		}
	}

	paths, err := changedPaths(ctx, olderTree, w.newerTree, pending, w.threshold, w.repo.TreeObject)
	if err != nil {
		return nil, err
	}

	step := &ChangeStep{Commit: commitInfo(w.newer), Paths: paths}
	w.newer, w.newerTree = older, olderTree
	return step, nil
}

// Close ends the walk. The walker holds no iterator or process, so it only
// marks itself exhausted.
func (w *TreeWalker) Close() error {
	w.done = true
	w.newer, w.newerTree = nil, nil
	return nil
}
