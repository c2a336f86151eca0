package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// TreeLookup loads a tree object by hash.
type TreeLookup func(plumbing.Hash) (*object.Tree, error)

// Repository wraps an opened go-git repository.
type Repository struct {
	repo *git.Repository
}

// OpenRepository opens the repository rooted at path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, path)
		}
		return nil, backendError("open repository", err)
	}
	return &Repository{repo: repo}, nil
}

// Snapshot is the starting state of a run: the head commit and every file
// path in its tree.
type Snapshot struct {
	Commit CommitInfo
	Paths  []string

	commit *object.Commit
	tree   *object.Tree
}

// Empty reports whether the snapshot has no commit behind it (an unborn
// branch in a freshly initialized repository).
func (s *Snapshot) Empty() bool {
	return s.commit == nil
}

// HeadSnapshot resolves rev (HEAD when empty), loads its tree and lists
// every file in it.
func (r *Repository) HeadSnapshot(rev string) (*Snapshot, error) {
	opts := WalkOptions{Rev: rev}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(opts.revision()))
	if err != nil {
		if opts.revision() == "HEAD" && errors.Is(err, plumbing.ErrReferenceNotFound) {
			return &Snapshot{}, nil
		}
		return nil, backendError("resolve "+opts.revision(), err)
	}

	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, backendError("load head commit", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, backendError("load head tree", err)
	}

	paths, err := ListFiles(tree, r.repo.TreeObject)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Commit: commitInfo(commit),
		Paths:  paths,
		commit: commit,
		tree:   tree,
	}, nil
}

// ListFiles returns the slash-joined path of every file entry reachable
// from tree. Subtrees are loaded through lookup; entries that are neither
// files nor directories are skipped.
func ListFiles(tree *object.Tree, lookup TreeLookup) ([]string, error) {
	var paths []string
	if err := collectFiles(tree, "", lookup, &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

func collectFiles(tree *object.Tree, prefix string, lookup TreeLookup, paths *[]string) error {
	for _, entry := range tree.Entries {
		name := entry.Name
		if prefix != "" {
			name = prefix + "/" + entry.Name
		}

		switch classifyEntry(entry.Mode) {
		case entryFile:
			*paths = append(*paths, name)
		case entryDir:
			sub, err := lookup(entry.Hash)
			if err != nil {
				return backendError("read tree "+name, err)
			}
			if err := collectFiles(sub, name, lookup, paths); err != nil {
				return err
			}
		}
	}
	return nil
}

func commitInfo(c *object.Commit) CommitInfo {
	return CommitInfo{
		SHA:  c.Hash.String(),
		When: c.Committer.When,
	}
}
