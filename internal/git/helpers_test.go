package git

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// testRepo builds a throwaway repository through a go-git worktree.
type testRepo struct {
	t   *testing.T
	dir string
	wt  *gogit.Worktree
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &testRepo{t: t, dir: dir, wt: wt}
}

func (r *testRepo) write(rel, content string) {
	r.t.Helper()
	full := filepath.Join(r.dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("WriteFile: %v", err)
	}
	if _, err := r.wt.Add(rel); err != nil {
		r.t.Fatalf("Add: %v", err)
	}
}

func (r *testRepo) remove(rel string) {
	r.t.Helper()
	if _, err := r.wt.Remove(rel); err != nil {
		r.t.Fatalf("Remove: %v", err)
	}
}

func (r *testRepo) commit(msg string, when time.Time) string {
	r.t.Helper()
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: when}
	hash, err := r.wt.Commit(msg, &gogit.CommitOptions{
		Author:            sig,
		Committer:         sig,
		AllowEmptyCommits: true,
	})
	if err != nil {
		r.t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

// resetTo moves the current branch, index and worktree to sha.
func (r *testRepo) resetTo(sha string) {
	r.t.Helper()
	err := r.wt.Reset(&gogit.ResetOptions{Commit: plumbing.NewHash(sha), Mode: gogit.HardReset})
	if err != nil {
		r.t.Fatalf("Reset: %v", err)
	}
}

// merge commits the staged tree with explicit parents, mainline first.
func (r *testRepo) merge(msg string, when time.Time, parents ...string) string {
	r.t.Helper()
	hashes := make([]plumbing.Hash, len(parents))
	for i, p := range parents {
		hashes[i] = plumbing.NewHash(p)
	}
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: when}
	hash, err := r.wt.Commit(msg, &gogit.CommitOptions{
		Author:    sig,
		Committer: sig,
		Parents:   hashes,
	})
	if err != nil {
		r.t.Fatalf("Commit merge: %v", err)
	}
	return hash.String()
}

// deleteObject removes a loose object from the object database.
func (r *testRepo) deleteObject(hash plumbing.Hash) {
	r.t.Helper()
	h := hash.String()
	if err := os.Remove(filepath.Join(r.dir, ".git", "objects", h[:2], h[2:])); err != nil {
		r.t.Fatalf("remove object %s: %v", h, err)
	}
}

func (r *testRepo) open() *Repository {
	r.t.Helper()
	repo, err := OpenRepository(r.dir)
	if err != nil {
		r.t.Fatalf("OpenRepository: %v", err)
	}
	return repo
}

func treeOf(t *testing.T, repo *Repository, sha string) *object.Tree {
	t.Helper()
	c, err := repo.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		t.Fatalf("CommitObject: %v", err)
	}
	tree, err := c.Tree()
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	return tree
}

// pathSet is a minimal PendingPaths for exercising step sources directly.
type pathSet map[string]struct{}

func newPathSet(paths ...string) pathSet {
	s := make(pathSet, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

func (s pathSet) Contains(path string) bool {
	_, ok := s[path]
	return ok
}

func (s pathSet) Len() int { return len(s) }

func (s pathSet) Paths() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

var testZone = time.FixedZone("", 2*60*60)

func at(hour int) time.Time {
	return time.Date(2024, 3, 1, hour, 0, 0, 0, testZone)
}
