package git

import (
	"fmt"
	"strings"
	"time"
)

// CommitInfo represents minimal information about a Git commit.
type CommitInfo struct {
	SHA  string
	When time.Time // committer time, in the committer's own offset
}

// ShortSHA returns the abbreviated commit hash used in log lines.
func (c CommitInfo) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// ChangeStep is one step of the reverse-chronological history walk.
// Paths holds only the paths that were still pending when the step was
// produced and whose content changed at Commit.
type ChangeStep struct {
	Commit CommitInfo
	Paths  []string
}

// PendingPaths is the read-only view of the unresolved set that step
// sources use to narrow their change detection.
type PendingPaths interface {
	Contains(path string) bool
	Len() int
	// Paths returns the pending paths in sorted order.
	Paths() []string
}

// Strategy selects the change detection backend.
type Strategy string

const (
	// StrategyTree diffs consecutive commit trees with go-git.
	StrategyTree Strategy = "tree"
	// StrategyLog consumes a streamed `git log --name-only` of the repository.
	StrategyLog Strategy = "log"
)

// ParseStrategy converts a user supplied strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tree", "diff", "snapshot":
		return StrategyTree, nil
	case "log", "cli", "stream":
		return StrategyLog, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (expected tree or log)", s)
	}
}

// DefaultPathspecThreshold is the pending-set size below which the tree
// strategy compares only the pending paths instead of diffing whole trees.
const DefaultPathspecThreshold = 50

// WalkOptions configures a step source.
type WalkOptions struct {
	RepoPath string
	Rev      string // starting revision; empty means HEAD
	// PathspecThreshold enables the path-scoped diff while fewer paths than
	// this are pending. Zero always diffs whole trees.
	PathspecThreshold int
}

func (o WalkOptions) revision() string {
	rev := strings.TrimSpace(o.Rev)
	if rev == "" {
		return "HEAD"
	}
	return rev
}
