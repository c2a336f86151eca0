package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/masmgr/modtimes-go/internal/git"
)

var _ git.PendingPaths = (*Tracker)(nil)

// Policy decides what a run does when history is exhausted before every
// path is resolved.
type Policy string

const (
	// PolicyPlaceholder keeps the leftover paths in Result.Unresolved and
	// lets the caller write them out with a placeholder value.
	PolicyPlaceholder Policy = "placeholder"
	// PolicyStrict fails the run with *UnresolvedPathsError.
	PolicyStrict Policy = "strict"
)

// ParsePolicy converts a user supplied policy name.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "placeholder", "warn", "lenient":
		return PolicyPlaceholder, nil
	case "strict", "fail", "error":
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown policy %q (expected placeholder or strict)", s)
	}
}

// UnresolvedPathsError reports paths no commit in the walked history
// accounted for.
type UnresolvedPathsError struct {
	Paths []string
}

func (e *UnresolvedPathsError) Error() string {
	const shown = 5
	list := e.Paths
	suffix := ""
	if len(list) > shown {
		list = list[:shown]
		suffix = fmt.Sprintf(", ... (%d more)", len(e.Paths)-shown)
	}
	return fmt.Sprintf("%d path(s) not modified by any commit in history: %s%s",
		len(e.Paths), strings.Join(list, ", "), suffix)
}

// Options configures a run.
type Options struct {
	Policy Policy
	Logger *zap.Logger
}

// Result is the outcome of a run.
type Result struct {
	Resolved   map[string]time.Time
	Unresolved []string // sorted; empty when history accounted for every path
	Steps      int
}

// Complete reports whether every tracked path was resolved.
func (r *Result) Complete() bool {
	return len(r.Unresolved) == 0
}

// Run walks src until every path is resolved or history is exhausted.
// The source is closed on every return path.
func Run(ctx context.Context, paths []string, src git.StepSource, opts Options) (res *Result, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			res, err = nil, cerr
		}
	}()

	tracker := NewTracker(paths)
	steps := 0

	for !tracker.IsComplete() {
		step, err := src.Next(ctx, tracker)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		steps++

		matched := 0
		for _, p := range step.Paths {
			if tracker.Observe(p, step.Commit.When) {
				matched++
			}
		}
		if matched > 0 {
			logger.Debug("resolved paths",
				zap.String("commit", step.Commit.ShortSHA()),
				zap.Int("matched", matched),
				zap.Int("remaining", tracker.Len()),
			)
		}
	}

	result := &Result{
		Resolved:   tracker.Resolved(),
		Unresolved: tracker.Paths(),
		Steps:      steps,
	}

	if !result.Complete() {
		if opts.Policy == PolicyStrict {
			return nil, &UnresolvedPathsError{Paths: result.Unresolved}
		}
		logger.Warn("history exhausted with unresolved paths",
			zap.Int("count", len(result.Unresolved)),
			zap.Strings("paths", result.Unresolved),
		)
	}

	logger.Info("resolution finished",
		zap.Int("steps", steps),
		zap.Int("resolved", len(result.Resolved)),
		zap.Int("unresolved", len(result.Unresolved)),
	)
	return result, nil
}
