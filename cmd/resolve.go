package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/modtimes-go/internal/output"
	"github.com/masmgr/modtimes-go/internal/resolve"
)

// ResolveCmd returns the resolve command.
func ResolveCmd() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Aliases:   []string{"r"},
		Usage:     "Resolve the last modification time of every file at a revision",
		ArgsUsage: "[repository path]",
		Flags:     resolveFlags(),
		Action:    resolveAction,
	}
}

func resolveAction(c *cli.Context) error {
	start := time.Now()

	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer ctx.Logger.Sync() //nolint:errcheck

	policy, err := resolve.ParsePolicy(ctx.Config.Resolve.Policy)
	if err != nil {
		return err
	}

	statusLine("Resolving %v repo", ctx.RepoPath)
	if !ctx.HasFiles() {
		ctx.PrintNoFilesMessage()
	}

	src, err := ctx.NewStepSource()
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	result, err := resolve.Run(runCtx, ctx.Paths, src, resolve.Options{
		Policy: policy,
		Logger: ctx.Logger,
	})
	if err != nil {
		var unresolved *resolve.UnresolvedPathsError
		if errors.As(err, &unresolved) {
			return err
		}
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted: %w", err)
		}
		return fmt.Errorf("failed to walk history: %w", err)
	}

	report := &output.ModTimesReport{
		RepoPath:    ctx.RepoPath,
		Head:        ctx.Snapshot.Commit.SHA,
		Strategy:    ctx.Config.Resolve.Strategy,
		GeneratedAt: time.Now(),
		Resolved:    result.Resolved,
		Unresolved:  result.Unresolved,
		Steps:       result.Steps,
	}
	if err := writeReport(ctx, report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if !result.Complete() {
		warnLine("%d file(s) had no commit in history and were written with a placeholder",
			len(result.Unresolved))
	}
	statusLine("Resolved %d file(s) over %d commit(s)", len(result.Resolved), result.Steps)
	fmt.Fprintf(os.Stderr, "Completed in %s\n", time.Since(start))
	return nil
}
