package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/masmgr/modtimes-go/config"
	"github.com/masmgr/modtimes-go/internal/git"
	"github.com/masmgr/modtimes-go/internal/logging"
	"github.com/masmgr/modtimes-go/internal/output"
)

// CommandContext holds common state for command execution.
// It encapsulates the shared setup logic across all commands.
type CommandContext struct {
	Config   *config.Config
	Logger   *zap.Logger
	RepoPath string
	Repo     *git.Repository
	Snapshot *git.Snapshot
	Paths    []string // head snapshot paths after include/exclude filters
}

// NewCommandContext creates a context from CLI flags.
// It loads configuration, opens the repository, enumerates the starting
// snapshot and applies the path filters.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}

	repoPath := repoPathArg(c)
	repo, err := git.OpenRepository(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	snapshot, err := repo.HeadSnapshot(cfg.Resolve.Rev)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	filter := git.PathFilter{Include: cfg.Filters.Include, Exclude: cfg.Filters.Exclude}
	paths, err := filter.Apply(snapshot.Paths)
	if err != nil {
		return nil, fmt.Errorf("invalid path filter: %w", err)
	}

	logger.Info("snapshot enumerated",
		zap.String("repo", repoPath),
		zap.String("head", snapshot.Commit.SHA),
		zap.Int("files", len(snapshot.Paths)),
		zap.Int("selected", len(paths)),
	)

	return &CommandContext{
		Config:   cfg,
		Logger:   logger,
		RepoPath: repoPath,
		Repo:     repo,
		Snapshot: snapshot,
		Paths:    paths,
	}, nil
}

// HasFiles returns true if the snapshot has files left after filtering.
func (ctx *CommandContext) HasFiles() bool {
	return len(ctx.Paths) > 0
}

// PrintNoFilesMessage prints a message when the snapshot has no files.
func (ctx *CommandContext) PrintNoFilesMessage() {
	if ctx.Snapshot.Empty() {
		statusLine("Repository has no commits; writing an empty result.")
		return
	}
	statusLine("No files matched in %s; writing an empty result.", ctx.Snapshot.Commit.ShortSHA())
}

// WalkOptions builds the step source options from configuration.
func (ctx *CommandContext) WalkOptions() git.WalkOptions {
	rev := ctx.Config.Resolve.Rev
	if !ctx.Snapshot.Empty() {
		// Pin the walk to the commit the snapshot was taken from.
		rev = ctx.Snapshot.Commit.SHA
	}
	return git.WalkOptions{
		RepoPath:          ctx.RepoPath,
		Rev:               rev,
		PathspecThreshold: ctx.Config.Resolve.PathspecThreshold,
	}
}

// NewStepSource builds the step source for the configured strategy.
func (ctx *CommandContext) NewStepSource() (git.StepSource, error) {
	strategy, err := git.ParseStrategy(ctx.Config.Resolve.Strategy)
	if err != nil {
		return nil, err
	}

	opts := ctx.WalkOptions()
	switch strategy {
	case git.StrategyLog:
		return git.NewLogStream(opts), nil
	default:
		return ctx.Repo.NewTreeWalker(ctx.Snapshot, opts), nil
	}
}

// OutputOptions creates OutputOptions from the merged configuration.
func (ctx *CommandContext) OutputOptions() output.OutputOptions {
	return output.OutputOptions{
		Format:      output.ParseFormat(ctx.Config.Output.Format),
		OutputPath:  ctx.Config.Output.Path,
		Placeholder: ctx.Config.Resolve.Placeholder,
	}
}
