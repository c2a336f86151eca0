package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/modtimes-go/config"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "modtimes",
		Usage:     "Record the last commit time of every file in a Git repository",
		Version:   "1.0.0",
		ArgsUsage: "[repository path]",
		Commands: []*cli.Command{
			ResolveCmd(),
			FilesCmd(),
			InitConfigCmd(),
		},
		Flags:  resolveFlags(),
		Action: defaultAction,
	}
}

// Common flags shared across commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.StringFlag{
			Name:    "rev",
			Aliases: []string{"b", "branch"},
			Usage:   "Revision whose files are resolved (default: HEAD)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Diagnostic log level (debug, info, warn, error, none)",
		},
	}
}

// resolveFlags are the flags of the resolve command and the root action.
func resolveFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.StringFlag{
			Name:  "strategy",
			Usage: "Change detection strategy (tree, log)",
		},
		&cli.IntFlag{
			Name:  "threshold",
			Usage: "Pending path count below which the tree strategy compares only those paths (0 disables)",
		},
		&cli.StringFlag{
			Name:  "policy",
			Usage: "What to do with paths no commit accounts for (placeholder, strict)",
		},
		&cli.StringFlag{
			Name:  "placeholder",
			Usage: "Value written for unresolved paths",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path, \"-\" for stdout, .gz to compress (default: times.json)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (json, csv, ndjson, markdown, console)",
		},
	)
}

// loadConfig loads configuration from file or defaults and applies the
// flags that were set on the command line.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("rev") {
		cfg.Resolve.Rev = c.String("rev")
	}
	if c.IsSet("strategy") {
		cfg.Resolve.Strategy = c.String("strategy")
	}
	if c.IsSet("threshold") {
		cfg.Resolve.PathspecThreshold = c.Int("threshold")
	}
	if c.IsSet("policy") {
		cfg.Resolve.Policy = c.String("policy")
	}
	if c.IsSet("placeholder") {
		cfg.Resolve.Placeholder = c.String("placeholder")
	}
	if c.IsSet("output") {
		cfg.Output.Path = c.String("output")
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}

	// Apply filter overrides from CLI
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}

	return cfg, nil
}

// repoPathArg returns the repository path argument, defaulting to the
// working directory.
func repoPathArg(c *cli.Context) string {
	if c.NArg() > 0 {
		return c.Args().Get(0)
	}
	return "."
}

// defaultAction runs resolve when a repository path is given and shows
// help otherwise.
func defaultAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowAppHelp(c)
	}
	return resolveAction(c)
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
