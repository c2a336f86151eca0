package cmd

import (
	"bufio"
	"os"

	"github.com/urfave/cli/v2"
)

// FilesCmd returns the files command, which prints the paths a resolve run
// would track.
func FilesCmd() *cli.Command {
	return &cli.Command{
		Name:      "files",
		Usage:     "List the files of the starting snapshot after filters",
		ArgsUsage: "[repository path]",
		Flags:     commonFlags(),
		Action:    filesAction,
	}
}

func filesAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer ctx.Logger.Sync() //nolint:errcheck

	w := bufio.NewWriter(os.Stdout)
	for _, p := range ctx.Paths {
		if _, err := w.WriteString(p + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}
