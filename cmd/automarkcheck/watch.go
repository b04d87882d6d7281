package main

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/config"
	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/logging"
)

// pruneInterval is how often a long-running watch removes expired log files.
const pruneInterval = time.Hour

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the settings every time the file changes",
		Long: "Print the settings every time the file changes. With a log directory, " +
			"expired log files are pruned while watching using the current MaxLogAgeDays.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := printSettings(out, settings, nil, a.jsonOutput); err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			changes, err := a.store.Watch(ctx)
			if err != nil {
				return err
			}

			var maxAge atomic.Int64
			maxAge.Store(int64(settings.MaxLogAgeDays))

			g.Go(func() error {
				for c := range changes {
					if c.Err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", c.Err)
						continue
					}
					maxAge.Store(int64(c.Settings.MaxLogAgeDays))
					if err := printChange(out, c.Settings, a.jsonOutput); err != nil {
						return err
					}
				}
				return nil
			})

			if a.logDir != "" {
				g.Go(func() error {
					a.pruneLogs(ctx, pruneInterval, func() int { return int(maxAge.Load()) })
					return nil
				})
			}
			return g.Wait()
		},
	}
}

func printChange(w io.Writer, settings *config.Settings, asJSON bool) error {
	if !asJSON {
		fmt.Fprintf(w, "\n# %s\n", time.Now().Format(time.DateTime))
	}
	return printSettings(w, settings, nil, asJSON)
}

// pruneLogs removes expired files from the log directory every interval until
// ctx is done.
func (a *app) pruneLogs(ctx context.Context, interval time.Duration, maxAgeDays func() int) {
	const source = "AutoMarkCheck.Logging.Prune"

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := logging.Prune(a.logDir, maxAgeDays(), now)
			for _, name := range removed {
				a.logger.Log(logging.LevelDebug, source, "Removed expired log file "+name+".", nil)
			}
			if err != nil {
				a.logger.Log(logging.LevelWarning, source, "Failed to remove expired log files.", err)
			}
		}
	}
}
