package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/config"
	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/logging"
)

// app holds the state shared by all subcommands of one invocation.
type app struct {
	settingsPath string
	logDir       string
	verbose      bool
	jsonOutput   bool

	logger *logging.Logger
	store  *config.Store
}

func defaultSettingsPath() string {
	if p := os.Getenv("AUTOMARKCHECK_SETTINGS"); p != "" {
		return p
	}
	return config.FileName
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "automarkcheck",
		Short:         "Manage AutoMarkCheck settings",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelWarning
			if a.verbose {
				level = logging.LevelDebug
			}
			var console io.Writer = cmd.ErrOrStderr()
			if cmd.Name() == "edit" {
				// The editor owns the terminal; it shows log entries itself.
				console = io.Discard
				if !a.verbose {
					level = logging.LevelInfo
				}
			}
			a.logger = logging.New(console, level)
			a.store = config.NewStore(a.settingsPath, a.logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.settingsPath, "file", "f", defaultSettingsPath(), "settings file")
	rootCmd.PersistentFlags().StringVar(&a.logDir, "log-dir", os.Getenv("AUTOMARKCHECK_LOG_DIR"), "directory for daily log files (empty: console only)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newSetCmd(a))
	rootCmd.AddCommand(newResetCmd(a))
	rootCmd.AddCommand(newPathCmd(a))
	rootCmd.AddCommand(newEditCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))

	return rootCmd
}

// load reads the settings and, when a log directory is configured, switches
// logging over to the daily file using the loaded level and retention.
func (a *app) load(ctx context.Context, console io.Writer) (*config.Settings, error) {
	settings, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if a.logDir == "" {
		if !a.verbose {
			a.logger.SetLevel(settings.LogLevel)
		}
		return settings, nil
	}

	opts := settings.LogOptions(a.logDir)
	opts.Console = console
	if a.verbose {
		opts.Level = logging.LevelDebug
	}
	fileLogger, err := logging.Open(opts)
	if err != nil {
		return nil, err
	}
	a.logger.Close()
	a.logger = fileLogger
	a.store = config.NewStore(a.settingsPath, fileLogger)
	return settings, nil
}

// execute runs one invocation of the command line. The logger, and the log
// file it may have opened, is closed however the command finishes.
func (a *app) execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	defer a.close()

	cmd := newRootCmd(a)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (a *app) close() {
	if a.logger != nil {
		a.logger.Close()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := (&app{}).execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
