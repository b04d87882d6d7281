package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/config"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [field...]",
		Short: "Show the current settings",
		Long:  "Show the current settings. The settings file is created with defaults if it does not exist.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), settings, args, a.jsonOutput)
		},
	}
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME=VALUE...",
		Short: "Change one or more settings",
		Example: `  automarkcheck set GradeCheckInterval=600
  automarkcheck set LogLevel=DEBUG CoursesPublic=true`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			for _, pair := range args {
				if err := settings.Assign(pair); err != nil {
					return err
				}
			}
			if err := a.store.Save(cmd.Context(), settings); err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), settings, nil, a.jsonOutput)
		},
	}
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Overwrite the settings file with defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := config.DefaultSettings()
			if err := a.store.Save(cmd.Context(), settings); err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), settings, nil, a.jsonOutput)
		},
	}
}

func newPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the absolute path of the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(a.store.Path())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), abs)
			return nil
		},
	}
}

func printSettings(w io.Writer, settings *config.Settings, names []string, asJSON bool) error {
	if len(names) == 0 {
		for _, f := range config.Fields() {
			names = append(names, f.Name)
		}
	} else if asJSON {
		values := make(map[string]string, len(names))
		for _, name := range names {
			v, err := settings.Get(name)
			if err != nil {
				return err
			}
			f, _ := config.LookupField(name)
			values[f.Name] = v
		}
		return writeJSON(w, values)
	}

	if asJSON {
		return writeJSON(w, settings)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range names {
		v, err := settings.Get(name)
		if err != nil {
			return err
		}
		f, _ := config.LookupField(name)
		fmt.Fprintf(tw, "%s\t%s\n", f.Name, v)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
