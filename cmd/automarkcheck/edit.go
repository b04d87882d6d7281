package main

import (
	"github.com/spf13/cobra"

	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/tui"
)

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit settings interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.load(cmd.Context(), nil); err != nil {
				return err
			}
			return tui.Run(cmd.Context(), a.store, a.logger)
		},
	}
}
