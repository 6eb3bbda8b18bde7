//go:build nolauncher

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const launcherMissing = "The interactive launcher is not part of this build. Rebuild without the nolauncher tag to use it:\n  go install github.com/Morrolan/testr/cmd/testr@latest"

func newTUICmd(_ *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive launcher (not available in this build)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.ErrOrStderr(), launcherMissing)
			return errReported
		},
	}
}
