//go:build !nolauncher

package main

import (
	"github.com/spf13/cobra"

	"github.com/Morrolan/testr/internal/config"
	"github.com/Morrolan/testr/internal/errors"
	"github.com/Morrolan/testr/internal/tui/launcher"
)

var runLauncher = func(initial config.RunConfig) (config.RunConfig, error) {
	return launcher.Run(initial)
}

func newTUICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [targets...]",
		Short: "Edit targets and filters in an interactive form, then open the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stdoutIsTerminal() {
				return errors.New("testr tui needs an interactive terminal")
			}
			initial, save, err := resolveConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			cfg, err := runLauncher(initial)
			if errors.Is(err, launcher.ErrCanceled) {
				return nil
			}
			if err != nil {
				return err
			}
			return launch(cmd, opts, cfg, save)
		},
	}
}
