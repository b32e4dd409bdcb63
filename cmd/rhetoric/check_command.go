package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rhetoric/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories, credentials, the language model, and yt-dlp",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, offline)

			w := cmd.OutOrStdout()
			colorize := shouldColorize(w)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(w, line)
			}
			if ctx.configPath != "" {
				fmt.Fprintln(w, renderField("Config", ctx.configPath))
			}
			for _, line := range preflightLines(results, colorize) {
				fmt.Fprintln(w, line)
			}
			if preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the language-model reachability check")
	return cmd
}

func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		kind := statusOK
		switch {
		case !r.Passed && r.Optional:
			kind = statusWarn
		case !r.Passed:
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}
