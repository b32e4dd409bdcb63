package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rhetoric/internal/pipeline"
	"rhetoric/internal/transcript"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "extract <url-or-id>",
		Short: "Fetch and store a transcript without classifying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(p *pipeline.Pipeline) error {
				out, err := p.Extract(cmd.Context(), args[0], overwrite)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, extractJSONFromOutcome(out))
				}
				w := cmd.OutOrStdout()
				colorize := shouldColorize(w)
				for _, line := range renderSectionHeader("Transcript", colorize) {
					fmt.Fprintln(w, line)
				}
				for _, line := range transcriptLines(out.Transcript) {
					fmt.Fprintln(w, line)
				}
				switch {
				case out.TranscriptSource == transcript.ProvenanceCache:
					fmt.Fprintln(w, renderStatusLine("Status", statusInfo, "already stored; use --overwrite to fetch again", colorize))
				case out.Changed:
					fmt.Fprintln(w, renderStatusLine("Status", statusOK, "stored", colorize))
				default:
					fmt.Fprintln(w, renderStatusLine("Status", statusOK, "fetched again; text unchanged", colorize))
				}
				for _, warning := range out.Warnings {
					fmt.Fprintln(w, renderStatusLine("Warning", statusWarn, warning, colorize))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&overwrite, "overwrite", "o", false, "Fetch again even if a transcript is stored")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the transcript summary as JSON")
	return cmd
}
