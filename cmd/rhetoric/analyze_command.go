package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rhetoric/internal/pipeline"
)

type analyzeFlags struct {
	forceExtract  bool
	forceAnalysis bool
	jsonOutput    bool
}

func (f *analyzeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.forceExtract, "force-extract", "E", false, "Fetch the transcript again even if one is stored (implies re-analysis)")
	cmd.Flags().BoolVarP(&f.forceAnalysis, "force-analysis", "A", false, "Classify again even if a verdict is stored")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Emit the outcome as JSON")
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var flags analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze <url-or-id>",
		Short: "Fetch a transcript if needed and classify it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, ctx, args[0], flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runAnalyze(cmd *cobra.Command, ctx *commandContext, input string, flags analyzeFlags) error {
	return ctx.withPipeline(func(p *pipeline.Pipeline) error {
		out, err := p.Run(cmd.Context(), input, pipeline.Options{
			ForceExtract:  flags.forceExtract,
			ForceAnalysis: flags.forceAnalysis,
		})
		if err != nil {
			return err
		}
		if flags.jsonOutput {
			return writeJSON(cmd, analyzeJSONFromOutcome(out))
		}
		w := cmd.OutOrStdout()
		fmt.Fprint(w, renderOutcome(out, shouldColorize(w)))
		return nil
	})
}
