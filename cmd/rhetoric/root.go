package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var analyze analyzeFlags

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "rhetoric [url-or-id]",
		Short: "Classify YouTube transcripts for incitement to genocide",
		Long: "rhetoric fetches a YouTube transcript, asks a language model whether it contains\n" +
			"incitement to genocide, and stores both the transcript and the verdict.\n\n" +
			"With a single argument it behaves like `rhetoric analyze`.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			} else {
				input = promptForInput(cmd)
			}
			if strings.TrimSpace(input) == "" {
				return cmd.Help()
			}
			return runAnalyze(cmd, ctx, input, analyze)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	analyze.register(rootCmd)

	rootCmd.AddCommand(newAnalyzeCommand(ctx))
	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// promptForInput asks once on stdin. EOF or a blank line yields "".
func promptForInput(cmd *cobra.Command) string {
	fmt.Fprint(cmd.OutOrStdout(), "YouTube URL or video id: ")
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(line)
}
