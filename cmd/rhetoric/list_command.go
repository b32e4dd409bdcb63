package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rhetoric/internal/config"
	"rhetoric/internal/store"
	"rhetoric/internal/textutil"
)

const listTitleWidth = 48

func newListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored transcripts, newest first, with their verdicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must be zero or positive, got %d", limit)
			}
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				summaries, err := st.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, listJSONFrom(summaries))
				}
				out := cmd.OutOrStdout()
				if len(summaries) == 0 {
					fmt.Fprintln(out, "No transcripts stored yet. Run `rhetoric analyze <url>` to add one.")
					return nil
				}
				fmt.Fprintln(out, renderTable(listColumns(shouldColorize(out)), listRows(summaries)))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum rows to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit rows as JSON")
	return cmd
}

func listColumns(colorize bool) []tableColumn {
	verdict := tableColumn{header: "Verdict"}
	if colorize {
		verdict.format = func(cell string) string {
			for _, a := range store.Answers {
				if strings.HasPrefix(cell, string(a)) {
					return statusKindColor(answerKind(a)) + cell + ansiReset
				}
			}
			return cell
		}
	}
	return []tableColumn{
		{header: "Video ID"},
		{header: "Fetched"},
		verdict,
		{header: "Title", maxWidth: listTitleWidth},
		{header: "Channel", maxWidth: listTitleWidth / 2},
	}
}

func listRows(summaries []store.Summary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		verdict := "-"
		if s.Answer != "" {
			verdict = string(s.Answer)
			if s.Stale {
				verdict += " (stale)"
			}
		}
		rows = append(rows, []string{
			s.VideoID,
			s.FetchedAt.Local().Format(displayLayout),
			verdict,
			textutil.Truncate(s.Title, listTitleWidth),
			textutil.Truncate(s.Channel, listTitleWidth/2),
		})
	}
	return rows
}
