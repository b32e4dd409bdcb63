package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rhetoric/internal/config"
	"rhetoric/internal/services"
	"rhetoric/internal/store"
	"rhetoric/internal/videoid"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <url-or-id>",
		Short: "Print the stored transcript summary and verdict without fetching anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := videoid.Resolve(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				tr, err := st.GetTranscript(cmd.Context(), string(id))
				if err != nil {
					return err
				}
				if tr == nil {
					return services.Wrap(services.ErrTranscriptUnavailable, "show", string(id),
						"nothing stored; run `rhetoric analyze` or `rhetoric extract` first", nil)
				}
				v, err := st.GetVerdict(cmd.Context(), string(id))
				if err != nil {
					return err
				}
				stale := v != nil && v.TranscriptHash != tr.ContentHash

				if jsonOutput {
					payload := showJSON{
						Transcript:     transcriptJSONFrom(*tr),
						TranscriptPath: st.TranscriptPath(tr.VideoID),
						Verdict:        v,
						Stale:          stale,
					}
					if v != nil {
						payload.VerdictPath = st.VerdictPath(v.VideoID)
					}
					return writeJSON(cmd, payload)
				}

				w := cmd.OutOrStdout()
				colorize := shouldColorize(w)
				for _, line := range renderSectionHeader("Transcript", colorize) {
					fmt.Fprintln(w, line)
				}
				for _, line := range transcriptLines(*tr) {
					fmt.Fprintln(w, line)
				}
				fmt.Fprintln(w, renderField("File", st.TranscriptPath(tr.VideoID)))
				fmt.Fprintln(w)
				for _, line := range renderSectionHeader("Verdict", colorize) {
					fmt.Fprintln(w, line)
				}
				if v == nil {
					fmt.Fprintln(w, renderStatusLine("Answer", statusInfo, "not analyzed yet", colorize))
					return nil
				}
				for _, line := range verdictLines(*v, stale, colorize) {
					fmt.Fprintln(w, line)
				}
				fmt.Fprintln(w, renderField("File", st.VerdictPath(v.VideoID)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the stored records as JSON")
	return cmd
}
