package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rhetoric/internal/logging"
	"rhetoric/internal/logs"
	"rhetoric/internal/videoid"
)

const followWait = 2 * time.Second

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		raw    bool
		runID  string
		stage  string
		level  string
		search string
	)

	cmd := &cobra.Command{
		Use:   "logs [url-or-id]",
		Short: "Show recent entries from the log file",
		Long: "Show recent entries from the JSON log file under paths.log_dir.\n" +
			"A URL or video id restricts output to that video.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if lines < 0 {
				return fmt.Errorf("--lines must not be negative")
			}
			filter := logs.Filter{
				RunID:  strings.TrimSpace(runID),
				Stage:  strings.TrimSpace(stage),
				Search: search,
			}
			if len(args) == 1 {
				id, err := videoid.Resolve(args[0])
				if err != nil {
					return err
				}
				filter.VideoID = string(id)
			}
			if strings.TrimSpace(level) != "" {
				lvl, err := logs.ParseLevel(level)
				if err != nil {
					return err
				}
				filter.MinLevel, filter.HasLevel = lvl, true
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := logging.FilePath(cfg)
			if path == "" {
				return fmt.Errorf("paths.log_dir is not configured")
			}

			w := cmd.OutOrStdout()
			emit := func(batch []string) {
				for _, line := range batch {
					if raw {
						fmt.Fprintln(w, line)
						continue
					}
					fmt.Fprintln(w, formatLogLine(line))
				}
			}

			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines, Filter: filter})
			if err != nil {
				return err
			}
			emit(result.Lines)
			if !follow {
				if len(result.Lines) == 0 {
					fmt.Fprintf(w, "No matching log entries in %s\n", path)
				}
				return nil
			}

			offset := result.Offset
			for {
				result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{
					Offset: offset,
					Follow: true,
					Wait:   followWait,
					Filter: filter,
				})
				if err != nil {
					if errors.Is(err, cmd.Context().Err()) {
						return nil
					}
					return err
				}
				emit(result.Lines)
				offset = result.Offset
			}
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of matching lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries until interrupted")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the JSON lines unchanged")
	cmd.Flags().StringVar(&runID, "run", "", "Only entries from this run id")
	cmd.Flags().StringVar(&stage, "stage", "", "Only entries from this stage (resolve, extract, analyze)")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug, info, warn, error)")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive substring filter")
	return cmd
}

// formatLogLine renders a JSON record as a single console line. Lines that
// are not JSON pass through.
func formatLogLine(line string) string {
	entry, ok := logs.Parse(line)
	if !ok {
		return line
	}
	var b strings.Builder
	if !entry.Time.IsZero() {
		b.WriteString(entry.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s ", entry.Level.String())
	if subject := logging.FormatSubject(entry.VideoID, entry.Stage); subject != "" {
		b.WriteString("[" + subject + "] ")
	}
	b.WriteString(entry.Message)
	for _, key := range entry.AttrKeys() {
		writeAttr(&b, key, entry.Attrs[key])
	}
	if entry.RunID != "" {
		writeAttr(&b, "run", entry.RunID)
	}
	return b.String()
}

func writeAttr(w io.StringWriter, key, value string) {
	if strings.ContainsAny(value, " \t") {
		value = fmt.Sprintf("%q", value)
	}
	_, _ = w.WriteString(" " + key + "=" + value)
}
