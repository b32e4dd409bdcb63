package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"rhetoric/internal/language"
	"rhetoric/internal/pipeline"
	"rhetoric/internal/store"
	"rhetoric/internal/transcript"
)

const (
	wrapWidth     = 76
	displayLayout = "2006-01-02 15:04"
)

func renderOutcome(out pipeline.Outcome, colorize bool) string {
	var b strings.Builder
	writeLines(&b, renderSectionHeader("Transcript", colorize))
	writeLines(&b, transcriptLines(out.Transcript))
	b.WriteString(renderField("Source", provenanceLabel(out.TranscriptSource)) + "\n")
	b.WriteString("\n")

	writeLines(&b, renderSectionHeader("Verdict", colorize))
	writeLines(&b, verdictLines(out.Verdict, false, colorize))
	verdictSource := provenanceLabel(out.VerdictSource)
	if out.ReanalysisReason != "" {
		verdictSource += " (" + out.ReanalysisReason + ")"
	}
	b.WriteString(renderField("Source", verdictSource) + "\n")
	b.WriteString(renderField("Run", out.RunID) + "\n")

	for _, warning := range out.Warnings {
		b.WriteString(renderStatusLine("Warning", statusWarn, warning, colorize) + "\n")
	}
	return b.String()
}

func transcriptLines(t store.Transcript) []string {
	return []string{
		renderField("Video", t.VideoID),
		renderField("Title", t.Title),
		renderField("Channel", t.Channel),
		renderField("Language", language.DisplayName(t.Language)),
		renderField("Segments", strconv.Itoa(t.SegmentCount)),
		renderField("Characters", strconv.Itoa(len([]rune(t.Text)))),
		renderField("Fetched", t.FetchedAt.Local().Format(displayLayout)+" via "+t.Source),
	}
}

// verdictLines renders answer, reasoning, and numbered evidence quotes.
// Reasoning and quotes are soft-wrapped for the terminal.
func verdictLines(v store.Verdict, stale bool, colorize bool) []string {
	answer := renderAnswer(v.Answer, colorize)
	if stale {
		answer += " (stale: transcript changed since analysis)"
	}
	lines := []string{
		renderField("Answer", answer),
		renderField("Model", fmt.Sprintf("%s, %d tokens", v.Model, v.TokensUsed)),
		renderField("Analyzed", v.AnalyzedAt.Local().Format(displayLayout)),
		"",
		statusIndent + "Reasoning:",
	}
	lines = append(lines, indentBlock(text.WrapSoft(v.Reasoning, wrapWidth), statusIndent+statusIndent)...)
	if len(v.Evidence) == 0 {
		return lines
	}
	lines = append(lines, "", statusIndent+"Evidence:")
	for i, quote := range v.Evidence {
		prefix := fmt.Sprintf("%s%d. ", statusIndent+statusIndent, i+1)
		wrapped := strings.Split(text.WrapSoft(`"`+quote+`"`, wrapWidth-len(prefix)), "\n")
		lines = append(lines, prefix+wrapped[0])
		pad := strings.Repeat(" ", len(prefix))
		for _, cont := range wrapped[1:] {
			lines = append(lines, pad+cont)
		}
	}
	return lines
}

func provenanceLabel(p transcript.Provenance) string {
	switch p {
	case transcript.ProvenanceCache:
		return "stored result reused"
	case transcript.ProvenanceFresh:
		return "computed in this run"
	}
	return string(p)
}

func indentBlock(block, indent string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		lines = append(lines, indent+line)
	}
	return lines
}

func writeLines(b *strings.Builder, lines []string) {
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
}
