package preflight

import (
	"context"

	"rhetoric/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes every preflight check for cfg. The LLM reachability check
// is skipped when skipNetwork is set.
func RunAll(ctx context.Context, cfg *config.Config, skipNetwork bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Transcripts directory", cfg.Paths.TranscriptsDir),
		CheckDirectoryAccess("Results directory", cfg.Paths.ResultsDir),
	}

	llmCfg := cfg.GetLLM()
	results = append(results, CheckAPIKey(llmCfg))
	if !skipNetwork {
		results = append(results, CheckLLM(ctx, llmCfg))
	}
	results = append(results, CheckYTDLP(ctx, cfg))
	return results
}

// Failed reports whether any required check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
