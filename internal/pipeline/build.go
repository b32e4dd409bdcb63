package pipeline

import (
	"log/slog"
	"time"

	"rhetoric/internal/classifier"
	"rhetoric/internal/config"
	"rhetoric/internal/deps"
	"rhetoric/internal/logging"
	"rhetoric/internal/prompt"
	"rhetoric/internal/services/llm"
	"rhetoric/internal/store"
	"rhetoric/internal/transcript"
	"rhetoric/internal/verdict"
	"rhetoric/internal/youtube"
)

// Build wires a Pipeline from configuration over an open store. yt-dlp is
// added as a fallback source only when its binary resolves on PATH.
func Build(cfg *config.Config, db *store.Store, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	client, err := youtube.NewClient(cfg.YouTube, youtube.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	watch := youtube.NewWatchPageFetcher(client, cfg.YouTube.Languages)
	fetchers := []youtube.TranscriptFetcher{watch}
	metadata := []youtube.MetadataFetcher{youtube.NewOEmbedFetcher(client), watch}
	if ytdlpAvailable(cfg) {
		ytOpts := []youtube.YTDLPOption{youtube.WithYTDLPLogger(logger)}
		fetchers = append(fetchers, youtube.NewYTDLPFetcher(cfg.YTDLPBinary(), cfg.YouTube, ytOpts...))
		metadata = append(metadata, youtube.NewYTDLPMetadataFetcher(cfg.YTDLPBinary(), cfg.YouTube, ytOpts...))
	} else {
		logger.Debug("yt-dlp not found; watch page is the only transcript source",
			logging.String("binary", cfg.YTDLPBinary()),
		)
	}

	template, err := prompt.LoadTemplate(cfg.Analysis.PromptFile)
	if err != nil {
		return nil, err
	}

	llmCfg := cfg.GetLLM()
	llmOpts := []llm.Option{llm.WithLogger(logger)}
	if llmCfg.RetryAttempts > 0 {
		llmOpts = append(llmOpts, llm.WithRetryMaxAttempts(llmCfg.RetryAttempts))
	}
	completer := llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		Referer:        llmCfg.Referer,
		Title:          llmCfg.Title,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
	}, llmOpts...)
	var classifierOpts []classifier.Option
	classifierOpts = append(classifierOpts, classifier.WithLogger(logger))
	if cfg.Analysis.TimeoutSeconds > 0 {
		classifierOpts = append(classifierOpts, classifier.WithTimeout(time.Duration(cfg.Analysis.TimeoutSeconds)*time.Second))
	}

	transcripts := transcript.New(db,
		youtube.NewChainFetcher(logger, fetchers...),
		youtube.NewChainMetadata(logger, metadata...),
		transcript.WithLogger(logger),
	)
	verdicts := verdict.New(db, classifier.New(completer, classifierOpts...),
		verdict.WithLogger(logger),
		verdict.WithPromptOptions(prompt.WithSystemTemplate(template)),
	)
	return New(transcripts, verdicts, WithLogger(logger)), nil
}

func ytdlpAvailable(cfg *config.Config) bool {
	statuses := deps.CheckBinaries([]deps.Requirement{{
		Name:     "yt-dlp",
		Command:  cfg.YTDLPBinary(),
		Optional: true,
	}})
	return len(statuses) == 1 && statuses[0].Available
}
