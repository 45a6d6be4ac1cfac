// Package provider builds the embedding and entity-extraction collaborators
// selected by the configuration.
package provider

import (
	"fmt"
	"io"

	"github.com/OFFIS-RIT/kiwi-persona/internal/config"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ai"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ai/fastembed"
	oai "github.com/OFFIS-RIT/kiwi-persona/pkg/ai/ollama"
	gai "github.com/OFFIS-RIT/kiwi-persona/pkg/ai/openai"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/logger"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ner"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ner/heuristic"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ner/llm"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ner/prose"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewEmbedder returns the configured embedder and a closer for its
// resources. Remote embedders are wrapped so their input is cut to
// cfg.MaxTokens tokens.
func NewEmbedder(cfg config.EmbedderConfig, parallelism int) (ai.Embedder, io.Closer, error) {
	var embedder ai.Embedder

	switch cfg.Adapter {
	case "fastembed":
		e, err := fastembed.NewFastEmbedder(fastembed.NewFastEmbedderParams{
			Model:     cfg.Model,
			CacheDir:  cfg.CacheDir,
			MaxLength: cfg.MaxTokens,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create fastembed embedder: %w", err)
		}
		return e, e, nil
	case "ollama":
		client, err := oai.NewOllamaClient(oai.NewOllamaClientParams{
			EmbeddingModel:        cfg.Model,
			BaseURL:               cfg.URL,
			ApiKey:                cfg.Key,
			Dimensions:            cfg.Dimensions,
			MaxConcurrentRequests: int64(parallelism),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create ollama embedder: %w", err)
		}
		embedder = client
	case "openai":
		embedder = gai.NewOpenAIClient(gai.NewOpenAIClientParams{
			EmbeddingModel:        cfg.Model,
			EmbeddingURL:          cfg.URL,
			EmbeddingKey:          cfg.Key,
			Dimensions:            cfg.Dimensions,
			MaxConcurrentRequests: int64(parallelism),
		})
	default:
		return nil, nil, fmt.Errorf("%w: unknown embedding adapter %q", config.ErrInvalidConfig, cfg.Adapter)
	}

	if cfg.MaxTokens <= 0 {
		return embedder, nopCloser{}, nil
	}
	tokenizer, err := ai.NewTiktokenTokenizer(cfg.TokenEncoding)
	if err != nil {
		logger.Warn("Embedding input will not be truncated", "encoding", cfg.TokenEncoding, "err", err)
		return embedder, nopCloser{}, nil
	}
	return ai.NewTruncatingEmbedder(embedder, tokenizer, cfg.MaxTokens), nopCloser{}, nil
}

// NewExtractor returns the configured entity extractor.
func NewExtractor(cfg config.ExtractorConfig, parallelism int) (ner.Extractor, error) {
	var client ai.StructuredClient

	switch cfg.Adapter {
	case "", "prose":
		return prose.NewProseExtractor(prose.NewProseExtractorParams{}), nil
	case "heuristic":
		return heuristic.NewHeuristicExtractor(), nil
	case "ollama":
		c, err := oai.NewOllamaClient(oai.NewOllamaClientParams{
			ExtractionModel:       cfg.Model,
			BaseURL:               cfg.URL,
			ApiKey:                cfg.Key,
			MaxConcurrentRequests: int64(parallelism),
		})
		if err != nil {
			return nil, fmt.Errorf("could not create ollama extractor: %w", err)
		}
		client = c
	case "openai":
		client = gai.NewOpenAIClient(gai.NewOpenAIClientParams{
			ExtractionModel:       cfg.Model,
			ChatURL:               cfg.URL,
			ChatKey:               cfg.Key,
			MaxConcurrentRequests: int64(parallelism),
		})
	default:
		return nil, fmt.Errorf("%w: unknown extractor adapter %q", config.ErrInvalidConfig, cfg.Adapter)
	}

	return llm.NewLLMExtractor(llm.NewLLMExtractorParams{
		Client:     client,
		MaxRetries: cfg.MaxRetries,
	}), nil
}
