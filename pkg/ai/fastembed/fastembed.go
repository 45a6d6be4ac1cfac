//go:build cgo

// Package fastembed provides local ONNX sentence embeddings. The default
// model is all-MiniLM-L6-v2, the model the ranking heuristics were tuned on.
package fastembed

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	fastembed "github.com/anush008/fastembed-go"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/ai"
)

// modelMapping maps friendly model names to fastembed model constants.
var modelMapping = map[string]fastembed.EmbeddingModel{
	"":                                       fastembed.AllMiniLML6V2,
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
	"all-MiniLM-L6-v2":                       fastembed.AllMiniLML6V2,
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"BAAI/bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
}

// FastEmbedder runs an embedding model in process.
type FastEmbedder struct {
	ai.Metrics

	model *fastembed.FlagEmbedding
	mu    sync.Mutex
}

// NewFastEmbedder loads the model named in params, downloading it to
// CacheDir on first use.
func NewFastEmbedder(params NewFastEmbedderParams) (*FastEmbedder, error) {
	model, ok := modelMapping[params.Model]
	if !ok {
		return nil, fmt.Errorf("unsupported fastembed model %q", params.Model)
	}

	cacheDir := params.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(".", "local_cache")
	}
	maxLength := params.MaxLength
	if maxLength <= 0 {
		maxLength = ai.DefaultMaxEmbeddingTokens
	}

	showProgress := false
	flagEmbed, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                model,
		CacheDir:             cacheDir,
		MaxLength:            maxLength,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing fastembed: %w", err)
	}

	return &FastEmbedder{model: flagEmbed}, nil
}

// GenerateEmbedding implements ai.Embedder. The ONNX session is not safe
// for concurrent use so calls are serialised.
func (e *FastEmbedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	vectors, err := e.model.Embed([]string{string(input)}, 1)
	if err != nil {
		return nil, fmt.Errorf("fastembed embedding failed: %w", err)
	}
	e.AddMetrics(ai.ModelMetrics{DurationMs: time.Since(start).Milliseconds()})

	if len(vectors) != 1 {
		return nil, fmt.Errorf("unexpected embedding result size: got %d want 1", len(vectors))
	}
	return vectors[0], nil
}

// Close releases the ONNX session.
func (e *FastEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil
	}
	err := e.model.Destroy()
	e.model = nil
	return err
}
