package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/kiwi-persona/internal/config"
	gai "github.com/OFFIS-RIT/kiwi-persona/pkg/ai/openai"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ner/heuristic"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ner/llm"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ner/prose"
)

func TestNewExtractor(t *testing.T) {
	e, err := NewExtractor(config.ExtractorConfig{Adapter: "heuristic"}, 1)
	require.NoError(t, err)
	assert.IsType(t, &heuristic.HeuristicExtractor{}, e)

	e, err = NewExtractor(config.ExtractorConfig{}, 1)
	require.NoError(t, err)
	assert.IsType(t, &prose.ProseExtractor{}, e)

	e, err = NewExtractor(config.ExtractorConfig{Adapter: "openai", URL: "http://localhost:1", Model: "m"}, 1)
	require.NoError(t, err)
	assert.IsType(t, &llm.LLMExtractor{}, e)

	e, err = NewExtractor(config.ExtractorConfig{Adapter: "ollama", URL: "http://localhost:11434"}, 1)
	require.NoError(t, err)
	assert.IsType(t, &llm.LLMExtractor{}, e)

	_, err = NewExtractor(config.ExtractorConfig{Adapter: "spacy"}, 1)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNewEmbedder(t *testing.T) {
	e, closer, err := NewEmbedder(config.EmbedderConfig{Adapter: "openai", URL: "http://localhost:1"}, 2)
	require.NoError(t, err)
	assert.IsType(t, &gai.OpenAIClient{}, e)
	require.NoError(t, closer.Close())

	_, _, err = NewEmbedder(config.EmbedderConfig{Adapter: "word2vec"}, 1)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNewPipeline(t *testing.T) {
	cfg := config.Config{
		InputDir:          "in",
		OutputDir:         "out",
		TopK:              10,
		ChunkSize:         300,
		ConnectivityBonus: 0.01,
		Embedder:          config.EmbedderConfig{Adapter: "openai", URL: "http://localhost:1"},
		Extractor:         config.ExtractorConfig{Adapter: "heuristic"},
	}
	p, closer, err := NewPipeline(cfg)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NoError(t, closer.Close())

	cfg.Extractor.Adapter = "spacy"
	_, _, err = NewPipeline(cfg)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNewPageRegistry(t *testing.T) {
	r := NewPageRegistry()
	file := loader.DocumentFile{Name: "a.bin", FilePath: "a.bin", FileType: "bin"}
	_, err := r.GetPages(context.Background(), file)
	require.ErrorIs(t, err, loader.ErrUnsupportedFile)
}
