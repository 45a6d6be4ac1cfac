package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordTokenizer treats every whitespace separated word as one token.
type wordTokenizer struct {
	vocab []string
}

func (w *wordTokenizer) Encode(text string) []int {
	words := strings.Fields(text)
	out := make([]int, len(words))
	for i, word := range words {
		w.vocab = append(w.vocab, word)
		out[i] = len(w.vocab) - 1
	}
	return out
}

func (w *wordTokenizer) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = w.vocab[t]
	}
	return strings.Join(words, " ")
}

func TestTruncateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"within limit unchanged", "a  b c", 3, "a  b c"},
		{"cut to limit", "a b c d e", 2, "a b"},
		{"no limit", "a b c", 0, "a b c"},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateTokens(&wordTokenizer{}, tt.text, tt.max))
		})
	}
}

type metricEmbedder struct {
	Metrics
	got []string
}

func (m *metricEmbedder) GenerateEmbedding(_ context.Context, input []byte) ([]float32, error) {
	m.got = append(m.got, string(input))
	m.AddMetrics(ModelMetrics{TotalTokens: 1})
	return []float32{1}, nil
}

func TestTruncatingEmbedder(t *testing.T) {
	inner := &metricEmbedder{}
	e := NewTruncatingEmbedder(inner, &wordTokenizer{}, 3)

	vec, err := e.GenerateEmbedding(context.Background(), []byte("one two three four five"))
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
	assert.Equal(t, []string{"one two three"}, inner.got)

	assert.Equal(t, 1, e.GetMetrics().Requests)
	e.ResetMetrics()
	assert.Equal(t, 0, e.GetMetrics().Requests)
}

func TestTruncatingEmbedder_DefaultLimit(t *testing.T) {
	e := NewTruncatingEmbedder(EmbedderFunc(func(context.Context, []byte) ([]float32, error) {
		return nil, nil
	}), &wordTokenizer{}, 0)
	assert.Equal(t, DefaultMaxEmbeddingTokens, e.maxTokens)
	assert.Equal(t, ModelMetrics{}, e.GetMetrics())
}
