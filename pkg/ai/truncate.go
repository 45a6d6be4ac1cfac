package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultMaxEmbeddingTokens matches the sequence length of small sentence
// embedding models such as all-MiniLM-L6-v2.
const DefaultMaxEmbeddingTokens = 256

// Tokenizer converts text to tokens and back.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenTokenizer returns a Tokenizer for the given tiktoken encoding,
// e.g. "cl100k_base" or "o200k_base".
func NewTiktokenTokenizer(encoding string) (Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encoding, err)
	}
	return &tiktokenTokenizer{enc: enc}, nil
}

func (t *tiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// TruncateTokens cuts text to at most maxTokens tokens. Text within the limit
// is returned unchanged.
func TruncateTokens(tok Tokenizer, text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	tokens := tok.Encode(text)
	if len(tokens) <= maxTokens {
		return text
	}
	// a token boundary may split a multi-byte rune
	return strings.ToValidUTF8(tok.Decode(tokens[:maxTokens]), "")
}

// TruncatingEmbedder limits the input of another Embedder to a fixed number
// of tokens so long segments are embedded from their leading text instead of
// being rejected by the model.
type TruncatingEmbedder struct {
	next      Embedder
	tokenizer Tokenizer
	maxTokens int
}

// NewTruncatingEmbedder wraps next. A non-positive maxTokens uses
// DefaultMaxEmbeddingTokens.
func NewTruncatingEmbedder(next Embedder, tokenizer Tokenizer, maxTokens int) *TruncatingEmbedder {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxEmbeddingTokens
	}
	return &TruncatingEmbedder{next: next, tokenizer: tokenizer, maxTokens: maxTokens}
}

// GenerateEmbedding implements Embedder.
func (e *TruncatingEmbedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	text := TruncateTokens(e.tokenizer, string(input), e.maxTokens)
	return e.next.GenerateEmbedding(ctx, []byte(text))
}

// ResetMetrics forwards to the wrapped embedder when it records metrics.
func (e *TruncatingEmbedder) ResetMetrics() {
	if r, ok := e.next.(MetricsReporter); ok {
		r.ResetMetrics()
	}
}

// GetMetrics forwards to the wrapped embedder when it records metrics.
func (e *TruncatingEmbedder) GetMetrics() ModelMetrics {
	if r, ok := e.next.(MetricsReporter); ok {
		return r.GetMetrics()
	}
	return ModelMetrics{}
}
