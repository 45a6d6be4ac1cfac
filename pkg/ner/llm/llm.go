// Package llm extracts entity mentions with a chat model constrained to a
// JSON schema.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/OFFIS-RIT/kiwi-persona/internal/util"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ai"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/logger"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ner"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
)

type mentionResponse struct {
	Mentions []ner.Mention `json:"mentions"`
}

// LLMExtractor implements ner.Extractor on top of an ai.StructuredClient.
type LLMExtractor struct {
	client     ai.StructuredClient
	maxRetries int
	retryDelay time.Duration
	opts       []ai.GenerateOption
}

// NewLLMExtractorParams configures an LLMExtractor.
//
// Model overrides the client's extraction model when set.
// MaxRetries and RetryDelay control retries of failed or empty replies.
type NewLLMExtractorParams struct {
	Client     ai.StructuredClient
	Model      string
	MaxRetries int
	RetryDelay time.Duration
}

// NewLLMExtractor creates an LLMExtractor.
func NewLLMExtractor(params NewLLMExtractorParams) *LLMExtractor {
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	retryDelay := params.RetryDelay
	if retryDelay < 0 {
		retryDelay = 0
	} else if retryDelay == 0 {
		retryDelay = defaultRetryDelay
	}

	opts := []ai.GenerateOption{ai.WithTemperature(0)}
	if params.Model != "" {
		opts = append(opts, ai.WithModel(params.Model))
	}

	return &LLMExtractor{
		client:     params.Client,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		opts:       opts,
	}
}

// ExtractEntities implements ner.Extractor. Mentions whose text does not
// occur in the input are dropped and unknown labels become MISC.
func (e *LLMExtractor) ExtractEntities(ctx context.Context, text string) ([]ner.Mention, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf(ai.ExtractMentionsPrompt, strings.Join(ner.Labels, ", "), text)

	emptyReplies := 0
	res, err := util.RetryWithContext(ctx, e.maxRetries, e.retryDelay, func(ctx context.Context) (mentionResponse, error) {
		var out mentionResponse
		if err := e.client.GenerateCompletionWithFormat(
			ctx,
			"mentions",
			"Named entity mentions found in the text",
			prompt,
			&out,
			e.opts...,
		); err != nil {
			logger.Debug("[NER] extraction attempt failed", "err", err)
			return out, err
		}
		// a reply without a mention list is asked again once; a second one
		// means the text has no entities
		if out.Mentions == nil {
			emptyReplies++
			if emptyReplies == 1 && e.maxRetries > 1 {
				return out, ner.ErrEmptyResponse
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("llm entity extraction failed: %w", err)
	}

	lowerText := strings.ToLower(text)
	mentions := make([]ner.Mention, 0, len(res.Mentions))
	for _, m := range res.Mentions {
		surface := strings.TrimSpace(m.Text)
		if surface == "" || !strings.Contains(lowerText, strings.ToLower(surface)) {
			continue
		}
		label := strings.ToUpper(strings.TrimSpace(m.Label))
		if !ner.IsKnownLabel(label) {
			label = ner.LabelMisc
		}
		mentions = append(mentions, ner.Mention{Text: surface, Label: label})
	}
	return mentions, nil
}

// Ensure LLMExtractor implements ner.Extractor.
var _ ner.Extractor = (*LLMExtractor)(nil)

// ResetMetrics forwards to the client when it records metrics.
func (e *LLMExtractor) ResetMetrics() {
	if r, ok := e.client.(ai.MetricsReporter); ok {
		r.ResetMetrics()
	}
}

// GetMetrics forwards to the client when it records metrics.
func (e *LLMExtractor) GetMetrics() ai.ModelMetrics {
	if r, ok := e.client.(ai.MetricsReporter); ok {
		return r.GetMetrics()
	}
	return ai.ModelMetrics{}
}
