package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/ai"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ner"
)

type fakeClient struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
	opts    ai.GenerateOptions
}

func (f *fakeClient) GenerateCompletionWithFormat(
	_ context.Context,
	_ string,
	_ string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	for _, o := range opts {
		o(&f.opts)
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return f.errs[i]
	}
	return json.Unmarshal([]byte(f.replies[i]), out)
}

func newExtractor(c *fakeClient) *LLMExtractor {
	return NewLLMExtractor(NewLLMExtractorParams{Client: c, Model: "ner-model", RetryDelay: -1})
}

func TestExtractEntities(t *testing.T) {
	c := &fakeClient{replies: []string{`{"mentions":[
		{"text":"Acme Corp","label":"ORG"},
		{"text":" berlin ","label":"gpe"},
		{"text":"3","label":"CARDINAL"},
		{"text":"Paris","label":"GPE"},
		{"text":"widget","label":"GADGET"},
		{"text":"","label":"ORG"}
	]}`}}

	mentions, err := newExtractor(c).ExtractEntities(context.Background(), "Acme Corp sold 3 widget units in Berlin.")
	require.NoError(t, err)
	assert.Equal(t, []ner.Mention{
		{Text: "Acme Corp", Label: ner.LabelOrg},
		{Text: "berlin", Label: ner.LabelGPE},
		{Text: "3", Label: ner.LabelCardinal},
		{Text: "widget", Label: ner.LabelMisc},
	}, mentions)

	require.Len(t, c.prompts, 1)
	assert.True(t, strings.Contains(c.prompts[0], "Acme Corp sold 3 widget units in Berlin."))
	assert.Equal(t, "ner-model", c.opts.Model)
	assert.Equal(t, 0.0, c.opts.Temperature)
}

func TestExtractEntities_RetriesEmptyAndFailedReplies(t *testing.T) {
	c := &fakeClient{
		errs:    []error{errors.New("boom"), nil, nil},
		replies: []string{"", `{}`, `{"mentions":[]}`},
	}

	mentions, err := newExtractor(c).ExtractEntities(context.Background(), "nothing here")
	require.NoError(t, err)
	assert.Empty(t, mentions)
	assert.Equal(t, 3, c.calls)
}

func TestExtractEntities_RepeatedEmptyObjectMeansNoMentions(t *testing.T) {
	c := &fakeClient{replies: []string{`{}`, `{}`, `{}`}}

	mentions, err := newExtractor(c).ExtractEntities(context.Background(), "the weather is fine")
	require.NoError(t, err)
	assert.Empty(t, mentions)
	assert.Equal(t, 2, c.calls)
}

func TestExtractEntities_SingleAttemptAcceptsEmptyObject(t *testing.T) {
	c := &fakeClient{replies: []string{`{}`}}
	e := NewLLMExtractor(NewLLMExtractorParams{Client: c, MaxRetries: 1, RetryDelay: -1})

	mentions, err := e.ExtractEntities(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, mentions)
	assert.Equal(t, 1, c.calls)
}

func TestExtractEntities_GivesUp(t *testing.T) {
	boom := errors.New("model unavailable")
	c := &fakeClient{errs: []error{boom, boom, boom}}

	_, err := newExtractor(c).ExtractEntities(context.Background(), "Acme")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, defaultMaxRetries, c.calls)
}

func TestExtractEntities_BlankText(t *testing.T) {
	c := &fakeClient{}
	mentions, err := newExtractor(c).ExtractEntities(context.Background(), "  \n ")
	require.NoError(t, err)
	assert.Nil(t, mentions)
	assert.Zero(t, c.calls)
}

type meteredClient struct {
	fakeClient
	ai.Metrics
}

func TestMetricsForwarding(t *testing.T) {
	plain := newExtractor(&fakeClient{})
	assert.Equal(t, ai.ModelMetrics{}, plain.GetMetrics())
	plain.ResetMetrics()

	c := &meteredClient{}
	c.AddMetrics(ai.ModelMetrics{InputTokens: 3, OutputTokens: 2, TotalTokens: 5, DurationMs: 10})
	e := NewLLMExtractor(NewLLMExtractorParams{Client: c})
	assert.Equal(t, 5, e.GetMetrics().TotalTokens)
	e.ResetMetrics()
	assert.Equal(t, 0, e.GetMetrics().TotalTokens)
}
