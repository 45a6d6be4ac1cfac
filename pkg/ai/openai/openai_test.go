package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			_, _ = w.Write([]byte(`{
				"object": "list",
				"model": "embed",
				"data": [{"object": "embedding", "index": 0, "embedding": [0.5, 0.25, 0.125]}],
				"usage": {"prompt_tokens": 4, "total_tokens": 4}
			}`))
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "extract", body["model"])
			assert.NotNil(t, body["response_format"])

			content, _ := json.Marshal(`{"mentions":[{"text":"Acme","label":"ORG"}]}`)
			_, _ = w.Write([]byte(`{
				"id": "cmpl-1",
				"object": "chat.completion",
				"created": 1,
				"model": "extract",
				"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": ` + string(content) + `}}],
				"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
			}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, dims int) *OpenAIClient {
	srv := newTestServer(t)
	return NewOpenAIClient(NewOpenAIClientParams{
		EmbeddingModel:  "embed",
		ExtractionModel: "extract",
		EmbeddingURL:    srv.URL,
		EmbeddingKey:    "test",
		ChatURL:         srv.URL,
		ChatKey:         "test",
		Dimensions:      dims,
	})
}

func TestGenerateEmbedding(t *testing.T) {
	c := newTestClient(t, 0)

	vec, err := c.GenerateEmbedding(context.Background(), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25, 0.125}, vec)

	m := c.GetMetrics()
	assert.Equal(t, 1, m.Requests)
	assert.Equal(t, 4, m.InputTokens)
}

func TestGenerateEmbedding_Dimensions(t *testing.T) {
	c := newTestClient(t, 2)
	vec, err := c.GenerateEmbedding(context.Background(), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)

	c = newTestClient(t, 5)
	vec, err = c.GenerateEmbedding(context.Background(), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25, 0.125, 0, 0}, vec)
}

func TestGenerateEmbedding_BlankInput(t *testing.T) {
	c := newTestClient(t, 3)
	vec, err := c.GenerateEmbedding(context.Background(), []byte("   "))
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0}, vec)
	assert.Equal(t, 0, c.GetMetrics().Requests)
}

func TestGenerateEmbedding_NotConfigured(t *testing.T) {
	c := NewOpenAIClient(NewOpenAIClientParams{})
	_, err := c.GenerateEmbedding(context.Background(), []byte("hello"))
	require.Error(t, err)
}

func TestGenerateCompletionWithFormat(t *testing.T) {
	c := newTestClient(t, 0)

	var out struct {
		Mentions []struct {
			Text  string `json:"text"`
			Label string `json:"label"`
		} `json:"mentions"`
	}
	err := c.GenerateCompletionWithFormat(context.Background(), "mentions", "Entity mentions", "Acme", &out)
	require.NoError(t, err)
	require.Len(t, out.Mentions, 1)
	assert.Equal(t, "Acme", out.Mentions[0].Text)
	assert.Equal(t, "ORG", out.Mentions[0].Label)
	assert.Equal(t, 15, c.GetMetrics().TotalTokens)
}
