package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatServer struct {
	requests []map[string]any
	headers  []http.Header
	content  string
}

func (s *chatServer) handler(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.requests = append(s.requests, body)
	s.headers = append(s.headers, r.Header.Clone())

	w.Header().Set("Content-Type", "application/x-ndjson")
	resp := map[string]any{
		"model":             body["model"],
		"message":           map[string]any{"role": "assistant", "content": s.content},
		"done":              true,
		"prompt_eval_count": 12,
		"eval_count":        8,
		"total_duration":    int64(40_000_000),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestClient(t *testing.T, content string) (*GraphOllamaClient, *chatServer) {
	t.Helper()
	cs := &chatServer{content: content}
	srv := httptest.NewServer(http.HandlerFunc(cs.handler))
	t.Cleanup(srv.Close)

	client, err := NewGraphOllamaClient(NewGraphOllamaClientParams{
		DescriptionModel: "describe",
		ExtractionModel:  "extract",
		BaseURL:          srv.URL,
		ApiKey:           "secret",
	})
	require.NoError(t, err)
	return client, cs
}

func TestGenerateCompletion(t *testing.T) {
	client, cs := newTestClient(t, `["gradient descent"]`)

	out, err := client.GenerateCompletion(context.Background(), "list terms")
	require.NoError(t, err)
	assert.Equal(t, `["gradient descent"]`, out)

	require.Len(t, cs.requests, 1)
	assert.Equal(t, "describe", cs.requests[0]["model"])
	assert.Equal(t, "Bearer secret", cs.headers[0].Get("Authorization"))
	options := cs.requests[0]["options"].(map[string]any)
	assert.InDelta(t, 0.3, options["temperature"], 1e-9)
	assert.NotContains(t, options, "num_ctx")

	m := client.GetMetrics()
	assert.Equal(t, 1, m.Requests)
	assert.Equal(t, 20, m.TotalTokens)
	assert.Equal(t, int64(40), m.DurationMs)

	client.ResetMetrics()
	assert.Zero(t, client.GetMetrics().Requests)
}

func TestGenerateCompletionWithFormat(t *testing.T) {
	client, cs := newTestClient(t, "```json\n{\"edges\": [{\"from\": \"C1\", \"to\": \"C2\"}]}\n```")

	var out struct {
		Edges []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"edges"`
	}
	err := client.GenerateCompletionWithFormat(context.Background(), "edges", "", "relate", &out)
	require.NoError(t, err)
	require.Len(t, out.Edges, 1)
	assert.Equal(t, "C2", out.Edges[0].To)

	assert.Equal(t, "extract", cs.requests[0]["model"])
	assert.NotNil(t, cs.requests[0]["format"])
}

func TestGenerateCompletionWithFormatRejectsNonPointer(t *testing.T) {
	client, _ := newTestClient(t, "{}")
	var out struct{}
	assert.Error(t, client.GenerateCompletionWithFormat(context.Background(), "x", "", "p", out))
	assert.Error(t, client.GenerateCompletionWithFormat(context.Background(), "x", "", "p", nil))
}

func TestLongPromptRaisesContext(t *testing.T) {
	client, cs := newTestClient(t, "ok")

	prompt := strings.Repeat("convexity matters ", 4000)
	_, err := client.GenerateCompletion(context.Background(), prompt)
	require.NoError(t, err)

	options := cs.requests[0]["options"].(map[string]any)
	assert.Greater(t, options["num_ctx"], float64(defaultContextTokens))
}

func TestCanceledContextDoesNotCallServer(t *testing.T) {
	client, cs := newTestClient(t, "ok")
	require.NoError(t, client.reqLock.Acquire(context.Background(), 1))
	defer client.reqLock.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.GenerateCompletion(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, cs.requests)
}

func TestAudioUnsupported(t *testing.T) {
	client, _ := newTestClient(t, "")
	_, err := client.GenerateAudioTranscription(context.Background(), []byte{1}, "a.wav", "en")
	assert.True(t, errors.Is(err, ErrAudioUnsupported))
}
