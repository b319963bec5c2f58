package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/lecturemap/pkg/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	path string
	body []byte
}

func newTestServer(t *testing.T, content string) (string, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{path: r.URL.Path, body: body})
		w.Header().Set("Content-Type", "application/json")

		if strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			_ = json.NewEncoder(w).Encode(map[string]any{"text": "Gradient descent is an algorithm."})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	t.Cleanup(srv.Close)
	return srv.URL, &seen
}

func TestGenerateCompletion(t *testing.T) {
	url, seen := newTestServer(t, "[\"convexity\"]")
	client := NewGraphOpenAIClient(NewGraphOpenAIClientParams{
		DescriptionModel: "describe",
		ChatURL:          url,
		ChatKey:          "key",
	})

	out, err := client.GenerateCompletion(context.Background(), "terms please",
		ai.WithTemperature(0.8), ai.WithSystemPrompts("be brief"))
	require.NoError(t, err)
	assert.Equal(t, `["convexity"]`, out)

	require.Len(t, *seen, 1)
	var body map[string]any
	require.NoError(t, json.Unmarshal((*seen)[0].body, &body))
	assert.Equal(t, "describe", body["model"])
	assert.InDelta(t, 0.8, body["temperature"], 1e-9)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])

	m := client.GetMetrics()
	assert.Equal(t, 1, m.Requests)
	assert.Equal(t, 15, m.TotalTokens)
}

func TestGenerateCompletionWithFormat(t *testing.T) {
	url, seen := newTestServer(t, `{"concepts": ["a", "b"]}`)
	client := NewGraphOpenAIClient(NewGraphOpenAIClientParams{
		ExtractionModel: "extract",
		ChatURL:         url,
		ChatKey:         "key",
	})

	var out struct {
		Concepts []string `json:"concepts"`
	}
	require.NoError(t, client.GenerateCompletionWithFormat(context.Background(), "concepts", "d", "p", &out))
	assert.Equal(t, []string{"a", "b"}, out.Concepts)

	var body map[string]any
	require.NoError(t, json.Unmarshal((*seen)[0].body, &body))
	assert.Equal(t, "extract", body["model"])
	format := body["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
}

func TestGenerateAudioTranscription(t *testing.T) {
	url, seen := newTestServer(t, "")
	client := NewGraphOpenAIClient(NewGraphOpenAIClientParams{
		AudioModel: "whisper-1",
		AudioURL:   url,
		AudioKey:   "key",
	})

	text, err := client.GenerateAudioTranscription(context.Background(), []byte("RIFF"), "/tmp/lecture.wav", "en")
	require.NoError(t, err)
	assert.Equal(t, "Gradient descent is an algorithm.", text)

	require.Len(t, *seen, 1)
	body := string((*seen)[0].body)
	assert.Contains(t, body, `filename="lecture.wav"`)
	assert.Contains(t, body, "whisper-1")
}

func TestMissingClients(t *testing.T) {
	client := NewGraphOpenAIClient(NewGraphOpenAIClientParams{})

	_, err := client.GenerateCompletion(context.Background(), "p")
	assert.ErrorIs(t, err, errNoChatClient)

	_, err = client.GenerateAudioTranscription(context.Background(), nil, "a.mp3", "")
	assert.Error(t, err)
}
