package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/OFFIS-RIT/lecturemap/pkg/ai"
	oai "github.com/OFFIS-RIT/lecturemap/pkg/ai/ollama"
	gai "github.com/OFFIS-RIT/lecturemap/pkg/ai/openai"
	"github.com/OFFIS-RIT/lecturemap/pkg/graph"
	"github.com/OFFIS-RIT/lecturemap/pkg/loader/io"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphParamsFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"GRAPH_CHUNK_SIZE", "GRAPH_CHUNK_OVERLAP", "GRAPH_SIMILARITY_THRESHOLD"} {
		t.Setenv(key, "")
	}
	p := GraphParamsFromEnv()
	assert.Equal(t, graph.DefaultChunkSize, p.ChunkSize)
	assert.Equal(t, graph.DefaultChunkOverlap, p.ChunkOverlap)
	assert.Equal(t, time.Second, p.RetryBackoff)
}

func TestGraphParamsFromEnvOverrides(t *testing.T) {
	t.Setenv("GRAPH_CHUNK_SIZE", "1200")
	t.Setenv("GRAPH_CHUNK_OVERLAP", "100")
	t.Setenv("GRAPH_PARALLEL_CHUNKS", "2")
	t.Setenv("GRAPH_SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("GRAPH_BUILD_TIMEOUT_MINUTES", "5")

	p := GraphParamsFromEnv()
	assert.Equal(t, 1200, p.ChunkSize)
	assert.Equal(t, 100, p.ChunkOverlap)
	assert.Equal(t, 2, p.ParallelChunks)
	assert.InDelta(t, 0.9, p.SimilarityThreshold, 1e-9)
	assert.Equal(t, 5*time.Minute, BuildTimeout())
}

func TestNewGraphClientRejectsBadChunking(t *testing.T) {
	t.Setenv("GRAPH_CHUNK_SIZE", "100")
	t.Setenv("GRAPH_CHUNK_OVERLAP", "100")

	_, err := NewGraphClient(gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{}), io.NewIOFileLoader())
	var ce *graph.ConfigurationError
	require.ErrorAs(t, err, &ce)
}

func TestNewAIClientAdapters(t *testing.T) {
	t.Setenv("AI_ADAPTER", "")
	client, err := NewAIClient()
	require.NoError(t, err)
	assert.IsType(t, &gai.GraphOpenAIClient{}, client)

	t.Setenv("AI_ADAPTER", "ollama")
	t.Setenv("AI_AUDIO_KEY", "")
	client, err = NewAIClient()
	require.NoError(t, err)
	assert.IsType(t, &oai.GraphOllamaClient{}, client)

	t.Setenv("AI_AUDIO_KEY", "speech-key")
	client, err = NewAIClient()
	require.NoError(t, err)
	assert.IsType(t, &splitClient{}, client)
}

type countingSpeech struct {
	ai.GraphAIClient
	calls int
}

func (c *countingSpeech) GenerateAudioTranscription(context.Context, []byte, string, string) (string, error) {
	c.calls++
	return "text", nil
}

func (c *countingSpeech) GetMetrics() ai.ModelMetrics {
	return ai.ModelMetrics{Requests: c.calls, DurationMs: 100}
}

func TestSplitClientRoutesAudio(t *testing.T) {
	chat, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{})
	require.NoError(t, err)
	speech := &countingSpeech{}
	s := &splitClient{GraphAIClient: chat, speech: speech}

	text, err := s.GenerateAudioTranscription(context.Background(), nil, "a.wav", "")
	require.NoError(t, err)
	assert.Equal(t, "text", text)
	assert.Equal(t, 1, speech.calls)
	assert.Equal(t, 1, s.GetMetrics().Requests)
}
