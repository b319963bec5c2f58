package openai

import (
	"sync"

	"github.com/OFFIS-RIT/lecturemap/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// GraphOpenAIClient implements ai.GraphAIClient against any OpenAI
// compatible API. Chat and audio may point at different endpoints, e.g. a
// local vLLM for chat and a Whisper server for transcription.
//
// A GraphOpenAIClient should be created using NewGraphOpenAIClient.
type GraphOpenAIClient struct {
	descriptionModel string
	extractionModel  string
	audioModel       string

	chatURL string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient  *openai.Client
	AudioClient *openai.Client
}

// NewGraphOpenAIClientParams configures a GraphOpenAIClient.
//
// ExtractionModel is used for structured concept and edge proposals,
// DescriptionModel for free-form completions. An empty AudioKey disables
// transcription; an empty URL uses the public OpenAI endpoint.
type NewGraphOpenAIClientParams struct {
	DescriptionModel string
	ExtractionModel  string
	AudioModel       string

	ChatURL  string
	ChatKey  string
	AudioURL string
	AudioKey string
}

// NewGraphOpenAIClient creates a client with separate chat and audio
// connections.
//
// Example:
//
//	client := openai.NewGraphOpenAIClient(openai.NewGraphOpenAIClientParams{
//		DescriptionModel: "gpt-4o",
//		ExtractionModel:  "gpt-4o",
//		AudioModel:       "whisper-1",
//		ChatKey:          os.Getenv("AI_CHAT_KEY"),
//		AudioKey:         os.Getenv("AI_AUDIO_KEY"),
//	})
func NewGraphOpenAIClient(params NewGraphOpenAIClientParams) *GraphOpenAIClient {
	return &GraphOpenAIClient{
		descriptionModel: params.DescriptionModel,
		extractionModel:  params.ExtractionModel,
		audioModel:       params.AudioModel,
		chatURL:          params.ChatURL,

		ChatClient:  newOpenaiClient(params.ChatURL, params.ChatKey),
		AudioClient: newOpenaiClient(params.AudioURL, params.AudioKey),
	}
}

func newOpenaiClient(baseURL string, apiKey string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)
	return &client
}

// ResetMetrics clears accumulated usage.
func (c *GraphOpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics = ai.ModelMetrics{}
}

// GetMetrics returns usage accumulated since the last reset.
func (c *GraphOpenAIClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *GraphOpenAIClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics = c.metrics.Add(m)
}

var _ ai.GraphAIClient = (*GraphOpenAIClient)(nil)
