// Package bootstrap wires the environment configuration into the clients
// shared by the server, the worker and the CLI.
package bootstrap

import (
	"time"

	"github.com/OFFIS-RIT/lecturemap/internal/util"
	"github.com/OFFIS-RIT/lecturemap/pkg/ai"
	oai "github.com/OFFIS-RIT/lecturemap/pkg/ai/ollama"
	gai "github.com/OFFIS-RIT/lecturemap/pkg/ai/openai"
	"github.com/OFFIS-RIT/lecturemap/pkg/graph"
	"github.com/OFFIS-RIT/lecturemap/pkg/loader"
	"github.com/OFFIS-RIT/lecturemap/pkg/loader/audio"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger/console"
)

// InitLogger installs the console logger configured by DEBUG and LOG_JSON.
func InitLogger(prefix string) {
	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		JSON:   util.GetEnvBool("LOG_JSON", false),
		Prefix: prefix,
	}))
}

// NewAIClient creates the model backend selected by AI_ADAPTER. Ollama
// handles chat only; set AI_AUDIO_URL and AI_AUDIO_KEY to transcribe
// through an OpenAI compatible speech endpoint next to it.
func NewAIClient() (ai.GraphAIClient, error) {
	openaiParams := gai.NewGraphOpenAIClientParams{
		DescriptionModel: util.GetEnvString("AI_CHAT_DESCRIBE_MODEL", "gpt-4o"),
		ExtractionModel:  util.GetEnvString("AI_CHAT_EXTRACT_MODEL", "gpt-4o"),
		AudioModel:       util.GetEnvString("AI_AUDIO_MODEL", "whisper-1"),

		ChatURL:  util.GetEnv("AI_CHAT_URL"),
		ChatKey:  util.GetEnv("AI_CHAT_KEY"),
		AudioURL: util.GetEnv("AI_AUDIO_URL"),
		AudioKey: util.GetEnvString("AI_AUDIO_KEY", util.GetEnv("AI_CHAT_KEY")),
	}

	switch util.GetEnv("AI_ADAPTER") {
	case "ollama":
		chat, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			DescriptionModel: util.GetEnv("AI_CHAT_DESCRIBE_MODEL"),
			ExtractionModel:  util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
		})
		if err != nil {
			return nil, err
		}
		if util.GetEnv("AI_AUDIO_KEY") == "" {
			return chat, nil
		}
		openaiParams.ChatKey = ""
		return &splitClient{GraphAIClient: chat, speech: gai.NewGraphOpenAIClient(openaiParams)}, nil
	default:
		return gai.NewGraphOpenAIClient(openaiParams), nil
	}
}

// GraphParamsFromEnv reads the pipeline tuning knobs. Collaborators are
// left empty.
func GraphParamsFromEnv() graph.NewGraphClientParams {
	return graph.NewGraphClientParams{
		ChunkSize:           util.GetEnvInt("GRAPH_CHUNK_SIZE", graph.DefaultChunkSize),
		ChunkOverlap:        util.GetEnvInt("GRAPH_CHUNK_OVERLAP", graph.DefaultChunkOverlap),
		ContextChars:        util.GetEnvInt("GRAPH_CONTEXT_CHARS", graph.DefaultContextChars),
		ParallelChunks:      util.GetEnvInt("GRAPH_PARALLEL_CHUNKS", graph.DefaultParallelChunks),
		MaxRetries:          util.GetEnvInt("GRAPH_MAX_RETRIES", graph.DefaultMaxRetries),
		EdgeSampleSize:      util.GetEnvInt("GRAPH_EDGE_SAMPLE_SIZE", graph.DefaultEdgeSampleSize),
		RetryBackoff:        time.Duration(util.GetEnvInt("GRAPH_RETRY_BACKOFF_MS", 1000)) * time.Millisecond,
		SimilarityThreshold: util.GetEnvNumeric("GRAPH_SIMILARITY_THRESHOLD", graph.DefaultSimilarityThreshold),
	}
}

// BuildTimeout bounds a single build.
func BuildTimeout() time.Duration {
	return time.Duration(util.GetEnvInt("GRAPH_BUILD_TIMEOUT_MINUTES", 30)) * time.Minute
}

// NewGraphClient wires an AI client and a file loader into a GraphClient
// configured from the environment.
func NewGraphClient(aiClient ai.GraphAIClient, files loader.FileLoader) (*graph.GraphClient, error) {
	proposer := graph.NewAIProposer(graph.NewAIProposerParams{
		Client:           aiClient,
		StructuredOutput: util.GetEnvBool("AI_STRUCTURED_OUTPUT", false),
		Thinking:         util.GetEnv("AI_THINKING"),
	})

	params := GraphParamsFromEnv()
	params.Transcriber = audio.NewTranscriber(audio.NewTranscriberParams{
		AIClient: aiClient,
		Loader:   files,
		Language: util.GetEnv("AI_AUDIO_LANGUAGE"),
	})
	params.ConceptProposer = proposer
	params.EdgeProposer = proposer

	return graph.NewGraphClient(params)
}
