package ollama

import (
	"context"
	"errors"
)

// ErrAudioUnsupported is returned by GenerateAudioTranscription.
var ErrAudioUnsupported = errors.New("ollama does not support audio transcription")

// GenerateAudioTranscription always fails; pair Ollama chat with an OpenAI
// compatible speech endpoint instead.
func (c *GraphOllamaClient) GenerateAudioTranscription(
	ctx context.Context,
	audio []byte,
	filename string,
	language string,
) (string, error) {
	return "", ErrAudioUnsupported
}
