package openai

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"path/filepath"
	"time"

	"github.com/OFFIS-RIT/lecturemap/pkg/ai"

	"github.com/openai/openai-go/v3"
)

// GenerateAudioTranscription transcribes a recording with the configured
// audio model. filename only serves format detection on the server side;
// language is an optional ISO-639-1 hint.
func (c *GraphOpenAIClient) GenerateAudioTranscription(
	ctx context.Context,
	audio []byte,
	filename string,
	language string,
) (string, error) {
	if c.AudioClient == nil {
		return "", errors.New("audio client not configured")
	}
	if filename == "" {
		filename = "audio.wav"
	}
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), filepath.Base(filename), contentType),
		Model: openai.AudioModel(c.audioModel),
	}
	if language != "" {
		params.Language = openai.String(language)
	}

	start := time.Now()
	transcription, err := c.AudioClient.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", err
	}
	// no token usage is reported for audio
	c.modifyMetrics(ai.ModelMetrics{DurationMs: time.Since(start).Milliseconds()})

	return transcription.Text, nil
}
