package audio

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/OFFIS-RIT/lecturemap/pkg/ai"
	"github.com/OFFIS-RIT/lecturemap/pkg/loader"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"
)

// AudioExtensions lists the recording formats accepted for upload.
var AudioExtensions = []string{".mp3", ".mp4", ".wav", ".ogg", ".m4a", ".flac"}

// TranscriptExtensions are read as ready-made transcripts instead of being
// sent to the speech model.
var TranscriptExtensions = []string{".txt", ".md"}

// IsAudio reports whether path has a supported recording extension.
func IsAudio(path string) bool {
	return slices.Contains(AudioExtensions, strings.ToLower(filepath.Ext(path)))
}

// IsTranscript reports whether path is a plain text transcript.
func IsTranscript(path string) bool {
	return slices.Contains(TranscriptExtensions, strings.ToLower(filepath.Ext(path)))
}

// Transcriber loads recordings through a FileLoader and transcribes them
// with an AI client.
type Transcriber struct {
	aiClient ai.GraphAIClient
	loader   loader.FileLoader
	language string
}

// NewTranscriberParams contains configuration for creating a Transcriber.
// Language is an optional ISO-639-1 hint for the speech model.
type NewTranscriberParams struct {
	AIClient ai.GraphAIClient
	Loader   loader.FileLoader
	Language string
}

func NewTranscriber(params NewTranscriberParams) *Transcriber {
	return &Transcriber{
		aiClient: params.AIClient,
		loader:   params.Loader,
		language: params.Language,
	}
}

// Transcribe returns the text spoken in the recording at path. Transcript
// files are returned as they are.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	raw, err := t.loader.Load(ctx, path)
	if err != nil {
		return "", err
	}
	if e, ok := t.loader.(loader.Evicter); ok {
		defer e.Evict(path)
	}

	if IsTranscript(path) {
		return string(raw), nil
	}

	logger.Debug("[Audio] Transcribing recording", "path", path, "bytes", len(raw))
	return t.aiClient.GenerateAudioTranscription(ctx, raw, filepath.Base(path), t.language)
}
