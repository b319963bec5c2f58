package bootstrap

import (
	"context"

	"github.com/OFFIS-RIT/lecturemap/pkg/ai"
)

// splitClient serves chat from one backend and transcription from another.
type splitClient struct {
	ai.GraphAIClient
	speech ai.GraphAIClient
}

func (s *splitClient) GenerateAudioTranscription(ctx context.Context, audio []byte, filename, language string) (string, error) {
	return s.speech.GenerateAudioTranscription(ctx, audio, filename, language)
}

func (s *splitClient) ResetMetrics() {
	s.GraphAIClient.ResetMetrics()
	s.speech.ResetMetrics()
}

func (s *splitClient) GetMetrics() ai.ModelMetrics {
	m := s.GraphAIClient.GetMetrics()
	speech := s.speech.GetMetrics()
	if speech.Requests == 0 {
		return m
	}
	return m.Add(speech)
}
