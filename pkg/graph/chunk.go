package graph

import (
	"slices"
)

// sentenceSearchWindow is how far back from a window end the chunker looks
// for a sentence terminator.
const sentenceSearchWindow = 200

var sentenceTerminators = []rune{'.', '?', '!'}

// Span is a half-open [Start, End) range of rune offsets into a transcript.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func validateChunking(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return &ConfigurationError{Field: "chunk_size", Reason: "must be positive"}
	}
	if overlap < 0 {
		return &ConfigurationError{Field: "overlap", Reason: "must not be negative"}
	}
	if overlap >= chunkSize {
		return &ConfigurationError{Field: "overlap", Reason: "must be smaller than chunk_size"}
	}
	return nil
}

// ChunkSpans computes the chunk boundaries ChunkText would cut.
//
// Windows are chunkSize runes long. A window that does not reach the end of
// the text is shortened to end just after the last '.', '?' or '!' found in
// its final 200 runes. The next window starts overlap runes before the end
// of the previous one. The walk stops once a window reaches the end of the
// text, so a text no longer than chunkSize yields exactly one span.
func ChunkSpans(text string, chunkSize, overlap int) ([]Span, error) {
	if err := validateChunking(chunkSize, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	n := len(runes)
	spans := make([]Span, 0, n/max(chunkSize-overlap, 1)+1)

	for start := 0; start < n; {
		end := min(start+chunkSize, n)
		if end < n {
			if cut := sentenceCut(runes, start, end); cut-overlap > start {
				end = cut
			}
		}
		spans = append(spans, Span{Start: start, End: end})
		if end >= n {
			break
		}
		start = end - overlap
	}

	return spans, nil
}

// sentenceCut returns the index just past the last terminator in the
// trailing search window of runes[start:end], or end if none is found after
// start.
func sentenceCut(runes []rune, start, end int) int {
	from := max(start, end-sentenceSearchWindow)
	for i := end - 1; i >= from; i-- {
		if slices.Contains(sentenceTerminators, runes[i]) {
			if i > start {
				return i + 1
			}
			break
		}
	}
	return end
}

// ChunkText splits a transcript into overlapping, sentence-aligned windows.
// An empty text produces no chunks.
func ChunkText(text string, chunkSize, overlap int) ([]string, error) {
	spans, err := ChunkSpans(text, chunkSize, overlap)
	if err != nil {
		return nil, err
	}

	runes := []rune(text)
	chunks := make([]string, len(spans))
	for i, s := range spans {
		chunks[i] = string(runes[s.Start:s.End])
	}
	return chunks, nil
}
