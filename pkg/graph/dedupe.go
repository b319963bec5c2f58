package graph

import (
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/lecturemap/pkg/common"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"
)

const (
	DefaultSimilarityThreshold = 0.8
	DefaultPopularity          = 3
	MinPopularity              = 1
	MaxPopularity              = 5
)

// DeduplicatorParams configures a Deduplicator. Zero values fall back to
// DefaultSimilarityThreshold and DefaultPopularity.
type DeduplicatorParams struct {
	SimilarityThreshold float64
	DefaultPopularity   int
}

type acceptedLabel struct {
	id     string
	tokens map[string]struct{}
}

// Deduplicator merges concept candidates across chunks. It keeps the
// normalized label of every accepted concept and rejects candidates whose
// label overlaps an accepted one by more than the threshold. The first
// candidate seen wins; fields are never merged.
//
// A Deduplicator is not safe for concurrent use. Batches must be added in
// chunk order to keep id assignment reproducible.
type Deduplicator struct {
	threshold         float64
	defaultPopularity int
	accepted          []acceptedLabel
	concepts          []common.Concept
}

func NewDeduplicator(params DeduplicatorParams) *Deduplicator {
	threshold := params.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	popularity := params.DefaultPopularity
	if popularity < MinPopularity || popularity > MaxPopularity {
		popularity = DefaultPopularity
	}
	return &Deduplicator{
		threshold:         threshold,
		defaultPopularity: popularity,
	}
}

// NormalizeLabel lowercases and trims a label, strips a leading "the " and
// turns possessive "'s " into a plain space.
func NormalizeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.TrimPrefix(s, "the ")
	s = strings.ReplaceAll(s, "'s ", " ")
	s = strings.TrimSuffix(s, "'s")
	return strings.TrimSpace(s)
}

func tokenSet(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// LabelSimilarity is |A∩B| / max(|A|,|B|) over the whitespace tokens of
// two normalized labels.
func LabelSimilarity(a, b string) float64 {
	return tokenOverlap(tokenSet(a), tokenSet(b))
}

func tokenOverlap(a, b map[string]struct{}) float64 {
	denom := max(len(a), len(b))
	if denom == 0 {
		return 0
	}
	shared := 0
	for t := range a {
		if _, ok := b[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(denom)
}

// duplicateOf returns the id of the first accepted concept the tokens
// duplicate, or "".
func (d *Deduplicator) duplicateOf(tokens map[string]struct{}) string {
	for _, a := range d.accepted {
		if tokenOverlap(tokens, a.tokens) > d.threshold {
			return a.id
		}
	}
	return ""
}

// Add runs one batch of candidates through deduplication and returns the
// concepts accepted from it, already carrying their new ids.
func (d *Deduplicator) Add(batch []common.ConceptCandidate) []common.Concept {
	added := make([]common.Concept, 0, len(batch))
	for _, c := range batch {
		label := strings.TrimSpace(c.Label)
		normalized := NormalizeLabel(label)
		if normalized == "" {
			logger.Debug("[Dedupe] Skipping candidate without label", "type", c.Type)
			continue
		}

		tokens := tokenSet(normalized)
		if dup := d.duplicateOf(tokens); dup != "" {
			logger.Debug("[Dedupe] Dropping duplicate", "label", label, "duplicate_of", dup)
			continue
		}

		concept := common.Concept{
			ID:          fmt.Sprintf("C%d", len(d.concepts)+1),
			Label:       label,
			Type:        d.conceptType(c),
			Description: strings.TrimSpace(c.Description),
			Popularity:  d.popularity(c.Popularity),
		}
		d.accepted = append(d.accepted, acceptedLabel{id: concept.ID, tokens: tokens})
		d.concepts = append(d.concepts, concept)
		added = append(added, concept)
	}
	return added
}

func (d *Deduplicator) popularity(p int) int {
	switch {
	case p <= 0:
		return d.defaultPopularity
	case p > MaxPopularity:
		return MaxPopularity
	default:
		return p
	}
}

func (d *Deduplicator) conceptType(c common.ConceptCandidate) common.ConceptType {
	if t, ok := common.ParseConceptType(c.Type); ok {
		return t
	}
	logger.Debug("[Dedupe] Unknown concept type, using theme", "label", c.Label, "type", c.Type)
	return common.TypeTheme
}

// Concepts returns every accepted concept in discovery order.
func (d *Deduplicator) Concepts() []common.Concept {
	out := make([]common.Concept, len(d.concepts))
	copy(out, d.concepts)
	return out
}

// Len is the number of accepted concepts.
func (d *Deduplicator) Len() int { return len(d.concepts) }

// DeduplicateConcepts runs every batch through a fresh Deduplicator in order.
func DeduplicateConcepts(batches [][]common.ConceptCandidate, params DeduplicatorParams) []common.Concept {
	d := NewDeduplicator(params)
	for _, b := range batches {
		d.Add(b)
	}
	return d.Concepts()
}
