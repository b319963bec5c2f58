package graph

import (
	"strings"

	"github.com/OFFIS-RIT/lecturemap/pkg/common"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"
)

// DropReason names the rule that rejected an edge candidate.
type DropReason string

const (
	DropMalformed       DropReason = "malformed"
	DropInvalidID       DropReason = "invalid_id"
	DropSelfLoop        DropReason = "self_loop"
	DropInvalidRelation DropReason = "invalid_relation"
	DropIntegrity       DropReason = "integrity"
	DropDuplicate       DropReason = "duplicate"
)

// DropReasons lists reasons in rule order.
var DropReasons = []DropReason{
	DropMalformed,
	DropInvalidID,
	DropSelfLoop,
	DropInvalidRelation,
	DropIntegrity,
	DropDuplicate,
}

// ValidationSummary counts what a validation run did.
type ValidationSummary struct {
	Input      int                `json:"input"`
	Accepted   int                `json:"accepted"`
	Normalized int                `json:"normalized"`
	Dropped    map[DropReason]int `json:"dropped"`
}

// TotalDropped sums all drop counters.
func (s ValidationSummary) TotalDropped() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

// conceptIndex resolves ids to concept records. Ids that occur more than
// once are part of the id set but have no resolvable record.
type conceptIndex struct {
	ids     map[string]struct{}
	records map[string]common.Concept
}

func newConceptIndex(concepts []common.Concept) conceptIndex {
	idx := conceptIndex{
		ids:     make(map[string]struct{}, len(concepts)),
		records: make(map[string]common.Concept, len(concepts)),
	}
	ambiguous := make(map[string]struct{})
	for _, c := range concepts {
		if _, seen := idx.ids[c.ID]; seen {
			ambiguous[c.ID] = struct{}{}
			continue
		}
		idx.ids[c.ID] = struct{}{}
		idx.records[c.ID] = c
	}
	for id := range ambiguous {
		delete(idx.records, id)
	}
	return idx
}

func (idx conceptIndex) has(id string) bool {
	_, ok := idx.ids[id]
	return ok
}

func (idx conceptIndex) lookup(id string) (common.Concept, bool) {
	c, ok := idx.records[id]
	return c, ok
}

// normalizeRelation applies the type-pair heuristics. Algorithms depend on
// their parameters whatever relation was proposed.
func normalizeRelation(from, to common.Concept, rel common.Relation) common.Relation {
	if from.Type == common.TypeAlgorithm && to.Type == common.TypeParameter {
		return common.RelationDependsOn
	}
	return rel
}

// ValidateEdges filters raw edge candidates against the concept set. Each
// candidate is checked in order for: malformed fields, unknown endpoints,
// self-loops, relations outside the vocabulary, type-pair normalization,
// unresolvable endpoint records and duplicate triples. Surviving edges keep
// their first-seen order.
//
// The function is deterministic and has no side effects; the summary is
// returned for the caller to log or record.
func ValidateEdges(raw []common.EdgeCandidate, concepts []common.Concept) ([]common.Edge, ValidationSummary) {
	summary := ValidationSummary{
		Input:   len(raw),
		Dropped: make(map[DropReason]int, len(DropReasons)),
	}
	idx := newConceptIndex(concepts)
	seen := make(map[common.EdgeKey]struct{}, len(raw))
	edges := make([]common.Edge, 0, len(raw))

	for _, c := range raw {
		if !c.WellFormed() {
			summary.Dropped[DropMalformed]++
			continue
		}

		from := strings.TrimSpace(c.From)
		to := strings.TrimSpace(c.To)
		if !idx.has(from) || !idx.has(to) {
			summary.Dropped[DropInvalidID]++
			continue
		}
		if from == to {
			summary.Dropped[DropSelfLoop]++
			continue
		}

		rel := common.Relation(strings.ToLower(strings.TrimSpace(c.Relation)))
		if !rel.Valid() {
			summary.Dropped[DropInvalidRelation]++
			continue
		}

		fromRec, okFrom := idx.lookup(from)
		toRec, okTo := idx.lookup(to)
		if !okFrom || !okTo {
			summary.Dropped[DropIntegrity]++
			logger.Warn("[Validate] Concept record lookup failed", "from", from, "to", to)
			continue
		}
		if normalized := normalizeRelation(fromRec, toRec, rel); normalized != rel {
			rel = normalized
			summary.Normalized++
		}

		edge := common.Edge{From: from, To: to, Relation: rel}
		if _, dup := seen[edge.Key()]; dup {
			summary.Dropped[DropDuplicate]++
			continue
		}
		seen[edge.Key()] = struct{}{}
		edges = append(edges, edge)
	}

	summary.Accepted = len(edges)
	return edges, summary
}

// ValidateKnownEdges re-validates edges that already passed validation once,
// e.g. when merging them with new candidates.
func ValidateKnownEdges(edges []common.Edge, concepts []common.Concept) ([]common.Edge, ValidationSummary) {
	raw := make([]common.EdgeCandidate, len(edges))
	for i, e := range edges {
		raw[i] = common.CandidateFromEdge(e)
	}
	return ValidateEdges(raw, concepts)
}

func logValidationSummary(label string, s ValidationSummary) {
	logger.Info("[Validate] "+label,
		"input", s.Input,
		"accepted", s.Accepted,
		"normalized", s.Normalized,
		"invalid_id", s.Dropped[DropInvalidID],
		"self_loop", s.Dropped[DropSelfLoop],
		"invalid_relation", s.Dropped[DropInvalidRelation],
		"duplicate", s.Dropped[DropDuplicate],
		"malformed", s.Dropped[DropMalformed],
		"integrity", s.Dropped[DropIntegrity],
	)
}
