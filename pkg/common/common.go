package common

import "strings"

// Graph is the published result of one build: an ordered concept list and
// the validated edges between them. Both slices are never nil once a graph
// leaves the pipeline so consumers always see JSON arrays.
type Graph struct {
	Concepts []Concept `json:"concepts"`
	Edges    []Edge    `json:"edges"`
}

// EmptyGraph returns a graph with empty, non-nil slices.
func EmptyGraph() Graph {
	return Graph{Concepts: []Concept{}, Edges: []Edge{}}
}

// Concept is a node of the lecture graph.
//
// ID is assigned as C1, C2, ... at the moment a candidate survives
// deduplication and is never changed afterwards.
type Concept struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Type        ConceptType `json:"type"`
	Description string      `json:"description"`
	Popularity  int         `json:"popularity"`
}

// Edge is a directed, typed relation between two concepts.
type Edge struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Relation Relation `json:"relation"`
}

// Key identifies an edge triple.
type EdgeKey struct {
	From, To string
	Relation Relation
}

func (e Edge) Key() EdgeKey {
	return EdgeKey{From: e.From, To: e.To, Relation: e.Relation}
}

// ConceptCandidate is an unvalidated concept as proposed by an extractor.
// Popularity 0 means the extractor did not provide one.
type ConceptCandidate struct {
	Label       string `json:"label"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Popularity  int    `json:"popularity"`
}

// EdgeCandidate is an unvalidated edge as proposed by an extractor.
// Any blank field marks the candidate as malformed.
type EdgeCandidate struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation"`
}

// WellFormed reports whether all three fields carry a value.
func (c EdgeCandidate) WellFormed() bool {
	return strings.TrimSpace(c.From) != "" &&
		strings.TrimSpace(c.To) != "" &&
		strings.TrimSpace(c.Relation) != ""
}

// CandidateFromEdge turns an accepted edge back into a candidate, used when
// already validated edges are fed through validation again.
func CandidateFromEdge(e Edge) EdgeCandidate {
	return EdgeCandidate{From: e.From, To: e.To, Relation: string(e.Relation)}
}

// Relation is the closed vocabulary of edge relations.
type Relation string

const (
	RelationDependsOn   Relation = "depends_on"
	RelationLeadsTo     Relation = "leads_to"
	RelationExampleOf   Relation = "example_of"
	RelationDerivedFrom Relation = "derived_from"
)

// Relations lists every allowed relation in prompt order.
var Relations = []Relation{
	RelationDependsOn,
	RelationLeadsTo,
	RelationExampleOf,
	RelationDerivedFrom,
}

func (r Relation) Valid() bool {
	switch r {
	case RelationDependsOn, RelationLeadsTo, RelationExampleOf, RelationDerivedFrom:
		return true
	}
	return false
}

// ConceptType is the closed vocabulary of concept types.
type ConceptType string

const (
	TypeDefinition  ConceptType = "definition"
	TypeFramework   ConceptType = "framework"
	TypeTheme       ConceptType = "theme"
	TypeDistinction ConceptType = "distinction"
	TypeWorldview   ConceptType = "worldview"
	TypeAlgorithm   ConceptType = "algorithm"
	TypeAssumption  ConceptType = "assumption"
	TypeParameter   ConceptType = "parameter"
	TypeExample     ConceptType = "example"
	TypeTheorem     ConceptType = "theorem"
	TypePrinciple   ConceptType = "principle"
)

// ConceptTypes lists every recognised concept type.
var ConceptTypes = []ConceptType{
	TypeDefinition,
	TypeFramework,
	TypeTheme,
	TypeDistinction,
	TypeWorldview,
	TypeAlgorithm,
	TypeAssumption,
	TypeParameter,
	TypeExample,
	TypeTheorem,
	TypePrinciple,
}

// ParseConceptType maps free text onto the vocabulary. The second return
// value is false when the input is not a recognised type.
func ParseConceptType(s string) (ConceptType, bool) {
	t := ConceptType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ConceptTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// ConceptTypeNames returns the vocabulary as plain strings, for prompts.
func ConceptTypeNames() []string {
	names := make([]string, len(ConceptTypes))
	for i, t := range ConceptTypes {
		names[i] = string(t)
	}
	return names
}
