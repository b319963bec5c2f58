package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/lecturemap/pkg/ai"
	"github.com/OFFIS-RIT/lecturemap/pkg/common"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"
)

const (
	conceptTemperature = 0.8
	edgeTemperature    = 0.3

	// DefaultExcerptChars is how much of a chunk the refine step sees next
	// to the candidate terms.
	DefaultExcerptChars = 2000
)

type extractConcept struct {
	Label       string  `json:"label" jsonschema_description:"Clear, concise name of the concept (2-5 words)"`
	Type        string  `json:"type" jsonschema_description:"One of the provided concept types"`
	Description string  `json:"description" jsonschema_description:"One sentence describing the concept, under 20 words"`
	Popularity  flexInt `json:"popularity" jsonschema_description:"Importance in the lecture from 1 (briefly mentioned) to 5 (central)"`
}

type extractConceptResponse struct {
	Concepts []extractConcept `json:"concepts" jsonschema_description:"Concepts selected from the candidate terms"`
}

type extractEdge struct {
	From     string `json:"from" jsonschema_description:"Id of the source concept"`
	To       string `json:"to" jsonschema_description:"Id of the target concept"`
	Relation string `json:"relation" jsonschema_description:"One of depends_on, leads_to, example_of, derived_from"`
}

type extractEdgeResponse struct {
	Edges []extractEdge `json:"edges" jsonschema_description:"Relationships between the given concepts"`
}

// flexInt accepts 4, 4.0 and "4". Anything else decodes to 0, which the
// deduplicator replaces with the default popularity.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexInt(int(v))
		return nil
	}
	*f = 0
	return nil
}

// AIProposer proposes concepts and edges with a language model. It
// implements both ConceptProposer and EdgeProposer.
type AIProposer struct {
	client       ai.GraphAIClient
	structured   bool
	excerptChars int
	thinking     string
}

type NewAIProposerParams struct {
	Client ai.GraphAIClient
	// StructuredOutput requests schema-constrained JSON instead of parsing
	// free text. Not every OpenAI compatible server supports it.
	StructuredOutput bool
	ExcerptChars     int
	Thinking         string
}

func NewAIProposer(params NewAIProposerParams) *AIProposer {
	return &AIProposer{
		client:       params.Client,
		structured:   params.StructuredOutput,
		excerptChars: orDefault(params.ExcerptChars, DefaultExcerptChars),
		thinking:     params.Thinking,
	}
}

func (p *AIProposer) options(temperature float64) []ai.GenerateOption {
	opts := []ai.GenerateOption{ai.WithTemperature(temperature)}
	if p.thinking != "" {
		opts = append(opts, ai.WithThinking(p.thinking))
	}
	return opts
}

// ProposeConcepts runs two model calls: a broad sweep for candidate terms,
// then a refinement that picks the important ones and annotates them.
func (p *AIProposer) ProposeConcepts(ctx context.Context, chunk string) ([]common.ConceptCandidate, error) {
	terms, err := p.candidateTerms(ctx, chunk)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, nil
	}

	termsJSON, _ := json.Marshal(terms)
	prompt := fmt.Sprintf(
		ai.RefineConceptsPrompt,
		string(termsJSON),
		leadingRunes(chunk, p.excerptChars),
		strings.Join(common.ConceptTypeNames(), ", "),
	)

	var concepts []extractConcept
	if p.structured {
		var res extractConceptResponse
		if err := p.client.GenerateCompletionWithFormat(
			ctx,
			"concepts",
			"Lecture concepts with type, description and popularity",
			prompt,
			&res,
			p.options(conceptTemperature)...,
		); err != nil {
			return nil, fmt.Errorf("refine concepts: %w", err)
		}
		concepts = res.Concepts
	} else {
		concepts, err = completeList[extractConcept](ctx, p, "concepts", prompt, conceptTemperature)
		if err != nil {
			return nil, fmt.Errorf("refine concepts: %w", err)
		}
	}

	out := make([]common.ConceptCandidate, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, common.ConceptCandidate{
			Label:       c.Label,
			Type:        c.Type,
			Description: c.Description,
			Popularity:  int(c.Popularity),
		})
	}
	return out, nil
}

func (p *AIProposer) candidateTerms(ctx context.Context, chunk string) ([]string, error) {
	res, err := p.client.GenerateCompletion(
		ctx,
		fmt.Sprintf(ai.CandidateTermsPrompt, chunk),
		p.options(conceptTemperature)...,
	)
	if err != nil {
		return nil, fmt.Errorf("candidate terms: %w", err)
	}

	decoded := ai.DecodeList[string](res)
	if !decoded.OK() {
		return nil, fmt.Errorf("candidate terms: %w", decoded.Err)
	}
	terms := make([]string, 0, len(decoded.Items))
	for _, t := range decoded.Items {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms, nil
}

// ProposeEdges asks for relations between the given concepts. The thematic
// pass sees the lecture text, the conceptual pass sees concepts grouped by
// popularity.
func (p *AIProposer) ProposeEdges(ctx context.Context, req EdgeRequest) ([]common.EdgeCandidate, error) {
	var conceptsJSON []byte
	lecture := req.Context
	switch req.Focus {
	case FocusConceptual:
		conceptsJSON, _ = json.MarshalIndent(groupByPriority(req.Concepts), "", "  ")
		lecture = ai.NoLectureContext
	default:
		conceptsJSON, _ = json.MarshalIndent(conceptSummaries(req.Concepts, false), "", "  ")
		if strings.TrimSpace(lecture) == "" {
			lecture = ai.NoLectureContext
		}
	}

	prompt := fmt.Sprintf(ai.EdgePrompt, string(conceptsJSON), lecture, req.TargetEdges)
	return p.proposeEdgeList(ctx, "edges", prompt)
}

// ProposeConnectingEdges asks for edges touching the isolated concepts.
func (p *AIProposer) ProposeConnectingEdges(ctx context.Context, req ConnectivityRequest) ([]common.EdgeCandidate, error) {
	conceptsJSON, _ := json.MarshalIndent(conceptSummaries(req.Concepts, false), "", "  ")
	isolatedJSON, _ := json.MarshalIndent(conceptSummaries(req.Isolated, true), "", "  ")
	edgesJSON, _ := json.Marshal(req.ExistingEdges)

	prompt := fmt.Sprintf(ai.ConnectivityPrompt, string(conceptsJSON), string(isolatedJSON), string(edgesJSON))
	return p.proposeEdgeList(ctx, "connecting_edges", prompt)
}

func (p *AIProposer) proposeEdgeList(ctx context.Context, name, prompt string) ([]common.EdgeCandidate, error) {
	var edges []extractEdge
	if p.structured {
		var res extractEdgeResponse
		if err := p.client.GenerateCompletionWithFormat(
			ctx,
			name,
			"Directed relations between lecture concepts",
			prompt,
			&res,
			p.options(edgeTemperature)...,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		edges = res.Edges
	} else {
		var err error
		edges, err = completeList[extractEdge](ctx, p, name, prompt, edgeTemperature)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	out := make([]common.EdgeCandidate, len(edges))
	for i, e := range edges {
		out[i] = common.EdgeCandidate{From: e.From, To: e.To, Relation: e.Relation}
	}
	return out, nil
}

// completeList runs a free-text completion and decodes a JSON list from it.
// Broken elements are skipped; output that is no list at all is an error.
func completeList[T any](ctx context.Context, p *AIProposer, name, prompt string, temperature float64) ([]T, error) {
	res, err := p.client.GenerateCompletion(ctx, prompt, p.options(temperature)...)
	if err != nil {
		return nil, err
	}

	decoded := ai.DecodeList[T](res)
	if !decoded.OK() {
		return nil, decoded.Err
	}
	if decoded.Skipped > 0 {
		logger.Debug("[Graph] Skipped malformed list items", "name", name, "skipped", decoded.Skipped)
	}
	return decoded.Items, nil
}

type conceptSummary struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Popularity  int    `json:"popularity,omitempty"`
}

// conceptSummaries renders concepts for prompts. brief leaves out the
// description and popularity.
func conceptSummaries(concepts []common.Concept, brief bool) []conceptSummary {
	out := make([]conceptSummary, len(concepts))
	for i, c := range concepts {
		out[i] = conceptSummary{ID: c.ID, Label: c.Label, Type: string(c.Type)}
		if !brief {
			out[i].Description = c.Description
			out[i].Popularity = c.Popularity
		}
	}
	return out
}

type priorityGroups struct {
	High   []conceptSummary `json:"high_priority"`
	Medium []conceptSummary `json:"medium_priority"`
	Low    []conceptSummary `json:"low_priority"`
}

// groupByPriority splits concepts into popularity 4-5, 3 and 1-2.
func groupByPriority(concepts []common.Concept) priorityGroups {
	g := priorityGroups{
		High:   []conceptSummary{},
		Medium: []conceptSummary{},
		Low:    []conceptSummary{},
	}
	for _, s := range conceptSummaries(concepts, false) {
		switch {
		case s.Popularity >= 4:
			g.High = append(g.High, s)
		case s.Popularity == 3:
			g.Medium = append(g.Medium, s)
		default:
			g.Low = append(g.Low, s)
		}
	}
	return g
}

var (
	_ ConceptProposer = (*AIProposer)(nil)
	_ EdgeProposer    = (*AIProposer)(nil)
)
