package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	"github.com/soundprediction/chronograph/pkg/llm"
	"github.com/soundprediction/chronograph/pkg/types"
)

const statementExtractionPrompt = `You are an expert extracting atomic statements from text.

Inputs:
- main_entity: %s
- publication_date: %s
- document_chunk: %s

Tasks:
1. Extract clear, single-subject statements.
2. Label each as FACT, OPINION, or PREDICTION.
3. Label each temporally as STATIC, DYNAMIC, or ATEMPORAL.
4. Resolve references to main_entity and include dates/quantities.

Return ONLY a JSON object of the form {"statements": [{"statement": "...", "statement_type": "...", "temporal_type": "..."}]}.`

const tripletExtractionPrompt = `You are an information-extraction assistant.

Task: From the statement, identify all entities (people, organizations, products, concepts) and all triplets (subject, predicate, object) describing their relationships.

Statement: "%s"

Predicate list:
%s

Guidelines:
- List entities with unique entity_idx.
- List triplets linking subjects and objects by entity_idx.
- Use only predicates from the predicate list.
- Exclude temporal expressions from entities and triplets.

Example:
Statement: "Google's revenue increased by 10%% from January through March."
Output: {
  "entities": [
    {"entity_idx": 0, "name": "Google", "type": "Organization", "description": "A multinational technology company."},
    {"entity_idx": 1, "name": "Revenue", "type": "Financial Metric", "description": "Income from normal business."}
  ],
  "triplets": [
    {"subject_name": "Google", "subject_id": 0, "predicate": "INCREASED", "object_name": "Revenue", "object_id": 1, "value": "10%%"}
  ]
}

Return ONLY a valid JSON object with "entities" and "triplets" keys.`

const dateExtractionPrompt = `You are a temporal information extraction specialist.

INPUTS:
- statement: "%s"
- statement_type: "%s"
- temporal_type: "%s"
- publication_date: "%s"
- quarter: "%s"

TASK:
- Analyze the statement and determine the temporal validity range (valid_at, invalid_at).
- Use the publication date as the reference point for relative expressions (e.g., "currently").
- If a relationship is ongoing or its end is not specified, invalid_at should be null.

GUIDANCE:
- For STATIC statements, valid_at is the date the event occurred, and invalid_at is null.
- For DYNAMIC statements, valid_at is when the state began, and invalid_at is when it ended.
- Return dates in ISO 8601 format (e.g., YYYY-MM-DDTHH:MM:SSZ).

Return ONLY a valid JSON object with "valid_at" and "invalid_at" keys.`

// thinkTagRe strips reasoning blocks some chat models prepend to their answer.
var thinkTagRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// LLMExtractor implements Extractor on top of a chat model.
type LLMExtractor struct {
	client               llm.Client
	predicateDefinitions string
}

// NewLLMExtractor creates an extractor backed by the given chat client.
func NewLLMExtractor(client llm.Client) *LLMExtractor {
	return &LLMExtractor{
		client:               client,
		predicateDefinitions: formatPredicateDefinitions(),
	}
}

// ExtractStatements implements Extractor.
func (e *LLMExtractor) ExtractStatements(ctx context.Context, chunk *types.Chunk) ([]types.RawStatement, error) {
	if err := chunk.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chunk: %w", err)
	}

	prompt := fmt.Sprintf(statementExtractionPrompt,
		chunk.Metadata.Company,
		chunk.Metadata.Date.Format("2006-01-02"),
		chunk.Content)

	resp, err := e.client.Chat(ctx, []llm.Message{
		llm.NewSystemMessage("You extract structured data and respond with JSON only."),
		llm.NewUserMessage(prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("statement extraction: %w", err)
	}

	var wrapped struct {
		Statements []types.RawStatement `json:"statements"`
	}
	if err := unmarshalResponse(resp, &wrapped); err != nil {
		return nil, fmt.Errorf("statement extraction: %w", err)
	}

	statements := make([]types.RawStatement, 0, len(wrapped.Statements))
	for _, s := range wrapped.Statements {
		s.Statement = strings.TrimSpace(s.Statement)
		if s.Statement == "" {
			continue
		}
		statements = append(statements, s)
	}
	return statements, nil
}

// ExtractTriplets implements Extractor.
func (e *LLMExtractor) ExtractTriplets(ctx context.Context, statement types.RawStatement) (*types.RawExtraction, error) {
	if err := statement.Validate(); err != nil {
		return nil, fmt.Errorf("invalid statement: %w", err)
	}

	prompt := fmt.Sprintf(tripletExtractionPrompt, statement.Statement, e.predicateDefinitions)

	resp, err := e.client.Chat(ctx, []llm.Message{
		llm.NewSystemMessage("You extract structured data and respond with JSON only."),
		llm.NewUserMessage(prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("triplet extraction: %w", err)
	}

	var extraction types.RawExtraction
	if err := unmarshalResponse(resp, &extraction); err != nil {
		return nil, fmt.Errorf("triplet extraction: %w", err)
	}

	// Drop triplets whose predicate is outside the closed set. The prompt
	// asks for list membership but models stray.
	valid := extraction.Triplets[:0]
	for _, t := range extraction.Triplets {
		if _, ok := types.PredicateDefinitions[t.Predicate]; ok {
			valid = append(valid, t)
		}
	}
	extraction.Triplets = valid

	return &extraction, nil
}

// ExtractTemporalRange implements Extractor.
func (e *LLMExtractor) ExtractTemporalRange(ctx context.Context, statement types.RawStatement, meta types.ChunkMetadata) (*types.RawTemporalRange, error) {
	if err := statement.Validate(); err != nil {
		return nil, fmt.Errorf("invalid statement: %w", err)
	}

	prompt := fmt.Sprintf(dateExtractionPrompt,
		statement.Statement,
		statement.StatementType,
		statement.TemporalType,
		meta.Date.Format("2006-01-02T15:04:05Z07:00"),
		meta.Quarter)

	resp, err := e.client.Chat(ctx, []llm.Message{
		llm.NewSystemMessage("You extract structured data and respond with JSON only."),
		llm.NewUserMessage(prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("temporal range extraction: %w", err)
	}

	var tr types.RawTemporalRange
	if err := unmarshalResponse(resp, &tr); err != nil {
		return nil, fmt.Errorf("temporal range extraction: %w", err)
	}
	return &tr, nil
}

// unmarshalResponse repairs and parses a model response into out. Models wrap
// JSON in prose or markdown fences often enough that a bare json.Unmarshal is
// not good enough.
func unmarshalResponse(resp string, out interface{}) error {
	content := strings.TrimSpace(thinkTagRe.ReplaceAllString(resp, ""))
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	if repaired, err := jsonrepair.JSONRepair(content); err == nil {
		if err := json.Unmarshal([]byte(repaired), out); err == nil {
			return nil
		}
	}

	if err := json.Unmarshal([]byte(content), out); err == nil {
		return nil
	}

	// Last resort: carve out the outermost JSON object from surrounding text.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), out); err != nil {
		return fmt.Errorf("unmarshaling response: %w", err)
	}
	return nil
}

func formatPredicateDefinitions() string {
	names := make([]string, 0, len(types.PredicateDefinitions))
	for p := range types.PredicateDefinitions {
		names = append(names, string(p))
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", name, types.PredicateDefinitions[types.Predicate(name)])
	}
	return strings.TrimRight(b.String(), "\n")
}
