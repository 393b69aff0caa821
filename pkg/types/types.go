package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Validation errors
var (
	ErrEmptyName      = errors.New("name cannot be empty")
	ErrEmptyStatement = errors.New("statement cannot be empty")
	ErrEmptyID        = errors.New("id cannot be empty")
	ErrEmptyContent   = errors.New("content cannot be empty")
)

// StatementType classifies the nature of an extracted statement.
type StatementType string

const (
	// StatementFact is an objective, verifiable claim.
	StatementFact StatementType = "FACT"
	// StatementOpinion is a subjective belief or judgment.
	StatementOpinion StatementType = "OPINION"
	// StatementPrediction is a statement about a future event.
	StatementPrediction StatementType = "PREDICTION"
)

// TemporalType classifies the time sensitivity of a statement.
type TemporalType string

const (
	// TemporalAtemporal marks facts that are always true.
	TemporalAtemporal TemporalType = "ATEMPORAL"
	// TemporalStatic marks facts about a single point in time.
	TemporalStatic TemporalType = "STATIC"
	// TemporalDynamic marks facts describing an ongoing state.
	TemporalDynamic TemporalType = "DYNAMIC"
)

// Predicate is the closed set of relationship types used for graph consistency.
type Predicate string

const (
	PredicateIsA              Predicate = "IS_A"
	PredicateHasA             Predicate = "HAS_A"
	PredicateLocatedIn        Predicate = "LOCATED_IN"
	PredicateHoldsRole        Predicate = "HOLDS_ROLE"
	PredicateProduces         Predicate = "PRODUCES"
	PredicateSells            Predicate = "SELLS"
	PredicateLaunched         Predicate = "LAUNCHED"
	PredicateDeveloped        Predicate = "DEVELOPED"
	PredicateAdoptedBy        Predicate = "ADOPTED_BY"
	PredicateInvestsIn        Predicate = "INVESTS_IN"
	PredicateCollaboratesWith Predicate = "COLLABORATES_WITH"
	PredicateSupplies         Predicate = "SUPPLIES"
	PredicateHasRevenue       Predicate = "HAS_REVENUE"
	PredicateIncreased        Predicate = "INCREASED"
	PredicateDecreased        Predicate = "DECREASED"
	PredicateResultedIn       Predicate = "RESULTED_IN"
	PredicateTargets          Predicate = "TARGETS"
	PredicatePartOf           Predicate = "PART_OF"
	PredicateDiscontinued     Predicate = "DISCONTINUED"
	PredicateSecured          Predicate = "SECURED"
)

// PredicateDefinitions maps each predicate to the description used to guide extraction.
var PredicateDefinitions = map[Predicate]string{
	PredicateIsA:              "Denotes a class-or-type relationship (e.g., 'Model Y IS_A electric-SUV').",
	PredicateHasA:             "Denotes a part-whole relationship (e.g., 'Model Y HAS_A electric-engine').",
	PredicateLocatedIn:        "Specifies geographic or organisational containment.",
	PredicateHoldsRole:        "Connects a person to a formal office or title.",
	PredicateProduces:         "Production or creation relationship.",
	PredicateSells:            "Selling relationship between entities.",
	PredicateLaunched:         "Launch events (e.g., Product LAUNCHED by Company).",
	PredicateDeveloped:        "Development relationship (e.g., Software DEVELOPED by Team).",
	PredicateAdoptedBy:        "Adoption relationship (e.g., Policy ADOPTED_BY Organization).",
	PredicateInvestsIn:        "Investment relationship (e.g., Company INVESTS_IN Startup).",
	PredicateCollaboratesWith: "Collaboration between entities.",
	PredicateSupplies:         "Supplier relationship (e.g., Supplier SUPPLIES Parts).",
	PredicateHasRevenue:       "Revenue relationship for entities.",
	PredicateIncreased:        "An increase event or metric change.",
	PredicateDecreased:        "A decrease event or metric change.",
	PredicateResultedIn:       "Causal relationship (e.g., Event RESULTED_IN Outcome).",
	PredicateTargets:          "Target or goal relationship.",
	PredicatePartOf:           "Part-whole relationship (e.g., Wheel PART_OF Car).",
	PredicateDiscontinued:     "Discontinued status or event.",
	PredicateSecured:          "Secured or obtained relationship (e.g., Funding SECURED by Company).",
}

// RawEntityMention is an entity mention emitted by the extraction collaborator.
// LocalIndex is unique only within one extraction batch.
type RawEntityMention struct {
	LocalIndex  int    `json:"entity_idx"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// RawTriplet is a relationship emitted by the extraction collaborator.
// Subject and object reference entity mentions by their LocalIndex.
type RawTriplet struct {
	SubjectName  string    `json:"subject_name"`
	SubjectIndex int       `json:"subject_id"`
	Predicate    Predicate `json:"predicate"`
	ObjectName   string    `json:"object_name"`
	ObjectIndex  int       `json:"object_id"`
	Value        string    `json:"value,omitempty"`
}

// RawStatement is a single extracted statement with its classification labels.
type RawStatement struct {
	Statement     string        `json:"statement"`
	StatementType StatementType `json:"statement_type"`
	TemporalType  TemporalType  `json:"temporal_type"`
}

// Validate checks if the RawStatement has all required fields set.
func (s *RawStatement) Validate() error {
	if s.Statement == "" {
		return ErrEmptyStatement
	}
	return nil
}

// RawExtraction holds all entities and triplets extracted from one statement.
type RawExtraction struct {
	Entities []RawEntityMention `json:"entities"`
	Triplets []RawTriplet       `json:"triplets"`
}

// RawTemporalRange carries the temporal validity range as ISO-8601 date strings,
// exactly as returned by the extraction collaborator. Parse with ParseDateString.
type RawTemporalRange struct {
	ValidAt   string `json:"valid_at,omitempty"`
	InvalidAt string `json:"invalid_at,omitempty"`
}

// CanonicalEntity is the single authoritative identity a cluster of entity
// mentions resolves to. Immutable once minted, except for description backfill.
type CanonicalEntity struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
}

// Validate checks if the CanonicalEntity has all required fields set.
func (e *CanonicalEntity) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyID
	}
	if e.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Triplet is a subject-predicate-object relationship. Past the resolution
// stage SubjectID and ObjectID always reference CanonicalEntity IDs, never
// raw mention indices.
type Triplet struct {
	ID          uuid.UUID `json:"id"`
	SubjectID   uuid.UUID `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	Predicate   Predicate `json:"predicate"`
	ObjectID    uuid.UUID `json:"object_id"`
	ObjectName  string    `json:"object_name"`
	Value       string    `json:"value,omitempty"`
}

// ChunkMetadata is the chunk-level metadata bag passed through unmodified
// into each derived TemporalEvent.
type ChunkMetadata struct {
	Company string    `json:"company"`
	Date    time.Time `json:"date"`
	Quarter string    `json:"quarter"`
}

// Chunk is a unit of unstructured source text to be ingested.
type Chunk struct {
	ID       uuid.UUID     `json:"id"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// Validate checks if the Chunk has all required fields set.
func (c *Chunk) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyID
	}
	if c.Content == "" {
		return ErrEmptyContent
	}
	return nil
}

// SkippedItem records a per-item failure that was isolated from its batch.
// Partial results always carry the list of skipped items and reasons.
type SkippedItem struct {
	Kind   string `json:"kind" parquet:"kind"`
	ID     string `json:"id" parquet:"id"`
	Reason string `json:"reason" parquet:"reason"`
}
