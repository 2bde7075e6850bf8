package model

import (
	"github.com/google/uuid"
)

// EdgeType represents the type of relationship between documents
type EdgeType string

const (
	EdgeTypeSemantic EdgeType = "semantic"
)

const (
	ReasonSharedTopicsPrefix    = "Shared Topics: "
	ReasonConceptualSimilarity = "Conceptual Similarity"
)

// SemanticEdge is an undirected link between two documents whose embeddings are close.
// The names identify the endpoints when the documents carry no RID.
type SemanticEdge struct {
	Source           uuid.UUID `json:"source"`
	Target           uuid.UUID `json:"target"`
	SourceName       string    `json:"source_name"`
	TargetName       string    `json:"target_name"`
	Similarity       float64   `json:"similarity"`
	Type             EdgeType  `json:"type"`
	Reason           string    `json:"reason"`
	SharedCategories []string  `json:"shared_categories,omitempty"`
}

// EdgeKey identifies an unordered document pair.
type EdgeKey [2]uuid.UUID

// Key returns the same value for (a, b) and (b, a).
func (e SemanticEdge) Key() EdgeKey {
	a, b := e.Source, e.Target
	if a.String() > b.String() {
		a, b = b, a
	}
	return EdgeKey{a, b}
}

// Other returns the endpoint opposite to id.
func (e SemanticEdge) Other(id uuid.UUID) uuid.UUID {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}
