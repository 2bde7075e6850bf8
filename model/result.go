package model

// VectorStatus tells whether the vector part of a score could be computed.
type VectorStatus string

const (
	VectorStatusOK      VectorStatus = "ok"
	VectorStatusMissing VectorStatus = "missing"
	VectorStatusInvalid VectorStatus = "invalid"
)

// AnswerStatus distinguishes an answer from an explicit "nothing relevant" reply.
type AnswerStatus string

const (
	AnswerStatusAnswered          AnswerStatus = "answered"
	AnswerStatusNoRelevantResults AnswerStatus = "no_relevant_results"
)

// ScoredDocument represents a document ranked against a query
type ScoredDocument struct {
	Document     Document     `json:"document"`
	VectorScore  float64      `json:"vector_score"`  // Cosine similarity, 0 if not computable
	KeywordBoost float64      `json:"keyword_boost"` // Capped lexical bonus
	Score        float64      `json:"score"`         // VectorScore + KeywordBoost
	VectorStatus VectorStatus `json:"vector_status"`
}

// RetrievalResult represents the documents retrieved by a query
type RetrievalResult struct {
	Query           string           `json:"query"`
	Mode            Mode             `json:"mode"`
	Candidates      []ScoredDocument `json:"candidates"` // Top-K by score
	Relevant        []ScoredDocument `json:"relevant"`   // Candidates above the floor
	DegenerateQuery bool             `json:"degenerate_query"`
}

func (r *RetrievalResult) HasRelevant() bool {
	return len(r.Relevant) > 0
}

// CitedAnswer is a generated answer with the documents it claims to use.
type CitedAnswer struct {
	Text           string           `json:"text"`
	Citations      []ScoredDocument `json:"citations"`
	ClaimedSources []string         `json:"claimed_sources,omitempty"`
	MarkerFound    bool             `json:"marker_found"`
	Status         AnswerStatus     `json:"status"`
}

// SearchAnswer is the finder listing for a search query.
type SearchAnswer struct {
	Text    string           `json:"text"`
	Results []ScoredDocument `json:"results"`
	Status  AnswerStatus     `json:"status"`
}
