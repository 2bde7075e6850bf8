package model

// Mode selects how many candidates a query keeps and how the answer is rendered.
type Mode string

const (
	ModeSearch Mode = "search"
	ModeChat   Mode = "chat"
)

// RetrievalConfig represents configuration for a retrieval query
type RetrievalConfig struct {
	// Top-K per mode
	SearchTopK int `json:"search_top_k"`
	ChatTopK   int `json:"chat_top_k"`

	// Minimum score a candidate needs to count as relevant
	RelevanceFloor float64 `json:"relevance_floor"`

	// Keyword boost parameters
	KeywordIncrement float64 `json:"keyword_increment"`
	KeywordBoostCap  float64 `json:"keyword_boost_cap"`
	MinTokenLength   int     `json:"min_token_length"`

	// Corpus and output bounds
	CorpusPageSize       int `json:"corpus_page_size"`
	ContextSnippetLength int `json:"context_snippet_length"`
	SearchSnippetLength  int `json:"search_snippet_length"`
}

// DefaultRetrievalConfig returns a sensible default configuration
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		SearchTopK:           5,
		ChatTopK:             3,
		RelevanceFloor:       0.15,
		KeywordIncrement:     0.15,
		KeywordBoostCap:      0.45,
		MinTokenLength:       3,
		CorpusPageSize:       100,
		ContextSnippetLength: 8000,
		SearchSnippetLength:  150,
	}
}

// TopK returns the number of candidates kept for the given mode.
// Unknown modes fall back to the chat value.
func (c RetrievalConfig) TopK(mode Mode) int {
	if mode == ModeSearch {
		return c.SearchTopK
	}
	return c.ChatTopK
}

// GraphConfig represents configuration for semantic graph building
type GraphConfig struct {
	EdgeThreshold       float64 `json:"edge_threshold"`
	EmbedTextLimit      int     `json:"embed_text_limit"`
	MaxSharedCategories int     `json:"max_shared_categories"`
	EmbedConcurrency    int     `json:"embed_concurrency"`
	CorpusLimit         int     `json:"corpus_limit"`
}

// DefaultGraphConfig returns a sensible default configuration
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{
		EdgeThreshold:       0.8,
		EmbedTextLimit:      1000,
		MaxSharedCategories: 2,
		EmbedConcurrency:    4,
		CorpusLimit:         100,
	}
}
