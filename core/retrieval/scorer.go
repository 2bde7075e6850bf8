package retrieval

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/vaultgraph/core/vector"
	"github.com/siherrmann/vaultgraph/model"
)

// Tokenize lower-cases the query and splits it on whitespace. Tokens shorter
// than minLen runes are dropped and repeated tokens are kept once.
func Tokenize(query string, minLen int) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minLen || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

// VectorScore compares the query with the document embedding. Documents
// without a usable embedding score 0; the status tells them apart.
func VectorScore(queryEmbedding model.Embedding, doc *model.Document) (float64, model.VectorStatus) {
	if !doc.HasEmbedding() {
		return 0, model.VectorStatusMissing
	}
	if err := doc.Embedding.Validate(len(queryEmbedding)); err != nil {
		return 0, model.VectorStatusInvalid
	}
	sim, err := vector.CosineSimilarity(queryEmbedding, doc.Embedding)
	if err != nil {
		return 0, model.VectorStatusInvalid
	}
	return sim, model.VectorStatusOK
}

// KeywordBoost adds increment for every token found in the lower-cased text,
// never exceeding limit. Documents without text get no boost.
func KeywordBoost(tokens []string, doc *model.Document, increment float64, limit float64) float64 {
	if !doc.HasText() || len(tokens) == 0 {
		return 0
	}

	text := strings.ToLower(doc.TextValue())
	boost := 0.0
	for _, token := range tokens {
		if strings.Contains(text, token) {
			boost += increment
		}
	}
	return math.Min(boost, limit)
}

// ScoreDocument computes the hybrid score of one candidate.
func ScoreDocument(queryEmbedding model.Embedding, tokens []string, doc *model.Document, config model.RetrievalConfig) model.ScoredDocument {
	vectorScore, status := VectorScore(queryEmbedding, doc)
	boost := KeywordBoost(tokens, doc, config.KeywordIncrement, config.KeywordBoostCap)

	return model.ScoredDocument{
		Document:     *doc,
		VectorScore:  vectorScore,
		KeywordBoost: boost,
		Score:        vectorScore + boost,
		VectorStatus: status,
	}
}

// ScoreDocuments scores every non-nil document, keeping the input order.
func ScoreDocuments(queryEmbedding model.Embedding, tokens []string, docs []*model.Document, config model.RetrievalConfig) []model.ScoredDocument {
	scored := make([]model.ScoredDocument, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		scored = append(scored, ScoreDocument(queryEmbedding, tokens, doc, config))
	}
	return scored
}
