package retrieval

import (
	"sort"

	"github.com/siherrmann/vaultgraph/model"
)

// SelectTopK returns the k highest scoring documents, best first.
// Equal scores keep their input order. The input slice is not modified.
func SelectTopK(scored []model.ScoredDocument, k int) []model.ScoredDocument {
	if k <= 0 || len(scored) == 0 {
		return []model.ScoredDocument{}
	}

	sorted := make([]model.ScoredDocument, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

// FilterByFloor keeps documents whose score is at least floor.
func FilterByFloor(scored []model.ScoredDocument, floor float64) []model.ScoredDocument {
	relevant := make([]model.ScoredDocument, 0, len(scored))
	for _, s := range scored {
		if s.Score >= floor {
			relevant = append(relevant, s)
		}
	}
	return relevant
}
