package retrieval

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/siherrmann/vaultgraph/model"
)

var queryVector = model.Embedding{1, 0}

// withSimilarity returns a unit vector whose cosine to queryVector is sim.
func withSimilarity(sim float64) model.Embedding {
	return model.Embedding{float32(sim), float32(math.Sqrt(1 - sim*sim))}
}

func newDoc(name string, text string, embedding model.Embedding) *model.Document {
	doc := &model.Document{
		RID:       uuid.New(),
		Name:      name,
		Embedding: embedding,
	}
	if text != "" {
		doc.Text = &text
	}
	return doc
}

type mockCorpus struct {
	mu        sync.Mutex
	docs      []*model.Document
	err       error
	lastLimit int
}

func (m *mockCorpus) SelectRecentDocuments(ctx context.Context, limit int) ([]*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if len(m.docs) > limit {
		return m.docs[:limit], nil
	}
	return m.docs, nil
}

type mockEmbedder struct {
	embedding model.Embedding
	err       error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (model.Embedding, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.embedding, nil
}

var errUpstream = errors.New("upstream unavailable")
