package graph

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/siherrmann/vaultgraph/model"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var errEmbed = errors.New("embedding service down")

// nameEmbedder returns the vector registered for the document name the text starts with.
type nameEmbedder struct {
	mu      sync.Mutex
	vectors map[string]model.Embedding
	failing map[string]bool
	texts   []string
	calls   atomic.Int32
}

func newNameEmbedder() *nameEmbedder {
	return &nameEmbedder{
		vectors: make(map[string]model.Embedding),
		failing: make(map[string]bool),
	}
}

func (m *nameEmbedder) Embed(ctx context.Context, text string) (model.Embedding, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)

	name, _, _ := strings.Cut(text, " ")
	if m.failing[name] {
		return nil, errEmbed
	}
	v, ok := m.vectors[name]
	if !ok {
		return nil, errors.New("unknown document " + name)
	}
	return v, nil
}

func graphDoc(name string, summary string, categories ...string) model.Document {
	doc := model.Document{
		RID:        uuid.New(),
		Name:       name,
		Categories: categories,
	}
	if summary != "" {
		doc.Summary = &summary
	}
	return doc
}
