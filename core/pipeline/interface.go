package pipeline

import (
	"context"
	"errors"

	"github.com/siherrmann/vaultgraph/helper"
	"github.com/siherrmann/vaultgraph/model"
)

// DefaultIngestTextLimit is how many runes of extracted text are embedded at ingestion.
// The default model ignores input after roughly 512 tokens.
const DefaultIngestTextLimit = 2000

var ErrNoText = errors.New("document has no text to embed")

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (model.Embedding, error)
}

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// Embed implements Embedder. The context is only checked before the call
// since the function itself is not cancellable.
func (f EmbedFunc) Embed(ctx context.Context, text string) (model.Embedding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := f(text)
	if err != nil {
		return nil, err
	}
	return model.Embedding(e), nil
}

// Pipeline prepares documents for retrieval by embedding their text once.
type Pipeline struct {
	Embedder  Embedder
	TextLimit int
}

// NewPipeline creates a new processing pipeline
func NewPipeline(embedder Embedder) *Pipeline {
	return &Pipeline{
		Embedder:  embedder,
		TextLimit: DefaultIngestTextLimit,
	}
}

// Process embeds the beginning of the document text and marks the document processed.
// On failure the document is marked failed and keeps no embedding.
func (p *Pipeline) Process(ctx context.Context, doc *model.Document) error {
	if !doc.HasText() {
		doc.Status = model.DocumentStatusFailed
		return helper.NewError("process document", ErrNoText)
	}

	embedding, err := p.Embedder.Embed(ctx, Truncate(doc.TextValue(), p.TextLimit))
	if err != nil {
		doc.Status = model.DocumentStatusFailed
		doc.Embedding = nil
		return helper.NewError("embed document", err)
	}

	doc.Embedding = embedding
	doc.Status = model.DocumentStatusProcessed
	return nil
}

// Truncate returns at most limit runes of s. A limit <= 0 keeps s unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
