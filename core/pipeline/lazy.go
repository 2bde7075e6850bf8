package pipeline

import (
	"context"
	"sync"

	"github.com/siherrmann/vaultgraph/helper"
	"github.com/siherrmann/vaultgraph/model"
)

// LazyEmbedder defers loading the embedding model until the first Embed call.
// A failed load is not remembered, the next call tries again.
type LazyEmbedder struct {
	init func() (EmbedFunc, error)

	mu sync.Mutex
	fn EmbedFunc
}

// NewLazyEmbedder defers init until the first Embed call.
func NewLazyEmbedder(init func() (EmbedFunc, error)) *LazyEmbedder {
	return &LazyEmbedder{init: init}
}

func (l *LazyEmbedder) load() (EmbedFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fn != nil {
		return l.fn, nil
	}
	fn, err := l.init()
	if err != nil {
		return nil, helper.NewError("load embedder", err)
	}
	l.fn = fn
	return fn, nil
}

// Loaded reports whether the model has been initialized.
func (l *LazyEmbedder) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fn != nil
}

// Embed loads the model if needed. A failed load is retried on the next call.
func (l *LazyEmbedder) Embed(ctx context.Context, text string) (model.Embedding, error) {
	fn, err := l.load()
	if err != nil {
		return nil, err
	}
	return fn.Embed(ctx, text)
}
