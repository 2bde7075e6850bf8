package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/patrickmn/go-cache"
	"github.com/siherrmann/vaultgraph/model"
	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	text      string
	embedding model.Embedding
}

// CachedEmbedder remembers embeddings by text so repeated graph builds over an
// unchanged corpus do not run the model again.
type CachedEmbedder struct {
	inner Embedder
	cache *cache.Cache
	group singleflight.Group
}

// NewCachedEmbedder wraps inner with an expiring cache. Entries live for ttl.
func NewCachedEmbedder(inner Embedder, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func cacheKey(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}

func (c *CachedEmbedder) lookup(key, text string) (model.Embedding, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	entry := v.(cacheEntry)
	// hash collision
	if entry.text != text {
		return nil, false
	}
	return entry.embedding.Clone(), true
}

// Embed returns the cached embedding of text or computes it once for all
// concurrent callers. The shared computation ignores the cancellation of any
// single caller; a cancelled caller returns its context error right away.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (model.Embedding, error) {
	key := cacheKey(text)
	if e, ok := c.lookup(key, text); ok {
		return e, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(text, func() (interface{}, error) {
		if e, ok := c.lookup(key, text); ok {
			return e, nil
		}
		e, err := c.inner.Embed(flightCtx, text)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, cacheEntry{text: text, embedding: e.Clone()}, cache.DefaultExpiration)
		return e, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(model.Embedding).Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of cached embeddings.
func (c *CachedEmbedder) Len() int {
	return c.cache.ItemCount()
}

// Flush drops all cached embeddings.
func (c *CachedEmbedder) Flush() {
	c.cache.Flush()
}
