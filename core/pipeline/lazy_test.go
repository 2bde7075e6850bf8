package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyEmbedder(t *testing.T) {
	t.Run("Initializes on first use only", func(t *testing.T) {
		var inits atomic.Int32
		l := NewLazyEmbedder(func() (EmbedFunc, error) {
			inits.Add(1)
			return mockEmbedFunc, nil
		})
		assert.False(t, l.Loaded())

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := l.Embed(context.Background(), "text")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), inits.Load())
		assert.True(t, l.Loaded())
	})

	t.Run("Failed initialization is retried", func(t *testing.T) {
		calls := 0
		l := NewLazyEmbedder(func() (EmbedFunc, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("model download failed")
			}
			return mockEmbedFunc, nil
		})

		_, err := l.Embed(context.Background(), "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load embedder")
		assert.False(t, l.Loaded())

		e, err := l.Embed(context.Background(), "text")
		require.NoError(t, err)
		assert.Len(t, e, 4)
		assert.Equal(t, 2, calls)
	})
}
