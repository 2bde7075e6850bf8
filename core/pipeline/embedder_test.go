package pipeline

import (
	"context"
	"testing"

	"github.com/siherrmann/vaultgraph/core/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEmbedder(t *testing.T) {
	// Note: DefaultEmbedder uses hugot which requires downloading models
	// These tests may take longer on first run

	t.Run("Generate embedding for text", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
		}

		embedder, err := DefaultEmbedder()
		require.NoError(t, err)

		embedding, err := embedder("This is a test sentence.")

		require.NoError(t, err)
		assert.Equal(t, DefaultModelDim, len(embedding), "all-MiniLM-L6-v2 produces 384-dimensional embeddings")
		assert.InDelta(t, 1.0, vector.Magnitude(embedding), 1e-4, "Embeddings are normalized")
	})

	t.Run("Similar texts are closer than unrelated texts", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
		}

		embedder, err := DefaultEmbedder()
		require.NoError(t, err)

		ctx := context.Background()
		cells, err := embedder.Embed(ctx, "Cell biology and the structure of living cells")
		require.NoError(t, err)
		biology, err := embedder.Embed(ctx, "Introduction to biology and cellular life")
		require.NoError(t, err)
		tax, err := embedder.Embed(ctx, "Quarterly tax return filing instructions")
		require.NoError(t, err)

		related, err := vector.CosineSimilarity(cells, biology)
		require.NoError(t, err)
		unrelated, err := vector.CosineSimilarity(cells, tax)
		require.NoError(t, err)

		assert.Greater(t, related, unrelated)
	})
}
