package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRetrievalConfig(t *testing.T) {
	t.Run("Returns expected defaults", func(t *testing.T) {
		config := DefaultRetrievalConfig()

		assert.Equal(t, 5, config.SearchTopK)
		assert.Equal(t, 3, config.ChatTopK)
		assert.Equal(t, 0.15, config.RelevanceFloor)
		assert.Equal(t, 0.15, config.KeywordIncrement)
		assert.Equal(t, 0.45, config.KeywordBoostCap)
		assert.Equal(t, 3, config.MinTokenLength)
		assert.Equal(t, 100, config.CorpusPageSize)
		assert.Equal(t, 8000, config.ContextSnippetLength)
		assert.Equal(t, 150, config.SearchSnippetLength)
	})

	t.Run("TopK depends on mode", func(t *testing.T) {
		config := DefaultRetrievalConfig()

		assert.Equal(t, 5, config.TopK(ModeSearch))
		assert.Equal(t, 3, config.TopK(ModeChat))
		assert.Equal(t, 3, config.TopK(Mode("other")), "Unknown modes use the chat value")
	})
}

func TestDefaultGraphConfig(t *testing.T) {
	config := DefaultGraphConfig()

	assert.Equal(t, 0.8, config.EdgeThreshold)
	assert.Equal(t, 1000, config.EmbedTextLimit)
	assert.Equal(t, 2, config.MaxSharedCategories)
	assert.Equal(t, 4, config.EmbedConcurrency)
	assert.Equal(t, 100, config.CorpusLimit)
}
