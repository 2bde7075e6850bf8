package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/vaultgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initDocumentsHandler(t *testing.T) *DocumentsDBHandler {
	database := initDB(t)

	documentsDbHandler, err := NewDocumentsDBHandler(database, testDim, true)
	require.NoError(t, err, "Expected NewDocumentsDBHandler to not return an error")

	_, err = database.Instance.Exec(`TRUNCATE documents;`)
	require.NoError(t, err)

	return documentsDbHandler
}

func newTestDocument(name string, text string, embedding model.Embedding) *model.Document {
	return &model.Document{
		Name:       name,
		Text:       &text,
		Embedding:  embedding,
		Categories: []string{"Science"},
		Keywords:   []string{"test"},
		Status:     model.DocumentStatusProcessed,
		Metadata:   model.Metadata{"source": name},
	}
}

func TestDocumentsNewDocumentsDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewDocumentsDBHandler", func(t *testing.T) {
		documentsDbHandler, err := NewDocumentsDBHandler(database, testDim, true)
		assert.NoError(t, err, "Expected NewDocumentsDBHandler to not return an error")
		require.NotNil(t, documentsDbHandler, "Expected NewDocumentsDBHandler to return a non-nil instance")
		require.NotNil(t, documentsDbHandler.db.Instance, "Expected NewDocumentsDBHandler to have a non-nil database connection instance")
		assert.Equal(t, testDim, documentsDbHandler.EmbeddingDim())
	})

	t.Run("Valid call NewDocumentsDBHandler without force", func(t *testing.T) {
		_, err := NewDocumentsDBHandler(database, testDim, false)
		assert.NoError(t, err)
	})

	t.Run("Invalid call NewDocumentsDBHandler with nil database", func(t *testing.T) {
		_, err := NewDocumentsDBHandler(nil, testDim, false)
		assert.Error(t, err, "Expected error when creating DocumentsDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil")
	})

	t.Run("Invalid call NewDocumentsDBHandler with zero dimension", func(t *testing.T) {
		_, err := NewDocumentsDBHandler(database, 0, false)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "embedding dimension must be positive")
	})
}

func TestDocumentsInsert(t *testing.T) {
	documentsDbHandler := initDocumentsHandler(t)
	ctx := context.Background()

	t.Run("Insert document with embedding and labels", func(t *testing.T) {
		doc := newTestDocument("physics.txt", "Quantum physics notes", model.Embedding{1, 0, 0})
		doc.RID = uuid.New()
		rid := doc.RID

		err := documentsDbHandler.InsertDocument(ctx, doc)
		require.NoError(t, err, "Expected Insert to not return an error")
		assert.Equal(t, rid, doc.RID, "Expected the given RID to be kept")
		assert.NotZero(t, doc.ID)
		assert.WithinDuration(t, time.Now(), doc.CreatedAt, 5*time.Second, "Expected CreatedAt to be set")
		assert.Equal(t, "physics.txt", doc.Name)
		assert.Equal(t, "Quantum physics notes", doc.TextValue())
		assert.Nil(t, doc.Summary)
		assert.Equal(t, model.Embedding{1, 0, 0}, doc.Embedding)
		assert.Equal(t, []string{"Science"}, doc.Categories)
		assert.Equal(t, []string{"test"}, doc.Keywords)
		assert.Equal(t, model.DocumentStatusProcessed, doc.Status)
		assert.Equal(t, "physics.txt", doc.Metadata["source"])
	})

	t.Run("Insert document without optional fields", func(t *testing.T) {
		doc := &model.Document{Name: "empty.pdf"}

		err := documentsDbHandler.InsertDocument(ctx, doc)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, doc.RID, "Expected a generated RID")
		assert.Nil(t, doc.Text)
		assert.Nil(t, doc.Embedding)
		assert.Empty(t, doc.Categories)
		assert.Equal(t, model.DocumentStatusUploaded, doc.Status, "Expected the default status")
		assert.NotNil(t, doc.Metadata)
	})

	t.Run("Insert document with wrong embedding dimension", func(t *testing.T) {
		doc := newTestDocument("wrong.txt", "text", model.Embedding{1, 0})

		err := documentsDbHandler.InsertDocument(ctx, doc)
		assert.ErrorIs(t, err, model.ErrEmbeddingDimension)
	})
}

func TestDocumentsSelect(t *testing.T) {
	documentsDbHandler := initDocumentsHandler(t)
	ctx := context.Background()

	doc := newTestDocument("notes.md", "some notes", model.Embedding{0, 1, 0})
	require.NoError(t, documentsDbHandler.InsertDocument(ctx, doc))

	t.Run("Select existing document", func(t *testing.T) {
		found, err := documentsDbHandler.SelectDocument(ctx, doc.RID)
		require.NoError(t, err)
		assert.Equal(t, doc.ID, found.ID)
		assert.Equal(t, doc.Name, found.Name)
		assert.Equal(t, doc.Embedding, found.Embedding)
		assert.Equal(t, doc.Categories, found.Categories)
	})

	t.Run("Select missing document", func(t *testing.T) {
		_, err := documentsDbHandler.SelectDocument(ctx, uuid.New())
		assert.Error(t, err)
	})
}

func TestDocumentsSelectRecent(t *testing.T) {
	documentsDbHandler := initDocumentsHandler(t)
	ctx := context.Background()

	names := []string{"first", "second", "third"}
	for _, name := range names {
		require.NoError(t, documentsDbHandler.InsertDocument(ctx, newTestDocument(name, name, nil)))
		time.Sleep(5 * time.Millisecond)
	}

	t.Run("Select recent documents newest first", func(t *testing.T) {
		docs, err := documentsDbHandler.SelectRecentDocuments(ctx, 10)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "third", docs[0].Name)
		assert.Equal(t, "second", docs[1].Name)
		assert.Equal(t, "first", docs[2].Name)
	})

	t.Run("Select recent documents respects the limit", func(t *testing.T) {
		docs, err := documentsDbHandler.SelectRecentDocuments(ctx, 2)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "third", docs[0].Name)
	})

	t.Run("Select documents page after a cursor", func(t *testing.T) {
		page, err := documentsDbHandler.SelectDocumentsPage(ctx, nil, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)

		next, err := documentsDbHandler.SelectDocumentsPage(ctx, &page[0].CreatedAt, 10)
		require.NoError(t, err)
		require.Len(t, next, 2)
		assert.Equal(t, "second", next[0].Name)
	})
}

func TestDocumentsSelectBySimilarity(t *testing.T) {
	documentsDbHandler := initDocumentsHandler(t)
	ctx := context.Background()

	near := newTestDocument("near", "near", model.Embedding{1, 0.1, 0})
	far := newTestDocument("far", "far", model.Embedding{0, 0, 1})
	none := newTestDocument("none", "none", nil)
	for _, doc := range []*model.Document{near, far, none} {
		require.NoError(t, documentsDbHandler.InsertDocument(ctx, doc))
	}

	t.Run("Select documents by similarity orders by cosine distance", func(t *testing.T) {
		results, err := documentsDbHandler.SelectDocumentsBySimilarity(ctx, model.Embedding{1, 0, 0}, 10, nil)
		require.NoError(t, err)
		require.Len(t, results, 2, "Expected documents without embedding to be skipped")
		assert.Equal(t, "near", results[0].Document.Name)
		assert.InDelta(t, 0.995, results[0].VectorScore, 0.001)
		assert.Equal(t, "far", results[1].Document.Name)
		assert.InDelta(t, 0.0, results[1].VectorScore, 0.001)
		assert.Equal(t, model.VectorStatusOK, results[0].VectorStatus)
	})

	t.Run("Select documents by similarity with excluded document", func(t *testing.T) {
		results, err := documentsDbHandler.SelectDocumentsBySimilarity(ctx, model.Embedding{1, 0, 0}, 10, &near.RID)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "far", results[0].Document.Name)
	})

	t.Run("Select documents by similarity with invalid embedding", func(t *testing.T) {
		_, err := documentsDbHandler.SelectDocumentsBySimilarity(ctx, model.Embedding{1, 0}, 10, nil)
		assert.ErrorIs(t, err, model.ErrEmbeddingDimension)
	})
}

func TestDocumentsUpdate(t *testing.T) {
	documentsDbHandler := initDocumentsHandler(t)
	ctx := context.Background()

	doc := &model.Document{Name: "report.pdf"}
	require.NoError(t, documentsDbHandler.InsertDocument(ctx, doc))

	t.Run("Update document embedding and status", func(t *testing.T) {
		updated, err := documentsDbHandler.UpdateDocumentEmbedding(ctx, doc.RID, model.Embedding{0, 0, 1}, model.DocumentStatusProcessed)
		require.NoError(t, err)
		assert.Equal(t, model.Embedding{0, 0, 1}, updated.Embedding)
		assert.Equal(t, model.DocumentStatusProcessed, updated.Status)
		assert.False(t, updated.UpdatedAt.Before(doc.UpdatedAt))
	})

	t.Run("Update document embedding with empty status keeps the status", func(t *testing.T) {
		updated, err := documentsDbHandler.UpdateDocumentEmbedding(ctx, doc.RID, nil, "")
		require.NoError(t, err)
		assert.Nil(t, updated.Embedding)
		assert.Equal(t, model.DocumentStatusProcessed, updated.Status)
	})

	t.Run("Update document labels", func(t *testing.T) {
		summary := "Quarterly report"
		updated, err := documentsDbHandler.UpdateDocumentLabels(ctx, doc.RID, &summary, []string{"Finance", "Reports"}, []string{"q3"})
		require.NoError(t, err)
		assert.Equal(t, "Quarterly report", updated.SummaryValue())
		assert.Equal(t, []string{"Finance", "Reports"}, updated.Categories)
		assert.Equal(t, []string{"q3"}, updated.Keywords)
	})

	t.Run("Update missing document", func(t *testing.T) {
		_, err := documentsDbHandler.UpdateDocumentLabels(ctx, uuid.New(), nil, nil, nil)
		assert.Error(t, err)
	})
}

func TestDocumentsDelete(t *testing.T) {
	documentsDbHandler := initDocumentsHandler(t)
	ctx := context.Background()

	doc := &model.Document{Name: "delete-me.txt"}
	require.NoError(t, documentsDbHandler.InsertDocument(ctx, doc))

	t.Run("Delete document", func(t *testing.T) {
		err := documentsDbHandler.DeleteDocument(ctx, doc.RID)
		require.NoError(t, err)

		_, err = documentsDbHandler.SelectDocument(ctx, doc.RID)
		assert.Error(t, err, "Expected deleted document to be gone")
	})

	t.Run("Delete missing document is not an error", func(t *testing.T) {
		assert.NoError(t, documentsDbHandler.DeleteDocument(ctx, uuid.New()))
	})
}
