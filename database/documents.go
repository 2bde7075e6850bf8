package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/vaultgraph/helper"
	"github.com/siherrmann/vaultgraph/model"
	"github.com/siherrmann/vaultgraph/sql"
)

// DocumentsDBHandlerFunctions defines the interface for Documents database operations.
type DocumentsDBHandlerFunctions interface {
	InsertDocument(ctx context.Context, doc *model.Document) error
	SelectDocument(ctx context.Context, rid uuid.UUID) (*model.Document, error)
	SelectRecentDocuments(ctx context.Context, limit int) ([]*model.Document, error)
	SelectDocumentsPage(ctx context.Context, lastCreatedAt *time.Time, limit int) ([]*model.Document, error)
	SelectDocumentsBySimilarity(ctx context.Context, embedding model.Embedding, limit int, excludeRID *uuid.UUID) ([]*model.ScoredDocument, error)
	UpdateDocumentEmbedding(ctx context.Context, rid uuid.UUID, embedding model.Embedding, status model.DocumentStatus) (*model.Document, error)
	UpdateDocumentLabels(ctx context.Context, rid uuid.UUID, summary *string, categories []string, keywords []string) (*model.Document, error)
	DeleteDocument(ctx context.Context, rid uuid.UUID) error
}

// DocumentsDBHandler handles document-related database operations
type DocumentsDBHandler struct {
	db           *helper.Database
	embeddingDim int
}

// NewDocumentsDBHandler creates a new documents database handler.
// It loads the document SQL functions and creates the table with an
// embedding column of the given dimension.
// If force is true, it will reload the SQL functions even if they already exist.
func NewDocumentsDBHandler(db *helper.Database, embeddingDim int, force bool) (*DocumentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	documentsDbHandler := &DocumentsDBHandler{
		db:           db,
		embeddingDim: embeddingDim,
	}

	err := sql.LoadDocumentsSql(documentsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	err = documentsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DocumentsDBHandler", "embedding_dim", embeddingDim)

	return documentsDbHandler, nil
}

// EmbeddingDim returns the dimension of the embedding column.
func (h *DocumentsDBHandler) EmbeddingDim() int {
	return h.embeddingDim
}

// CreateTable creates the 'documents' table with its indexes and trigger.
// If the table already exists, it does not create it again.
func (h *DocumentsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_documents($1);`, h.embeddingDim)
	if err != nil {
		return helper.NewError("init documents", err)
	}

	h.db.Logger.Info("Checked/created table documents")

	return nil
}

// InsertDocument inserts a new document and fills in the generated fields.
// A zero RID is replaced by a database generated one.
func (h *DocumentsDBHandler) InsertDocument(ctx context.Context, doc *model.Document) error {
	if doc.HasEmbedding() {
		if err := doc.Embedding.Validate(h.embeddingDim); err != nil {
			return helper.NewError("validate embedding", err)
		}
	}

	var rid *uuid.UUID
	if doc.RID != uuid.Nil {
		rid = &doc.RID
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_document($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rid,
		doc.Name,
		doc.Text,
		doc.Summary,
		vectorParam(doc.Embedding),
		pq.Array(doc.Categories),
		pq.Array(doc.Keywords),
		string(doc.Status),
		doc.Metadata,
	)

	err := scanDocument(row, doc)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectDocument retrieves a document by RID
func (h *DocumentsDBHandler) SelectDocument(ctx context.Context, rid uuid.UUID) (*model.Document, error) {
	doc := &model.Document{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_document($1)`,
		rid,
	)

	err := scanDocument(row, doc)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}

// SelectRecentDocuments returns the newest documents first.
func (h *DocumentsDBHandler) SelectRecentDocuments(ctx context.Context, limit int) ([]*model.Document, error) {
	return h.SelectDocumentsPage(ctx, nil, limit)
}

// SelectDocumentsPage returns documents created before lastCreatedAt, newest first.
// A nil lastCreatedAt starts at the newest document.
func (h *DocumentsDBHandler) SelectDocumentsPage(ctx context.Context, lastCreatedAt *time.Time, limit int) ([]*model.Document, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_recent_documents($1, $2)`,
		lastCreatedAt,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var documents []*model.Document
	for rows.Next() {
		doc := &model.Document{}
		err := scanDocument(rows, doc)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		documents = append(documents, doc)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return documents, nil
}

// SelectDocumentsBySimilarity returns the documents nearest to the embedding
// by cosine distance. Documents without an embedding are never returned.
// excludeRID may be nil.
func (h *DocumentsDBHandler) SelectDocumentsBySimilarity(ctx context.Context, embedding model.Embedding, limit int, excludeRID *uuid.UUID) ([]*model.ScoredDocument, error) {
	if err := embedding.Validate(h.embeddingDim); err != nil {
		return nil, helper.NewError("validate embedding", err)
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_documents_by_similarity($1, $2, $3)`,
		pgvector.NewVector(embedding),
		limit,
		excludeRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*model.ScoredDocument
	for rows.Next() {
		doc := model.Document{}
		var similarity float64
		err := scanDocument(rows, &doc, &similarity)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		results = append(results, &model.ScoredDocument{
			Document:     doc,
			VectorScore:  similarity,
			Score:        similarity,
			VectorStatus: model.VectorStatusOK,
		})
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// UpdateDocumentEmbedding stores a new embedding and status.
// A nil embedding clears the stored vector, an empty status keeps the current one.
func (h *DocumentsDBHandler) UpdateDocumentEmbedding(ctx context.Context, rid uuid.UUID, embedding model.Embedding, status model.DocumentStatus) (*model.Document, error) {
	if embedding != nil {
		if err := embedding.Validate(h.embeddingDim); err != nil {
			return nil, helper.NewError("validate embedding", err)
		}
	}

	doc := &model.Document{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM update_document_embedding($1, $2, $3)`,
		rid,
		vectorParam(embedding),
		string(status),
	)

	err := scanDocument(row, doc)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}

// UpdateDocumentLabels replaces summary, categories and keywords of a document.
func (h *DocumentsDBHandler) UpdateDocumentLabels(ctx context.Context, rid uuid.UUID, summary *string, categories []string, keywords []string) (*model.Document, error) {
	doc := &model.Document{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM update_document_labels($1, $2, $3, $4)`,
		rid,
		summary,
		pq.Array(categories),
		pq.Array(keywords),
	)

	err := scanDocument(row, doc)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}

// DeleteDocument deletes a document by RID
func (h *DocumentsDBHandler) DeleteDocument(ctx context.Context, rid uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_document($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanDocument scans the output columns shared by all document functions.
// extra receives any trailing columns.
func scanDocument(row rowScanner, doc *model.Document, extra ...interface{}) error {
	var embedding *pgvector.Vector
	dest := []interface{}{
		&doc.ID,
		&doc.RID,
		&doc.Name,
		&doc.Text,
		&doc.Summary,
		&embedding,
		pq.Array(&doc.Categories),
		pq.Array(&doc.Keywords),
		&doc.Status,
		&doc.Metadata,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	}
	dest = append(dest, extra...)

	err := row.Scan(dest...)
	if err != nil {
		return err
	}

	doc.Embedding = nil
	if embedding != nil {
		doc.Embedding = model.Embedding(embedding.Slice())
	}
	return nil
}

// vectorParam binds an absent embedding as NULL.
func vectorParam(e model.Embedding) interface{} {
	if len(e) == 0 {
		return nil
	}
	return pgvector.NewVector(e)
}
