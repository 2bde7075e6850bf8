package database

import (
	"context"
	"fmt"
	"time"

	"github.com/siherrmann/vaultgraph/helper"
)

// IndexType is the approximate nearest neighbour index used on the embedding column.
type IndexType string

const (
	IndexTypeHNSW    IndexType = "hnsw"
	IndexTypeIVFFlat IndexType = "ivfflat"
)

// IndexParams tunes index creation. Zero values fall back to the pgvector defaults.
type IndexParams struct {
	M              int // HNSW, default 16
	EfConstruction int // HNSW, default 64
	Lists          int // IVFFlat, default 100
}

func (p IndexParams) createSQL(indexType IndexType) (string, error) {
	switch indexType {
	case IndexTypeHNSW:
		m := p.M
		if m <= 0 {
			m = 16
		}
		efConstruction := p.EfConstruction
		if efConstruction <= 0 {
			efConstruction = 64
		}
		return fmt.Sprintf(
			`CREATE INDEX idx_documents_embedding ON documents USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, efConstruction,
		), nil
	case IndexTypeIVFFlat:
		lists := p.Lists
		if lists <= 0 {
			lists = 100
		}
		return fmt.Sprintf(
			`CREATE INDEX idx_documents_embedding ON documents USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		), nil
	default:
		return "", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType)
	}
}

// ChangeIndexType replaces the vector index on the documents table.
// Drop and create run in one transaction so a failed create keeps the old index.
func (h *DocumentsDBHandler) ChangeIndexType(ctx context.Context, indexType IndexType, params IndexParams) error {
	createIndexSQL, err := params.createSQL(indexType)
	if err != nil {
		return helper.NewError("change index type", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `DROP INDEX IF EXISTS idx_documents_embedding;`)
	if err != nil {
		return helper.NewError("drop index", err)
	}

	_, err = tx.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit", err)
	}

	h.db.Logger.Info("Changed vector index", "type", indexType, "params", params)

	return nil
}
