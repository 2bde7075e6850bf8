package vaultgraph

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/vaultgraph/core/generation"
	"github.com/siherrmann/vaultgraph/core/graph"
	"github.com/siherrmann/vaultgraph/core/pipeline"
	"github.com/siherrmann/vaultgraph/core/retrieval"
	"github.com/siherrmann/vaultgraph/database"
	"github.com/siherrmann/vaultgraph/helper"
	"github.com/siherrmann/vaultgraph/model"
	loadSql "github.com/siherrmann/vaultgraph/sql"
)

// DefaultEmbeddingCacheTTL is how long cached embeddings of the default embedder live.
const DefaultEmbeddingCacheTTL = 10 * time.Minute

// RelatedDocument is a document reached from a selected one over semantic edges.
type RelatedDocument struct {
	Document *model.Document `json:"document"`
	Distance int             `json:"distance"`
	Path     []uuid.UUID     `json:"path"`
}

// VaultGraph ties the document store to ingestion, retrieval and graph building.
type VaultGraph struct {
	DB        *helper.Database
	Documents *database.DocumentsDBHandler

	RetrievalConfig model.RetrievalConfig
	GraphConfig     model.GraphConfig

	mu        sync.RWMutex
	embedder  pipeline.Embedder
	generator generation.Generator
	pipeline  *pipeline.Pipeline
	engine    *retrieval.Engine
	worker    *graph.Worker

	// Logging
	log *slog.Logger
}

// NewVaultGraph connects to the database and prepares the documents table.
// An embedder has to be set before documents can be ingested or queried.
func NewVaultGraph(config *helper.DatabaseConfiguration, embeddingDim int) (*VaultGraph, error) {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	db, err := helper.NewDatabase("vaultgraph", config, logger)
	if err != nil {
		return nil, helper.NewError("connect database", err)
	}

	err = loadSql.Init(db.Instance)
	if err != nil {
		_ = db.Close()
		return nil, helper.NewError("initialize database extensions", err)
	}

	documents, err := database.NewDocumentsDBHandler(db, embeddingDim, false)
	if err != nil {
		_ = db.Close()
		return nil, helper.NewError("create documents handler", err)
	}

	return &VaultGraph{
		DB:              db,
		Documents:       documents,
		RetrievalConfig: model.DefaultRetrievalConfig(),
		GraphConfig:     model.DefaultGraphConfig(),
		log:             logger,
	}, nil
}

// Close stops graph building and closes the database connection.
func (v *VaultGraph) Close() error {
	v.mu.Lock()
	worker := v.worker
	v.worker = nil
	v.mu.Unlock()

	if worker != nil {
		worker.Close()
	}
	if v.DB != nil {
		return v.DB.Close()
	}
	return nil
}

// SetEmbedder sets the embedder used for ingestion, queries and graph building.
// A running graph computation is stopped.
func (v *VaultGraph) SetEmbedder(embedder pipeline.Embedder) {
	v.mu.Lock()
	old := v.worker
	v.embedder = embedder
	v.pipeline = pipeline.NewPipeline(embedder)
	v.worker = graph.NewWorker(graph.NewBuilder(embedder, v.GraphConfig, v.log), v.log)
	v.rebuildEngine()
	v.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// UseDefaultEmbedder sets up the all-MiniLM-L6-v2 sentence transformer.
// The model is loaded on first use and repeated texts are served from a cache.
func (v *VaultGraph) UseDefaultEmbedder() error {
	if dim := v.Documents.EmbeddingDim(); dim != pipeline.DefaultModelDim {
		return helper.NewError("use default embedder", fmt.Errorf("default model produces %d dimensions, table has %d", pipeline.DefaultModelDim, dim))
	}

	lazy := pipeline.NewLazyEmbedder(pipeline.DefaultEmbedder)
	v.SetEmbedder(pipeline.NewCachedEmbedder(lazy, DefaultEmbeddingCacheTTL))
	return nil
}

// SetGenerator sets the language model used by Ask.
func (v *VaultGraph) SetGenerator(generator generation.Generator) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.generator = generator
	v.rebuildEngine()
}

// rebuildEngine must be called with mu held.
func (v *VaultGraph) rebuildEngine() {
	if v.embedder == nil {
		v.engine = nil
		return
	}
	v.engine = retrieval.NewEngine(v.Documents, v.embedder, v.generator, v.RetrievalConfig, v.log)
}

func (v *VaultGraph) currentEngine(op string) (*retrieval.Engine, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.engine == nil {
		return nil, helper.NewError(op, fmt.Errorf("embedder not set, use SetEmbedder() first"))
	}
	return v.engine, nil
}

// IngestDocument embeds the beginning of the document text and stores the document.
// A document that fails to embed is still stored with status failed and the
// processing error is returned.
func (v *VaultGraph) IngestDocument(ctx context.Context, doc *model.Document) error {
	v.mu.RLock()
	p := v.pipeline
	v.mu.RUnlock()
	if p == nil {
		return helper.NewError("ingest document", fmt.Errorf("embedder not set, use SetEmbedder() first"))
	}

	processErr := p.Process(ctx, doc)
	if processErr != nil {
		v.log.Warn("Document processing failed", slog.String("name", doc.Name), slog.String("error", processErr.Error()))
	}

	if err := v.Documents.InsertDocument(ctx, doc); err != nil {
		return helper.NewError("insert document", err)
	}

	v.log.Info("Inserted document", slog.String("document_id", doc.RID.String()), slog.String("name", doc.Name), slog.String("status", string(doc.Status)))

	if processErr != nil {
		return helper.NewError("process document", processErr)
	}
	return nil
}

// ImportDocuments stores documents from a JSON array of exported records.
// Embeddings may be arrays or strings. An embedding that does not fit the table
// is dropped and, when an embedder is set, recomputed from the text.
// It returns how many documents were stored.
func (v *VaultGraph) ImportDocuments(ctx context.Context, r io.Reader) (int, error) {
	var docs []*model.Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return 0, helper.NewError("decode documents", err)
	}

	v.mu.RLock()
	p := v.pipeline
	v.mu.RUnlock()

	dim := v.Documents.EmbeddingDim()
	imported := 0
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		doc.ID = 0

		if doc.HasEmbedding() {
			if err := doc.Embedding.Validate(dim); err != nil {
				v.log.Warn("Dropping unusable embedding", slog.String("name", doc.Name), slog.String("error", err.Error()))
				doc.Embedding = nil
			}
		}

		switch {
		case doc.HasEmbedding():
			if doc.Status == "" {
				doc.Status = model.DocumentStatusProcessed
			}
		case p != nil && doc.HasText():
			if err := p.Process(ctx, doc); err != nil {
				v.log.Warn("Document processing failed", slog.String("name", doc.Name), slog.String("error", err.Error()))
			}
		default:
			doc.Status = model.DocumentStatusUploaded
		}

		if err := v.Documents.InsertDocument(ctx, doc); err != nil {
			return imported, helper.NewError("insert document", err)
		}
		imported++
	}

	v.log.Info("Imported documents", slog.Int("count", imported))

	return imported, nil
}

// Search ranks the recent corpus against the query and renders the finder listing.
func (v *VaultGraph) Search(ctx context.Context, query string) (*model.SearchAnswer, error) {
	engine, err := v.currentEngine("search")
	if err != nil {
		return nil, err
	}
	return engine.Search(ctx, query)
}

// Ask answers the query from the most relevant documents and attributes the answer.
func (v *VaultGraph) Ask(ctx context.Context, query string) (*model.CitedAnswer, error) {
	engine, err := v.currentEngine("ask")
	if err != nil {
		return nil, err
	}
	return engine.Ask(ctx, query)
}

// FindSimilar returns the stored documents closest to the given one.
func (v *VaultGraph) FindSimilar(ctx context.Context, rid uuid.UUID, limit int) ([]*model.ScoredDocument, error) {
	doc, err := v.Documents.SelectDocument(ctx, rid)
	if err != nil {
		return nil, helper.NewError("select document", err)
	}
	if !doc.HasEmbedding() {
		return nil, helper.NewError("find similar", fmt.Errorf("document %s has no embedding", rid))
	}

	return v.Documents.SelectDocumentsBySimilarity(ctx, doc.Embedding, limit, &rid)
}

// BuildGraph starts a semantic graph computation over the recent corpus.
// A computation that is still running is superseded.
func (v *VaultGraph) BuildGraph(ctx context.Context) (*graph.Handle, error) {
	v.mu.RLock()
	worker := v.worker
	v.mu.RUnlock()
	if worker == nil {
		return nil, helper.NewError("build graph", fmt.Errorf("embedder not set, use SetEmbedder() first"))
	}

	docs, err := v.Documents.SelectRecentDocuments(ctx, v.GraphConfig.CorpusLimit)
	if err != nil {
		return nil, helper.NewError("select corpus", err)
	}

	return worker.Submit(ctx, docs), nil
}

// RelatedDocuments returns the documents connected to rid in a built graph,
// nearest first, up to maxHops edges away. A maxHops below one means direct
// neighbors only. Documents deleted since the graph was built are skipped.
func (v *VaultGraph) RelatedDocuments(ctx context.Context, edges []model.SemanticEdge, rid uuid.UUID, maxHops int) ([]*RelatedDocument, error) {
	if rid == uuid.Nil {
		return nil, helper.NewError("related documents", fmt.Errorf("document RID is empty"))
	}
	if maxHops < 1 {
		maxHops = 1
	}

	traversal := graph.NewAdjacency(edges).BFS(rid, maxHops)

	related := []*RelatedDocument{}
	for _, r := range traversal {
		if r.Distance == 0 {
			continue
		}
		doc, err := v.Documents.SelectDocument(ctx, r.Document)
		if errors.Is(err, sql.ErrNoRows) {
			v.log.Debug("Skipping deleted graph document", slog.String("document_id", r.Document.String()))
			continue
		}
		if err != nil {
			return nil, helper.NewError("select related document", err)
		}
		related = append(related, &RelatedDocument{Document: doc, Distance: r.Distance, Path: r.Path})
	}

	return related, nil
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (v *VaultGraph) ChangeIndexType(ctx context.Context, indexType database.IndexType, params database.IndexParams) error {
	return v.Documents.ChangeIndexType(ctx, indexType, params)
}
