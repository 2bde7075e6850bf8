package graph

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/siherrmann/vaultgraph/core/pipeline"
	"github.com/siherrmann/vaultgraph/core/vector"
	"github.com/siherrmann/vaultgraph/helper"
	"github.com/siherrmann/vaultgraph/model"
	"golang.org/x/sync/errgroup"
)

// Builder links documents whose name and summary embeddings are very similar.
type Builder struct {
	embedder pipeline.Embedder
	config   model.GraphConfig
	logger   *slog.Logger
}

// NewBuilder creates a builder. Concurrency below one is raised to one.
func NewBuilder(embedder pipeline.Embedder, config model.GraphConfig, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if config.EmbedConcurrency <= 0 {
		config.EmbedConcurrency = 1
	}
	return &Builder{
		embedder: embedder,
		config:   config,
		logger:   logger,
	}
}

// EmbeddingText is the text a document is represented by in the graph:
// its name followed by its summary, cut to limit runes.
func EmbeddingText(doc *model.Document, limit int) string {
	return pipeline.Truncate(doc.Name+" "+doc.SummaryValue(), limit)
}

// Build embeds every document of the corpus and returns one edge per unordered
// pair whose similarity is above the edge threshold. Pairs are visited in corpus
// order, so an unchanged corpus gives the same edges.
// Documents that fail to embed are left out of the graph. Two entries with the
// same non-nil RID are the same document and are never linked to each other.
func (b *Builder) Build(ctx context.Context, corpus []model.Document) ([]model.SemanticEdge, error) {
	vectors, err := b.embedAll(ctx, corpus)
	if err != nil {
		return nil, err
	}

	edges := []model.SemanticEdge{}
	seen := make(map[model.EdgeKey]bool)
	for i := range corpus {
		if err := ctx.Err(); err != nil {
			return nil, helper.NewError("build graph", err)
		}
		if vectors[i] == nil {
			continue
		}

		for j := i + 1; j < len(corpus); j++ {
			if vectors[j] == nil || sameDocument(&corpus[i], &corpus[j]) {
				continue
			}

			sim, err := vector.CosineSimilarity(vectors[i], vectors[j])
			if err != nil {
				b.logger.Debug("Skipping document pair", slog.String("source", corpus[i].Name), slog.String("target", corpus[j].Name), slog.String("error", err.Error()))
				continue
			}
			if sim <= b.config.EdgeThreshold {
				continue
			}

			edge := newSemanticEdge(&corpus[i], &corpus[j], sim, b.config.MaxSharedCategories)
			if corpus[i].RID != uuid.Nil && corpus[j].RID != uuid.Nil {
				if seen[edge.Key()] {
					continue
				}
				seen[edge.Key()] = true
			}
			edges = append(edges, edge)
		}
	}

	b.logger.Debug("Built semantic graph", slog.Int("documents", len(corpus)), slog.Int("edges", len(edges)))

	return edges, nil
}

func (b *Builder) embedAll(ctx context.Context, corpus []model.Document) ([]model.Embedding, error) {
	vectors := make([]model.Embedding, len(corpus))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.EmbedConcurrency)
	for i := range corpus {
		doc := &corpus[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := b.embedder.Embed(gctx, EmbeddingText(doc, b.config.EmbedTextLimit))
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				b.logger.Warn("Failed to embed document for graph", slog.String("document", doc.Name), slog.String("error", err.Error()))
				return nil
			}
			if len(e) == 0 {
				return nil
			}
			vectors[i] = e
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, helper.NewError("embed corpus", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, helper.NewError("embed corpus", err)
	}
	return vectors, nil
}

func sameDocument(a *model.Document, b *model.Document) bool {
	return a.RID != uuid.Nil && a.RID == b.RID
}

func newSemanticEdge(a *model.Document, b *model.Document, similarity float64, maxShared int) model.SemanticEdge {
	shared := sharedCategories(a.Categories, b.Categories)

	reason := model.ReasonConceptualSimilarity
	if len(shared) > 0 {
		named := shared
		if maxShared > 0 && len(named) > maxShared {
			named = named[:maxShared]
		}
		reason = model.ReasonSharedTopicsPrefix + strings.Join(named, ", ")
	}

	return model.SemanticEdge{
		Source:           a.RID,
		Target:           b.RID,
		SourceName:       a.Name,
		TargetName:       b.Name,
		Similarity:       similarity,
		Type:             model.EdgeTypeSemantic,
		Reason:           reason,
		SharedCategories: shared,
	}
}

// sharedCategories returns the categories of a that b also has, in a's order.
func sharedCategories(a []string, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	inB := make(map[string]bool, len(b))
	for _, c := range b {
		inB[c] = true
	}

	var shared []string
	added := make(map[string]bool)
	for _, c := range a {
		if inB[c] && !added[c] {
			added[c] = true
			shared = append(shared, c)
		}
	}
	return shared
}
