package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/siherrmann/vaultgraph/core/generation"
	"github.com/siherrmann/vaultgraph/core/pipeline"
	"github.com/siherrmann/vaultgraph/core/vector"
	"github.com/siherrmann/vaultgraph/helper"
	"github.com/siherrmann/vaultgraph/model"
)

var (
	ErrEmptyQuery        = errors.New("query is empty")
	ErrEmbeddingFailed   = errors.New("query embedding failed")
	ErrCorpusUnavailable = errors.New("corpus unavailable")
	ErrGenerationFailed  = errors.New("answer generation failed")
	ErrNoGenerator       = errors.New("no generator configured")
)

// CorpusProvider returns the most recently created documents, newest first.
type CorpusProvider interface {
	SelectRecentDocuments(ctx context.Context, limit int) ([]*model.Document, error)
}

// Engine provides hybrid retrieval over the corpus for search and chat queries.
// It holds no per-query state and is safe for concurrent use.
type Engine struct {
	corpus    CorpusProvider
	embedder  pipeline.Embedder
	generator generation.Generator
	config    model.RetrievalConfig
	logger    *slog.Logger
}

// NewEngine creates a new retrieval engine. The generator may be nil if only Search is used.
func NewEngine(corpus CorpusProvider, embedder pipeline.Embedder, generator generation.Generator, config model.RetrievalConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		corpus:    corpus,
		embedder:  embedder,
		generator: generator,
		config:    config,
		logger:    logger,
	}
}

// Retrieve scores the recent corpus against the query and keeps the top K of the mode.
// Relevant holds the candidates that reach the relevance floor.
func (e *Engine) Retrieve(ctx context.Context, query string, mode model.Mode) (*model.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, helper.NewError("retrieve", ErrEmptyQuery)
	}

	queryEmbedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, helper.NewError("embed query", fmt.Errorf("%w: %w", ErrEmbeddingFailed, err))
	}
	if len(queryEmbedding) == 0 {
		return nil, helper.NewError("embed query", ErrEmbeddingFailed)
	}

	docs, err := e.corpus.SelectRecentDocuments(ctx, e.config.CorpusPageSize)
	if err != nil {
		return nil, helper.NewError("select corpus", fmt.Errorf("%w: %w", ErrCorpusUnavailable, err))
	}

	tokens := Tokenize(query, e.config.MinTokenLength)
	scored := ScoreDocuments(queryEmbedding, tokens, docs, e.config)
	for _, s := range scored {
		if s.VectorStatus == model.VectorStatusInvalid {
			e.logger.Warn("Unusable document embedding", slog.String("document", s.Document.Name), slog.Int("dim", len(s.Document.Embedding)))
		}
	}

	candidates := SelectTopK(scored, e.config.TopK(mode))
	result := &model.RetrievalResult{
		Query:           query,
		Mode:            mode,
		Candidates:      candidates,
		Relevant:        FilterByFloor(candidates, e.config.RelevanceFloor),
		DegenerateQuery: vector.Magnitude(queryEmbedding) == 0,
	}

	e.logger.Debug(
		"Retrieved documents",
		slog.String("mode", string(mode)),
		slog.Int("corpus", len(docs)),
		slog.Int("candidates", len(result.Candidates)),
		slog.Int("relevant", len(result.Relevant)),
	)

	return result, nil
}

// Search answers a finder query with a listing of the relevant documents.
func (e *Engine) Search(ctx context.Context, query string) (*model.SearchAnswer, error) {
	result, err := e.Retrieve(ctx, query, model.ModeSearch)
	if err != nil {
		return nil, err
	}

	status := model.AnswerStatusAnswered
	if !result.HasRelevant() {
		status = model.AnswerStatusNoRelevantResults
	}

	return &model.SearchAnswer{
		Text:    FormatSearchResults(query, result.Relevant, e.config.SearchSnippetLength),
		Results: result.Relevant,
		Status:  status,
	}, nil
}

// Ask answers a question from the relevant documents and attributes the answer
// to the files the generator says it used.
func (e *Engine) Ask(ctx context.Context, query string) (*model.CitedAnswer, error) {
	result, err := e.Retrieve(ctx, query, model.ModeChat)
	if err != nil {
		return nil, err
	}

	if !result.HasRelevant() {
		return &model.CitedAnswer{
			Text:      noRelevantAnswer(query),
			Citations: []model.ScoredDocument{},
			Status:    model.AnswerStatusNoRelevantResults,
		}, nil
	}

	if e.generator == nil {
		return nil, helper.NewError("generate answer", fmt.Errorf("%w: %w", ErrGenerationFailed, ErrNoGenerator))
	}

	raw, err := e.generator.Generate(ctx, SystemPrompt, query, BuildContext(result.Relevant, e.config.ContextSnippetLength))
	if err != nil {
		return nil, helper.NewError("generate answer", fmt.Errorf("%w: %w", ErrGenerationFailed, err))
	}

	answer := ParseAttribution(raw, result.Relevant)
	if !answer.MarkerFound {
		e.logger.Debug("Generated answer has no SOURCES marker", slog.String("query", query))
	}
	return &answer, nil
}
