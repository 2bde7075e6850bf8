package graph

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/siherrmann/vaultgraph/model"
)

var (
	ErrSuperseded   = errors.New("graph computation superseded by a newer submission")
	ErrWorkerClosed = errors.New("graph worker is closed")
)

// EdgeBuilder computes the semantic edges of a corpus snapshot.
type EdgeBuilder interface {
	Build(ctx context.Context, corpus []model.Document) ([]model.SemanticEdge, error)
}

// Result is the outcome of one graph computation.
type Result struct {
	Generation uint64
	Edges      []model.SemanticEdge
	Err        error
}

// Adjacency indexes the edges of the result for traversal.
func (r Result) Adjacency() *Adjacency {
	return NewAdjacency(r.Edges)
}

// Handle refers to one submitted graph computation.
type Handle struct {
	generation uint64
	results    chan Result
	cancel     context.CancelFunc
	superseded atomic.Bool
	closed     bool
}

// Results delivers exactly one Result and is then closed. A run that was
// superseded or cancelled closes the channel without delivering anything.
// Use either Results or Wait, not both.
func (h *Handle) Results() <-chan Result {
	return h.results
}

// Generation is the submission number of this run. Later submissions have higher numbers.
func (h *Handle) Generation() uint64 {
	return h.generation
}

// Cancel stops the computation. It is safe to call more than once.
func (h *Handle) Cancel() {
	h.cancel()
}

// Wait blocks until the computation finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case r, ok := <-h.results:
		if ok {
			return r, r.Err
		}
		switch {
		case h.closed:
			return Result{Generation: h.generation}, ErrWorkerClosed
		case h.superseded.Load():
			return Result{Generation: h.generation}, ErrSuperseded
		default:
			return Result{Generation: h.generation}, context.Canceled
		}
	case <-ctx.Done():
		return Result{Generation: h.generation}, ctx.Err()
	}
}

// Worker runs graph computations in the background. A new submission
// cancels the one before it, so at most one computation is active.
type Worker struct {
	builder EdgeBuilder
	logger  *slog.Logger

	mu         sync.Mutex
	generation uint64
	active     *Handle
	closed     bool
	wg         sync.WaitGroup
}

// NewWorker creates a worker that runs builder for each submission.
func NewWorker(builder EdgeBuilder, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{builder: builder, logger: logger}
}

// Submit snapshots the corpus and starts computing its edges. The snapshot is
// a deep copy, later changes to corpus do not affect the run.
func (w *Worker) Submit(ctx context.Context, corpus []*model.Document) *Handle {
	snapshot := make([]model.Document, 0, len(corpus))
	for _, doc := range corpus {
		if doc != nil {
			snapshot = append(snapshot, doc.Clone())
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.generation++
	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		generation: w.generation,
		results:    make(chan Result, 1),
		cancel:     cancel,
	}

	if w.closed {
		cancel()
		h.closed = true
		close(h.results)
		return h
	}

	if w.active != nil {
		w.active.superseded.Store(true)
		w.active.cancel()
		w.logger.Debug("Superseded graph computation", slog.Uint64("generation", w.active.generation))
	}
	w.active = h

	w.wg.Add(1)
	go w.run(runCtx, h, snapshot)

	return h
}

func (w *Worker) run(ctx context.Context, h *Handle, snapshot []model.Document) {
	defer w.wg.Done()
	defer close(h.results)
	defer h.cancel()

	edges, err := w.builder.Build(ctx, snapshot)

	w.mu.Lock()
	current := w.active == h
	if current {
		w.active = nil
	}
	w.mu.Unlock()

	if !current || ctx.Err() != nil {
		w.logger.Debug("Dropped graph computation", slog.Uint64("generation", h.generation))
		return
	}

	if err != nil {
		w.logger.Error("Graph computation failed", slog.Uint64("generation", h.generation), slog.String("error", err.Error()))
	} else {
		w.logger.Info("Graph computation finished", slog.Uint64("generation", h.generation), slog.Int("documents", len(snapshot)), slog.Int("edges", len(edges)))
	}

	h.results <- Result{Generation: h.generation, Edges: edges, Err: err}
}

// Close cancels the active computation and waits for it to stop.
// Later submissions return a closed handle.
func (w *Worker) Close() {
	w.mu.Lock()
	w.closed = true
	if w.active != nil {
		w.active.cancel()
		w.active = nil
	}
	w.mu.Unlock()

	w.wg.Wait()
}
