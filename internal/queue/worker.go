// Package queue implements the in-memory job queue and its worker pool.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/fairyhunter13/realtime-catalog/internal/config"
	"github.com/fairyhunter13/realtime-catalog/internal/model"
	"github.com/fairyhunter13/realtime-catalog/internal/obs"
)

// Handler executes one job type. A returned error marks the job failed.
type Handler func(ctx context.Context, job model.Job) error

// Worker drains the queue and dispatches jobs to registered handlers.
// With the default single worker, jobs run sequentially in enqueue order.
type Worker struct {
	cfg      config.Config
	q        *Queue
	handlers map[model.JobType]Handler
	ctx      context.Context
	cancel   context.CancelFunc

	mu            sync.Mutex
	workerCancels []context.CancelFunc
}

// NewWorker constructs a Worker with the given config and queue.
func NewWorker(cfg config.Config, q *Queue) *Worker {
	return &Worker{cfg: cfg, q: q, handlers: make(map[model.JobType]Handler)}
}

// Register binds a handler to a job type. Must be called before Start.
func (w *Worker) Register(t model.JobType, h Handler) {
	w.handlers[t] = h
}

// Start begins the broker and the worker loops in the background.
func (w *Worker) Start(parent context.Context) {
	w.ctx, w.cancel = context.WithCancel(parent)
	w.q.Start(w.ctx, w.cfg.QueueHighWatermark)
	n := w.cfg.WorkerCount
	if n <= 0 {
		n = 1
	}
	w.mu.Lock()
	for i := 0; i < n; i++ {
		wctx, cancel := context.WithCancel(w.ctx)
		w.workerCancels = append(w.workerCancels, cancel)
		go w.loop(wctx)
	}
	w.mu.Unlock()
	obs.Logger.Info("workers started", "worker_count", n)
}

// Stop cancels background routines and stops workers.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Lock()
	for _, c := range w.workerCancels {
		c()
	}
	w.workerCancels = nil
	w.mu.Unlock()
}

// loop claims jobs one at a time and runs their handlers.
func (w *Worker) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.q.Out():
			w.dispatch(ctx, job)
		}
	}
}

func (w *Worker) dispatch(ctx context.Context, job model.Job) {
	h, ok := w.handlers[job.Type]
	if !ok {
		obs.Logger.Error("job_failed", "job_id", job.ID, "job_type", string(job.Type), "error", "no handler registered")
		w.q.MarkFailed()
		return
	}
	if err := h(ctx, job); err != nil {
		obs.Logger.Error("job_failed", "job_id", job.ID, "job_type", string(job.Type), "error", err)
		w.q.MarkFailed()
		return
	}
	w.q.MarkProcessed()
}

// Enqueue proxies to the underlying queue.
func (w *Worker) Enqueue(job model.Job) (model.Job, bool) { return w.q.Enqueue(job) }

// BacklogSize returns pending items in the queue.
func (w *Worker) BacklogSize() int { return w.q.BacklogSize() }

// QueueDepth returns backlog plus buffered output items.
func (w *Worker) QueueDepth() int { return w.q.QueueDepth() }

// WorkerCount returns the current number of workers.
func (w *Worker) WorkerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.workerCancels)
}

// IsShuttingDown reports whether new enqueues are rejected.
func (w *Worker) IsShuttingDown() bool { return w.q.IsShuttingDown() }

// CloseIntake disallows future enqueues.
func (w *Worker) CloseIntake() { w.q.CloseIntake() }

// QueueMetrics exposes the underlying queue metrics.
func (w *Worker) QueueMetrics() (enq, proc, failed uint64, backlog, depth int) {
	return w.q.Metrics()
}

// DrainUntil blocks until every accepted job reached a terminal state or the
// context is done.
func (w *Worker) DrainUntil(ctx context.Context) bool {
	for {
		enq, proc, failed, backlog, depth := w.q.Metrics()
		if backlog == 0 && depth == 0 && enq == proc+failed {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
