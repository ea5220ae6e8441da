// Package tasks runs post-persist work for the message pipeline on a
// bounded worker pool. Tasks are best-effort: a full queue drops the
// task with a warning rather than blocking or failing the request that
// enqueued it.
package tasks

import (
	"context"
	"log/slog"
	"sync"
)

// Kind identifies a task type.
type Kind string

const (
	KindLastMessageID Kind = "last_message_id"
	KindAckMentions   Kind = "ack_mentions"
	KindProcessEmbeds Kind = "process_embeds"
	KindWebPush       Kind = "web_push"
)

// Task is one unit of deferred work.
type Task struct {
	Kind    Kind
	Payload any
}

// Queue accepts tasks for asynchronous execution. Enqueue reports
// whether the task was accepted.
type Queue interface {
	Enqueue(task Task) bool
}

// HandlerFunc executes one task. Errors are logged, not retried.
type HandlerFunc func(ctx context.Context, task Task) error

// Pool is a fixed-size worker pool consuming a bounded task buffer.
type Pool struct {
	tasks    chan Task
	handlers map[Kind]HandlerFunc
	workers  int

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

// NewPool creates a pool with the given worker count and buffer size.
func NewPool(workers, buffer int) *Pool {
	return &Pool{
		tasks:    make(chan Task, buffer),
		handlers: make(map[Kind]HandlerFunc),
		workers:  workers,
	}
}

// Register installs the handler for a task kind. Must be called before
// Start.
func (p *Pool) Register(kind Kind, fn HandlerFunc) {
	p.handlers[kind] = fn
}

// Enqueue queues a task without blocking. Returns false when the
// buffer is full and the task was dropped.
func (p *Pool) Enqueue(task Task) bool {
	select {
	case p.tasks <- task:
		return true
	default:
		slog.Warn("task queue full, dropping task", "kind", task.Kind)
		return false
	}
}

// Start launches the workers. They run until the context is cancelled.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Wait blocks until all workers have exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-p.tasks:
			fn, ok := p.handlers[task.Kind]
			if !ok {
				slog.Error("no handler for task kind", "kind", task.Kind)
				continue
			}
			if err := fn(ctx, task); err != nil {
				slog.Error("task failed", "kind", task.Kind, "error", err)
			}
		}
	}
}
