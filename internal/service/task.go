package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/metrics"

	"golang.org/x/sync/semaphore"
)

// WorkerPool bounds the number of collaborator calls in flight across all requests.
type WorkerPool struct {
	sem *semaphore.Weighted
}

func NewWorkerPool(size int64) *WorkerPool {
	return &WorkerPool{sem: semaphore.NewWeighted(size)}
}

// future is the pending result of a task started by submit.
type future[T any] struct {
	done   chan struct{}
	value  T
	err    error
	cancel context.CancelFunc
}

// submit runs fn in its own goroutine under a child context of parent, limited by timeout when
// positive. The goroutine holds a pool slot only while fn runs. A panic in fn becomes the
// future's error. When the task's own timeout expires before a slot frees up, the value is
// fallback(err) if fallback is set; cancellation of parent is always reported as an error.
func submit[T any](parent context.Context, pool *WorkerPool, name string, timeout time.Duration, fn func(ctx context.Context) T, fallback func(err error) T) *future[T] {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	f := &future[T]{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer close(f.done)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%s task panicked: %v", name, r)
			}
		}()
		if err := pool.sem.Acquire(ctx, 1); err != nil {
			err = fmt.Errorf("%s task not started: %w", name, err)
			if fallback == nil || parent.Err() != nil || !errors.Is(err, context.DeadlineExceeded) {
				f.err = err
				return
			}
			metrics.ClassifierFailuresTotal.WithLabelValues(name).Inc()
			log.Warnf("[WorkerPool] no slot for %s task, using its failure default: %v", name, err)
			f.value = fallback(err)
			return
		}
		defer pool.sem.Release(1)
		f.value = fn(ctx)
	}()
	return f
}

// await blocks until the task finishes or ctx is done. A result that arrives after ctx is done
// is discarded.
func (f *future[T]) await(ctx context.Context) (T, error) {
	var zero T
	select {
	case <-f.done:
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return f.value, f.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
