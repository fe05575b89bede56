// Package queue provides an unbounded FIFO queue that never blocks producers.
//
// It sits between real-time producers (the audio device callback, the
// orchestrator forwarding chunks into a session) and a single consumer that
// may be slower or not yet running. Push only appends to a slice under a short
// critical section; consumers block in Pop or select on Ready.
package queue

import (
	"context"
	"errors"
	"io"
	"sync"
)

// ErrClosed is returned by Pop and TryPop after CloseWithError(nil).
var ErrClosed = errors.New("queue: closed")

// Queue is a goroutine-safe growable FIFO.
//
// CloseWrite ends the producing side: buffered items remain readable and the
// consumer sees io.EOF once they are drained. CloseWithError ends both sides
// immediately and discards anything still buffered.
type Queue[T any] struct {
	notify chan struct{}

	mu         sync.Mutex
	items      []T
	closeWrite bool
	closeErr   error
}

// New creates a queue with an initial capacity hint of n items.
func New[T any](n int) *Queue[T] {
	return &Queue[T]{
		notify: make(chan struct{}, 1),
		items:  make([]T, 0, n),
	}
}

// Push appends v without blocking. It reports false when the queue no longer
// accepts items; callers treat that as a silent drop.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closeWrite || q.closeErr != nil {
		return false
	}
	q.items = append(q.items, v)
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// TryPop removes the head item if one is buffered. ok is false when the
// queue is empty. err is io.EOF once the queue is write-closed and drained,
// or the close error after CloseWithError.
func (q *Queue[T]) TryPop() (v T, ok bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closeErr != nil {
		return v, false, q.closeErr
	}
	if len(q.items) == 0 {
		if q.closeWrite {
			return v, false, io.EOF
		}
		return v, false, nil
	}
	v = q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true, nil
}

// Pop blocks until an item is available, the queue is closed, or ctx is done.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	for {
		v, ok, err := q.TryPop()
		if ok || err != nil {
			return v, err
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-q.notify:
		}
	}
}

// Ready returns a channel that receives a value after each Push and is closed
// when the queue is closed. A receive does not guarantee an item; callers
// follow it with TryPop.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.notify
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// CloseWrite stops accepting new items. Buffered items can still be read.
func (q *Queue[T]) CloseWrite() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closeWrite {
		return
	}
	q.closeWrite = true
	close(q.notify)
}

// CloseWithError closes both sides and discards buffered items. A nil err
// means ErrClosed.
func (q *Queue[T]) CloseWithError(err error) {
	if err == nil {
		err = ErrClosed
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closeErr != nil {
		return
	}
	q.closeErr = err
	q.items = nil
	if !q.closeWrite {
		q.closeWrite = true
		close(q.notify)
	}
}
