// Package bus implements the boundaries that connect the stages of a
// pipeline. A pipeline of N stages owns a Bus of N+1 boundaries: stage i
// reads boundary i and writes boundary i+1. Boundary 0 holds the pipeline's
// initial input and the last boundary holds its final output.
package bus

import (
	"context"
	"io"
	"sync"
)

type boundary struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []string
	finished bool
}

func newBoundary() *boundary {
	b := &boundary{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Bus is a fixed set of unbounded FIFO queues, each with an end-of-stream
// marker. It is safe for concurrent use.
type Bus struct {
	boundaries []*boundary
}

// New creates a bus with n boundaries.
func New(n int) *Bus {
	out := &Bus{boundaries: make([]*boundary, n)}
	for i := range out.boundaries {
		out.boundaries[i] = newBoundary()
	}
	return out
}

// Len returns the number of boundaries.
func (b *Bus) Len() int {
	return len(b.boundaries)
}

// Push appends item to boundary i and wakes a waiting consumer.
// Items are never dropped, even after the boundary is finished.
func (b *Bus) Push(i int, item string) {
	bd := b.boundaries[i]
	bd.mu.Lock()
	defer bd.mu.Unlock()

	bd.queue = append(bd.queue, item)
	bd.cond.Signal()
}

// Pop removes the oldest item of boundary i, blocking until one is available.
// It returns io.EOF once the boundary is finished and empty, or the context's
// error if ctx is done while waiting. Queued items are always returned before
// either error.
func (b *Bus) Pop(ctx context.Context, i int) (string, error) {
	bd := b.boundaries[i]
	bd.mu.Lock()
	defer bd.mu.Unlock()

	if len(bd.queue) == 0 && !bd.finished {
		stop := context.AfterFunc(ctx, func() {
			bd.mu.Lock()
			defer bd.mu.Unlock()
			bd.cond.Broadcast()
		})
		defer stop()

		for len(bd.queue) == 0 && !bd.finished {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			bd.cond.Wait()
		}
	}

	if len(bd.queue) == 0 {
		return "", io.EOF
	}

	item := bd.queue[0]
	bd.queue[0] = ""
	bd.queue = bd.queue[1:]
	return item, nil
}

// MarkFinished marks boundary i as having no more items coming and wakes
// every waiting consumer. Calling it more than once is harmless.
func (b *Bus) MarkFinished(i int) {
	bd := b.boundaries[i]
	bd.mu.Lock()
	defer bd.mu.Unlock()

	bd.finished = true
	bd.cond.Broadcast()
}

// IsFinished reports whether boundary i has been marked finished. Items may
// still be queued.
func (b *Bus) IsFinished(i int) bool {
	bd := b.boundaries[i]
	bd.mu.Lock()
	defer bd.mu.Unlock()

	return bd.finished
}

// Pending returns the number of items queued in boundary i.
func (b *Bus) Pending(i int) int {
	bd := b.boundaries[i]
	bd.mu.Lock()
	defer bd.mu.Unlock()

	return len(bd.queue)
}

// Drain pops boundary i until end of stream, returning every item.
func (b *Bus) Drain(ctx context.Context, i int) ([]string, error) {
	var out []string
	for {
		item, err := b.Pop(ctx, i)
		switch {
		case err == io.EOF:
			return out, nil
		case err != nil:
			return out, err
		}
		out = append(out, item)
	}
}
