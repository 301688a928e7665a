// Package gate bounds how many submissions execute concurrently. It
// mirrors the teacher's own buffered-channel concurrency cap in
// app/executor/service.go (ExecuteFromProducer's sem chan struct{}), but
// built on golang.org/x/sync/semaphore so waiters honor context
// cancellation while queued, not just while running. The limit is fixed
// when the Gate is built.
package gate

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrent is the default number of submissions allowed to
// execute at once when no operator override is configured.
const DefaultMaxConcurrent = 32

// Gate admits up to a fixed number of concurrent holders on a
// first-come-first-served basis.
type Gate struct {
	sem *semaphore.Weighted
	n   int64
}

// New builds a Gate that admits at most max concurrent holders. A
// non-positive max falls back to DefaultMaxConcurrent.
func New(max int) *Gate {
	if max <= 0 {
		max = DefaultMaxConcurrent
	}
	return &Gate{sem: semaphore.NewWeighted(int64(max)), n: int64(max)}
}

// Release is returned by Acquire and must be called exactly once to free
// the held slot.
type Release func()

// Acquire blocks until a slot is free or ctx is cancelled. On success it
// returns a Release func the caller must invoke when done.
func (g *Gate) Acquire(ctx context.Context) (Release, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once bool
	return func() {
		if once {
			return
		}
		once = true
		g.sem.Release(1)
	}, nil
}

// Capacity reports the configured concurrency limit.
func (g *Gate) Capacity() int {
	return int(g.n)
}
