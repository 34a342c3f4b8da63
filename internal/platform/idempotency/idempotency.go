// Package idempotency deduplicates creation requests keyed by a
// client-supplied token. The check-and-insert race is closed by an atomic
// reserve/commit protocol: the first caller to reserve a key proceeds to
// create the entity; racing callers block until the winner commits and then
// receive the committed record. Keys are retained for the lifetime of the
// process; eviction is a concern of the calling layer.
package idempotency

import (
	"fmt"
	"sync"
)

// Reservation is the result of a Reserve call. When IsNew is true the caller
// owns the key and must finish with Commit (or Release on failure). When
// false, Existing holds the record committed by an earlier request.
type Reservation[T any] struct {
	IsNew    bool
	Existing T
}

type entry[T any] struct {
	committed bool
	record    T
}

// Guard tracks reserved and committed idempotency keys.
type Guard[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	entries map[string]*entry[T]
}

// NewGuard creates an empty Guard.
func NewGuard[T any]() *Guard[T] {
	g := &Guard[T]{entries: make(map[string]*entry[T])}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Reserve claims the key for the calling request. If another request holds
// an uncommitted reservation for the same key, Reserve blocks until that
// request commits or releases, then reports the outcome.
func (g *Guard[T]) Reserve(key string) Reservation[T] {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		e, ok := g.entries[key]
		if !ok {
			g.entries[key] = &entry[T]{}
			return Reservation[T]{IsNew: true}
		}
		if e.committed {
			return Reservation[T]{Existing: e.record}
		}
		// A racing request holds the key; wait for its commit or release.
		g.cond.Wait()
	}
}

// Commit associates the finished record with a key previously claimed via
// Reserve and wakes any waiting requests. Committing a key that is not
// reserved is a programming error and panics.
func (g *Guard[T]) Commit(key string, record T) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[key]
	if !ok || e.committed {
		panic(fmt.Sprintf("idempotency: commit of unreserved key %q", key))
	}

	e.committed = true
	e.record = record
	g.cond.Broadcast()
}

// Release drops an uncommitted reservation so that a later retry can claim
// the key again. Used on creation failure paths. Releasing a key that is
// not reserved or already committed is a no-op.
func (g *Guard[T]) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[key]
	if !ok || e.committed {
		return
	}

	delete(g.entries, key)
	g.cond.Broadcast()
}

// Len returns the number of tracked keys.
func (g *Guard[T]) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
