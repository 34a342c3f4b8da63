// Package memstore provides the in-memory entity store backing all domain
// repositories. Each Collection guards one record kind with a single
// read-write mutex; every operation is atomic with respect to concurrent
// callers. Records are stored and returned by value, so callers always
// work on snapshots and never alias store-owned state.
package memstore

import "sync"

// Record is any entity that can be stored in a Collection.
type Record interface {
	Key() string
}

// Collection is a mutex-guarded map of records of a single kind.
type Collection[T Record] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewCollection creates an empty Collection.
func NewCollection[T Record]() *Collection[T] {
	return &Collection[T]{items: make(map[string]T)}
}

// Get returns the record with the given id, or ErrNotFound.
func (c *Collection[T]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return rec, nil
}

// Upsert inserts or replaces the record under its own key and returns it.
func (c *Collection[T]) Upsert(rec T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[rec.Key()] = rec
	return rec
}

// Insert atomically adds the record unless another record matches the
// conflict predicate, closing the check-then-insert race for uniqueness
// constraints beyond the primary key. Returns ErrConflict and the existing
// record when the predicate matches. A nil predicate always inserts.
func (c *Collection[T]) Insert(rec T, conflict func(T) bool) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if conflict != nil {
		for _, existing := range c.items {
			if conflict(existing) {
				return existing, ErrConflict
			}
		}
	}

	c.items[rec.Key()] = rec
	return rec, nil
}

// Mutate atomically applies fn to the record with the given id and stores
// the result. If fn returns an error the record is left unchanged and the
// error is returned. Returns ErrNotFound when no record exists for id.
func (c *Collection[T]) Mutate(id string, fn func(T) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}

	updated, err := fn(rec)
	if err != nil {
		var zero T
		return zero, err
	}

	c.items[id] = updated
	return updated, nil
}

// List returns every record matching the filter. A nil filter matches all.
func (c *Collection[T]) List(filter func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]T, 0, len(c.items))
	for _, rec := range c.items {
		if filter == nil || filter(rec) {
			result = append(result, rec)
		}
	}
	return result
}

// Find returns the first record matching the predicate.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, rec := range c.items {
		if pred(rec) {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of stored records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
