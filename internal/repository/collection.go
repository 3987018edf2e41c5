package repository

import (
	"cmp"
	"slices"
	"sync"
)

// entry pairs a stored value with its insertion sequence, used to keep
// list order stable when sort keys tie.
type entry[T any] struct {
	seq uint64
	val T
}

// collection is a lock-guarded map of records keyed by id.
type collection[T any] struct {
	mu    sync.RWMutex
	next  uint64
	items map[string]entry[T]
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: make(map[string]entry[T])}
}

func (c *collection[T]) insert(id string, val T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	c.items[id] = entry[T]{seq: c.next, val: val}
}

// update applies fn to a copy of the record and stores it when fn succeeds.
func (c *collection[T]) update(id string, fn func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	val := e.val
	if err := fn(&val); err != nil {
		var zero T
		return zero, err
	}
	e.val = val
	c.items[id] = e
	return val, nil
}

func (c *collection[T]) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
}

func (c *collection[T]) list(compare func(a, b entry[T]) int) []T {
	c.mu.RLock()
	entries := make([]entry[T], 0, len(c.items))
	for _, e := range c.items {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	slices.SortFunc(entries, compare)
	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.val
	}
	return out
}

// byOrder sorts ascending by the key returned from order, then by insertion.
func byOrder[T any](order func(T) int) func(a, b entry[T]) int {
	return func(a, b entry[T]) int {
		return cmp.Or(cmp.Compare(order(a.val), order(b.val)), cmp.Compare(a.seq, b.seq))
	}
}

func byInsertion[T any](a, b entry[T]) int {
	return cmp.Compare(a.seq, b.seq)
}
