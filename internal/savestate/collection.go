// internal/savestate/collection.go
package savestate

import (
	"fmt"
	"log"
	"sync"
)

// Record is what a Collection can hold.
type Record[T any] interface {
	Key() string
	Renamed(title string) T
}

// PersistFunc receives a copy of the whole collection after every mutation.
// It is called with the collection locked and must not block on I/O.
// Failures are logged; the in-memory mutation stands regardless.
type PersistFunc[T any] func(items []T) error

// Collection is an ordered list of records addressed by id.
// It also owns the sticky "last loaded" pointer.
type Collection[T Record[T]] struct {
	mu         sync.Mutex
	name       string
	items      []T
	lastLoaded string
	persist    PersistFunc[T]
}

func NewCollection[T Record[T]](name string, persist PersistFunc[T]) *Collection[T] {
	return &Collection[T]{name: name, persist: persist}
}

// Load replaces the contents without persisting (used at startup).
func (c *Collection[T]) Load(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
	c.lastLoaded = ""
}

func (c *Collection[T]) Add(rec T) {
	c.mutate(func() error {
		c.items = append(c.items, rec)
		return nil
	})
}

// Append adds several records in order.
func (c *Collection[T]) Append(recs ...T) {
	c.mutate(func() error {
		c.items = append(c.items, recs...)
		return nil
	})
}

func (c *Collection[T]) Remove(id string) error {
	return c.mutate(func() error {
		i := c.index(id)
		if i < 0 {
			return fmt.Errorf("savestate: %s %q: %w", c.name, id, ErrNotFound)
		}
		c.items = append(c.items[:i:i], c.items[i+1:]...)
		if c.lastLoaded == id {
			c.lastLoaded = ""
		}
		return nil
	})
}

// RemoveMany drops every listed id and reports how many were present.
func (c *Collection[T]) RemoveMany(ids []string) int {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	removed := 0
	c.mutate(func() error {
		kept := make([]T, 0, len(c.items))
		for _, it := range c.items {
			if drop[it.Key()] {
				removed++
				continue
			}
			kept = append(kept, it)
		}
		c.items = kept
		if drop[c.lastLoaded] {
			c.lastLoaded = ""
		}
		return nil
	})
	return removed
}

func (c *Collection[T]) Clear() {
	c.mutate(func() error {
		c.items = nil
		c.lastLoaded = ""
		return nil
	})
}

// Move places id immediately before (or after) anchor. Both are ids, never
// indices, so earlier removals cannot redirect the move.
func (c *Collection[T]) Move(id, anchor string, after bool) error {
	return c.mutate(func() error {
		from := c.index(id)
		if from < 0 {
			return fmt.Errorf("savestate: %s %q: %w", c.name, id, ErrNotFound)
		}
		if c.index(anchor) < 0 {
			return fmt.Errorf("savestate: %s anchor %q: %w", c.name, anchor, ErrNotFound)
		}
		if id == anchor {
			return nil
		}
		rec := c.items[from]
		rest := append(c.items[:from:from], c.items[from+1:]...)

		to := -1
		for i, it := range rest {
			if it.Key() == anchor {
				to = i
				break
			}
		}
		if after {
			to++
		}
		out := make([]T, 0, len(c.items))
		out = append(out, rest[:to]...)
		out = append(out, rec)
		out = append(out, rest[to:]...)
		c.items = out
		return nil
	})
}

func (c *Collection[T]) Rename(id, title string) error {
	return c.Update(id, func(rec T) T { return rec.Renamed(title) })
}

// Update replaces the record with fn's copy of it.
func (c *Collection[T]) Update(id string, fn func(T) T) error {
	return c.mutate(func() error {
		i := c.index(id)
		if i < 0 {
			return fmt.Errorf("savestate: %s %q: %w", c.name, id, ErrNotFound)
		}
		items := append([]T(nil), c.items...)
		items[i] = fn(items[i])
		c.items = items
		return nil
	})
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// At is explicit positional access; it clears the last-loaded pointer.
func (c *Collection[T]) At(index int) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastLoaded = ""
	if index < 0 || index >= len(c.items) {
		var zero T
		return zero, false
	}
	return c.items[index], true
}

// MarkLoaded records id as the last explicitly loaded record.
func (c *Collection[T]) MarkLoaded(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index(id) < 0 {
		return fmt.Errorf("savestate: %s %q: %w", c.name, id, ErrNotFound)
	}
	c.lastLoaded = id
	return nil
}

// Latest is the last loaded record if one is set, else the last by order.
func (c *Collection[T]) Latest() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastLoaded != "" {
		if i := c.index(c.lastLoaded); i >= 0 {
			return c.items[i], true
		}
	}
	if len(c.items) == 0 {
		var zero T
		return zero, false
	}
	return c.items[len(c.items)-1], true
}

func (c *Collection[T]) All() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

func (c *Collection[T]) Filter(keep func(T) bool) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []T
	for _, it := range c.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns the set of ids.
func (c *Collection[T]) Keys() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]bool, len(c.items))
	for _, it := range c.items {
		out[it.Key()] = true
	}
	return out
}

// mutate applies fn under the lock and persists on success. Persisting
// under the same lock keeps persisted snapshots in mutation order.
func (c *Collection[T]) mutate(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := fn(); err != nil {
		return err
	}
	if c.persist == nil {
		return nil
	}
	snapshot := append([]T(nil), c.items...)
	if err := c.persist(snapshot); err != nil {
		log.Printf("savestate: persist %s failed (count=%d err=%v)", c.name, len(snapshot), err)
	}
	return nil
}

func (c *Collection[T]) index(id string) int {
	for i, it := range c.items {
		if it.Key() == id {
			return i
		}
	}
	return -1
}
