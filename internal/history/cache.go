// Package history keeps the bounded in-memory record of past disputable
// transactions. Capacity is a hard ceiling: once full, the oldest inserted
// entry still present is evicted (FIFO by insertion order, not access order),
// regardless of its dispute state. Disputes are expected to reference recent
// transactions, so evicted entries are only reachable through an injected
// fallback store.
package history

import (
	"log/slog"

	"payengine/internal/domain"
)

// Fallback looks up entries no longer held locally. Read-only from the
// cache's perspective; lookups must be idempotent. A nil entry with a nil
// error means "not found".
type Fallback interface {
	Lookup(tx domain.TxID) (*domain.HistoryEntry, error)
}

// Archiver receives entries the moment capacity evicts them.
type Archiver interface {
	Archive(e domain.HistoryEntry) error
}

// StateWriter is an optional capability of the fallback: it accepts dispute
// state transitions for entries that were already evicted. The bool result
// reports whether the entry existed there.
type StateWriter interface {
	MarkDisputed(tx domain.TxID) (bool, error)
	Remove(tx domain.TxID) (bool, error)
}

// Cache is the bounded transaction-history store. Not safe for concurrent
// use; it is owned and mutated by a single processor.
type Cache struct {
	capacity int
	entries  map[domain.TxID]*domain.HistoryEntry
	order    []domain.TxID // insertion order; ids removed out of band go stale
	fallback Fallback
	archiver Archiver
}

// NewCache creates a cache holding at most capacity entries. fallback and
// archiver may be nil; without them eviction is simply loss.
func NewCache(capacity int, fallback Fallback, archiver Archiver) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[domain.TxID]*domain.HistoryEntry, capacity),
		fallback: fallback,
		archiver: archiver,
	}
}

// Insert adds a new entry, evicting the oldest still-present entry first
// when at capacity. Evicted entries are handed to the archiver.
func (c *Cache) Insert(e domain.HistoryEntry) {
	if len(c.entries) >= c.capacity {
		c.evictOldest()
	}

	entry := e
	c.entries[e.Tx] = &entry
	c.order = append(c.order, e.Tx)
}

// Get returns a copy of the entry for tx. On a local miss it consults the
// fallback before reporting not found; recovered entries are never re-admitted
// into the bounded slots.
func (c *Cache) Get(tx domain.TxID) (domain.HistoryEntry, bool) {
	if e, ok := c.entries[tx]; ok {
		return *e, true
	}

	if c.fallback == nil {
		return domain.HistoryEntry{}, false
	}

	e, err := c.fallback.Lookup(tx)
	if err != nil {
		slog.Warn("history fallback lookup failed", slog.Uint64("tx", uint64(tx)), slog.Any("error", err))
		return domain.HistoryEntry{}, false
	}
	if e == nil {
		return domain.HistoryEntry{}, false
	}
	return *e, true
}

// MarkDisputed transitions the entry for tx to the disputed state. For
// entries evicted locally, the transition is forwarded to the fallback when
// it accepts writes.
func (c *Cache) MarkDisputed(tx domain.TxID) bool {
	if e, ok := c.entries[tx]; ok {
		e.State = domain.StateDisputed
		return true
	}
	if w, ok := c.fallback.(StateWriter); ok {
		found, err := w.MarkDisputed(tx)
		if err != nil {
			slog.Warn("history fallback mark failed", slog.Uint64("tx", uint64(tx)), slog.Any("error", err))
			return false
		}
		return found
	}
	return false
}

// Remove deletes the entry for tx once its transaction completes. Forwarded
// to the fallback for entries evicted locally.
func (c *Cache) Remove(tx domain.TxID) bool {
	if _, ok := c.entries[tx]; ok {
		delete(c.entries, tx)
		return true
	}
	if w, ok := c.fallback.(StateWriter); ok {
		found, err := w.Remove(tx)
		if err != nil {
			slog.Warn("history fallback remove failed", slog.Uint64("tx", uint64(tx)), slog.Any("error", err))
			return false
		}
		return found
	}
	return false
}

// Len returns the number of locally held entries.
func (c *Cache) Len() int { return len(c.entries) }

func (c *Cache) evictOldest() {
	for len(c.order) > 0 {
		tx := c.order[0]
		c.order = c.order[1:]

		e, ok := c.entries[tx]
		if !ok {
			// Removed on completion; the queue slot is stale.
			continue
		}

		delete(c.entries, tx)
		if c.archiver != nil {
			if err := c.archiver.Archive(*e); err != nil {
				slog.Warn("history archive failed", slog.Uint64("tx", uint64(tx)), slog.Any("error", err))
			}
		}
		return
	}
}
