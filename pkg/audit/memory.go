package audit

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var errStoreClosed = errors.New("store closed")

// MemoryStore is an in-memory Store, used in tests and when audit is
// enabled without a database path.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: []*Record{}}
}

// Insert persists one record.
func (m *MemoryStore) Insert(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *rec
	m.records = append(m.records, &c)
	return nil
}

// Query returns records matching q, newest first.
func (m *MemoryStore) Query(ctx context.Context, q Query) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := []*Record{}
	for _, rec := range m.records {
		if matches(rec, q) {
			matched = append(matched, rec)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	limit := 100
	if q.Limit > 0 {
		limit = q.Limit
	}
	offset := q.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*Record, end-offset)
	for i, rec := range matched[offset:end] {
		c := *rec
		out[i] = &c
	}
	return out, nil
}

// Count returns how many records match q.
func (m *MemoryStore) Count(ctx context.Context, q Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, rec := range m.records {
		if matches(rec, q) {
			count++
		}
	}
	return count, nil
}

// DeleteBefore removes records created strictly before cutoff.
func (m *MemoryStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	var deleted int64
	for _, rec := range m.records {
		if rec.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return deleted, nil
}

// DeleteOldest removes the n oldest records.
func (m *MemoryStore) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 || len(m.records) == 0 {
		return 0, nil
	}

	sort.Slice(m.records, func(i, j int) bool {
		return m.records[i].CreatedAt.Before(m.records[j].CreatedAt)
	})

	if n > int64(len(m.records)) {
		n = int64(len(m.records))
	}
	m.records = m.records[n:]
	return n, nil
}

// Ping reports whether the store is open.
func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return &StorageError{Op: "ping", Err: errStoreClosed}
	}
	return nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func matches(rec *Record, q Query) bool {
	if q.Since != nil && rec.CreatedAt.Before(*q.Since) {
		return false
	}
	if q.Until != nil && rec.CreatedAt.After(*q.Until) {
		return false
	}
	if q.Provider != "" && rec.Provider != q.Provider {
		return false
	}
	if q.UsedRAG != nil && rec.UsedRAG != *q.UsedRAG {
		return false
	}
	if q.UsedFallback != nil && rec.UsedFallback != *q.UsedFallback {
		return false
	}
	return true
}
