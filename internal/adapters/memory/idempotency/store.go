package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/vatelanka/waste-admin-api/internal/ports/out/idempotency"
)

// Store is an in-memory implementation of idempotency.Store.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[idempotency.Fingerprint]idempotency.Record
}

func NewStore() *Store {
	return &Store{
		records: make(map[idempotency.Fingerprint]idempotency.Record),
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[fp]
	if !ok {
		return idempotency.Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	_ = ctx
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[fp] = cloneRecord(rec)
	return nil
}

func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for fp, rec := range s.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(s.records, fp)
			n++
		}
	}
	return n, nil
}

func cloneRecord(r idempotency.Record) idempotency.Record {
	r.Body = append([]byte(nil), r.Body...)
	return r
}
