package directory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/vatelanka/waste-admin-api/internal/ports/out/directory"
)

// Store is an in-memory implementation of directory.Store.
// It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[directory.Path]map[string]any
}

func NewStore() *Store {
	return &Store{
		docs: make(map[directory.Path]map[string]any),
	}
}

func (s *Store) Get(ctx context.Context, p directory.Path) (directory.Document, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[p]
	if !ok {
		return directory.Document{}, directory.ErrNotFound
	}
	return directory.Document{Path: p, Data: cloneData(data)}, nil
}

func (s *Store) Set(ctx context.Context, p directory.Path, data map[string]any) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[p] = cloneData(data)
	return nil
}

func (s *Store) Query(ctx context.Context, c directory.CollectionRef, field, value string) ([]directory.Document, error) {
	return s.filter(ctx, func(p directory.Path) bool { return p.Parent() == c }, field, value)
}

func (s *Store) QueryGroup(ctx context.Context, collectionID, field, value string) ([]directory.Document, error) {
	return s.filter(ctx, func(p directory.Path) bool { return p.Parent().ID() == collectionID }, field, value)
}

func (s *Store) filter(ctx context.Context, match func(directory.Path) bool, field, value string) ([]directory.Document, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]directory.Document, 0)
	for p, data := range s.docs {
		if !match(p) {
			continue
		}
		if v, ok := data[field].(string); !ok || v != value {
			continue
		}
		out = append(out, directory.Document{Path: p, Data: cloneData(data)})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(string(out[i].Path), string(out[j].Path)) < 0
	})
	return out, nil
}

func (s *Store) CreateAll(ctx context.Context, docs []directory.Document) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[directory.Path]struct{}, len(docs))
	for _, d := range docs {
		if _, ok := s.docs[d.Path]; ok {
			return &directory.ConflictError{Path: d.Path}
		}
		if _, ok := seen[d.Path]; ok {
			return &directory.ConflictError{Path: d.Path}
		}
		seen[d.Path] = struct{}{}
	}
	for _, d := range docs {
		s.docs[d.Path] = cloneData(d.Data)
	}
	return nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func cloneData(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
