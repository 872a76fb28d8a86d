package directory

import "context"

// Document is a stored node of the directory tree.
//
// Data values are limited to JSON scalars (string, bool, float64) so that every adapter
// round-trips them identically.
type Document struct {
	Path Path
	Data map[string]any
}

// String returns Data[field] when it holds a string.
func (d Document) String(field string) string {
	s, _ := d.Data[field].(string)
	return s
}

// Store is the hierarchical document store used for existence checks, uniqueness checks,
// and primary storage.
//
// Query results are ordered by Path ascending to keep behavior deterministic.
type Store interface {
	// Get returns ErrNotFound when nothing is stored at p.
	Get(ctx context.Context, p Path) (Document, error)

	// Set creates or replaces the document at p.
	Set(ctx context.Context, p Path, data map[string]any) error

	// Query returns documents directly inside c whose string field equals value.
	Query(ctx context.Context, c CollectionRef, field, value string) ([]Document, error)

	// QueryGroup returns documents from every collection named collectionID, at any depth,
	// whose string field equals value.
	QueryGroup(ctx context.Context, collectionID, field, value string) ([]Document, error)

	// CreateAll writes every document or none. If any path is already occupied it returns
	// a *ConflictError naming the first such path (in argument order) and writes nothing.
	CreateAll(ctx context.Context, docs []Document) error
}
