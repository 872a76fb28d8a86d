package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vatelanka/waste-admin-api/internal/ports/out/directory"
)

// Store is a Postgres implementation of directory.Store.
//
// Each document is one row of directory_documents keyed by its full path. Uniqueness of
// index documents therefore falls out of the primary key.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, p directory.Path) (directory.Document, error) {
	if s.pool == nil {
		return directory.Document{}, errors.New("nil postgres pool")
	}
	var data map[string]any
	err := s.pool.QueryRow(ctx, `SELECT data FROM directory_documents WHERE path = $1`, string(p)).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.Document{}, directory.ErrNotFound
		}
		return directory.Document{}, err
	}
	return directory.Document{Path: p, Data: data}, nil
}

func (s *Store) Set(ctx context.Context, p directory.Path, data map[string]any) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO directory_documents (path, parent, collection_id, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (path) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = now()
	`, string(p), string(p.Parent()), p.Parent().ID(), nonNil(data))
	return err
}

func (s *Store) Query(ctx context.Context, c directory.CollectionRef, field, value string) ([]directory.Document, error) {
	return s.query(ctx, `
		SELECT path, data FROM directory_documents
		WHERE parent = $1 AND data->>$2 = $3
		ORDER BY path COLLATE "C"
	`, string(c), field, value)
}

func (s *Store) QueryGroup(ctx context.Context, collectionID, field, value string) ([]directory.Document, error) {
	return s.query(ctx, `
		SELECT path, data FROM directory_documents
		WHERE collection_id = $1 AND data->>$2 = $3
		ORDER BY path COLLATE "C"
	`, collectionID, field, value)
}

func (s *Store) query(ctx context.Context, sql string, args ...any) ([]directory.Document, error) {
	if s.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]directory.Document, 0)
	for rows.Next() {
		var (
			path string
			data map[string]any
		)
		if err := rows.Scan(&path, &data); err != nil {
			return nil, err
		}
		out = append(out, directory.Document{Path: directory.Path(path), Data: data})
	}
	return out, rows.Err()
}

func (s *Store) CreateAll(ctx context.Context, docs []directory.Document) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, d := range docs {
			// Concurrent inserts of the same path serialize on the primary key; the loser
			// sees zero rows affected once the winner commits.
			tag, err := tx.Exec(ctx, `
				INSERT INTO directory_documents (path, parent, collection_id, data)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (path) DO NOTHING
			`, string(d.Path), string(d.Path.Parent()), d.Path.Parent().ID(), nonNil(d.Data))
			if err != nil {
				return fmt.Errorf("insert %s: %w", d.Path, err)
			}
			if tag.RowsAffected() == 0 {
				return &directory.ConflictError{Path: d.Path}
			}
		}
		return nil
	})
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
