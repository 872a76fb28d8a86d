package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	clockport "github.com/vatelanka/waste-admin-api/internal/ports/out/clock"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/idempotency"
)

var errNilPool = errors.New("nil postgres pool")

// keyMatch selects one record by its full fingerprint; $1..$6 come from keyArgs.
const keyMatch = `idempotency_key = $1 AND subject_iss = $2 AND subject_sub = $3
	AND method = $4 AND route = $5 AND body_hash = $6`

// Store keeps replayable onboarding responses in idempotency_keys.
// The issuer column separates admins authenticated by different token issuers.
type Store struct {
	pool   *pgxpool.Pool
	issuer string
	clock  clockport.Clock
}

type Option func(*Store)

// WithClock sets the time source used when a record has no CreatedAt.
func WithClock(c clockport.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func NewStore(pool *pgxpool.Pool, issuer string, opts ...Option) *Store {
	s := &Store{pool: pool, issuer: issuer}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) keyArgs(fp idempotency.Fingerprint) []any {
	return []any{string(fp.Key), s.issuer, string(fp.Subject), fp.Method, fp.Route, fp.BodyHash}
}

func (s *Store) now() time.Time {
	if s.clock != nil {
		return s.clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	if s.pool == nil {
		return idempotency.Record{}, false, errNilPool
	}
	var rec idempotency.Record
	err := s.pool.QueryRow(ctx,
		`SELECT status_code, content_type, body, created_at FROM idempotency_keys WHERE `+keyMatch,
		s.keyArgs(fp)...,
	).Scan(&rec.StatusCode, &rec.ContentType, &rec.Body, &rec.CreatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return idempotency.Record{}, false, nil
	case err != nil:
		return idempotency.Record{}, false, fmt.Errorf("load idempotency record: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, true, nil
}

// Put stores rec, replacing any record with the same fingerprint.
func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if s.pool == nil {
		return errNilPool
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	args := append(s.keyArgs(fp), rec.StatusCode, rec.ContentType, rec.Body, createdAt.UTC())
	_, err := s.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (
			idempotency_key, subject_iss, subject_sub, method, route, body_hash,
			status_code, content_type, body, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (idempotency_key, subject_iss, subject_sub, method, route, body_hash)
		DO UPDATE SET
			status_code = EXCLUDED.status_code,
			content_type = EXCLUDED.content_type,
			body = EXCLUDED.body,
			created_at = EXCLUDED.created_at`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("store idempotency record: %w", err)
	}
	return nil
}

// Purge deletes records created before cutoff and reports how many went.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.pool == nil {
		return 0, errNilPool
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge idempotency records: %w", err)
	}
	return tag.RowsAffected(), nil
}
