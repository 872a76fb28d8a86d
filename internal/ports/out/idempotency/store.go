package idempotency

import (
	"context"
	"time"

	"github.com/vatelanka/waste-admin-api/internal/domain"
)

// Key is the caller-provided idempotency key (Idempotency-Key header).
type Key string

// Fingerprint identifies a request uniquely for idempotency purposes.
//
// Strategy: key + route + subject + request body hash.
// Route is represented as HTTP method + route pattern (e.g. "POST /supervisors").
// The meta record for a key is stored under an empty BodyHash and holds the hash of the
// first body seen, so reuse with a different payload can be rejected.
type Fingerprint struct {
	Key      Key
	Subject  domain.SubjectID
	Method   string
	Route    string
	BodyHash string
}

// Record is the stored response we can replay for a duplicate request.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists idempotency records for replaying safe responses on retries.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
	// Purge removes records created before cutoff and reports how many were removed.
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}
