package contracttest

import (
	"context"
	"testing"
	"time"

	"github.com/vatelanka/waste-admin-api/internal/domain"
	idempotencyport "github.com/vatelanka/waste-admin-api/internal/ports/out/idempotency"
)

type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

// RunIdempotencyStore exercises the idempotency.Store contract.
func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	meta := idempotencyport.Fingerprint{
		Key:     "k-1",
		Subject: domain.SubjectID("admin-1"),
		Method:  "POST",
		Route:   "/supervisors",
	}
	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, meta, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, meta)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, meta, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, meta)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// Distinct body hashes are distinct records.
	full := meta
	full.BodyHash = "hash-def"
	if _, ok, err := store.Get(ctx, full); err != nil || ok {
		t.Fatalf("expected miss for unseen body hash, ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, full, idempotencyport.Record{
		StatusCode:  200,
		ContentType: "application/json",
		Body:        []byte(`{"success":true}`),
		CreatedAt:   time.Unix(500, 0).UTC(),
	}); err != nil {
		t.Fatalf("Put response: %v", err)
	}

	// Purge removes only records older than the cutoff.
	n, err := store.Purge(ctx, time.Unix(200, 0).UTC())
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("Purge removed %d, want 1", n)
	}
	if _, ok, _ := store.Get(ctx, meta); ok {
		t.Fatalf("expected meta record purged")
	}
	if got, ok, _ := store.Get(ctx, full); !ok || got.StatusCode != 200 {
		t.Fatalf("expected response record kept, ok=%v rec=%+v", ok, got)
	}
}
