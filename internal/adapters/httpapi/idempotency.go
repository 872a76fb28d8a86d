package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	clockport "github.com/vatelanka/waste-admin-api/internal/ports/out/clock"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/idempotency"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"

	maxBodyBytes = 1 << 20
)

// newIdempotencyMiddleware replays stored 200 responses for a repeated
// Idempotency-Key with the same body and rejects the key with a different body.
// Requests without the header pass through untouched.
//
// Records are keyed by subject + key + method + path + body hash. The meta record
// (empty BodyHash) remembers the body hash of the first successful request.
func newIdempotencyMiddleware(store idempotency.Store, clk clockport.Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(headerIdempotencyKey))
			if store == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			log := zerolog.Ctx(ctx)

			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				writeError(w, r, http.StatusBadRequest, CodeInvalidJSON, "request body could not be read", nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
			bodyHash := hashBody(raw)

			metaFP := idempotency.Fingerprint{
				Key:     idempotency.Key(key),
				Subject: actorFromContext(ctx),
				Method:  r.Method,
				Route:   r.URL.Path,
			}
			meta, haveMeta, err := store.Get(ctx, metaFP)
			if err != nil {
				writeAppError(w, r, err)
				return
			}
			if haveMeta && string(meta.Body) != bodyHash {
				writeError(w, r, http.StatusConflict, CodeIdempotencyKeyReuse, "idempotency key reuse with different payload", nil)
				return
			}

			respFP := metaFP
			respFP.BodyHash = bodyHash
			if rec, ok, err := store.Get(ctx, respFP); err != nil {
				writeAppError(w, r, err)
				return
			} else if ok && rec.StatusCode == http.StatusOK {
				w.Header().Set("Content-Type", rec.ContentType)
				w.Header().Set(headerReplayed, "true")
				w.WriteHeader(rec.StatusCode)
				_, _ = w.Write(rec.Body)
				return
			}

			var captured bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&captured)
			next.ServeHTTP(ww, r)

			// Only successes bind the key; a rejected request may be retried with the
			// same key and a corrected body.
			if ww.Status() != http.StatusOK {
				return
			}
			now := clk.Now().UTC()
			if err := store.Put(ctx, respFP, idempotency.Record{
				StatusCode:  http.StatusOK,
				ContentType: ww.Header().Get("Content-Type"),
				Body:        captured.Bytes(),
				CreatedAt:   now,
			}); err != nil {
				log.Warn().Err(err).Msg("store idempotency response")
			}
			if haveMeta {
				return
			}
			if err := store.Put(ctx, metaFP, idempotency.Record{
				ContentType: "text/plain",
				Body:        []byte(bodyHash),
				CreatedAt:   now,
			}); err != nil {
				log.Warn().Err(err).Msg("store idempotency meta record")
			}
		})
	}
}

// hashBody hashes the compacted JSON so formatting differences do not count as a
// different payload. Bodies that are not JSON are hashed as sent.
func hashBody(raw []byte) string {
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err == nil {
		raw = compact.Bytes()
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
