package httpapi

import (
	"errors"
	"net/http"

	"github.com/vatelanka/waste-admin-api/internal/app/locations"
	"github.com/vatelanka/waste-admin-api/internal/app/onboarding"
)

const (
	CodeInvalidJSON         = "INVALID_JSON"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	CodeNotFound            = "NOT_FOUND"
	CodeNotReady            = "NOT_READY"
	CodeIdempotencyKeyReuse = "IDEMPOTENCY_KEY_REUSE"
	CodeInternal            = "INTERNAL"
)

// writeAppError maps application errors onto the error envelope. Anything
// unrecognized is a 500 carrying the collaborator's message when it has one.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	if oe := (*onboarding.Error)(nil); errors.As(err, &oe) {
		writeError(w, r, oe.Status, oe.Code, oe.Message, oe.Details)
		return
	}
	if le := (*locations.Error)(nil); errors.As(err, &le) {
		writeError(w, r, le.Status, le.Code, le.Message, le.Details)
		return
	}
	msg := "Internal server error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	writeError(w, r, http.StatusInternalServerError, CodeInternal, msg, nil)
}
