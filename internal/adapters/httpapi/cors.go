package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var (
	corsAllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	corsAllowHeaders = []string{
		"X-CSRF-Token", "X-Requested-With", "Accept", "Accept-Version", "Content-Length", "Content-MD5",
		"Content-Type", "Date", "X-Api-Version", "Authorization", headerIdempotencyKey, headerDebugSubject,
	}
)

// NewCORSMiddleware allows browser calls only from the listed origins. An empty
// list allows none.
func NewCORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return allowed[origin]
		},
		AllowedMethods:   corsAllowMethods,
		AllowedHeaders:   corsAllowHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	})
}
