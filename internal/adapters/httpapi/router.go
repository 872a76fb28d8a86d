package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vatelanka/waste-admin-api/internal/domain"
	platformclock "github.com/vatelanka/waste-admin-api/internal/platform/clock"
	"github.com/vatelanka/waste-admin-api/internal/platform/metrics"
	clockport "github.com/vatelanka/waste-admin-api/internal/ports/out/clock"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/idempotency"
)

type RouterOptions struct {
	// AuthMiddleware resolves the admin subject. Nil leaves requests anonymous.
	AuthMiddleware func(http.Handler) http.Handler
	AllowedOrigins []string
	Logger         zerolog.Logger
	// Metrics, when set, records request timings and serves /metrics.
	Metrics *metrics.Metrics
	// Idempotency, when set, enables Idempotency-Key handling on the onboarding routes.
	Idempotency idempotency.Store
	// Clock stamps idempotency records. Defaults to the system clock.
	Clock clockport.Clock
}

// NewRouter constructs the API HTTP router.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	var observer requestObserver
	if opts.Metrics != nil {
		observer = opts.Metrics
	}
	r.Use(newRequestLogger(opts.Logger, observer))
	r.Use(middleware.Recoverer)
	r.Use(NewCORSMiddleware(opts.AllowedOrigins))
	if opts.AuthMiddleware != nil {
		r.Use(opts.AuthMiddleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, CodeNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	clk := opts.Clock
	if clk == nil {
		clk = platformclock.NewSystemClock()
	}
	idem := newIdempotencyMiddleware(opts.Idempotency, clk)

	r.Route("/supervisors", func(r chi.Router) {
		r.With(idem).Post("/", s.onboard(domain.KindSupervisor))
		r.Get("/{id}", s.getEntity(domain.KindSupervisor))
	})
	r.Route("/drivers", func(r chi.Router) {
		r.With(idem).Post("/", s.onboard(domain.KindDriver))
		r.Get("/{id}", s.getEntity(domain.KindDriver))
	})
	r.Put("/locations/{council}/{district}/{ward}", s.putWard)

	return r
}
