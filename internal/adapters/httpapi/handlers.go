package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/vatelanka/waste-admin-api/internal/app/locations"
	"github.com/vatelanka/waste-admin-api/internal/app/onboarding"
	"github.com/vatelanka/waste-admin-api/internal/domain"
	"github.com/vatelanka/waste-admin-api/internal/platform/health"
)

// Server implements the admin HTTP handlers over the application services.
type Server struct {
	Onboarding *onboarding.Service
	Locations  *locations.Service
	Health     *health.Checker
}

func NewServer(onboardingSvc *onboarding.Service, locationsSvc *locations.Service, checker *health.Checker) *Server {
	return &Server{Onboarding: onboardingSvc, Locations: locationsSvc, Health: checker}
}

func (s *Server) onboard(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body onboardRequest
		if !decodeJSON(w, r, &body) {
			return
		}
		res, err := s.Onboarding.Onboard(r.Context(), kind, actorFromContext(r.Context()), body.input())
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeData(w, createdFromResult(res))
	}
}

func (s *Server) getEntity(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := url.PathUnescape(chi.URLParam(r, "id"))
		if err != nil {
			id = chi.URLParam(r, "id")
		}
		e, err := s.Onboarding.Get(r.Context(), kind, domain.EntityID(id))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeData(w, entityFromDomain(e))
	}
}

func (s *Server) putWard(w http.ResponseWriter, r *http.Request) {
	var loc locationDTO
	for _, p := range []struct {
		name string
		dst  *string
	}{
		{"council", &loc.MunicipalCouncil},
		{"district", &loc.District},
		{"ward", &loc.Ward},
	} {
		raw := chi.URLParam(r, p.name)
		v, err := url.PathUnescape(raw)
		if err != nil {
			v = raw
		}
		*p.dst = v
	}

	got, err := s.Locations.EnsureWard(r.Context(), wardFromLocation(loc))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, locationFromDomain(got))
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.Health == nil {
		writeData(w, health.Status{OK: true, Checks: map[string]string{}})
		return
	}
	st := s.Health.Run(r.Context())
	if !st.OK {
		details := make(map[string]any, len(st.Checks))
		for k, v := range st.Checks {
			details[k] = v
		}
		writeError(w, r, http.StatusServiceUnavailable, CodeNotReady, "Service not ready", details)
		return
	}
	writeData(w, st)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidJSON, "Request body is not valid JSON", nil)
		return false
	}
	return true
}
