// Package locations manages the council/district/ward reference data entities are filed under.
package locations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vatelanka/waste-admin-api/internal/app/onboarding"
	"github.com/vatelanka/waste-admin-api/internal/domain"
	clockport "github.com/vatelanka/waste-admin-api/internal/ports/out/clock"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/directory"
)

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Ward is one seedable location.
type Ward struct {
	MunicipalCouncil string `json:"municipalCouncil"`
	District         string `json:"district"`
	Ward             string `json:"ward"`
}

func (w Ward) location() domain.Location {
	return domain.Location{Council: w.MunicipalCouncil, District: w.District, Ward: w.Ward}.Normalize()
}

type Service struct {
	store directory.Store
	clk   clockport.Clock
	log   zerolog.Logger
}

func NewService(store directory.Store, clk clockport.Clock, logger zerolog.Logger) *Service {
	return &Service{
		store: store,
		clk:   clk,
		log:   logger.With().Str("component", "locations").Logger(),
	}
}

// EnsureWard creates or refreshes the ward node for w and returns its normalized location.
func (s *Service) EnsureWard(ctx context.Context, w Ward) (domain.Location, error) {
	loc := w.location()
	segments := [][2]string{
		{onboarding.FieldMunicipalCouncil, loc.Council},
		{onboarding.FieldDistrict, loc.District},
		{onboarding.FieldWard, loc.Ward},
	}
	for _, seg := range segments {
		field, v := seg[0], seg[1]
		if v == "" || strings.Contains(v, "/") {
			return domain.Location{}, &Error{
				Status:  http.StatusBadRequest,
				Code:    onboarding.CodeInvalidLocation,
				Message: fmt.Sprintf("Invalid %s: must be a non-empty identifier without '/'", field),
				Details: map[string]any{"field": field},
			}
		}
	}

	err := s.store.Set(ctx, onboarding.WardPath(loc), map[string]any{
		onboarding.FieldMunicipalCouncil: loc.Council,
		onboarding.FieldDistrict:         loc.District,
		onboarding.FieldWard:             loc.Ward,
		"updatedAt":                      s.clk.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return domain.Location{}, fmt.Errorf("ensure ward %s: %w", loc, err)
	}
	return loc, nil
}

// SeedFile loads a JSON array of wards from path and ensures each one exists.
// A missing file is not an error when optional is true.
func (s *Service) SeedFile(ctx context.Context, path string, optional bool) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			s.log.Info().Str("file", path).Msg("no location seed file")
			return 0, nil
		}
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var wards []Ward
	if err := json.Unmarshal(b, &wards); err != nil {
		return 0, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return s.Seed(ctx, wards)
}

// Seed ensures every ward exists. It stops at the first failure.
func (s *Service) Seed(ctx context.Context, wards []Ward) (int, error) {
	for i, w := range wards {
		if _, err := s.EnsureWard(ctx, w); err != nil {
			return i, fmt.Errorf("seed entry %d: %w", i, err)
		}
	}
	s.log.Info().Int("wards", len(wards)).Msg("seeded locations")
	return len(wards), nil
}
