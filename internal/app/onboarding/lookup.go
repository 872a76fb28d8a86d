package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vatelanka/waste-admin-api/internal/domain"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/directory"
)

// Get returns the entity of the given kind with id. An unknown id, or an id that
// belongs to the other kind, is ENTITY_NOT_FOUND.
func (s *Service) Get(ctx context.Context, kind domain.Kind, id domain.EntityID) (domain.Entity, error) {
	spec, ok := SpecFor(kind)
	if !ok {
		return domain.Entity{}, fmt.Errorf("unknown entity kind %q", kind)
	}
	raw := strings.TrimSpace(string(id))
	if !validSegment(raw) {
		return domain.Entity{}, entityNotFound(spec, raw)
	}

	ref, err := s.store.Get(ctx, entityIDPath(raw))
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return domain.Entity{}, entityNotFound(spec, raw)
		}
		return domain.Entity{}, fmt.Errorf("get entity ref: %w", err)
	}
	if ref.String("kind") != string(spec.Kind) {
		return domain.Entity{}, entityNotFound(spec, raw)
	}

	doc, err := s.store.Get(ctx, directory.Path(ref.String("path")))
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return domain.Entity{}, entityNotFound(spec, raw)
		}
		return domain.Entity{}, fmt.Errorf("get entity: %w", err)
	}
	return entityFromDocument(doc)
}

func entityNotFound(spec KindSpec, id string) *Error {
	return notFound(CodeEntityNotFound, fmt.Sprintf("No %s with id %q", spec.Label, id), map[string]any{"id": id})
}
