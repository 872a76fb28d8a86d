package httpapi

import (
	"context"

	"github.com/vatelanka/waste-admin-api/internal/domain"
)

type subjectKey struct{}

func WithSubject(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subjectID)
}

func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey{}).(string)
	return v, ok && v != ""
}

func actorFromContext(ctx context.Context) domain.SubjectID {
	sub, _ := SubjectFromContext(ctx)
	return domain.SubjectID(sub)
}
