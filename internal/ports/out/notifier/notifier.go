package notifier

//go:generate mockgen -source=notifier.go -destination=mocks/mocks.go -package=mocks Notifier

import (
	"context"

	"github.com/vatelanka/waste-admin-api/internal/domain"
)

// Credentials is the onboarding message payload: who was created and how they sign in.
type Credentials struct {
	Kind         domain.Kind
	To           string
	Name         string
	EntityID     domain.EntityID
	Password     string
	Location     domain.Location
	PhoneNumber  string
	LicensePlate string
}

// Notifier delivers onboarding credentials. Callers treat failures as non-fatal.
type Notifier interface {
	SendCredentials(ctx context.Context, c Credentials) error
}
