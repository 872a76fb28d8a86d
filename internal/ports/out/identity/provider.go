package identity

import (
	"context"
	"time"
)

// NewAccount describes an authentication account to create.
type NewAccount struct {
	UID         string
	DisplayName string
	Password    string
	// Email is optional; nil means unset.
	Email *string
	// PhoneNumber is optional and must be in international format; nil means unset.
	PhoneNumber *string
}

// Account is an existing authentication account. Password material is never returned.
type Account struct {
	UID         string
	DisplayName string
	Email       *string
	PhoneNumber *string
	Disabled    bool
	CreatedAt   time.Time
}

// Provider is the external authentication-account service.
//
// Email matching is case-insensitive.
type Provider interface {
	Create(ctx context.Context, a NewAccount) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	// Delete removes the account with uid; it returns ErrNotFound if none exists.
	Delete(ctx context.Context, uid string) error
}
