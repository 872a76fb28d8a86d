package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	postgres "github.com/vatelanka/waste-admin-api/internal/adapters/postgres"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/identity"
)

// Provider is a Postgres-backed identity.Provider. Passwords are stored as bcrypt hashes.
type Provider struct {
	pool *pgxpool.Pool
	cost int
}

func NewProvider(pool *pgxpool.Pool) *Provider {
	return &Provider{pool: pool, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (p *Provider) WithCost(cost int) *Provider {
	p.cost = cost
	return p
}

func (p *Provider) Create(ctx context.Context, a identity.NewAccount) (identity.Account, error) {
	if p.pool == nil {
		return identity.Account{}, errors.New("nil postgres pool")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), p.cost)
	if err != nil {
		return identity.Account{}, fmt.Errorf("hash password: %w", err)
	}

	var createdAt time.Time
	err = p.pool.QueryRow(ctx, `
		INSERT INTO accounts (uid, display_name, email, phone_number, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, a.UID, a.DisplayName, a.Email, a.PhoneNumber, hash).Scan(&createdAt)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case "accounts_pkey":
				return identity.Account{}, identity.ErrUIDExists
			case "accounts_email_key":
				return identity.Account{}, identity.ErrEmailExists
			case "accounts_phone_number_key":
				return identity.Account{}, identity.ErrPhoneExists
			}
		}
		return identity.Account{}, err
	}

	return identity.Account{
		UID:         a.UID,
		DisplayName: a.DisplayName,
		Email:       a.Email,
		PhoneNumber: a.PhoneNumber,
		CreatedAt:   createdAt.UTC(),
	}, nil
}

func (p *Provider) GetByEmail(ctx context.Context, email string) (identity.Account, error) {
	if p.pool == nil {
		return identity.Account{}, errors.New("nil postgres pool")
	}
	var a identity.Account
	err := p.pool.QueryRow(ctx, `
		SELECT uid, display_name, email, phone_number, disabled, created_at
		FROM accounts
		WHERE lower(email) = lower($1)
	`, email).Scan(&a.UID, &a.DisplayName, &a.Email, &a.PhoneNumber, &a.Disabled, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.Account{}, identity.ErrNotFound
		}
		return identity.Account{}, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

func (p *Provider) Delete(ctx context.Context, uid string) error {
	if p.pool == nil {
		return errors.New("nil postgres pool")
	}
	tag, err := p.pool.Exec(ctx, `DELETE FROM accounts WHERE uid = $1`, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrNotFound
	}
	return nil
}
