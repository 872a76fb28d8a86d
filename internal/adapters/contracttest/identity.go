package contracttest

import (
	"context"
	"errors"
	"testing"

	identityport "github.com/vatelanka/waste-admin-api/internal/ports/out/identity"
)

type IdentityProviderFactory func(t *testing.T) (identityport.Provider, CleanupFunc)

// RunIdentityProvider exercises the identity.Provider contract.
func RunIdentityProvider(t *testing.T, newProvider IdentityProviderFactory) {
	t.Helper()
	ctx := context.Background()

	p, cleanup := newProvider(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	email := "Nimal.Perera@Example.com"
	phone := "+94712345678"
	acc, err := p.Create(ctx, identityport.NewAccount{
		UID:         "SUPAAAAAA",
		DisplayName: "Nimal Perera",
		Password:    "5678ab12",
		Email:       &email,
		PhoneNumber: &phone,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if acc.UID != "SUPAAAAAA" || acc.DisplayName != "Nimal Perera" || acc.Email == nil || acc.PhoneNumber == nil {
		t.Fatalf("unexpected account: %+v", acc)
	}

	// Email lookup is case-insensitive.
	got, err := p.GetByEmail(ctx, "nimal.perera@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.UID != "SUPAAAAAA" {
		t.Fatalf("GetByEmail uid=%q", got.UID)
	}
	if _, err := p.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, identityport.ErrNotFound) {
		t.Fatalf("GetByEmail missing: err=%v, want ErrNotFound", err)
	}

	// Distinct failures per conflicting attribute.
	otherEmail := "other@example.com"
	otherPhone := "+94770000000"
	cases := []struct {
		name string
		in   identityport.NewAccount
		want error
	}{
		{"uid", identityport.NewAccount{UID: "SUPAAAAAA", DisplayName: "x", Password: "p"}, identityport.ErrUIDExists},
		{"email", identityport.NewAccount{UID: "SUPBBBBBB", DisplayName: "x", Password: "p", Email: &email}, identityport.ErrEmailExists},
		{"phone", identityport.NewAccount{UID: "SUPCCCCCC", DisplayName: "x", Password: "p", Email: &otherEmail, PhoneNumber: &phone}, identityport.ErrPhoneExists},
	}
	for _, tc := range cases {
		if _, err := p.Create(ctx, tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("%s conflict: err=%v, want %v", tc.name, err, tc.want)
		}
	}

	// Accounts without email or phone are allowed.
	if _, err := p.Create(ctx, identityport.NewAccount{UID: "TRUCKAAAAAA", DisplayName: "Sunil", Password: "p", PhoneNumber: &otherPhone}); err != nil {
		t.Fatalf("Create without email: %v", err)
	}

	// Delete frees the uid and the unique attributes.
	if err := p.Delete(ctx, "SUPAAAAAA"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := p.Delete(ctx, "SUPAAAAAA"); !errors.Is(err, identityport.ErrNotFound) {
		t.Fatalf("Delete twice: err=%v, want ErrNotFound", err)
	}
	if _, err := p.GetByEmail(ctx, email); !errors.Is(err, identityport.ErrNotFound) {
		t.Fatalf("GetByEmail after delete: err=%v", err)
	}
	if _, err := p.Create(ctx, identityport.NewAccount{UID: "SUPAAAAAA", DisplayName: "Nimal Perera", Password: "p", Email: &email, PhoneNumber: &phone}); err != nil {
		t.Fatalf("re-Create after delete: %v", err)
	}
}
