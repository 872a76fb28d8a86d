package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vatelanka/waste-admin-api/internal/ports/out/clock"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/identity"
)

type account struct {
	identity.Account
	password string
}

// Provider is an in-memory implementation of identity.Provider.
// It is safe for concurrent use.
type Provider struct {
	mu    sync.RWMutex
	clock clock.Clock

	byUID   map[string]account
	byEmail map[string]string
	byPhone map[string]string
}

func NewProvider(c clock.Clock) *Provider {
	return &Provider{
		clock:   c,
		byUID:   make(map[string]account),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
	}
}

func (p *Provider) Create(ctx context.Context, a identity.NewAccount) (identity.Account, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byUID[a.UID]; ok {
		return identity.Account{}, identity.ErrUIDExists
	}
	if a.Email != nil {
		if _, ok := p.byEmail[emailKey(*a.Email)]; ok {
			return identity.Account{}, identity.ErrEmailExists
		}
	}
	if a.PhoneNumber != nil {
		if _, ok := p.byPhone[*a.PhoneNumber]; ok {
			return identity.Account{}, identity.ErrPhoneExists
		}
	}

	acc := account{
		Account: identity.Account{
			UID:         a.UID,
			DisplayName: a.DisplayName,
			Email:       cloneStringPtr(a.Email),
			PhoneNumber: cloneStringPtr(a.PhoneNumber),
			CreatedAt:   p.now(),
		},
		password: a.Password,
	}
	p.byUID[a.UID] = acc
	if a.Email != nil {
		p.byEmail[emailKey(*a.Email)] = a.UID
	}
	if a.PhoneNumber != nil {
		p.byPhone[*a.PhoneNumber] = a.UID
	}
	return cloneAccount(acc.Account), nil
}

func (p *Provider) GetByEmail(ctx context.Context, email string) (identity.Account, error) {
	_ = ctx
	p.mu.RLock()
	defer p.mu.RUnlock()
	uid, ok := p.byEmail[emailKey(email)]
	if !ok {
		return identity.Account{}, identity.ErrNotFound
	}
	return cloneAccount(p.byUID[uid].Account), nil
}

func (p *Provider) Delete(ctx context.Context, uid string) error {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	acc, ok := p.byUID[uid]
	if !ok {
		return identity.ErrNotFound
	}
	delete(p.byUID, uid)
	if acc.Email != nil {
		delete(p.byEmail, emailKey(*acc.Email))
	}
	if acc.PhoneNumber != nil {
		delete(p.byPhone, *acc.PhoneNumber)
	}
	return nil
}

// Count returns the number of live accounts.
func (p *Provider) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byUID)
}

// PasswordFor returns the plaintext password an account was created with. Test helper.
func (p *Provider) PasswordFor(uid string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	acc, ok := p.byUID[uid]
	return acc.password, ok
}

func (p *Provider) now() time.Time {
	if p.clock == nil {
		return time.Now().UTC()
	}
	return p.clock.Now().UTC()
}

func emailKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneAccount(a identity.Account) identity.Account {
	a.Email = cloneStringPtr(a.Email)
	a.PhoneNumber = cloneStringPtr(a.PhoneNumber)
	return a
}
