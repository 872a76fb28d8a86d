package onboarding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	memclock "github.com/vatelanka/waste-admin-api/internal/adapters/memory/clock"
	memdirectory "github.com/vatelanka/waste-admin-api/internal/adapters/memory/directory"
	memidentity "github.com/vatelanka/waste-admin-api/internal/adapters/memory/identity"
	"github.com/vatelanka/waste-admin-api/internal/domain"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/directory"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/identity"
)

var (
	testNow   = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	testActor = domain.SubjectID("admin-1")
	testWard  = domain.Location{Council: "colombo", District: "Colombo", Ward: "Ward 1"}
)

// countingStore counts mutating calls on the wrapped store.
type countingStore struct {
	directory.Store
	writes atomic.Int32
}

func (s *countingStore) Set(ctx context.Context, p directory.Path, data map[string]any) error {
	s.writes.Add(1)
	return s.Store.Set(ctx, p, data)
}

func (s *countingStore) CreateAll(ctx context.Context, docs []directory.Document) error {
	s.writes.Add(1)
	return s.Store.CreateAll(ctx, docs)
}

// barrierStore holds every CreateAll until n callers have arrived, forcing concurrent
// requests past their uniqueness checks before any of them writes.
type barrierStore struct {
	directory.Store
	wg *sync.WaitGroup
}

func newBarrierStore(inner directory.Store, n int) *barrierStore {
	wg := &sync.WaitGroup{}
	wg.Add(n)
	return &barrierStore{Store: inner, wg: wg}
}

func (s *barrierStore) CreateAll(ctx context.Context, docs []directory.Document) error {
	s.wg.Done()
	s.wg.Wait()
	return s.Store.CreateAll(ctx, docs)
}

type failingWriteStore struct {
	directory.Store
}

func (failingWriteStore) CreateAll(context.Context, []directory.Document) error {
	return errors.New("disk full")
}

// recordingProvider remembers every account request.
type recordingProvider struct {
	identity.Provider
	mu       sync.Mutex
	requests []identity.NewAccount
	failWith error
	// beforeFail runs just before failWith is returned.
	beforeFail func()
}

func (p *recordingProvider) Create(ctx context.Context, a identity.NewAccount) (identity.Account, error) {
	p.mu.Lock()
	p.requests = append(p.requests, a)
	p.mu.Unlock()
	if p.failWith != nil {
		if p.beforeFail != nil {
			p.beforeFail()
		}
		return identity.Account{}, p.failWith
	}
	return p.Provider.Create(ctx, a)
}

func (p *recordingProvider) last(t *testing.T) identity.NewAccount {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.requests)
	return p.requests[len(p.requests)-1]
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	notify   int
}

func (m *fakeMetrics) ObserveOnboarding(kind domain.Kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[string(kind)+"/"+outcome]++
}

func (m *fakeMetrics) NotificationFailed(domain.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify++
}

type fixture struct {
	mem   *memdirectory.Store
	store *countingStore
	idp   *memidentity.Provider
	svc   *Service
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	mem := memdirectory.NewStore()
	store := &countingStore{Store: mem}
	clk := memclock.NewManualClock(testNow)
	idp := memidentity.NewProvider(clk)
	return &fixture{
		mem:   mem,
		store: store,
		idp:   idp,
		svc:   NewService(store, idp, clk, opts, zerolog.Nop()),
	}
}

func (f *fixture) seedWard(t *testing.T, loc domain.Location) {
	t.Helper()
	require.NoError(t, f.mem.Set(context.Background(), WardPath(loc), map[string]any{"ward": loc.Ward}))
}

func (f *fixture) onboardSupervisor(t *testing.T, in Input) Result {
	t.Helper()
	res, err := f.svc.Onboard(context.Background(), domain.KindSupervisor, testActor, in)
	require.NoError(t, err)
	return res
}

func supervisorInput() Input {
	return Input{
		Name:             "Nimal Perera",
		NationalID:       "200012345678",
		MunicipalCouncil: "Colombo",
		District:         "Colombo",
		Ward:             "Ward 1",
	}
}

func driverInput(supervisorID domain.EntityID) Input {
	return Input{
		Name:             "Sunil Silva",
		NationalID:       "199876543210",
		LicensePlate:     "WP AB-1234",
		SupervisorID:     string(supervisorID),
		MunicipalCouncil: "colombo",
		District:         "Colombo",
		Ward:             "Ward 1",
	}
}

func requireAppError(t *testing.T, err error, status int, code string) *Error {
	t.Helper()
	require.Error(t, err)
	var ae *Error
	require.Truef(t, errors.As(err, &ae), "err=%v (type=%T), want *Error", err, err)
	require.Equal(t, code, ae.Code, "message: %s", ae.Message)
	require.Equal(t, status, ae.Status)
	return ae
}

func strPtr(s string) *string { return &s }
