package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	memclock "github.com/vatelanka/waste-admin-api/internal/adapters/memory/clock"
	memdirectory "github.com/vatelanka/waste-admin-api/internal/adapters/memory/directory"
	memidempotency "github.com/vatelanka/waste-admin-api/internal/adapters/memory/idempotency"
	memidentity "github.com/vatelanka/waste-admin-api/internal/adapters/memory/identity"
	"github.com/vatelanka/waste-admin-api/internal/app/locations"
	"github.com/vatelanka/waste-admin-api/internal/app/onboarding"
	"github.com/vatelanka/waste-admin-api/internal/platform/health"
	"github.com/vatelanka/waste-admin-api/internal/platform/metrics"
)

const testSubject = "admin|test"

type testAPI struct {
	handler http.Handler
	metrics *metrics.Metrics
	health  *health.Checker
	idp     *memidentity.Provider
	idem    *memidempotency.Store
	clk     *memclock.ManualClock
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := memdirectory.NewStore()
	idp := memidentity.NewProvider(clk)
	m := metrics.New()
	checker := health.NewChecker(time.Second)
	idem := memidempotency.NewStore()

	onb := onboarding.NewService(store, idp, clk, onboarding.DefaultOptions(), zerolog.Nop()).WithMetrics(m)
	loc := locations.NewService(store, clk, zerolog.Nop())

	h := NewRouter(NewServer(onb, loc, checker), RouterOptions{
		AuthMiddleware: NewDevAuthMiddleware(testSubject),
		AllowedOrigins: []string{"https://vatelanka.lk"},
		Logger:         zerolog.Nop(),
		Metrics:        m,
		Idempotency:    idem,
		Clock:          clk,
	})
	return &testAPI{handler: h, metrics: m, health: checker, idp: idp, idem: idem, clk: clk}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) seedWard(t *testing.T) {
	t.Helper()
	rec := a.do(t, http.MethodPut, "/locations/Colombo/Colombo/Ward%201", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed ward: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

type envelope[T any] struct {
	Success   bool           `json:"success"`
	Data      T              `json:"data"`
	Error     string         `json:"error"`
	Code      string         `json:"code"`
	Details   map[string]any `json:"details"`
	RequestID string         `json:"requestId"`
}

type entityBody struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Password    string  `json:"password"`
	Name        string  `json:"name"`
	NationalID  string  `json:"nationalId"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
	Location    struct {
		MunicipalCouncil string `json:"municipalCouncil"`
		District         string `json:"district"`
		Ward             string `json:"ward"`
	} `json:"location"`
	LicensePlate       string `json:"licensePlate"`
	SupervisorID       string `json:"supervisorId"`
	Status             string `json:"status"`
	MustChangePassword bool   `json:"mustChangePassword"`
	CreatedBy          string `json:"createdBy"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v body=%s", err, rec.Body.String())
	}
	return out
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) envelope[any] {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status=%d want=%d body=%s", rec.Code, status, rec.Body.String())
	}
	env := decode[any](t, rec)
	if env.Success {
		t.Fatalf("expected success=false body=%s", rec.Body.String())
	}
	if env.Code != code {
		t.Fatalf("code=%q want=%q body=%s", env.Code, code, rec.Body.String())
	}
	return env
}

func supervisorBody() map[string]any {
	return map[string]any{
		"name":             "Nimal Perera",
		"nationalId":       "200012345678",
		"email":            "nimal@example.lk",
		"phoneNumber":      "071-234-5678",
		"municipalCouncil": "Colombo",
		"district":         "Colombo",
		"ward":             "Ward 1",
	}
}
