package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vatelanka/waste-admin-api/internal/adapters/httpapi"
	memclock "github.com/vatelanka/waste-admin-api/internal/adapters/memory/clock"
	memdirectory "github.com/vatelanka/waste-admin-api/internal/adapters/memory/directory"
	memidempotency "github.com/vatelanka/waste-admin-api/internal/adapters/memory/idempotency"
	memidentity "github.com/vatelanka/waste-admin-api/internal/adapters/memory/identity"
	"github.com/vatelanka/waste-admin-api/internal/app/locations"
	"github.com/vatelanka/waste-admin-api/internal/app/onboarding"
	clockport "github.com/vatelanka/waste-admin-api/internal/ports/out/clock"
	directoryport "github.com/vatelanka/waste-admin-api/internal/ports/out/directory"
	idempotencyport "github.com/vatelanka/waste-admin-api/internal/ports/out/idempotency"
	identityport "github.com/vatelanka/waste-admin-api/internal/ports/out/identity"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

type adapters struct {
	store directoryport.Store
	idp   identityport.Provider
	idem  idempotencyport.Store
}

// backendFactories holds the backends compiled into this test binary. The
// Postgres factory registers itself under the integration build tag.
var backendFactories = map[backend]func(t *testing.T, clk clockport.Clock) adapters{
	backendMemory: func(_ *testing.T, clk clockport.Clock) adapters {
		return adapters{
			store: memdirectory.NewStore(),
			idp:   memidentity.NewProvider(clk),
			idem:  memidempotency.NewStore(),
		}
	},
}

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	var want []backend
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		want = []backend{backendMemory}
	case "postgres":
		want = []backend{backendPostgres}
	case "all":
		want = []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
	}
	for _, b := range want {
		if _, ok := backendFactories[b]; !ok {
			t.Skipf("backend %s not compiled in (build with -tags integration)", b)
		}
	}
	return want
}

type testServer struct {
	baseURL string
	client  *http.Client
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	a := backendFactories[b](t, clk)

	onb := onboarding.NewService(a.store, a.idp, clk, onboarding.DefaultOptions(), zerolog.Nop())
	loc := locations.NewService(a.store, clk, zerolog.Nop())

	// Integration tests use the dev auth middleware to stay fully local and deterministic.
	// An empty default subject means requests MUST provide X-Debug-Subject.
	handler := httpapi.NewRouter(httpapi.NewServer(onb, loc, nil), httpapi.RouterOptions{
		AuthMiddleware: httpapi.NewDevAuthMiddleware(""),
		Logger:         zerolog.Nop(),
		Idempotency:    a.idem,
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, subject string, body any, hdr ...string) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if subject != "" {
		req.Header.Set("X-Debug-Subject", subject)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Success || got.Code != wantCode {
		t.Fatalf("code=%q want=%q body=%s", got.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
