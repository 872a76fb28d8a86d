package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clockport "github.com/vatelanka/waste-admin-api/internal/ports/out/clock"
)

func TestOnboardSupervisor_CreatesAndLooksUp(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seedWard(t)

	rec := api.do(t, http.MethodPost, "/supervisors", supervisorBody(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[entityBody](t, rec)
	require.True(t, created.Success)
	assert.True(t, strings.HasPrefix(created.Data.ID, "SUP"))
	assert.NotEmpty(t, created.Data.Password)
	assert.Equal(t, "active", created.Data.Status)
	assert.True(t, created.Data.MustChangePassword)
	require.NotNil(t, created.Data.PhoneNumber)
	assert.Equal(t, "+94712345678", *created.Data.PhoneNumber)
	assert.Equal(t, "colombo", created.Data.Location.MunicipalCouncil)
	assert.Equal(t, "Ward 1", created.Data.Location.Ward)

	rec = api.do(t, http.MethodGet, "/supervisors/"+created.Data.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[entityBody](t, rec)
	assert.Equal(t, created.Data.ID, got.Data.ID)
	assert.Equal(t, "active", got.Data.Status)
	assert.Empty(t, got.Data.Password)
	assert.Equal(t, testSubject, got.Data.CreatedBy)

	// A supervisor id is not a driver id.
	rec = api.do(t, http.MethodGet, "/drivers/"+created.Data.ID, nil, nil)
	requireError(t, rec, http.StatusNotFound, "ENTITY_NOT_FOUND")

	assert.Equal(t, 1.0, testutil.ToFloat64(api.metrics.Onboardings.WithLabelValues("supervisor", "created")))
}

func TestOnboardDriver_AcceptsLegacyFieldNames(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seedWard(t)

	rec := api.do(t, http.MethodPost, "/supervisors", supervisorBody(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sup := decode[entityBody](t, rec)

	rec = api.do(t, http.MethodPost, "/drivers", map[string]any{
		"driverName":       "Kamal Silva",
		"nic":              "199876543210",
		"licensePlate":     "WP AB-1234",
		"supervisorId":     sup.Data.ID,
		"municipalCouncil": "Colombo",
		"district":         "Colombo",
		"ward":             "Ward 1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	drv := decode[entityBody](t, rec)
	assert.True(t, strings.HasPrefix(drv.Data.ID, "TRUCK"))
	assert.Equal(t, "Kamal Silva", drv.Data.Name)
	assert.Equal(t, "199876543210", drv.Data.NationalID)
	assert.Equal(t, sup.Data.ID, drv.Data.SupervisorID)
	assert.Equal(t, "WP AB-1234", drv.Data.LicensePlate)
	assert.Nil(t, drv.Data.Email)
}

func TestOnboard_RequestErrors(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	t.Run("invalid json", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/supervisors", "{", nil)
		env := requireError(t, rec, http.StatusBadRequest, CodeInvalidJSON)
		assert.NotEmpty(t, env.RequestID)
	})

	t.Run("missing fields", func(t *testing.T) {
		body := supervisorBody()
		delete(body, "nationalId")
		rec := api.do(t, http.MethodPost, "/supervisors", body, nil)
		env := requireError(t, rec, http.StatusBadRequest, "MISSING_FIELDS")
		assert.Equal(t, []any{"nationalId"}, env.Details["missing"])
	})

	t.Run("ward does not exist", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/supervisors", supervisorBody(), nil)
		requireError(t, rec, http.StatusNotFound, "LOCATION_NOT_FOUND")
		assert.Equal(t, 0, api.idp.Count())
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := api.do(t, http.MethodDelete, "/supervisors", nil, nil)
		env := requireError(t, rec, http.StatusMethodNotAllowed, CodeMethodNotAllowed)
		assert.Equal(t, "Method not allowed", env.Error)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/collectors", nil, nil)
		requireError(t, rec, http.StatusNotFound, CodeNotFound)
	})

	t.Run("invalid ward segment", func(t *testing.T) {
		rec := api.do(t, http.MethodPut, "/locations/Colombo/Colombo/a%2Fb", nil, nil)
		requireError(t, rec, http.StatusBadRequest, "INVALID_LOCATION")
	})
}

func TestOnboard_DuplicateNameInWard(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seedWard(t)

	rec := api.do(t, http.MethodPost, "/supervisors", supervisorBody(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	second := supervisorBody()
	second["nationalId"] = "200112345678"
	second["email"] = "nimal2@example.lk"
	second["phoneNumber"] = "0771234567"
	rec = api.do(t, http.MethodPost, "/supervisors", second, nil)
	env := requireError(t, rec, http.StatusBadRequest, "NAME_TAKEN")
	assert.Equal(t, "ward", env.Details["scope"])
}

func TestIdempotencyKey_ReplaysAndRejectsReuse(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seedWard(t)
	hdr := map[string]string{"Idempotency-Key": "k-1"}

	first := api.do(t, http.MethodPost, "/supervisors", supervisorBody(), hdr)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	replay := api.do(t, http.MethodPost, "/supervisors", supervisorBody(), hdr)
	require.Equal(t, http.StatusOK, replay.Code, replay.Body.String())
	assert.Equal(t, "true", replay.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, 1, api.idp.Count())

	other := supervisorBody()
	other["name"] = "Sunil Perera"
	rec := api.do(t, http.MethodPost, "/supervisors", other, hdr)
	requireError(t, rec, http.StatusConflict, CodeIdempotencyKeyReuse)

	// Without a key the same body is a new request and hits the uniqueness guard.
	rec = api.do(t, http.MethodPost, "/supervisors", supervisorBody(), nil)
	requireError(t, rec, http.StatusBadRequest, "NATIONAL_ID_TAKEN")
}

func TestIdempotencyKey_RejectionIsNotReplayed(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	hdr := map[string]string{"Idempotency-Key": "k-2"}

	rec := api.do(t, http.MethodPost, "/supervisors", supervisorBody(), hdr)
	requireError(t, rec, http.StatusNotFound, "LOCATION_NOT_FOUND")

	api.seedWard(t)
	rec = api.do(t, http.MethodPost, "/supervisors", supervisorBody(), hdr)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Idempotent-Replayed"))
}

func TestIdempotencyKey_RejectedBodyCanBeCorrected(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seedWard(t)
	hdr := map[string]string{"Idempotency-Key": "k-9"}

	bad := supervisorBody()
	bad["nationalId"] = "12345"
	rec := api.do(t, http.MethodPost, "/supervisors", bad, hdr)
	requireError(t, rec, http.StatusBadRequest, "INVALID_NATIONAL_ID")

	rec = api.do(t, http.MethodPost, "/supervisors", supervisorBody(), hdr)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Idempotent-Replayed"))

	// Once a body has succeeded the key is bound to it.
	rec = api.do(t, http.MethodPost, "/supervisors", bad, hdr)
	requireError(t, rec, http.StatusConflict, CodeIdempotencyKeyReuse)
}

func TestIdempotencyKey_RecordsUseInjectedClock(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seedWard(t)
	hdr := map[string]string{"Idempotency-Key": "k-10"}
	ctx := context.Background()

	rec := api.do(t, http.MethodPost, "/supervisors", supervisorBody(), hdr)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	n, err := api.idem.Purge(ctx, clockport.Cutoff(api.clk, 24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	api.clk.Advance(48 * time.Hour)
	n, err = api.idem.Purge(ctx, clockport.Cutoff(api.clk, 24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// With the records gone the same request runs again and meets the uniqueness guard.
	rec = api.do(t, http.MethodPost, "/supervisors", supervisorBody(), hdr)
	requireError(t, rec, http.StatusBadRequest, "NATIONAL_ID_TAKEN")
}

func TestCORS(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	preflight := map[string]string{
		"Origin":                         "https://vatelanka.lk",
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "Content-Type, Idempotency-Key",
	}
	rec := api.do(t, http.MethodOptions, "/supervisors", nil, preflight)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "https://vatelanka.lk", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")

	preflight["Origin"] = "https://evil.example"
	rec = api.do(t, http.MethodOptions, "/supervisors", nil, preflight)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = api.do(t, http.MethodGet, "/healthz", nil, map[string]string{"Origin": "https://vatelanka.lk"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://vatelanka.lk", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = api.do(t, http.MethodGet, "/healthz", nil, map[string]string{"Origin": "https://evil.example"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthAndReadiness(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = api.do(t, http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	api.health.Register("redis", func(context.Context) error { return errors.New("connection refused") })
	rec = api.do(t, http.MethodGet, "/readyz", nil, nil)
	env := requireError(t, rec, http.StatusServiceUnavailable, CodeNotReady)
	assert.Equal(t, "connection refused", env.Details["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	_ = api.do(t, http.MethodGet, "/healthz", nil, nil)

	rec := api.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `waste_admin_http_request_duration_seconds_count{method="GET",route="/healthz",status="200"} 1`)
}
