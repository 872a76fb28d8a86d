package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vatelanka/waste-admin-api/internal/domain"
)

func TestMetrics_CountersAndExposition(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveOnboarding(domain.KindSupervisor, "created")
	m.ObserveOnboarding(domain.KindSupervisor, "created")
	m.ObserveOnboarding(domain.KindDriver, "rejected")
	m.NotificationFailed(domain.KindDriver)
	m.ObserveRequest("/supervisors", http.MethodPost, 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Onboardings.WithLabelValues("supervisor", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Onboardings.WithLabelValues("driver", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationFailures.WithLabelValues("driver")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `waste_admin_onboardings_total{kind="supervisor",outcome="created"} 2`), body)
	assert.Contains(t, body, "waste_admin_http_request_duration_seconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}
