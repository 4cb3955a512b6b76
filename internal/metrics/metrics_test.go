package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsExposure(t *testing.T) {
	IncAPIRequest("/api/v1/timelines/home", "200")
	IncAPIError("unauthorized")
	ObservePageLoad(time.Now().Add(-150 * time.Millisecond))
	IncStreamEvent("update")
	IncStreamReconnect()
	IncCommandRun("timeline")
	IncCommandError("timeline")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"tidepool_api_requests_total",
		"tidepool_api_errors_total",
		"tidepool_pages_loaded_total",
		"tidepool_page_load_duration_seconds",
		"tidepool_stream_events_total",
		"tidepool_stream_reconnects_total",
		"tidepool_command_runs_total",
		"tidepool_command_errors_total",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}
