package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tidepool_api_requests_total",
		Help: "Total outbound API requests",
	}, []string{"endpoint", "code"})
	APIErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tidepool_api_errors_total",
		Help: "Total API error responses by kind",
	}, []string{"kind"})
	PagesLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tidepool_pages_loaded_total",
		Help: "Total timeline pages fetched",
	})
	PageLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tidepool_page_load_duration_seconds",
		Help:    "Timeline page load duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	StreamEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tidepool_stream_events_total",
		Help: "Total streaming events received by type",
	}, []string{"type"})
	StreamReconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tidepool_stream_reconnects_total",
		Help: "Total streaming reconnect attempts",
	})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tidepool_command_runs_total",
		Help: "Total CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tidepool_command_errors_total",
		Help: "Total CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(APIRequests, APIErrors, PagesLoaded, PageLoadDuration,
		StreamEvents, StreamReconnects, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("TIDEPOOL_METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// IncAPIRequest records one outbound request and its response code.
func IncAPIRequest(endpoint, code string) { APIRequests.WithLabelValues(endpoint, code).Inc() }

// IncAPIError records one API error response by taxonomy kind.
func IncAPIError(kind string) { APIErrors.WithLabelValues(kind).Inc() }

// ObservePageLoad records a completed page fetch and its duration.
func ObservePageLoad(start time.Time) {
	PagesLoaded.Inc()
	PageLoadDuration.Observe(time.Since(start).Seconds())
}

// IncStreamEvent records one delivered streaming event.
func IncStreamEvent(typ string) { StreamEvents.WithLabelValues(typ).Inc() }

// IncStreamReconnect records a reconnect attempt.
func IncStreamReconnect() { StreamReconnects.Inc() }

// IncCommandRun records one CLI command invocation.
func IncCommandRun(cmd string) { CommandRuns.WithLabelValues(cmd).Inc() }

// IncCommandError records one CLI command failure.
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
