// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry of the service counters so tests can build
// as many as they like. Runtime collectors and the HTTP request histogram
// live in the default registry, filled by WAFFLE's router.
type Metrics struct {
	reg *prometheus.Registry

	TTSRequests *prometheus.CounterVec
	TTSLatency  prometheus.Histogram

	BotProxyRequests *prometheus.CounterVec
	LoginAttempts    *prometheus.CounterVec
	JobRuns          *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		TTSRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voicedesk_tts_requests_total",
			Help: "Text-to-speech calls by outcome",
		}, []string{"outcome"}),
		TTSLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicedesk_tts_request_duration_seconds",
			Help:    "Text-to-speech call latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		BotProxyRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voicedesk_bot_proxy_requests_total",
			Help: "Requests forwarded to the bot API by downstream status code",
		}, []string{"code"}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voicedesk_login_attempts_total",
			Help: "Login attempts by account type and outcome",
		}, []string{"user_type", "outcome"}),
		JobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voicedesk_job_runs_total",
			Help: "Background job runs by job name and outcome",
		}, []string{"job", "outcome"}),
	}
}

// Handler serves the service counters together with the default registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.Gatherers{m.reg, prometheus.DefaultGatherer}, promhttp.HandlerOpts{})
}

// Outcome maps an error to the "ok" / "error" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// The helpers below accept a nil receiver so handlers built in tests
// without a registry can call them unconditionally.

// Login counts one login attempt. outcome is ok, denied or limited.
func (m *Metrics) Login(userType, outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(userType, outcome).Inc()
}

// TTS records one synthesis call that started at start.
func (m *Metrics) TTS(start time.Time, err error) {
	if m == nil {
		return
	}
	m.TTSRequests.WithLabelValues(Outcome(err)).Inc()
	m.TTSLatency.Observe(time.Since(start).Seconds())
}

// BotProxy counts one forwarded request by downstream status; 0 means the
// request never got a response.
func (m *Metrics) BotProxy(status int) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.BotProxyRequests.WithLabelValues(code).Inc()
}

// Job counts one background job run. Its signature matches
// tasks.Scheduler.Observe.
func (m *Metrics) Job(name string, err error) {
	if m == nil {
		return
	}
	m.JobRuns.WithLabelValues(name, Outcome(err)).Inc()
}
