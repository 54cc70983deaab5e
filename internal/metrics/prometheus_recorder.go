package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pomobar"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	sessions      *prom.CounterVec
	commands      *prom.CounterVec
	remaining     prom.Gauge
	notifications *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	recorder := &PrometheusRecorder{
		sessions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Sessions that counted down to zero, by the mode that ended",
		}, []string{"mode"}),
		commands: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "User commands handled by the controller",
		}, []string{"command"}),
		remaining: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "remaining_seconds",
			Help:      "Seconds left in the current session",
		}),
		notifications: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Session-complete notifications by result",
		}, []string{"result"}),
	}
	reg.MustRegister(recorder.sessions, recorder.commands, recorder.remaining, recorder.notifications)
	return recorder
}

func (p *PrometheusRecorder) IncSessionCompleted(mode string) {
	if p == nil {
		return
	}
	p.sessions.WithLabelValues(mode).Inc()
}

func (p *PrometheusRecorder) IncCommand(command string) {
	if p == nil {
		return
	}
	p.commands.WithLabelValues(command).Inc()
}

func (p *PrometheusRecorder) SetRemainingSeconds(seconds int) {
	if p == nil {
		return
	}
	p.remaining.Set(float64(seconds))
}

func (p *PrometheusRecorder) IncNotification(result NotificationResult) {
	if p == nil {
		return
	}
	p.notifications.WithLabelValues(string(result)).Inc()
}

// HTTPHandler returns an http.Handler that serves the metrics in gatherer.
func HTTPHandler(gatherer prom.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prom.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
