package dbconn

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "inquirydesk"
	subsystem = "db"
)

// Metrics represents Connection Manager metrics.
type Metrics struct {
	attempts *prometheus.CounterVec
	state    *prometheus.GaugeVec
	suspect  prometheus.Counter
}

// NewMetrics creates new Connection Manager metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "connect_attempts_total",
				Help:      "Total number of store connection attempts.",
			},
			[]string{"result"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "state",
				Help:      "Current Connection Manager state (1 for the active state).",
			},
			[]string{"state"},
		),
		suspect: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "suspect_errors_total",
				Help:      "Total number of store errors that looked like a dropped connection.",
			},
		),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.attempts.Describe(ch)
	m.state.Describe(ch)
	m.suspect.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.attempts.Collect(ch)
	m.state.Collect(ch)
	m.suspect.Collect(ch)
}

func (m *Metrics) attempt(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.attempts.WithLabelValues(result).Inc()
}

func (m *Metrics) setState(s State) {
	if m == nil {
		return
	}
	for _, name := range stateNames {
		v := 0.0
		if name == s.String() {
			v = 1
		}
		m.state.WithLabelValues(name).Set(v)
	}
}

func (m *Metrics) suspectError() {
	if m == nil {
		return
	}
	m.suspect.Inc()
}

// check interfaces
var (
	_ prometheus.Collector = (*Metrics)(nil)
)
