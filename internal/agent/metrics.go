package agent

import "github.com/prometheus/client_golang/prometheus"

var _ prometheus.Collector = (*Metrics)(nil)

type Metrics struct {
	Attempts       *prometheus.CounterVec
	FailedAttempts *prometheus.CounterVec
	Completions    *prometheus.CounterVec
	Exhausted      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chronicler",
			Subsystem: "agent",
			Name:      "attempts_total",
			Help:      "Total number of chat completion requests sent",
		}, []string{"agent"}),
		FailedAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chronicler",
			Subsystem: "agent",
			Name:      "failed_attempts_total",
			Help:      "Total number of chat completion requests that failed",
		}, []string{"agent"}),
		Completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chronicler",
			Subsystem: "agent",
			Name:      "completions_total",
			Help:      "Total number of calls that produced a response",
		}, []string{"agent"}),
		Exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chronicler",
			Subsystem: "agent",
			Name:      "exhausted_total",
			Help:      "Total number of calls that failed after using all retries",
		}, []string{"agent"}),
	}
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(c chan<- prometheus.Metric) {
	m.Attempts.Collect(c)
	m.FailedAttempts.Collect(c)
	m.Completions.Collect(c)
	m.Exhausted.Collect(c)
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(d chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(m, d)
}
