package api

import (
	// External Packages
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	callbacks *prometheus.CounterVec
}

func newMetrics(registry *prometheus.Registry) *metrics {
	m := &metrics{
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tanda",
			Name:      "callbacks_total",
			Help:      "Result callbacks received, by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	if registry != nil {
		registry.MustRegister(m.callbacks)
	}
	return m
}

func (m *metrics) observe(kind, outcome string) {
	m.callbacks.WithLabelValues(kind, outcome).Inc()
}
