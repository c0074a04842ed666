package http

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Document serving outcomes.
const (
	resultServed      = "served"
	resultNotModified = "not_modified"
	resultNotFound    = "not_found"
)

// DocumentMetrics counts document requests by outcome.
type DocumentMetrics struct {
	Served *prometheus.CounterVec
	Loaded prometheus.Gauge
}

// NewDocumentMetrics registers the document collectors.
func NewDocumentMetrics(namespace string, reg prometheus.Registerer) (*DocumentMetrics, error) {
	m := &DocumentMetrics{
		Served: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_served_total",
			Help:      "Pricing document requests by document and outcome.",
		}, []string{"document", "result"}),
		Loaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "documents_loaded",
			Help:      "Number of pricing documents currently served.",
		}),
	}

	for _, c := range []prometheus.Collector{m.Served, m.Loaded} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, err
			}
			switch existing := already.ExistingCollector.(type) {
			case *prometheus.CounterVec:
				m.Served = existing
			case prometheus.Gauge:
				m.Loaded = existing
			}
		}
	}

	return m, nil
}

func (m *DocumentMetrics) observe(document, result string) {
	if m == nil {
		return
	}
	m.Served.WithLabelValues(document, result).Inc()
}
