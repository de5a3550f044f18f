// Package metrics описывает счётчики Prometheus для платёжного потока.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics счётчики сервиса.
type Metrics struct {
	Reconciliations *prometheus.CounterVec
	Checkouts       *prometheus.CounterVec
	Extensions      *prometheus.CounterVec
}

// New регистрирует счётчики в reg. Для тестов передаётся prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Reconciliations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subscription_tracker",
			Name:      "reconciliations_total",
			Help:      "Checkout reconciliations by outcome.",
		}, []string{"outcome"}),
		Checkouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subscription_tracker",
			Name:      "checkouts_total",
			Help:      "Checkout session creations by payment type and result.",
		}, []string{"payment_type", "result"}),
		Extensions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subscription_tracker",
			Name:      "extensions_total",
			Help:      "Extend payments by whether the period was moved.",
		}, []string{"result"}),
	}
}
