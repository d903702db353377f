// Package metrics counts store activity with Prometheus collectors.
//
// Collectors live on a private registry so several stores (tests, the
// scenario harness) can coexist in one process. There is no HTTP endpoint;
// WriteText renders the text exposition format for the CLI.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/roach88/todoflux/internal/ir"
)

// Metrics holds the store collectors.
type Metrics struct {
	registry *prometheus.Registry

	// Actions counts submits by action type and outcome.
	Actions *prometheus.CounterVec

	// Items is the collection size after the latest submit.
	Items prometheus.Gauge
}

// New creates collectors registered on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoflux_actions_total",
				Help: "Total number of submitted actions",
			},
			[]string{"type", "outcome"},
		),
		Items: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "todoflux_items",
			Help: "Number of items in the collection",
		}),
	}
	m.registry.MustRegister(m.Actions, m.Items)
	return m
}

// UnknownTypeLabel is the type label for action types the engine does not
// recognize. Scripts may submit any label; only known ones become series.
const UnknownTypeLabel = "unknown"

// ObserveSubmit records one submit.
func (m *Metrics) ObserveSubmit(actionType ir.ActionType, outcome string, items int) {
	m.Actions.WithLabelValues(typeLabel(actionType), outcome).Inc()
	m.Items.Set(float64(items))
}

func typeLabel(t ir.ActionType) string {
	if t.IsKnown() {
		return string(t)
	}
	return UnknownTypeLabel
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteText writes every metric family in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
