// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package checker

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the pipeline's worklist sizes and per-component durations
// on a Prometheus registry (spec.md's ADDED ambient stack: "Pipeline metrics",
// modeled on cmd/cie/index.go's --metrics-addr HTTP listener).
type Metrics struct {
	WorklistSize     *prometheus.GaugeVec
	ComponentSeconds *prometheus.HistogramVec
	ComponentRuns    *prometheus.CounterVec
}

// NewMetrics registers a fresh set of collectors on reg (use
// prometheus.NewRegistry() in tests to avoid the global default registry).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WorklistSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "verieasy",
			Name:      "worklist_size",
			Help:      "Number of functions currently in each checker worklist.",
		}, []string{"worklist"}),
		ComponentSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "verieasy",
			Name:      "component_duration_seconds",
			Help:      "Wall-clock duration of each component's Check invocation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"component"}),
		ComponentRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "verieasy",
			Name:      "component_runs_total",
			Help:      "Number of times each component has been invoked.",
		}, []string{"component", "outcome"}),
	}
	reg.MustRegister(m.WorklistSize, m.ComponentSeconds, m.ComponentRuns)
	return m
}

// Observe snapshots st's worklist sizes into the gauges.
func (m *Metrics) Observe(st *CheckerState) {
	if m == nil {
		return
	}
	m.WorklistSize.WithLabelValues("under_checking").Set(float64(len(st.UnderChecking)))
	m.WorklistSize.WithLabelValues("verified").Set(float64(len(st.Verified)))
	m.WorklistSize.WithLabelValues("tested").Set(float64(len(st.Tested)))
	m.WorklistSize.WithLabelValues("failed").Set(float64(len(st.Failed)))
}

// timeComponent records a component invocation's duration and outcome.
func (m *Metrics) timeComponent(name string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.ComponentSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ComponentRuns.WithLabelValues(name, outcome).Inc()
}

// Handler returns the HTTP handler to mount at /metrics.
func (m *Metrics) Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
