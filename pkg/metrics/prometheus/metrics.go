/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package prometheus provides the Prometheus metrics of tracked changes.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yorkie-team/redline/internal/version"
	"github.com/yorkie-team/redline/pkg/revision"
)

const (
	namespace   = "redline"
	opLabel     = "op"
	kindLabel   = "kind"
	statusLabel = "status"
)

// Metrics manages the metric information of the track-changes engine. Each
// instance owns its registry, so several documents may live in one process.
type Metrics struct {
	registry *prometheus.Registry

	engineVersion *prometheus.GaugeVec

	trackedEditsTotal      *prometheus.CounterVec
	revisionsCreatedTotal  *prometheus.CounterVec
	revisionsResolvedTotal *prometheus.CounterVec
	staleSelectionsTotal   prometheus.Counter
	invariantRepairsTotal  prometheus.Counter
	bulkResolutionSize     prometheus.Histogram
}

// NewMetrics creates a new instance of Metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	metrics := &Metrics{
		registry: reg,
		engineVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "version",
			Help:      "Which version is running. 1 for 'engine_version' label with current version.",
		}, []string{"engine_version"}),
		trackedEditsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "document",
			Name:      "tracked_edits_total",
			Help:      "The total count of edits intercepted while tracking is enabled.",
		}, []string{opLabel}),
		revisionsCreatedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "revisions_created_total",
			Help:      "The total count of revision records created or reconstructed.",
		}, []string{kindLabel}),
		revisionsResolvedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "revisions_resolved_total",
			Help:      "The total count of revision records moved to a terminal status.",
		}, []string{kindLabel, statusLabel}),
		staleSelectionsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "document",
			Name:      "stale_selections_total",
			Help:      "The total count of edits ignored because the selection was stale.",
		}),
		invariantRepairsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "document",
			Name:      "invariant_repairs_total",
			Help:      "The total count of spans and records repaired after an invariant violation.",
		}),
		bulkResolutionSize: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "document",
			Name:      "bulk_resolution_size",
			Help:      "The number of revisions resolved by one bulk accept or reject.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	metrics.engineVersion.With(prometheus.Labels{
		"engine_version": version.Version,
	}).Set(1)

	return metrics
}

// AddTrackedEdit adds the number of tracked edits of the given operation.
func (m *Metrics) AddTrackedEdit(op string) {
	m.trackedEditsTotal.With(prometheus.Labels{
		opLabel: op,
	}).Inc()
}

// AddRevisionCreated adds the number of created revisions.
func (m *Metrics) AddRevisionCreated(kind revision.Kind) {
	m.revisionsCreatedTotal.With(prometheus.Labels{
		kindLabel: string(kind),
	}).Inc()
}

// AddRevisionResolved adds the number of resolved revisions.
func (m *Metrics) AddRevisionResolved(kind revision.Kind, status revision.Status) {
	m.revisionsResolvedTotal.With(prometheus.Labels{
		kindLabel:   string(kind),
		statusLabel: string(status),
	}).Inc()
}

// AddStaleSelection adds the number of edits ignored for a stale selection.
func (m *Metrics) AddStaleSelection() {
	m.staleSelectionsTotal.Inc()
}

// AddInvariantRepair adds the number of invariant repairs.
func (m *Metrics) AddInvariantRepair() {
	m.invariantRepairsTotal.Inc()
}

// ObserveBulkResolution records the size of a bulk resolution.
func (m *Metrics) ObserveBulkResolution(size int) {
	m.bulkResolutionSize.Observe(float64(size))
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
