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

package prometheus_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/redline/pkg/metrics/prometheus"
	"github.com/yorkie-team/redline/pkg/revision"
)

func TestMetrics(t *testing.T) {
	t.Run("counters test", func(t *testing.T) {
		metrics := prometheus.NewMetrics()
		metrics.AddTrackedEdit("insert")
		metrics.AddTrackedEdit("insert")
		metrics.AddRevisionCreated(revision.Insertion)
		metrics.AddRevisionResolved(revision.Insertion, revision.Rejected)
		metrics.AddStaleSelection()
		metrics.AddInvariantRepair()
		metrics.ObserveBulkResolution(3)

		expected := `
# HELP redline_document_tracked_edits_total The total count of edits intercepted while tracking is enabled.
# TYPE redline_document_tracked_edits_total counter
redline_document_tracked_edits_total{op="insert"} 2
# HELP redline_ledger_revisions_resolved_total The total count of revision records moved to a terminal status.
# TYPE redline_ledger_revisions_resolved_total counter
redline_ledger_revisions_resolved_total{kind="insertion",status="rejected"} 1
`
		assert.NoError(t, testutil.GatherAndCompare(
			metrics.Registry(),
			strings.NewReader(expected),
			"redline_document_tracked_edits_total",
			"redline_ledger_revisions_resolved_total",
		))

		count, err := testutil.GatherAndCount(metrics.Registry(), "redline_document_stale_selections_total")
		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("registries are independent test", func(t *testing.T) {
		first := prometheus.NewMetrics()
		second := prometheus.NewMetrics()
		first.AddInvariantRepair()

		const help = `
# HELP redline_document_invariant_repairs_total The total count of spans and records repaired after an invariant violation.
# TYPE redline_document_invariant_repairs_total counter
`
		assert.NoError(t, testutil.GatherAndCompare(
			first.Registry(),
			strings.NewReader(help+"redline_document_invariant_repairs_total 1\n"),
			"redline_document_invariant_repairs_total",
		))
		assert.NoError(t, testutil.GatherAndCompare(
			second.Registry(),
			strings.NewReader(help+"redline_document_invariant_repairs_total 0\n"),
			"redline_document_invariant_repairs_total",
		))
	})
}
