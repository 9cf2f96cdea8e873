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

package document

import (
	gotime "time"

	"github.com/yorkie-team/redline/internal/logging"
	"github.com/yorkie-team/redline/pkg/ledger"
	"github.com/yorkie-team/redline/pkg/metrics/prometheus"
)

// Option configures a Document.
type Option func(*options)

type options struct {
	clock   func() gotime.Time
	logger  logging.Logger
	metrics *prometheus.Metrics
	ledger  *ledger.Ledger
}

// WithClock sets the clock used for the timestamps of spans and records.
func WithClock(clock func() gotime.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithLogger sets the logger of the document.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics of the document.
func WithMetrics(metrics *prometheus.Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WithLedger makes the document keep its records in the given ledger instead
// of a ledger of its own. The clock of the given ledger is left as is.
func WithLedger(l *ledger.Ledger) Option {
	return func(o *options) {
		o.ledger = l
	}
}
