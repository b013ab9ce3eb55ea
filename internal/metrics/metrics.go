/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
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

/*
Package metrics counts the statements a PageDB shell has executed.

METRIC CATEGORIES:
==================
- Statements: executed (total, by type: SELECT, INSERT, CREATE TABLE, ...)
- Failures: statements that returned an error, parse errors included
- Latency: average execution time
- Result cache: hits, misses, entries (when a cache is attached)

OUTPUT FORMAT:
==============
WriteText renders the Prometheus text format. The shell prints it for the
"stats" command.

	pagedb_statements_total 42
	pagedb_statements_by_type_total{type="SELECT"} 30
	pagedb_statements_failed_total 2
	pagedb_statement_latency_avg_microseconds 118.50
*/
package metrics

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"pagedb/internal/cache"
)

// Metrics holds the statement counters of one shell.
type Metrics struct {
	StatementsTotal  atomic.Uint64
	StatementsFailed atomic.Uint64

	// Latency in microseconds
	LatencySum   atomic.Uint64
	LatencyCount atomic.Uint64

	mu     sync.Mutex
	byType map[string]uint64

	cache CacheStats
}

// CacheStats is implemented by *cache.ResultCache.
type CacheStats interface {
	Stats() cache.Stats
}

// New creates an empty Metrics.
func New() *Metrics {
	return &Metrics{byType: make(map[string]uint64)}
}

// AttachCache includes the result cache counters in WriteText.
func (m *Metrics) AttachCache(c CacheStats) {
	m.cache = c
}

// RecordStatement records one executed statement of the given type.
func (m *Metrics) RecordStatement(stmtType string, latency time.Duration, failed bool) {
	m.StatementsTotal.Add(1)
	m.LatencySum.Add(uint64(latency.Microseconds()))
	m.LatencyCount.Add(1)
	if failed {
		m.StatementsFailed.Add(1)
	}

	m.mu.Lock()
	m.byType[stmtType]++
	m.mu.Unlock()
}

// ByType returns a copy of the per-type counters.
func (m *Metrics) ByType() map[string]uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uint64, len(m.byType))
	for k, v := range m.byType {
		out[k] = v
	}
	return out
}

// AverageLatency returns the average statement latency in microseconds.
func (m *Metrics) AverageLatency() float64 {
	count := m.LatencyCount.Load()
	if count == 0 {
		return 0
	}
	return float64(m.LatencySum.Load()) / float64(count)
}

// WriteText writes all metrics in Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) {
	fmt.Fprintf(w, "# HELP pagedb_statements_total Total statements executed\n")
	fmt.Fprintf(w, "# TYPE pagedb_statements_total counter\n")
	fmt.Fprintf(w, "pagedb_statements_total %d\n", m.StatementsTotal.Load())

	byType := m.ByType()
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	fmt.Fprintf(w, "# HELP pagedb_statements_by_type_total Statements by type\n")
	fmt.Fprintf(w, "# TYPE pagedb_statements_by_type_total counter\n")
	for _, t := range types {
		fmt.Fprintf(w, "pagedb_statements_by_type_total{type=%q} %d\n", t, byType[t])
	}

	fmt.Fprintf(w, "# HELP pagedb_statements_failed_total Failed statements\n")
	fmt.Fprintf(w, "# TYPE pagedb_statements_failed_total counter\n")
	fmt.Fprintf(w, "pagedb_statements_failed_total %d\n", m.StatementsFailed.Load())

	fmt.Fprintf(w, "# HELP pagedb_statement_latency_avg_microseconds Average statement latency\n")
	fmt.Fprintf(w, "# TYPE pagedb_statement_latency_avg_microseconds gauge\n")
	fmt.Fprintf(w, "pagedb_statement_latency_avg_microseconds %.2f\n", m.AverageLatency())

	if m.cache == nil {
		return
	}
	s := m.cache.Stats()
	fmt.Fprintf(w, "# HELP pagedb_result_cache_hits_total Result cache hits\n")
	fmt.Fprintf(w, "# TYPE pagedb_result_cache_hits_total counter\n")
	fmt.Fprintf(w, "pagedb_result_cache_hits_total %d\n", s.Hits)

	fmt.Fprintf(w, "# HELP pagedb_result_cache_misses_total Result cache misses\n")
	fmt.Fprintf(w, "# TYPE pagedb_result_cache_misses_total counter\n")
	fmt.Fprintf(w, "pagedb_result_cache_misses_total %d\n", s.Misses)

	fmt.Fprintf(w, "# HELP pagedb_result_cache_entries Cached results\n")
	fmt.Fprintf(w, "# TYPE pagedb_result_cache_entries gauge\n")
	fmt.Fprintf(w, "pagedb_result_cache_entries %d\n", s.Entries)
}
