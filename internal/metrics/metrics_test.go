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

package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"pagedb/internal/cache"
)

func TestRecordStatement(t *testing.T) {
	m := New()
	m.RecordStatement("SELECT", 100*time.Microsecond, false)
	m.RecordStatement("SELECT", 300*time.Microsecond, false)
	m.RecordStatement("INSERT", 200*time.Microsecond, true)

	if got := m.StatementsTotal.Load(); got != 3 {
		t.Errorf("Expected 3 statements, got %d", got)
	}
	if got := m.StatementsFailed.Load(); got != 1 {
		t.Errorf("Expected 1 failure, got %d", got)
	}
	if got := m.ByType()["SELECT"]; got != 2 {
		t.Errorf("Expected 2 SELECTs, got %d", got)
	}
	if got := m.AverageLatency(); got != 200 {
		t.Errorf("Expected average 200us, got %f", got)
	}
}

func TestAverageLatencyEmpty(t *testing.T) {
	if got := New().AverageLatency(); got != 0 {
		t.Errorf("Expected 0, got %f", got)
	}
}

func TestWriteText(t *testing.T) {
	m := New()
	m.RecordStatement("UPDATE", time.Millisecond, false)
	m.RecordStatement("CREATE TABLE", time.Millisecond, false)

	var buf bytes.Buffer
	m.WriteText(&buf)
	out := buf.String()

	for _, want := range []string{
		"pagedb_statements_total 2\n",
		"pagedb_statements_by_type_total{type=\"CREATE TABLE\"} 1\n",
		"pagedb_statements_by_type_total{type=\"UPDATE\"} 1\n",
		"pagedb_statements_failed_total 0\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "CREATE TABLE") > strings.Index(out, "\"UPDATE\"") {
		t.Error("Expected types sorted by name")
	}
	if strings.Contains(out, "result_cache") {
		t.Error("Expected no cache metrics without an attached cache")
	}
}

func TestWriteTextWithCache(t *testing.T) {
	rc := cache.New(cache.Config{MaxEntries: 4, TTL: time.Minute})
	rc.Set("k", "v", nil)
	rc.Get("k")

	m := New()
	m.AttachCache(rc)

	var buf bytes.Buffer
	m.WriteText(&buf)
	out := buf.String()
	if !strings.Contains(out, "pagedb_result_cache_hits_total 1\n") {
		t.Errorf("Expected cache hits in:\n%s", out)
	}
	if !strings.Contains(out, "pagedb_result_cache_entries 1\n") {
		t.Errorf("Expected cache entries in:\n%s", out)
	}
}
