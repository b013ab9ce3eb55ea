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

package sql

import (
	"testing"

	"pagedb/internal/storage"
)

func TestRenderTable(t *testing.T) {
	table := &storage.Table{
		Columns: []string{"id", "city"},
		Rows: []storage.Row{
			{"id": "1", "city": "Zürich"},
			{"id": "1234", "city": ""},
		},
	}
	want := "id    city  \n" +
		"----  ------\n" +
		"1     Zürich\n" +
		"1234        "
	if got := RenderTable(table); got != want {
		t.Errorf("RenderTable:\n%q\nwant\n%q", got, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := RenderTable(&storage.Table{Columns: []string{"a"}}); got != EmptyResult {
		t.Errorf("Expected %q, got %q", EmptyResult, got)
	}
	if got := RenderTable(nil); got != EmptyResult {
		t.Errorf("Expected %q, got %q", EmptyResult, got)
	}
	if got := RenderList(nil); got != EmptyResult {
		t.Errorf("Expected %q, got %q", EmptyResult, got)
	}
	if got := RenderList([]string{"a", "b"}); got != "a\nb" {
		t.Errorf("Unexpected list %q", got)
	}
}
