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
	"fmt"
	"strings"
	"unicode/utf8"

	"pagedb/internal/storage"
)

// EmptyResult is printed in place of a table with no rows.
const EmptyResult = "(0 rows)"

// minColumnWidth is the narrowest a rendered column may be.
const minColumnWidth = 3

// RenderTable formats t as left-aligned text columns:
//
//	id   name
//	---  -----
//	1    Alice
//
// Each column is as wide as its longest header or value, and at least
// three characters. Columns are separated by two spaces.
func RenderTable(t *storage.Table) string {
	if t == nil || len(t.Rows) == 0 {
		return EmptyResult
	}

	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = max(minColumnWidth, utf8.RuneCountInString(c))
	}
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			widths[i] = max(widths[i], utf8.RuneCountInString(row.Get(c)))
		}
	}

	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, renderLine(widths, func(i int) string { return t.Columns[i] }))
	lines = append(lines, renderLine(widths, func(i int) string { return strings.Repeat("-", widths[i]) }))
	for _, row := range t.Rows {
		lines = append(lines, renderLine(widths, func(i int) string { return row.Get(t.Columns[i]) }))
	}
	return strings.Join(lines, "\n")
}

func renderLine(widths []int, cell func(int) string) string {
	var sb strings.Builder
	for i, w := range widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		fmt.Fprintf(&sb, "%-*s", w, cell(i))
	}
	return sb.String()
}

// RenderList prints one name per line, or EmptyResult when there are none.
func RenderList(names []string) string {
	if len(names) == 0 {
		return EmptyResult
	}
	return strings.Join(names, "\n")
}
