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

package storage

import "strings"

// Page lines use a loose CSV dialect: a double quote toggles a span in
// which commas are literal, and the quote characters themselves are
// dropped. There is no escape for an embedded quote. encoding/csv is not
// used because it rejects bare quotes inside fields, which this dialect
// accepts.

// splitHeader splits a header line. Column names are never quoted.
func splitHeader(line string) []string {
	return strings.Split(line, ",")
}

// splitRow splits a row line on commas outside quoted spans.
func splitRow(line string) []string {
	var out []string
	var sb strings.Builder
	inQuotes := false
	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			out = append(out, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(ch)
		}
	}
	return append(out, sb.String())
}

// joinRow serializes row under columns. Values holding a comma are
// wrapped in quotes so they survive splitRow; values that also hold a
// quote cannot round-trip in this dialect and are written as-is.
func joinRow(columns []string, row Row) string {
	var sb strings.Builder
	for i, c := range columns {
		if i > 0 {
			sb.WriteByte(',')
		}
		v := row[c]
		if strings.ContainsRune(v, ',') && !strings.ContainsRune(v, '"') {
			sb.WriteByte('"')
			sb.WriteString(v)
			sb.WriteByte('"')
		} else {
			sb.WriteString(v)
		}
	}
	return sb.String()
}

// splitLines breaks page text into lines, accepting \n or \r\n and
// ignoring the terminator of the final line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// rowFromFields keys fields by columns, defaulting missing trailing
// fields to "" and dropping surplus ones.
func rowFromFields(columns, fields []string) Row {
	row := make(Row, len(columns))
	for i, c := range columns {
		if i < len(fields) {
			row[c] = fields[i]
		} else {
			row[c] = ""
		}
	}
	return row
}
