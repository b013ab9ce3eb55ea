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

// Row maps column name to value. Column order lives on the owning Table.
type Row map[string]string

// Get returns the value of column, or "" when the row has no such column.
func (r Row) Get(column string) string {
	return r[column]
}

// Table is a materialized set of rows under an ordered header.
// Every row holds exactly the keys in Columns.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether name is in the header.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Predicate selects rows. A nil Predicate matches every row.
type Predicate func(Row) bool

func (p Predicate) match(r Row) bool {
	return p == nil || p(r)
}

// Values is an insertion-ordered column to value mapping used for
// inserts. When a table has no pages yet, the key order becomes the header.
type Values struct {
	keys []string
	m    map[string]string
}

// NewValues creates an empty Values.
func NewValues() *Values {
	return &Values{m: make(map[string]string)}
}

// ValuesOf pairs columns with vals positionally. Columns without a
// value get "".
func ValuesOf(columns, vals []string) *Values {
	v := NewValues()
	for i, c := range columns {
		val := ""
		if i < len(vals) {
			val = vals[i]
		}
		v.Set(c, val)
	}
	return v
}

// Set assigns value to column. Re-setting a column keeps its position.
func (v *Values) Set(column, value string) {
	if _, ok := v.m[column]; !ok {
		v.keys = append(v.keys, column)
	}
	v.m[column] = value
}

// Get returns the value for column and whether it was set.
func (v *Values) Get(column string) (string, bool) {
	val, ok := v.m[column]
	return val, ok
}

// Keys returns the columns in insertion order.
func (v *Values) Keys() []string {
	return append([]string(nil), v.keys...)
}

// Len returns the number of columns set.
func (v *Values) Len() int {
	return len(v.keys)
}
