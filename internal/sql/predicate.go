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
	"math"
	"strconv"
	"strings"

	"pagedb/internal/storage"
)

// BuildPredicate turns a WHERE condition into a row test.
//
// The row value (or "" when the column is absent) is compared with the
// condition's literal. If both parse as finite floats the comparison is numeric,
// otherwise it goes through coll. A nil condition yields a nil predicate,
// which the storage layer treats as matching every row.
func BuildPredicate(cond *Condition, coll storage.Collator) storage.Predicate {
	if cond == nil {
		return nil
	}
	if coll == nil {
		coll = storage.BinaryCollator{}
	}
	c := *cond
	return func(row storage.Row) bool {
		return applyOperator(c.Operator, compareValues(row.Get(c.Column), c.Value, coll))
	}
}

// compareValues orders a against b: numerically when both are finite
// numbers, else by collation.
func compareValues(a, b string, coll storage.Collator) int {
	if x, ok := parseNumber(a); ok {
		if y, ok := parseNumber(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return coll.Compare(a, b)
}

// parseNumber accepts finite numbers only. NaN and infinities compare as text.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func applyOperator(op string, cmp int) bool {
	switch op {
	case OpEq:
		return cmp == 0
	case OpNotEq, OpNotEqAlt:
		return cmp != 0
	case OpGt:
		return cmp > 0
	case OpLt:
		return cmp < 0
	case OpGtEq:
		return cmp >= 0
	case OpLtEq:
		return cmp <= 0
	}
	return false
}
