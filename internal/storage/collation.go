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

import (
	"fmt"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collation names a string ordering.
type Collation string

const (
	// CollationBinary orders strings byte-wise. This is the default.
	CollationBinary Collation = "binary"
	// CollationNocase orders strings ignoring case.
	CollationNocase Collation = "nocase"
	// CollationUnicode orders strings by the Unicode collation algorithm
	// for a locale.
	CollationUnicode Collation = "unicode"
)

// ParseCollation maps a configuration value to a Collation.
func ParseCollation(s string) (Collation, error) {
	switch c := Collation(strings.ToLower(strings.TrimSpace(s))); c {
	case "", CollationBinary:
		return CollationBinary, nil
	case CollationNocase, CollationUnicode:
		return c, nil
	default:
		return "", fmt.Errorf("unknown collation: %s", s)
	}
}

// Collator provides string comparison based on collation rules.
type Collator interface {
	// Compare returns -1 if a < b, 0 if a == b, 1 if a > b.
	Compare(a, b string) int

	// Equal returns true if two strings are equal under the collation.
	Equal(a, b string) bool
}

// BinaryCollator uses strict byte-wise comparison.
type BinaryCollator struct{}

// Compare implements Collator.
func (BinaryCollator) Compare(a, b string) int {
	return strings.Compare(a, b)
}

// Equal implements Collator.
func (BinaryCollator) Equal(a, b string) bool {
	return a == b
}

// NocaseCollator uses case-insensitive comparison.
type NocaseCollator struct{}

// Compare implements Collator.
func (NocaseCollator) Compare(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// Equal implements Collator.
func (NocaseCollator) Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// UnicodeCollator uses Unicode collation with locale support.
type UnicodeCollator struct {
	collator *collate.Collator
	locale   string
}

// NewUnicodeCollator creates a Unicode collator for the given locale.
// An unparseable locale falls back to English.
func NewUnicodeCollator(locale string) *UnicodeCollator {
	tag := language.Make(strings.ReplaceAll(locale, "_", "-"))
	if tag == language.Und {
		tag = language.English
	}
	return &UnicodeCollator{
		collator: collate.New(tag, collate.Loose),
		locale:   locale,
	}
}

// Compare implements Collator.
func (c *UnicodeCollator) Compare(a, b string) int {
	return c.collator.CompareString(a, b)
}

// Equal implements Collator.
func (c *UnicodeCollator) Equal(a, b string) bool {
	return c.collator.CompareString(a, b) == 0
}

// Locale returns the locale the collator was built for.
func (c *UnicodeCollator) Locale() string {
	return c.locale
}

// GetCollator returns a Collator for the given collation and locale.
func GetCollator(collation Collation, locale string) Collator {
	switch collation {
	case CollationNocase:
		return NocaseCollator{}
	case CollationUnicode:
		return NewUnicodeCollator(locale)
	default:
		return BinaryCollator{}
	}
}
