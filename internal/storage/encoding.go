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
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// CharacterEncoding names the byte encoding of page files.
type CharacterEncoding string

const (
	EncodingUTF8   CharacterEncoding = "UTF8"
	EncodingLatin1 CharacterEncoding = "LATIN1"
	EncodingASCII  CharacterEncoding = "ASCII"
)

// ParseEncoding maps a configuration value to a CharacterEncoding.
func ParseEncoding(s string) (CharacterEncoding, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "UTF8", "UTF-8":
		return EncodingUTF8, nil
	case "LATIN1", "ISO-8859-1", "ISO8859_1":
		return EncodingLatin1, nil
	case "ASCII", "US-ASCII":
		return EncodingASCII, nil
	default:
		return "", fmt.Errorf("unknown encoding: %s", s)
	}
}

// Encoder converts page text to and from its on-disk bytes.
type Encoder interface {
	// Encode converts a Go string to bytes in the target encoding.
	Encode(s string) ([]byte, error)

	// Decode converts bytes from the target encoding to a Go string.
	Decode(b []byte) (string, error)

	// Name returns the encoding name.
	Name() string
}

// UTF8Encoder handles UTF-8, Go's native string encoding.
type UTF8Encoder struct{}

// Encode implements Encoder.
func (UTF8Encoder) Encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("string contains invalid UTF-8 sequences")
	}
	return []byte(s), nil
}

// Decode implements Encoder.
func (UTF8Encoder) Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("invalid UTF-8 sequence")
	}
	return string(b), nil
}

// Name implements Encoder.
func (UTF8Encoder) Name() string {
	return string(EncodingUTF8)
}

// Latin1Encoder handles ISO-8859-1.
type Latin1Encoder struct{}

// Encode implements Encoder.
func (Latin1Encoder) Encode(s string) ([]byte, error) {
	for _, r := range s {
		if r > 255 {
			return nil, fmt.Errorf("character U+%04X is not valid in Latin-1 encoding", r)
		}
	}
	return charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
}

// Decode implements Encoder.
func (Latin1Encoder) Decode(b []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Name implements Encoder.
func (Latin1Encoder) Name() string {
	return string(EncodingLatin1)
}

// ASCIIEncoder handles 7-bit ASCII.
type ASCIIEncoder struct{}

// Encode implements Encoder.
func (ASCIIEncoder) Encode(s string) ([]byte, error) {
	for _, r := range s {
		if r > 127 {
			return nil, fmt.Errorf("character U+%04X is not valid ASCII", r)
		}
	}
	return []byte(s), nil
}

// Decode implements Encoder.
func (ASCIIEncoder) Decode(b []byte) (string, error) {
	for _, c := range b {
		if c > 127 {
			return "", fmt.Errorf("byte 0x%02X is not valid ASCII", c)
		}
	}
	return string(b), nil
}

// Name implements Encoder.
func (ASCIIEncoder) Name() string {
	return string(EncodingASCII)
}

// GetEncoder returns an Encoder for the given character encoding.
func GetEncoder(encoding CharacterEncoding) Encoder {
	switch encoding {
	case EncodingLatin1:
		return Latin1Encoder{}
	case EncodingASCII:
		return ASCIIEncoder{}
	default:
		return UTF8Encoder{}
	}
}
