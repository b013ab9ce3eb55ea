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
Package sql contains the Lexer component for SQL tokenization.

Lexer Overview:
===============

The Lexer is the first stage of the statement pipeline. It turns raw
statement text into a flat slice of typed tokens for the Parser.

Lexical Analysis Process:
=========================

	Input: "SELECT name FROM people WHERE age >= 30"

	Output Tokens:
	  1. {TokenKeyword, "SELECT"}
	  2. {TokenIdentifier, "name"}
	  3. {TokenKeyword, "FROM"}
	  4. {TokenIdentifier, "people"}
	  5. {TokenKeyword, "WHERE"}
	  6. {TokenIdentifier, "age"}
	  7. {TokenSymbol, ">="}
	  8. {TokenInteger, "30"}
	  9. {TokenEOF, ""}

Token Rules:
============

Scanning left to right, skipping ASCII whitespace:

 1. A letter or '_' starts a word of letters, digits, and '_'. Words in
    the keyword set are keywords; "true"/"false" are boolean literals;
    anything else is an identifier. Token text keeps the source spelling.
 2. A digit starts a number of digits and at most one '.'. A second '.'
    is an error.
 3. A single quote starts a string literal that ends at the next lone
    quote. A doubled quote inside the literal is one literal quote.
    The token text is the unquoted, unescaped content.
 4. One of ( ) , ; * = < > ! . + - / % is a symbol. The two-character
    symbols <= >= <> == != && || are matched first.
 5. Anything else is an error.

Every successful tokenization ends with one TokenEOF.

Errors:
=======

Lexical errors carry the rune offset of the problem and up to ten
characters of input on either side.
*/
package sql

import (
	"fmt"
	"strings"
	"unicode"

	"pagedb/internal/errors"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenEOF        TokenType = iota // End of input
	TokenKeyword                     // SQL keyword (SELECT, FROM, etc.)
	TokenIdentifier                  // Identifier (table name, column name)
	TokenString                      // String literal ('hello')
	TokenInteger                     // Integer literal (123)
	TokenDouble                      // Decimal literal (3.14)
	TokenBoolean                     // true or false
	TokenSymbol                      // Operator or punctuation
)

var tokenTypeNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenKeyword:    "Keyword",
	TokenIdentifier: "Identifier",
	TokenString:     "StringLiteral",
	TokenInteger:    "IntegerLiteral",
	TokenDouble:     "DoubleLiteral",
	TokenBoolean:    "BooleanLiteral",
	TokenSymbol:     "Symbol",
}

// String returns the name of the token type.
func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a single lexical unit.
type Token struct {
	Type  TokenType
	Value string
	Pos   int // rune offset of the first character
}

// String renders the token for diagnostics.
func (t Token) String() string {
	if t.Type == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.Type, t.Value)
}

// keywords is the reserved word set, matched case-insensitively.
// TRUE and FALSE are not here so that they lex as boolean literals.
var keywords = makeSet(
	"CREATE", "DATABASE", "DATABASES", "USE", "TABLE", "DROP", "ALTER", "TRUNCATE",
	"INSERT", "INTO", "VALUES", "SHOW",
	"SELECT", "FROM", "WHERE", "UPDATE", "SET", "DELETE",
	"AND", "OR", "NOT", "ORDER", "BY", "GROUP", "HAVING",
	"JOIN", "INNER", "LEFT", "RIGHT", "FULL", "ON", "AS", "DISTINCT",
	"LIMIT", "OFFSET", "UNION", "EXCEPT", "ALL",
	"CASE", "WHEN", "THEN", "ELSE", "END", "CAST", "CONVERT", "LIKE", "IN", "BETWEEN",
	"IS", "NULL", "NOT_NULL", "PRIMARY", "AUTO_INCREMENT", "PRIMARY_KEY", "DEFAULT",
	"UNIQUE", "IF", "EXISTS",
)

// IsKeyword reports whether word is a reserved keyword.
func IsKeyword(word string) bool {
	return keywords[strings.ToUpper(word)]
}

// Keywords returns the reserved keywords, for completion.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	return out
}

const symbolChars = "(),;*=<>!.+-/%"

var multiCharSymbols = makeSet("<=", ">=", "<>", "==", "!=", "&&", "||")

func makeSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Lexer transforms an input string into tokens.
type Lexer struct {
	input []rune
	pos   int
}

// NewLexer creates a new Lexer for the given input string.
func NewLexer(input string) *Lexer {
	return &Lexer{input: []rune(input)}
}

// Tokenize scans the whole input. On success the last token is TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// NextToken skips whitespace and returns the next token. After the end
// of input it keeps returning TokenEOF.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	ch := l.input[l.pos]
	switch {
	case unicode.IsLetter(ch) || ch == '_':
		return l.readWord(), nil
	case isDigit(ch):
		return l.readNumber()
	case ch == '\'':
		return l.readString()
	case strings.ContainsRune(symbolChars, ch):
		return l.readSymbol(), nil
	}
	return Token{}, errors.UnexpectedChar(l.pos, ch, l.around(l.pos))
}

func (l *Lexer) readWord() Token {
	start := l.pos
	for l.pos < len(l.input) && (unicode.IsLetter(l.input[l.pos]) || unicode.IsDigit(l.input[l.pos]) || l.input[l.pos] == '_') {
		l.pos++
	}
	word := string(l.input[start:l.pos])

	switch {
	case IsKeyword(word):
		return Token{Type: TokenKeyword, Value: word, Pos: start}
	case strings.EqualFold(word, "true") || strings.EqualFold(word, "false"):
		return Token{Type: TokenBoolean, Value: word, Pos: start}
	default:
		return Token{Type: TokenIdentifier, Value: word, Pos: start}
	}
}

func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	dots := 0
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		if l.input[l.pos] == '.' {
			dots++
			if dots > 1 {
				return Token{}, errors.InvalidNumber(l.pos, l.around(l.pos))
			}
		}
		l.pos++
	}

	typ := TokenInteger
	if dots == 1 {
		typ = TokenDouble
	}
	return Token{Type: typ, Value: string(l.input[start:l.pos]), Pos: start}, nil
}

func (l *Lexer) readString() (Token, error) {
	start := l.pos
	l.pos++ // opening quote

	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch != '\'' {
			sb.WriteRune(ch)
			l.pos++
			continue
		}
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
			sb.WriteRune('\'')
			l.pos += 2
			continue
		}
		l.pos++ // closing quote
		return Token{Type: TokenString, Value: sb.String(), Pos: start}, nil
	}
	return Token{}, errors.UnclosedString(start, l.around(start))
}

func (l *Lexer) readSymbol() Token {
	start := l.pos
	if l.pos+1 < len(l.input) {
		pair := string(l.input[l.pos : l.pos+2])
		if multiCharSymbols[pair] {
			l.pos += 2
			return Token{Type: TokenSymbol, Value: pair, Pos: start}
		}
	}
	l.pos++
	return Token{Type: TokenSymbol, Value: string(l.input[start]), Pos: start}
}

// skipWhitespace advances past ASCII whitespace only.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			l.pos++
		default:
			return
		}
	}
}

// around returns up to ten runes of input on each side of i.
func (l *Lexer) around(i int) string {
	start := i - 10
	if start < 0 {
		start = 0
	}
	end := i + 10
	if end > len(l.input) {
		end = len(l.input)
	}
	return string(l.input[start:end])
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize is a convenience wrapper around NewLexer(text).Tokenize().
func Tokenize(text string) ([]Token, error) {
	return NewLexer(text).Tokenize()
}
