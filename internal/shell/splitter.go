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
Package shell runs PageDB statements from scripts and from an interactive
prompt.

Statement Splitting:
====================

Both the script runner and the REPL feed input line by line into a
Splitter:

  - each line is trimmed, and blank lines are skipped
  - "--" starts a comment that runs to the end of the line
  - ";" ends a statement
  - inside a single-quoted string neither "--" nor ";" is special

Lines of one statement are joined with a single space.

	CREATE TABLE people (id, name); -- people
	INSERT INTO people
	  VALUES (1, 'a;b');

	→ "CREATE TABLE people (id, name)"
	→ "INSERT INTO people VALUES (1, 'a;b')"
*/
package shell

import "strings"

// Splitter accumulates input lines and cuts them into statements.
// The zero value is ready to use.
type Splitter struct {
	buf     strings.Builder
	inQuote bool
}

// Feed adds one line and returns the statements it completed.
func (s *Splitter) Feed(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	var out []string
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '\'':
			s.inQuote = !s.inQuote
		case !s.inQuote && ch == '-' && i+1 < len(runes) && runes[i+1] == '-':
			i = len(runes) // comment to end of line
			continue
		case !s.inQuote && ch == ';':
			if stmt := strings.TrimSpace(s.buf.String()); stmt != "" {
				out = append(out, stmt)
			}
			s.buf.Reset()
			continue
		}
		s.buf.WriteRune(ch)
	}
	if s.Pending() {
		s.buf.WriteByte(' ')
	}
	return out
}

// Pending reports whether an unterminated statement is buffered.
func (s *Splitter) Pending() bool {
	return strings.TrimSpace(s.buf.String()) != ""
}

// Flush returns the buffered, unterminated statement and resets.
func (s *Splitter) Flush() string {
	stmt := strings.TrimSpace(s.buf.String())
	s.Reset()
	return stmt
}

// Reset discards any buffered input.
func (s *Splitter) Reset() {
	s.buf.Reset()
	s.inQuote = false
}

// SplitStatements splits a whole script. A final statement without a
// terminating ';' is included.
func SplitStatements(text string) []string {
	var s Splitter
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, s.Feed(line)...)
	}
	if rest := s.Flush(); rest != "" {
		out = append(out, rest)
	}
	return out
}
