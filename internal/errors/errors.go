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
Package errors provides structured error handling for PageDB.

Every failure that crosses a package boundary is a *PageDBError carrying:
  - A numeric error code for programmatic handling
  - A category (LEX, SYNTAX, STORAGE, NOT_FOUND, EXECUTION)
  - A user-facing message with optional detail and hint
  - The input position for tokenizer failures
  - An optional wrapped cause

Error Categories:
  - LexError: the tokenizer rejected the statement text
  - SyntaxError: the token stream does not match any statement form,
    or the statement is recognized but not supported
  - StorageError: a page file or directory could not be read or written
  - NotFoundError: a database or table does not exist
  - ExecutionError: the statement is valid but cannot be applied
*/
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error identifier.
type ErrorCode int

const (
	// Syntax errors (1000-1099)
	ErrCodeSyntax          ErrorCode = 1000
	ErrCodeUnexpectedToken ErrorCode = 1001
	ErrCodeMissingKeyword  ErrorCode = 1002
	ErrCodeUnknownStmt     ErrorCode = 1003
	ErrCodeMalformedClause ErrorCode = 1004
	ErrCodeUnsupported     ErrorCode = 1010

	// Lexical errors (1100-1199)
	ErrCodeInvalidNumber    ErrorCode = 1101
	ErrCodeUnclosedString   ErrorCode = 1102
	ErrCodeUnexpectedChar   ErrorCode = 1103

	// Execution errors (2000-2999)
	ErrCodeExecution          ErrorCode = 2000
	ErrCodeTableNotFound      ErrorCode = 2001
	ErrCodeDatabaseNotFound   ErrorCode = 2010
	ErrCodeNoDatabaseSelected ErrorCode = 2011
	ErrCodeAlreadyExists      ErrorCode = 2012
	ErrCodeScriptNotFound     ErrorCode = 2020

	// Storage errors (5000-5999)
	ErrCodeStorage   ErrorCode = 5000
	ErrCodeIOError   ErrorCode = 5003
	ErrCodeEmptyPage ErrorCode = 5010
	ErrCodeNoPages   ErrorCode = 5011
)

// Category represents the error category.
type Category string

const (
	CategoryLex       Category = "LEX"
	CategorySyntax    Category = "SYNTAX"
	CategoryExecution Category = "EXECUTION"
	CategoryNotFound  Category = "NOT_FOUND"
	CategoryStorage   Category = "STORAGE"
)

// PageDBError represents a structured error in PageDB.
type PageDBError struct {
	Code     ErrorCode
	Category Category
	Message  string
	Detail   string
	Hint     string

	// Position is the rune offset in the statement text for lexical
	// errors and -1 otherwise. Context is the surrounding input.
	Position int
	Context  string

	Cause error
}

// Error implements the error interface.
func (e *PageDBError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ERROR %d (%s): %s - %s", e.Code, e.Category, e.Message, e.Detail)
	}
	return fmt.Sprintf("ERROR %d (%s): %s", e.Code, e.Category, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PageDBError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly error message.
func (e *PageDBError) UserMessage() string {
	msg := fmt.Sprintf("ERROR: %s", e.Message)
	if e.Detail != "" {
		msg += fmt.Sprintf(" (%s)", e.Detail)
	}
	if e.Position >= 0 && e.Context != "" {
		msg += fmt.Sprintf("\nnear position %d: %q", e.Position, e.Context)
	}
	if e.Hint != "" {
		msg += fmt.Sprintf("\nHINT: %s", e.Hint)
	}
	return msg
}

// WithDetail adds detail to the error.
func (e *PageDBError) WithDetail(detail string) *PageDBError {
	e.Detail = detail
	return e
}

// WithHint adds a hint to the error.
func (e *PageDBError) WithHint(hint string) *PageDBError {
	e.Hint = hint
	return e
}

// WithCause adds a cause to the error.
func (e *PageDBError) WithCause(cause error) *PageDBError {
	e.Cause = cause
	return e
}

func newError(code ErrorCode, cat Category, message string) *PageDBError {
	return &PageDBError{Code: code, Category: cat, Message: message, Position: -1}
}

// ============================================================================
// Lexical Error Constructors
// ============================================================================

// NewLexError creates a tokenizer error at pos. context is the slice of
// input surrounding the offending character.
func NewLexError(code ErrorCode, pos int, context, message string) *PageDBError {
	e := newError(code, CategoryLex, message)
	e.Position = pos
	e.Context = context
	return e
}

// InvalidNumber reports a numeric literal with more than one decimal point.
func InvalidNumber(pos int, context string) *PageDBError {
	return NewLexError(ErrCodeInvalidNumber, pos, context, "invalid number: more than one decimal point")
}

// UnclosedString reports a quoted string with no closing quote.
func UnclosedString(pos int, context string) *PageDBError {
	return NewLexError(ErrCodeUnclosedString, pos, context, "unterminated string literal").
		WithHint("Close the string with a single quote; write '' for a literal quote")
}

// UnexpectedChar reports a character outside every token class.
func UnexpectedChar(pos int, ch rune, context string) *PageDBError {
	return NewLexError(ErrCodeUnexpectedChar, pos, context, fmt.Sprintf("unexpected character: %q", ch))
}

// ============================================================================
// Syntax Error Constructors
// ============================================================================

// NewSyntaxError creates a new syntax error.
func NewSyntaxError(message string) *PageDBError {
	return newError(ErrCodeSyntax, CategorySyntax, message)
}

// UnexpectedToken creates an error for unexpected tokens.
func UnexpectedToken(expected, got string) *PageDBError {
	return newError(ErrCodeUnexpectedToken, CategorySyntax,
		fmt.Sprintf("unexpected token: expected %s, got %s", expected, got)).
		WithHint("Check your SQL syntax")
}

// MissingKeyword creates an error for missing keywords.
func MissingKeyword(keyword string) *PageDBError {
	return newError(ErrCodeMissingKeyword, CategorySyntax,
		fmt.Sprintf("missing keyword: %s", keyword)).
		WithHint(fmt.Sprintf("Add the '%s' keyword to your statement", keyword))
}

// MalformedClause reports a clause whose shape is wrong, such as a WHERE
// without an operator or a VALUES list with no closing parenthesis.
func MalformedClause(clause, detail string) *PageDBError {
	return newError(ErrCodeMalformedClause, CategorySyntax,
		fmt.Sprintf("malformed %s clause", clause)).WithDetail(detail)
}

// UnknownStatement reports a statement whose leading word is not recognized.
func UnknownStatement(word string) *PageDBError {
	return newError(ErrCodeUnknownStmt, CategorySyntax,
		fmt.Sprintf("unknown or unsupported SQL statement: %s", word)).
		WithHint("Type 'help' to list supported statements")
}

// Unsupported reports a statement that is recognized but not implemented.
func Unsupported(stmt string) *PageDBError {
	return newError(ErrCodeUnsupported, CategorySyntax,
		fmt.Sprintf("%s is not supported", stmt))
}

// ============================================================================
// Execution Error Constructors
// ============================================================================

// NewExecutionError creates a new execution error.
func NewExecutionError(message string) *PageDBError {
	return newError(ErrCodeExecution, CategoryExecution, message)
}

// TableNotFound creates an error for missing tables.
func TableNotFound(table string) *PageDBError {
	return newError(ErrCodeTableNotFound, CategoryNotFound,
		fmt.Sprintf("table not found: %s", table)).
		WithHint("Use SHOW TABLES to see available tables")
}

// DatabaseNotFound creates an error for missing databases.
func DatabaseNotFound(db string) *PageDBError {
	return newError(ErrCodeDatabaseNotFound, CategoryNotFound,
		fmt.Sprintf("database does not exist: %s", db)).
		WithHint("Use SHOW DATABASES to see available databases")
}

// NoDatabaseSelected is returned for table statements issued before USE.
func NoDatabaseSelected() *PageDBError {
	return newError(ErrCodeNoDatabaseSelected, CategoryNotFound, "no database selected").
		WithHint("Run USE <database> first")
}

// AlreadyExists reports a CREATE of an existing database or table.
func AlreadyExists(kind, name string) *PageDBError {
	return newError(ErrCodeAlreadyExists, CategoryExecution,
		fmt.Sprintf("%s already exists: %s", kind, name))
}

// ScriptNotFound reports a missing SQL script file.
func ScriptNotFound(path string) *PageDBError {
	return newError(ErrCodeScriptNotFound, CategoryNotFound,
		fmt.Sprintf("SQL file not found: %s", path))
}

// ============================================================================
// Storage Error Constructors
// ============================================================================

// NewStorageError creates a new storage error.
func NewStorageError(message string) *PageDBError {
	return newError(ErrCodeStorage, CategoryStorage, message)
}

// IOError wraps a filesystem failure on path.
func IOError(op, path string, cause error) *PageDBError {
	return newError(ErrCodeIOError, CategoryStorage, fmt.Sprintf("%s failed", op)).
		WithDetail(path).
		WithCause(cause)
}

// EmptyPage reports a page file with no header line.
func EmptyPage(path string) *PageDBError {
	return newError(ErrCodeEmptyPage, CategoryStorage, "page has no header").WithDetail(path)
}

// NoPages reports a table directory that holds no page files.
func NoPages(dir string) *PageDBError {
	return newError(ErrCodeNoPages, CategoryStorage, "table has no pages").WithDetail(dir)
}

// ============================================================================
// Helper Functions
// ============================================================================

func category(err error) Category {
	var e *PageDBError
	if stderrors.As(err, &e) {
		return e.Category
	}
	return ""
}

// IsLexError checks if an error is a tokenizer error.
func IsLexError(err error) bool {
	return category(err) == CategoryLex
}

// IsSyntaxError checks if an error is a syntax error.
func IsSyntaxError(err error) bool {
	return category(err) == CategorySyntax
}

// IsUnsupported checks if an error names a recognized but unimplemented statement.
func IsUnsupported(err error) bool {
	return GetCode(err) == ErrCodeUnsupported
}

// IsStorageError checks if an error is a storage error.
func IsStorageError(err error) bool {
	return category(err) == CategoryStorage
}

// IsNotFound checks if an error reports a missing database or table.
func IsNotFound(err error) bool {
	return category(err) == CategoryNotFound
}

// IsExecutionError checks if an error is an execution error.
func IsExecutionError(err error) bool {
	return category(err) == CategoryExecution
}

// GetCode returns the error code if it's a PageDBError, or 0 otherwise.
func GetCode(err error) ErrorCode {
	var e *PageDBError
	if stderrors.As(err, &e) {
		return e.Code
	}
	return 0
}

// FormatError formats an error for user display.
func FormatError(err error) string {
	var e *PageDBError
	if stderrors.As(err, &e) {
		return e.UserMessage()
	}
	return fmt.Sprintf("ERROR: %v", err)
}
