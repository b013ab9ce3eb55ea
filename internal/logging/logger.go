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
Package logging provides the structured logging framework for PageDB.

The logging package implements a leveled logging system with:
  - Multiple log levels (DEBUG, INFO, WARN, ERROR)
  - Structured logging with key-value fields
  - Component-based logging for easy filtering
  - Text (optionally colored) or JSON output
  - An optional log file alongside the console
  - Thread-safe operation

Components that only need to emit diagnostics depend on the Sink
interface rather than on *Logger, so that tests and library callers can
pass Nop() or their own recorder.

Usage:

	logger := logging.NewLogger("storage")
	logger.Info("Page rollover", "table", dir, "page", 3)
	logger.Warn("Parse failed", "error", err)
*/
package logging

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

// Level represents the severity of a log message.
type Level int

const (
	// DEBUG level for detailed debugging information.
	DEBUG Level = iota
	// INFO level for general operational information.
	INFO
	// WARN level for warning conditions.
	WARN
	// ERROR level for error conditions.
	ERROR
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level. Unknown names map to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Sink is the logging surface used by the engine packages.
type Sink interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type nopSink struct{}

func (nopSink) Debug(string, ...interface{}) {}
func (nopSink) Info(string, ...interface{})  {}
func (nopSink) Warn(string, ...interface{})  {}
func (nopSink) Error(string, ...interface{}) {}

// Nop returns a Sink that discards everything.
func Nop() Sink { return nopSink{} }

// OrNop returns s, or Nop() when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop()
	}
	return s
}

// Entry represents a single log entry with all its metadata.
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Component string                 `json:"component"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Config holds logger configuration options.
type Config struct {
	Level    Level
	Output   io.Writer
	File     io.Writer
	JSONMode bool
	Color    bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:    WARN,
		Output:   os.Stderr,
		JSONMode: false,
		Color:    term.IsTerminal(int(os.Stderr.Fd())),
	}
}

var (
	globalConfig = DefaultConfig()
	globalMu     sync.RWMutex
	writeMu      sync.Mutex
)

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level Level) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Level = level
}

// SetGlobalOutput sets the global console output. Color is disabled
// unless the writer is a terminal.
func SetGlobalOutput(w io.Writer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Output = w
	globalConfig.Color = isTerminal(w)
}

// SetJSONMode enables or disables JSON output mode.
func SetJSONMode(enabled bool) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.JSONMode = enabled
}

// SetColor forces colored level tags on or off for text output.
func SetColor(enabled bool) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Color = enabled
}

// OpenFile directs a copy of every entry to the file at path, creating
// parent directories as needed. File entries are never colored.
// The returned function closes the file and detaches it.
func OpenFile(path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	globalMu.Lock()
	globalConfig.File = f
	globalMu.Unlock()
	return func() error {
		globalMu.Lock()
		if globalConfig.File == f {
			globalConfig.File = nil
		}
		globalMu.Unlock()
		return f.Close()
	}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Logger provides structured logging capabilities.
type Logger struct {
	component string
}

// NewLogger creates a new Logger for the specified component.
func NewLogger(component string) *Logger {
	return &Logger{component: component}
}

// Component returns the component name.
func (l *Logger) Component() string {
	return l.component
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	globalMu.RLock()
	cfg := globalConfig
	globalMu.RUnlock()

	if level < cfg.Level {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Component: l.component,
		Message:   msg,
		Fields:    fieldsOf(args),
	}

	writeMu.Lock()
	defer writeMu.Unlock()

	if cfg.Output != nil {
		if cfg.JSONMode {
			writeJSON(cfg.Output, entry)
		} else {
			writeText(cfg.Output, entry, cfg.Color)
		}
	}
	if cfg.File != nil {
		if cfg.JSONMode {
			writeJSON(cfg.File, entry)
		} else {
			writeText(cfg.File, entry, false)
		}
	}
}

func fieldsOf(args []interface{}) map[string]interface{} {
	if len(args) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, (len(args)+1)/2)
	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("arg%d", i)
		}
		fields[key] = stringify(args[i+1])
	}
	if len(args)%2 != 0 {
		fields["extra"] = stringify(args[len(args)-1])
	}
	return fields
}

// errors do not marshal to JSON, so they are flattened to their text.
func stringify(v interface{}) interface{} {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

func writeJSON(w io.Writer, entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(w, "ERROR: failed to marshal log entry: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

// Format: 2006-01-02T15:04:05.000Z [LEVEL] [component] message key=value ...
func writeText(w io.Writer, entry Entry, color bool) {
	timestamp := entry.Timestamp.Format("2006-01-02T15:04:05.000Z")

	var b strings.Builder
	b.WriteString(timestamp)
	b.WriteByte(' ')
	if color {
		b.WriteString(levelColor(entry.Level))
		fmt.Fprintf(&b, "[%-5s]", entry.Level)
		b.WriteString("\033[0m")
	} else {
		fmt.Fprintf(&b, "[%-5s]", entry.Level)
	}
	fmt.Fprintf(&b, " [%s] %s", entry.Component, entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
	}

	fmt.Fprintln(w, b.String())
}

func levelColor(level string) string {
	switch level {
	case "DEBUG":
		return "\033[36m"
	case "INFO":
		return "\033[32m"
	case "WARN":
		return "\033[33m"
	case "ERROR":
		return "\033[31m"
	default:
		return "\033[0m"
	}
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(DEBUG, msg, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(INFO, msg, args...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(WARN, msg, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(ERROR, msg, args...)
}

// With returns a logger that prepends the given key-value pairs to
// every entry.
func (l *Logger) With(args ...interface{}) *ContextLogger {
	return &ContextLogger{logger: l, args: append([]interface{}(nil), args...)}
}

// ContextLogger is a logger with pre-set context fields.
type ContextLogger struct {
	logger *Logger
	args   []interface{}
}

// Debug logs a message at DEBUG level with context fields.
func (c *ContextLogger) Debug(msg string, args ...interface{}) {
	c.logger.log(DEBUG, msg, c.merge(args)...)
}

// Info logs a message at INFO level with context fields.
func (c *ContextLogger) Info(msg string, args ...interface{}) {
	c.logger.log(INFO, msg, c.merge(args)...)
}

// Warn logs a message at WARN level with context fields.
func (c *ContextLogger) Warn(msg string, args ...interface{}) {
	c.logger.log(WARN, msg, c.merge(args)...)
}

// Error logs a message at ERROR level with context fields.
func (c *ContextLogger) Error(msg string, args ...interface{}) {
	c.logger.log(ERROR, msg, c.merge(args)...)
}

func (c *ContextLogger) merge(args []interface{}) []interface{} {
	out := make([]interface{}, 0, len(c.args)+len(args))
	out = append(out, c.args...)
	return append(out, args...)
}

// ============================================================================
// Statement Tracking
// ============================================================================

var statementCounter uint64

// GenerateStatementID generates a unique statement ID.
// Format: <counter>-<random_hex>
func GenerateStatementID() string {
	counter := atomic.AddUint64(&statementCounter, 1)
	randomBytes := make([]byte, 4)
	_, _ = rand.Read(randomBytes)
	return fmt.Sprintf("%d-%s", counter, hex.EncodeToString(randomBytes))
}

// StatementContext follows one statement from text to result.
type StatementContext struct {
	ID        string
	StartTime time.Time
	Source    string
	SQL       string
}

// NewStatementContext creates a statement context. source names where
// the text came from, such as "repl" or a script path.
func NewStatementContext(source, sql string) *StatementContext {
	return &StatementContext{
		ID:        GenerateStatementID(),
		StartTime: time.Now(),
		Source:    source,
		SQL:       sql,
	}
}

// Duration returns the time since the statement started.
func (s *StatementContext) Duration() time.Duration {
	return time.Since(s.StartTime)
}

// DurationMs returns the duration in milliseconds.
func (s *StatementContext) DurationMs() float64 {
	return float64(s.Duration().Microseconds()) / 1000.0
}

// LogComplete logs a statement that produced a result.
func (s *StatementContext) LogComplete(sink Sink, status string, args ...interface{}) {
	base := []interface{}{
		"statement_id", s.ID,
		"source", s.Source,
		"sql", s.SQL,
		"status", status,
		"duration_ms", fmt.Sprintf("%.2f", s.DurationMs()),
	}
	OrNop(sink).Info("Statement completed", append(base, args...)...)
}

// LogError logs a statement that failed.
func (s *StatementContext) LogError(sink Sink, err error, args ...interface{}) {
	base := []interface{}{
		"statement_id", s.ID,
		"source", s.Source,
		"sql", s.SQL,
		"status", "error",
		"error", err,
		"duration_ms", fmt.Sprintf("%.2f", s.DurationMs()),
	}
	OrNop(sink).Warn("Statement failed", append(base, args...)...)
}
