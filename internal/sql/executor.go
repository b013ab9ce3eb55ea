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
Executor Overview:
==================

The Executor runs one parsed Statement. It resolves table names against
the session's current database, calls the catalog for directory work and
the TableEngine for row work, and renders the outcome as text.

Execution Flow:
===============

	SQL text ──▶ Parse ──▶ Statement ──▶ Execute ──▶ result text
	                                        │
	                 ┌──────────────────────┼──────────────────────┐
	                 ▼                      ▼                      ▼
	             Catalog                Session               TableEngine
	       (databases, tables)     (current database)     (pages and rows)

SELECT Processing:
==================

	1. Filter and ORDER BY inside TableEngine.Select
	2. Project to the requested columns ("" for unknown ones)
	3. Skip OFFSET rows (clamped to the result)
	4. Keep LIMIT rows (clamped to what remains)
	5. Render, or print "(0 rows)"

Result Cache and Metrics:
=========================

Both are optional. With a ResultCache set, ExecuteSQL serves a repeated
SELECT or JOIN from the cache, keyed by the current database and the
statement text. Every table write invalidates the results that read that
table. With a StatementRecorder set, every ExecuteSQL call is counted by
statement type, and parse failures are counted as "INVALID".

Error Handling:
===============

Execute returns a *errors.PageDBError on failure. ExecuteSQL never
fails: it formats any error as the statement's output, so a caller
running many statements simply moves on to the next one.
*/
package sql

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pagedb/internal/errors"
	"pagedb/internal/logging"
	"pagedb/internal/storage"
)

// Catalog is the database and table directory service the executor needs.
type Catalog interface {
	DatabaseExists(db string) bool
	CreateDatabase(db string) error
	DropDatabase(db string) error
	ListDatabases() ([]string, error)
	TableExists(db, table string) bool
	CreateTable(db, table string) error
	DropTable(db, table string) error
	ListTables(db string) ([]string, error)
	TableDir(db, table string) string
}

// Session holds the current database.
type Session interface {
	CurrentDatabase() (string, bool)
	SetCurrentDatabase(db string)
	Clear()
}

// PageSizeSource supplies the page size cap in bytes. It is consulted
// once per INSERT.
type PageSizeSource interface {
	PageSizeBytes() int64
}

// StatementRecorder receives one call per ExecuteSQL.
type StatementRecorder interface {
	RecordStatement(stmtType string, latency time.Duration, failed bool)
}

// ResultCache stores rendered SELECT output by key. Table names passed to
// Set and Invalidate have the form "<database>.<table>".
type ResultCache interface {
	Get(key string) (string, bool)
	Set(key, result string, tables []string)
	Invalidate(table string)
	InvalidateAll()
}

// Executor executes statements against a catalog and a table engine.
type Executor struct {
	catalog  Catalog
	session  Session
	engine   *storage.TableEngine
	pageSize PageSizeSource
	log      logging.Sink

	recorder StatementRecorder
	results  ResultCache
}

// NewExecutor creates an Executor. A nil log sink discards logs.
func NewExecutor(catalog Catalog, session Session, engine *storage.TableEngine, pageSize PageSizeSource, log logging.Sink) *Executor {
	return &Executor{
		catalog:  catalog,
		session:  session,
		engine:   engine,
		pageSize: pageSize,
		log:      logging.OrNop(log),
	}
}

// SetRecorder makes ExecuteSQL report every statement to r.
func (e *Executor) SetRecorder(r StatementRecorder) {
	e.recorder = r
}

// SetResultCache enables caching of SELECT and JOIN output in c.
func (e *Executor) SetResultCache(c ResultCache) {
	e.results = c
}

// ExecuteSQL parses and executes one statement and returns the text to
// show the user. Errors are rendered, never returned. source labels the
// statement in logs, for example "repl" or a script path.
func (e *Executor) ExecuteSQL(source, text string) string {
	ctx := logging.NewStatementContext(source, text)

	stmt, err := Parse(text, e.log)
	if err != nil {
		ctx.LogError(e.log, err, "phase", "parse")
		e.record("INVALID", ctx, true)
		return errors.FormatError(err)
	}
	name := statementName(stmt)

	key, tables, cacheable := e.cacheKey(stmt, text)
	if cacheable {
		if out, ok := e.results.Get(key); ok {
			ctx.LogComplete(e.log, "cached", "statement", name)
			e.record(name, ctx, false)
			return out
		}
	}

	out, err := e.Execute(stmt)
	if err != nil {
		ctx.LogError(e.log, err, "phase", "execute", "statement", name)
		e.record(name, ctx, true)
		return errors.FormatError(err)
	}
	if cacheable {
		e.results.Set(key, out, tables)
	}
	ctx.LogComplete(e.log, "ok", "statement", name)
	e.record(name, ctx, false)
	return out
}

func (e *Executor) record(stmtType string, ctx *logging.StatementContext, failed bool) {
	if e.recorder != nil {
		e.recorder.RecordStatement(stmtType, ctx.Duration(), failed)
	}
}

// cacheKey returns the result cache key of a SELECT or JOIN and the
// tables it reads.
func (e *Executor) cacheKey(stmt Statement, text string) (string, []string, bool) {
	if e.results == nil {
		return "", nil, false
	}
	db, ok := e.session.CurrentDatabase()
	if !ok {
		return "", nil, false
	}
	var tables []string
	switch s := stmt.(type) {
	case *SelectStmt:
		tables = []string{db + "." + s.TableName}
	case *SelectJoinStmt:
		tables = []string{db + "." + s.LeftTable, db + "." + s.RightTable}
	default:
		return "", nil, false
	}
	return db + "\x00" + strings.TrimSpace(text), tables, true
}

// invalidate drops cached results that stmt may have made stale. It runs
// whether or not stmt succeeded, since a failed write can still have
// changed some pages.
func (e *Executor) invalidate(stmt Statement) {
	if e.results == nil {
		return
	}
	var table string
	switch s := stmt.(type) {
	case *CreateDatabaseStmt, *DropDatabaseStmt:
		e.results.InvalidateAll()
		return
	case *CreateTableStmt:
		table = s.TableName
	case *DropTableStmt:
		table = s.TableName
	case *InsertStmt:
		table = s.TableName
	case *UpdateStmt:
		table = s.TableName
	case *DeleteStmt:
		table = s.TableName
	default:
		return
	}
	if db, ok := e.session.CurrentDatabase(); ok {
		e.results.Invalidate(db + "." + table)
	}
}

// Execute runs stmt and returns its rendered result.
func (e *Executor) Execute(stmt Statement) (string, error) {
	defer e.invalidate(stmt)
	return e.execute(stmt)
}

func (e *Executor) execute(stmt Statement) (string, error) {
	switch s := stmt.(type) {
	case *CreateDatabaseStmt:
		return e.executeCreateDatabase(s)
	case *DropDatabaseStmt:
		return e.executeDropDatabase(s)
	case *UseDatabaseStmt:
		return e.executeUse(s)
	case *ShowCurrentDatabaseStmt:
		if db, ok := e.session.CurrentDatabase(); ok {
			return "Current database: " + db, nil
		}
		return "No database selected.", nil
	case *ShowDatabasesStmt:
		names, err := e.catalog.ListDatabases()
		if err != nil {
			return "", err
		}
		return RenderList(names), nil
	case *ShowTablesStmt:
		return e.executeShowTables(s)
	case *CreateTableStmt:
		return e.executeCreateTable(s)
	case *DropTableStmt:
		return e.executeDropTable(s)
	case *InsertStmt:
		return e.executeInsert(s)
	case *UpdateStmt:
		return e.executeUpdate(s)
	case *DeleteStmt:
		return e.executeDelete(s)
	case *SelectStmt:
		return e.executeSelect(s)
	case *SelectJoinStmt:
		return e.executeJoin(s)
	}
	return "", errors.NewExecutionError(fmt.Sprintf("cannot execute statement of type %T", stmt))
}

// ============================================================================
// Database statements
// ============================================================================

func (e *Executor) executeCreateDatabase(s *CreateDatabaseStmt) (string, error) {
	if err := e.catalog.CreateDatabase(s.DatabaseName); err != nil {
		return "", err
	}
	return "Database created: " + s.DatabaseName, nil
}

// executeDropDatabase drops a database and deselects it if it was current.
func (e *Executor) executeDropDatabase(s *DropDatabaseStmt) (string, error) {
	if err := e.catalog.DropDatabase(s.DatabaseName); err != nil {
		return "", err
	}
	if cur, ok := e.session.CurrentDatabase(); ok && cur == s.DatabaseName {
		e.session.Clear()
		e.log.Info("Current database dropped, session cleared", "database", s.DatabaseName)
	}
	return "Database dropped: " + s.DatabaseName, nil
}

func (e *Executor) executeUse(s *UseDatabaseStmt) (string, error) {
	if !e.catalog.DatabaseExists(s.DatabaseName) {
		return "", errors.DatabaseNotFound(s.DatabaseName)
	}
	e.session.SetCurrentDatabase(s.DatabaseName)
	return "Using database: " + s.DatabaseName, nil
}

func (e *Executor) executeShowTables(s *ShowTablesStmt) (string, error) {
	db := s.Database
	if db == "" {
		var err error
		if db, err = e.currentDatabase(); err != nil {
			return "", err
		}
	}
	names, err := e.catalog.ListTables(db)
	if err != nil {
		return "", err
	}
	return RenderList(names), nil
}

// currentDatabase returns the selected database, which must still exist.
func (e *Executor) currentDatabase() (string, error) {
	db, ok := e.session.CurrentDatabase()
	if !ok {
		return "", errors.NoDatabaseSelected()
	}
	if !e.catalog.DatabaseExists(db) {
		return "", errors.DatabaseNotFound(db)
	}
	return db, nil
}

// tableDir resolves table in the current database. The table must exist.
func (e *Executor) tableDir(table string) (string, error) {
	db, err := e.currentDatabase()
	if err != nil {
		return "", err
	}
	if !e.catalog.TableExists(db, table) {
		return "", errors.TableNotFound(table)
	}
	return e.catalog.TableDir(db, table), nil
}

// ============================================================================
// Table statements
// ============================================================================

// executeCreateTable creates the table directory and writes page 0 with
// the column header.
func (e *Executor) executeCreateTable(s *CreateTableStmt) (string, error) {
	db, err := e.currentDatabase()
	if err != nil {
		return "", err
	}

	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if seen[c] {
			return "", errors.NewExecutionError("duplicate column name: " + c)
		}
		seen[c] = true
	}

	if err := e.catalog.CreateTable(db, s.TableName); err != nil {
		return "", err
	}
	if _, err := e.engine.EnsureLastPage(e.catalog.TableDir(db, s.TableName), s.Columns); err != nil {
		return "", err
	}
	return "Table created: " + s.TableName, nil
}

func (e *Executor) executeDropTable(s *DropTableStmt) (string, error) {
	db, err := e.currentDatabase()
	if err != nil {
		return "", err
	}
	if err := e.catalog.DropTable(db, s.TableName); err != nil {
		return "", err
	}
	return "Table dropped: " + s.TableName, nil
}

// executeInsert maps the statement's values onto columns and appends one
// row. A missing table is created, taking its header from the row.
//
// Columns come from the statement, else from the stored table, else from
// valuesAsColumns. Values beyond the column count are dropped and missing
// ones are stored as "".
func (e *Executor) executeInsert(s *InsertStmt) (string, error) {
	db, err := e.currentDatabase()
	if err != nil {
		return "", err
	}
	dir := e.catalog.TableDir(db, s.TableName)
	if !e.catalog.TableExists(db, s.TableName) {
		e.log.Info("Creating table on first insert", "database", db, "table", s.TableName)
		if err := e.catalog.CreateTable(db, s.TableName); err != nil {
			return "", err
		}
	}

	cols := s.Columns
	if len(cols) == 0 {
		t, err := e.engine.LoadTable(dir)
		if err != nil {
			e.log.Warn("No stored header, using values as column names",
				"table", s.TableName, "error", err)
			cols = valuesAsColumns(s.Values)
		} else {
			cols = t.Columns
		}
	}

	capBytes := e.pageSize.PageSizeBytes()
	page, err := e.engine.Insert(dir, storage.ValuesOf(cols, s.Values), capBytes)
	if err != nil {
		return "", err
	}
	e.log.Debug("Row inserted", "table", s.TableName, "page", page.Index, "cap", capBytes)
	return "INSERT 1", nil
}

// valuesAsColumns names each column after its own value. It is used only
// when an INSERT without a column list targets a table with no stored
// header, so the first row defines a header equal to its values.
func valuesAsColumns(values []string) []string {
	return append([]string(nil), values...)
}

func (e *Executor) executeUpdate(s *UpdateStmt) (string, error) {
	dir, err := e.tableDir(s.TableName)
	if err != nil {
		return "", err
	}
	changes := make(map[string]string, len(s.Updates))
	for _, a := range s.Updates {
		changes[a.Column] = a.Value
	}
	n, err := e.engine.Update(dir, BuildPredicate(s.Where, e.engine.Collator()), changes)
	if err != nil {
		return "", err
	}
	return "UPDATE " + strconv.Itoa(n), nil
}

func (e *Executor) executeDelete(s *DeleteStmt) (string, error) {
	dir, err := e.tableDir(s.TableName)
	if err != nil {
		return "", err
	}
	n, err := e.engine.Delete(dir, BuildPredicate(s.Where, e.engine.Collator()))
	if err != nil {
		return "", err
	}
	return "DELETE " + strconv.Itoa(n), nil
}

// ============================================================================
// Queries
// ============================================================================

func (e *Executor) executeSelect(s *SelectStmt) (string, error) {
	dir, err := e.tableDir(s.TableName)
	if err != nil {
		return "", err
	}
	result, err := e.engine.Select(dir, BuildPredicate(s.Where, e.engine.Collator()), s.OrderBy)
	if err != nil {
		return "", err
	}

	if !s.IsStar() {
		result = project(result, s.Columns)
	}
	result.Rows = window(result.Rows, s.Offset, s.Limit)
	return RenderTable(result), nil
}

// window applies OFFSET then LIMIT, clamping both to the rows available.
// Negative values mean absent.
func window(rows []storage.Row, offset, limit int) []storage.Row {
	start := 0
	if offset > 0 {
		start = min(offset, len(rows))
	}
	end := len(rows)
	if limit >= 0 {
		end = min(start+limit, len(rows))
	}
	return rows[start:end]
}

// project builds a table with the requested columns. Unknown columns read
// as "".
func project(t *storage.Table, columns []string) *storage.Table {
	out := &storage.Table{Columns: columns, Rows: make([]storage.Row, 0, len(t.Rows))}
	for _, row := range t.Rows {
		r := make(storage.Row, len(columns))
		for _, c := range columns {
			r[c] = row.Get(c)
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

func (e *Executor) executeJoin(s *SelectJoinStmt) (string, error) {
	leftDir, err := e.tableDir(s.LeftTable)
	if err != nil {
		return "", err
	}
	rightDir, err := e.tableDir(s.RightTable)
	if err != nil {
		return "", err
	}
	left, err := e.engine.LoadTable(leftDir)
	if err != nil {
		return "", err
	}
	right, err := e.engine.LoadTable(rightDir)
	if err != nil {
		return "", err
	}

	joined := storage.Join(left, right, s.LeftColumn, s.RightColumn)
	e.log.Debug("Join complete", "left", s.LeftTable, "right", s.RightTable,
		"pairs", len(left.Rows)*len(right.Rows), "rows", len(joined.Rows))
	return RenderTable(joined), nil
}
