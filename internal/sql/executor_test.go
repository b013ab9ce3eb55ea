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
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"pagedb/internal/cache"
	"pagedb/internal/catalog"
	"pagedb/internal/config"
	"pagedb/internal/errors"
	"pagedb/internal/metrics"
	"pagedb/internal/session"
	"pagedb/internal/storage"
)

type executorFixture struct {
	exec    *Executor
	catalog *catalog.Catalog
	session *session.Session
	engine  *storage.TableEngine
}

func setupExecutorTest(t *testing.T) *executorFixture {
	t.Helper()
	cat, err := catalog.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}
	sess := session.New()
	engine := storage.NewTableEngine(nil, nil, nil)
	exec := NewExecutor(cat, sess, engine, config.FixedPageSize(64*1024), nil)
	return &executorFixture{exec: exec, catalog: cat, session: sess, engine: engine}
}

// run executes each statement and fails the test on the first error.
func (f *executorFixture) run(t *testing.T, stmts ...string) string {
	t.Helper()
	var out string
	for _, text := range stmts {
		stmt, err := Parse(text, nil)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", text, err)
		}
		out, err = f.exec.Execute(stmt)
		if err != nil {
			t.Fatalf("Execute(%q) failed: %v", text, err)
		}
	}
	return out
}

func (f *executorFixture) runErr(t *testing.T, text string) error {
	t.Helper()
	stmt, err := Parse(text, nil)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", text, err)
	}
	_, err = f.exec.Execute(stmt)
	return err
}

// selectRows runs a SELECT * and returns the stored rows directly.
func (f *executorFixture) selectRows(t *testing.T, table string) []storage.Row {
	t.Helper()
	db, _ := f.session.CurrentDatabase()
	res, err := f.engine.Select(f.catalog.TableDir(db, table), nil, nil)
	if err != nil {
		t.Fatalf("Select(%s) failed: %v", table, err)
	}
	return res.Rows
}

func setupPeople(t *testing.T) *executorFixture {
	f := setupExecutorTest(t)
	f.run(t,
		"CREATE DATABASE shop",
		"USE shop",
		"CREATE TABLE people (id, name, city_id, age)",
		"INSERT INTO people VALUES (1, 'Alice', 10, 30)",
		"INSERT INTO people VALUES (2, 'Bob', 10, 25)",
		"INSERT INTO people VALUES (3, 'Carol', 20, 35)",
		"CREATE TABLE cities (id, name)",
		"INSERT INTO cities VALUES (10, 'Paris')",
		"INSERT INTO cities VALUES (20, 'Oslo')",
	)
	return f
}

func TestExecutorDatabaseLifecycle(t *testing.T) {
	f := setupExecutorTest(t)

	if out := f.run(t, "SELECT DATABASE"); out != "No database selected." {
		t.Errorf("Unexpected output %q", out)
	}
	if out := f.run(t, "CREATE DATABASE shop"); out != "Database created: shop" {
		t.Errorf("Unexpected output %q", out)
	}
	if err := f.runErr(t, "CREATE DATABASE shop"); errors.GetCode(err) != errors.ErrCodeAlreadyExists {
		t.Errorf("Expected already exists, got %v", err)
	}
	if out := f.run(t, "USE shop"); out != "Using database: shop" {
		t.Errorf("Unexpected output %q", out)
	}
	if out := f.run(t, "SELECT DATABASE"); out != "Current database: shop" {
		t.Errorf("Unexpected output %q", out)
	}
	if err := f.runErr(t, "USE nowhere"); !errors.IsNotFound(err) {
		t.Errorf("Expected database not found, got %v", err)
	}

	f.run(t, "CREATE DATABASE hr")
	if out := f.run(t, "SHOW DATABASES"); out != "hr\nshop" {
		t.Errorf("Unexpected SHOW DATABASES output %q", out)
	}

	if out := f.run(t, "DROP DATABASE shop"); out != "Database dropped: shop" {
		t.Errorf("Unexpected output %q", out)
	}
	if _, ok := f.session.CurrentDatabase(); ok {
		t.Error("Dropping the current database should clear the session")
	}
	if err := f.runErr(t, "DROP DATABASE shop"); !errors.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestExecutorShowTables(t *testing.T) {
	f := setupExecutorTest(t)
	if err := f.runErr(t, "SHOW TABLES"); errors.GetCode(err) != errors.ErrCodeNoDatabaseSelected {
		t.Errorf("Expected no database selected, got %v", err)
	}

	f.run(t, "CREATE DATABASE shop", "CREATE DATABASE hr", "USE shop")
	if out := f.run(t, "SHOW TABLES"); out != EmptyResult {
		t.Errorf("Expected empty listing, got %q", out)
	}
	f.run(t, "CREATE TABLE people (id)", "CREATE TABLE Cities (id)")
	if out := f.run(t, "SHOW TABLES"); out != "Cities\npeople" {
		t.Errorf("Unexpected SHOW TABLES output %q", out)
	}
	if out := f.run(t, "SHOW TABLES FROM hr"); out != EmptyResult {
		t.Errorf("Unexpected SHOW TABLES FROM output %q", out)
	}
}

func TestExecutorCreateTable(t *testing.T) {
	f := setupExecutorTest(t)
	if err := f.runErr(t, "CREATE TABLE people (id)"); errors.GetCode(err) != errors.ErrCodeNoDatabaseSelected {
		t.Errorf("Expected no database selected, got %v", err)
	}

	f.run(t, "CREATE DATABASE shop", "USE shop")
	if out := f.run(t, "CREATE TABLE people (id, name)"); out != "Table created: people" {
		t.Errorf("Unexpected output %q", out)
	}

	data, err := os.ReadFile(filepath.Join(f.catalog.TableDir("shop", "people"), "page_0.csv"))
	if err != nil {
		t.Fatalf("page_0.csv missing: %v", err)
	}
	if string(data) != "id,name\n" {
		t.Errorf("Unexpected page_0.csv %q", data)
	}

	if err := f.runErr(t, "CREATE TABLE people (id)"); errors.GetCode(err) != errors.ErrCodeAlreadyExists {
		t.Errorf("Expected already exists, got %v", err)
	}
	if err := f.runErr(t, "CREATE TABLE dup (a, a)"); !errors.IsExecutionError(err) {
		t.Errorf("Expected duplicate column error, got %v", err)
	}

	if out := f.run(t, "DROP TABLE people"); out != "Table dropped: people" {
		t.Errorf("Unexpected output %q", out)
	}
	if err := f.runErr(t, "SELECT * FROM people"); errors.GetCode(err) != errors.ErrCodeTableNotFound {
		t.Errorf("Expected table not found, got %v", err)
	}
}

func TestExecutorInsertAndSelect(t *testing.T) {
	f := setupExecutorTest(t)
	f.run(t, "CREATE DATABASE shop", "USE shop", "CREATE TABLE people (id, name, age)")

	if out := f.run(t, "INSERT INTO people (name, id, nickname) VALUES ('Alice', 1, 'Al')"); out != "INSERT 1" {
		t.Errorf("Expected 'INSERT 1', got %q", out)
	}

	rows := f.selectRows(t, "people")
	want := []storage.Row{{"id": "1", "name": "Alice", "age": ""}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Expected %v, got %v", want, rows)
	}

	out := f.run(t, "SELECT * FROM people")
	expected := "id   name   age\n" +
		"---  -----  ---\n" +
		"1    Alice     "
	if out != expected {
		t.Errorf("Unexpected render:\n%s\nwant:\n%s", out, expected)
	}
}

func TestExecutorUpdate(t *testing.T) {
	f := setupPeople(t)

	if out := f.run(t, "UPDATE people SET age = 26 WHERE city_id = 10"); out != "UPDATE 2" {
		t.Errorf("Expected 'UPDATE 2', got %q", out)
	}

	rows := f.selectRows(t, "people")
	ages := []string{rows[0]["age"], rows[1]["age"], rows[2]["age"]}
	if want := []string{"26", "26", "35"}; !reflect.DeepEqual(ages, want) {
		t.Errorf("Expected ages %v, got %v", want, ages)
	}

	// unknown target columns are ignored
	if out := f.run(t, "UPDATE people SET shoe = 9 WHERE id = 3"); out != "UPDATE 1" {
		t.Errorf("Expected 'UPDATE 1', got %q", out)
	}
	if _, ok := f.selectRows(t, "people")[2]["shoe"]; ok {
		t.Error("Unknown column should not be added")
	}
}

func TestExecutorDelete(t *testing.T) {
	f := setupPeople(t)

	if out := f.run(t, "DELETE FROM people WHERE name = 'Bob'"); out != "DELETE 1" {
		t.Errorf("Expected 'DELETE 1', got %q", out)
	}
	rows := f.selectRows(t, "people")
	if len(rows) != 2 || rows[0]["name"] != "Alice" || rows[1]["name"] != "Carol" {
		t.Errorf("Unexpected rows after delete: %v", rows)
	}

	if out := f.run(t, "DELETE FROM people"); out != "DELETE 2" {
		t.Errorf("Expected 'DELETE 2', got %q", out)
	}
	if out := f.run(t, "SELECT * FROM people"); out != EmptyResult {
		t.Errorf("Expected %q, got %q", EmptyResult, out)
	}
}

func TestExecutorSelectOrderLimitOffset(t *testing.T) {
	f := setupPeople(t)

	out := f.run(t, "SELECT name FROM people ORDER BY age")
	if want := "name \n-----\nBob  \nAlice\nCarol"; out != want {
		t.Errorf("ORDER BY age:\n%q\nwant\n%q", out, want)
	}

	out = f.run(t, "SELECT name FROM people ORDER BY age LIMIT 1 OFFSET 1")
	if want := "name \n-----\nAlice"; out != want {
		t.Errorf("LIMIT/OFFSET:\n%q\nwant\n%q", out, want)
	}

	if out := f.run(t, "SELECT name FROM people OFFSET 10"); out != EmptyResult {
		t.Errorf("Expected empty result past the end, got %q", out)
	}
	if out := f.run(t, "SELECT name FROM people LIMIT 0"); out != EmptyResult {
		t.Errorf("Expected empty result for LIMIT 0, got %q", out)
	}
}

func TestExecutorSelectWhere(t *testing.T) {
	f := setupPeople(t)

	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT id FROM people WHERE age > 28", "id \n---\n1  \n3  "},
		{"SELECT id FROM people WHERE age <= 25", "id \n---\n2  "},
		{"SELECT id FROM people WHERE name != 'Alice'", "id \n---\n2  \n3  "},
		{"SELECT id FROM people WHERE name = 'Zed'", EmptyResult},
		{"SELECT id FROM people WHERE missing = ''", "id \n---\n1  \n2  \n3  "},
	}
	for _, tt := range tests {
		if out := f.run(t, tt.sql); out != tt.want {
			t.Errorf("%s:\n%q\nwant\n%q", tt.sql, out, tt.want)
		}
	}
}

func TestExecutorSelectProjectsUnknownColumns(t *testing.T) {
	f := setupPeople(t)
	out := f.run(t, "SELECT id, shoe FROM people WHERE id = 1")
	if want := "id   shoe\n---  ----\n1        "; out != want {
		t.Errorf("Got %q, want %q", out, want)
	}
}

func TestExecutorJoin(t *testing.T) {
	f := setupPeople(t)
	f.run(t, "INSERT INTO people VALUES (4, 'Dan', 99, 40)")

	out := f.run(t, "SELECT * FROM people JOIN cities ON people.city_id = cities.id")
	lines := strings.Split(out, "\n")
	if len(lines) != 2+3 {
		t.Fatalf("Expected header, separator and 3 rows, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], "left.id") || !strings.Contains(lines[0], "right.name") {
		t.Errorf("Unexpected join header %q", lines[0])
	}

	for _, text := range []string{
		"SELECT * FROM people JOIN cities ON cities.id = people.city_id",
		"SELECT * FROM people JOIN cities ON city_id = id",
		"SELECT people.name, cities.name FROM people JOIN cities ON city_id = id",
	} {
		if got := f.run(t, text); got != out {
			t.Errorf("%s:\n%s\nwant:\n%s", text, got, out)
		}
	}

	out = f.run(t, "SELECT * FROM people JOIN cities ON age = name")
	if out != EmptyResult {
		t.Errorf("Expected empty join, got %q", out)
	}

	if err := f.runErr(t, "SELECT * FROM people JOIN cities ON towns.id = city_id"); errors.GetCode(err) != errors.ErrCodeMalformedClause {
		t.Errorf("Expected malformed ON clause, got %v", err)
	}
}

func TestExecutorJoinDuplicateKeys(t *testing.T) {
	f := setupExecutorTest(t)
	f.run(t,
		"CREATE DATABASE shop",
		"USE shop",
		"CREATE TABLE l (k, v)",
		"INSERT INTO l VALUES (1, 'a')",
		"INSERT INTO l VALUES (1, 'b')",
		"CREATE TABLE r (k, w)",
		"INSERT INTO r VALUES (1, 'x')",
		"INSERT INTO r VALUES (1, 'y')",
		"INSERT INTO r VALUES (1, 'z')",
	)

	out := f.run(t, "SELECT * FROM l JOIN r ON l.k = r.k")
	lines := strings.Split(out, "\n")
	if len(lines) != 2+2*3 {
		t.Fatalf("Expected 6 joined rows, got:\n%s", out)
	}
	var pairs []string
	for _, line := range lines[2:] {
		fields := strings.Fields(line)
		pairs = append(pairs, fields[1]+fields[3])
	}
	want := []string{"ax", "ay", "az", "bx", "by", "bz"}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("Expected left-major pairs %v, got %v", want, pairs)
	}
}

func TestJoinSkipsUnmatchedRows(t *testing.T) {
	left := &storage.Table{Columns: []string{"city_id"}, Rows: []storage.Row{
		{"city_id": "10"}, {"city_id": "20"}, {"city_id": "99"},
	}}
	right := &storage.Table{Columns: []string{"id"}, Rows: []storage.Row{
		{"id": "10"}, {"id": "20"},
	}}
	if got := storage.Join(left, right, "city_id", "id"); len(got.Rows) != 2 {
		t.Errorf("Expected 2 joined rows, got %d", len(got.Rows))
	}
}

func TestExecutorTableStatementsNeedDatabase(t *testing.T) {
	f := setupExecutorTest(t)
	for _, text := range []string{
		"INSERT INTO t VALUES (1)",
		"UPDATE t SET a = 1",
		"DELETE FROM t",
		"SELECT * FROM t",
		"SELECT * FROM t JOIN u ON a = b",
		"DROP TABLE t",
	} {
		if err := f.runErr(t, text); errors.GetCode(err) != errors.ErrCodeNoDatabaseSelected {
			t.Errorf("%s: expected no database selected, got %v", text, err)
		}
	}
}

func TestExecutorMissingTable(t *testing.T) {
	f := setupExecutorTest(t)
	f.run(t, "CREATE DATABASE shop", "USE shop")
	for _, text := range []string{
		"UPDATE ghost SET a = 1",
		"DELETE FROM ghost",
		"SELECT * FROM ghost",
		"DROP TABLE ghost",
	} {
		if err := f.runErr(t, text); errors.GetCode(err) != errors.ErrCodeTableNotFound {
			t.Errorf("%s: expected table not found, got %v", text, err)
		}
	}
}

func TestExecutorInsertCreatesTable(t *testing.T) {
	f := setupExecutorTest(t)
	f.run(t, "CREATE DATABASE shop", "USE shop",
		"INSERT INTO notes (id, body) VALUES (1, 'hello')")

	if !f.catalog.TableExists("shop", "notes") {
		t.Fatal("INSERT should create a missing table")
	}
	rows := f.selectRows(t, "notes")
	if want := []storage.Row{{"id": "1", "body": "hello"}}; !reflect.DeepEqual(rows, want) {
		t.Errorf("Expected %v, got %v", want, rows)
	}
}

// An INSERT with no column list into a table with no stored header names
// each column after its value.
func TestExecutorInsertValuesAsColumns(t *testing.T) {
	f := setupExecutorTest(t)
	f.run(t, "CREATE DATABASE shop", "USE shop", "INSERT INTO raw VALUES (7, 'x')")

	db, _ := f.session.CurrentDatabase()
	table, err := f.engine.LoadTable(f.catalog.TableDir(db, "raw"))
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	if want := []string{"7", "x"}; !reflect.DeepEqual(table.Columns, want) {
		t.Errorf("Expected header %v, got %v", want, table.Columns)
	}
	if want := []storage.Row{{"7": "7", "x": "x"}}; !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("Expected rows %v, got %v", want, table.Rows)
	}
	if got := valuesAsColumns([]string{"a", "b"}); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("valuesAsColumns = %v", got)
	}
}

func TestExecutorInsertRollsOverPages(t *testing.T) {
	f := setupExecutorTest(t)
	f.exec.pageSize = config.FixedPageSize(16)
	f.run(t, "CREATE DATABASE shop", "USE shop", "CREATE TABLE t (v)")
	for i := 0; i < 4; i++ {
		f.run(t, "INSERT INTO t VALUES ('abcdef')")
	}

	pages, err := f.engine.ListPages(f.catalog.TableDir("shop", "t"))
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) < 2 {
		t.Errorf("Expected a rollover, got %d pages", len(pages))
	}
	if n := len(f.selectRows(t, "t")); n != 4 {
		t.Errorf("Expected 4 rows across pages, got %d", n)
	}
}

func TestExecuteSQLRendersErrors(t *testing.T) {
	f := setupExecutorTest(t)

	out := f.exec.ExecuteSQL("test", "SELECT * FROM t WHERE")
	if !strings.HasPrefix(out, "ERROR: malformed WHERE clause") {
		t.Errorf("Unexpected parse error output %q", out)
	}
	out = f.exec.ExecuteSQL("test", "SELECT * FROM t")
	if !strings.HasPrefix(out, "ERROR: no database selected") {
		t.Errorf("Unexpected execute error output %q", out)
	}
	out = f.exec.ExecuteSQL("test", "x = 'open")
	if !strings.Contains(out, "unterminated string literal") {
		t.Errorf("Unexpected lex error output %q", out)
	}
	if out := f.exec.ExecuteSQL("test", "CREATE DATABASE ok"); out != "Database created: ok" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestExecuteSQLResultCache(t *testing.T) {
	f := setupPeople(t)
	rc := cache.New(cache.Config{MaxEntries: 16, TTL: time.Minute})
	f.exec.SetResultCache(rc)

	query := "SELECT name FROM people WHERE age > 26"
	first := f.exec.ExecuteSQL("test", query)
	if second := f.exec.ExecuteSQL("test", query); second != first {
		t.Fatalf("Cached output differs:\n%s\n%s", first, second)
	}
	if stats := rc.Stats(); stats.Hits != 1 || stats.Entries != 1 {
		t.Fatalf("Expected one hit and one entry, got %+v", stats)
	}

	// A write to the table must not leave a stale result behind.
	f.exec.ExecuteSQL("test", "INSERT INTO people VALUES (4, 'Dan', 20, 40)")
	third := f.exec.ExecuteSQL("test", query)
	if !strings.Contains(third, "Dan") {
		t.Errorf("Expected fresh result after INSERT, got:\n%s", third)
	}

	// Writes to another table keep the entry.
	f.exec.ExecuteSQL("test", "INSERT INTO cities VALUES (30, 'Rome')")
	f.exec.ExecuteSQL("test", query)
	if stats := rc.Stats(); stats.Hits != 2 {
		t.Errorf("Expected a hit after unrelated write, got %+v", stats)
	}

	f.exec.ExecuteSQL("test", "DROP DATABASE shop")
	if stats := rc.Stats(); stats.Entries != 0 {
		t.Errorf("Expected DROP DATABASE to clear the cache, got %+v", stats)
	}
}

func TestExecuteSQLRecordsStatements(t *testing.T) {
	f := setupExecutorTest(t)
	m := metrics.New()
	f.exec.SetRecorder(m)

	f.exec.ExecuteSQL("test", "CREATE DATABASE a")
	f.exec.ExecuteSQL("test", "SELECT * FROM t")
	f.exec.ExecuteSQL("test", "FROB")

	if got := m.StatementsTotal.Load(); got != 3 {
		t.Errorf("Expected 3 statements, got %d", got)
	}
	if got := m.StatementsFailed.Load(); got != 2 {
		t.Errorf("Expected 2 failures, got %d", got)
	}
	byType := m.ByType()
	if byType["CREATE DATABASE"] != 1 || byType["SELECT"] != 1 || byType["INVALID"] != 1 {
		t.Errorf("Unexpected counters %v", byType)
	}
}
