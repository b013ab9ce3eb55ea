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

package shell

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"pagedb/internal/errors"
)

type recordingExecutor struct {
	stmts []string
}

func (e *recordingExecutor) ExecuteSQL(source, text string) string {
	e.stmts = append(e.stmts, text)
	return "ok: " + text
}

type fixedDatabase string

func (d fixedDatabase) CurrentDatabase() (string, bool) {
	return string(d), d != ""
}

func TestSplitStatements(t *testing.T) {
	script := `
-- setup
CREATE TABLE people (id, name); -- trailing comment
INSERT INTO people
  VALUES (1, 'a;b');

INSERT INTO people VALUES (2, 'x -- y');
SELECT * FROM people`

	got := SplitStatements(script)
	want := []string{
		"CREATE TABLE people (id, name)",
		"INSERT INTO people VALUES (1, 'a;b')",
		"INSERT INTO people VALUES (2, 'x -- y')",
		"SELECT * FROM people",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitStatements:\n%q\nwant\n%q", got, want)
	}
}

func TestSplitterSkipsEmptyStatements(t *testing.T) {
	var s Splitter
	if got := s.Feed(";;  ;"); len(got) != 0 {
		t.Errorf("Expected no statements, got %q", got)
	}
	if s.Pending() {
		t.Error("Expected nothing pending")
	}
}

func TestSplitterPendingAndFlush(t *testing.T) {
	var s Splitter
	s.Feed("SELECT *")
	if !s.Pending() {
		t.Fatal("Expected pending statement")
	}
	s.Feed("FROM t")
	if got := s.Flush(); got != "SELECT * FROM t" {
		t.Errorf("Expected joined statement, got %q", got)
	}
	if s.Pending() {
		t.Error("Expected empty buffer after Flush")
	}
}

func TestRunScript(t *testing.T) {
	exec := &recordingExecutor{}
	var out bytes.Buffer
	script := "CREATE DATABASE a;\nUSE a;\n-- comment only\nSHOW TABLES"

	if err := RunScript(exec, strings.NewReader(script), "test.sql", &out, nil); err != nil {
		t.Fatalf("RunScript failed: %v", err)
	}

	want := ">>> CREATE DATABASE a\nok: CREATE DATABASE a\n" +
		">>> USE a\nok: USE a\n" +
		">>> SHOW TABLES\nok: SHOW TABLES\n" +
		"Done.\n"
	if out.String() != want {
		t.Errorf("Output:\n%q\nwant\n%q", out.String(), want)
	}
}

func TestRunFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.sql")
	err := RunFile(&recordingExecutor{}, path, &bytes.Buffer{}, nil)
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if errors.GetCode(err) != errors.ErrCodeScriptNotFound {
		t.Errorf("Expected ErrCodeScriptNotFound, got %v", err)
	}
	if !strings.Contains(errors.FormatError(err), "SQL file not found: "+path) {
		t.Errorf("Unexpected message %q", errors.FormatError(err))
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.sql")
	if err := os.WriteFile(path, []byte("SHOW DATABASES;\n"), 0644); err != nil {
		t.Fatal(err)
	}
	exec := &recordingExecutor{}
	var out bytes.Buffer
	if err := RunFile(exec, path, &out, nil); err != nil {
		t.Fatalf("RunFile failed: %v", err)
	}
	if !reflect.DeepEqual(exec.stmts, []string{"SHOW DATABASES"}) {
		t.Errorf("Unexpected statements %q", exec.stmts)
	}
}

func TestREPLImmediateAndBuffered(t *testing.T) {
	exec := &recordingExecutor{}
	var out bytes.Buffer
	r := NewREPL(exec, fixedDatabase(""), &out, "", nil)

	input := "SHOW DATABASES\n" +
		"USE a; SELECT *\n" +
		"FROM t;\n" +
		"exit\n" +
		"SHOW TABLES\n"
	if err := r.Run(strings.NewReader(input), false); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"SHOW DATABASES", "USE a", "SELECT * FROM t"}
	if !reflect.DeepEqual(exec.stmts, want) {
		t.Errorf("Executed:\n%q\nwant\n%q", exec.stmts, want)
	}
	if !strings.HasSuffix(out.String(), "Goodbye!\n") {
		t.Errorf("Expected Goodbye at end, got %q", out.String())
	}
}

func TestREPLHelpAndExitCaseInsensitive(t *testing.T) {
	exec := &recordingExecutor{}
	var out bytes.Buffer
	r := NewREPL(exec, fixedDatabase(""), &out, "", nil)

	if err := r.Run(strings.NewReader("\n-h\nEXIT\n"), false); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(exec.stmts) != 0 {
		t.Errorf("Expected no statements, got %q", exec.stmts)
	}
	if !strings.Contains(out.String(), "Supported statements:") {
		t.Error("Expected help text")
	}
}

func TestREPLPrompt(t *testing.T) {
	r := NewREPL(&recordingExecutor{}, fixedDatabase(""), &bytes.Buffer{}, "", nil)
	if got := r.Prompt(); got != "db> " {
		t.Errorf("Expected %q, got %q", "db> ", got)
	}

	r = NewREPL(&recordingExecutor{}, fixedDatabase("shop"), &bytes.Buffer{}, "", nil)
	if got := r.Prompt(); got != "shop> " {
		t.Errorf("Expected %q, got %q", "shop> ", got)
	}
	r.handleLine("SELECT * FROM t; SELECT")
	if got := r.Prompt(); got != "...> " {
		t.Errorf("Expected continuation prompt, got %q", got)
	}
}

func TestREPLShowsPrompts(t *testing.T) {
	var out bytes.Buffer
	r := NewREPL(&recordingExecutor{}, fixedDatabase(""), &out, "", nil)
	if err := r.Run(strings.NewReader("exit\n"), true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "PageDB shell.") || !strings.Contains(got, "db> ") {
		t.Errorf("Unexpected interactive output %q", got)
	}
}

type fakeStats struct{}

func (fakeStats) WriteText(w io.Writer) {
	fmt.Fprintln(w, "pagedb_statements_total 7")
}

func TestREPLStats(t *testing.T) {
	var out bytes.Buffer
	r := NewREPL(&recordingExecutor{}, fixedDatabase(""), &out, "", nil)
	if err := r.Run(strings.NewReader("stats\n"), false); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Statistics are not enabled.") {
		t.Errorf("Unexpected output %q", out.String())
	}

	out.Reset()
	r.SetStats(fakeStats{})
	if err := r.Run(strings.NewReader("STATS\n"), false); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "pagedb_statements_total 7") {
		t.Errorf("Unexpected output %q", out.String())
	}
}
