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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pagedb/internal/errors"
	"pagedb/internal/logging"
)

// Executor runs one statement and returns the text to display. Errors
// are part of the returned text.
type Executor interface {
	ExecuteSQL(source, text string) string
}

// maxLineBytes bounds a single script line.
const maxLineBytes = 1 << 20

// RunScript reads every statement from r, then runs them in order. Each
// statement is echoed as ">>> <stmt>" before its result, and "Done." is
// written at the end. A failing statement does not stop the script.
func RunScript(exec Executor, r io.Reader, source string, w io.Writer, log logging.Sink) error {
	log = logging.OrNop(log)

	var splitter Splitter
	var stmts []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		stmts = append(stmts, splitter.Feed(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return errors.IOError("read script", source, err)
	}
	if rest := splitter.Flush(); rest != "" {
		stmts = append(stmts, rest)
	}

	log.Info("Running script", "source", source, "statements", len(stmts))
	for _, stmt := range stmts {
		fmt.Fprintf(w, ">>> %s\n", stmt)
		fmt.Fprintln(w, exec.ExecuteSQL(source, stmt))
	}
	fmt.Fprintln(w, "Done.")
	return nil
}

// RunFile runs the script at path with RunScript.
func RunFile(exec Executor, path string, w io.Writer, log logging.Sink) error {
	f, err := os.Open(path)
	if err != nil {
		abs, _ := filepath.Abs(path)
		if os.IsNotExist(err) {
			return errors.ScriptNotFound(abs).WithCause(err)
		}
		return errors.IOError("open script", abs, err)
	}
	defer f.Close()
	return RunScript(exec, f, path, w, log)
}
