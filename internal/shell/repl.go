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
	"strings"

	"github.com/chzyer/readline"

	"pagedb/internal/logging"
)

// DatabaseSource reports the selected database for the prompt.
type DatabaseSource interface {
	CurrentDatabase() (string, bool)
}

// StatsWriter renders execution statistics for the "stats" command.
type StatsWriter interface {
	WriteText(w io.Writer)
}

// REPL reads statements from a terminal or a stream and prints results.
//
// A line typed at an empty buffer that contains no ';' runs at once. Any
// other input is buffered until ';' completes a statement, and the prompt
// switches to "...> " while a statement is pending.
type REPL struct {
	exec        Executor
	db          DatabaseSource
	out         io.Writer
	historyFile string
	log         logging.Sink
	stats       StatsWriter

	splitter Splitter
}

// NewREPL creates a REPL writing to out. historyFile may be empty to
// disable persistent history.
func NewREPL(exec Executor, db DatabaseSource, out io.Writer, historyFile string, log logging.Sink) *REPL {
	return &REPL{
		exec:        exec,
		db:          db,
		out:         out,
		historyFile: historyFile,
		log:         logging.OrNop(log),
	}
}

// SetStats enables the "stats" command.
func (r *REPL) SetStats(s StatsWriter) {
	r.stats = s
}

// Completions lists the statement prefixes offered by tab completion.
var Completions = []string{
	"CREATE DATABASE ",
	"CREATE TABLE ",
	"DROP DATABASE ",
	"DROP TABLE ",
	"USE ",
	"SHOW DATABASES",
	"SHOW TABLES",
	"SHOW TABLES FROM ",
	"SELECT DATABASE",
	"SELECT * FROM ",
	"INSERT INTO ",
	"UPDATE ",
	"DELETE FROM ",
	"help",
	"stats",
	"exit",
}

func createCompleter() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(Completions))
	for _, c := range Completions {
		items = append(items, readline.PcItem(c))
	}
	return readline.NewPrefixCompleter(items...)
}

// filterInput disables Ctrl+Z.
func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// Prompt returns "<db>> ", "db> " with no database selected, or "...> "
// while a statement is pending.
func (r *REPL) Prompt() string {
	if r.splitter.Pending() {
		return "...> "
	}
	if db, ok := r.db.CurrentDatabase(); ok {
		return db + "> "
	}
	return "db> "
}

func (r *REPL) greet() {
	fmt.Fprintln(r.out, "PageDB shell. Type 'help' for help, 'exit' to quit.")
}

func (r *REPL) goodbye() {
	fmt.Fprintln(r.out, "Goodbye!")
}

// RunTerminal runs the REPL with line editing, history, and completion.
// If the terminal cannot be set up it falls back to a plain prompt on
// stdin.
func (r *REPL) RunTerminal(stdin io.Reader) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.Prompt(),
		HistoryFile:     r.historyFile,
		AutoComplete:    createCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		r.log.Warn("Line editing unavailable", "error", err)
		return r.Run(stdin, true)
	}
	defer rl.Close()

	r.greet()
	for {
		rl.SetPrompt(r.Prompt())
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if r.splitter.Pending() {
				r.splitter.Reset()
				continue
			}
			fmt.Fprintln(r.out, "(Type 'exit' or press Ctrl+D to quit)")
			continue
		}
		if err != nil {
			if err != io.EOF {
				r.log.Error("Read failed", "error", err)
			}
			break
		}
		if r.handleLine(line) {
			break
		}
	}
	r.goodbye()
	return nil
}

// Run reads lines from in until EOF or "exit". Prompts are written only
// when showPrompt is set.
func (r *REPL) Run(in io.Reader, showPrompt bool) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if showPrompt {
		r.greet()
	}
	for {
		if showPrompt {
			fmt.Fprint(r.out, r.Prompt())
		}
		if !scanner.Scan() {
			if showPrompt {
				fmt.Fprintln(r.out)
			}
			break
		}
		if r.handleLine(scanner.Text()) {
			break
		}
	}
	r.goodbye()
	return scanner.Err()
}

// handleLine processes one input line and reports whether to quit.
func (r *REPL) handleLine(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	if !r.splitter.Pending() {
		switch strings.ToLower(input) {
		case "exit":
			return true
		case "help", "--help", "-h":
			fmt.Fprintln(r.out, HelpText)
			return false
		case "stats":
			if r.stats == nil {
				fmt.Fprintln(r.out, "Statistics are not enabled.")
			} else {
				r.stats.WriteText(r.out)
			}
			return false
		}
	}

	wasPending := r.splitter.Pending()
	stmts := r.splitter.Feed(input)
	if !wasPending && len(stmts) == 0 {
		// No terminator on a fresh line: run it as is.
		if stmt := r.splitter.Flush(); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	for _, stmt := range stmts {
		fmt.Fprintln(r.out, r.exec.ExecuteSQL("repl", stmt))
	}
	return false
}
