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
Package banner provides the startup banner of the PageDB shell.

Banner Display Overview:
========================

The ASCII art logo is embedded from banner.txt at compile time with the
//go:embed directive, so the binary needs no files at runtime. Below the
logo the shell prints its version and a short summary of the storage
settings it started with.

ANSI Color Codes:
=================

Colors use ANSI escape sequences of the form \033[<code>m. Callers pass
color=false when output is not a terminal and the codes are omitted.

Usage:
======

	banner.PrintWithConfig(os.Stdout, cfg, term.IsTerminal(int(os.Stdout.Fd())))
*/
package banner

import (
	_ "embed" // Required for the //go:embed directive
	"fmt"
	"io"
	"strings"

	"pagedb/internal/config"
)

// banner contains the ASCII art logo loaded from banner.txt.
//
//go:embed banner.txt
var banner string

// ANSI escape codes for terminal text formatting.
const (
	AnsiRed    = "\033[31m"
	AnsiGreen  = "\033[32m"
	AnsiYellow = "\033[33m"
	AnsiCyan   = "\033[36m"
	AnsiReset  = "\033[0m"
	AnsiBold   = "\033[1m"
	AnsiDim    = "\033[2m"
)

// Version information for PageDB.
const (
	Version   = "01.26.14"
	Copyright = "(c)2026 Firefly Software Solutions Inc"
	License   = "Licensed under Apache 2.0"
)

// painter applies ANSI codes only when color is enabled.
type painter bool

func (p painter) paint(codes, s string) string {
	if !p {
		return s
	}
	return codes + s + AnsiReset
}

// Print writes the logo, version, and copyright to w.
func Print(w io.Writer, color bool) {
	p := painter(color)
	fmt.Fprintln(w, p.paint(AnsiRed, strings.TrimRight(banner, "\n")))
	fmt.Fprintln(w, p.paint(AnsiRed+AnsiBold, ":: PageDB ::                    (v"+Version+")"))
	fmt.Fprintln(w, p.paint(AnsiGreen+AnsiBold, Copyright))
	fmt.Fprintln(w, p.paint(AnsiGreen+AnsiBold, License))
	fmt.Fprintln(w)
}

// PrintWithConfig writes the banner followed by the storage settings.
func PrintWithConfig(w io.Writer, cfg *config.Config, color bool) {
	Print(w, color)
	p := painter(color)

	fmt.Fprint(w, "  "+p.paint(AnsiDim, "Config: "))
	if cfg.ConfigFile != "" {
		fmt.Fprintln(w, p.paint(AnsiYellow, cfg.ConfigFile))
	} else {
		fmt.Fprintln(w, p.paint(AnsiDim, "defaults + environment"))
	}
	fmt.Fprintln(w)

	printSectionHeader(w, p, "Storage", 78)
	printRow3(w,
		fmtKV(p, "Data", cfg.DataDir),
		fmtKV(p, "Page", fmt.Sprintf("%d KB", cfg.PageSizeKB)),
		fmtKV(p, "Log", cfg.LogLevel))
	printRow3(w,
		fmtKV(p, "Encoding", cfg.Encoding),
		fmtKV(p, "Collation", cfg.Collation),
		fmtKV(p, "Locale", cfg.Locale))
	fmt.Fprintln(w)
}

func printSectionHeader(w io.Writer, p painter, title string, width int) {
	titleLen := len(title) + 4 // "[ title ]"
	leftPad := 2
	rightPad := width - leftPad - titleLen
	if rightPad < 0 {
		rightPad = 0
	}
	fmt.Fprintf(w, "  %s[ %s ]%s\n",
		p.paint(AnsiDim, strings.Repeat("-", leftPad)),
		p.paint(AnsiCyan+AnsiBold, title),
		p.paint(AnsiDim, strings.Repeat("-", rightPad)))
}

func fmtKV(p painter, key, value string) string {
	return p.paint(AnsiDim, key+":") + " " + value
}

func printRow3(w io.Writer, col1, col2, col3 string) {
	fmt.Fprintf(w, "  %-32s %-26s %s\n", col1, col2, col3)
}
