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
Package main is the entry point for the PageDB shell.

Startup Sequence:
=================

 1. Load configuration (file, then environment, then flags)
 2. Configure logging
 3. Open the catalog under the data directory
 4. Build the table engine with the configured encoding and collation
 5. Run a script (-f), a single statement (-e), or the interactive REPL

Component Wiring:
=================

	┌──────────────┐     ┌──────────────┐     ┌──────────────┐
	│  shell.REPL  │────▶│ sql.Executor │────▶│   Catalog    │
	│  RunFile     │     │              │     └──────────────┘
	└──────────────┘     │              │     ┌──────────────┐
	                     │              │────▶│ TableEngine  │──▶ page_N.csv
	                     └──────────────┘     └──────────────┘
	                            │
	                            ▼
	                     ┌──────────────┐
	                     │   Session    │
	                     └──────────────┘
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"pagedb/internal/banner"
	"pagedb/internal/cache"
	"pagedb/internal/catalog"
	"pagedb/internal/config"
	"pagedb/internal/errors"
	"pagedb/internal/logging"
	"pagedb/internal/metrics"
	"pagedb/internal/session"
	"pagedb/internal/shell"
	"pagedb/internal/sql"
	"pagedb/internal/storage"
)

func printUsage() {
	fmt.Printf("PageDB v%s - file-backed SQL shell\n\n", banner.Version)
	fmt.Println("USAGE:")
	fmt.Println("  pagedb [options]              Start the interactive shell")
	fmt.Println("  pagedb -f <script.sql>        Run a SQL script")
	fmt.Println("  pagedb -e \"<statement>\"       Run one statement")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config <path>           Configuration file")
	fmt.Println("  -data-dir <path>         Storage root (default: ./storage)")
	fmt.Println("  -page-size-kb <n>        Page capacity in KB when no page config exists (default: 64)")
	fmt.Println("  -encoding <name>         Page file encoding: UTF8, LATIN1, ASCII")
	fmt.Println("  -collation <name>        String ordering: binary, nocase, unicode")
	fmt.Println("  -locale <tag>            Locale for the unicode collation (default: en_US)")
	fmt.Println("  -log-level <level>       Log level: debug, info, warn, error (default: warn)")
	fmt.Println("  -log-json                Enable JSON log output")
	fmt.Println("  -log-file <path>         Also write logs to this file")
	fmt.Println("  -version                 Show version information")
	fmt.Println("  -help                    Show this help message")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PAGEDB_DATA_DIR, PAGEDB_PAGE_SIZE_KB, PAGEDB_PAGE_CONFIG_FILE,")
	fmt.Println("  PAGEDB_ENCODING, PAGEDB_COLLATION, PAGEDB_LOCALE, PAGEDB_LOG_LEVEL,")
	fmt.Println("  PAGEDB_LOG_JSON, PAGEDB_LOG_FILE, PAGEDB_HISTORY_FILE, PAGEDB_CONFIG_FILE,")
	fmt.Println("  PAGEDB_RESULT_CACHE_ENTRIES")
	fmt.Println()
}

func main() {
	cfgMgr := config.NewManager()
	if err := cfgMgr.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg := cfgMgr.Get()

	configFile := flag.String("config", "", "Path to configuration file")
	dataDir := flag.String("data-dir", cfg.DataDir, "Storage root directory")
	pageSizeKB := flag.Int("page-size-kb", cfg.PageSizeKB, "Page capacity in KB")
	encoding := flag.String("encoding", cfg.Encoding, "Page file encoding")
	collation := flag.String("collation", cfg.Collation, "String collation")
	locale := flag.String("locale", cfg.Locale, "Collation locale")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	logJSON := flag.Bool("log-json", cfg.LogJSON, "Enable JSON log output")
	logFile := flag.String("log-file", cfg.LogFile, "Log file path")
	scriptFile := flag.String("f", "", "SQL script to run")
	statement := flag.String("e", "", "Statement to run")
	showVersion := flag.Bool("version", false, "Show version information")
	showHelp := flag.Bool("help", false, "Show help message")

	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("pagedb version %s\n", banner.Version)
		os.Exit(0)
	}
	if *showHelp {
		printUsage()
		os.Exit(0)
	}

	if *configFile != "" {
		if err := cfgMgr.LoadFromFile(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config file: %v\n", err)
			os.Exit(1)
		}
		cfgMgr.LoadFromEnv()
		cfg = cfgMgr.Get()
	}

	// Only flags set explicitly override file and environment values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-dir":
			cfg.DataDir = *dataDir
		case "page-size-kb":
			cfg.PageSizeKB = *pageSizeKB
		case "encoding":
			cfg.Encoding = *encoding
		case "collation":
			cfg.Collation = *collation
		case "locale":
			cfg.Locale = *locale
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-json":
			cfg.LogJSON = *logJSON
		case "log-file":
			cfg.LogFile = *logFile
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	cfgMgr.Set(cfg)

	logging.SetGlobalLevel(logging.ParseLevel(cfg.LogLevel))
	logging.SetJSONMode(cfg.LogJSON)
	var closeLog func() error
	if cfg.LogFile != "" {
		var err error
		if closeLog, err = logging.OpenFile(cfg.LogFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file: %v\n", err)
		}
	}
	log := logging.NewLogger("main")
	if cfg.ConfigFile != "" {
		log.Info("Configuration loaded", "file", cfg.ConfigFile)
	}

	code := run(cfg, *scriptFile, *statement, log)
	if closeLog != nil {
		closeLog()
	}
	os.Exit(code)
}

// run wires the components and returns the process exit code.
func run(cfg *config.Config, scriptFile, statement string, log *logging.Logger) int {
	cat, err := catalog.New(cfg.DataDir, logging.NewLogger("catalog"))
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.FormatError(err))
		return 1
	}

	// Validate accepted both values, so the parse errors cannot occur.
	enc, _ := storage.ParseEncoding(cfg.Encoding)
	coll, _ := storage.ParseCollation(cfg.Collation)
	engine := storage.NewTableEngine(
		storage.GetEncoder(enc),
		storage.GetCollator(coll, cfg.Locale),
		logging.NewLogger("storage"))

	sess := session.New()
	exec := sql.NewExecutor(cat, sess, engine,
		config.NewPageSizeFile(cfg, logging.NewLogger("config")),
		logging.NewLogger("sql"))

	stats := metrics.New()
	exec.SetRecorder(stats)
	if cfg.ResultCacheEntries > 0 {
		rc := cache.New(cache.Config{
			MaxEntries: cfg.ResultCacheEntries,
			TTL:        cache.DefaultConfig().TTL,
		})
		exec.SetResultCache(rc)
		stats.AttachCache(rc)
	}

	log.Debug("Storage ready", "data_dir", cfg.DataDir, "encoding", enc, "collation", coll,
		"result_cache", cfg.ResultCacheEntries)

	switch {
	case scriptFile != "":
		if err := shell.RunFile(exec, scriptFile, os.Stdout, logging.NewLogger("shell")); err != nil {
			fmt.Fprintln(os.Stderr, errors.FormatError(err))
			return 1
		}
		return 0

	case statement != "":
		fmt.Println(exec.ExecuteSQL("cli", statement))
		return 0
	}

	repl := shell.NewREPL(exec, sess, os.Stdout, cfg.HistoryFile, logging.NewLogger("shell"))
	repl.SetStats(stats)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		if err := repl.Run(os.Stdin, false); err != nil {
			fmt.Fprintln(os.Stderr, errors.FormatError(err))
			return 1
		}
		return 0
	}

	banner.PrintWithConfig(os.Stdout, cfg, term.IsTerminal(int(os.Stdout.Fd())))
	if err := repl.RunTerminal(os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, errors.FormatError(err))
		return 1
	}
	return 0
}
