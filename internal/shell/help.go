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

// HelpText is printed for "help", "--help", and "-h".
const HelpText = `Supported statements:

  Databases
    CREATE DATABASE <name>
    DROP DATABASE <name>
    USE <name>
    SELECT DATABASE
    SHOW DATABASES
    SHOW TABLES [FROM <database>]

  Tables
    CREATE TABLE <name> (col1, col2, ...)
    DROP TABLE <name>
    INSERT INTO <table> [(col1, ...)] VALUES (v1, v2, ...)
    UPDATE <table> SET col = val[, col = val ...] [WHERE <cond>]
    DELETE FROM <table> [WHERE <cond>]
    SELECT * | col1, ... FROM <table> [WHERE <cond>]
        [ORDER BY col1, ...] [LIMIT n] [OFFSET n]
    SELECT * | col1, ... FROM t1 JOIN t2 ON t1.col = t2.col

  Conditions
    <column> <op> <value>   where op is one of = != <> > < >= <=
    Values that both parse as numbers compare numerically.

Notes:
  - Keywords are case-insensitive. Strings use single quotes.
  - Every value is stored as text in paged CSV files.
  - End a statement with ';' to span several lines.
  - Lines starting with '--' are comments in scripts.

Shell:
  help     show this text
  stats    show statement counters
  exit     leave the shell (Ctrl+D works too)`
