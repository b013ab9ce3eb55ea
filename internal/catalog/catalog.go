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
Package catalog manages the database and table directories of PageDB.

Catalog Overview:
=================

Each database is a directory under <root>/databases and each table is a
directory inside its database. The catalog owns creating, dropping,
listing, and locating those directories. Page files inside a table
directory belong to the storage package.

	┌─────────────────────────────────────────────────────┐
	│                      Catalog                        │
	│  root: ./storage                                    │
	└─────────────────────────────────────────────────────┘
	                         │
	                         ▼
	               <root>/databases/
	         ┌───────────────┼───────────────┐
	         ▼               ▼               ▼
	    ┌─────────┐     ┌─────────┐     ┌─────────┐
	    │  shop   │     │  hr     │     │  test   │
	    └─────────┘     └─────────┘     └─────────┘
	         │
	    people/  cities/
	    ├── page_0.csv
	    └── meta/

Listings are sorted case-insensitively. A directory named "meta" is
never reported as a table.
*/
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pagedb/internal/errors"
	"pagedb/internal/logging"
)

// MetaDirName is the per-table metadata directory.
const MetaDirName = "meta"

// Catalog manages database and table directories under a storage root.
type Catalog struct {
	root string
	log  logging.Sink
}

// New creates a Catalog rooted at root. The databases directory is
// created if missing.
func New(root string, log logging.Sink) (*Catalog, error) {
	c := &Catalog{root: root, log: logging.OrNop(log)}
	if err := os.MkdirAll(c.databasesDir(), 0755); err != nil {
		return nil, errors.IOError("create storage root", c.databasesDir(), err)
	}
	return c, nil
}

// Root returns the storage root.
func (c *Catalog) Root() string {
	return c.root
}

func (c *Catalog) databasesDir() string {
	return filepath.Join(c.root, "databases")
}

// DatabaseDir returns the directory of database db.
func (c *Catalog) DatabaseDir(db string) string {
	return filepath.Join(c.databasesDir(), db)
}

// TableDir returns the directory of table in database db.
func (c *Catalog) TableDir(db, table string) string {
	return filepath.Join(c.DatabaseDir(db), table)
}

// validateName rejects names that would escape or collide with the
// directory layout.
func validateName(kind, name string) error {
	if name == "" {
		return errors.NewExecutionError(fmt.Sprintf("%s name cannot be empty", kind))
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errors.NewExecutionError(fmt.Sprintf("invalid %s name: %s", kind, name))
	}
	if kind == "table" && strings.EqualFold(name, MetaDirName) {
		return errors.NewExecutionError(fmt.Sprintf("'%s' is a reserved table name", name))
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// DatabaseExists reports whether database db exists.
func (c *Catalog) DatabaseExists(db string) bool {
	if validateName("database", db) != nil {
		return false
	}
	exists := isDir(c.DatabaseDir(db))
	c.log.Debug("Database lookup", "database", db, "exists", exists)
	return exists
}

// CreateDatabase creates database db.
func (c *Catalog) CreateDatabase(db string) error {
	if err := validateName("database", db); err != nil {
		return err
	}
	if c.DatabaseExists(db) {
		return errors.AlreadyExists("database", db)
	}
	if err := os.MkdirAll(c.DatabaseDir(db), 0755); err != nil {
		return errors.IOError("create database", c.DatabaseDir(db), err)
	}
	c.log.Info("Database created", "database", db)
	return nil
}

// DropDatabase removes database db and every table in it.
func (c *Catalog) DropDatabase(db string) error {
	if !c.DatabaseExists(db) {
		return errors.DatabaseNotFound(db)
	}
	if err := os.RemoveAll(c.DatabaseDir(db)); err != nil {
		return errors.IOError("drop database", c.DatabaseDir(db), err)
	}
	c.log.Info("Database dropped", "database", db)
	return nil
}

// ListDatabases returns database names sorted case-insensitively.
func (c *Catalog) ListDatabases() ([]string, error) {
	return listDirs(c.databasesDir(), "")
}

// TableExists reports whether table exists in database db.
func (c *Catalog) TableExists(db, table string) bool {
	if validateName("database", db) != nil || validateName("table", table) != nil {
		return false
	}
	return isDir(c.TableDir(db, table))
}

// CreateTable creates the directory of table in database db along with
// its meta directory. Pages are written by the storage engine.
func (c *Catalog) CreateTable(db, table string) error {
	if err := validateName("table", table); err != nil {
		return err
	}
	if !c.DatabaseExists(db) {
		return errors.DatabaseNotFound(db)
	}
	if c.TableExists(db, table) {
		return errors.AlreadyExists("table", table)
	}
	dir := c.TableDir(db, table)
	if err := os.MkdirAll(filepath.Join(dir, MetaDirName), 0755); err != nil {
		return errors.IOError("create table", dir, err)
	}
	c.log.Info("Table created", "database", db, "table", table)
	return nil
}

// DropTable removes table from database db.
func (c *Catalog) DropTable(db, table string) error {
	if !c.TableExists(db, table) {
		return errors.TableNotFound(table)
	}
	dir := c.TableDir(db, table)
	if err := os.RemoveAll(dir); err != nil {
		return errors.IOError("drop table", dir, err)
	}
	c.log.Info("Table dropped", "database", db, "table", table)
	return nil
}

// ListTables returns the tables of database db sorted case-insensitively.
func (c *Catalog) ListTables(db string) ([]string, error) {
	if !c.DatabaseExists(db) {
		return nil, errors.DatabaseNotFound(db)
	}
	return listDirs(c.DatabaseDir(db), MetaDirName)
}

func listDirs(dir, skip string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.IOError("list directory", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if skip != "" && strings.EqualFold(e.Name(), skip) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names, nil
}
