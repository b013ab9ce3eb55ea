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
Abstract Syntax Tree (AST) Overview:
====================================

The AST is the typed form of one parsed statement. Nodes are plain data:
the Parser builds them and the Executor consumes each one once.

AST Design Pattern:
===================

  1. Every statement type implements the Statement interface
  2. The statementNode() method is an unexported marker, so the set of
     statements is closed to this package
  3. The Executor type-switches over the pointer types

Every value in the tree is a string. Numbers and booleans keep their
source text; comparisons decide at run time how to read them.

AST Node Hierarchy:
===================

	Statement (interface)
	├── CreateDatabaseStmt
	├── DropDatabaseStmt
	├── UseDatabaseStmt
	├── ShowCurrentDatabaseStmt
	├── ShowDatabasesStmt
	├── ShowTablesStmt
	├── CreateTableStmt
	├── DropTableStmt
	├── InsertStmt
	├── UpdateStmt
	│   └── Condition (WHERE)
	├── DeleteStmt
	│   └── Condition (WHERE)
	├── SelectStmt
	│   └── Condition (WHERE)
	└── SelectJoinStmt

Example AST:
============

For the SQL: SELECT name FROM people WHERE age >= 30 ORDER BY name LIMIT 5

	SelectStmt{
	    TableName: "people",
	    Columns:   []string{"name"},
	    Where:     &Condition{Column: "age", Operator: ">=", Value: "30"},
	    OrderBy:   []string{"name"},
	    Limit:     5,
	    Offset:    NoLimit,
	}
*/
package sql

// Statement represents a parsed statement node.
// The statementNode() marker keeps the set of statements closed.
type Statement interface {
	statementNode()
}

// NoLimit marks an absent LIMIT or OFFSET.
const NoLimit = -1

// Operators accepted in a WHERE condition.
const (
	OpEq       = "="
	OpNotEq    = "!="
	OpNotEqAlt = "<>"
	OpGt       = ">"
	OpLt       = "<"
	OpGtEq     = ">="
	OpLtEq     = "<="
)

// IsComparisonOperator reports whether op may appear in a condition.
func IsComparisonOperator(op string) bool {
	switch op {
	case OpEq, OpNotEq, OpNotEqAlt, OpGt, OpLt, OpGtEq, OpLtEq:
		return true
	}
	return false
}

// Condition is a single WHERE comparison: Column Operator Value.
type Condition struct {
	Column   string
	Operator string
	Value    string
}

// CreateDatabaseStmt represents CREATE DATABASE <name>.
type CreateDatabaseStmt struct {
	DatabaseName string
}

func (*CreateDatabaseStmt) statementNode() {}

// DropDatabaseStmt represents DROP DATABASE <name>.
type DropDatabaseStmt struct {
	DatabaseName string
}

func (*DropDatabaseStmt) statementNode() {}

// UseDatabaseStmt represents USE <name>.
type UseDatabaseStmt struct {
	DatabaseName string
}

func (*UseDatabaseStmt) statementNode() {}

// ShowCurrentDatabaseStmt represents SELECT DATABASE.
type ShowCurrentDatabaseStmt struct{}

func (*ShowCurrentDatabaseStmt) statementNode() {}

// ShowDatabasesStmt represents SHOW DATABASES.
type ShowDatabasesStmt struct{}

func (*ShowDatabasesStmt) statementNode() {}

// ShowTablesStmt represents SHOW TABLES [FROM <db>].
// An empty Database means the current database.
type ShowTablesStmt struct {
	Database string
}

func (*ShowTablesStmt) statementNode() {}

// CreateTableStmt represents a CREATE TABLE statement.
//
// SQL Syntax:
//
//	CREATE TABLE <name> ( <col>, <col>, ... )
//
// Columns have no types; every value is stored as text.
type CreateTableStmt struct {
	TableName string
	Columns   []string
}

func (*CreateTableStmt) statementNode() {}

// DropTableStmt represents DROP TABLE <name>.
type DropTableStmt struct {
	TableName string
}

func (*DropTableStmt) statementNode() {}

// InsertStmt represents an INSERT statement.
//
// SQL Syntax:
//
//	INSERT INTO <table> [( <col>, ... )] VALUES ( <val>, ... )
//
// Columns is nil when the statement has no column list.
type InsertStmt struct {
	TableName string
	Columns   []string
	Values    []string
}

func (*InsertStmt) statementNode() {}

// Assignment is one col = value pair of an UPDATE SET clause.
type Assignment struct {
	Column string
	Value  string
}

// UpdateStmt represents an UPDATE statement.
//
// SQL Syntax:
//
//	UPDATE <table> SET <col> = <val> [, <col> = <val>]* [WHERE <cond>]
type UpdateStmt struct {
	TableName string
	Updates   []Assignment
	Where     *Condition // nil updates every row
}

func (*UpdateStmt) statementNode() {}

// DeleteStmt represents DELETE FROM <table> [WHERE <cond>].
type DeleteStmt struct {
	TableName string
	Where     *Condition // nil deletes every row
}

func (*DeleteStmt) statementNode() {}

// SelectStmt represents a single-table SELECT.
//
// SQL Syntax:
//
//	SELECT (* | <col>, ...) FROM <table>
//	    [WHERE <cond>] [ORDER BY <col>, ...] [LIMIT n] [OFFSET n]
//
// Columns is ["*"] for a star projection. Limit and Offset are NoLimit
// when absent.
type SelectStmt struct {
	TableName string
	Columns   []string
	Where     *Condition
	OrderBy   []string
	Limit     int
	Offset    int
}

func (*SelectStmt) statementNode() {}

// IsStar reports whether the projection is SELECT *.
func (s *SelectStmt) IsStar() bool {
	return isStar(s.Columns)
}

// SelectJoinStmt represents a two-table equality join.
//
// SQL Syntax:
//
//	SELECT (* | <col>, ...) FROM <left> JOIN <right> ON <lcol> = <rcol>
//
// A join takes no WHERE, ORDER BY, LIMIT, or OFFSET. Columns is kept as
// parsed; the result always holds every left. and right. column.
type SelectJoinStmt struct {
	LeftTable   string
	RightTable  string
	LeftColumn  string
	RightColumn string
	Columns     []string
}

func (*SelectJoinStmt) statementNode() {}

func isStar(columns []string) bool {
	return len(columns) == 0 || (len(columns) == 1 && columns[0] == "*")
}
