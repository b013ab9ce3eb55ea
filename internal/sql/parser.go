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
Parser Overview:
================

The Parser turns the token slice of one statement into one AST node. It
dispatches on the uppercased text of the first token; each statement
parser then walks forward through the tokens without backtracking.

Parsing Flow:
=============

	"UPDATE people SET age = 26 WHERE city_id = 10"
	         │
	         ▼
	  Lexer.Tokenize()
	         │
	         ▼
	  Parse() ── first word "UPDATE" ──▶ parseUpdate()
	                                         │
	                                         ├── table name
	                                         ├── SET assignments
	                                         └── parseWhere()
	         │
	         ▼
	  &UpdateStmt{TableName: "people", Updates: [{age 26}],
	              Where: &Condition{city_id = 10}}

Grammar:
========

	CREATE DATABASE <name>
	CREATE TABLE <name> ( <col>, ... )
	DROP DATABASE <name> | DROP TABLE <name>
	USE <name>
	SHOW DATABASES | SHOW TABLES [FROM <db>]
	SELECT DATABASE
	SELECT (* | <col>, ...) FROM <table> JOIN <table> ON <col> = <col>
	SELECT (* | <col>, ...) FROM <table> [WHERE <cond>] [ORDER BY <col>, ...]
	    [LIMIT <n>] [OFFSET <n>]
	INSERT INTO <table> [( <col>, ... )] VALUES ( <val>, ... )
	UPDATE <table> SET <col> = <val> [, <col> = <val>]* [WHERE <cond>]
	DELETE FROM <table> [WHERE <cond>]

	<cond> := <col> ( = | != | <> | > | < | >= | <= ) <val>

Keywords are case-insensitive. A qualified name such as people.city_id
is read as one column name. ALTER, GRANT, REVOKE, BEGIN, COMMIT, and
ROLLBACK are recognized and rejected as unsupported.

Error Handling:
===============

Parse never panics. Any failure returns a nil Statement and a
*errors.PageDBError, which is also logged at WARN when the parser has a
log sink.
*/
package sql

import (
	"regexp"
	"strconv"
	"strings"

	"pagedb/internal/errors"
	"pagedb/internal/logging"
)

// Parser transforms the tokens of one statement into an AST.
//
// The input is tokenized up front; a lexical error is reported by the
// first call to Parse.
type Parser struct {
	tokens []Token
	pos    int
	lexErr error
	log    logging.Sink
}

// NewParser creates a Parser over the tokens produced by lexer.
func NewParser(lexer *Lexer) *Parser {
	tokens, err := lexer.Tokenize()
	return &Parser{tokens: tokens, lexErr: err, log: logging.Nop()}
}

// SetLogger sets the sink that parse diagnostics are written to.
func (p *Parser) SetLogger(log logging.Sink) {
	p.log = logging.OrNop(log)
}

// Parse tokenizes and parses text with an optional log sink.
func Parse(text string, log logging.Sink) (Statement, error) {
	p := NewParser(NewLexer(text))
	p.SetLogger(log)
	return p.Parse()
}

// Parse parses one statement. A single trailing ';' is allowed.
func (p *Parser) Parse() (Statement, error) {
	stmt, err := p.parse()
	if err != nil {
		p.log.Warn("Parse failed", "error", err)
		return nil, err
	}
	p.log.Debug("Parsed statement", "type", statementName(stmt))
	return stmt, nil
}

func (p *Parser) parse() (Statement, error) {
	if p.lexErr != nil {
		return nil, p.lexErr
	}

	p.pos = 0
	if p.atEnd() {
		return nil, errors.NewSyntaxError("empty statement")
	}

	first := strings.ToUpper(p.cur().Value)
	var (
		stmt Statement
		err  error
	)
	switch first {
	case "CREATE":
		stmt, err = p.parseCreate()
	case "DROP":
		stmt, err = p.parseDrop()
	case "USE":
		stmt, err = p.parseUse()
	case "SHOW":
		stmt, err = p.parseShow()
	case "SELECT":
		stmt, err = p.parseSelect()
	case "INSERT":
		stmt, err = p.parseInsert()
	case "UPDATE":
		stmt, err = p.parseUpdate()
	case "DELETE":
		stmt, err = p.parseDelete()
	case "ALTER", "GRANT", "REVOKE", "BEGIN", "COMMIT", "ROLLBACK":
		return nil, errors.Unsupported(first)
	default:
		return nil, errors.UnknownStatement(p.cur().Value)
	}
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// ============================================================================
// Token helpers
// ============================================================================

func (p *Parser) cur() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Type: TokenEOF}
}

func (p *Parser) peekAt(offset int) Token {
	if i := p.pos + offset; i < len(p.tokens) {
		return p.tokens[i]
	}
	return Token{Type: TokenEOF}
}

func (p *Parser) nextToken() Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

// atEnd reports whether only an optional ';' and EOF remain.
func (p *Parser) atEnd() bool {
	t := p.cur()
	if t.Type == TokenSymbol && t.Value == ";" {
		t = p.peekAt(1)
	}
	return t.Type == TokenEOF
}

func (p *Parser) expectEnd() error {
	if p.atEnd() {
		return nil
	}
	return errors.UnexpectedToken("end of statement", p.cur().String())
}

// isWord reports whether t is the bare word w, case-insensitively.
// Keywords and identifiers match; literals never do.
func isWord(t Token, w string) bool {
	return (t.Type == TokenKeyword || t.Type == TokenIdentifier) && strings.EqualFold(t.Value, w)
}

func (p *Parser) atWord(w string) bool {
	return isWord(p.cur(), w)
}

func (p *Parser) atSymbol(s string) bool {
	t := p.cur()
	return t.Type == TokenSymbol && t.Value == s
}

// expectWord consumes the word w or fails with a missing-keyword error.
func (p *Parser) expectWord(w string) error {
	if !p.atWord(w) {
		return errors.MissingKeyword(w).WithDetail("got " + p.cur().String())
	}
	p.nextToken()
	return nil
}

func (p *Parser) expectSymbol(s string) error {
	if !p.atSymbol(s) {
		return errors.UnexpectedToken("'"+s+"'", p.cur().String())
	}
	p.nextToken()
	return nil
}

// parseName reads a database or table name.
func (p *Parser) parseName(what string) (string, error) {
	t := p.cur()
	if t.Type != TokenIdentifier {
		return "", errors.UnexpectedToken(what, t.String())
	}
	p.nextToken()
	return t.Value, nil
}

// parseColumn reads a column name. Keywords are accepted as column
// names, and a dotted run such as people.city_id is joined into one name.
func (p *Parser) parseColumn() (string, error) {
	t := p.cur()
	if t.Type != TokenIdentifier && t.Type != TokenKeyword {
		return "", errors.UnexpectedToken("column name", t.String())
	}
	p.nextToken()

	name := t.Value
	for p.atSymbol(".") {
		next := p.peekAt(1)
		if next.Type != TokenIdentifier && next.Type != TokenKeyword {
			return "", errors.UnexpectedToken("column name after '.'", next.String())
		}
		p.nextToken()
		p.nextToken()
		name += "." + next.Value
	}
	return name, nil
}

var surroundingQuotes = regexp.MustCompile(`^'|'$`)

// parseValue reads a literal value. The result is the token text with one
// leading and one trailing single quote removed. A sign directly before a
// number is folded into it.
func (p *Parser) parseValue() (string, error) {
	t := p.cur()
	switch t.Type {
	case TokenString, TokenInteger, TokenDouble, TokenBoolean, TokenIdentifier, TokenKeyword:
		p.nextToken()
		return surroundingQuotes.ReplaceAllString(t.Value, ""), nil
	case TokenSymbol:
		next := p.peekAt(1)
		if (t.Value == "-" || t.Value == "+") && (next.Type == TokenInteger || next.Type == TokenDouble) {
			p.nextToken()
			p.nextToken()
			if t.Value == "-" {
				return "-" + next.Value, nil
			}
			return next.Value, nil
		}
	}
	return "", errors.UnexpectedToken("value", t.String())
}

// parseList reads a parenthesized, comma-separated list using item.
func (p *Parser) parseList(clause string, item func() (string, error)) ([]string, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var out []string
	for !p.atSymbol(")") {
		if p.cur().Type == TokenEOF {
			return nil, errors.MalformedClause(clause, "missing ')'")
		}
		if p.atSymbol(",") {
			p.nextToken()
			continue
		}
		v, err := item()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	p.nextToken() // ')'
	return out, nil
}

// ============================================================================
// DDL and session statements
// ============================================================================

// parseCreate parses CREATE DATABASE and CREATE TABLE.
func (p *Parser) parseCreate() (Statement, error) {
	p.nextToken() // CREATE

	switch {
	case p.atWord("DATABASE"):
		p.nextToken()
		name, err := p.parseName("database name")
		if err != nil {
			return nil, err
		}
		return &CreateDatabaseStmt{DatabaseName: name}, nil

	case p.atWord("TABLE"):
		p.nextToken()
		name, err := p.parseName("table name")
		if err != nil {
			return nil, err
		}
		cols, err := p.parseList("column list", p.parseColumn)
		if err != nil {
			return nil, err
		}
		if len(cols) == 0 {
			return nil, errors.MalformedClause("column list", "a table needs at least one column")
		}
		return &CreateTableStmt{TableName: name, Columns: cols}, nil
	}
	return nil, errors.UnexpectedToken("DATABASE or TABLE after CREATE", p.cur().String())
}

// parseDrop parses DROP DATABASE and DROP TABLE.
func (p *Parser) parseDrop() (Statement, error) {
	p.nextToken() // DROP

	switch {
	case p.atWord("DATABASE"):
		p.nextToken()
		name, err := p.parseName("database name")
		if err != nil {
			return nil, err
		}
		return &DropDatabaseStmt{DatabaseName: name}, nil

	case p.atWord("TABLE"):
		p.nextToken()
		name, err := p.parseName("table name")
		if err != nil {
			return nil, err
		}
		return &DropTableStmt{TableName: name}, nil
	}
	return nil, errors.UnexpectedToken("DATABASE or TABLE after DROP", p.cur().String())
}

func (p *Parser) parseUse() (Statement, error) {
	p.nextToken() // USE
	name, err := p.parseName("database name")
	if err != nil {
		return nil, err
	}
	return &UseDatabaseStmt{DatabaseName: name}, nil
}

// parseShow parses SHOW DATABASES and SHOW TABLES [FROM <db>].
func (p *Parser) parseShow() (Statement, error) {
	p.nextToken() // SHOW

	switch {
	case p.atWord("DATABASES"):
		p.nextToken()
		return &ShowDatabasesStmt{}, nil

	case p.atWord("TABLES"):
		p.nextToken()
		stmt := &ShowTablesStmt{}
		if p.atWord("FROM") {
			p.nextToken()
			db, err := p.parseName("database name")
			if err != nil {
				return nil, err
			}
			stmt.Database = db
		}
		return stmt, nil
	}
	return nil, errors.NewSyntaxError("expected SHOW DATABASES or SHOW TABLES [FROM <db>]")
}

// ============================================================================
// DML statements
// ============================================================================

// parseInsert parses an INSERT statement.
// Syntax: INSERT INTO <table> [( <col>, ... )] VALUES ( <val>, ... )
func (p *Parser) parseInsert() (Statement, error) {
	p.nextToken() // INSERT
	if err := p.expectWord("INTO"); err != nil {
		return nil, err
	}
	table, err := p.parseName("table name")
	if err != nil {
		return nil, err
	}

	stmt := &InsertStmt{TableName: table}
	if p.atSymbol("(") {
		cols, err := p.parseList("column list", p.parseColumn)
		if err != nil {
			return nil, err
		}
		stmt.Columns = cols
	}

	if err := p.expectWord("VALUES"); err != nil {
		return nil, err
	}
	vals, err := p.parseList("VALUES", p.parseValue)
	if err != nil {
		return nil, err
	}
	stmt.Values = vals
	return stmt, nil
}

// parseUpdate parses an UPDATE statement.
// Syntax: UPDATE <table> SET <col> = <val> [, <col> = <val>]* [WHERE <cond>]
func (p *Parser) parseUpdate() (Statement, error) {
	p.nextToken() // UPDATE
	table, err := p.parseName("table name")
	if err != nil {
		return nil, err
	}
	if err := p.expectWord("SET"); err != nil {
		return nil, err
	}

	stmt := &UpdateStmt{TableName: table}
	for {
		col, err := p.parseColumn()
		if err != nil {
			return nil, err
		}
		if !p.atSymbol("=") {
			return nil, errors.MalformedClause("SET", "expected '=' after "+col)
		}
		p.nextToken()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		stmt.Updates = append(stmt.Updates, Assignment{Column: col, Value: val})

		if !p.atSymbol(",") {
			break
		}
		p.nextToken()
	}

	if stmt.Where, err = p.parseOptionalWhere(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseDelete parses DELETE FROM <table> [WHERE <cond>].
func (p *Parser) parseDelete() (Statement, error) {
	p.nextToken() // DELETE
	if err := p.expectWord("FROM"); err != nil {
		return nil, err
	}
	table, err := p.parseName("table name")
	if err != nil {
		return nil, err
	}

	stmt := &DeleteStmt{TableName: table}
	if stmt.Where, err = p.parseOptionalWhere(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseSelect parses SELECT DATABASE, a single-table SELECT, or a join.
func (p *Parser) parseSelect() (Statement, error) {
	p.nextToken() // SELECT

	if p.atWord("DATABASE") {
		p.nextToken()
		return &ShowCurrentDatabaseStmt{}, nil
	}

	var cols []string
	if p.atSymbol("*") {
		p.nextToken()
		cols = []string{"*"}
	} else {
		for !p.atWord("FROM") {
			if p.cur().Type == TokenEOF {
				break
			}
			if p.atSymbol(",") {
				p.nextToken()
				continue
			}
			col, err := p.parseColumn()
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		cols = []string{"*"}
	}

	if err := p.expectWord("FROM"); err != nil {
		return nil, err
	}
	table, err := p.parseName("table name")
	if err != nil {
		return nil, err
	}

	if p.atWord("INNER") && isWord(p.peekAt(1), "JOIN") {
		p.nextToken()
	}
	if p.atWord("JOIN") {
		return p.parseJoin(table, cols)
	}

	stmt := &SelectStmt{
		TableName: table,
		Columns:   cols,
		Limit:     NoLimit,
		Offset:    NoLimit,
	}
	if stmt.Where, err = p.parseOptionalWhere(); err != nil {
		return nil, err
	}

	if p.atWord("ORDER") {
		p.nextToken()
		if err := p.expectWord("BY"); err != nil {
			return nil, err
		}
		for !p.atEnd() && !p.atWord("LIMIT") && !p.atWord("OFFSET") {
			if p.atSymbol(",") {
				p.nextToken()
				continue
			}
			col, err := p.parseColumn()
			if err != nil {
				return nil, err
			}
			stmt.OrderBy = append(stmt.OrderBy, col)
		}
		if len(stmt.OrderBy) == 0 {
			return nil, errors.MalformedClause("ORDER BY", "expected at least one column")
		}
	}

	for p.atWord("LIMIT") || p.atWord("OFFSET") {
		isLimit := p.atWord("LIMIT")
		p.nextToken()
		n, ok := p.parseCount()
		if !ok {
			continue
		}
		if isLimit {
			stmt.Limit = n
		} else {
			stmt.Offset = n
		}
	}
	return stmt, nil
}

// parseCount reads the integer after LIMIT or OFFSET. A token that is not
// a non-negative integer is consumed and ignored, along with the number
// after a sign.
func (p *Parser) parseCount() (int, bool) {
	t := p.cur()
	if t.Type == TokenEOF || (t.Type == TokenSymbol && t.Value == ";") {
		return 0, false
	}
	p.nextToken()
	if t.Type == TokenSymbol && (t.Value == "-" || t.Value == "+") {
		// A signed count is never valid; drop its number too.
		if n := p.cur(); n.Type == TokenInteger || n.Type == TokenDouble {
			p.nextToken()
		}
		p.log.Debug("Ignoring signed row count", "token", t.Value)
		return 0, false
	}
	if t.Type != TokenInteger {
		p.log.Debug("Ignoring non-integer row count", "token", t.Value)
		return 0, false
	}
	n, err := strconv.Atoi(t.Value)
	if err != nil {
		p.log.Debug("Ignoring non-integer row count", "token", t.Value)
		return 0, false
	}
	return n, true
}

// parseJoin parses the tail of SELECT ... FROM <left> JOIN <right> ON a = b.
// ON columns qualified with the right table first are swapped so that
// LeftColumn always belongs to the left table. Nothing may follow.
func (p *Parser) parseJoin(left string, cols []string) (Statement, error) {
	p.nextToken() // JOIN
	right, err := p.parseName("table name after JOIN")
	if err != nil {
		return nil, err
	}
	if err := p.expectWord("ON"); err != nil {
		return nil, err
	}

	lcol, err := p.parseColumn()
	if err != nil {
		return nil, err
	}
	if !p.atSymbol("=") {
		return nil, errors.MalformedClause("ON", "expected <column> = <column>")
	}
	p.nextToken()
	rcol, err := p.parseColumn()
	if err != nil {
		return nil, err
	}

	if !p.atEnd() {
		return nil, errors.MalformedClause("JOIN", "a join takes no WHERE, ORDER BY, LIMIT, or OFFSET").
			WithHint("got " + p.cur().String())
	}

	lside, err := joinSide(lcol, left, right)
	if err != nil {
		return nil, err
	}
	rside, err := joinSide(rcol, left, right)
	if err != nil {
		return nil, err
	}
	if lside == sideRight || rside == sideLeft {
		if lside == rside {
			return nil, errors.MalformedClause("ON", "both columns name the same table").
				WithHint(lcol + " = " + rcol)
		}
		lcol, rcol = rcol, lcol
	}

	return &SelectJoinStmt{
		LeftTable:   left,
		RightTable:  right,
		LeftColumn:  unqualified(lcol),
		RightColumn: unqualified(rcol),
		Columns:     cols,
	}, nil
}

const (
	sideAny = iota
	sideLeft
	sideRight
)

// joinSide reports which table a qualified ON column belongs to. Bare
// columns, and any column of a self-join, take their position.
func joinSide(col, left, right string) (int, error) {
	i := strings.LastIndex(col, ".")
	if i < 0 || strings.EqualFold(left, right) {
		return sideAny, nil
	}
	switch qual := col[:i]; {
	case strings.EqualFold(qual, left):
		return sideLeft, nil
	case strings.EqualFold(qual, right):
		return sideRight, nil
	}
	return sideAny, errors.MalformedClause("ON", "unknown table in "+col).
		WithHint("qualify join columns with " + left + " or " + right)
}

func unqualified(col string) string {
	if i := strings.LastIndex(col, "."); i >= 0 {
		return col[i+1:]
	}
	return col
}

// parseOptionalWhere parses WHERE <col> <op> <val> if present.
func (p *Parser) parseOptionalWhere() (*Condition, error) {
	if !p.atWord("WHERE") {
		return nil, nil
	}
	p.nextToken()

	const shape = "expected <column> <operator> <value>"
	col, err := p.parseColumn()
	if err != nil {
		return nil, errors.MalformedClause("WHERE", shape).WithCause(err)
	}
	op := p.cur()
	if op.Type != TokenSymbol || !IsComparisonOperator(op.Value) {
		return nil, errors.MalformedClause("WHERE", shape).
			WithHint("supported operators are = != <> > < >= <=")
	}
	p.nextToken()
	val, err := p.parseValue()
	if err != nil {
		return nil, errors.MalformedClause("WHERE", shape).WithCause(err)
	}
	return &Condition{Column: col, Operator: op.Value, Value: val}, nil
}

// statementName returns a short label for a statement, used in logs.
func statementName(stmt Statement) string {
	switch stmt.(type) {
	case *CreateDatabaseStmt:
		return "CREATE DATABASE"
	case *DropDatabaseStmt:
		return "DROP DATABASE"
	case *UseDatabaseStmt:
		return "USE"
	case *ShowCurrentDatabaseStmt:
		return "SELECT DATABASE"
	case *ShowDatabasesStmt:
		return "SHOW DATABASES"
	case *ShowTablesStmt:
		return "SHOW TABLES"
	case *CreateTableStmt:
		return "CREATE TABLE"
	case *DropTableStmt:
		return "DROP TABLE"
	case *InsertStmt:
		return "INSERT"
	case *UpdateStmt:
		return "UPDATE"
	case *DeleteStmt:
		return "DELETE"
	case *SelectStmt:
		return "SELECT"
	case *SelectJoinStmt:
		return "SELECT JOIN"
	}
	return "UNKNOWN"
}
