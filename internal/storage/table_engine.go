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
Package storage provides the paged record store for PageDB.

Storage Overview:
=================

A table is a directory holding one or more page files. Each page is a
text file with a header line followed by row lines:

	<data_dir>/databases/<db>/<table>/
	    page_0.csv
	    page_1.csv
	    ...
	    meta/

Pages are ordered by their numeric index, so page_10.csv follows
page_9.csv. All pages of a table share the header of page_0.csv.

Page Lifecycle:
===============

	┌──────────────┐   insert fits    ┌──────────────┐
	│  last page   │ ───────────────▶ │  last page   │
	│   (N rows)   │                  │  (N+1 rows)  │
	└──────────────┘                  └──────────────┘
	        │
	        │ size + row line > cap
	        ▼
	┌──────────────┐
	│ page_{N+1}   │  header + new row
	└──────────────┘

Every write rewrites the whole page file. Pages are never merged or
removed; only dropping the table removes them.

Concurrency:
============

TableEngine holds no mutable state. Operations are synchronous and do
no file locking: two writers on one page lose one update.
*/
package storage

import (
	"os"
	"sort"

	"pagedb/internal/errors"
	"pagedb/internal/logging"
)

// TableEngine performs row operations over the pages of a table directory.
type TableEngine struct {
	enc  Encoder
	coll Collator
	log  logging.Sink
}

// NewTableEngine creates a TableEngine. A nil encoder means UTF-8, a nil
// collator means binary ordering, and a nil sink discards logs.
func NewTableEngine(enc Encoder, coll Collator, log logging.Sink) *TableEngine {
	if enc == nil {
		enc = UTF8Encoder{}
	}
	if coll == nil {
		coll = BinaryCollator{}
	}
	return &TableEngine{enc: enc, coll: coll, log: logging.OrNop(log)}
}

// Collator returns the string ordering used by Select.
func (e *TableEngine) Collator() Collator {
	return e.coll
}

// Insert appends one row to the table in dir and returns the page it was
// written to.
//
// The header comes from page 0, or from the key order of values when the
// table has no pages yet. Header columns missing from values are stored
// as "", and keys outside the header are dropped. If appending the row
// would grow the last page past capBytes, a new page is opened at the
// next index and the row goes there.
func (e *TableEngine) Insert(dir string, values *Values, capBytes int64) (Page, error) {
	pages, err := e.ListPages(dir)
	if err != nil {
		return Page{}, err
	}

	var header []string
	if len(pages) == 0 {
		header = values.Keys()
		if len(header) == 0 {
			return Page{}, errors.NewStorageError("cannot create a table page without columns").WithDetail(dir)
		}
	} else {
		header, err = e.ReadHeader(pages[0].Path)
		if err != nil {
			return Page{}, err
		}
	}

	row := make(Row, len(header))
	for _, c := range header {
		v, _ := values.Get(c)
		row[c] = v
	}

	last, err := e.EnsureLastPage(dir, header)
	if err != nil {
		return Page{}, err
	}

	line, err := e.enc.Encode(joinRow(header, row) + "\n")
	if err != nil {
		return Page{}, errors.IOError("encode row", dir, err)
	}
	info, err := os.Stat(last.Path)
	if err != nil {
		return Page{}, errors.IOError("stat page", last.Path, err)
	}

	var target *Table
	if info.Size()+int64(len(line)) > capBytes {
		next := last.Index + 1
		e.log.Info("Page rollover", "dir", dir, "from", last.Index, "to", next,
			"size", info.Size(), "cap", capBytes)
		last = Page{Index: next, Path: PagePath(dir, next)}
		target = &Table{Columns: header}
	} else {
		target, err = e.LoadPage(last.Path)
		if err != nil {
			return Page{}, err
		}
	}

	target.Rows = append(target.Rows, row)
	if err := e.SavePage(last.Path, target); err != nil {
		return Page{}, err
	}
	e.log.Debug("Inserted row", "dir", dir, "page", last.Index)
	return last, nil
}

// Update sets changes on every row matching pred, page by page, and
// returns the number of matching rows. Change targets that are not in a
// page's header are ignored.
func (e *TableEngine) Update(dir string, pred Predicate, changes map[string]string) (int, error) {
	pages, err := e.ListPages(dir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, p := range pages {
		t, err := e.LoadPage(p.Path)
		if err != nil {
			return count, err
		}
		for _, row := range t.Rows {
			if !pred.match(row) {
				continue
			}
			count++
			for col, val := range changes {
				if _, ok := row[col]; ok {
					row[col] = val
				}
			}
		}
		if err := e.SavePage(p.Path, t); err != nil {
			return count, err
		}
	}
	e.log.Info("Updated rows", "dir", dir, "count", count, "pages", len(pages))
	return count, nil
}

// Delete removes every row matching pred, page by page, and returns the
// number removed. Surviving rows keep their order.
func (e *TableEngine) Delete(dir string, pred Predicate) (int, error) {
	pages, err := e.ListPages(dir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, p := range pages {
		t, err := e.LoadPage(p.Path)
		if err != nil {
			return count, err
		}
		kept := t.Rows[:0]
		for _, row := range t.Rows {
			if pred.match(row) {
				count++
				continue
			}
			kept = append(kept, row)
		}
		t.Rows = kept
		if err := e.SavePage(p.Path, t); err != nil {
			return count, err
		}
	}
	e.log.Info("Deleted rows", "dir", dir, "count", count, "pages", len(pages))
	return count, nil
}

// Select loads the whole table, keeps rows matching pred and, when
// orderBy is non-empty, sorts them ascending by each column in turn. The
// sort is stable, so ties keep their stored order.
func (e *TableEngine) Select(dir string, pred Predicate, orderBy []string) (*Table, error) {
	all, err := e.LoadTable(dir)
	if err != nil {
		return nil, err
	}

	out := &Table{Columns: all.Columns}
	for _, row := range all.Rows {
		if pred.match(row) {
			out.Rows = append(out.Rows, row)
		}
	}

	if len(orderBy) > 0 {
		sort.SliceStable(out.Rows, func(i, j int) bool {
			for _, col := range orderBy {
				if c := e.coll.Compare(out.Rows[i][col], out.Rows[j][col]); c != 0 {
					return c < 0
				}
			}
			return false
		})
	}

	e.log.Info("Selected rows", "dir", dir, "count", len(out.Rows))
	return out, nil
}

// Join pairs every row of left with every row of right whose
// leftColumn and rightColumn values are equal strings. Output columns are
// left's prefixed with "left." followed by right's prefixed with "right.".
// The cost is O(len(left.Rows) * len(right.Rows)).
func Join(left, right *Table, leftColumn, rightColumn string) *Table {
	out := &Table{Columns: make([]string, 0, len(left.Columns)+len(right.Columns))}
	for _, c := range left.Columns {
		out.Columns = append(out.Columns, "left."+c)
	}
	for _, c := range right.Columns {
		out.Columns = append(out.Columns, "right."+c)
	}

	for _, l := range left.Rows {
		for _, r := range right.Rows {
			if l[leftColumn] != r[rightColumn] {
				continue
			}
			merged := make(Row, len(out.Columns))
			for _, c := range left.Columns {
				merged["left."+c] = l[c]
			}
			for _, c := range right.Columns {
				merged["right."+c] = r[c]
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}
