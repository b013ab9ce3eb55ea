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

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"pagedb/internal/errors"
)

var pageNamePattern = regexp.MustCompile(`^page_(\d+)\.csv$`)

// Page identifies one page file of a table.
type Page struct {
	Index int
	Path  string
}

// PagePath returns the path of page index in dir.
func PagePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("page_%d.csv", index))
}

// ListPages returns the pages in dir ordered by numeric index. A missing
// directory has no pages.
func (e *TableEngine) ListPages(dir string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.IOError("list pages", dir, err)
	}

	var pages []Page
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		m := pageNamePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		pages = append(pages, Page{Index: idx, Path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })
	return pages, nil
}

func (e *TableEngine) readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError("read page", path, err)
	}
	text, err := e.enc.Decode(data)
	if err != nil {
		return nil, errors.IOError("decode page", path, err).
			WithHint(fmt.Sprintf("Page files are read as %s", e.enc.Name()))
	}
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, errors.EmptyPage(path)
	}
	return lines, nil
}

// ReadHeader returns the column list of the page at path.
func (e *TableEngine) ReadHeader(path string) ([]string, error) {
	lines, err := e.readLines(path)
	if err != nil {
		return nil, err
	}
	return splitHeader(lines[0]), nil
}

// LoadPage reads one page. The first line is the header; every other
// line is a row.
func (e *TableEngine) LoadPage(path string) (*Table, error) {
	lines, err := e.readLines(path)
	if err != nil {
		return nil, err
	}
	t := &Table{Columns: splitHeader(lines[0])}
	for _, line := range lines[1:] {
		t.Rows = append(t.Rows, rowFromFields(t.Columns, splitRow(line)))
	}
	return t, nil
}

// SavePage rewrites the page at path with t's header and rows.
func (e *TableEngine) SavePage(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.IOError("create table directory", filepath.Dir(path), err)
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(t.Columns, ","))
	sb.WriteByte('\n')
	for _, row := range t.Rows {
		sb.WriteString(joinRow(t.Columns, row))
		sb.WriteByte('\n')
	}

	data, err := e.enc.Encode(sb.String())
	if err != nil {
		return errors.IOError("encode page", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.IOError("write page", path, err)
	}
	return nil
}

// LoadTable concatenates the rows of every page under the header of the
// first page.
func (e *TableEngine) LoadTable(dir string) (*Table, error) {
	pages, err := e.ListPages(dir)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, errors.NoPages(dir)
	}

	header, err := e.ReadHeader(pages[0].Path)
	if err != nil {
		return nil, err
	}
	all := &Table{Columns: header}
	for _, p := range pages {
		t, err := e.LoadPage(p.Path)
		if err != nil {
			return nil, err
		}
		all.Rows = append(all.Rows, t.Rows...)
	}
	return all, nil
}

// EnsureLastPage returns the highest-indexed page in dir, creating
// page_0.csv with header when the directory has no pages.
func (e *TableEngine) EnsureLastPage(dir string, header []string) (Page, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Page{}, errors.IOError("create table directory", dir, err)
	}
	pages, err := e.ListPages(dir)
	if err != nil {
		return Page{}, err
	}
	if len(pages) > 0 {
		return pages[len(pages)-1], nil
	}

	first := Page{Index: 0, Path: PagePath(dir, 0)}
	if err := e.SavePage(first.Path, &Table{Columns: header}); err != nil {
		return Page{}, err
	}
	e.log.Debug("Created first page", "dir", dir, "columns", len(header))
	return first, nil
}
