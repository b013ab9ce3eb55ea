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

package config

import (
	"encoding/json"
	"os"

	"pagedb/internal/logging"
)

// PageSizeFile reads the page capacity from a JSON document of the form
// {"page_size_kb": 64}. The file is re-read on every call so that edits
// take effect on the next insert without a restart.
type PageSizeFile struct {
	Path       string
	FallbackKB int
	Log        logging.Sink
}

// NewPageSizeFile builds a PageSizeFile from cfg.
func NewPageSizeFile(cfg *Config, log logging.Sink) *PageSizeFile {
	return &PageSizeFile{
		Path:       cfg.PageConfigPath(),
		FallbackKB: cfg.PageSizeKB,
		Log:        logging.OrNop(log),
	}
}

type pageSizeDoc struct {
	PageSizeKB *int `json:"page_size_kb"`
}

// PageSizeBytes returns the page capacity in bytes. A missing file,
// malformed JSON, or a non-positive value yields the fallback.
func (p *PageSizeFile) PageSizeBytes() int64 {
	kb := p.FallbackKB
	if kb < 1 {
		kb = DefaultPageSizeKB
	}

	data, err := os.ReadFile(p.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.OrNop(p.Log).Warn("Cannot read page config", "path", p.Path, "error", err)
		}
		return int64(kb) * 1024
	}

	var doc pageSizeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		logging.OrNop(p.Log).Warn("Invalid page config", "path", p.Path, "error", err)
		return int64(kb) * 1024
	}
	if doc.PageSizeKB != nil && *doc.PageSizeKB > 0 {
		kb = *doc.PageSizeKB
	}
	return int64(kb) * 1024
}

// FixedPageSize is a constant page capacity in bytes.
type FixedPageSize int64

// PageSizeBytes returns the capacity.
func (f FixedPageSize) PageSizeBytes() int64 { return int64(f) }
