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
Package cache provides a result cache for rendered SELECT output.

Result Cache Overview:
======================

The executor stores the rendered text of a SELECT under a key made of the
current database and the statement text. Each entry records the tables it
read, written as "<database>.<table>", so a write to one table drops only
the results that depended on it.

Invalidation:
=============

An entry is removed when:
  - INSERT, UPDATE, DELETE, CREATE TABLE, or DROP TABLE touches a table it read
  - CREATE DATABASE or DROP DATABASE runs (everything is dropped)
  - its TTL has passed at lookup time
  - the cache is full and it is the least recently used entry

Page files edited outside PageDB are not detected, so the cache is off
unless result_cache_entries is set.

Usage Example:
==============

	rc := cache.New(cache.Config{MaxEntries: 256, TTL: 5 * time.Minute})

	if out, ok := rc.Get(key); ok {
		return out
	}
	out := runSelect()
	rc.Set(key, out, []string{"shop.people"})
*/
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config holds the configuration for the result cache.
type Config struct {
	// MaxEntries is the maximum number of cached results.
	// When exceeded, the least recently used entries are evicted.
	MaxEntries int

	// TTL is the time-to-live for cached entries.
	TTL time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxEntries: 256,
		TTL:        5 * time.Minute,
	}
}

type entry struct {
	key       string
	value     string
	tables    []string
	expiresAt time.Time
	element   *list.Element
}

// ResultCache caches rendered results with LRU eviction and TTL expiration.
type ResultCache struct {
	config Config
	now    func() time.Time

	mu sync.Mutex

	cache map[string]*entry
	lru   *list.List

	// tableIndex maps a table to the keys of results that read it.
	tableIndex map[string]map[string]struct{}

	hits   int64
	misses int64
}

// New creates a ResultCache with the given configuration.
func New(config Config) *ResultCache {
	def := DefaultConfig()
	if config.MaxEntries <= 0 {
		config.MaxEntries = def.MaxEntries
	}
	if config.TTL <= 0 {
		config.TTL = def.TTL
	}

	return &ResultCache{
		config:     config,
		now:        time.Now,
		cache:      make(map[string]*entry),
		lru:        list.New(),
		tableIndex: make(map[string]map[string]struct{}),
	}
}

// Get returns the cached result for key if present and not expired.
func (rc *ResultCache) Get(key string) (string, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	e, ok := rc.cache[key]
	if !ok {
		rc.misses++
		return "", false
	}
	if rc.now().After(e.expiresAt) {
		rc.removeEntry(e)
		rc.misses++
		return "", false
	}

	rc.lru.MoveToFront(e.element)
	rc.hits++
	return e.value, true
}

// Set caches result under key. tables lists every table the result read.
func (rc *ResultCache) Set(key, result string, tables []string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if e, ok := rc.cache[key]; ok {
		rc.removeEntry(e)
	}
	for len(rc.cache) >= rc.config.MaxEntries {
		rc.evictOldest()
	}

	e := &entry{
		key:       key,
		value:     result,
		tables:    tables,
		expiresAt: rc.now().Add(rc.config.TTL),
	}
	e.element = rc.lru.PushFront(e)
	rc.cache[key] = e

	for _, table := range tables {
		if rc.tableIndex[table] == nil {
			rc.tableIndex[table] = make(map[string]struct{})
		}
		rc.tableIndex[table][key] = struct{}{}
	}
}

// Invalidate removes every result that read table.
func (rc *ResultCache) Invalidate(table string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	for key := range rc.tableIndex[table] {
		if e, ok := rc.cache[key]; ok {
			rc.removeEntry(e)
		}
	}
	delete(rc.tableIndex, table)
}

// InvalidateAll clears the cache. Hit and miss counters are kept.
func (rc *ResultCache) InvalidateAll() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cache = make(map[string]*entry)
	rc.lru = list.New()
	rc.tableIndex = make(map[string]map[string]struct{})
}

// removeEntry must be called with mu held.
func (rc *ResultCache) removeEntry(e *entry) {
	delete(rc.cache, e.key)
	rc.lru.Remove(e.element)

	for _, table := range e.tables {
		if keys, ok := rc.tableIndex[table]; ok {
			delete(keys, e.key)
			if len(keys) == 0 {
				delete(rc.tableIndex, table)
			}
		}
	}
}

func (rc *ResultCache) evictOldest() {
	elem := rc.lru.Back()
	if elem == nil {
		return
	}
	rc.removeEntry(elem.Value.(*entry))
}

// Stats holds cache statistics.
type Stats struct {
	Hits       int64
	Misses     int64
	Entries    int
	MaxEntries int
	HitRate    float64
}

// Stats returns current cache statistics.
func (rc *ResultCache) Stats() Stats {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	total := rc.hits + rc.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(rc.hits) / float64(total)
	}

	return Stats{
		Hits:       rc.hits,
		Misses:     rc.misses,
		Entries:    len(rc.cache),
		MaxEntries: rc.config.MaxEntries,
		HitRate:    hitRate,
	}
}
