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

// Package session holds the current-database selection of a shell.
package session

import "sync"

// Session is the current database slot. The zero value has no database
// selected and is ready to use.
type Session struct {
	mu       sync.RWMutex
	database string
}

// New creates a Session with no database selected.
func New() *Session {
	return &Session{}
}

// CurrentDatabase returns the selected database and whether one is set.
func (s *Session) CurrentDatabase() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.database, s.database != ""
}

// SetCurrentDatabase selects db.
func (s *Session) SetCurrentDatabase(db string) {
	s.mu.Lock()
	s.database = db
	s.mu.Unlock()
}

// Clear deselects the current database.
func (s *Session) Clear() {
	s.SetCurrentDatabase("")
}
