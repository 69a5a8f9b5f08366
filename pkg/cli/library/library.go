/* Copyright 2025 Leafmark Authors
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

// Package library provides a shared in-memory view of the book library
package library

import (
	"sync"

	"github.com/leafmark/leafmark/pkg/cli/database"
)

// Store holds the in-memory library state observed by commands while a sync
// is in flight. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	records  []database.BookRecord
	syncing  bool
	progress float64
}

// NewStore returns a new store holding the given records
func NewStore(records []database.BookRecord) *Store {
	return &Store{records: records}
}

// Records returns a copy of the current records
func (s *Store) Records() []database.BookRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make([]database.BookRecord, len(s.records))
	copy(ret, s.records)

	return ret
}

// SetRecords replaces the current records
func (s *Store) SetRecords(records []database.BookRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = records
}

// Syncing returns true if a merge is publishing new arrivals
func (s *Store) Syncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.syncing
}

// SetSyncing sets the syncing flag
func (s *Store) SetSyncing(syncing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncing = syncing
}

// Progress returns the fraction of new arrivals processed so far, in [0, 1]
func (s *Store) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.progress
}

// SetProgress sets the progress fraction
func (s *Store) SetProgress(progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress = progress
}
