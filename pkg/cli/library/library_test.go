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

package library

import (
	"testing"

	"github.com/leafmark/leafmark/pkg/assert"
	"github.com/leafmark/leafmark/pkg/cli/database"
)

func TestRecordsReturnsCopy(t *testing.T) {
	s := NewStore([]database.BookRecord{
		{Hash: "a", Title: "Annihilation", UpdatedAt: 100},
	})

	got := s.Records()
	got[0].Title = "Mutated"

	assert.Equal(t, s.Records()[0].Title, "Annihilation", "mutating the returned slice should not affect the store")
}

func TestSyncingAndProgress(t *testing.T) {
	s := NewStore(nil)

	assert.Equal(t, s.Syncing(), false, "initial syncing flag mismatch")
	assert.Equal(t, s.Progress(), 0.0, "initial progress mismatch")

	s.SetSyncing(true)
	s.SetProgress(0.4)

	assert.Equal(t, s.Syncing(), true, "syncing flag mismatch")
	assert.Equal(t, s.Progress(), 0.4, "progress mismatch")
}
