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

package merge

import (
	"fmt"
	"testing"

	"github.com/leafmark/leafmark/pkg/assert"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/library"
	"github.com/pkg/errors"
)

func int64p(v int64) *int64 {
	return &v
}

// fakeCoverService records hydration calls and stamps cover fields. If failOn
// is set, the call with that 1-based index returns an error.
type fakeCoverService struct {
	batchSizes []int
	downloaded int
	calls      int
	failOn     int
}

func (s *fakeCoverService) DownloadCovers(records []database.BookRecord) ([]database.BookRecord, error) {
	s.calls++
	if s.failOn != 0 && s.calls == s.failOn {
		return nil, errors.New("cover host unreachable")
	}

	s.batchSizes = append(s.batchSizes, len(records))
	s.downloaded += len(records)

	ret := make([]database.BookRecord, 0, len(records))
	for _, record := range records {
		if !record.Deleted() {
			record.CoverDownloadedAt = int64p(1000)
		}
		ret = append(ret, record)
	}

	return ret, nil
}

func (s *fakeCoverService) GenerateCoverURL(record database.BookRecord) (string, error) {
	if record.Deleted() {
		return "", nil
	}

	return fmt.Sprintf("/covers/%s.svg", record.Hash), nil
}

// observingStore wraps a library store and records published snapshots
type persistRecorder struct {
	persisted [][]database.BookRecord
}

func (p *persistRecorder) PersistLibrary(records []database.BookRecord) error {
	snapshot := make([]database.BookRecord, len(records))
	copy(snapshot, records)
	p.persisted = append(p.persisted, snapshot)

	return nil
}

func TestMergeRecords(t *testing.T) {
	testCases := []struct {
		name     string
		local    database.BookRecord
		synced   database.BookRecord
		expected database.BookRecord
	}{
		{
			name:   "synced wins by recency",
			local:  database.BookRecord{Hash: "h1", Title: "Old Title", Progress: "0.1", UpdatedAt: 100, FilePath: "/books/h1.epub", Format: "epub"},
			synced: database.BookRecord{Hash: "h1", Title: "New Title", Progress: "0.5", UpdatedAt: 200, UploadedAt: int64p(210)},
			expected: database.BookRecord{
				Hash: "h1", Title: "New Title", Progress: "0.5", UpdatedAt: 200, UploadedAt: int64p(210),
				FilePath: "/books/h1.epub", Format: "epub",
			},
		},
		{
			name:   "local wins by recency",
			local:  database.BookRecord{Hash: "h1", Title: "Local Title", Progress: "0.9", UpdatedAt: 300, FilePath: "/books/h1.epub"},
			synced: database.BookRecord{Hash: "h1", Title: "Stale Title", Author: "Ada", Progress: "0.5", UpdatedAt: 200, UploadedAt: int64p(210)},
			expected: database.BookRecord{
				Hash: "h1", Title: "Local Title", Author: "Ada", Progress: "0.9", UpdatedAt: 300, UploadedAt: int64p(210),
				FilePath: "/books/h1.epub",
			},
		},
		{
			name:   "winner fields take precedence even when absent locally",
			local:  database.BookRecord{Hash: "h1", Title: "Title", UpdatedAt: 100, CoverImageURL: "/covers/h1.svg", CoverDownloadedAt: int64p(90)},
			synced: database.BookRecord{Hash: "h1", Title: "Title", Author: "Ursula K. Le Guin", UpdatedAt: 200},
			expected: database.BookRecord{
				Hash: "h1", Title: "Title", Author: "Ursula K. Le Guin", UpdatedAt: 200,
				CoverImageURL: "/covers/h1.svg", CoverDownloadedAt: int64p(90),
			},
		},
		{
			name:   "tie resolves to local",
			local:  database.BookRecord{Hash: "h1", Title: "Local Title", UpdatedAt: 100},
			synced: database.BookRecord{Hash: "h1", Title: "Synced Title", UpdatedAt: 100, UploadedAt: int64p(110)},
			expected: database.BookRecord{
				Hash: "h1", Title: "Local Title", UpdatedAt: 100, UploadedAt: int64p(110),
			},
		},
		{
			name:   "tombstone propagates from synced",
			local:  database.BookRecord{Hash: "h1", Title: "Title", UpdatedAt: 100},
			synced: database.BookRecord{Hash: "h1", Title: "Title", UpdatedAt: 100, DeletedAt: int64p(150)},
			expected: database.BookRecord{
				Hash: "h1", Title: "Title", UpdatedAt: 100, DeletedAt: int64p(150),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := mergeRecords(tc.local, tc.synced)

			assert.DeepEqual(t, got, tc.expected, "merged record mismatch")
		})
	}
}

func TestMergeIdempotence(t *testing.T) {
	local := []database.BookRecord{
		{Hash: "a", Title: "Annihilation", UpdatedAt: 100, CoverDownloadedAt: int64p(90)},
		{Hash: "b", Title: "Borne", UpdatedAt: 200, CoverDownloadedAt: int64p(190)},
	}
	synced := []database.BookRecord{
		{Hash: "a", Title: "Annihilation", UpdatedAt: 100, UploadedAt: int64p(110)},
		{Hash: "c", Title: "Dead Astronauts", UpdatedAt: 300, UploadedAt: int64p(310)},
	}

	store := library.NewStore(local)
	covers := &fakeCoverService{}
	persister := &persistRecorder{}
	engine := NewEngine(store, covers, persister)

	if err := engine.Merge(synced); err != nil {
		t.Fatal(err)
	}

	first := store.Records()
	assert.Equalf(t, len(first), 3, "library length mismatch after first merge")

	if err := engine.Merge(synced); err != nil {
		t.Fatal(err)
	}

	second := store.Records()
	assert.Equal(t, len(second), 3, "library length mismatch after second merge")
	assert.DeepEqual(t, second, first, "second merge should not change the library")
}

func TestMergeTombstonePropagation(t *testing.T) {
	local := []database.BookRecord{
		{Hash: "a", Title: "Annihilation", UpdatedAt: 100, CoverDownloadedAt: int64p(90)},
	}
	synced := []database.BookRecord{
		{Hash: "a", Title: "Annihilation", UpdatedAt: 150, DeletedAt: int64p(150), UploadedAt: int64p(160)},
	}

	store := library.NewStore(local)
	covers := &fakeCoverService{}
	engine := NewEngine(store, covers, &persistRecorder{})

	if err := engine.Merge(synced); err != nil {
		t.Fatal(err)
	}

	got := store.Records()
	assert.Equalf(t, len(got), 1, "library length mismatch")
	assert.Equal(t, got[0].Deleted(), true, "record should remain as a tombstone")
	assert.Equal(t, covers.downloaded, 0, "tombstone should not be hydrated")
}

func TestMergeNewArrivalProgress(t *testing.T) {
	synced := make([]database.BookRecord, 0, 25)
	for i := 0; i < 25; i++ {
		synced = append(synced, database.BookRecord{
			Hash:       fmt.Sprintf("h%02d", i),
			Title:      fmt.Sprintf("Book %02d", i),
			UpdatedAt:  int64(100 + i),
			UploadedAt: int64p(int64(110 + i)),
		})
	}

	store := library.NewStore(nil)
	covers := &fakeCoverService{}
	engine := NewEngine(store, covers, &persistRecorder{})

	var progressValues []float64
	var lengths []int
	engine.onArrivalBatch = func() {
		progressValues = append(progressValues, store.Progress())
		lengths = append(lengths, len(store.Records()))
	}

	if err := engine.Merge(synced); err != nil {
		t.Fatal(err)
	}

	assert.DeepEqual(t, progressValues, []float64{0.4, 0.8, 1.0}, "progress values mismatch")
	assert.DeepEqual(t, lengths, []int{10, 20, 25}, "library lengths mismatch")
	assert.DeepEqual(t, covers.batchSizes, []int{10, 10, 5}, "hydration batch sizes mismatch")
	assert.Equal(t, store.Syncing(), false, "syncing flag should be cleared")
}

func TestMergeSyncingFlag(t *testing.T) {
	t.Run("raised only for new arrivals", func(t *testing.T) {
		local := []database.BookRecord{
			{Hash: "a", Title: "Annihilation", UpdatedAt: 100, CoverDownloadedAt: int64p(90)},
		}
		synced := []database.BookRecord{
			{Hash: "a", Title: "Annihilation", Progress: "0.5", UpdatedAt: 200, UploadedAt: int64p(210)},
		}

		store := library.NewStore(local)
		engine := NewEngine(store, &fakeCoverService{}, &persistRecorder{})

		var observed bool
		engine.onArrivalBatch = func() {
			observed = true
		}

		if err := engine.Merge(synced); err != nil {
			t.Fatal(err)
		}

		assert.Equal(t, observed, false, "field updates should not process arrival batches")
		assert.Equal(t, store.Syncing(), false, "syncing flag should not be raised for field updates")
	})

	t.Run("observable during arrival processing", func(t *testing.T) {
		synced := []database.BookRecord{
			{Hash: "a", Title: "Annihilation", UpdatedAt: 100, UploadedAt: int64p(110)},
		}

		store := library.NewStore(nil)
		engine := NewEngine(store, &fakeCoverService{}, &persistRecorder{})

		var syncingDuring bool
		engine.onArrivalBatch = func() {
			syncingDuring = store.Syncing()
		}

		if err := engine.Merge(synced); err != nil {
			t.Fatal(err)
		}

		assert.Equal(t, syncingDuring, true, "syncing flag should be raised while arrivals are processed")
		assert.Equal(t, store.Syncing(), false, "syncing flag should be cleared on completion")
	})
}

func TestMergeBusy(t *testing.T) {
	store := library.NewStore(nil)
	engine := NewEngine(store, &fakeCoverService{}, &persistRecorder{})
	engine.busy.Store(true)

	synced := []database.BookRecord{
		{Hash: "a", Title: "Annihilation", UpdatedAt: 100, UploadedAt: int64p(110)},
	}

	if err := engine.Merge(synced); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, len(store.Records()), 0, "busy engine should not merge")
}

func TestMergeEmptyBatch(t *testing.T) {
	local := []database.BookRecord{
		{Hash: "a", Title: "Annihilation", UpdatedAt: 100},
	}

	store := library.NewStore(local)
	persister := &persistRecorder{}
	engine := NewEngine(store, &fakeCoverService{}, persister)

	if err := engine.Merge(nil); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, len(persister.persisted), 0, "empty batch should not persist")
	assert.DeepEqual(t, store.Records(), local, "empty batch should not change the library")
}

func TestMergeCoverFailure(t *testing.T) {
	synced := make([]database.BookRecord, 0, 25)
	for i := 0; i < 25; i++ {
		synced = append(synced, database.BookRecord{
			Hash:       fmt.Sprintf("h%02d", i),
			Title:      fmt.Sprintf("Book %02d", i),
			UpdatedAt:  int64(100 + i),
			UploadedAt: int64p(int64(110 + i)),
		})
	}

	store := library.NewStore(nil)
	covers := &fakeCoverService{failOn: 2}
	persister := &persistRecorder{}
	engine := NewEngine(store, covers, persister)

	if err := engine.Merge(synced); err == nil {
		t.Fatal("expected the hydration failure to propagate")
	}

	assert.Equal(t, store.Syncing(), false, "syncing flag should be released on failure")
	assert.Equal(t, len(store.Records()), 10, "snapshot committed before the failure should survive")
	assert.Equal(t, len(persister.persisted), 0, "a failed merge should not persist")

	covers.failOn = 0
	if err := engine.Merge(synced); err != nil {
		t.Fatal(errors.Wrap(err, "merging after a failure"))
	}

	assert.Equal(t, len(store.Records()), 25, "retried merge should complete")
	assert.Equal(t, store.Syncing(), false, "syncing flag should be cleared")
}

func TestMergeUnsyncedArrivalExcluded(t *testing.T) {
	synced := []database.BookRecord{
		{Hash: "a", Title: "Annihilation", UpdatedAt: 100, UploadedAt: int64p(110)},
		{Hash: "b", Title: "Mid Upload", UpdatedAt: 200},
		{Hash: "c", Title: "Removed Elsewhere", UpdatedAt: 300, UploadedAt: int64p(310), DeletedAt: int64p(300)},
	}

	store := library.NewStore(nil)
	engine := NewEngine(store, &fakeCoverService{}, &persistRecorder{})

	if err := engine.Merge(synced); err != nil {
		t.Fatal(err)
	}

	got := store.Records()
	assert.Equalf(t, len(got), 1, "only accepted, live records should arrive")
	assert.Equal(t, got[0].Hash, "a", "arrival hash mismatch")
}
