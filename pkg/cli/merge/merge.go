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

// Package merge reconciles the local library against a synced batch of records
package merge

import (
	"sort"
	"sync/atomic"

	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/library"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/pkg/errors"
)

// batch sizes for cover hydration. New arrivals use a smaller batch because
// each record additionally needs a cover handle resolved and an append.
const (
	existingBatchSize = 20
	arrivalBatchSize  = 10
)

// CoverService hydrates cover images for book records
type CoverService interface {
	DownloadCovers(records []database.BookRecord) ([]database.BookRecord, error)
	GenerateCoverURL(record database.BookRecord) (string, error)
}

// Persister writes the full library snapshot to durable storage
type Persister interface {
	PersistLibrary(records []database.BookRecord) error
}

// PersistFunc is an adapter to allow an ordinary function as a Persister
type PersistFunc func(records []database.BookRecord) error

// PersistLibrary calls f
func (f PersistFunc) PersistLibrary(records []database.BookRecord) error {
	return f(records)
}

// Engine merges synced batches into the library store. It is not re-entrant.
// A merge triggered while another is in progress is a no-op.
type Engine struct {
	store   *library.Store
	covers  CoverService
	persist Persister
	busy    atomic.Bool

	// onArrivalBatch, if set, runs after each arrival batch is published.
	// Used by tests to observe intermediate snapshots.
	onArrivalBatch func()
}

// NewEngine returns a new merge engine operating on the given store
func NewEngine(store *library.Store, covers CoverService, persist Persister) *Engine {
	return &Engine{
		store:   store,
		covers:  covers,
		persist: persist,
	}
}

// Merge reconciles the current library against the given synced batch and
// commits the result to the store and to durable storage. Matched records are
// field-merged by recency. New arrivals are appended in hydration batches,
// publishing a partial snapshot and a progress fraction after each batch.
func (e *Engine) Merge(synced []database.BookRecord) error {
	if len(synced) == 0 {
		return nil
	}

	if !e.busy.CompareAndSwap(false, true) {
		log.Debug("merge already in progress. skipping.\n")
		return nil
	}
	defer e.busy.Store(false)

	local := e.store.Records()

	// Ascending updatedAt order makes the later write win if the batch
	// carries two records for the same hash.
	batch := make([]database.BookRecord, len(synced))
	copy(batch, synced)
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].UpdatedAt < batch[j].UpdatedAt
	})

	syncedByHash := make(map[string]database.BookRecord, len(batch))
	for _, record := range batch {
		syncedByHash[record.Hash] = record
	}

	localHashes := make(map[string]bool, len(local))
	for _, record := range local {
		localHashes[record.Hash] = true
	}

	working := make([]database.BookRecord, 0, len(local))
	var needCover []string

	for _, record := range local {
		syncedRecord, ok := syncedByHash[record.Hash]
		if !ok {
			working = append(working, record)
			continue
		}

		if !syncedRecord.Deleted() && syncedRecord.UploadedAt != nil && record.CoverDownloadedAt == nil {
			needCover = append(needCover, record.Hash)
		}

		working = append(working, mergeRecords(record, syncedRecord))
	}

	arrivals := newArrivals(batch, syncedByHash, localHashes)

	if len(arrivals) > 0 {
		e.store.SetSyncing(true)
		defer e.store.SetSyncing(false)
	}

	if err := e.hydrateExisting(working, needCover); err != nil {
		return errors.Wrap(err, "hydrating covers for merged records")
	}

	working, err := e.appendArrivals(working, arrivals)
	if err != nil {
		return errors.Wrap(err, "appending new arrivals")
	}

	if err := e.persist.PersistLibrary(working); err != nil {
		return errors.Wrap(err, "persisting library")
	}

	e.store.SetRecords(working)

	return nil
}

// mergeRecords merges a local record with its synced counterpart. The record
// with the larger updatedAt wins, and the loser serves as the base supplying
// fields the winner does not carry. Precedence is record-granular.
func mergeRecords(local, synced database.BookRecord) database.BookRecord {
	if synced.UpdatedAt > local.UpdatedAt {
		return overlay(local, synced)
	}

	return overlay(synced, local)
}

// overlay returns the base record overwritten by the fields present in the
// winner. Absent fields in the winner fall through to the base.
func overlay(base, winner database.BookRecord) database.BookRecord {
	ret := base

	if winner.Hash != "" {
		ret.Hash = winner.Hash
	}
	if winner.Title != "" {
		ret.Title = winner.Title
	}
	if winner.Author != "" {
		ret.Author = winner.Author
	}
	if winner.SourceTitle != "" {
		ret.SourceTitle = winner.SourceTitle
	}
	if winner.Progress != "" {
		ret.Progress = winner.Progress
	}
	if winner.UpdatedAt != 0 {
		ret.UpdatedAt = winner.UpdatedAt
	}
	if winner.DeletedAt != nil {
		ret.DeletedAt = winner.DeletedAt
	}
	if winner.UploadedAt != nil {
		ret.UploadedAt = winner.UploadedAt
	}
	if winner.Format != "" {
		ret.Format = winner.Format
	}
	if winner.FilePath != "" {
		ret.FilePath = winner.FilePath
	}
	if winner.CoverImageURL != "" {
		ret.CoverImageURL = winner.CoverImageURL
	}
	if winner.CoverDownloadedAt != nil {
		ret.CoverDownloadedAt = winner.CoverDownloadedAt
	}

	return ret
}

// newArrivals selects synced records absent from the local library. Tombstones
// and records not yet accepted by the remote side are excluded. The batch is
// walked in sorted order and duplicate hashes resolve to the winning record.
func newArrivals(batch []database.BookRecord, syncedByHash map[string]database.BookRecord, localHashes map[string]bool) []database.BookRecord {
	var ret []database.BookRecord
	seen := make(map[string]bool)

	for _, record := range batch {
		if localHashes[record.Hash] || seen[record.Hash] {
			continue
		}
		seen[record.Hash] = true

		winner := syncedByHash[record.Hash]
		if winner.Deleted() || winner.UploadedAt == nil {
			continue
		}

		ret = append(ret, winner)
	}

	return ret
}

// hydrateExisting downloads covers for merged records in place, in fixed-size
// sequential batches.
func (e *Engine) hydrateExisting(working []database.BookRecord, hashes []string) error {
	if len(hashes) == 0 {
		return nil
	}

	indexByHash := make(map[string]int, len(working))
	for i, record := range working {
		indexByHash[record.Hash] = i
	}

	for start := 0; start < len(hashes); start += existingBatchSize {
		end := start + existingBatchSize
		if end > len(hashes) {
			end = len(hashes)
		}

		chunk := make([]database.BookRecord, 0, end-start)
		for _, hash := range hashes[start:end] {
			chunk = append(chunk, working[indexByHash[hash]])
		}

		downloaded, err := e.covers.DownloadCovers(chunk)
		if err != nil {
			return errors.Wrap(err, "downloading covers")
		}

		for _, record := range downloaded {
			url, err := e.covers.GenerateCoverURL(record)
			if err != nil {
				return errors.Wrapf(err, "resolving cover handle for %s", record.Hash)
			}
			if url != "" {
				record.CoverImageURL = url
			}

			working[indexByHash[record.Hash]] = record
		}
	}

	return nil
}

// appendArrivals hydrates and appends newly-arrived records in fixed-size
// sequential batches. After each batch the store receives a partial snapshot
// and a progress fraction so that callers can observe incremental progress.
func (e *Engine) appendArrivals(working, arrivals []database.BookRecord) ([]database.BookRecord, error) {
	total := len(arrivals)
	if total == 0 {
		return working, nil
	}

	processed := 0

	for start := 0; start < total; start += arrivalBatchSize {
		end := start + arrivalBatchSize
		if end > total {
			end = total
		}

		downloaded, err := e.covers.DownloadCovers(arrivals[start:end])
		if err != nil {
			return working, errors.Wrap(err, "downloading covers")
		}

		for _, record := range downloaded {
			url, err := e.covers.GenerateCoverURL(record)
			if err != nil {
				return working, errors.Wrapf(err, "resolving cover handle for %s", record.Hash)
			}
			if url != "" {
				record.CoverImageURL = url
			}

			working = append(working, record)
		}

		processed += end - start

		snapshot := make([]database.BookRecord, len(working))
		copy(snapshot, working)
		e.store.SetRecords(snapshot)

		progress := float64(processed) / float64(total)
		if progress > 1 {
			progress = 1
		}
		e.store.SetProgress(progress)

		if e.onArrivalBatch != nil {
			e.onArrivalBatch()
		}
	}

	return working, nil
}
