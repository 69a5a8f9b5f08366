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

package database

import (
	"database/sql"

	"github.com/pkg/errors"
)

// BookRecord is a record of a book in the library. A record is identified by
// the content hash of its book file, which is stable across devices. Timestamps
// are Unix milliseconds.
//
// FilePath, Format, CoverImageURL and CoverDownloadedAt describe state on this
// machine only and are never sent to the server.
type BookRecord struct {
	Hash              string `json:"hash"`
	Title             string `json:"title"`
	Author            string `json:"author,omitempty"`
	SourceTitle       string `json:"source_title,omitempty"`
	Progress          string `json:"progress,omitempty"`
	UpdatedAt         int64  `json:"updated_at"`
	DeletedAt         *int64 `json:"deleted_at,omitempty"`
	UploadedAt        *int64 `json:"uploaded_at,omitempty"`
	Format            string `json:"-"`
	FilePath          string `json:"-"`
	CoverImageURL     string `json:"-"`
	CoverDownloadedAt *int64 `json:"-"`
}

// Deleted returns true if the record is a tombstone
func (r BookRecord) Deleted() bool {
	return r.DeletedAt != nil
}

// Insert inserts the record
func (r BookRecord) Insert(db *DB) error {
	_, err := db.Exec(`INSERT INTO book_records
		(hash, title, author, source_title, progress, updated_at, deleted_at, uploaded_at, format, file_path, cover_image_url, cover_downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Hash, r.Title, r.Author, r.SourceTitle, r.Progress, r.UpdatedAt, r.DeletedAt, r.UploadedAt, r.Format, r.FilePath, r.CoverImageURL, r.CoverDownloadedAt)
	if err != nil {
		return errors.Wrap(err, "inserting book record")
	}

	return nil
}

// Update updates the record with the matching hash
func (r BookRecord) Update(db *DB) error {
	_, err := db.Exec(`UPDATE book_records
		SET title = ?, author = ?, source_title = ?, progress = ?, updated_at = ?, deleted_at = ?, uploaded_at = ?, format = ?, file_path = ?, cover_image_url = ?, cover_downloaded_at = ?
		WHERE hash = ?`,
		r.Title, r.Author, r.SourceTitle, r.Progress, r.UpdatedAt, r.DeletedAt, r.UploadedAt, r.Format, r.FilePath, r.CoverImageURL, r.CoverDownloadedAt, r.Hash)
	if err != nil {
		return errors.Wrap(err, "updating book record")
	}

	return nil
}

// Upsert inserts the record, replacing any existing record with the same hash
func (r BookRecord) Upsert(db *DB) error {
	ok, err := RecordExists(db, r.Hash)
	if err != nil {
		return errors.Wrap(err, "checking for existing record")
	}

	if ok {
		return r.Update(db)
	}

	return r.Insert(db)
}

// Expunge removes the record with the matching hash from the database entirely.
// Removing a book normally tombstones it so that the deletion propagates.
func (r BookRecord) Expunge(db *DB) error {
	if _, err := db.Exec("DELETE FROM book_records WHERE hash = ?", r.Hash); err != nil {
		return errors.Wrap(err, "expunging book record")
	}

	return nil
}

// RecordExists checks if a record with the given hash exists
func RecordExists(db *DB, hash string) (bool, error) {
	var count int
	if err := db.QueryRow("SELECT count(*) FROM book_records WHERE hash = ?", hash).Scan(&count); err != nil {
		return false, errors.Wrap(err, "counting book records")
	}

	return count > 0, nil
}

// GetRecord retrieves the record with the given hash
func GetRecord(db *DB, hash string) (BookRecord, error) {
	row := db.QueryRow(`SELECT hash, title, author, source_title, progress, updated_at, deleted_at, uploaded_at, format, file_path, cover_image_url, cover_downloaded_at
		FROM book_records WHERE hash = ?`, hash)

	return scanRecord(row)
}

// GetActiveRecordByTitle retrieves a non-tombstone record with the given title
func GetActiveRecordByTitle(db *DB, title string) (BookRecord, error) {
	row := db.QueryRow(`SELECT hash, title, author, source_title, progress, updated_at, deleted_at, uploaded_at, format, file_path, cover_image_url, cover_downloaded_at
		FROM book_records WHERE title = ? AND deleted_at IS NULL`, title)

	return scanRecord(row)
}

// GetLibrary retrieves all records including tombstones, ordered by hash
func GetLibrary(db *DB) ([]BookRecord, error) {
	rows, err := db.Query(`SELECT hash, title, author, source_title, progress, updated_at, deleted_at, uploaded_at, format, file_path, cover_image_url, cover_downloaded_at
		FROM book_records ORDER BY hash ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying book records")
	}
	defer rows.Close()

	var ret []BookRecord

	for rows.Next() {
		record, err := scanRecordRows(rows)
		if err != nil {
			return nil, err
		}

		ret = append(ret, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating book records")
	}

	return ret, nil
}

// GetChangedRecords retrieves records touched after the given cursor. A record
// qualifies if it was updated or tombstoned after the cursor.
func GetChangedRecords(db *DB, cursor int64) ([]BookRecord, error) {
	rows, err := db.Query(`SELECT hash, title, author, source_title, progress, updated_at, deleted_at, uploaded_at, format, file_path, cover_image_url, cover_downloaded_at
		FROM book_records WHERE updated_at > ? OR coalesce(deleted_at, 0) > ? ORDER BY hash ASC`, cursor, cursor)
	if err != nil {
		return nil, errors.Wrap(err, "querying changed book records")
	}
	defer rows.Close()

	var ret []BookRecord

	for rows.Next() {
		record, err := scanRecordRows(rows)
		if err != nil {
			return nil, err
		}

		ret = append(ret, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating changed book records")
	}

	return ret, nil
}

// ReplaceLibrary atomically replaces the stored library with the given records
func ReplaceLibrary(db *DB, records []BookRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	if _, err := tx.Exec("DELETE FROM book_records"); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "clearing book records")
	}

	for _, record := range records {
		if err := record.Insert(tx); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "inserting record %s", record.Hash)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing a transaction")
	}

	return nil
}

func scanRecord(row *sql.Row) (BookRecord, error) {
	var record BookRecord
	var deletedAt, uploadedAt, coverDownloadedAt sql.NullInt64

	err := row.Scan(&record.Hash, &record.Title, &record.Author, &record.SourceTitle, &record.Progress,
		&record.UpdatedAt, &deletedAt, &uploadedAt, &record.Format, &record.FilePath, &record.CoverImageURL, &coverDownloadedAt)
	if err != nil {
		return record, err
	}

	record.DeletedAt = nullableInt64(deletedAt)
	record.UploadedAt = nullableInt64(uploadedAt)
	record.CoverDownloadedAt = nullableInt64(coverDownloadedAt)

	return record, nil
}

func scanRecordRows(rows *sql.Rows) (BookRecord, error) {
	var record BookRecord
	var deletedAt, uploadedAt, coverDownloadedAt sql.NullInt64

	err := rows.Scan(&record.Hash, &record.Title, &record.Author, &record.SourceTitle, &record.Progress,
		&record.UpdatedAt, &deletedAt, &uploadedAt, &record.Format, &record.FilePath, &record.CoverImageURL, &coverDownloadedAt)
	if err != nil {
		return record, errors.Wrap(err, "scanning book record")
	}

	record.DeletedAt = nullableInt64(deletedAt)
	record.UploadedAt = nullableInt64(uploadedAt)
	record.CoverDownloadedAt = nullableInt64(coverDownloadedAt)

	return record, nil
}

func nullableInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}

	ret := v.Int64
	return &ret
}
