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

// Package presenters translates database models into wire representations
package presenters

import (
	"github.com/leafmark/leafmark/pkg/server/database"
)

// BookRecord is the wire representation of a library entry
type BookRecord struct {
	Hash        string `json:"hash"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	SourceTitle string `json:"source_title,omitempty"`
	Progress    string `json:"progress,omitempty"`
	UpdatedAt   int64  `json:"updated_at"`
	DeletedAt   *int64 `json:"deleted_at,omitempty"`
	UploadedAt  *int64 `json:"uploaded_at,omitempty"`
}

// PresentBookRecord presents the given record
func PresentBookRecord(record database.BookRecord) BookRecord {
	return BookRecord{
		Hash:        record.Hash,
		Title:       record.Title,
		Author:      record.Author,
		SourceTitle: record.SourceTitle,
		Progress:    record.Progress,
		UpdatedAt:   record.EditedAt,
		DeletedAt:   record.RemovedAt,
		UploadedAt:  record.UploadedAt,
	}
}

// PresentBookRecords presents the given records
func PresentBookRecords(records []database.BookRecord) []BookRecord {
	ret := make([]BookRecord, 0, len(records))

	for _, record := range records {
		ret = append(ret, PresentBookRecord(record))
	}

	return ret
}

// ToBookRecord converts a wire representation back into a database model
func ToBookRecord(p BookRecord) database.BookRecord {
	return database.BookRecord{
		Hash:        p.Hash,
		Title:       p.Title,
		Author:      p.Author,
		SourceTitle: p.SourceTitle,
		Progress:    p.Progress,
		EditedAt:    p.UpdatedAt,
		RemovedAt:   p.DeletedAt,
		UploadedAt:  p.UploadedAt,
	}
}
