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
	"time"
)

// Model is the base for the database models
type Model struct {
	ID        int `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is a user account
type User struct {
	Model
	UUID        string `gorm:"uniqueIndex;type:uuid"`
	Email       string `gorm:"uniqueIndex"`
	Password    string
	LastLoginAt *time.Time
}

// Session is a user session
type Session struct {
	Model
	UserID    int    `gorm:"index"`
	Key       string `gorm:"uniqueIndex"`
	ExpiresAt time.Time
}

// BookRecord is the server copy of a library entry. EditedAt and RemovedAt
// carry the client-side mutation timestamps in epoch milliseconds. UploadedAt
// is stamped by the server when a change is accepted and drives the pull
// selection.
type BookRecord struct {
	Model
	UserID      int    `gorm:"index:idx_book_records_user_hash,unique"`
	Hash        string `gorm:"index:idx_book_records_user_hash,unique"`
	Title       string
	Author      string
	SourceTitle string
	Progress    string
	EditedAt    int64
	RemovedAt   *int64
	UploadedAt  *int64
}

// Recency returns the timestamp of the record's most recent client mutation
func (r BookRecord) Recency() int64 {
	var removed int64
	if r.RemovedAt != nil {
		removed = *r.RemovedAt
	}

	if removed > r.EditedAt {
		return removed
	}

	return r.EditedAt
}
