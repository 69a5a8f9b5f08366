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

package app

import (
	"github.com/leafmark/leafmark/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ApplyChanges upserts the given incoming records for the user. A record
// replaces the stored copy only if its most recent mutation is newer.
// Accepted changes are stamped with the current server time. It returns the
// records as stored after the exchange.
func (a *App) ApplyChanges(user database.User, incoming []database.BookRecord) ([]database.BookRecord, error) {
	now := a.Clock.Now().UnixMilli()

	ret := make([]database.BookRecord, 0, len(incoming))

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		for _, record := range incoming {
			stored, err := a.applyRecord(tx, user, record, now)
			if err != nil {
				return err
			}

			ret = append(ret, stored)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func (a *App) applyRecord(tx *gorm.DB, user database.User, record database.BookRecord, now int64) (database.BookRecord, error) {
	var existing database.BookRecord
	err := tx.Where("user_id = ? AND hash = ?", user.ID, record.Hash).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		record.ID = 0
		record.UserID = user.ID
		record.UploadedAt = &now

		if err := tx.Create(&record).Error; err != nil {
			return record, errors.Wrap(err, "creating record")
		}

		return record, nil
	} else if err != nil {
		return existing, errors.Wrap(err, "finding record")
	}

	// last write wins by client mutation recency
	if record.Recency() <= existing.Recency() {
		return existing, nil
	}

	existing.Title = record.Title
	existing.Author = record.Author
	existing.SourceTitle = record.SourceTitle
	existing.Progress = record.Progress
	existing.EditedAt = record.EditedAt
	existing.RemovedAt = record.RemovedAt
	existing.UploadedAt = &now

	if err := tx.Save(&existing).Error; err != nil {
		return existing, errors.Wrap(err, "updating record")
	}

	return existing, nil
}

// GetChangedRecords returns the user's records accepted by the server after
// the given cursor
func (a *App) GetChangedRecords(user database.User, cursor int64) ([]database.BookRecord, error) {
	var ret []database.BookRecord

	err := a.DB.
		Where("user_id = ? AND uploaded_at > ?", user.ID, cursor).
		Order("uploaded_at ASC").
		Find(&ret).Error
	if err != nil {
		return nil, errors.Wrap(err, "querying changed records")
	}

	return ret, nil
}
