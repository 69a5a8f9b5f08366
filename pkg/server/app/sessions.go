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
	"time"

	"github.com/leafmark/leafmark/pkg/server/crypt"
	"github.com/leafmark/leafmark/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// sessionLifetime is how long a session stays valid
const sessionLifetime = 30 * 24 * time.Hour

// CreateSession creates a new session for the given user
func (a *App) CreateSession(user database.User) (database.Session, error) {
	var session database.Session

	key, err := crypt.GetRandomStr(32)
	if err != nil {
		return session, errors.Wrap(err, "generating session key")
	}

	session = database.Session{
		UserID:    user.ID,
		Key:       key,
		ExpiresAt: a.Clock.Now().Add(sessionLifetime),
	}
	if err := a.DB.Create(&session).Error; err != nil {
		return session, errors.Wrap(err, "creating session")
	}

	return session, nil
}

// DeleteSession removes the session with the given key
func (a *App) DeleteSession(key string) error {
	if err := a.DB.Where("key = ?", key).Delete(&database.Session{}).Error; err != nil {
		return errors.Wrap(err, "deleting session")
	}

	return nil
}

// GetSession returns the unexpired session with the given key
func (a *App) GetSession(key string) (database.Session, bool, error) {
	var session database.Session

	result := a.DB.Where("key = ? AND expires_at > ?", key, a.Clock.Now()).First(&session)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return session, false, nil
		}

		return session, false, errors.Wrap(result.Error, "finding session")
	}

	return session, true, nil
}

// DeleteExpiredSessions removes sessions past their expiry. It returns the
// number of sessions removed.
func (a *App) DeleteExpiredSessions() (int64, error) {
	result := a.DB.Where("expires_at < ?", a.Clock.Now()).Delete(&database.Session{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "deleting expired sessions")
	}

	return result.RowsAffected, nil
}
