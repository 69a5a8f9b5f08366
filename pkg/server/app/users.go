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
	"strings"

	"github.com/google/uuid"
	"github.com/leafmark/leafmark/pkg/server/database"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrLoginInvalid is an error for invalid credentials
var ErrLoginInvalid = errors.New("wrong email and password combination")

// ErrDuplicateEmail is an error for an email already in use
var ErrDuplicateEmail = errors.New("email is already in use")

// ErrEmailRequired is an error for a missing email
var ErrEmailRequired = errors.New("email is required")

// ErrPasswordTooShort is an error for a password that is too short
var ErrPasswordTooShort = errors.New("password should be longer than 8 characters")

// CreateUser creates a new user account
func (a *App) CreateUser(email, password string) (database.User, error) {
	var user database.User

	email = strings.TrimSpace(email)
	if email == "" {
		return user, ErrEmailRequired
	}
	if len(password) < 8 {
		return user, ErrPasswordTooShort
	}

	var count int64
	if err := a.DB.Model(&database.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return user, errors.Wrap(err, "counting users")
	}
	if count > 0 {
		return user, ErrDuplicateEmail
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user, errors.Wrap(err, "hashing password")
	}

	user = database.User{
		UUID:     uuid.New().String(),
		Email:    email,
		Password: string(hashed),
	}
	if err := a.DB.Create(&user).Error; err != nil {
		return user, errors.Wrap(err, "creating user")
	}

	return user, nil
}

// Authenticate verifies the given credentials and returns the matching user
func (a *App) Authenticate(email, password string) (database.User, error) {
	var user database.User

	err := a.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrLoginInvalid
	} else if err != nil {
		return user, errors.Wrap(err, "finding user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return user, ErrLoginInvalid
	}

	return user, nil
}

// TouchLastLoginAt marks the user as logged in at the current time
func (a *App) TouchLastLoginAt(user database.User) error {
	now := a.Clock.Now()

	if err := a.DB.Model(&user).Update("last_login_at", &now).Error; err != nil {
		return errors.Wrap(err, "updating last login time")
	}

	return nil
}
