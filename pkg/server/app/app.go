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

// Package app provides the business logic of the server
package app

import (
	"github.com/leafmark/leafmark/pkg/clock"
	"github.com/leafmark/leafmark/pkg/server/config"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// App is an abstraction of the server application
type App struct {
	DB     *gorm.DB
	Clock  clock.Clock
	Config config.Config
}

// ErrEmptyDB is an error for missing database connection in the app configuration
var ErrEmptyDB = errors.New("DB is empty")

// ErrEmptyClock is an error for missing clock in the app configuration
var ErrEmptyClock = errors.New("Clock is empty")

// Validate validates the app configuration
func (a *App) Validate() error {
	if a.DB == nil {
		return ErrEmptyDB
	}
	if a.Clock == nil {
		return ErrEmptyClock
	}

	return nil
}
