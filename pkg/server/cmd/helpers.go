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

package cmd

import (
	"github.com/joho/godotenv"
	"github.com/leafmark/leafmark/pkg/clock"
	"github.com/leafmark/leafmark/pkg/server/app"
	"github.com/leafmark/leafmark/pkg/server/config"
	"github.com/leafmark/leafmark/pkg/server/database"
	"github.com/leafmark/leafmark/pkg/server/log"
	"github.com/pkg/errors"
)

// initApp loads the environment and connects to the database
func initApp() (*app.App, error) {
	if err := godotenv.Load(); err != nil {
		// the env file is optional
		log.WithFields(log.Fields{"error": err.Error()}).Debug("no env file loaded")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	database.InitSchema(db)

	a := &app.App{
		DB:     db,
		Clock:  clock.New(),
		Config: cfg,
	}
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating app")
	}

	return a, nil
}
