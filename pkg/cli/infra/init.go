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

// Package infra initializes the leafmark environment
package infra

import (
	"database/sql"
	"path/filepath"

	"github.com/leafmark/leafmark/pkg/cli/config"
	"github.com/leafmark/leafmark/pkg/cli/consts"
	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/library"
	"github.com/leafmark/leafmark/pkg/cli/utils"
	"github.com/leafmark/leafmark/pkg/clock"
	"github.com/leafmark/leafmark/pkg/dirs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Init initializes the leafmark environment and returns a context
func Init(versionTag, defaultAPIEndpoint string) (*context.LeafmarkCtx, error) {
	ctx := newBaseCtx(versionTag)

	if err := initFiles(ctx); err != nil {
		return nil, errors.Wrap(err, "initializing files")
	}

	db, err := database.Open(filepath.Join(ctx.LeafmarkDir, consts.LeafmarkDBFileName))
	if err != nil {
		return nil, errors.Wrap(err, "initializing database")
	}
	ctx.DB = db

	if err := database.InitSchema(db); err != nil {
		return nil, errors.Wrap(err, "initializing schema")
	}

	if err := initSystem(ctx); err != nil {
		return nil, errors.Wrap(err, "initializing system data")
	}

	if err := initConfig(ctx, defaultAPIEndpoint); err != nil {
		return nil, errors.Wrap(err, "initializing config")
	}

	if err := setupCtx(&ctx); err != nil {
		return nil, errors.Wrap(err, "setting up the context")
	}

	return &ctx, nil
}

func newBaseCtx(versionTag string) context.LeafmarkCtx {
	leafmarkDir := filepath.Join(dirs.DataHome, consts.LeafmarkDirName)

	return context.LeafmarkCtx{
		Version:       versionTag,
		HomeDir:       dirs.Home,
		LeafmarkDir:   leafmarkDir,
		CoverCacheDir: filepath.Join(dirs.CacheHome, consts.LeafmarkDirName, consts.CoverCacheDirName),
		ConfigDir:     filepath.Join(dirs.ConfigHome, consts.LeafmarkDirName),
		Clock:         clock.New(),
	}
}

// initFiles creates the directories leafmark operates on
func initFiles(ctx context.LeafmarkCtx) error {
	for _, path := range []string{ctx.LeafmarkDir, ctx.CoverCacheDir, ctx.ConfigDir} {
		if err := utils.EnsureDir(path); err != nil {
			return errors.Wrapf(err, "creating %s", path)
		}
	}

	return nil
}

// initConfig writes a default config file if none exists
func initConfig(ctx context.LeafmarkCtx, defaultAPIEndpoint string) error {
	ok, err := config.Exists(ctx)
	if err != nil {
		return errors.Wrap(err, "checking config")
	}
	if ok {
		return nil
	}

	return config.Write(ctx, config.Default(defaultAPIEndpoint))
}

// initSystem seeds the system table with initial values
func initSystem(ctx context.LeafmarkCtx) error {
	initialValues := map[string]interface{}{
		consts.SystemSchema:       database.SchemaVersion,
		consts.SystemLastSyncedAt: 0,
		consts.SystemLastUpgrade:  ctx.Clock.Now().Unix(),
	}

	tx, err := ctx.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	for key, val := range initialValues {
		var count int
		if err := tx.QueryRow("SELECT count(*) FROM system WHERE key = ?", key).Scan(&count); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "counting system key %s", key)
		}
		if count > 0 {
			continue
		}

		if err := database.InsertSystem(tx, key, val); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "inserting system key %s", key)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing a transaction")
	}

	return nil
}

// setupCtx fills the context with user configuration and session state
func setupCtx(ctx *context.LeafmarkCtx) error {
	cf, err := config.Read(*ctx)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}
	ctx.APIEndpoint = cf.APIEndpoint

	var sessionKey string
	err = database.GetSystem(ctx.DB, consts.SystemSessionKey, &sessionKey)
	if err != nil && errors.Cause(err) != sql.ErrNoRows {
		return errors.Wrap(err, "getting session key")
	}
	ctx.SessionKey = sessionKey

	var sessionKeyExpiry int64
	err = database.GetSystem(ctx.DB, consts.SystemSessionKeyExpiry, &sessionKeyExpiry)
	if err != nil && errors.Cause(err) != sql.ErrNoRows {
		return errors.Wrap(err, "getting session key expiry")
	}
	ctx.SessionKeyExpiry = sessionKeyExpiry

	records, err := database.GetLibrary(ctx.DB)
	if err != nil {
		return errors.Wrap(err, "loading library")
	}
	ctx.Library = library.NewStore(records)

	return nil
}

// RunEFunc is a function type of a cobra command handler
type RunEFunc func(*cobra.Command, []string) error
