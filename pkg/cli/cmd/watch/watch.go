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

// Package watch provides a command to watch a directory for new books
package watch

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/infra"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/leafmark/leafmark/pkg/cli/utils"
	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
)

// bookExtensions are the file extensions treated as books
var bookExtensions = map[string]bool{
	".epub": true,
	".pdf":  true,
	".mobi": true,
	".azw3": true,
	".txt":  true,
}

var example = `
 * Watch a directory and add new books as they appear
 leafmark watch ~/books`

// NewCmd returns a new watch command
func NewCmd(ctx context.LeafmarkCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch <dir>",
		Short:   "Watch a directory and add new books to the library",
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	return cmd
}

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("missing directory argument")
	}

	return nil
}

func newRun(ctx context.LeafmarkCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return errors.Wrap(err, "resolving directory path")
		}
		if !utils.DirExists(dir) {
			return errors.Errorf("no such directory: %s", dir)
		}

		c, err := infra.NewSyncController(ctx)
		if err != nil {
			return errors.Wrap(err, "preparing sync")
		}

		w := watcher.New()
		w.FilterOps(watcher.Create, watcher.Move, watcher.Rename)

		if err := w.AddRecursive(dir); err != nil {
			return errors.Wrap(err, "watching directory")
		}

		go func() {
			for {
				select {
				case event := <-w.Event:
					if event.IsDir() {
						continue
					}
					if !bookExtensions[strings.ToLower(filepath.Ext(event.Path))] {
						continue
					}

					if err := addBook(ctx, event.Path); err != nil {
						log.Errorf("adding %s: %v\n", event.Path, err)
						continue
					}

					infra.AutoSync(ctx, c)
				case err := <-w.Error:
					log.Errorf("watching: %v\n", err)
				case <-w.Closed:
					return
				}
			}
		}()

		log.Infof("watching %s\n", dir)

		if err := w.Start(time.Second); err != nil {
			return errors.Wrap(err, "starting watcher")
		}

		return nil
	}
}

func addBook(ctx context.LeafmarkCtx, path string) error {
	hash, err := utils.ContentHash(path)
	if err != nil {
		return errors.Wrap(err, "hashing the file")
	}

	ok, err := database.RecordExists(ctx.DB, hash)
	if err != nil {
		return errors.Wrap(err, "checking for a duplicate")
	}
	if ok {
		log.Debug("%s is already in the library. skipping.\n", path)
		return nil
	}

	base := filepath.Base(path)
	record := database.BookRecord{
		Hash:      hash,
		Title:     strings.TrimSuffix(base, filepath.Ext(base)),
		Format:    strings.TrimPrefix(filepath.Ext(path), "."),
		FilePath:  path,
		UpdatedAt: ctx.Clock.Now().UnixMilli(),
	}

	tx, err := ctx.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	if err := record.Insert(tx); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "inserting the record")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing a transaction")
	}

	records, err := database.GetLibrary(ctx.DB)
	if err != nil {
		return errors.Wrap(err, "reloading library")
	}
	ctx.Library.SetRecords(records)

	log.Successf("added %s\n", record.Title)

	return nil
}
