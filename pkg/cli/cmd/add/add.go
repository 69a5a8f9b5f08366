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

// Package add provides a command to add a book to the library
package add

import (
	"database/sql"
	"path/filepath"
	"strings"

	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/infra"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/leafmark/leafmark/pkg/cli/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var title string
var author string

var example = `
 * Add a book to the library
 leafmark add ~/books/the-dispossessed.epub

 * Add a book with explicit metadata
 leafmark add ~/books/td.epub --title "The Dispossessed" --author "Ursula K. Le Guin"`

// NewCmd returns a new add command
func NewCmd(ctx context.LeafmarkCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add <file>",
		Short:   "Add a book to the library",
		Aliases: []string{"a", "import"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&title, "title", "t", "", "the title of the book")
	f.StringVarP(&author, "author", "a", "", "the author of the book")

	return cmd
}

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("missing file argument")
	}

	return nil
}

func newRun(ctx context.LeafmarkCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return errors.Wrap(err, "resolving file path")
		}
		if !utils.FileExists(path) {
			return errors.Errorf("no such file: %s", path)
		}

		record, err := buildRecord(ctx, path)
		if err != nil {
			return err
		}

		ok, err := database.RecordExists(ctx.DB, record.Hash)
		if err != nil {
			return errors.Wrap(err, "checking for a duplicate")
		}
		if ok {
			log.Warnf("the book is already in the library. skipping.\n")
			return nil
		}

		if err := warnDuplicateTitle(ctx, record.Title); err != nil {
			return err
		}

		if err := writeRecord(ctx, record); err != nil {
			return errors.Wrap(err, "adding the book")
		}

		log.Successf("added %s\n", record.Title)

		c, err := infra.NewSyncController(ctx)
		if err != nil {
			return errors.Wrap(err, "preparing sync")
		}
		infra.AutoSync(ctx, c)

		return nil
	}
}

// warnDuplicateTitle warns if a live record with the given title already
// exists. The book is still added because distinct files can share a title.
func warnDuplicateTitle(ctx context.LeafmarkCtx, title string) error {
	_, err := database.GetActiveRecordByTitle(ctx.DB, title)
	if err == sql.ErrNoRows {
		return nil
	} else if err != nil {
		return errors.Wrap(err, "checking for a duplicate title")
	}

	log.Warnf("a book titled %s already exists in the library\n", title)

	return nil
}

func buildRecord(ctx context.LeafmarkCtx, path string) (database.BookRecord, error) {
	hash, err := utils.ContentHash(path)
	if err != nil {
		return database.BookRecord{}, errors.Wrap(err, "hashing the file")
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	bookTitle := title
	if bookTitle == "" {
		base := filepath.Base(path)
		bookTitle = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return database.BookRecord{
		Hash:      hash,
		Title:     bookTitle,
		Author:    author,
		Format:    ext,
		FilePath:  path,
		UpdatedAt: ctx.Clock.Now().UnixMilli(),
	}, nil
}

func writeRecord(ctx context.LeafmarkCtx, record database.BookRecord) error {
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

	return nil
}
