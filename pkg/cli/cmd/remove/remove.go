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

// Package remove provides a command to remove a book from the library
package remove

import (
	"database/sql"

	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/infra"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/leafmark/leafmark/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var yes bool

var example = `
 * Remove a book by title
 leafmark remove "The Dispossessed"`

// NewCmd returns a new remove command
func NewCmd(ctx context.LeafmarkCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <title>",
		Short:   "Remove a book from the library",
		Aliases: []string{"rm", "d", "delete"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	return cmd
}

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("missing title argument")
	}

	return nil
}

func newRun(ctx context.LeafmarkCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		record, err := database.GetActiveRecordByTitle(ctx.DB, args[0])
		if err == sql.ErrNoRows {
			return errors.Errorf("no book titled %s in the library", args[0])
		} else if err != nil {
			return errors.Wrap(err, "finding the book")
		}

		if !yes {
			confirmed, err := confirm(record)
			if err != nil {
				return err
			}
			if !confirmed {
				log.Warnf("aborted by user\n")
				return nil
			}
		}

		// Tombstone rather than delete so the removal propagates on sync
		now := ctx.Clock.Now().UnixMilli()
		record.DeletedAt = &now

		if err := writeRecord(ctx, record); err != nil {
			return errors.Wrap(err, "removing the book")
		}

		log.Successf("removed %s\n", record.Title)

		c, err := infra.NewSyncController(ctx)
		if err != nil {
			return errors.Wrap(err, "preparing sync")
		}
		infra.AutoSync(ctx, c)

		return nil
	}
}

func confirm(record database.BookRecord) (bool, error) {
	input, err := ui.PromptInput("remove " + record.Title + "? (y/N)")
	if err != nil {
		return false, errors.Wrap(err, "getting confirmation")
	}

	return input == "y" || input == "Y", nil
}

func writeRecord(ctx context.LeafmarkCtx, record database.BookRecord) error {
	tx, err := ctx.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	if err := record.Update(tx); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "updating the record")
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
