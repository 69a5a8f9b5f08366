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

// Package progress provides a command to record reading progress
package progress

import (
	"database/sql"
	"strconv"

	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/infra"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Mark a book as 42% read
 leafmark progress "The Dispossessed" 0.42`

// NewCmd returns a new progress command
func NewCmd(ctx context.LeafmarkCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "progress <title> <fraction>",
		Short:   "Record reading progress for a book",
		Aliases: []string{"p"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	return cmd
}

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("expected a title and a fraction")
	}

	f, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return errors.Wrap(err, "parsing the fraction")
	}
	if f < 0 || f > 1 {
		return errors.New("the fraction must be between 0 and 1")
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

		record.Progress = args[1]
		record.UpdatedAt = ctx.Clock.Now().UnixMilli()

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

		log.Successf("updated progress for %s\n", record.Title)

		c, err := infra.NewSyncController(ctx)
		if err != nil {
			return errors.Wrap(err, "preparing sync")
		}
		infra.AutoSync(ctx, c)

		return nil
	}
}
