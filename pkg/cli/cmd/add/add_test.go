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

package add

import (
	"testing"

	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/pkg/errors"
)

func TestWarnDuplicateTitle(t *testing.T) {
	db := database.InitTestDB(t)
	defer database.CloseTestDB(t, db)

	ctx := context.LeafmarkCtx{DB: db}

	if err := warnDuplicateTitle(ctx, "The Dispossessed"); err != nil {
		t.Fatal(errors.Wrap(err, "checking an absent title"))
	}

	database.MustInsertRecord(t, db, database.BookRecord{
		Hash:      "h1",
		Title:     "The Dispossessed",
		UpdatedAt: 100,
	})

	if err := warnDuplicateTitle(ctx, "The Dispossessed"); err != nil {
		t.Fatal(errors.Wrap(err, "checking a taken title"))
	}

	database.MustExec(t, "dropping the table", db, "DROP TABLE book_records")

	if err := warnDuplicateTitle(ctx, "The Dispossessed"); err == nil {
		t.Fatal("expected a database error to propagate")
	}
}
