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

package upgrade

import (
	"testing"
	"time"

	"github.com/leafmark/leafmark/pkg/assert"
	"github.com/leafmark/leafmark/pkg/cli/config"
	"github.com/leafmark/leafmark/pkg/cli/consts"
	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/clock"
	"github.com/pkg/errors"
)

func mustShouldCheck(t *testing.T, ctx context.LeafmarkCtx) bool {
	t.Helper()

	got, err := shouldCheck(ctx)
	if err != nil {
		t.Fatal(errors.Wrap(err, "checking the upgrade gate"))
	}

	return got
}

func TestShouldCheck(t *testing.T) {
	db := database.InitTestDB(t)
	defer database.CloseTestDB(t, db)

	clk := clock.NewMock()
	clk.SetNow(time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC))

	ctx := context.LeafmarkCtx{
		DB:        db,
		Clock:     clk,
		ConfigDir: t.TempDir(),
	}

	cf := config.Default("http://mock.url/api")
	if err := config.Write(ctx, cf); err != nil {
		t.Fatal(errors.Wrap(err, "writing config"))
	}
	if err := database.InsertSystem(db, consts.SystemLastUpgrade, clk.Now().Unix()); err != nil {
		t.Fatal(errors.Wrap(err, "seeding last upgrade time"))
	}

	assert.Equal(t, mustShouldCheck(t, ctx), false, "should not check within the interval")

	clk.Advance(25 * time.Hour)

	assert.Equal(t, mustShouldCheck(t, ctx), true, "should check after the interval has elapsed")

	cf.EnableUpgradeCheck = false
	if err := config.Write(ctx, cf); err != nil {
		t.Fatal(errors.Wrap(err, "disabling the upgrade check"))
	}

	assert.Equal(t, mustShouldCheck(t, ctx), false, "should not check when disabled")
}
