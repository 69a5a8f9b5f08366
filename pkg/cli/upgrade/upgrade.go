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

// Package upgrade checks for a newer release of leafmark
package upgrade

import (
	gocontext "context"
	"fmt"
	"strings"

	"github.com/google/go-github/github"
	"github.com/leafmark/leafmark/pkg/cli/config"
	"github.com/leafmark/leafmark/pkg/cli/consts"
	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/pkg/errors"
)

// upgradeInterval is the minimum number of seconds between upgrade checks
var upgradeInterval int64 = 86400

func shouldCheck(ctx context.LeafmarkCtx) (bool, error) {
	cf, err := config.Read(ctx)
	if err != nil {
		return false, errors.Wrap(err, "reading config")
	}
	if !cf.EnableUpgradeCheck {
		return false, nil
	}

	var lastUpgrade int64
	if err := database.GetSystem(ctx.DB, consts.SystemLastUpgrade, &lastUpgrade); err != nil {
		return false, errors.Wrap(err, "getting last upgrade time")
	}

	now := ctx.Clock.Now().Unix()

	return now-lastUpgrade > upgradeInterval, nil
}

func checkVersion(ctx context.LeafmarkCtx) error {
	// fetch latest version
	gh := github.NewClient(nil)
	release, _, err := gh.Repositories.GetLatestRelease(gocontext.Background(), "leafmark", "leafmark")
	if err != nil {
		return errors.Wrap(err, "fetching the latest release")
	}

	latest := strings.TrimPrefix(release.GetTagName(), "v")

	if latest == ctx.Version {
		log.Debug("already up-to-date (v%s)\n", ctx.Version)
		return nil
	}

	log.Infof("a newer version v%s is available. (current: v%s)\n", latest, ctx.Version)
	fmt.Println("https://github.com/leafmark/leafmark/releases")

	return nil
}

// Check checks for a newer release if the check interval has elapsed
func Check(ctx context.LeafmarkCtx) error {
	ok, err := shouldCheck(ctx)
	if err != nil {
		return errors.Wrap(err, "checking if upgrade check should happen")
	}
	if !ok {
		return nil
	}

	if err := database.UpdateSystem(ctx.DB, consts.SystemLastUpgrade, ctx.Clock.Now().Unix()); err != nil {
		return errors.Wrap(err, "updating last upgrade time")
	}

	if err := checkVersion(ctx); err != nil {
		return errors.Wrap(err, "checking version")
	}

	return nil
}
