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

package main

import (
	"os"

	"github.com/leafmark/leafmark/pkg/cli/cmd/add"
	"github.com/leafmark/leafmark/pkg/cli/cmd/login"
	"github.com/leafmark/leafmark/pkg/cli/cmd/logout"
	"github.com/leafmark/leafmark/pkg/cli/cmd/ls"
	"github.com/leafmark/leafmark/pkg/cli/cmd/progress"
	"github.com/leafmark/leafmark/pkg/cli/cmd/remove"
	"github.com/leafmark/leafmark/pkg/cli/cmd/root"
	"github.com/leafmark/leafmark/pkg/cli/cmd/sync"
	"github.com/leafmark/leafmark/pkg/cli/cmd/version"
	"github.com/leafmark/leafmark/pkg/cli/cmd/watch"
	"github.com/leafmark/leafmark/pkg/cli/infra"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/leafmark/leafmark/pkg/cli/upgrade"
)

// apiEndpoint and versionTag are populated during link time
var apiEndpoint = "https://api.leafmark.app/api"
var versionTag = "master"

func main() {
	ctx, err := infra.Init(versionTag, apiEndpoint)
	if err != nil {
		log.Errorf("initializing environment: %v\n", err)
		os.Exit(1)
	}
	defer ctx.DB.Close()

	root.Register(add.NewCmd(*ctx))
	root.Register(ls.NewCmd(*ctx))
	root.Register(remove.NewCmd(*ctx))
	root.Register(progress.NewCmd(*ctx))
	root.Register(sync.NewCmd(*ctx))
	root.Register(watch.NewCmd(*ctx))
	root.Register(login.NewCmd(*ctx))
	root.Register(logout.NewCmd(*ctx))
	root.Register(version.NewCmd(*ctx))

	if err := root.Execute(); err != nil {
		log.Errorf("%v\n", err)
		os.Exit(1)
	}

	if err := upgrade.Check(*ctx); err != nil {
		log.Debug("upgrade check failed: %v\n", err)
	}
}
