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

package infra

import (
	"time"

	"github.com/leafmark/leafmark/pkg/cli/client"
	"github.com/leafmark/leafmark/pkg/cli/config"
	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/covers"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/leafmark/leafmark/pkg/cli/merge"
	"github.com/leafmark/leafmark/pkg/cli/syncer"
	"github.com/pkg/errors"
)

// NewSyncController wires a sync controller for the given context
func NewSyncController(ctx context.LeafmarkCtx) (*syncer.Controller, error) {
	cf, err := config.Read(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	coverService := covers.NewService(ctx)

	engine := merge.NewEngine(ctx.Library, coverService, merge.PersistFunc(func(records []database.BookRecord) error {
		return database.ReplaceLibrary(ctx.DB, records)
	}))

	gateway := syncer.GatewayFunc(func(payload client.SyncRequest) (*client.SyncResponse, error) {
		return client.Sync(ctx, payload)
	})

	interval := time.Duration(cf.AutoSyncIntervalMillis) * time.Millisecond

	return syncer.NewController(ctx.DB, gateway, engine, interval), nil
}

// AutoSync runs a throttled sync round if the user is logged in. It is called
// after local library mutations and its failures are not fatal to the command
// that triggered it.
func AutoSync(ctx context.LeafmarkCtx, c *syncer.Controller) {
	if ctx.SessionKey == "" {
		log.Debug("not logged in. skipping autosync.\n")
		return
	}

	if err := c.AutoSync(); err != nil {
		log.Debug("autosync failed: %v\n", err)
	}
}
