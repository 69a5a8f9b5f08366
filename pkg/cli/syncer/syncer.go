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

// Package syncer sequences sync cycles against the sync gateway
package syncer

import (
	"sync/atomic"
	"time"

	"github.com/leafmark/leafmark/pkg/cli/client"
	"github.com/leafmark/leafmark/pkg/cli/consts"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Gateway exchanges records with the remote side. Exchanges must be
// idempotent under retry with the same cursor.
type Gateway interface {
	Exchange(payload client.SyncRequest) (*client.SyncResponse, error)
}

// GatewayFunc is an adapter to allow an ordinary function as a Gateway
type GatewayFunc func(payload client.SyncRequest) (*client.SyncResponse, error)

// Exchange calls f
func (f GatewayFunc) Exchange(payload client.SyncRequest) (*client.SyncResponse, error) {
	return f(payload)
}

// Merger reconciles a synced batch into the local library
type Merger interface {
	Merge(records []database.BookRecord) error
}

// Controller decides when to talk to the gateway and in which direction.
// Pulls are single-flight. Automatic syncs are throttled on the leading edge
// so a burst of library mutations produces at most one exchange per window.
type Controller struct {
	db       *database.DB
	gateway  Gateway
	merger   Merger
	throttle *rate.Limiter
	pulling  atomic.Bool
}

// NewController returns a new sync controller. interval is the minimum gap
// between automatic sync runs.
func NewController(db *database.DB, gateway Gateway, merger Merger, interval time.Duration) *Controller {
	return &Controller{
		db:       db,
		gateway:  gateway,
		merger:   merger,
		throttle: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Cursor returns the timestamp below which local and remote state are
// assumed reconciled
func (c *Controller) Cursor() (int64, error) {
	var ret int64
	if err := database.GetSystem(c.db, consts.SystemLastSyncedAt, &ret); err != nil {
		return 0, errors.Wrap(err, "getting the last synced time")
	}

	return ret, nil
}

func (c *Controller) advanceCursor(val int64) error {
	if err := database.UpdateSystem(c.db, consts.SystemLastSyncedAt, val); err != nil {
		return errors.Wrap(err, "advancing the last synced time")
	}

	return nil
}

// Pull fetches remote changes without offering local ones. If a pull is
// already in flight the call is a no-op.
func (c *Controller) Pull() error {
	if !c.pulling.CompareAndSwap(false, true) {
		log.Debug("pull already in flight. skipping.\n")
		return nil
	}
	defer c.pulling.Store(false)

	cursor, err := c.Cursor()
	if err != nil {
		return err
	}

	resp, err := c.gateway.Exchange(client.SyncRequest{
		LastSyncedAt: cursor,
		Direction:    client.DirectionPull,
	})
	if err != nil {
		return errors.Wrap(err, "pulling from the gateway")
	}

	if err := c.merger.Merge(resp.Records); err != nil {
		return errors.Wrap(err, "merging pulled records")
	}

	return c.advanceCursor(resp.LastSyncedAt)
}

// Push uploads records changed since the cursor without requesting remote
// changes. It is a no-op if nothing changed.
func (c *Controller) Push() error {
	cursor, err := c.Cursor()
	if err != nil {
		return err
	}

	records, err := database.GetChangedRecords(c.db, cursor)
	if err != nil {
		return errors.Wrap(err, "getting changed records")
	}
	if len(records) == 0 {
		log.Debug("no records changed since the cursor. skipping push.\n")
		return nil
	}

	resp, err := c.gateway.Exchange(client.SyncRequest{
		Records:      records,
		LastSyncedAt: cursor,
		Direction:    client.DirectionPush,
	})
	if err != nil {
		return errors.Wrap(err, "pushing to the gateway")
	}

	if err := c.merger.Merge(resp.Records); err != nil {
		return errors.Wrap(err, "merging accepted records")
	}

	return c.advanceCursor(resp.LastSyncedAt)
}

// Sync runs a bidirectional exchange: records changed since the cursor are
// sent and remote changes are pulled in the same round trip.
func (c *Controller) Sync() error {
	cursor, err := c.Cursor()
	if err != nil {
		return err
	}

	records, err := database.GetChangedRecords(c.db, cursor)
	if err != nil {
		return errors.Wrap(err, "getting changed records")
	}

	resp, err := c.gateway.Exchange(client.SyncRequest{
		Records:      records,
		LastSyncedAt: cursor,
		Direction:    client.DirectionBoth,
	})
	if err != nil {
		return errors.Wrap(err, "syncing with the gateway")
	}

	if err := c.merger.Merge(resp.Records); err != nil {
		return errors.Wrap(err, "merging synced records")
	}

	return c.advanceCursor(resp.LastSyncedAt)
}

// AutoSync runs a bidirectional sync if any record changed since the cursor.
// Triggers within the throttle window after a run are dropped rather than
// queued. Absorbed changes are picked up by the next window through the
// cursor comparison.
func (c *Controller) AutoSync() error {
	if !c.throttle.Allow() {
		log.Debug("autosync throttled. skipping.\n")
		return nil
	}

	cursor, err := c.Cursor()
	if err != nil {
		return err
	}

	records, err := database.GetChangedRecords(c.db, cursor)
	if err != nil {
		return errors.Wrap(err, "getting changed records")
	}
	if len(records) == 0 {
		return nil
	}

	resp, err := c.gateway.Exchange(client.SyncRequest{
		Records:      records,
		LastSyncedAt: cursor,
		Direction:    client.DirectionBoth,
	})
	if err != nil {
		return errors.Wrap(err, "syncing with the gateway")
	}

	if err := c.merger.Merge(resp.Records); err != nil {
		return errors.Wrap(err, "merging synced records")
	}

	return c.advanceCursor(resp.LastSyncedAt)
}
