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

package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/leafmark/leafmark/pkg/server/app"
	"github.com/leafmark/leafmark/pkg/server/database"
	"github.com/leafmark/leafmark/pkg/server/middleware"
	"github.com/leafmark/leafmark/pkg/server/presenters"
)

// sync directions
const (
	directionPull = "pull"
	directionPush = "push"
	directionBoth = "both"
)

// Sync is the controller for the sync endpoint
type Sync struct {
	app *app.App
}

type syncPayload struct {
	Records      []presenters.BookRecord `json:"records"`
	LastSyncedAt int64                   `json:"last_synced_at"`
	Direction    string                  `json:"direction"`
}

type syncResponse struct {
	Records      []presenters.BookRecord `json:"records"`
	LastSyncedAt int64                   `json:"last_synced_at"`
}

// Handle exchanges book records with the client. Local changes are applied
// with last-write-wins by client mutation recency. Pulls with the same cursor
// are idempotent.
func (c *Sync) Handle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromRequest(r)
	if !ok {
		middleware.RespondUnauthorized(w)
		return
	}

	var payload syncPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		middleware.DoError(w, "decoding payload", err, http.StatusBadRequest)
		return
	}

	if payload.Direction != directionPull && payload.Direction != directionPush && payload.Direction != directionBoth {
		http.Error(w, "invalid direction", http.StatusBadRequest)
		return
	}

	// Capture the cursor before touching records. A record that another
	// request uploads while this one is in flight then lands after the
	// cursor and is re-delivered on the next pull instead of being skipped.
	// The client merge is idempotent, so re-delivery is safe.
	lastSyncedAt := c.app.Clock.Now().UnixMilli()

	var accepted []database.BookRecord
	if payload.Direction == directionPush || payload.Direction == directionBoth {
		incoming := make([]database.BookRecord, 0, len(payload.Records))
		for _, p := range payload.Records {
			incoming = append(incoming, presenters.ToBookRecord(p))
		}

		var err error
		accepted, err = c.app.ApplyChanges(user, incoming)
		if err != nil {
			middleware.DoError(w, "applying changes", err, http.StatusInternalServerError)
			return
		}
	}

	var out []database.BookRecord
	if payload.Direction == directionPull || payload.Direction == directionBoth {
		var err error
		out, err = c.app.GetChangedRecords(user, payload.LastSyncedAt)
		if err != nil {
			middleware.DoError(w, "getting changed records", err, http.StatusInternalServerError)
			return
		}
	} else {
		out = accepted
	}

	resp := syncResponse{
		Records:      presenters.PresentBookRecords(out),
		LastSyncedAt: lastSyncedAt,
	}

	middleware.RespondJSON(w, http.StatusOK, resp)
}
