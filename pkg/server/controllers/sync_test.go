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
	"sync"
	"testing"
	"time"

	"github.com/leafmark/leafmark/pkg/assert"
	"github.com/leafmark/leafmark/pkg/server/database"
)

// tickingClock advances by a millisecond on every reading so that timestamps
// taken at different points in a request are distinguishable
type tickingClock struct {
	mu      sync.Mutex
	current time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(time.Millisecond)

	return c.current
}

func TestSyncUnauthorized(t *testing.T) {
	a := newTestApp(t)
	server := newTestServer(t, a)

	res := doReq(t, server, "POST", "/api/v3/sync", `{"records": [], "last_synced_at": 0, "direction": "pull"}`, "")

	assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "sync without a session")
}

func TestSyncPush(t *testing.T) {
	a := newTestApp(t)
	server := newTestServer(t, a)

	user := mustCreateUser(t, a, "alice@example.com", "password123")
	session := mustCreateSession(t, a, user)

	body := `{
		"records": [
			{"hash": "h1", "title": "The Dispossessed", "author": "Ursula K. Le Guin", "updated_at": 100}
		],
		"last_synced_at": 0,
		"direction": "push"
	}`

	res := doReq(t, server, "POST", "/api/v3/sync", body, session.Key)

	assert.StatusCodeEquals(t, res, http.StatusOK, "pushing a record")

	var resp syncResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	assert.Equalf(t, len(resp.Records), 1, "response record count mismatch")
	assert.Equal(t, resp.Records[0].Hash, "h1", "hash mismatch")
	assert.NotEqual(t, resp.Records[0].UploadedAt, (*int64)(nil), "accepted record should carry uploadedAt")

	var count int64
	if err := a.DB.Model(&database.BookRecord{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, count, int64(1), "stored record count mismatch")
}

func TestSyncPullIdempotent(t *testing.T) {
	a := newTestApp(t)
	server := newTestServer(t, a)

	user := mustCreateUser(t, a, "alice@example.com", "password123")
	session := mustCreateSession(t, a, user)

	pushBody := `{
		"records": [
			{"hash": "h1", "title": "The Dispossessed", "updated_at": 100},
			{"hash": "h2", "title": "The Left Hand of Darkness", "updated_at": 200}
		],
		"last_synced_at": 0,
		"direction": "push"
	}`
	res := doReq(t, server, "POST", "/api/v3/sync", pushBody, session.Key)
	assert.StatusCodeEquals(t, res, http.StatusOK, "pushing records")

	pullBody := `{"records": [], "last_synced_at": 0, "direction": "pull"}`

	var first, second syncResponse

	res = doReq(t, server, "POST", "/api/v3/sync", pullBody, session.Key)
	assert.StatusCodeEquals(t, res, http.StatusOK, "first pull")
	if err := json.NewDecoder(res.Body).Decode(&first); err != nil {
		t.Fatal(err)
	}

	res = doReq(t, server, "POST", "/api/v3/sync", pullBody, session.Key)
	assert.StatusCodeEquals(t, res, http.StatusOK, "second pull")
	if err := json.NewDecoder(res.Body).Decode(&second); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, len(first.Records), 2, "first pull record count mismatch")
	assert.DeepEqual(t, second.Records, first.Records, "pulls with the same cursor should return the same records")
}

func TestSyncLastWriteWins(t *testing.T) {
	a := newTestApp(t)
	server := newTestServer(t, a)

	user := mustCreateUser(t, a, "alice@example.com", "password123")
	session := mustCreateSession(t, a, user)

	newer := `{
		"records": [{"hash": "h1", "title": "New Title", "progress": "0.5", "updated_at": 200}],
		"last_synced_at": 0,
		"direction": "push"
	}`
	res := doReq(t, server, "POST", "/api/v3/sync", newer, session.Key)
	assert.StatusCodeEquals(t, res, http.StatusOK, "pushing the newer record")

	stale := `{
		"records": [{"hash": "h1", "title": "Stale Title", "progress": "0.1", "updated_at": 100}],
		"last_synced_at": 0,
		"direction": "push"
	}`
	res = doReq(t, server, "POST", "/api/v3/sync", stale, session.Key)
	assert.StatusCodeEquals(t, res, http.StatusOK, "pushing the stale record")

	var record database.BookRecord
	if err := a.DB.Where("user_id = ? AND hash = ?", user.ID, "h1").First(&record).Error; err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, record.Title, "New Title", "a stale write should not overwrite a newer record")
	assert.Equal(t, record.EditedAt, int64(200), "editedAt mismatch")
}

func TestSyncTombstoneWins(t *testing.T) {
	a := newTestApp(t)
	server := newTestServer(t, a)

	user := mustCreateUser(t, a, "alice@example.com", "password123")
	session := mustCreateSession(t, a, user)

	initial := `{
		"records": [{"hash": "h1", "title": "The Dispossessed", "updated_at": 100}],
		"last_synced_at": 0,
		"direction": "push"
	}`
	res := doReq(t, server, "POST", "/api/v3/sync", initial, session.Key)
	assert.StatusCodeEquals(t, res, http.StatusOK, "pushing the record")

	// the deletion is newer than the edit even though updated_at is older
	tombstone := `{
		"records": [{"hash": "h1", "title": "The Dispossessed", "updated_at": 50, "deleted_at": 150}],
		"last_synced_at": 0,
		"direction": "push"
	}`
	res = doReq(t, server, "POST", "/api/v3/sync", tombstone, session.Key)
	assert.StatusCodeEquals(t, res, http.StatusOK, "pushing the tombstone")

	var record database.BookRecord
	if err := a.DB.Where("user_id = ? AND hash = ?", user.ID, "h1").First(&record).Error; err != nil {
		t.Fatal(err)
	}

	if record.RemovedAt == nil {
		t.Fatal("expected the record to be tombstoned")
	}
	assert.Equal(t, *record.RemovedAt, int64(150), "removedAt mismatch")
}

func TestSyncCursorPredatesAppliedChanges(t *testing.T) {
	a := newTestApp(t)
	a.Clock = &tickingClock{current: time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC)}
	server := newTestServer(t, a)

	user := mustCreateUser(t, a, "alice@example.com", "password123")
	session := mustCreateSession(t, a, user)

	// records applied while a request is in flight are stamped after its
	// cursor, so a pull at that cursor must re-deliver them rather than
	// skip them
	both := `{
		"records": [{"hash": "h1", "title": "The Dispossessed", "updated_at": 100}],
		"last_synced_at": 0,
		"direction": "both"
	}`
	res := doReq(t, server, "POST", "/api/v3/sync", both, session.Key)
	assert.StatusCodeEquals(t, res, http.StatusOK, "pushing a record")

	var first syncResponse
	if err := json.NewDecoder(res.Body).Decode(&first); err != nil {
		t.Fatal(err)
	}

	pullBody, err := json.Marshal(syncPayload{LastSyncedAt: first.LastSyncedAt, Direction: "pull"})
	if err != nil {
		t.Fatal(err)
	}

	res = doReq(t, server, "POST", "/api/v3/sync", string(pullBody), session.Key)
	assert.StatusCodeEquals(t, res, http.StatusOK, "pulling at the returned cursor")

	var second syncResponse
	if err := json.NewDecoder(res.Body).Decode(&second); err != nil {
		t.Fatal(err)
	}

	assert.Equalf(t, len(second.Records), 1, "record stamped after the cursor should be re-delivered")
	assert.Equal(t, second.Records[0].Hash, "h1", "hash mismatch")
}

func TestSyncInvalidDirection(t *testing.T) {
	a := newTestApp(t)
	server := newTestServer(t, a)

	user := mustCreateUser(t, a, "alice@example.com", "password123")
	session := mustCreateSession(t, a, user)

	res := doReq(t, server, "POST", "/api/v3/sync", `{"records": [], "last_synced_at": 0, "direction": "sideways"}`, session.Key)

	assert.StatusCodeEquals(t, res, http.StatusBadRequest, "invalid direction")
}
