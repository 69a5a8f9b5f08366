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

package syncer

import (
	"sync"
	"testing"
	"time"

	"github.com/leafmark/leafmark/pkg/assert"
	"github.com/leafmark/leafmark/pkg/cli/client"
	"github.com/leafmark/leafmark/pkg/cli/consts"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/pkg/errors"
)

func int64p(v int64) *int64 {
	return &v
}

type mergeRecorder struct {
	merged [][]database.BookRecord
}

func (m *mergeRecorder) Merge(records []database.BookRecord) error {
	m.merged = append(m.merged, records)

	return nil
}

func initTestDB(t *testing.T, cursor int64) *database.DB {
	t.Helper()

	db := database.InitTestDB(t)
	if err := database.InsertSystem(db, consts.SystemLastSyncedAt, cursor); err != nil {
		t.Fatal(err)
	}

	return db
}

func TestPull(t *testing.T) {
	db := initTestDB(t, 100)
	defer database.CloseTestDB(t, db)

	remote := []database.BookRecord{
		{Hash: "a", Title: "Annihilation", UpdatedAt: 150, UploadedAt: int64p(160)},
	}

	var gotPayload client.SyncRequest
	gateway := GatewayFunc(func(payload client.SyncRequest) (*client.SyncResponse, error) {
		gotPayload = payload

		return &client.SyncResponse{Records: remote, LastSyncedAt: 200}, nil
	})

	merger := &mergeRecorder{}
	c := NewController(db, gateway, merger, time.Hour)

	if err := c.Pull(); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, gotPayload.Direction, client.DirectionPull, "direction mismatch")
	assert.Equal(t, gotPayload.LastSyncedAt, int64(100), "cursor mismatch")
	assert.Equal(t, len(gotPayload.Records), 0, "pull should not offer local records")

	assert.Equalf(t, len(merger.merged), 1, "merge count mismatch")
	assert.DeepEqual(t, merger.merged[0], remote, "merged records mismatch")

	cursor, err := c.Cursor()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, cursor, int64(200), "cursor should advance after a successful pull")
}

func TestPullSingleFlight(t *testing.T) {
	db := initTestDB(t, 0)
	defer database.CloseTestDB(t, db)

	entered := make(chan struct{})
	release := make(chan struct{})
	calls := 0

	gateway := GatewayFunc(func(payload client.SyncRequest) (*client.SyncResponse, error) {
		calls++
		close(entered)
		<-release

		return &client.SyncResponse{LastSyncedAt: 10}, nil
	})

	c := NewController(db, gateway, &mergeRecorder{}, time.Hour)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		if err := c.Pull(); err != nil {
			t.Error(err)
		}
	}()

	<-entered

	// second pull while the first is in flight
	if err := c.Pull(); err != nil {
		t.Fatal(err)
	}

	close(release)
	wg.Wait()

	assert.Equal(t, calls, 1, "gateway call count mismatch")
}

func TestPullReleasesLatchOnFailure(t *testing.T) {
	db := initTestDB(t, 0)
	defer database.CloseTestDB(t, db)

	calls := 0
	gateway := GatewayFunc(func(payload client.SyncRequest) (*client.SyncResponse, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("gateway unavailable")
		}

		return &client.SyncResponse{LastSyncedAt: 10}, nil
	})

	c := NewController(db, gateway, &mergeRecorder{}, time.Hour)

	if err := c.Pull(); err == nil {
		t.Fatal("expected an error from the first pull")
	}

	if err := c.Pull(); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, calls, 2, "a failed pull should not block future pulls")
}

func TestPush(t *testing.T) {
	t.Run("sends changed records", func(t *testing.T) {
		db := initTestDB(t, 100)
		defer database.CloseTestDB(t, db)

		changed := database.BookRecord{Hash: "a", Title: "Annihilation", UpdatedAt: 150}
		stale := database.BookRecord{Hash: "b", Title: "Borne", UpdatedAt: 50}
		database.MustInsertRecord(t, db, changed)
		database.MustInsertRecord(t, db, stale)

		var gotPayload client.SyncRequest
		gateway := GatewayFunc(func(payload client.SyncRequest) (*client.SyncResponse, error) {
			gotPayload = payload

			accepted := changed
			accepted.UploadedAt = int64p(160)

			return &client.SyncResponse{Records: []database.BookRecord{accepted}, LastSyncedAt: 160}, nil
		})

		merger := &mergeRecorder{}
		c := NewController(db, gateway, merger, time.Hour)

		if err := c.Push(); err != nil {
			t.Fatal(err)
		}

		assert.Equal(t, gotPayload.Direction, client.DirectionPush, "direction mismatch")
		assert.Equalf(t, len(gotPayload.Records), 1, "payload record count mismatch")
		assert.Equal(t, gotPayload.Records[0].Hash, "a", "payload record mismatch")
		assert.Equal(t, len(merger.merged), 1, "accepted records should be merged back")
	})

	t.Run("noop without changes", func(t *testing.T) {
		db := initTestDB(t, 100)
		defer database.CloseTestDB(t, db)

		database.MustInsertRecord(t, db, database.BookRecord{Hash: "a", Title: "Annihilation", UpdatedAt: 50})

		calls := 0
		gateway := GatewayFunc(func(payload client.SyncRequest) (*client.SyncResponse, error) {
			calls++

			return &client.SyncResponse{}, nil
		})

		c := NewController(db, gateway, &mergeRecorder{}, time.Hour)

		if err := c.Push(); err != nil {
			t.Fatal(err)
		}

		assert.Equal(t, calls, 0, "push with no changes should not call the gateway")
	})
}

func TestAutoSyncThrottle(t *testing.T) {
	db := initTestDB(t, 0)
	defer database.CloseTestDB(t, db)

	database.MustInsertRecord(t, db, database.BookRecord{Hash: "a", Title: "Annihilation", UpdatedAt: 50})

	calls := 0
	gateway := GatewayFunc(func(payload client.SyncRequest) (*client.SyncResponse, error) {
		calls++

		return &client.SyncResponse{LastSyncedAt: payload.LastSyncedAt}, nil
	})

	c := NewController(db, gateway, &mergeRecorder{}, time.Hour)

	for i := 0; i < 10; i++ {
		if err := c.AutoSync(); err != nil {
			t.Fatal(err)
		}
	}

	assert.Equal(t, calls, 1, "triggers within one throttle window should coalesce into one exchange")
}

func TestAutoSyncDirection(t *testing.T) {
	db := initTestDB(t, 0)
	defer database.CloseTestDB(t, db)

	database.MustInsertRecord(t, db, database.BookRecord{Hash: "a", Title: "Annihilation", UpdatedAt: 50})

	var gotPayload client.SyncRequest
	gateway := GatewayFunc(func(payload client.SyncRequest) (*client.SyncResponse, error) {
		gotPayload = payload

		return &client.SyncResponse{LastSyncedAt: 60}, nil
	})

	c := NewController(db, gateway, &mergeRecorder{}, time.Hour)

	if err := c.AutoSync(); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, gotPayload.Direction, client.DirectionBoth, "autosync should exchange in both directions")
	assert.Equalf(t, len(gotPayload.Records), 1, "autosync should offer changed records")
}
