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
	"io/ioutil"
	"net/http"
	"strings"
	"testing"

	"github.com/leafmark/leafmark/pkg/assert"
	"github.com/leafmark/leafmark/pkg/server/database"
)

func TestGetCover(t *testing.T) {
	a := newTestApp(t)
	server := newTestServer(t, a)

	user := mustCreateUser(t, a, "alice@example.com", "password123")
	session := mustCreateSession(t, a, user)

	record := database.BookRecord{
		UserID:   user.ID,
		Hash:     "h1",
		Title:    "The Dispossessed",
		EditedAt: 100,
	}
	if err := a.DB.Create(&record).Error; err != nil {
		t.Fatal(err)
	}

	res := doReq(t, server, "GET", "/api/v3/covers/h1", "", session.Key)

	assert.StatusCodeEquals(t, res, http.StatusOK, "getting a cover")
	assert.Equal(t, res.Header.Get("Content-Type"), "image/svg+xml", "content type mismatch")

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	svg := string(body)
	if !strings.Contains(svg, "<svg") {
		t.Errorf("expected an svg body but got %s", svg)
	}
	if !strings.Contains(svg, ">TD<") {
		t.Errorf("expected the title initials in %s", svg)
	}
}

func TestGetCoverNotFound(t *testing.T) {
	a := newTestApp(t)
	server := newTestServer(t, a)

	user := mustCreateUser(t, a, "alice@example.com", "password123")
	session := mustCreateSession(t, a, user)

	res := doReq(t, server, "GET", "/api/v3/covers/nope", "", session.Key)

	assert.StatusCodeEquals(t, res, http.StatusNotFound, "getting a cover for an unknown hash")
}

func TestGetCoverIsScopedToUser(t *testing.T) {
	a := newTestApp(t)
	server := newTestServer(t, a)

	owner := mustCreateUser(t, a, "alice@example.com", "password123")
	record := database.BookRecord{
		UserID:   owner.ID,
		Hash:     "h1",
		Title:    "The Dispossessed",
		EditedAt: 100,
	}
	if err := a.DB.Create(&record).Error; err != nil {
		t.Fatal(err)
	}

	other := mustCreateUser(t, a, "bob@example.com", "password123")
	session := mustCreateSession(t, a, other)

	res := doReq(t, server, "GET", "/api/v3/covers/h1", "", session.Key)

	assert.StatusCodeEquals(t, res, http.StatusNotFound, "getting another user's cover")
}
