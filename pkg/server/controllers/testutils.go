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
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/leafmark/leafmark/pkg/clock"
	"github.com/leafmark/leafmark/pkg/server/app"
	"github.com/leafmark/leafmark/pkg/server/config"
	"github.com/leafmark/leafmark/pkg/server/database"
	"github.com/pkg/errors"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())

	db, err := database.Open(dsn)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening test database"))
	}

	database.InitSchema(db)

	return &app.App{
		DB:     db,
		Clock:  clock.NewMock(),
		Config: config.Config{},
	}
}

func newTestServer(t *testing.T, a *app.App) *httptest.Server {
	t.Helper()

	c := NewContext(a, "test")

	server := httptest.NewServer(NewRouter(a, c))
	t.Cleanup(server.Close)

	return server
}

func mustCreateUser(t *testing.T, a *app.App, email, password string) database.User {
	t.Helper()

	user, err := a.CreateUser(email, password)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating test user"))
	}

	return user
}

func mustCreateSession(t *testing.T, a *app.App, user database.User) database.Session {
	t.Helper()

	session, err := a.CreateSession(user)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating test session"))
	}

	return session
}

func doReq(t *testing.T, server *httptest.Server, method, path, body, sessionKey string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatal(errors.Wrap(err, "constructing request"))
	}
	if sessionKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sessionKey))
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(errors.Wrap(err, "making request"))
	}
	t.Cleanup(func() {
		res.Body.Close()
	})

	return res
}
