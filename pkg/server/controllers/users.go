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
	"strings"

	"github.com/leafmark/leafmark/pkg/server/app"
	"github.com/leafmark/leafmark/pkg/server/log"
	"github.com/leafmark/leafmark/pkg/server/middleware"
)

// Users is the controller for user accounts and sessions
type Users struct {
	app *app.App
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
}

// Signin authenticates the user and responds with a new session
func (c *Users) Signin(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		middleware.DoError(w, "decoding payload", err, http.StatusBadRequest)
		return
	}

	user, err := c.app.Authenticate(payload.Email, payload.Password)
	if err == app.ErrLoginInvalid {
		middleware.RespondUnauthorized(w)
		return
	} else if err != nil {
		middleware.DoError(w, "authenticating", err, http.StatusInternalServerError)
		return
	}

	session, err := c.app.CreateSession(user)
	if err != nil {
		middleware.DoError(w, "creating session", err, http.StatusInternalServerError)
		return
	}

	if err := c.app.TouchLastLoginAt(user); err != nil {
		log.ErrorWrap(err, "updating last login time")
	}

	middleware.RespondJSON(w, http.StatusOK, sessionResponse{
		Key:       session.Key,
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}

// Register creates a new user account
func (c *Users) Register(w http.ResponseWriter, r *http.Request) {
	if c.app.Config.DisableRegistration {
		http.Error(w, "registration is disabled", http.StatusForbidden)
		return
	}

	var payload credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		middleware.DoError(w, "decoding payload", err, http.StatusBadRequest)
		return
	}

	user, err := c.app.CreateUser(payload.Email, payload.Password)
	if err == app.ErrDuplicateEmail || err == app.ErrEmailRequired || err == app.ErrPasswordTooShort {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	} else if err != nil {
		middleware.DoError(w, "creating user", err, http.StatusInternalServerError)
		return
	}

	log.WithFields(log.Fields{"user": user.UUID}).Info("user registered")

	w.WriteHeader(http.StatusCreated)
}

// Signout deletes the current session
func (c *Users) Signout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		middleware.RespondUnauthorized(w)
		return
	}

	if err := c.app.DeleteSession(parts[1]); err != nil {
		middleware.DoError(w, "deleting session", err, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
