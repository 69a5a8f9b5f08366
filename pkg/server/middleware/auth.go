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

// Package middleware provides http middleware for the server
package middleware

import (
	gocontext "context"
	"net/http"
	"strings"

	"github.com/leafmark/leafmark/pkg/server/app"
	"github.com/leafmark/leafmark/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type contextKey string

// userContextKey is the key for the authenticated user in the request context
const userContextKey contextKey = "user"

// UserFromRequest returns the authenticated user stored in the request context
func UserFromRequest(r *http.Request) (database.User, bool) {
	user, ok := r.Context().Value(userContextKey).(database.User)

	return user, ok
}

func getCredential(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("malformed authorization header")
	}

	return parts[1], nil
}

// Auth guards a handler with session authentication
func Auth(a *app.App, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := getCredential(r)
		if err != nil || key == "" {
			RespondUnauthorized(w)
			return
		}

		session, ok, err := a.GetSession(key)
		if err != nil {
			DoError(w, "getting session", err, http.StatusInternalServerError)
			return
		}
		if !ok {
			RespondUnauthorized(w)
			return
		}

		var user database.User
		err = a.DB.Where("id = ?", session.UserID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondUnauthorized(w)
			return
		} else if err != nil {
			DoError(w, "finding user", err, http.StatusInternalServerError)
			return
		}

		ctx := gocontext.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}
