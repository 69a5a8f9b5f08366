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
	"github.com/gorilla/mux"
	"github.com/leafmark/leafmark/pkg/server/app"
	"github.com/leafmark/leafmark/pkg/server/middleware"
)

// NewRouter returns the server router
func NewRouter(a *app.App, c *Context) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", c.Health.Index).Methods("GET")
	api.HandleFunc("/v3/signin", c.Users.Signin).Methods("POST")
	api.HandleFunc("/v3/register", c.Users.Register).Methods("POST")
	api.Handle("/v3/signout", middleware.Auth(a, c.Users.Signout)).Methods("POST")
	api.Handle("/v3/sync", middleware.Auth(a, c.Sync.Handle)).Methods("POST")
	api.Handle("/v3/covers/{hash}", middleware.Auth(a, c.Covers.Get)).Methods("GET")

	return router
}
