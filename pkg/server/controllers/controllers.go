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

// Package controllers provides the http handlers of the server
package controllers

import (
	"github.com/leafmark/leafmark/pkg/server/app"
)

// Context is the collection of the controllers
type Context struct {
	Users  *Users
	Sync   *Sync
	Covers *Covers
	Health *Health
}

// NewContext returns a new controller context
func NewContext(a *app.App, version string) *Context {
	return &Context{
		Users:  &Users{app: a},
		Sync:   &Sync{app: a},
		Covers: &Covers{app: a},
		Health: &Health{version: version},
	}
}
