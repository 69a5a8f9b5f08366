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

// Package context defines the context of the leafmark environment
package context

import (
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/library"
	"github.com/leafmark/leafmark/pkg/clock"
)

// LeafmarkCtx holds the runtime configuration of the program
type LeafmarkCtx struct {
	// Version is the version of the current command
	Version string

	// HomeDir is the full path to the user's home directory
	HomeDir string
	// LeafmarkDir is the full path to the directory holding leafmark data
	LeafmarkDir string
	// CoverCacheDir is the full path to the directory holding downloaded cover images
	CoverCacheDir string
	// ConfigDir is the full path to the directory holding the config file
	ConfigDir string

	// APIEndpoint is the endpoint of the sync gateway
	APIEndpoint string
	// SessionKey is the session key for the sync gateway
	SessionKey string
	// SessionKeyExpiry is the unix timestamp at which the session key expires
	SessionKeyExpiry int64

	// DB is the connection to the local database
	DB *database.DB
	// Library is the in-memory view of the library used by the running command
	Library *library.Store
	// Clock is the service for the current time
	Clock clock.Clock
}

// Redact returns a copy of the context with secrets masked so that it is
// safe to print
func (ctx LeafmarkCtx) Redact() LeafmarkCtx {
	ret := ctx

	if ret.SessionKey != "" {
		ret.SessionKey = "[Redacted]"
	}

	return ret
}
