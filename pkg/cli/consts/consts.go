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

// Package consts provides definitions of constants
package consts

var (
	// LeafmarkDirName is the name of the directory containing leafmark files
	LeafmarkDirName = "leafmark"
	// LeafmarkDBFileName is a filename for the leafmark SQLite database
	LeafmarkDBFileName = "leafmark.db"
	// CoverCacheDirName is the name of the directory holding downloaded cover images
	CoverCacheDirName = "covers"
	// ConfigFilename is the name of the config file
	ConfigFilename = "leafmarkrc"

	// SystemSchema is the key for schema in the system table
	SystemSchema = "schema"
	// SystemLastSyncedAt is the sync cursor: the server timestamp below which
	// local and remote state are assumed reconciled
	SystemLastSyncedAt = "last_synced_at"
	// SystemLastUpgrade is the timestamp at which the system most recently checked for an upgrade
	SystemLastUpgrade = "last_upgrade"
	// SystemSessionKey is the session key
	SystemSessionKey = "session_token"
	// SystemSessionKeyExpiry is the timestamp at which the session key will expire
	SystemSessionKeyExpiry = "session_token_expiry"
)
