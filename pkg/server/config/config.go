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

// Package config provides the server configuration
package config

import (
	"os"
)

// Config holds the server configuration
type Config struct {
	Port                string
	DBPath              string
	AppEnv              string
	DisableRegistration bool
}

func readEnv(name, fallback string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}

	return fallback
}

// Load reads the configuration from the environment
func Load() Config {
	return Config{
		Port:                readEnv("PORT", "3000"),
		DBPath:              readEnv("DB_PATH", "leafmark-server.db"),
		AppEnv:              readEnv("APP_ENV", "PRODUCTION"),
		DisableRegistration: os.Getenv("DISABLE_REGISTRATION") == "true",
	}
}

// IsProd returns true if the app environment is production
func (c Config) IsProd() bool {
	return c.AppEnv == "PRODUCTION"
}
