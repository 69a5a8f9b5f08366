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

// Package config provides the user configuration
package config

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/leafmark/leafmark/pkg/cli/consts"
	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// DefaultAutoSyncIntervalMillis is the minimum gap between automatic sync runs
const DefaultAutoSyncIntervalMillis = 2000

// Config holds the user configuration
type Config struct {
	APIEndpoint            string `yaml:"apiEndpoint"`
	EnableUpgradeCheck     bool   `yaml:"enableUpgradeCheck"`
	AutoSyncIntervalMillis int64  `yaml:"autoSyncInterval"`
}

// GetPath returns the path to the config file
func GetPath(ctx context.LeafmarkCtx) string {
	return filepath.Join(ctx.ConfigDir, consts.ConfigFilename)
}

// Default returns a config with default values
func Default(apiEndpoint string) Config {
	return Config{
		APIEndpoint:            apiEndpoint,
		EnableUpgradeCheck:     true,
		AutoSyncIntervalMillis: DefaultAutoSyncIntervalMillis,
	}
}

// Read reads the config file
func Read(ctx context.LeafmarkCtx) (Config, error) {
	var ret Config

	path := GetPath(ctx)

	b, err := ioutil.ReadFile(path)
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	if err := yaml.Unmarshal(b, &ret); err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	if ret.AutoSyncIntervalMillis <= 0 {
		ret.AutoSyncIntervalMillis = DefaultAutoSyncIntervalMillis
	}

	return ret, nil
}

// Write writes the config to the config file
func Write(ctx context.LeafmarkCtx, cf Config) error {
	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config")
	}

	path := GetPath(ctx)

	if err := ioutil.WriteFile(path, b, 0644); err != nil {
		return errors.Wrap(err, "writing config file")
	}

	return nil
}

// Exists checks if the config file exists
func Exists(ctx context.LeafmarkCtx) (bool, error) {
	path := GetPath(ctx)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, errors.Wrap(err, "checking config file")
	}

	return true, nil
}
