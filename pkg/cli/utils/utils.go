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

// Package utils provides miscellaneous helpers
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// GenerateUUID returns a new uuid v4 in string format
func GenerateUUID() string {
	return uuid.New().String()
}

// FileExists checks if the file exists at the given path
func FileExists(filepath string) bool {
	info, err := os.Stat(filepath)
	if err != nil {
		return false
	}

	return !info.IsDir()
}

// DirExists checks if the directory exists at the given path
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}

// EnsureDir creates the directory at the given path if it does not exist
func EnsureDir(path string) error {
	if DirExists(path) {
		return nil
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, "creating directory %s", path)
	}

	return nil
}

// ContentHash returns the hex encoded sha256 digest of the file at the
// given path. The digest identifies a book across devices.
func ContentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "hashing file")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
