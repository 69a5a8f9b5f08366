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

package database

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// InitTestDB opens a unique in-memory database and initializes the schema
func InitTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening test database"))
	}

	db := &DB{conn: conn}

	if err := InitSchema(db); err != nil {
		t.Fatal(errors.Wrap(err, "initializing schema"))
	}

	return db
}

// CloseTestDB closes the test database
func CloseTestDB(t *testing.T, db *DB) {
	t.Helper()

	if err := db.Close(); err != nil {
		t.Fatal(errors.Wrap(err, "closing test database"))
	}
}

// MustExec executes the given query and fails the test on error
func MustExec(t *testing.T, message string, db *DB, query string, args ...interface{}) sql.Result {
	t.Helper()

	result, err := db.Exec(query, args...)
	if err != nil {
		t.Fatal(errors.Wrapf(err, "executing query for %s", message))
	}

	return result
}

// MustScan scans the given row and fails the test on error
func MustScan(t *testing.T, message string, row *sql.Row, args ...interface{}) {
	t.Helper()

	if err := row.Scan(args...); err != nil {
		t.Fatal(errors.Wrapf(err, "scanning row for %s", message))
	}
}

// MustInsertRecord inserts the given record and fails the test on error
func MustInsertRecord(t *testing.T, db *DB, record BookRecord) {
	t.Helper()

	if err := record.Insert(db); err != nil {
		t.Fatal(errors.Wrap(err, "inserting test record"))
	}
}
