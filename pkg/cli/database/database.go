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

// Package database provides the local SQLite storage for the leafmark library
package database

import (
	"database/sql"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DB is a handle to the local database. It wraps either a connection or
// a transaction so that the same data access code can run in both.
type DB struct {
	conn *sql.DB
	tx   *sql.Tx
}

// Open opens a database connection at the given path
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	return &DB{conn: conn}, nil
}

// Begin starts a transaction and returns a handle scoped to it
func (db *DB) Begin() (*DB, error) {
	if db.tx != nil {
		return nil, errors.New("already in a transaction")
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "beginning a transaction")
	}

	return &DB{conn: db.conn, tx: tx}, nil
}

// Commit commits the transaction
func (db *DB) Commit() error {
	if db.tx == nil {
		return errors.New("not in a transaction")
	}

	return db.tx.Commit()
}

// Rollback aborts the transaction. It is a noop on a non-transaction handle
// so that it can be called unconditionally on error paths.
func (db *DB) Rollback() error {
	if db.tx == nil {
		return nil
	}

	return db.tx.Rollback()
}

// Close closes the underlying connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Exec executes the given query
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	if db.tx != nil {
		return db.tx.Exec(query, args...)
	}

	return db.conn.Exec(query, args...)
}

// Query runs the given query and returns the matching rows
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	if db.tx != nil {
		return db.tx.Query(query, args...)
	}

	return db.conn.Query(query, args...)
}

// QueryRow runs the given query and returns at most one row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	if db.tx != nil {
		return db.tx.QueryRow(query, args...)
	}

	return db.conn.QueryRow(query, args...)
}

// GetSystem scans the value of the system record with the given key into dest
func GetSystem(db *DB, key string, dest interface{}) error {
	if err := db.QueryRow("SELECT value FROM system WHERE key = ?", key).Scan(dest); err != nil {
		return errors.Wrapf(err, "querying system value for %s", key)
	}

	return nil
}

// UpdateSystem updates the value of the system record with the given key
func UpdateSystem(db *DB, key string, val interface{}) error {
	if _, err := db.Exec("UPDATE system SET value = ? WHERE key = ?", val, key); err != nil {
		return errors.Wrapf(err, "updating system value for %s", key)
	}

	return nil
}

// InsertSystem inserts a system record with the given key and value
func InsertSystem(db *DB, key string, val interface{}) error {
	if _, err := db.Exec("INSERT INTO system (key, value) VALUES (?, ?)", key, val); err != nil {
		return errors.Wrapf(err, "inserting system value for %s", key)
	}

	return nil
}
