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

// Package login provides a command to log in to the sync server
package login

import (
	"github.com/leafmark/leafmark/pkg/cli/client"
	"github.com/leafmark/leafmark/pkg/cli/consts"
	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/infra"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/leafmark/leafmark/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Log in to the sync server
 leafmark login`

// NewCmd returns a new login command
func NewCmd(ctx context.LeafmarkCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Log in to the sync server",
		Example: example,
		RunE:    newRun(ctx),
	}

	return cmd
}

func newRun(ctx context.LeafmarkCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		email, err := ui.PromptInput("email")
		if err != nil {
			return errors.Wrap(err, "getting email input")
		}
		if email == "" {
			return errors.New("email is empty")
		}

		password, err := ui.PromptPassword("password")
		if err != nil {
			return errors.Wrap(err, "getting password input")
		}
		if password == "" {
			return errors.New("password is empty")
		}

		resp, err := client.Signin(ctx, email, password)
		if err == client.ErrInvalidLogin {
			log.Error("wrong email or password\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "signing in")
		}

		if err := saveSession(ctx, resp); err != nil {
			return errors.Wrap(err, "saving session")
		}
		ctx.SessionKey = resp.Key
		ctx.SessionKeyExpiry = resp.ExpiresAt

		log.Success("logged in\n")

		// fetch remote changes once per authentication event
		c, err := infra.NewSyncController(ctx)
		if err != nil {
			return errors.Wrap(err, "preparing sync")
		}
		if err := c.Pull(); err != nil {
			return errors.Wrap(err, "pulling remote changes")
		}

		return nil
	}
}

func saveSession(ctx context.LeafmarkCtx, resp *client.SigninResponse) error {
	tx, err := ctx.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	for key, val := range map[string]interface{}{
		consts.SystemSessionKey:       resp.Key,
		consts.SystemSessionKeyExpiry: resp.ExpiresAt,
	} {
		if err := upsertSystem(tx, key, val); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing a transaction")
	}

	return nil
}

func upsertSystem(db *database.DB, key string, val interface{}) error {
	var count int
	if err := db.QueryRow("SELECT count(*) FROM system WHERE key = ?", key).Scan(&count); err != nil {
		return errors.Wrapf(err, "counting system key %s", key)
	}

	if count == 0 {
		return database.InsertSystem(db, key, val)
	}

	return database.UpdateSystem(db, key, val)
}
