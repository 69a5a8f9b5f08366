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

// Package logout provides a command to log out of the sync server
package logout

import (
	"github.com/leafmark/leafmark/pkg/cli/client"
	"github.com/leafmark/leafmark/pkg/cli/consts"
	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/infra"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewCmd returns a new logout command
func NewCmd(ctx context.LeafmarkCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out of the sync server",
		RunE:  newRun(ctx),
	}

	return cmd
}

func newRun(ctx context.LeafmarkCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if ctx.SessionKey == "" {
			log.Error("not logged in\n")
			return nil
		}

		if err := client.Signout(ctx); err != nil {
			// server-side session removal is best-effort. the local
			// session is cleared either way.
			log.Debug("server signout failed: %v\n", err)
		}

		tx, err := ctx.DB.Begin()
		if err != nil {
			return errors.Wrap(err, "beginning a transaction")
		}

		for _, key := range []string{consts.SystemSessionKey, consts.SystemSessionKeyExpiry} {
			if _, err := tx.Exec("DELETE FROM system WHERE key = ?", key); err != nil {
				tx.Rollback()
				return errors.Wrapf(err, "deleting system key %s", key)
			}
		}

		if err := tx.Commit(); err != nil {
			return errors.Wrap(err, "committing a transaction")
		}

		log.Success("logged out\n")

		return nil
	}
}
