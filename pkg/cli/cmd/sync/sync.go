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

// Package sync provides a command to sync the library with the server
package sync

import (
	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/infra"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var pullOnly bool
var pushOnly bool

var example = `
 * Sync the library with the server
 leafmark sync

 * Only fetch remote changes
 leafmark sync --pull-only`

// NewCmd returns a new sync command
func NewCmd(ctx context.LeafmarkCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Short:   "Sync the library with the server",
		Aliases: []string{"s"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&pullOnly, "pull-only", "", false, "only fetch remote changes")
	f.BoolVarP(&pushOnly, "push-only", "", false, "only upload local changes")

	return cmd
}

func preRun(cmd *cobra.Command, args []string) error {
	if pullOnly && pushOnly {
		return errors.New("only one of --pull-only and --push-only can be used")
	}

	return nil
}

func newRun(ctx context.LeafmarkCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if ctx.SessionKey == "" {
			log.Error("not logged in. please run `leafmark login`.\n")
			return nil
		}

		c, err := infra.NewSyncController(ctx)
		if err != nil {
			return errors.Wrap(err, "preparing sync")
		}

		log.Infof("syncing with the server\n")

		switch {
		case pullOnly:
			err = c.Pull()
		case pushOnly:
			err = c.Push()
		default:
			err = c.Sync()
		}
		if err != nil {
			return errors.Wrap(err, "syncing")
		}

		log.Success("done\n")

		return nil
	}
}
