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

package cmd

import (
	"fmt"

	"github.com/pkg/errors"
)

// userCmd manages user accounts from the command line. Useful for
// self-hosted deployments with registration disabled.
func userCmd(args []string) error {
	if len(args) < 1 {
		return errors.New("missing user subcommand. available: add")
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			return errors.New("usage: leafmark-server user add <email> <password>")
		}

		a, err := initApp()
		if err != nil {
			return errors.Wrap(err, "initializing app")
		}

		user, err := a.CreateUser(args[1], args[2])
		if err != nil {
			return errors.Wrap(err, "creating user")
		}

		fmt.Printf("created user %s\n", user.Email)
		return nil
	default:
		return errors.Errorf("unknown user subcommand %s", args[0])
	}
}
