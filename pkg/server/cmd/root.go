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

// Package cmd provides the subcommands of the server binary
package cmd

import (
	"fmt"

	"github.com/pkg/errors"
)

var helpText = `leafmark-server

Usage:
  leafmark-server [command]

Available commands:
  start     Start the server
  user      Manage user accounts
  version   Print the version
`

// Run dispatches the given arguments to a subcommand
func Run(args []string, versionTag string) error {
	if len(args) < 2 {
		fmt.Print(helpText)
		return nil
	}

	switch args[1] {
	case "start":
		return startCmd(versionTag)
	case "user":
		return userCmd(args[2:])
	case "version":
		fmt.Printf("leafmark-server-%s\n", versionTag)
		return nil
	case "help", "-h", "--help":
		fmt.Print(helpText)
		return nil
	default:
		return errors.Errorf("unknown command %s", args[1])
	}
}
