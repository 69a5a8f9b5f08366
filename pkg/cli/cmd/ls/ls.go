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

// Package ls provides a command to list books in the library
package ls

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/spf13/cobra"
)

var example = `
 * List books in the library
 leafmark ls`

// NewCmd returns a new ls command
func NewCmd(ctx context.LeafmarkCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Short:   "List books in the library",
		Aliases: []string{"l", "list"},
		Example: example,
		RunE:    newRun(ctx),
	}

	return cmd
}

func newRun(ctx context.LeafmarkCtx) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		records := ctx.Library.Records()

		books := make([]database.BookRecord, 0, len(records))
		for _, record := range records {
			if record.Deleted() {
				continue
			}

			books = append(books, record)
		}

		sort.Slice(books, func(i, j int) bool {
			return books[i].Title < books[j].Title
		})

		log.Infof("total %d\n", len(books))

		for _, book := range books {
			line := log.ColorYellow.Sprint(book.Title)
			if book.Author != "" {
				line = fmt.Sprintf("%s %s", line, log.ColorGray.Sprintf("by %s", book.Author))
			}
			if p := formatProgress(book.Progress); p != "" {
				line = fmt.Sprintf("%s %s", line, log.ColorGreen.Sprintf("(%s)", p))
			}

			log.Plainf("%s\n", line)
		}

		if ctx.Library.Syncing() {
			log.Infof("sync in progress (%d%%)\n", int(ctx.Library.Progress()*100))
		}

		return nil
	}
}

func formatProgress(progress string) string {
	if progress == "" {
		return ""
	}

	f, err := strconv.ParseFloat(progress, 64)
	if err != nil {
		return progress
	}

	return fmt.Sprintf("%d%%", int(f*100))
}
