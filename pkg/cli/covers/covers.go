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

// Package covers downloads and caches book cover images
package covers

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/leafmark/leafmark/pkg/cli/client"
	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/utils"
	"github.com/pkg/errors"
)

// Service downloads cover images from the sync gateway and caches them
// in the cover cache directory.
type Service struct {
	ctx context.LeafmarkCtx
}

// NewService returns a new cover service
func NewService(ctx context.LeafmarkCtx) *Service {
	return &Service{ctx: ctx}
}

// CachePath returns the path at which the cover for the given hash is cached
func (s *Service) CachePath(hash string) string {
	return filepath.Join(s.ctx.CoverCacheDir, fmt.Sprintf("%s.svg", hash))
}

// DownloadCovers fetches the cover image for each given record and caches it.
// It returns copies of the records with coverDownloadedAt stamped. Tombstones
// are returned unchanged.
func (s *Service) DownloadCovers(records []database.BookRecord) ([]database.BookRecord, error) {
	ret := make([]database.BookRecord, 0, len(records))

	for _, record := range records {
		if record.Deleted() {
			ret = append(ret, record)
			continue
		}

		b, err := client.GetCover(s.ctx, record.Hash)
		if err != nil {
			return nil, errors.Wrapf(err, "fetching cover for %s", record.Hash)
		}

		path := s.CachePath(record.Hash)
		if err := ioutil.WriteFile(path, b, 0644); err != nil {
			return nil, errors.Wrapf(err, "writing cover for %s", record.Hash)
		}

		now := s.ctx.Clock.Now().UnixMilli()
		record.CoverDownloadedAt = &now

		ret = append(ret, record)
	}

	return ret, nil
}

// GenerateCoverURL resolves the local handle for the given record's cover.
// It returns an empty string if no cover has been cached.
func (s *Service) GenerateCoverURL(record database.BookRecord) (string, error) {
	if record.Deleted() {
		return "", nil
	}

	path := s.CachePath(record.Hash)
	if !utils.FileExists(path) {
		return "", nil
	}

	return path, nil
}
