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

package controllers

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/leafmark/leafmark/pkg/server/app"
	"github.com/leafmark/leafmark/pkg/server/database"
	"github.com/leafmark/leafmark/pkg/server/middleware"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Covers is the controller for cover images
type Covers struct {
	app *app.App
}

// palette of cover background colors. The color is picked by the record hash
// so that a cover is stable across devices.
var palette = []string{
	"#264653",
	"#2a9d8f",
	"#8ab17d",
	"#e9c46a",
	"#f4a261",
	"#e76f51",
}

// Get serves a generated cover image for the given record hash
func (c *Covers) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromRequest(r)
	if !ok {
		middleware.RespondUnauthorized(w)
		return
	}

	vars := mux.Vars(r)
	hash := vars["hash"]

	var record database.BookRecord
	err := c.app.DB.Where("user_id = ? AND hash = ?", user.ID, hash).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	} else if err != nil {
		middleware.DoError(w, "finding record", err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	fmt.Fprint(w, renderCover(record))
}

// renderCover builds a placeholder cover with the title initials over a
// background color derived from the hash
func renderCover(record database.BookRecord) string {
	color := palette[0]
	if len(record.Hash) > 0 {
		color = palette[int(record.Hash[0])%len(palette)]
	}

	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="120" height="180" viewBox="0 0 120 180">`)
	b.WriteString(fmt.Sprintf(`<rect width="120" height="180" fill="%s"/>`, color))
	b.WriteString(fmt.Sprintf(`<text x="60" y="95" font-family="serif" font-size="36" fill="#ffffff" text-anchor="middle">%s</text>`, html.EscapeString(initials(record.Title))))
	b.WriteString(`</svg>`)

	return b.String()
}

func initials(title string) string {
	words := strings.Fields(title)

	var b strings.Builder
	for i, word := range words {
		if i >= 2 {
			break
		}

		runes := []rune(word)
		b.WriteString(strings.ToUpper(string(runes[0])))
	}

	return b.String()
}
