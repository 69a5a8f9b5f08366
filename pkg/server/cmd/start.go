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
	"net/http"

	"github.com/leafmark/leafmark/pkg/server/controllers"
	"github.com/leafmark/leafmark/pkg/server/log"
	"github.com/leafmark/leafmark/pkg/server/middleware"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
)

// startCmd starts the server
func startCmd(versionTag string) error {
	a, err := initApp()
	if err != nil {
		return errors.Wrap(err, "initializing app")
	}

	// periodically remove expired sessions
	cr := cron.New()
	err = cr.AddFunc("@every 1h", func() {
		removed, err := a.DeleteExpiredSessions()
		if err != nil {
			log.ErrorWrap(err, "cleaning up expired sessions")
			return
		}

		if removed > 0 {
			log.WithFields(log.Fields{"count": removed}).Info("removed expired sessions")
		}
	})
	if err != nil {
		return errors.Wrap(err, "scheduling session cleanup")
	}
	cr.Start()
	defer cr.Stop()

	c := controllers.NewContext(a, versionTag)
	router := controllers.NewRouter(a, c)

	handler := middleware.Logging(middleware.Limit(router))

	addr := fmt.Sprintf(":%s", a.Config.Port)
	log.WithFields(log.Fields{"addr": addr, "version": versionTag}).Info("starting server")

	return http.ListenAndServe(addr, handler)
}
