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

// Package client provides the client for the sync gateway API
package client

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/leafmark/leafmark/pkg/cli/context"
	"github.com/leafmark/leafmark/pkg/cli/database"
	"github.com/leafmark/leafmark/pkg/cli/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// ErrInvalidLogin is an error for invalid credentials for login
var ErrInvalidLogin = errors.New("invalid credentials")

// ErrContentTypeMismatch is an error for invalid credentials for login
var ErrContentTypeMismatch = errors.New("content type mismatch")

type rateLimitedTransport struct {
	limiter   *rate.Limiter
	transport http.RoundTripper
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, errors.Wrap(err, "waiting for rate limit")
	}

	return t.transport.RoundTrip(req)
}

var httpClient = http.Client{
	Transport: &rateLimitedTransport{
		limiter:   rate.NewLimiter(rate.Limit(5), 5),
		transport: http.DefaultTransport,
	},
}

// SyncDirection indicates which way records flow in a sync exchange
type SyncDirection string

var (
	// DirectionPull fetches remote changes without uploading
	DirectionPull SyncDirection = "pull"
	// DirectionPush uploads local changes without fetching
	DirectionPush SyncDirection = "push"
	// DirectionBoth exchanges changes in both directions
	DirectionBoth SyncDirection = "both"
)

// SyncRequest is a payload for the sync endpoint
type SyncRequest struct {
	Records      []database.BookRecord `json:"records"`
	LastSyncedAt int64                 `json:"last_synced_at"`
	Direction    SyncDirection         `json:"direction"`
}

// SyncResponse is a response from the sync endpoint
type SyncResponse struct {
	Records      []database.BookRecord `json:"records"`
	LastSyncedAt int64                 `json:"last_synced_at"`
}

// HTTPError is an error from the API
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("response %d: %s", e.StatusCode, e.Body)
}

type requestOptions struct {
	HTTPClient          *http.Client
	ExpectedContentType string
}

func getHTTPClient(opts *requestOptions) http.Client {
	if opts != nil && opts.HTTPClient != nil {
		return *opts.HTTPClient
	}

	return httpClient
}

func getReq(ctx context.LeafmarkCtx, path, method, body string) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s%s", ctx.APIEndpoint, path)

	req, err := http.NewRequest(method, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("CLI-Version", ctx.Version)

	return req, nil
}

func checkRespErr(res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "reading error response body")
	}

	return HTTPError{StatusCode: res.StatusCode, Body: string(body)}
}

// doReq does a http request to the given path in the api endpoint
func doReq(ctx context.LeafmarkCtx, method, path, body string, auth bool, opts *requestOptions) (*http.Response, error) {
	req, err := getReq(ctx, path, method, body)
	if err != nil {
		return nil, errors.Wrap(err, "getting request")
	}

	if auth {
		if ctx.SessionKey == "" {
			return nil, errors.New("not logged in")
		}

		credential := fmt.Sprintf("Bearer %s", ctx.SessionKey)
		req.Header.Set("Authorization", credential)
	}

	hc := getHTTPClient(opts)

	res, err := hc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "making http request")
	}

	if err := checkRespErr(res); err != nil {
		return res, err
	}

	if opts != nil && opts.ExpectedContentType != "" {
		contentType := res.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, opts.ExpectedContentType) {
			log.Debug("content type mismatch. expected: %s. got: %s\n", opts.ExpectedContentType, contentType)
			return res, ErrContentTypeMismatch
		}
	}

	return res, nil
}

// doAuthorizedReq does a http request to the given path in the api endpoint as a user,
// with the session key in the request header
func doAuthorizedReq(ctx context.LeafmarkCtx, method, path, body string, opts *requestOptions) (*http.Response, error) {
	return doReq(ctx, method, path, body, true, opts)
}

// Sync exchanges records with the sync gateway
func Sync(ctx context.LeafmarkCtx, payload SyncRequest) (*SyncResponse, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling payload")
	}

	res, err := doAuthorizedReq(ctx, "POST", "/v3/sync", string(b), &requestOptions{ExpectedContentType: "application/json"})
	if err != nil {
		return nil, errors.Wrap(err, "making request")
	}
	defer res.Body.Close()

	var resp SyncResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, errors.Wrap(err, "decoding payload")
	}

	return &resp, nil
}

// GetCover fetches the cover image for the book with the given hash
func GetCover(ctx context.LeafmarkCtx, hash string) ([]byte, error) {
	path := fmt.Sprintf("/v3/covers/%s", hash)

	res, err := doAuthorizedReq(ctx, "GET", path, "", nil)
	if err != nil {
		return nil, errors.Wrap(err, "making request")
	}
	defer res.Body.Close()

	b, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}

	return b, nil
}

// SigninResponse is a response from the signin endpoint
type SigninResponse struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
}

// Signin requests a session
func Signin(ctx context.LeafmarkCtx, email, password string) (*SigninResponse, error) {
	payload := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{
		Email:    email,
		Password: password,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling payload")
	}

	res, err := doReq(ctx, "POST", "/v3/signin", string(b), false, nil)
	if err != nil {
		if httpErr, ok := err.(HTTPError); ok && httpErr.StatusCode == http.StatusUnauthorized {
			return nil, ErrInvalidLogin
		}

		return nil, errors.Wrap(err, "making request")
	}
	defer res.Body.Close()

	var resp SigninResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, errors.Wrap(err, "decoding payload")
	}

	return &resp, nil
}

// Signout deletes a user session on the server side
func Signout(ctx context.LeafmarkCtx) error {
	res, err := doAuthorizedReq(ctx, "POST", "/v3/signout", "", nil)
	if err != nil {
		return errors.Wrap(err, "making request")
	}
	defer res.Body.Close()

	return nil
}
