// Copyright 2025 Godoo Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

const defaultTimeout = 30 * time.Second

// HTTP is a Transport that POSTs JSON bodies over HTTP. It keeps a cookie
// jar so session cookies issued by web endpoints are replayed on later
// requests against the same host
type HTTP struct {
	client *http.Client
}

// HTTPOptionFunc configures an HTTP transport
type HTTPOptionFunc func(*HTTP)

// WithClient replaces the underlying http.Client. The caller is responsible
// for attaching a cookie jar if web sessions are used
func WithClient(client *http.Client) HTTPOptionFunc {
	return func(t *HTTP) {
		t.client = client
	}
}

// WithTimeout sets the per-request timeout on the default client
func WithTimeout(timeout time.Duration) HTTPOptionFunc {
	return func(t *HTTP) {
		if t.client != nil {
			t.client.Timeout = timeout
		}
	}
}

// NewHTTP returns an HTTP transport with a fresh cookie jar and a default
// request timeout
func NewHTTP(options ...HTTPOptionFunc) *HTTP {
	// cookiejar.New never fails with a nil Options
	jar, _ := cookiejar.New(nil)
	t := &HTTP{
		client: &http.Client{
			Jar:     jar,
			Timeout: defaultTimeout,
		},
	}
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *HTTP) RoundTrip(
	ctx context.Context,
	endpoint string,
	body []byte,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		endpoint,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, &Error{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &Error{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &Error{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Endpoint: endpoint, Err: err}
	}
	return respBody, nil
}
