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

package godoo

import (
	"log/slog"

	"github.com/godoo-labs/godoo/session"
	"github.com/godoo-labs/godoo/transport"
)

// ClientOptionFunc is a type that represents functions that modify the
// Client config
type ClientOptionFunc func(*Client)

// WithTransport specifies the transport to use. The default is an HTTP
// transport with a fresh cookie jar
func WithTransport(t transport.Transport) ClientOptionFunc {
	return func(c *Client) {
		c.transport = t
	}
}

// WithLogger specifies the slog logger to use. The default discards all
// output
func WithLogger(logger *slog.Logger) ClientOptionFunc {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithWebAuthentication makes Authenticate establish a cookie-backed web
// session instead of using the stateless common service login
func WithWebAuthentication(enabled bool) ClientOptionFunc {
	return func(c *Client) {
		c.webAuth = enabled
	}
}

// WithExpirySignals replaces the set of server error shapes treated as
// session expiry
func WithExpirySignals(signals ...session.Signal) ClientOptionFunc {
	return func(c *Client) {
		c.expirySignals = signals
	}
}
