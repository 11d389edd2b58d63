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

// Package godoo implements a strongly-typed client for the Odoo JSON-RPC
// API. The Client facade dispatches typed calls from the service packages,
// manages authentication through a session manager, and retries a call once
// when the server signals that the session expired.
package godoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/godoo-labs/godoo/jsonrpc"
	"github.com/godoo-labs/godoo/service"
	"github.com/godoo-labs/godoo/session"
	"github.com/godoo-labs/godoo/transport"
)

// Client is a connection to one Odoo server. Its methods are safe for
// concurrent use; call ids are unique per client for the life of the process
type Client struct {
	baseURL       string
	jsonrpcURL    string
	transport     transport.Transport
	logger        *slog.Logger
	session       *session.Manager
	nextID        atomic.Uint64
	webAuth       bool
	expirySignals []session.Signal
}

// NewClient returns a Client for the server at baseURL, e.g.
// "https://odoo.example.com". No network traffic happens until the first
// call
func NewClient(baseURL string, options ...ClientOptionFunc) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf(
			"invalid server URL: unsupported scheme %q",
			parsed.Scheme,
		)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid server URL: missing host")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	// Apply provided options functions
	for _, option := range options {
		option(c)
	}
	c.jsonrpcURL = c.baseURL + "/jsonrpc"
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if c.transport == nil {
		c.transport = transport.NewHTTP()
	}
	sessionOptions := []session.ManagerOptionFunc{
		session.WithLogger(c.logger),
		session.WithWebAuthentication(c.webAuth),
	}
	if c.expirySignals != nil {
		sessionOptions = append(
			sessionOptions,
			session.WithExpirySignals(c.expirySignals...),
		)
	}
	c.session = session.NewManager(sessionOptions...)
	return c, nil
}

// Session returns the session manager for state inspection
func (c *Client) Session() *session.Manager {
	return c.session
}

// Authenticate logs in and stores the credentials for automatic
// re-authentication on session expiry
func (c *Client) Authenticate(
	ctx context.Context,
	database string,
	login string,
	secret string,
) error {
	return c.session.Authenticate(ctx, c, database, login, secret)
}

// AuthenticateManual marks the client as authenticated with a known user id,
// skipping the login round trip
func (c *Client) AuthenticateManual(
	database string,
	uid int64,
	secret string,
) error {
	return c.session.AuthenticateManual(database, uid, secret)
}

// Logout destroys the server-side web session, when one exists, and forgets
// the stored credentials
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Logout(ctx, c)
}

// Call dispatches a typed service call and returns the raw result. Calls
// that require authentication get the session credential prefix prepended to
// their arguments, and are retried exactly once after a transparent
// re-authentication if the server signals session expiry. Server-side
// failures are returned as *jsonrpc.RpcError
func (c *Client) Call(
	ctx context.Context,
	call service.Call,
) (json.RawMessage, error) {
	result, err := c.dispatch(ctx, call)
	if err == nil || !call.AuthRequired() || !c.session.IsExpirySignal(err) {
		return result, err
	}
	c.session.MarkExpired()
	if refreshErr := c.session.Refresh(ctx, c); refreshErr != nil {
		return nil, refreshErr
	}
	result, err = c.dispatch(ctx, call)
	if err != nil && c.session.IsExpirySignal(err) {
		return nil, &session.AuthError{
			Reason: "session expired again after re-authentication",
			Err:    err,
		}
	}
	return result, err
}

// CallWeb dispatches a call against one of the /web JSON-RPC endpoints.
// Session cookies are handled by the transport
func (c *Client) CallWeb(
	ctx context.Context,
	call service.WebCall,
) (json.RawMessage, error) {
	return c.roundTrip(ctx, c.baseURL+call.Path(), call.WebParams())
}

func (c *Client) dispatch(
	ctx context.Context,
	call service.Call,
) (json.RawMessage, error) {
	args := call.Args()
	if call.AuthRequired() {
		prefix, err := c.session.AuthArgs()
		if err != nil {
			return nil, err
		}
		args = append(prefix, args...)
	}
	desc := call.Describe()
	return c.roundTrip(ctx, c.jsonrpcURL, jsonrpc.ServiceParams{
		Service: desc.Service,
		Method:  desc.Method,
		Args:    args,
	})
}

func (c *Client) roundTrip(
	ctx context.Context,
	endpoint string,
	params any,
) (json.RawMessage, error) {
	id := c.nextID.Add(1)
	body, err := jsonrpc.Encode(id, params)
	if err != nil {
		return nil, err
	}
	c.logger.Debug(
		"sending request",
		"component", "client",
		"endpoint", endpoint,
		"id", id,
	)
	respBody, err := c.transport.RoundTrip(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}
	envelope, err := jsonrpc.Decode(respBody)
	if err != nil {
		return nil, err
	}
	if envelope.ID != id {
		return nil, &jsonrpc.ProtocolError{
			Reason: fmt.Sprintf(
				"response id %d does not match request id %d",
				envelope.ID,
				id,
			),
		}
	}
	if envelope.Err != nil {
		c.logger.Debug(
			"server error",
			"component", "client",
			"endpoint", endpoint,
			"id", id,
			"code", envelope.Err.Code,
			"error", envelope.Err.Message,
		)
		return nil, envelope.Err
	}
	return envelope.Result, nil
}

// AsyncCall tracks one call dispatched with Go
type AsyncCall struct {
	Call   service.Call
	Result json.RawMessage
	Error  error
	Done   chan *AsyncCall
}

// Go dispatches the call asynchronously. It returns the AsyncCall structure
// representing the invocation; the same structure is delivered on Done when
// the call completes. If done is nil a new channel is allocated; if non-nil
// it must be buffered or delivery of the completion may be dropped
func (c *Client) Go(
	ctx context.Context,
	call service.Call,
	done chan *AsyncCall,
) *AsyncCall {
	if done == nil {
		done = make(chan *AsyncCall, 1)
	}
	ac := &AsyncCall{
		Call: call,
		Done: done,
	}
	go func() {
		ac.Result, ac.Error = c.Call(ctx, call)
		select {
		case ac.Done <- ac:
		default:
			c.logger.Debug(
				"discarding async completion, done channel is full",
				"component", "client",
			)
		}
	}()
	return ac
}
