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

// Package test provides scripted fake transports for exercising the client
// without a server.
package test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/godoo-labs/godoo/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestingT is the subset of testing.T used by the fake transports
type TestingT interface {
	Errorf(format string, args ...any)
	FailNow()
}

// Exchange scripts one request/response pair. Exactly one of Result and
// Error must be set
type Exchange struct {
	// Expected request params as JSON; compared structurally. Empty skips
	// the check
	ExpectParams string

	// Optional expected endpoint suffix, e.g. "/jsonrpc" or
	// "/web/session/authenticate". Empty skips the check
	ExpectPath string

	// Raw JSON for the response result member
	Result string

	// Raw JSON for the response error member
	Error string
}

type scriptedRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	ID      uint64          `json:"id"`
	Params  json.RawMessage `json:"params"`
}

// Scripted is a transport that plays through a fixed list of exchanges,
// failing the test on any deviation. The response envelope echoes the
// request id
type Scripted struct {
	t         TestingT
	exchanges []Exchange
	mutex     sync.Mutex
	next      int
}

// NewScripted returns a Scripted transport for the given exchanges
func NewScripted(t TestingT, exchanges []Exchange) *Scripted {
	return &Scripted{t: t, exchanges: exchanges}
}

// Requests returns how many requests have been served so far
func (s *Scripted) Requests() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.next
}

func (s *Scripted) RoundTrip(
	ctx context.Context,
	endpoint string,
	body []byte,
) ([]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	require.Less(
		s.t,
		s.next,
		len(s.exchanges),
		"unexpected request beyond scripted conversation: %s",
		string(body),
	)
	exchange := s.exchanges[s.next]
	s.next++
	var req scriptedRequest
	require.NoError(s.t, json.Unmarshal(body, &req))
	assert.Equal(s.t, "2.0", req.JSONRPC)
	assert.Equal(s.t, "call", req.Method)
	if exchange.ExpectPath != "" {
		assert.Contains(s.t, endpoint, exchange.ExpectPath)
	}
	if exchange.ExpectParams != "" {
		assert.JSONEq(s.t, exchange.ExpectParams, string(req.Params))
	}
	if exchange.Error != "" {
		return fmt.Appendf(
			nil,
			`{"jsonrpc":"2.0","id":%d,"error":%s}`,
			req.ID,
			exchange.Error,
		), nil
	}
	return fmt.Appendf(
		nil,
		`{"jsonrpc":"2.0","id":%d,"result":%s}`,
		req.ID,
		exchange.Result,
	), nil
}

// Static is a transport that answers every request with the same result,
// echoing request ids. It records the ids it has seen, which makes it useful
// for concurrency tests
type Static struct {
	Result string

	mutex sync.Mutex
	ids   []uint64
}

// NewStatic returns a Static transport answering with result
func NewStatic(result string) *Static {
	return &Static{Result: result}
}

// IDs returns the request ids seen so far
func (s *Static) IDs() []uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	ids := make([]uint64, len(s.ids))
	copy(ids, s.ids)
	return ids
}

func (s *Static) RoundTrip(
	ctx context.Context,
	endpoint string,
	body []byte,
) ([]byte, error) {
	var req scriptedRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	s.mutex.Lock()
	s.ids = append(s.ids, req.ID)
	s.mutex.Unlock()
	return fmt.Appendf(
		nil,
		`{"jsonrpc":"2.0","id":%d,"result":%s}`,
		req.ID,
		s.Result,
	), nil
}

// interface conformance checks
var (
	_ transport.Transport = (*Scripted)(nil)
	_ transport.Transport = (*Static)(nil)
)
