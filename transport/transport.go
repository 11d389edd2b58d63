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

// Package transport defines the byte-level send/receive seam between the
// client and the network.
//
// A Transport moves an encoded request body to an endpoint and returns the
// raw response body. It never interprets the JSON-RPC payload: connection
// failures, timeouts and non-2xx statuses surface as *Error, everything else
// is opaque bytes for the codec to deal with.
package transport

import (
	"context"
	"fmt"
)

// Transport moves serialized request bytes to an endpoint and returns the
// raw response bytes. Implementations must be safe for concurrent use.
// Cancellation and timeouts are driven entirely through ctx
type Transport interface {
	RoundTrip(ctx context.Context, endpoint string, body []byte) ([]byte, error)
}

// Func adapts a plain function to the Transport interface, letting callers
// reuse an existing HTTP stack
type Func func(ctx context.Context, endpoint string, body []byte) ([]byte, error)

func (f Func) RoundTrip(
	ctx context.Context,
	endpoint string,
	body []byte,
) ([]byte, error) {
	return f(ctx, endpoint, body)
}

// Error represents a transport-level failure: the request never produced a
// well-formed JSON-RPC response body. StatusCode is zero unless the failure
// was a non-2xx HTTP status
type Error struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf(
			"transport error: %s returned status %d",
			e.Endpoint,
			e.StatusCode,
		)
	}
	return fmt.Sprintf("transport error: %s: %s", e.Endpoint, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
