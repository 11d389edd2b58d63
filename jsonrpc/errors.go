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

package jsonrpc

import (
	"fmt"
)

// EncodingError represents a failure to serialize a request locally, before
// any network activity
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding error: %s", e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// ProtocolError represents a malformed wire response: invalid JSON, a missing
// correlation id, an id that does not match the request, or a body that does
// not carry exactly one of result/error
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %s", e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol error: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// RpcError is a well-formed error response from the Odoo server. It is
// distinct from transport failures and local protocol errors: the request
// reached the server and was rejected there
type RpcError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    RpcErrorData `json:"data"`
}

// RpcErrorData carries the server-side exception details
type RpcErrorData struct {
	// Dotted path of the server exception type,
	// e.g. "odoo.exceptions.AccessError" or "builtins.TypeError"
	Name string `json:"name"`

	// The server-side stack trace
	Debug string `json:"debug"`

	// The exception message
	Message string `json:"message"`

	// The exception arguments
	Arguments []any `json:"arguments"`

	// The exception context
	Context map[string]any `json:"context"`
}

func (e *RpcError) Error() string {
	if e.Data.Name != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Data.Name)
	}
	return e.Message
}
