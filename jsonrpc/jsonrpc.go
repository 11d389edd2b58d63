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

// Package jsonrpc implements the JSON-RPC 2.0 envelope used by the Odoo API.
//
// The codec is a pure transformation between Go values and wire bytes. It has
// no knowledge of transports or sessions, which allows the same encode/decode
// path to be shared by blocking and asynchronous execution.
package jsonrpc

import (
	"encoding/json"
)

// Version is the JSON-RPC protocol version sent with every request
const Version = "2.0"

// methodCall is the fixed JSON-RPC method name. Odoo multiplexes all
// endpoints through "call" and selects the real method via params
const methodCall = "call"

// ServiceParams is the params shape for /jsonrpc service endpoints. The
// service/method pair selects the remote endpoint and Args carries the
// positional arguments
type ServiceParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

// request is the full JSON-RPC request envelope
type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	ID      uint64 `json:"id"`
	Params  any    `json:"params"`
}

// Envelope is a decoded JSON-RPC response. Exactly one of Result and Err is
// set; Decode rejects anything else
type Envelope struct {
	ID     uint64
	Result json.RawMessage
	Err    *RpcError
}

// Encode serializes a method invocation into the JSON-RPC request envelope.
// The params value is typically a ServiceParams (for /jsonrpc endpoints) or a
// flat object (for /web endpoints). Values that cannot be represented as JSON
// result in an EncodingError
func Encode(id uint64, params any) ([]byte, error) {
	data, err := json.Marshal(request{
		JSONRPC: Version,
		Method:  methodCall,
		ID:      id,
		Params:  params,
	})
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return data, nil
}

// Decode parses raw response bytes into an Envelope. A body that is not valid
// JSON, has no id, or does not carry exactly one of result/error is rejected
// with a ProtocolError
func Decode(data []byte) (*Envelope, error) {
	var raw struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      *uint64         `json:"id"`
		Result  json.RawMessage `json:"result"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ProtocolError{Reason: "malformed response body", Err: err}
	}
	if raw.ID == nil {
		return nil, &ProtocolError{Reason: "response has no id"}
	}
	hasResult := raw.Result != nil
	hasError := raw.Error != nil
	switch {
	case hasResult && hasError:
		return nil, &ProtocolError{
			Reason: "response carries both result and error",
		}
	case !hasResult && !hasError:
		return nil, &ProtocolError{
			Reason: "response carries neither result nor error",
		}
	case hasError:
		rpcErr := &RpcError{}
		if err := json.Unmarshal(raw.Error, rpcErr); err != nil {
			return nil, &ProtocolError{
				Reason: "malformed error object",
				Err:    err,
			}
		}
		return &Envelope{ID: *raw.ID, Err: rpcErr}, nil
	default:
		return &Envelope{ID: *raw.ID, Result: raw.Result}, nil
	}
}
