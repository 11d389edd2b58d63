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

package session

import (
	"errors"

	"github.com/godoo-labs/godoo/jsonrpc"
)

// Signal describes one server error shape that means the session expired.
// All non-empty fields must match for the signal to fire. Servers are not
// consistent about how they report expiry, so a manager carries a set of
// signals and treats a match on any of them as expiry
type Signal struct {
	// Exact match against the error message
	Message string

	// Exact match against the exception class name in the error data
	Name string
}

// DefaultSignals covers the expiry shapes emitted by stock servers
func DefaultSignals() []Signal {
	return []Signal{
		{Message: "Odoo Session Expired"},
		{Name: "odoo.http.SessionExpiredException"},
	}
}

func (s Signal) matches(rpcErr *jsonrpc.RpcError) bool {
	if s.Message == "" && s.Name == "" {
		return false
	}
	if s.Message != "" && rpcErr.Message != s.Message {
		return false
	}
	if s.Name != "" && rpcErr.Data.Name != s.Name {
		return false
	}
	return true
}

// IsExpirySignal reports whether err is a server error matching any of the
// manager's configured expiry signals
func (s *Manager) IsExpirySignal(err error) bool {
	var rpcErr *jsonrpc.RpcError
	if !errors.As(err, &rpcErr) {
		return false
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	for _, signal := range s.signals {
		if signal.matches(rpcErr) {
			return true
		}
	}
	return false
}
