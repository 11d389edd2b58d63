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

// Package web implements the web-style session endpoints (/web/session/...).
//
// Unlike the /jsonrpc services, these endpoints establish a server-side
// session identified by an HTTP cookie. The transport is responsible for
// persisting that cookie across calls.
package web

import (
	"encoding/json"
	"fmt"

	"github.com/godoo-labs/godoo/service"
)

// SessionAuthenticate logs in against /web/session/authenticate and
// establishes a cookie-backed server-side session
type SessionAuthenticate struct {
	database string
	login    string
	secret   string
}

func NewSessionAuthenticate(
	database string,
	login string,
	secret string,
) (*SessionAuthenticate, error) {
	if err := service.CheckDatabaseName(database); err != nil {
		return nil, err
	}
	if login == "" {
		return nil, &service.ValidationError{
			Field:  "login",
			Reason: "must not be empty",
		}
	}
	return &SessionAuthenticate{
		database: database,
		login:    login,
		secret:   secret,
	}, nil
}

func (r *SessionAuthenticate) Path() string {
	return "/web/session/authenticate"
}

func (r *SessionAuthenticate) WebParams() any {
	return map[string]any{
		"db":       r.database,
		"login":    r.login,
		"password": r.secret,
	}
}

// SessionInfo is the interesting subset of the session object returned by
// SessionAuthenticate. The full payload varies between server versions, so
// anything not modeled here remains available in Raw
type SessionInfo struct {
	UID         int64          `json:"uid"`
	Username    string         `json:"username"`
	UserContext map[string]any `json:"user_context"`
	Database    string         `json:"db"`

	Raw map[string]any `json:"-"`
}

// DecodeSessionInfo parses the result of a SessionAuthenticate call
func DecodeSessionInfo(result json.RawMessage) (*SessionInfo, error) {
	info := &SessionInfo{}
	if err := json.Unmarshal(result, info); err != nil {
		return nil, fmt.Errorf("unexpected session info: %w", err)
	}
	if info.UID == 0 {
		return nil, fmt.Errorf("session info has no uid")
	}
	if err := json.Unmarshal(result, &info.Raw); err != nil {
		return nil, fmt.Errorf("unexpected session info: %w", err)
	}
	return info, nil
}

// SessionDestroy terminates the cookie-backed server-side session
type SessionDestroy struct{}

func NewSessionDestroy() *SessionDestroy {
	return &SessionDestroy{}
}

func (r *SessionDestroy) Path() string {
	return "/web/session/destroy"
}

func (r *SessionDestroy) WebParams() any {
	return map[string]any{}
}
