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

// Package common implements the Odoo "common" service: credential checks and
// server introspection.
//
// Note that login/authenticate here are stateless credential checks against
// the /jsonrpc dispatcher. They return a user id but establish no server-side
// session; the web session endpoints are in the web package.
package common

import (
	"encoding/json"
	"fmt"

	"github.com/godoo-labs/godoo/service"
)

// Login checks user credentials and returns the user id
type Login struct {
	database string
	login    string
	secret   string
}

// NewLogin returns a Login call for the given database and credentials
func NewLogin(database string, login string, secret string) (*Login, error) {
	if err := service.CheckDatabaseName(database); err != nil {
		return nil, err
	}
	if login == "" {
		return nil, &service.ValidationError{
			Field:  "login",
			Reason: "must not be empty",
		}
	}
	return &Login{database: database, login: login, secret: secret}, nil
}

func (r *Login) Describe() service.Descriptor {
	return service.Descriptor{Service: "common", Method: "login"}
}

func (r *Login) Args() []any {
	return []any{r.database, r.login, r.secret}
}

func (r *Login) AuthRequired() bool {
	return false
}

// Authenticate is identical to Login except that it also passes a user agent
// environment mapping, as a browser would
type Authenticate struct {
	database     string
	login        string
	secret       string
	userAgentEnv map[string]any
}

// NewAuthenticate returns an Authenticate call. A nil userAgentEnv is sent as
// an empty mapping
func NewAuthenticate(
	database string,
	login string,
	secret string,
	userAgentEnv map[string]any,
) (*Authenticate, error) {
	if err := service.CheckDatabaseName(database); err != nil {
		return nil, err
	}
	if login == "" {
		return nil, &service.ValidationError{
			Field:  "login",
			Reason: "must not be empty",
		}
	}
	if userAgentEnv == nil {
		userAgentEnv = map[string]any{}
	}
	return &Authenticate{
		database:     database,
		login:        login,
		secret:       secret,
		userAgentEnv: userAgentEnv,
	}, nil
}

func (r *Authenticate) Describe() service.Descriptor {
	return service.Descriptor{Service: "common", Method: "authenticate"}
}

func (r *Authenticate) Args() []any {
	return []any{r.database, r.login, r.secret, r.userAgentEnv}
}

func (r *Authenticate) AuthRequired() bool {
	return false
}

// DecodeUID parses the result of a Login or Authenticate call. Odoo returns
// the literal false (rather than an error) for bad credentials, which is
// mapped to ok=false here
func DecodeUID(result json.RawMessage) (int64, bool, error) {
	var uid int64
	if err := json.Unmarshal(result, &uid); err == nil {
		return uid, true, nil
	}
	var rejected bool
	if err := json.Unmarshal(result, &rejected); err == nil && !rejected {
		return 0, false, nil
	}
	return 0, false, fmt.Errorf("unexpected login result: %s", result)
}

// Version fetches detailed information about the server version
type Version struct{}

func NewVersion() *Version {
	return &Version{}
}

func (r *Version) Describe() service.Descriptor {
	return service.Descriptor{Service: "common", Method: "version"}
}

func (r *Version) Args() []any {
	return []any{}
}

func (r *Version) AuthRequired() bool {
	return false
}

// VersionResponse is the result of a Version call
type VersionResponse struct {
	// The "pretty" version, e.g. "16.0+e"
	ServerVersion string `json:"server_version"`

	// The structured version info
	ServerVersionInfo ServerVersionInfo `json:"server_version_info"`

	// The server series, e.g. "16.0"
	ServerSerie string `json:"server_serie"`

	// Always 1 on current servers
	ProtocolVersion int `json:"protocol_version"`
}

// ServerVersionInfo mirrors Python's sys.version_info with an extra trailing
// element distinguishing Enterprise from Community. On the wire it is a
// positional array, e.g. [16, 0, 0, "final", 0, "e"]
type ServerVersionInfo struct {
	Major        int
	Minor        int
	Micro        int
	ReleaseLevel string
	Serial       int
	Enterprise   string
}

func (v *ServerVersionInfo) UnmarshalJSON(data []byte) error {
	var fields []any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if len(fields) < 5 {
		return fmt.Errorf(
			"server_version_info: expected at least 5 elements, got %d",
			len(fields),
		)
	}
	intAt := func(i int) int {
		f, _ := fields[i].(float64)
		return int(f)
	}
	v.Major = intAt(0)
	v.Minor = intAt(1)
	v.Micro = intAt(2)
	v.ReleaseLevel, _ = fields[3].(string)
	v.Serial = intAt(4)
	if len(fields) > 5 {
		v.Enterprise, _ = fields[5].(string)
	}
	return nil
}

func (v ServerVersionInfo) MarshalJSON() ([]byte, error) {
	fields := []any{v.Major, v.Minor, v.Micro, v.ReleaseLevel, v.Serial}
	if v.Enterprise != "" {
		fields = append(fields, v.Enterprise)
	}
	return json.Marshal(fields)
}

// About fetches basic information about the server
type About struct {
	extended bool
}

// NewAbout returns an About call. When extended is true the server also
// returns its version string
func NewAbout(extended bool) *About {
	return &About{extended: extended}
}

func (r *About) Describe() service.Descriptor {
	return service.Descriptor{Service: "common", Method: "about"}
}

func (r *About) Args() []any {
	return []any{r.extended}
}

func (r *About) AuthRequired() bool {
	return false
}

// AboutResponse is the result of an About call. Version is only populated
// when the call was made with extended=true
type AboutResponse struct {
	Info    string
	Version string
}

func (a *AboutResponse) UnmarshalJSON(data []byte) error {
	// Basic form is a bare string, extended form is [info, version]
	var info string
	if err := json.Unmarshal(data, &info); err == nil {
		a.Info = info
		return nil
	}
	var extended []string
	if err := json.Unmarshal(data, &extended); err != nil {
		return err
	}
	if len(extended) > 0 {
		a.Info = extended[0]
	}
	if len(extended) > 1 {
		a.Version = extended[1]
	}
	return nil
}
