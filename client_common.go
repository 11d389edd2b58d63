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
	"context"
	"encoding/json"
	"fmt"

	"github.com/godoo-labs/godoo/service/common"
)

// Version fetches detailed version information from the server. No
// authentication is required
func (c *Client) Version(ctx context.Context) (*common.VersionResponse, error) {
	result, err := c.Call(ctx, common.NewVersion())
	if err != nil {
		return nil, err
	}
	version := &common.VersionResponse{}
	if err := json.Unmarshal(result, version); err != nil {
		return nil, fmt.Errorf("unexpected version result: %w", err)
	}
	return version, nil
}

// About fetches basic information about the server. With extended true the
// response also carries the server version string
func (c *Client) About(
	ctx context.Context,
	extended bool,
) (*common.AboutResponse, error) {
	result, err := c.Call(ctx, common.NewAbout(extended))
	if err != nil {
		return nil, err
	}
	about := &common.AboutResponse{}
	if err := json.Unmarshal(result, about); err != nil {
		return nil, fmt.Errorf("unexpected about result: %w", err)
	}
	return about, nil
}

// LoginUID checks credentials against the server without touching the
// client's session state, returning the user id. Rejected credentials are
// reported as ok=false rather than an error
func (c *Client) LoginUID(
	ctx context.Context,
	database string,
	login string,
	secret string,
) (int64, bool, error) {
	call, err := common.NewLogin(database, login, secret)
	if err != nil {
		return 0, false, err
	}
	result, err := c.Call(ctx, call)
	if err != nil {
		return 0, false, err
	}
	return common.DecodeUID(result)
}
