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

	"github.com/godoo-labs/godoo/service/object"
	"github.com/godoo-labs/godoo/service/orm"
)

// The ORM wrappers are thin: each builds the corresponding call from the orm
// package, folds the session user context into its keyword arguments, and
// decodes the result. Building the call through the orm package means a
// wrapper and a manually-constructed ExecuteKw serialize identically.

func (c *Client) callOrm(
	ctx context.Context,
	call *object.ExecuteKw,
) (json.RawMessage, error) {
	call.ApplyContext(c.session.Context())
	return c.Call(ctx, call)
}

// Execute dispatches a raw method call on a model, positional arguments only
func (c *Client) Execute(
	ctx context.Context,
	model string,
	method string,
	args []any,
) (json.RawMessage, error) {
	call, err := object.NewExecute(model, method, args)
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, call)
}

// ExecuteKw dispatches a raw method call on a model with positional and
// keyword arguments
func (c *Client) ExecuteKw(
	ctx context.Context,
	model string,
	method string,
	args []any,
	kwargs map[string]any,
) (json.RawMessage, error) {
	call, err := object.NewExecuteKw(model, method, args, kwargs)
	if err != nil {
		return nil, err
	}
	return c.callOrm(ctx, call)
}

// Create creates a single record and returns its id
func (c *Client) Create(
	ctx context.Context,
	model string,
	values map[string]any,
) (int64, error) {
	call, err := orm.Create(model, values)
	if err != nil {
		return 0, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return 0, err
	}
	return orm.DecodeID(result)
}

// CreateMulti creates multiple records and returns their ids
func (c *Client) CreateMulti(
	ctx context.Context,
	model string,
	values []map[string]any,
) ([]int64, error) {
	call, err := orm.CreateMulti(model, values)
	if err != nil {
		return nil, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return nil, err
	}
	return orm.DecodeIDs(result)
}

// Read fetches the given fields of the given records. A nil fields slice
// reads all fields
func (c *Client) Read(
	ctx context.Context,
	model string,
	ids []int64,
	fields []string,
) ([]orm.Record, error) {
	call, err := orm.Read(model, ids, fields)
	if err != nil {
		return nil, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return nil, err
	}
	return orm.DecodeRecords(result)
}

// Write updates the given records with the given field values
func (c *Client) Write(
	ctx context.Context,
	model string,
	ids []int64,
	values map[string]any,
) error {
	call, err := orm.Write(model, ids, values)
	if err != nil {
		return err
	}
	_, err = c.callOrm(ctx, call)
	return err
}

// Unlink deletes the given records
func (c *Client) Unlink(
	ctx context.Context,
	model string,
	ids []int64,
) error {
	call, err := orm.Unlink(model, ids)
	if err != nil {
		return err
	}
	_, err = c.callOrm(ctx, call)
	return err
}

// Search returns the ids of records matching domain
func (c *Client) Search(
	ctx context.Context,
	model string,
	domain orm.Domain,
	opts *orm.SearchOptions,
) ([]int64, error) {
	call, err := orm.Search(model, domain, opts)
	if err != nil {
		return nil, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return nil, err
	}
	return orm.DecodeIDs(result)
}

// SearchRead searches records matching domain and reads the given fields in
// one round trip
func (c *Client) SearchRead(
	ctx context.Context,
	model string,
	domain orm.Domain,
	fields []string,
	opts *orm.SearchOptions,
) ([]orm.Record, error) {
	call, err := orm.SearchRead(model, domain, fields, opts)
	if err != nil {
		return nil, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return nil, err
	}
	return orm.DecodeRecords(result)
}

// SearchCount counts the records matching domain
func (c *Client) SearchCount(
	ctx context.Context,
	model string,
	domain orm.Domain,
) (int64, error) {
	call, err := orm.SearchCount(model, domain)
	if err != nil {
		return 0, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return 0, err
	}
	return orm.DecodeCount(result)
}

// Copy duplicates a record, optionally overriding fields, and returns the
// new record's id
func (c *Client) Copy(
	ctx context.Context,
	model string,
	id int64,
	defaults map[string]any,
) (int64, error) {
	call, err := orm.Copy(model, id, defaults)
	if err != nil {
		return 0, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return 0, err
	}
	return orm.DecodeID(result)
}

// Exists filters the given ids down to those that refer to existing records
func (c *Client) Exists(
	ctx context.Context,
	model string,
	ids []int64,
) ([]int64, error) {
	call, err := orm.Exists(model, ids)
	if err != nil {
		return nil, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return nil, err
	}
	return orm.DecodeIDs(result)
}

// NameGet returns the display names of the given records
func (c *Client) NameGet(
	ctx context.Context,
	model string,
	ids []int64,
) ([]orm.NameRef, error) {
	call, err := orm.NameGet(model, ids)
	if err != nil {
		return nil, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return nil, err
	}
	return orm.DecodeNameRefs(result)
}

// NameCreate creates a record from a display name only
func (c *Client) NameCreate(
	ctx context.Context,
	model string,
	name string,
) (orm.NameRef, error) {
	call, err := orm.NameCreate(model, name)
	if err != nil {
		return orm.NameRef{}, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return orm.NameRef{}, err
	}
	return orm.DecodeNameRef(result)
}

// NameSearch searches records by display name
func (c *Client) NameSearch(
	ctx context.Context,
	model string,
	name string,
	opts *orm.NameSearchOptions,
) ([]orm.NameRef, error) {
	call, err := orm.NameSearch(model, name, opts)
	if err != nil {
		return nil, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return nil, err
	}
	return orm.DecodeNameRefs(result)
}

// ReadGroup aggregates the records matching domain, grouped by the groupBy
// fields
func (c *Client) ReadGroup(
	ctx context.Context,
	model string,
	domain orm.Domain,
	fields []string,
	groupBy []string,
	opts *orm.ReadGroupOptions,
) ([]orm.Record, error) {
	call, err := orm.ReadGroup(model, domain, fields, groupBy, opts)
	if err != nil {
		return nil, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return nil, err
	}
	return orm.DecodeRecords(result)
}

// GetExternalID resolves record ids to their XML ids
func (c *Client) GetExternalID(
	ctx context.Context,
	model string,
	ids []int64,
) (map[int64]string, error) {
	call, err := orm.GetExternalID(model, ids)
	if err != nil {
		return nil, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return nil, err
	}
	return orm.DecodeExternalIDs(result)
}

// CheckAccessRights reports whether the session user may perform operation
// on model
func (c *Client) CheckAccessRights(
	ctx context.Context,
	model string,
	operation string,
) (bool, error) {
	call, err := orm.CheckAccessRights(model, operation, false)
	if err != nil {
		return false, err
	}
	result, err := c.callOrm(ctx, call)
	if err != nil {
		return false, err
	}
	return orm.DecodeBool(result)
}
