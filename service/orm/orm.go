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

// Package orm provides typed constructors for the common model methods
// (create, read, write, unlink, search, search_read and friends).
//
// There is no "orm" service on the server. Every constructor here returns a
// plain object.ExecuteKw call, so the wire output is byte-identical to a
// manually built execute_kw call with equivalent arguments.
package orm

import (
	"fmt"

	"github.com/godoo-labs/godoo/service"
	"github.com/godoo-labs/godoo/service/object"
)

// SearchOptions carries the optional keyword arguments shared by Search and
// SearchRead. Zero values are omitted from the request
type SearchOptions struct {
	Offset int
	Limit  int
	Order  string
}

// NameSearchOptions carries the optional keyword arguments to NameSearch
type NameSearchOptions struct {
	// Additional domain to restrict the candidates
	Domain Domain

	// Match operator for the name, default "ilike"
	Operator string

	// Maximum number of results
	Limit int
}

// ReadGroupOptions carries the optional keyword arguments to ReadGroup
type ReadGroupOptions struct {
	Offset  int
	Limit   int
	OrderBy string

	// Lazy controls whether only the first groupby level is applied
	Lazy bool
}

func checkIDs(ids []int64) error {
	if len(ids) == 0 {
		return &service.ValidationError{
			Field:  "ids",
			Reason: "must contain at least one record id",
		}
	}
	return nil
}

// idArgs converts record ids into the generic argument representation
func idArgs(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// Create builds a create call for a single record. The returned id can be
// decoded with DecodeID
func Create(model string, values map[string]any) (*object.ExecuteKw, error) {
	if values == nil {
		return nil, &service.ValidationError{
			Field:  "values",
			Reason: "must be present (may be empty)",
		}
	}
	return object.NewExecuteKw(model, "create", []any{values}, nil)
}

// CreateMulti builds a create call for multiple records. The returned ids can
// be decoded with DecodeIDs
func CreateMulti(
	model string,
	values []map[string]any,
) (*object.ExecuteKw, error) {
	if len(values) == 0 {
		return nil, &service.ValidationError{
			Field:  "values",
			Reason: "must contain at least one record",
		}
	}
	recs := make([]any, len(values))
	for i, v := range values {
		recs[i] = v
	}
	return object.NewExecuteKw(model, "create", []any{recs}, nil)
}

// Read builds a read call for the given record ids. A nil fields slice reads
// all fields
func Read(model string, ids []int64, fields []string) (*object.ExecuteKw, error) {
	if err := checkIDs(ids); err != nil {
		return nil, err
	}
	kwargs := map[string]any{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}
	return object.NewExecuteKw(model, "read", []any{idArgs(ids)}, kwargs)
}

// Write builds a write call updating the given records
func Write(
	model string,
	ids []int64,
	values map[string]any,
) (*object.ExecuteKw, error) {
	if err := checkIDs(ids); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, &service.ValidationError{
			Field:  "values",
			Reason: "must contain at least one field",
		}
	}
	return object.NewExecuteKw(
		model,
		"write",
		[]any{idArgs(ids), values},
		nil,
	)
}

// Unlink builds an unlink (delete) call for the given records
func Unlink(model string, ids []int64) (*object.ExecuteKw, error) {
	if err := checkIDs(ids); err != nil {
		return nil, err
	}
	return object.NewExecuteKw(model, "unlink", []any{idArgs(ids)}, nil)
}

// Search builds a search call returning matching record ids
func Search(
	model string,
	domain Domain,
	opts *SearchOptions,
) (*object.ExecuteKw, error) {
	return object.NewExecuteKw(
		model,
		"search",
		[]any{domain.terms()},
		searchKwargs(opts, nil),
	)
}

// SearchRead builds a combined search+read call. A nil fields slice reads all
// fields
func SearchRead(
	model string,
	domain Domain,
	fields []string,
	opts *SearchOptions,
) (*object.ExecuteKw, error) {
	return object.NewExecuteKw(
		model,
		"search_read",
		[]any{domain.terms()},
		searchKwargs(opts, fields),
	)
}

// SearchCount builds a call counting the records matching domain
func SearchCount(model string, domain Domain) (*object.ExecuteKw, error) {
	return object.NewExecuteKw(
		model,
		"search_count",
		[]any{domain.terms()},
		nil,
	)
}

func searchKwargs(opts *SearchOptions, fields []string) map[string]any {
	kwargs := map[string]any{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}
	if opts == nil {
		return kwargs
	}
	if opts.Offset > 0 {
		kwargs["offset"] = opts.Offset
	}
	if opts.Limit > 0 {
		kwargs["limit"] = opts.Limit
	}
	if opts.Order != "" {
		kwargs["order"] = opts.Order
	}
	return kwargs
}

// Copy builds a copy (duplicate) call for a single record. A nil defaults
// mapping copies the record as-is
func Copy(
	model string,
	id int64,
	defaults map[string]any,
) (*object.ExecuteKw, error) {
	kwargs := map[string]any{}
	if len(defaults) > 0 {
		kwargs["default"] = defaults
	}
	return object.NewExecuteKw(model, "copy", []any{id}, kwargs)
}

// Exists builds a call filtering ids down to those that exist
func Exists(model string, ids []int64) (*object.ExecuteKw, error) {
	if err := checkIDs(ids); err != nil {
		return nil, err
	}
	return object.NewExecuteKw(model, "exists", []any{idArgs(ids)}, nil)
}

// NameGet builds a call returning the display names of the given records
func NameGet(model string, ids []int64) (*object.ExecuteKw, error) {
	if err := checkIDs(ids); err != nil {
		return nil, err
	}
	return object.NewExecuteKw(model, "name_get", []any{idArgs(ids)}, nil)
}

// NameCreate builds a call creating a record from a display name only
func NameCreate(model string, name string) (*object.ExecuteKw, error) {
	if name == "" {
		return nil, &service.ValidationError{
			Field:  "name",
			Reason: "must not be empty",
		}
	}
	return object.NewExecuteKw(model, "name_create", []any{name}, nil)
}

// NameSearch builds a call searching records by display name
func NameSearch(
	model string,
	name string,
	opts *NameSearchOptions,
) (*object.ExecuteKw, error) {
	kwargs := map[string]any{}
	if opts != nil {
		if len(opts.Domain) > 0 {
			kwargs["args"] = opts.Domain.terms()
		}
		if opts.Operator != "" {
			kwargs["operator"] = opts.Operator
		}
		if opts.Limit > 0 {
			kwargs["limit"] = opts.Limit
		}
	}
	return object.NewExecuteKw(model, "name_search", []any{name}, kwargs)
}

// ReadGroup builds an aggregation call grouping matching records
func ReadGroup(
	model string,
	domain Domain,
	fields []string,
	groupBy []string,
	opts *ReadGroupOptions,
) (*object.ExecuteKw, error) {
	if len(groupBy) == 0 {
		return nil, &service.ValidationError{
			Field:  "groupby",
			Reason: "must contain at least one field",
		}
	}
	kwargs := map[string]any{}
	if opts != nil {
		if opts.Offset > 0 {
			kwargs["offset"] = opts.Offset
		}
		if opts.Limit > 0 {
			kwargs["limit"] = opts.Limit
		}
		if opts.OrderBy != "" {
			kwargs["orderby"] = opts.OrderBy
		}
		if opts.Lazy {
			kwargs["lazy"] = true
		}
	}
	return object.NewExecuteKw(
		model,
		"read_group",
		[]any{domain.terms(), fields, groupBy},
		kwargs,
	)
}

// GetExternalID builds a call resolving record ids to their XML ids
func GetExternalID(model string, ids []int64) (*object.ExecuteKw, error) {
	if err := checkIDs(ids); err != nil {
		return nil, err
	}
	return object.NewExecuteKw(
		model,
		"get_external_id",
		[]any{idArgs(ids)},
		nil,
	)
}

// Access operations accepted by CheckAccessRights
const (
	AccessRead   = "read"
	AccessWrite  = "write"
	AccessCreate = "create"
	AccessUnlink = "unlink"
)

// CheckAccessRights builds a call checking whether the session user may
// perform operation on model. With raiseException false the result is a
// plain boolean instead of a server error
func CheckAccessRights(
	model string,
	operation string,
	raiseException bool,
) (*object.ExecuteKw, error) {
	switch operation {
	case AccessRead, AccessWrite, AccessCreate, AccessUnlink:
	default:
		return nil, &service.ValidationError{
			Field:  "operation",
			Reason: fmt.Sprintf("unknown access operation %q", operation),
		}
	}
	kwargs := map[string]any{}
	if !raiseException {
		kwargs["raise_exception"] = false
	}
	return object.NewExecuteKw(
		model,
		"check_access_rights",
		[]any{operation},
		kwargs,
	)
}
