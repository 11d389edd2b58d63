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

// Package object implements the Odoo "object" service: generic model method
// dispatch via execute and execute_kw.
//
// These are the escape hatch of the method catalog: they accept an arbitrary
// model/method pair and untyped arguments, and return an untyped result. The
// orm package builds its typed convenience calls on top of ExecuteKw.
package object

import (
	"github.com/godoo-labs/godoo/service"
)

// Execute calls a model method with positional arguments only.
//
// On the wire the method arguments are flattened as siblings of the
// authentication prefix and model/method names:
//
//	[db, uid, credential, model, method, args...]
//
// If the remote method takes keyword arguments, use ExecuteKw instead
type Execute struct {
	model      string
	methodName string
	args       []any
}

// NewExecute returns an Execute call. The args sequence may be empty but must
// be present (non-nil)
func NewExecute(model string, method string, args []any) (*Execute, error) {
	if err := service.CheckModelName(model); err != nil {
		return nil, err
	}
	if method == "" {
		return nil, &service.ValidationError{
			Field:  "method",
			Reason: "must not be empty",
		}
	}
	if args == nil {
		return nil, &service.ValidationError{
			Field:  "args",
			Reason: "must be present (may be empty)",
		}
	}
	return &Execute{model: model, methodName: method, args: args}, nil
}

func (r *Execute) Describe() service.Descriptor {
	return service.Descriptor{Service: "object", Method: "execute"}
}

func (r *Execute) Args() []any {
	args := []any{r.model, r.methodName}
	return append(args, r.args...)
}

func (r *Execute) AuthRequired() bool {
	return true
}

// Model returns the target model name
func (r *Execute) Model() string {
	return r.model
}

// MethodName returns the remote method being called
func (r *Execute) MethodName() string {
	return r.methodName
}

// ExecuteKw calls a model method with positional and keyword arguments.
//
// Wire shape:
//
//	[db, uid, credential, model, method, [args...], {kwargs...}]
type ExecuteKw struct {
	model      string
	methodName string
	args       []any
	kwargs     map[string]any
}

// NewExecuteKw returns an ExecuteKw call. The args sequence may be empty but
// must be present (non-nil); a nil kwargs is sent as an empty mapping
func NewExecuteKw(
	model string,
	method string,
	args []any,
	kwargs map[string]any,
) (*ExecuteKw, error) {
	if err := service.CheckModelName(model); err != nil {
		return nil, err
	}
	if method == "" {
		return nil, &service.ValidationError{
			Field:  "method",
			Reason: "must not be empty",
		}
	}
	if args == nil {
		return nil, &service.ValidationError{
			Field:  "args",
			Reason: "must be present (may be empty)",
		}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return &ExecuteKw{
		model:      model,
		methodName: method,
		args:       args,
		kwargs:     kwargs,
	}, nil
}

func (r *ExecuteKw) Describe() service.Descriptor {
	return service.Descriptor{Service: "object", Method: "execute_kw"}
}

func (r *ExecuteKw) Args() []any {
	return []any{r.model, r.methodName, r.args, r.kwargs}
}

func (r *ExecuteKw) AuthRequired() bool {
	return true
}

// Model returns the target model name
func (r *ExecuteKw) Model() string {
	return r.model
}

// MethodName returns the remote method being called
func (r *ExecuteKw) MethodName() string {
	return r.methodName
}

// ApplyContext merges a session context mapping into the call's kwargs. An
// explicit "context" kwarg set by the caller always wins
func (r *ExecuteKw) ApplyContext(ctx map[string]any) {
	if len(ctx) == 0 {
		return
	}
	if _, ok := r.kwargs["context"]; ok {
		return
	}
	r.kwargs["context"] = ctx
}
