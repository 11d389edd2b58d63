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

// Package service defines the method catalog plumbing shared by the Odoo
// service packages (common, db, object, orm).
//
// Each remote endpoint is represented by a request type with a validating
// constructor. The generic Call interface is all the dispatch layer needs:
// it never special-cases individual endpoints.
package service

import (
	"fmt"
	"regexp"
)

// Descriptor identifies a remote endpoint on the /jsonrpc dispatcher
type Descriptor struct {
	// The service name, e.g. "common", "db" or "object"
	Service string

	// The method name within the service, e.g. "login" or "execute_kw"
	Method string
}

// Call is a single invocation of a JSON-RPC service method. Implementations
// are immutable once constructed; validation happens in the constructors
type Call interface {
	// Describe returns the service/method pair for the endpoint
	Describe() Descriptor

	// Args returns the positional arguments, excluding any authentication
	// prefix (database, uid, credential) added by the dispatch layer
	Args() []any

	// AuthRequired reports whether the session authentication prefix must
	// be prepended to the positional arguments
	AuthRequired() bool
}

// WebCall is a single invocation of a web-style endpoint (e.g.
// /web/session/authenticate). These carry their params as a flat object and
// rely on the transport's cookie state for session continuity
type WebCall interface {
	// Path returns the endpoint path relative to the server base URL
	Path() string

	// WebParams returns the request params object
	WebParams() any
}

// ValidationError represents malformed or missing caller-supplied arguments.
// It is always raised before any network activity
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Model names are lowercase dotted identifiers, e.g. "res.partner"
var modelNameRegexp = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z0-9_]+)*$`)

// ValidModelName reports whether name is a well-formed Odoo model name
func ValidModelName(name string) bool {
	return modelNameRegexp.MatchString(name)
}

// CheckModelName returns a ValidationError unless name is a well-formed
// model name
func CheckModelName(name string) error {
	if name == "" {
		return &ValidationError{Field: "model", Reason: "must not be empty"}
	}
	if !ValidModelName(name) {
		return &ValidationError{
			Field:  "model",
			Reason: fmt.Sprintf("%q is not a valid model name", name),
		}
	}
	return nil
}

// CheckDatabaseName returns a ValidationError unless name is non-empty
func CheckDatabaseName(name string) error {
	if name == "" {
		return &ValidationError{Field: "database", Reason: "must not be empty"}
	}
	return nil
}
