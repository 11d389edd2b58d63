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

package object_test

import (
	"testing"

	"github.com/godoo-labs/godoo/service"
	"github.com/godoo-labs/godoo/service/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	call, err := object.NewExecute(
		"res.partner",
		"read",
		[]any{[]any{int64(1), int64(2)}},
	)
	require.NoError(t, err)
	assert.Equal(
		t,
		service.Descriptor{Service: "object", Method: "execute"},
		call.Describe(),
	)
	// Positional arguments are flattened after the model and method
	assert.Equal(
		t,
		[]any{"res.partner", "read", []any{int64(1), int64(2)}},
		call.Args(),
	)
	assert.True(t, call.AuthRequired())
}

func TestExecuteKw(t *testing.T) {
	call, err := object.NewExecuteKw(
		"res.partner",
		"search_read",
		[]any{},
		map[string]any{"limit": 5},
	)
	require.NoError(t, err)
	assert.Equal(
		t,
		service.Descriptor{Service: "object", Method: "execute_kw"},
		call.Describe(),
	)
	assert.Equal(
		t,
		[]any{
			"res.partner",
			"search_read",
			[]any{},
			map[string]any{"limit": 5},
		},
		call.Args(),
	)
}

func TestExecuteKwNilKwargs(t *testing.T) {
	call, err := object.NewExecuteKw("res.partner", "unlink", []any{}, nil)
	require.NoError(t, err)
	// A nil kwargs must serialize as {} rather than null
	assert.Equal(t, map[string]any{}, call.Args()[3])
}

func TestValidation(t *testing.T) {
	testDefs := []struct {
		name   string
		model  string
		method string
		args   []any
	}{
		{name: "empty model", model: "", method: "read", args: []any{}},
		{
			name:   "uppercase model",
			model:  "Res.Partner",
			method: "read",
			args:   []any{},
		},
		{
			name:   "spaced model",
			model:  "res partner",
			method: "read",
			args:   []any{},
		},
		{name: "empty method", model: "res.partner", method: "", args: []any{}},
		{name: "nil args", model: "res.partner", method: "read", args: nil},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			var validationErr *service.ValidationError
			_, err := object.NewExecuteKw(
				testDef.model,
				testDef.method,
				testDef.args,
				nil,
			)
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestApplyContext(t *testing.T) {
	call, err := object.NewExecuteKw("res.partner", "search", []any{}, nil)
	require.NoError(t, err)
	call.ApplyContext(nil)
	assert.NotContains(t, call.Args()[3], "context")

	call.ApplyContext(map[string]any{"lang": "en_US"})
	assert.Equal(
		t,
		map[string]any{"context": map[string]any{"lang": "en_US"}},
		call.Args()[3],
	)
}

func TestApplyContextCallerWins(t *testing.T) {
	call, err := object.NewExecuteKw(
		"res.partner",
		"search",
		[]any{},
		map[string]any{"context": map[string]any{"lang": "fr_FR"}},
	)
	require.NoError(t, err)
	call.ApplyContext(map[string]any{"lang": "en_US"})
	assert.Equal(
		t,
		map[string]any{"context": map[string]any{"lang": "fr_FR"}},
		call.Args()[3],
	)
}
