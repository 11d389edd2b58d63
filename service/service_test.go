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

package service_test

import (
	"testing"

	"github.com/godoo-labs/godoo/service"

	"github.com/stretchr/testify/assert"
)

func TestValidModelName(t *testing.T) {
	testDefs := []struct {
		name     string
		expected bool
	}{
		{name: "res.partner", expected: true},
		{name: "res.partner.category", expected: true},
		{name: "account_move", expected: true},
		{name: "_private", expected: true},
		{name: "x_custom.model2", expected: true},
		{name: "", expected: false},
		{name: "Res.Partner", expected: false},
		{name: "res partner", expected: false},
		{name: ".partner", expected: false},
		{name: "res.", expected: false},
		{name: "9res", expected: false},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			assert.Equal(
				t,
				testDef.expected,
				service.ValidModelName(testDef.name),
			)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &service.ValidationError{
		Field:  "model",
		Reason: "must not be empty",
	}
	assert.Equal(t, "invalid model: must not be empty", err.Error())
}
