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

package orm

import (
	"encoding/json"
	"fmt"
)

// Condition is a single domain filter term. On the wire it is the ordered
// triple [field, operator, value]
type Condition struct {
	Field    string
	Operator string
	Value    any
}

// Domain is an ordered sequence of filter conditions, combined with an
// implicit AND by the server
type Domain []Condition

// Eq is shorthand for an equality condition
func Eq(field string, value any) Condition {
	return Condition{Field: field, Operator: "=", Value: value}
}

// In is shorthand for a set membership condition
func In(field string, values ...any) Condition {
	return Condition{Field: field, Operator: "in", Value: values}
}

// Like is shorthand for a case-insensitive pattern condition
func Like(field string, pattern string) Condition {
	return Condition{Field: field, Operator: "ilike", Value: pattern}
}

// The operators currently documented for Odoo domains. Operators outside
// this set are passed through unchanged so that newer server-side operators
// keep working with older client versions
var knownOperators = map[string]struct{}{
	"=":         {},
	"!=":        {},
	">":         {},
	">=":        {},
	"<":         {},
	"<=":        {},
	"=?":        {},
	"=like":     {},
	"like":      {},
	"not like":  {},
	"ilike":     {},
	"not ilike": {},
	"=ilike":    {},
	"in":        {},
	"not in":    {},
	"child_of":  {},
	"parent_of": {},
}

// KnownOperator reports whether op is a documented domain operator
func KnownOperator(op string) bool {
	_, ok := knownOperators[op]
	return ok
}

func (c Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Field, c.Operator, c.Value})
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	var triple []any
	if err := json.Unmarshal(data, &triple); err != nil {
		return err
	}
	if len(triple) != 3 {
		return fmt.Errorf(
			"expected [field, operator, value] triple, got %d elements",
			len(triple),
		)
	}
	field, ok := triple[0].(string)
	if !ok {
		return fmt.Errorf("condition field must be a string")
	}
	op, ok := triple[1].(string)
	if !ok {
		return fmt.Errorf("condition operator must be a string")
	}
	c.Field = field
	c.Operator = op
	c.Value = triple[2]
	return nil
}

// terms converts the domain into the generic argument representation used in
// positional args. A nil domain becomes an empty sequence, never JSON null
func (d Domain) terms() []any {
	out := make([]any, len(d))
	for i, c := range d {
		out[i] = c
	}
	return out
}
