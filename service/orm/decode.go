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
	"strconv"
)

// Record is a single model record. Field sets vary by model and by the
// fields requested, so records stay as flexible mappings
type Record map[string]any

// ID returns the record's "id" field, when present
func (r Record) ID() (int64, bool) {
	v, ok := r["id"]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// NameRef is a [id, display name] pair as returned by name_get, name_create
// and name_search
type NameRef struct {
	ID   int64
	Name string
}

func (n *NameRef) UnmarshalJSON(data []byte) error {
	var pair []any
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("expected [id, name] pair, got %d elements", len(pair))
	}
	id, ok := pair[0].(float64)
	if !ok {
		return fmt.Errorf("name ref id must be a number")
	}
	name, ok := pair[1].(string)
	if !ok {
		return fmt.Errorf("name ref name must be a string")
	}
	n.ID = int64(id)
	n.Name = name
	return nil
}

func (n NameRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{n.ID, n.Name})
}

// DecodeRecords parses a sequence of records (read, search_read, read_group)
func DecodeRecords(result json.RawMessage) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(result, &records); err != nil {
		return nil, fmt.Errorf("unexpected record list: %w", err)
	}
	return records, nil
}

// DecodeIDs parses a sequence of record ids (search, exists, multi create)
func DecodeIDs(result json.RawMessage) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal(result, &ids); err != nil {
		return nil, fmt.Errorf("unexpected id list: %w", err)
	}
	return ids, nil
}

// DecodeID parses a single record id (create, copy)
func DecodeID(result json.RawMessage) (int64, error) {
	var id int64
	if err := json.Unmarshal(result, &id); err != nil {
		return 0, fmt.Errorf("unexpected record id: %w", err)
	}
	return id, nil
}

// DecodeBool parses a boolean result (write, unlink, check_access_rights)
func DecodeBool(result json.RawMessage) (bool, error) {
	var ok bool
	if err := json.Unmarshal(result, &ok); err != nil {
		return false, fmt.Errorf("unexpected boolean result: %w", err)
	}
	return ok, nil
}

// DecodeCount parses a counting result (search_count)
func DecodeCount(result json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(result, &n); err != nil {
		return 0, fmt.Errorf("unexpected count result: %w", err)
	}
	return n, nil
}

// DecodeNameRefs parses a sequence of [id, name] pairs (name_get, name_search)
func DecodeNameRefs(result json.RawMessage) ([]NameRef, error) {
	var refs []NameRef
	if err := json.Unmarshal(result, &refs); err != nil {
		return nil, fmt.Errorf("unexpected name list: %w", err)
	}
	return refs, nil
}

// DecodeNameRef parses a single [id, name] pair (name_create)
func DecodeNameRef(result json.RawMessage) (NameRef, error) {
	var ref NameRef
	if err := json.Unmarshal(result, &ref); err != nil {
		return NameRef{}, fmt.Errorf("unexpected name result: %w", err)
	}
	return ref, nil
}

// DecodeExternalIDs parses the id-to-XML-id mapping returned by
// get_external_id. The server keys the mapping with stringified record ids
func DecodeExternalIDs(result json.RawMessage) (map[int64]string, error) {
	var raw map[string]string
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("unexpected external id mapping: %w", err)
	}
	out := make(map[int64]string, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected external id key %q", k)
		}
		out[id] = v
	}
	return out, nil
}
