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

	"github.com/godoo-labs/godoo/service/db"
)

// The database management wrappers require the server master password, not a
// database login, so none of them touch the client's session state.

func decodeBool(result json.RawMessage, what string) (bool, error) {
	var value bool
	if err := json.Unmarshal(result, &value); err != nil {
		return false, fmt.Errorf("unexpected %s result: %w", what, err)
	}
	return value, nil
}

// DatabaseList returns the names of the databases hosted by the server
func (c *Client) DatabaseList(ctx context.Context) ([]string, error) {
	result, err := c.Call(ctx, db.NewList())
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(result, &names); err != nil {
		return nil, fmt.Errorf("unexpected database list result: %w", err)
	}
	return names, nil
}

// DatabaseExist reports whether the named database exists
func (c *Client) DatabaseExist(
	ctx context.Context,
	name string,
) (bool, error) {
	call, err := db.NewExist(name)
	if err != nil {
		return false, err
	}
	result, err := c.Call(ctx, call)
	if err != nil {
		return false, err
	}
	return decodeBool(result, "database exist")
}

// DatabaseCreate creates a new database with an admin user
func (c *Client) DatabaseCreate(
	ctx context.Context,
	masterSecret string,
	name string,
	adminSecret string,
	opts db.CreateOptions,
) error {
	call, err := db.NewCreate(masterSecret, name, adminSecret, opts)
	if err != nil {
		return err
	}
	_, err = c.Call(ctx, call)
	return err
}

// DatabaseDuplicate copies an existing database under a new name
func (c *Client) DatabaseDuplicate(
	ctx context.Context,
	masterSecret string,
	original string,
	name string,
) error {
	call, err := db.NewDuplicate(masterSecret, original, name)
	if err != nil {
		return err
	}
	_, err = c.Call(ctx, call)
	return err
}

// DatabaseDrop deletes a database
func (c *Client) DatabaseDrop(
	ctx context.Context,
	masterSecret string,
	name string,
) error {
	call, err := db.NewDrop(masterSecret, name)
	if err != nil {
		return err
	}
	_, err = c.Call(ctx, call)
	return err
}

// DatabaseDump exports a database and returns the base64-encoded archive
func (c *Client) DatabaseDump(
	ctx context.Context,
	masterSecret string,
	name string,
	format db.DumpFormat,
) (string, error) {
	call, err := db.NewDump(masterSecret, name, format)
	if err != nil {
		return "", err
	}
	result, err := c.Call(ctx, call)
	if err != nil {
		return "", err
	}
	var data string
	if err := json.Unmarshal(result, &data); err != nil {
		return "", fmt.Errorf("unexpected database dump result: %w", err)
	}
	return data, nil
}

// DatabaseRestore loads a base64-encoded archive as a new database. With
// copy true the database gets a new UUID, which is what you want unless
// you're moving a database between servers
func (c *Client) DatabaseRestore(
	ctx context.Context,
	masterSecret string,
	name string,
	base64Data string,
	copy bool,
) error {
	call, err := db.NewRestore(masterSecret, name, base64Data, copy)
	if err != nil {
		return err
	}
	_, err = c.Call(ctx, call)
	return err
}

// DatabaseRename renames a database
func (c *Client) DatabaseRename(
	ctx context.Context,
	masterSecret string,
	oldName string,
	newName string,
) error {
	call, err := db.NewRename(masterSecret, oldName, newName)
	if err != nil {
		return err
	}
	_, err = c.Call(ctx, call)
	return err
}

// DatabaseChangeAdminPassword changes the server master password
func (c *Client) DatabaseChangeAdminPassword(
	ctx context.Context,
	masterSecret string,
	newSecret string,
) error {
	call, err := db.NewChangeAdminPassword(masterSecret, newSecret)
	if err != nil {
		return err
	}
	_, err = c.Call(ctx, call)
	return err
}

// DatabaseListLang returns the languages supported by the server
func (c *Client) DatabaseListLang(
	ctx context.Context,
) ([]db.CodeName, error) {
	result, err := c.Call(ctx, db.NewListLang())
	if err != nil {
		return nil, err
	}
	var langs []db.CodeName
	if err := json.Unmarshal(result, &langs); err != nil {
		return nil, fmt.Errorf("unexpected language list result: %w", err)
	}
	return langs, nil
}

// DatabaseListCountries returns the countries known to the server
func (c *Client) DatabaseListCountries(
	ctx context.Context,
	masterSecret string,
) ([]db.CodeName, error) {
	result, err := c.Call(ctx, db.NewListCountries(masterSecret))
	if err != nil {
		return nil, err
	}
	var countries []db.CodeName
	if err := json.Unmarshal(result, &countries); err != nil {
		return nil, fmt.Errorf("unexpected country list result: %w", err)
	}
	return countries, nil
}

// DatabaseServerVersion returns the server version string as reported by the
// db service
func (c *Client) DatabaseServerVersion(ctx context.Context) (string, error) {
	result, err := c.Call(ctx, db.NewServerVersion())
	if err != nil {
		return "", err
	}
	var version string
	if err := json.Unmarshal(result, &version); err != nil {
		return "", fmt.Errorf("unexpected server version result: %w", err)
	}
	return version, nil
}
