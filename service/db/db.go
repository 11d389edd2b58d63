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

// Package db implements the Odoo "db" service: database lifecycle management.
//
// All methods except Exist, List, ListLang and ServerVersion authenticate
// with the server master password rather than a user session.
package db

import (
	"encoding/json"
	"fmt"

	"github.com/godoo-labs/godoo/service"
)

// DumpFormat selects the archive format for a database dump
type DumpFormat string

const (
	DumpFormatZip  DumpFormat = "zip"
	DumpFormatDump DumpFormat = "dump"
)

// Create builds a new database, optionally populated with demo data
type Create struct {
	masterSecret string
	name         string
	demo         bool
	lang         string
	adminSecret  string
	adminLogin   string
	countryCode  string
	phone        string
}

// CreateOptions carries the optional arguments to NewCreate
type CreateOptions struct {
	// Populate the new database with demo data
	Demo bool

	// Language code, e.g. "en_US". Defaults to "en_US"
	Lang string

	// Login for the admin user. Defaults to "admin"
	AdminLogin string

	// Optional ISO country code for the company
	CountryCode string

	// Optional company phone number
	Phone string
}

// NewCreate returns a Create call. The masterSecret is the server master
// password, adminSecret becomes the password of the new admin user
func NewCreate(
	masterSecret string,
	name string,
	adminSecret string,
	opts CreateOptions,
) (*Create, error) {
	if err := service.CheckDatabaseName(name); err != nil {
		return nil, err
	}
	if opts.Lang == "" {
		opts.Lang = "en_US"
	}
	if opts.AdminLogin == "" {
		opts.AdminLogin = "admin"
	}
	return &Create{
		masterSecret: masterSecret,
		name:         name,
		demo:         opts.Demo,
		lang:         opts.Lang,
		adminSecret:  adminSecret,
		adminLogin:   opts.AdminLogin,
		countryCode:  opts.CountryCode,
		phone:        opts.Phone,
	}, nil
}

func (r *Create) Describe() service.Descriptor {
	return service.Descriptor{Service: "db", Method: "create_database"}
}

func (r *Create) Args() []any {
	args := []any{
		r.masterSecret,
		r.name,
		r.demo,
		r.lang,
		r.adminSecret,
		r.adminLogin,
	}
	var countryCode, phone any
	if r.countryCode != "" {
		countryCode = r.countryCode
	}
	if r.phone != "" {
		phone = r.phone
	}
	return append(args, countryCode, phone)
}

func (r *Create) AuthRequired() bool {
	return false
}

// Duplicate copies an existing database under a new name
type Duplicate struct {
	masterSecret string
	original     string
	name         string
}

func NewDuplicate(
	masterSecret string,
	original string,
	name string,
) (*Duplicate, error) {
	if err := service.CheckDatabaseName(original); err != nil {
		return nil, err
	}
	if err := service.CheckDatabaseName(name); err != nil {
		return nil, err
	}
	return &Duplicate{
		masterSecret: masterSecret,
		original:     original,
		name:         name,
	}, nil
}

func (r *Duplicate) Describe() service.Descriptor {
	return service.Descriptor{Service: "db", Method: "duplicate_database"}
}

func (r *Duplicate) Args() []any {
	return []any{r.masterSecret, r.original, r.name}
}

func (r *Duplicate) AuthRequired() bool {
	return false
}

// Drop deletes a database
type Drop struct {
	masterSecret string
	name         string
}

func NewDrop(masterSecret string, name string) (*Drop, error) {
	if err := service.CheckDatabaseName(name); err != nil {
		return nil, err
	}
	return &Drop{masterSecret: masterSecret, name: name}, nil
}

func (r *Drop) Describe() service.Descriptor {
	return service.Descriptor{Service: "db", Method: "drop"}
}

func (r *Drop) Args() []any {
	return []any{r.masterSecret, r.name}
}

func (r *Drop) AuthRequired() bool {
	return false
}

// Dump exports a database as a base64-encoded archive
type Dump struct {
	masterSecret string
	name         string
	format       DumpFormat
}

func NewDump(
	masterSecret string,
	name string,
	format DumpFormat,
) (*Dump, error) {
	if err := service.CheckDatabaseName(name); err != nil {
		return nil, err
	}
	switch format {
	case DumpFormatZip, DumpFormatDump:
	default:
		return nil, &service.ValidationError{
			Field:  "format",
			Reason: fmt.Sprintf("unknown dump format %q", format),
		}
	}
	return &Dump{masterSecret: masterSecret, name: name, format: format}, nil
}

func (r *Dump) Describe() service.Descriptor {
	return service.Descriptor{Service: "db", Method: "dump"}
}

func (r *Dump) Args() []any {
	return []any{r.masterSecret, r.name, string(r.format)}
}

func (r *Dump) AuthRequired() bool {
	return false
}

// Restore loads a base64-encoded archive as a new database. When copy is
// true the database is restored as a copy (new UUID), which is what you want
// unless you're moving a database between servers
type Restore struct {
	masterSecret string
	name         string
	data         string
	copy         bool
}

func NewRestore(
	masterSecret string,
	name string,
	base64Data string,
	copy bool,
) (*Restore, error) {
	if err := service.CheckDatabaseName(name); err != nil {
		return nil, err
	}
	if base64Data == "" {
		return nil, &service.ValidationError{
			Field:  "data",
			Reason: "must not be empty",
		}
	}
	return &Restore{
		masterSecret: masterSecret,
		name:         name,
		data:         base64Data,
		copy:         copy,
	}, nil
}

func (r *Restore) Describe() service.Descriptor {
	return service.Descriptor{Service: "db", Method: "restore"}
}

func (r *Restore) Args() []any {
	return []any{r.masterSecret, r.name, r.data, r.copy}
}

func (r *Restore) AuthRequired() bool {
	return false
}

// Rename renames a database
type Rename struct {
	masterSecret string
	oldName      string
	newName      string
}

func NewRename(
	masterSecret string,
	oldName string,
	newName string,
) (*Rename, error) {
	if err := service.CheckDatabaseName(oldName); err != nil {
		return nil, err
	}
	if err := service.CheckDatabaseName(newName); err != nil {
		return nil, err
	}
	return &Rename{
		masterSecret: masterSecret,
		oldName:      oldName,
		newName:      newName,
	}, nil
}

func (r *Rename) Describe() service.Descriptor {
	return service.Descriptor{Service: "db", Method: "rename"}
}

func (r *Rename) Args() []any {
	return []any{r.masterSecret, r.oldName, r.newName}
}

func (r *Rename) AuthRequired() bool {
	return false
}

// ChangeAdminPassword changes the server master password
type ChangeAdminPassword struct {
	masterSecret string
	newSecret    string
}

func NewChangeAdminPassword(
	masterSecret string,
	newSecret string,
) (*ChangeAdminPassword, error) {
	if newSecret == "" {
		return nil, &service.ValidationError{
			Field:  "new password",
			Reason: "must not be empty",
		}
	}
	return &ChangeAdminPassword{
		masterSecret: masterSecret,
		newSecret:    newSecret,
	}, nil
}

func (r *ChangeAdminPassword) Describe() service.Descriptor {
	return service.Descriptor{Service: "db", Method: "change_admin_password"}
}

func (r *ChangeAdminPassword) Args() []any {
	return []any{r.masterSecret, r.newSecret}
}

func (r *ChangeAdminPassword) AuthRequired() bool {
	return false
}

// Exist checks whether a database exists
type Exist struct {
	name string
}

func NewExist(name string) (*Exist, error) {
	if err := service.CheckDatabaseName(name); err != nil {
		return nil, err
	}
	return &Exist{name: name}, nil
}

func (r *Exist) Describe() service.Descriptor {
	return service.Descriptor{Service: "db", Method: "db_exist"}
}

func (r *Exist) Args() []any {
	return []any{r.name}
}

func (r *Exist) AuthRequired() bool {
	return false
}

// List fetches the names of the databases visible to the server
type List struct{}

func NewList() *List {
	return &List{}
}

func (r *List) Describe() service.Descriptor {
	return service.Descriptor{Service: "db", Method: "list"}
}

func (r *List) Args() []any {
	return []any{}
}

func (r *List) AuthRequired() bool {
	return false
}

// ListLang fetches the languages supported by the server
type ListLang struct{}

func NewListLang() *ListLang {
	return &ListLang{}
}

func (r *ListLang) Describe() service.Descriptor {
	return service.Descriptor{Service: "db", Method: "list_lang"}
}

func (r *ListLang) Args() []any {
	return []any{}
}

func (r *ListLang) AuthRequired() bool {
	return false
}

// ListCountries fetches the countries known to the server
type ListCountries struct {
	masterSecret string
}

func NewListCountries(masterSecret string) *ListCountries {
	return &ListCountries{masterSecret: masterSecret}
}

func (r *ListCountries) Describe() service.Descriptor {
	return service.Descriptor{Service: "db", Method: "list_countries"}
}

func (r *ListCountries) Args() []any {
	return []any{r.masterSecret}
}

func (r *ListCountries) AuthRequired() bool {
	return false
}

// ServerVersion fetches the bare server version string, e.g. "16.0"
type ServerVersion struct{}

func NewServerVersion() *ServerVersion {
	return &ServerVersion{}
}

func (r *ServerVersion) Describe() service.Descriptor {
	return service.Descriptor{Service: "db", Method: "server_version"}
}

func (r *ServerVersion) Args() []any {
	return []any{}
}

func (r *ServerVersion) AuthRequired() bool {
	return false
}

// CodeName is a [code, name] pair as returned by ListLang and ListCountries
type CodeName struct {
	Code string
	Name string
}

func (c *CodeName) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("expected [code, name] pair, got %d elements", len(pair))
	}
	c.Code = pair[0]
	c.Name = pair[1]
	return nil
}

func (c CodeName) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{c.Code, c.Name})
}
