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

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/godoo-labs/godoo"
)

type globalFlags struct {
	flagset  *flag.FlagSet
	url      string
	database string
	login    string
	password string
	debug    bool
}

func newGlobalFlags() *globalFlags {
	f := &globalFlags{
		flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}
	f.flagset.StringVar(
		&f.url,
		"url",
		"http://localhost:8069",
		"base URL of the Odoo server",
	)
	f.flagset.StringVar(
		&f.database,
		"database",
		"",
		"database to authenticate against",
	)
	f.flagset.StringVar(
		&f.login,
		"login",
		"",
		"login for authenticated commands",
	)
	f.flagset.StringVar(
		&f.password,
		"password",
		"",
		"password for authenticated commands",
	)
	f.flagset.BoolVar(&f.debug, "debug", false, "enable debug logging")
	return f
}

func (f *globalFlags) client() *godoo.Client {
	var options []godoo.ClientOptionFunc
	if f.debug {
		options = append(
			options,
			godoo.WithLogger(
				slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})),
			),
		)
	}
	client, err := godoo.NewClient(f.url, options...)
	if err != nil {
		fmt.Printf("failed to create client: %s\n", err)
		os.Exit(1)
	}
	return client
}

func main() {
	f := newGlobalFlags()
	err := f.flagset.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("failed to parse command args: %s\n", err)
		os.Exit(1)
	}
	if f.flagset.NArg() < 1 {
		fmt.Printf("ERROR: you must specify a subcommand (version, databases, uid)\n")
		os.Exit(1)
	}
	switch f.flagset.Arg(0) {
	case "version":
		versionCommand(f)
	case "databases":
		databasesCommand(f)
	case "uid":
		uidCommand(f)
	default:
		fmt.Printf("ERROR: unknown subcommand: %s\n", f.flagset.Arg(0))
		os.Exit(1)
	}
}

func versionCommand(f *globalFlags) {
	client := f.client()
	version, err := client.Version(context.Background())
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("server version: %s\n", version.ServerVersion)
	fmt.Printf("server serie:   %s\n", version.ServerSerie)
	fmt.Printf("protocol:       %d\n", version.ProtocolVersion)
}

func databasesCommand(f *globalFlags) {
	client := f.client()
	names, err := client.DatabaseList(context.Background())
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func uidCommand(f *globalFlags) {
	if f.database == "" || f.login == "" {
		fmt.Printf("ERROR: -database and -login are required\n")
		os.Exit(1)
	}
	client := f.client()
	uid, ok, err := client.LoginUID(
		context.Background(),
		f.database,
		f.login,
		f.password,
	)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Printf("ERROR: credentials rejected\n")
		os.Exit(1)
	}
	fmt.Printf("uid: %d\n", uid)
}
