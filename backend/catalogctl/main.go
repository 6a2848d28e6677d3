// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command catalogctl prints or replaces the player catalog of a source.
//
//	catalogctl [flags] dump
//	catalogctl [flags] import players.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/c2FmZQ/storage"
	"github.com/ttbt-io/playerradar/backend"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

// run executes one command. Sources are closed before it returns.
func run(args []string, stdout io.Writer) error {
	envCfg, err := backend.ParseEnv()
	if err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	fs := flag.NewFlagSet("catalogctl", flag.ContinueOnError)
	var (
		catalogKind = fs.String("catalog", envCfg.Catalog, "Catalog source: builtin, file, sqlite, postgres or redis")
		catalogDSN  = fs.String("catalog-dsn", envCfg.CatalogDSN, "Database path, postgres DSN or redis URL of the catalog source")
		redisPrefix = fs.String("redis-prefix", envCfg.RedisPrefix, "Key prefix of the redis catalog")
		dataDir     = fs.String("data-dir", envCfg.DataDir, "Directory for the catalog file")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("usage: catalogctl [flags] dump | import <players.json>")
	}

	var store *storage.Storage
	if *catalogKind == backend.CatalogFile {
		if store, err = backend.OpenStorage(*dataDir, envCfg.MasterKey); err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	src, closer, err := backend.OpenCatalogSource(ctx, backend.CatalogConfig{
		Kind:        *catalogKind,
		DSN:         *catalogDSN,
		RedisPrefix: *redisPrefix,
		DataDir:     *dataDir,
		Storage:     store,
	})
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	switch cmd := fs.Arg(0); cmd {
	case "dump":
		return dump(ctx, src, stdout)
	case "import":
		if fs.NArg() != 2 {
			return errors.New("usage: catalogctl [flags] import <players.json>")
		}
		return importFile(ctx, src, fs.Arg(1))
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func dump(ctx context.Context, src backend.CatalogSource, w io.Writer) error {
	players, err := src.LoadPlayers(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(players)
}

func importFile(ctx context.Context, src backend.CatalogSource, name string) error {
	dst, ok := src.(backend.CatalogWriter)
	if !ok {
		return fmt.Errorf("catalog source %T is read-only", src)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	var players []backend.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	_, err = backend.ImportCatalog(ctx, dst, players)
	return err
}
