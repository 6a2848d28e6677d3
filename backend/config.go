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

package backend

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/c2FmZQ/storage"
	"github.com/c2FmZQ/storage/crypto"
	"github.com/caarlos0/env/v11"
)

// EnvConfig holds the settings read from the environment. They are the
// defaults of the command line flags.
type EnvConfig struct {
	Addr        string `env:"PR_ADDR" envDefault:":8080"`
	Catalog     string `env:"PR_CATALOG" envDefault:"builtin"`
	CatalogDSN  string `env:"PR_CATALOG_DSN"`
	RedisPrefix string `env:"PR_REDIS_PREFIX" envDefault:"radar"`
	DataDir     string `env:"PR_DATA_DIR" envDefault:"data"`
	Debug       bool   `env:"PR_DEBUG"`
	ChartWidth  int    `env:"PR_CHART_WIDTH" envDefault:"860"`
	ChartHeight int    `env:"PR_CHART_HEIGHT" envDefault:"460"`

	// MasterKey is the passphrase of the storage master key.
	MasterKey string `env:"PR_MASTER_KEY"`
}

// ParseEnv loads the configuration from environment variables.
func ParseEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// CatalogConfig selects where the catalog is read from.
type CatalogConfig struct {
	Kind        string
	DSN         string
	RedisPrefix string
	// Seed writes the built-in players into an empty source first.
	Seed bool

	DataDir string
	Storage *storage.Storage
}

// OpenCatalogSource opens the configured source. The closer is nil when
// the source holds no connection.
func OpenCatalogSource(ctx context.Context, cfg CatalogConfig) (CatalogSource, io.Closer, error) {
	switch cfg.Kind {
	case "", CatalogBuiltin:
		return NewBuiltinSource(), nil, nil
	case CatalogFile:
		if cfg.Storage == nil {
			return nil, nil, fmt.Errorf("catalog %q requires storage", cfg.Kind)
		}
		return NewCatalogStore(cfg.DataDir, cfg.Storage), nil, nil
	case CatalogSQLite, CatalogPostgres:
		db, err := OpenSQLCatalog(ctx, cfg.Kind, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case CatalogRedis:
		rc, err := OpenRedisCatalog(ctx, cfg.DSN, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return rc, rc, nil
	}
	return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Kind)
}

// OpenCatalog reads the catalog once from the configured source and
// releases the source.
func OpenCatalog(ctx context.Context, cfg CatalogConfig) (*Catalog, error) {
	src, closer, err := OpenCatalogSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer.Close()
	}

	if seeder, ok := src.(CatalogSeeder); ok && cfg.Seed {
		if err := SeedCatalog(ctx, seeder); err != nil {
			return nil, err
		}
	}
	return LoadCatalog(ctx, src)
}

// OpenStorage opens the data directory, encrypted when a master key
// passphrase is set. The master key is created on first use.
func OpenStorage(dataDir, passphrase string) (*storage.Storage, error) {
	keyFile := filepath.Join(dataDir, "master.key")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	var masterKey crypto.MasterKey
	if passphrase != "" {
		var err error
		masterKey, err = crypto.ReadMasterKey([]byte(passphrase), keyFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read master key: %w", err)
			}
			log.Println("Initializing new master encryption key...")
			masterKey, err = crypto.CreateMasterKey()
			if err != nil {
				return nil, fmt.Errorf("create master key: %w", err)
			}
			if err := masterKey.Save([]byte(passphrase), keyFile); err != nil {
				return nil, fmt.Errorf("save master key: %w", err)
			}
		} else {
			log.Println("Loaded master encryption key.")
		}
	} else {
		if _, err := os.Stat(keyFile); err == nil {
			return nil, fmt.Errorf("%s exists but PR_MASTER_KEY is not set. Refusing to read an encrypted catalog without its key", keyFile)
		}
		log.Println("Warning: No PR_MASTER_KEY provided. The catalog file is stored UNENCRYPTED.")
	}

	store := storage.New(dataDir, masterKey)
	store.EnableCompression(true)
	return store, nil
}
