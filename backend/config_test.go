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
	"path/filepath"
	"testing"

	"github.com/c2FmZQ/storage"
)

func TestParseEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := ParseEnv()
		if err != nil {
			t.Fatalf("ParseEnv failed: %v", err)
		}
		if cfg.Addr != ":8080" || cfg.Catalog != CatalogBuiltin || cfg.RedisPrefix != "radar" {
			t.Errorf("Got %+v", cfg)
		}
		if cfg.ChartWidth != DefaultChartWidth || cfg.ChartHeight != DefaultChartHeight {
			t.Errorf("Chart size = %dx%d", cfg.ChartWidth, cfg.ChartHeight)
		}
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("PR_ADDR", ":9090")
		t.Setenv("PR_CATALOG", CatalogSQLite)
		t.Setenv("PR_CATALOG_DSN", "/tmp/players.db")
		t.Setenv("PR_DEBUG", "true")
		t.Setenv("PR_CHART_WIDTH", "640")
		cfg, err := ParseEnv()
		if err != nil {
			t.Fatalf("ParseEnv failed: %v", err)
		}
		if cfg.Addr != ":9090" || cfg.Catalog != CatalogSQLite || cfg.CatalogDSN != "/tmp/players.db" || !cfg.Debug || cfg.ChartWidth != 640 {
			t.Errorf("Got %+v", cfg)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		t.Setenv("PR_CHART_HEIGHT", "tall")
		if _, err := ParseEnv(); err == nil {
			t.Error("ParseEnv accepted a non-numeric height")
		}
	})
}

func TestOpenCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("Builtin", func(t *testing.T) {
		c, err := OpenCatalog(ctx, CatalogConfig{})
		if err != nil {
			t.Fatalf("OpenCatalog failed: %v", err)
		}
		if c.Len() != len(DefaultPlayers()) {
			t.Errorf("Len() = %d", c.Len())
		}
	})

	t.Run("File", func(t *testing.T) {
		dir := t.TempDir()
		cfg := CatalogConfig{Kind: CatalogFile, DataDir: dir, Storage: storage.New(dir, nil)}
		if _, err := OpenCatalog(ctx, cfg); err == nil {
			t.Fatal("OpenCatalog succeeded on an empty store")
		}
		cfg.Seed = true
		c, err := OpenCatalog(ctx, cfg)
		if err != nil {
			t.Fatalf("OpenCatalog with seed failed: %v", err)
		}
		if c.DefaultSelection() != (Selection{A: "messi", B: "ronaldo"}) {
			t.Errorf("DefaultSelection() = %+v", c.DefaultSelection())
		}
	})

	t.Run("FileWithoutStorage", func(t *testing.T) {
		if _, err := OpenCatalog(ctx, CatalogConfig{Kind: CatalogFile}); err == nil {
			t.Error("OpenCatalog accepted a file catalog without storage")
		}
	})

	t.Run("SQLite", func(t *testing.T) {
		dsn := filepath.Join(t.TempDir(), "players.db")
		c, err := OpenCatalog(ctx, CatalogConfig{Kind: CatalogSQLite, DSN: dsn, Seed: true})
		if err != nil {
			t.Fatalf("OpenCatalog failed: %v", err)
		}
		if p, ok := c.Find("kante"); !ok || p.Name != "N'Golo Kanté" {
			t.Errorf("Find(kante) = %+v, %v", p, ok)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		if _, err := OpenCatalog(ctx, CatalogConfig{Kind: "mongo"}); err == nil {
			t.Error("OpenCatalog accepted an unknown source")
		}
	})
}

func TestOpenStorage(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenStorage(dir, "secret")
	if err != nil {
		t.Fatalf("OpenStorage failed: %v", err)
	}
	cs := NewCatalogStore(dir, s)
	if err := cs.SavePlayers(DefaultPlayers()); err != nil {
		t.Fatalf("SavePlayers failed: %v", err)
	}

	again, err := OpenStorage(dir, "secret")
	if err != nil {
		t.Fatalf("Reopening storage failed: %v", err)
	}
	players, err := NewCatalogStore(dir, again).LoadPlayers(context.Background())
	if err != nil || len(players) != 4 {
		t.Fatalf("LoadPlayers = %d players, %v", len(players), err)
	}

	if _, err := OpenStorage(dir, ""); err == nil {
		t.Error("OpenStorage without a passphrase accepted an encrypted data dir")
	}
}
