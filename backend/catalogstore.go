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
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/c2FmZQ/storage"
)

// CurrentSchemaVersion is the version of the catalog file format.
const CurrentSchemaVersion = 1

var catalogFilename = filepath.Join("catalog", "players.json")

// catalogFile is the on-disk form of the catalog.
type catalogFile struct {
	SchemaVersion int      `json:"schemaVersion"`
	Players       []Player `json:"players"`
	UpdatedAt     int64    `json:"updatedAt,omitempty"`
}

// CatalogStore keeps the catalog in a storage data file, optionally
// encrypted with the storage master key.
type CatalogStore struct {
	DataDir string
	storage *storage.Storage
	mu      sync.Mutex
}

// NewCatalogStore creates a new CatalogStore.
func NewCatalogStore(dataDir string, s *storage.Storage) *CatalogStore {
	return &CatalogStore{
		DataDir: dataDir,
		storage: s,
	}
}

// SavePlayers replaces the stored catalog.
func (cs *CatalogStore) SavePlayers(players []Player) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.save(players)
}

func (cs *CatalogStore) save(players []Player) error {
	if err := os.MkdirAll(filepath.Join(cs.DataDir, filepath.Dir(catalogFilename)), 0755); err != nil {
		return fmt.Errorf("could not create catalog directory: %w", err)
	}
	f := catalogFile{
		SchemaVersion: CurrentSchemaVersion,
		Players:       players,
		UpdatedAt:     time.Now().UnixNano(),
	}
	if err := cs.storage.SaveDataFile(catalogFilename, &f); err != nil {
		return fmt.Errorf("storage.SaveDataFile: %w", err)
	}
	return nil
}

// ReplacePlayers is SavePlayers for callers holding a context.
func (cs *CatalogStore) ReplacePlayers(ctx context.Context, players []Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return cs.SavePlayers(players)
}

// LoadPlayers reads the stored catalog. It returns os.ErrNotExist when no
// catalog has been saved.
func (cs *CatalogStore) LoadPlayers(ctx context.Context) ([]Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.load()
}

func (cs *CatalogStore) load() ([]Player, error) {
	var f catalogFile
	if err := cs.storage.ReadDataFile(catalogFilename, &f); err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("ReadDataFile: %w", err)
	}
	if f.SchemaVersion > CurrentSchemaVersion {
		return nil, fmt.Errorf("catalog schema version %d is newer than supported version %d", f.SchemaVersion, CurrentSchemaVersion)
	}
	return f.Players, nil
}

// SeedPlayers saves players if no catalog exists yet.
func (cs *CatalogStore) SeedPlayers(ctx context.Context, players []Player) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, err := cs.load(); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	if err := cs.save(players); err != nil {
		return false, err
	}
	return true, nil
}

// Purge removes the catalog file.
func (cs *CatalogStore) Purge() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if err := os.Remove(filepath.Join(cs.DataDir, catalogFilename)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not purge catalog file: %w", err)
	}
	return nil
}
