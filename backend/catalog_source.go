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
	"log"
)

// CatalogSource supplies the players of the catalog. It is read once at
// startup.
type CatalogSource interface {
	LoadPlayers(ctx context.Context) ([]Player, error)
}

// CatalogSeeder is a source that can be initialized with players when it
// is empty.
type CatalogSeeder interface {
	CatalogSource
	SeedPlayers(ctx context.Context, players []Player) (seeded bool, err error)
}

// CatalogWriter is a source whose contents can be replaced.
type CatalogWriter interface {
	ReplacePlayers(ctx context.Context, players []Player) error
}

// BuiltinSource serves a fixed list of players.
type BuiltinSource struct {
	players []Player
}

// NewBuiltinSource returns a source for players, or for DefaultPlayers
// when players is empty.
func NewBuiltinSource(players ...Player) *BuiltinSource {
	if len(players) == 0 {
		players = DefaultPlayers()
	}
	return &BuiltinSource{players: players}
}

// LoadPlayers returns a copy of the fixed players.
func (s *BuiltinSource) LoadPlayers(ctx context.Context) ([]Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Player, len(s.players))
	for i, p := range s.players {
		out[i] = clonePlayer(p)
	}
	return out, nil
}

// LoadCatalog reads all players from src and builds the catalog.
func LoadCatalog(ctx context.Context, src CatalogSource) (*Catalog, error) {
	players, err := src.LoadPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	c, err := NewCatalog(players)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	log.Printf("Catalog loaded: %d players, attributes %v", c.Len(), c.Attributes())
	return c, nil
}

// SeedCatalog writes DefaultPlayers to src if it is empty.
func SeedCatalog(ctx context.Context, src CatalogSeeder) error {
	seeded, err := src.SeedPlayers(ctx, DefaultPlayers())
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if seeded {
		log.Println("Seeded catalog with built-in players.")
	}
	return nil
}

// ImportCatalog validates players as a catalog and replaces the contents of
// dst with them.
func ImportCatalog(ctx context.Context, dst CatalogWriter, players []Player) (*Catalog, error) {
	c, err := NewCatalog(players)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	if err := dst.ReplacePlayers(ctx, c.Players()); err != nil {
		return nil, fmt.Errorf("replace players: %w", err)
	}
	log.Printf("Imported %d players", c.Len())
	return c, nil
}
