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
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyCatalog is returned when a catalog would have no players.
var ErrEmptyCatalog = errors.New("catalog has no players")

// Slot identifies one of the two compared players.
type Slot string

const (
	SlotA Slot = "a"
	SlotB Slot = "b"
)

// Valid reports whether s names a known slot.
func (s Slot) Valid() bool {
	return s == SlotA || s == SlotB
}

// Catalog is the read-only, ordered set of comparable players. It is built
// once at startup and shared by every consumer without locking.
type Catalog struct {
	players    []Player
	index      map[string]int
	attributes []string
}

// NewCatalog validates players and builds a catalog. All players must have
// a unique valid ID and the same attribute names in the same order.
func NewCatalog(players []Player) (*Catalog, error) {
	if len(players) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		players: make([]Player, 0, len(players)),
		index:   make(map[string]int, len(players)),
	}
	for i, p := range players {
		if err := ValidatePlayer(p); err != nil {
			return nil, fmt.Errorf("player at index %d: %w", i, err)
		}
		id := strings.TrimSpace(p.ID)
		if _, dup := c.index[id]; dup {
			return nil, fmt.Errorf("player %q: duplicate id", id)
		}
		keys := p.Stats.Keys()
		if i == 0 {
			c.attributes = keys
		} else if !slices.Equal(keys, c.attributes) {
			return nil, fmt.Errorf("player %q: attributes %v do not match %v", id, keys, c.attributes)
		}
		c.index[id] = len(c.players)
		c.players = append(c.players, Player{
			ID:    id,
			Name:  norm.NFC.String(strings.TrimSpace(p.Name)),
			Stats: slices.Clone(p.Stats),
		})
	}
	return c, nil
}

// Len returns the number of players.
func (c *Catalog) Len() int {
	return len(c.players)
}

// Players returns a copy of the catalog in order.
func (c *Catalog) Players() []Player {
	out := make([]Player, len(c.players))
	for i, p := range c.players {
		out[i] = clonePlayer(p)
	}
	return out
}

// Summaries returns the id and display name of every player in order.
func (c *Catalog) Summaries() []PlayerSummary {
	out := make([]PlayerSummary, len(c.players))
	for i, p := range c.players {
		out[i] = p.summary()
	}
	return out
}

// Attributes returns the shared attribute names in order.
func (c *Catalog) Attributes() []string {
	return slices.Clone(c.attributes)
}

// Find returns the player with the given id.
func (c *Catalog) Find(id string) (Player, bool) {
	i, ok := c.index[id]
	if !ok {
		return Player{}, false
	}
	return clonePlayer(c.players[i]), true
}

// Lookup returns the player with the given id. Unknown ids resolve to the
// slot's default player (first for A, second for B) instead of an error,
// so a view always has two players to show.
func (c *Catalog) Lookup(id string, slot Slot) Player {
	if p, ok := c.Find(id); ok {
		return p
	}
	return clonePlayer(c.players[c.defaultIndex(slot)])
}

// DefaultSelection returns the initial selection: the first and second
// players of the catalog.
func (c *Catalog) DefaultSelection() Selection {
	return Selection{
		A: c.players[c.defaultIndex(SlotA)].ID,
		B: c.players[c.defaultIndex(SlotB)].ID,
	}
}

func (c *Catalog) defaultIndex(slot Slot) int {
	if slot == SlotB && len(c.players) > 1 {
		return 1
	}
	return 0
}

func clonePlayer(p Player) Player {
	p.Stats = slices.Clone(p.Stats)
	return p
}
