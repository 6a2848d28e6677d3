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
	"testing"
)

func mustCatalog(t *testing.T, players ...Player) *Catalog {
	t.Helper()
	if len(players) == 0 {
		players = DefaultPlayers()
	}
	c, err := NewCatalog(players)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	return c
}

func TestCatalogLookup(t *testing.T) {
	c := mustCatalog(t)

	t.Run("ValidIds", func(t *testing.T) {
		for _, p := range DefaultPlayers() {
			for _, slot := range []Slot{SlotA, SlotB} {
				if got := c.Lookup(p.ID, slot); got.ID != p.ID {
					t.Errorf("Lookup(%q, %s) = %q", p.ID, slot, got.ID)
				}
			}
		}
	})

	t.Run("UnknownIdFallsBack", func(t *testing.T) {
		for _, id := range []string{"", "pele", "MESSI", " messi"} {
			if got := c.Lookup(id, SlotA); got.ID != "messi" {
				t.Errorf("Lookup(%q, a) = %q, want messi", id, got.ID)
			}
			if got := c.Lookup(id, SlotB); got.ID != "ronaldo" {
				t.Errorf("Lookup(%q, b) = %q, want ronaldo", id, got.ID)
			}
		}
	})

	t.Run("SinglePlayer", func(t *testing.T) {
		one := mustCatalog(t, DefaultPlayers()[2])
		if got := one.Lookup("nobody", SlotB); got.ID != "mbappe" {
			t.Errorf("Lookup(nobody, b) = %q, want mbappe", got.ID)
		}
		if sel := one.DefaultSelection(); sel != (Selection{A: "mbappe", B: "mbappe"}) {
			t.Errorf("DefaultSelection() = %+v", sel)
		}
	})
}

func TestCatalogDefaults(t *testing.T) {
	c := mustCatalog(t)
	if sel := c.DefaultSelection(); sel != (Selection{A: "messi", B: "ronaldo"}) {
		t.Errorf("DefaultSelection() = %+v", sel)
	}
	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}
	want := []string{"Pace", "Shooting", "Passing", "Dribbling", "Defending", "Physical"}
	got := c.Attributes()
	if len(got) != len(want) {
		t.Fatalf("Attributes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Attributes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	sums := c.Summaries()
	if sums[3] != (PlayerSummary{ID: "kante", Name: "N'Golo Kanté"}) {
		t.Errorf("Summaries()[3] = %+v", sums[3])
	}
}

func TestCatalogIsReadOnly(t *testing.T) {
	c := mustCatalog(t)
	p, _ := c.Find("messi")
	p.Stats[0].Score = 1
	p.Name = "changed"
	for _, q := range c.Players() {
		q.Stats[0].Score = 2
	}

	again, _ := c.Find("messi")
	if again.Name != "Lionel Messi" || again.Stats[0].Score != 85 {
		t.Errorf("Catalog was mutated: %+v", again)
	}
}

func TestNewCatalogValidation(t *testing.T) {
	base := DefaultPlayers()
	for _, tc := range []struct {
		name    string
		players []Player
	}{
		{"MissingID", []Player{{ID: " ", Name: "X", Stats: base[0].Stats}}},
		{"DuplicateID", []Player{base[0], base[0]}},
		{"NoStats", []Player{{ID: "x", Name: "X"}}},
		{"DifferentKeys", []Player{base[0], {ID: "x", Name: "X", Stats: Stats{{"Pace", 1}}}}},
		{"DifferentOrder", []Player{base[0], {ID: "x", Name: "X", Stats: append(Stats{base[0].Stats[1], base[0].Stats[0]}, base[0].Stats[2:]...)}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCatalog(tc.players); err == nil {
				t.Error("NewCatalog succeeded, want error")
			}
		})
	}

	if _, err := NewCatalog(nil); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("NewCatalog(nil) = %v, want ErrEmptyCatalog", err)
	}
}

func TestCatalogNormalizesNames(t *testing.T) {
	c := mustCatalog(t, Player{ID: "mbappe", Name: " Kylian Mbappe\u0301 ", Stats: Stats{{"Pace", 98}}})
	p, ok := c.Find("mbappe")
	if !ok {
		t.Fatal("Find(mbappe) failed")
	}
	if p.Name != "Kylian Mbapp\u00e9" {
		t.Errorf("Name = %q, want NFC form", p.Name)
	}
}
