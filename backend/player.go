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
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Stat is a single named attribute score.
type Stat struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Stats is an ordered set of attribute scores. The JSON form is an object
// whose key order is preserved in both directions.
type Stats []Stat

// Keys returns the attribute names in order.
func (s Stats) Keys() []string {
	keys := make([]string, len(s))
	for i, st := range s {
		keys[i] = st.Name
	}
	return keys
}

// Get returns the score of the named attribute.
func (s Stats) Get(name string) (float64, bool) {
	for _, st := range s {
		if st.Name == name {
			return st.Score, true
		}
	}
	return 0, false
}

// MarshalJSON encodes the stats as an object in attribute order.
func (s Stats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, st := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(st.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(st.Score)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping the order of its keys.
func (s *Stats) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("stats: expected object, got %v", tok)
	}
	out := make(Stats, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("stats: expected key, got %v", tok)
		}
		var score float64
		if err := dec.Decode(&score); err != nil {
			return fmt.Errorf("stats: attribute %q: %w", name, err)
		}
		if slices.ContainsFunc(out, func(st Stat) bool { return st.Name == name }) {
			return fmt.Errorf("stats: duplicate attribute %q", name)
		}
		out = append(out, Stat{Name: name, Score: score})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

// Player is a named entity with a fixed set of attribute scores.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stats Stats  `json:"stats"`
}

// PlayerSummary is the list form of a player used by selectors.
type PlayerSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (p Player) summary() PlayerSummary {
	return PlayerSummary{ID: p.ID, Name: p.Name}
}

// DefaultPlayers returns the built-in catalog content.
func DefaultPlayers() []Player {
	return []Player{
		{
			ID:   "messi",
			Name: "Lionel Messi",
			Stats: Stats{
				{"Pace", 85}, {"Shooting", 92}, {"Passing", 93},
				{"Dribbling", 97}, {"Defending", 38}, {"Physical", 65},
			},
		},
		{
			ID:   "ronaldo",
			Name: "Cristiano Ronaldo",
			Stats: Stats{
				{"Pace", 87}, {"Shooting", 93}, {"Passing", 82},
				{"Dribbling", 89}, {"Defending", 35}, {"Physical", 79},
			},
		},
		{
			ID:   "mbappe",
			Name: "Kylian Mbappé",
			Stats: Stats{
				{"Pace", 98}, {"Shooting", 88}, {"Passing", 78},
				{"Dribbling", 91}, {"Defending", 36}, {"Physical", 76},
			},
		},
		{
			ID:   "kante",
			Name: "N'Golo Kanté",
			Stats: Stats{
				{"Pace", 78}, {"Shooting", 66}, {"Passing", 78},
				{"Dribbling", 80}, {"Defending", 89}, {"Physical", 85},
			},
		},
	}
}
