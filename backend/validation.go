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
	"fmt"
	"math"
	"regexp"
	"strings"
)

// playerIDRegex limits ids to characters that are safe in URL paths and
// Redis keys.
var playerIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// isValidPlayerID checks if the string can be used as a player id.
func isValidPlayerID(id string) bool {
	return len(id) <= maxPlayerIDLen && playerIDRegex.MatchString(id)
}

// validateStringLen checks if the string length is within the limit.
func validateStringLen(s string, max int, name string) error {
	if len(s) > max {
		return fmt.Errorf("%s too long (max %d chars)", name, max)
	}
	return nil
}

// ValidatePlayer checks one catalog entry on its own. Consistency across
// players is checked by NewCatalog.
func ValidatePlayer(p Player) error {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return fmt.Errorf("missing id")
	}
	if !isValidPlayerID(id) {
		return fmt.Errorf("invalid id %q", id)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player %q: missing name", id)
	}
	if err := validateStringLen(p.Name, maxPlayerNameLen, "name"); err != nil {
		return fmt.Errorf("player %q: %w", id, err)
	}
	if len(p.Stats) == 0 {
		return fmt.Errorf("player %q: no stats", id)
	}
	if len(p.Stats) > maxAttributes {
		return fmt.Errorf("player %q: too many attributes (max %d)", id, maxAttributes)
	}
	seen := make(map[string]bool, len(p.Stats))
	for _, st := range p.Stats {
		if st.Name == "" {
			return fmt.Errorf("player %q: empty attribute name", id)
		}
		if err := validateStringLen(st.Name, maxAttributeLen, "attribute"); err != nil {
			return fmt.Errorf("player %q: %w", id, err)
		}
		if seen[st.Name] {
			return fmt.Errorf("player %q: duplicate attribute %q", id, st.Name)
		}
		seen[st.Name] = true
		if math.IsNaN(st.Score) || math.IsInf(st.Score, 0) {
			return fmt.Errorf("player %q: %s is not a number", id, st.Name)
		}
	}
	return nil
}
