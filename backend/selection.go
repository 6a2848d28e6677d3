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

// Selection holds the ids of the two compared players. A and B may be equal.
type Selection struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Swap returns the selection with both ids exchanged.
func (s Selection) Swap() Selection {
	return Selection{A: s.B, B: s.A}
}

// With returns the selection with the id of one slot replaced.
func (s Selection) With(slot Slot, id string) Selection {
	switch slot {
	case SlotA:
		s.A = id
	case SlotB:
		s.B = id
	}
	return s
}

// Get returns the id held by slot.
func (s Selection) Get(slot Slot) string {
	if slot == SlotB {
		return s.B
	}
	return s.A
}
