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
	"os"
	"path/filepath"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/ttbt-io/playerradar/backend/chart"
)

// assertGoldenJSON compares v with testdata/name, ignoring whitespace.
// Set UPDATE_GOLDENS=true to rewrite the file.
func assertGoldenJSON(t *testing.T, name string, v any) {
	t.Helper()
	actual, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}
	path := filepath.Join("testdata", name)
	if os.Getenv("UPDATE_GOLDENS") == "true" {
		if err := os.WriteFile(path, append(actual, '\n'), 0644); err != nil {
			t.Fatalf("Failed to write golden file %s: %v", path, err)
		}
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden file %s: %v", path, err)
	}
	var expected bytes.Buffer
	if err := json.Indent(&expected, raw, "", "  "); err != nil {
		t.Fatalf("Golden file %s is not JSON: %v", path, err)
	}
	if !goldenEqual(expected.Bytes(), actual) {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(expected.String()),
			B:        difflib.SplitLines(string(actual)),
			FromFile: "Expected",
			ToFile:   "Actual",
			Context:  3,
		})
		t.Errorf("Mismatch for %s:\n%s", name, diff)
	}
}


// goldenEqual compares indented JSON, ignoring leading and trailing
// whitespace.
func goldenEqual(expected, actual []byte) bool {
	return bytes.Equal(bytes.TrimSpace(expected), bytes.TrimSpace(actual))
}

func TestGoldenEqualTrailingNewline(t *testing.T) {
	actual, err := json.MarshalIndent(map[string]int{"a": 1}, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	var fromFile bytes.Buffer
	if err := json.Indent(&fromFile, append(actual, '\n'), "", "  "); err != nil {
		t.Fatal(err)
	}
	if !goldenEqual(fromFile.Bytes(), actual) {
		t.Errorf("goldenEqual(%q, %q) = false", fromFile.String(), actual)
	}
	if goldenEqual([]byte(`{"a": 2}`), actual) {
		t.Error("goldenEqual matched different JSON")
	}
}

func TestBuildComparison(t *testing.T) {
	players := DefaultPlayers()
	data := BuildComparison(players[0], players[1])

	if len(data.Labels) != 6 || data.Labels[0] != "Pace" || data.Labels[5] != "Physical" {
		t.Fatalf("Labels = %v", data.Labels)
	}
	if len(data.Datasets) != 2 {
		t.Fatalf("Got %d datasets, want 2", len(data.Datasets))
	}
	a, b := data.Datasets[0], data.Datasets[1]
	if a.Label != "Lionel Messi" || b.Label != "Cristiano Ronaldo" {
		t.Errorf("Labels = %q, %q", a.Label, b.Label)
	}
	if a.Style != chart.StyleCyan || b.Style != chart.StylePink {
		t.Errorf("Styles = %+v, %+v", a.Style, b.Style)
	}
	wantA := chart.Values(85, 92, 93, 97, 38, 65)
	wantB := chart.Values(87, 93, 82, 89, 35, 79)
	for i := range data.Labels {
		if a.Data[i] != wantA[i] {
			t.Errorf("A[%d] = %+v, want %+v", i, a.Data[i], wantA[i])
		}
		if b.Data[i] != wantB[i] {
			t.Errorf("B[%d] = %+v, want %+v", i, b.Data[i], wantB[i])
		}
	}
}

func TestBuildComparisonGaps(t *testing.T) {
	a := Player{ID: "a", Name: "A", Stats: Stats{{"Pace", 80}, {"Vision", 70}, {"Shooting", 60}}}
	b := Player{ID: "b", Name: "B", Stats: Stats{{"Shooting", 50}, {"Pace", 40}, {"Strength", 90}}}

	data := BuildComparison(a, b)
	if got := data.Labels; len(got) != 3 || got[0] != "Pace" || got[1] != "Vision" || got[2] != "Shooting" {
		t.Fatalf("Labels = %v, want A's attribute order", got)
	}
	bs := data.Datasets[1].Data
	if bs[0] != chart.V(40) || bs[1].Valid || bs[2] != chart.V(50) {
		t.Errorf("B series = %+v", bs)
	}

	out, err := json.Marshal(bs)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != "[40,null,50]" {
		t.Errorf("B series JSON = %s, want [40,null,50]", out)
	}
}

func TestCompare(t *testing.T) {
	c := mustCatalog(t)

	t.Run("Golden", func(t *testing.T) {
		cmp := Compare(c, Selection{A: "messi", B: "ronaldo"}, chart.DefaultOptions())
		assertGoldenJSON(t, "comparison_messi_ronaldo.json", cmp)
	})

	t.Run("Fallback", func(t *testing.T) {
		cmp := Compare(c, Selection{A: "nobody", B: "kante"}, chart.DefaultOptions())
		if cmp.Selection != (Selection{A: "messi", B: "kante"}) {
			t.Errorf("Selection = %+v", cmp.Selection)
		}
		if cmp.Filename != "Lionel Messi_vs_N'Golo Kanté.png" {
			t.Errorf("Filename = %q", cmp.Filename)
		}
	})

	t.Run("SamePlayer", func(t *testing.T) {
		cmp := Compare(c, Selection{A: "mbappe", B: "mbappe"}, chart.DefaultOptions())
		if cmp.PlayerA != cmp.PlayerB || cmp.Chart.Datasets[0].Label != cmp.Chart.Datasets[1].Label {
			t.Errorf("Got %+v vs %+v", cmp.PlayerA, cmp.PlayerB)
		}
	})

	t.Run("AfterSwap", func(t *testing.T) {
		cmp := Compare(c, Selection{A: "messi", B: "ronaldo"}.Swap(), chart.DefaultOptions())
		if cmp.PlayerA.ID != "ronaldo" || cmp.PlayerB.ID != "messi" {
			t.Errorf("Got %+v vs %+v", cmp.PlayerA, cmp.PlayerB)
		}
		if cmp.Filename != "Cristiano Ronaldo_vs_Lionel Messi.png" {
			t.Errorf("Filename = %q", cmp.Filename)
		}
	})
}
