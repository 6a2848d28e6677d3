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
	"github.com/ttbt-io/playerradar/backend/chart"
)

// BuildComparison returns the chart data comparing a and b. The labels are
// a's attribute names in order. Attributes b does not have are gaps in b's
// series.
func BuildComparison(a, b Player) chart.Data {
	labels := a.Stats.Keys()
	return chart.Data{
		Labels: labels,
		Datasets: []chart.Dataset{
			{Label: a.Name, Data: seriesFor(a, labels), Style: chart.StyleCyan},
			{Label: b.Name, Data: seriesFor(b, labels), Style: chart.StylePink},
		},
	}
}

func seriesFor(p Player, labels []string) []chart.Value {
	out := make([]chart.Value, len(labels))
	for i, name := range labels {
		if score, ok := p.Stats.Get(name); ok {
			out[i] = chart.V(score)
		}
	}
	return out
}

// Comparison is the full view of a selection: the resolved players, the
// chart data, and the export filename.
type Comparison struct {
	Selection Selection     `json:"selection"`
	PlayerA   PlayerSummary `json:"playerA"`
	PlayerB   PlayerSummary `json:"playerB"`
	Chart     chart.Data    `json:"chart"`
	Options   chart.Options `json:"options"`
	Filename  string        `json:"filename"`
}

// Compare resolves both ids of sel through the catalog, falling back to the
// slot defaults for unknown ids, and builds the comparison.
func Compare(c *Catalog, sel Selection, opts chart.Options) Comparison {
	a := c.Lookup(sel.A, SlotA)
	b := c.Lookup(sel.B, SlotB)
	return Comparison{
		Selection: Selection{A: a.ID, B: b.ID},
		PlayerA:   a.summary(),
		PlayerB:   b.summary(),
		Chart:     BuildComparison(a, b),
		Options:   opts,
		Filename:  ExportFilename(a, b),
	}
}
