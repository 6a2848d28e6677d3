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

// Package chart holds the radar chart data model and a PNG renderer for it.
package chart

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is one point of a series. An invalid value is a gap and is encoded
// as JSON null.
type Value struct {
	Score float64
	Valid bool
}

// V returns a valid value.
func V(score float64) Value {
	return Value{Score: score, Valid: true}
}

// Values returns valid values for all scores.
func Values(scores ...float64) []Value {
	out := make([]Value, len(scores))
	for i, s := range scores {
		out[i] = V(s)
	}
	return out
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v.Score, 'f', -1, 64)), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = V(f)
	return nil
}

// Style is the visual identity of a dataset.
type Style struct {
	BackgroundColor      string `json:"backgroundColor"`
	BorderColor          string `json:"borderColor"`
	PointBackgroundColor string `json:"pointBackgroundColor"`
	PointRadius          int    `json:"pointRadius"`
	Fill                 bool   `json:"fill"`
}

var (
	// StyleCyan is the style of the first compared player.
	StyleCyan = Style{
		BackgroundColor:      "rgba(34,202,236,0.18)",
		BorderColor:          "rgba(34,202,236,1)",
		PointBackgroundColor: "rgba(34,202,236,1)",
		PointRadius:          4,
		Fill:                 true,
	}
	// StylePink is the style of the second compared player.
	StylePink = Style{
		BackgroundColor:      "rgba(255,99,132,0.16)",
		BorderColor:          "rgba(255,99,132,1)",
		PointBackgroundColor: "rgba(255,99,132,1)",
		PointRadius:          4,
		Fill:                 true,
	}
)

// Dataset is one polygon of the radar chart.
type Dataset struct {
	Label string  `json:"label"`
	Data  []Value `json:"data"`
	Style
}

// Data is the input of the renderer: ordered axis labels and datasets whose
// values are aligned with them.
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Options are the display options of the chart. TooltipEnabled only
// affects interactive clients; the PNG renderer draws no tooltips.
type Options struct {
	ScaleMin       float64
	ScaleMax       float64
	TickStep       float64
	LegendPosition string
	TooltipEnabled bool
}

// optionsJSON is the wire form of Options, laid out like a Chart.js
// options object.
type optionsJSON struct {
	Plugins struct {
		Legend struct {
			Display  *bool  `json:"display,omitempty"`
			Position string `json:"position"`
		} `json:"legend"`
		Tooltip struct {
			Enabled bool `json:"enabled"`
		} `json:"tooltip"`
	} `json:"plugins"`
	Scales struct {
		R struct {
			SuggestedMin float64 `json:"suggestedMin"`
			SuggestedMax float64 `json:"suggestedMax"`
			Ticks        struct {
				StepSize float64 `json:"stepSize"`
			} `json:"ticks"`
		} `json:"r"`
	} `json:"scales"`
}

func (o Options) MarshalJSON() ([]byte, error) {
	var j optionsJSON
	display := o.LegendPosition != "none"
	j.Plugins.Legend.Display = &display
	j.Plugins.Legend.Position = o.LegendPosition
	if !display {
		j.Plugins.Legend.Position = "top"
	}
	j.Plugins.Tooltip.Enabled = o.TooltipEnabled
	j.Scales.R.SuggestedMin = o.ScaleMin
	j.Scales.R.SuggestedMax = o.ScaleMax
	j.Scales.R.Ticks.StepSize = o.TickStep
	return json.Marshal(j)
}

func (o *Options) UnmarshalJSON(data []byte) error {
	var j optionsJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*o = Options{
		ScaleMin:       j.Scales.R.SuggestedMin,
		ScaleMax:       j.Scales.R.SuggestedMax,
		TickStep:       j.Scales.R.Ticks.StepSize,
		LegendPosition: j.Plugins.Legend.Position,
		TooltipEnabled: j.Plugins.Tooltip.Enabled,
	}
	if d := j.Plugins.Legend.Display; d != nil && !*d {
		o.LegendPosition = "none"
	}
	return nil
}

// DefaultOptions returns a 0..100 scale with a tick every 20 and the legend
// on top.
func DefaultOptions() Options {
	return Options{
		ScaleMin:       0,
		ScaleMax:       100,
		TickStep:       20,
		LegendPosition: "top",
		TooltipEnabled: true,
	}
}

// normalized fills in unusable values.
func (o Options) normalized() Options {
	if o.ScaleMax <= o.ScaleMin {
		o.ScaleMin, o.ScaleMax = 0, 100
	}
	if o.TickStep <= 0 || o.TickStep > o.ScaleMax-o.ScaleMin {
		o.TickStep = (o.ScaleMax - o.ScaleMin) / 5
	}
	if o.LegendPosition != "bottom" && o.LegendPosition != "none" {
		o.LegendPosition = "top"
	}
	return o
}
