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

package chart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	MinWidth  = 200
	MinHeight = 200

	labelMargin  = 56
	legendHeight = 28
	gridStroke   = 1
	borderStroke = 2
)

var (
	colorBackground = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	colorGrid       = color.NRGBA{0x00, 0x00, 0x00, 0x1a}
	colorText       = color.NRGBA{0x44, 0x44, 0x44, 0xff}
	colorTick       = color.NRGBA{0x88, 0x88, 0x88, 0xff}
)

// Radar is a rendered radar chart. It is drawn lazily on first use and is
// safe for concurrent reads afterwards.
type Radar struct {
	data   Data
	opts   Options
	width  int
	height int

	once sync.Once
	img  *image.RGBA
}

// NewRadar returns a chart of the given size. Sizes below the minimum are
// raised to it.
func NewRadar(data Data, opts Options, width, height int) *Radar {
	return &Radar{
		data:   data,
		opts:   opts.normalized(),
		width:  max(width, MinWidth),
		height: max(height, MinHeight),
	}
}

// Image returns the rendered chart.
func (r *Radar) Image() image.Image {
	r.once.Do(r.render)
	return r.img
}

// EncodePNG writes the chart as a PNG image.
func (r *Radar) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, r.Image()); err != nil {
		return fmt.Errorf("png.Encode: %w", err)
	}
	return nil
}

// Base64Image returns the chart as a data URL.
func (r *Radar) Base64Image() (string, error) {
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

type geometry struct {
	cx, cy, radius float64
	n              int
	min, max       float64
}

func (g geometry) angle(i int) float64 {
	return -math.Pi/2 + 2*math.Pi*float64(i)/float64(g.n)
}

func (g geometry) point(i int, v float64) (float32, float32) {
	v = math.Max(g.min, math.Min(g.max, v))
	d := g.radius * (v - g.min) / (g.max - g.min)
	a := g.angle(i)
	return float32(g.cx + d*math.Cos(a)), float32(g.cy + d*math.Sin(a))
}

func (r *Radar) render() {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)
	r.img = img

	top, bottom := 0, 0
	switch r.opts.LegendPosition {
	case "top":
		top = legendHeight
	case "bottom":
		bottom = legendHeight
	}
	plotH := r.height - top - bottom
	g := geometry{
		cx:     float64(r.width) / 2,
		cy:     float64(top) + float64(plotH)/2,
		radius: math.Max(10, float64(min(r.width, plotH))/2-labelMargin),
		n:      len(r.data.Labels),
		min:    r.opts.ScaleMin,
		max:    r.opts.ScaleMax,
	}

	switch r.opts.LegendPosition {
	case "top":
		r.drawLegend(img, 8)
	case "bottom":
		r.drawLegend(img, r.height-legendHeight+8)
	}
	if g.n < 3 {
		// A radar needs at least three axes to enclose an area.
		return
	}
	r.drawGrid(img, g)
	for _, ds := range r.data.Datasets {
		r.drawDataset(img, g, ds)
	}
}

func (r *Radar) drawGrid(img *image.RGBA, g geometry) {
	for tick := g.min + r.opts.TickStep; tick <= g.max+1e-9; tick += r.opts.TickStep {
		for i := 0; i < g.n; i++ {
			x0, y0 := g.point(i, tick)
			x1, y1 := g.point((i+1)%g.n, tick)
			strokeLine(img, x0, y0, x1, y1, gridStroke, colorGrid)
		}
		x, y := g.point(0, tick)
		drawText(img, formatTick(tick), int(x)+4, int(y)+4, colorTick)
	}
	for i := 0; i < g.n; i++ {
		x, y := g.point(i, g.max)
		strokeLine(img, float32(g.cx), float32(g.cy), x, y, gridStroke, colorGrid)

		a := g.angle(i)
		lx := g.cx + (g.radius+14)*math.Cos(a)
		ly := g.cy + (g.radius+14)*math.Sin(a)
		label := r.data.Labels[i]
		w := font.MeasureString(basicfont.Face7x13, label).Ceil()
		switch c := math.Cos(a); {
		case c > 0.1:
		case c < -0.1:
			lx -= float64(w)
		default:
			lx -= float64(w) / 2
		}
		drawText(img, label, int(lx), int(ly)+5, colorText)
	}
}

func (r *Radar) drawDataset(img *image.RGBA, g geometry, ds Dataset) {
	fill := parseColor(ds.BackgroundColor)
	border := parseColor(ds.BorderColor)
	pointColor := parseColor(ds.PointBackgroundColor)

	valid := func(i int) bool {
		return i < len(ds.Data) && ds.Data[i].Valid
	}

	if ds.Fill {
		z := vector.NewRasterizer(r.width, r.height)
		count := 0
		for i := 0; i < g.n; i++ {
			if !valid(i) {
				continue
			}
			x, y := g.point(i, ds.Data[i].Score)
			if count == 0 {
				z.MoveTo(x, y)
			} else {
				z.LineTo(x, y)
			}
			count++
		}
		if count >= 3 {
			z.ClosePath()
			z.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{})
		}
	}

	for i := 0; i < g.n; i++ {
		j := (i + 1) % g.n
		if !valid(i) || !valid(j) {
			continue
		}
		x0, y0 := g.point(i, ds.Data[i].Score)
		x1, y1 := g.point(j, ds.Data[j].Score)
		strokeLine(img, x0, y0, x1, y1, borderStroke, border)
	}

	for i := 0; i < g.n; i++ {
		if !valid(i) {
			continue
		}
		x, y := g.point(i, ds.Data[i].Score)
		fillCircle(img, x, y, float32(ds.PointRadius), pointColor)
	}
}

func (r *Radar) drawLegend(img *image.RGBA, y int) {
	const box, gap = 12, 16
	total := 0
	for _, ds := range r.data.Datasets {
		total += box + 6 + font.MeasureString(basicfont.Face7x13, ds.Label).Ceil() + gap
	}
	x := (r.width - total + gap) / 2
	for _, ds := range r.data.Datasets {
		rect := image.Rect(x, y, x+box, y+box)
		draw.Draw(img, rect, image.NewUniform(parseColor(ds.BorderColor)), image.Point{}, draw.Over)
		drawText(img, ds.Label, x+box+6, y+box-1, colorText)
		x += box + 6 + font.MeasureString(basicfont.Face7x13, ds.Label).Ceil() + gap
	}
}

func strokeLine(img *image.RGBA, x0, y0, x1, y1, width float32, c color.Color) {
	dx, dy := x1-x0, y1-y0
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	b := img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(x0+nx, y0+ny)
	z.LineTo(x1+nx, y1+ny)
	z.LineTo(x1-nx, y1-ny)
	z.LineTo(x0-nx, y0-ny)
	z.ClosePath()
	z.Draw(img, b, image.NewUniform(c), image.Point{})
}

func fillCircle(img *image.RGBA, cx, cy, radius float32, c color.Color) {
	if radius <= 0 {
		return
	}
	const segments = 16
	b := img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		x := cx + radius*float32(math.Cos(a))
		y := cy + radius*float32(math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
	z.Draw(img, b, image.NewUniform(c), image.Point{})
}

func drawText(img *image.RGBA, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseColor accepts "rgba(r,g,b,a)", "rgb(r,g,b)" and "#rrggbb".
func parseColor(s string) color.NRGBA {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	var r, g, b int
	a := 1.0
	switch {
	case strings.HasPrefix(s, "rgba("):
		if _, err := fmt.Sscanf(s, "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err != nil {
			return colorTick
		}
	case strings.HasPrefix(s, "rgb("):
		if _, err := fmt.Sscanf(s, "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
			return colorTick
		}
	case strings.HasPrefix(s, "#") && len(s) == 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return colorTick
		}
	default:
		return colorTick
	}
	clamp := func(v int) uint8 { return uint8(max(0, min(255, v))) }
	return color.NRGBA{clamp(r), clamp(g), clamp(b), uint8(math.Round(math.Max(0, math.Min(1, a)) * 255))}
}
