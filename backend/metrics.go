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
	"net/http"
	"strings"
	"sync"
	"time"
)

const LatencyBuckets = 101
const LatencyBucketSize = 5 * time.Millisecond

// Histogram counts request latencies in fixed-size buckets. The last
// bucket holds everything slower.
type Histogram struct {
	Buckets [LatencyBuckets]uint64 `json:"b"`
	Count   uint64                 `json:"c"`
	Sum     float64                `json:"s"` // Sum of durations in milliseconds
}

func (h *Histogram) Add(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	idx := int(d / LatencyBucketSize)
	if idx < 0 {
		idx = 0
	}
	if idx >= LatencyBuckets {
		idx = LatencyBuckets - 1
	}
	h.Buckets[idx]++
	h.Count++
	h.Sum += ms
}

func (h *Histogram) Merge(other *Histogram) {
	if other == nil {
		return
	}
	for i := 0; i < LatencyBuckets; i++ {
		h.Buckets[i] += other.Buckets[i]
	}
	h.Count += other.Count
	h.Sum += other.Sum
}

// Quantile returns the upper bound of the bucket holding the q-th
// quantile, or 0 when the histogram is empty.
func (h *Histogram) Quantile(q float64) time.Duration {
	if h.Count == 0 {
		return 0
	}
	target := uint64(q * float64(h.Count))
	if target >= h.Count {
		target = h.Count - 1
	}
	var seen uint64
	for i, n := range h.Buckets {
		seen += n
		if seen > target {
			return time.Duration(i+1) * LatencyBucketSize
		}
	}
	return LatencyBuckets * LatencyBucketSize
}

// Metrics holds the in-process counters of the server.
type Metrics struct {
	start time.Time

	mu       sync.Mutex
	requests uint64
	renders  uint64
	exports  uint64
	routes   map[string]*Histogram
}

// NewMetrics creates a new Metrics.
func NewMetrics() *Metrics {
	return &Metrics{start: time.Now(), routes: make(map[string]*Histogram)}
}

// routeLabel groups request paths: API endpoints by path, everything else
// as static content.
func routeLabel(path string) string {
	if !strings.HasPrefix(path, "/api/") {
		return "static"
	}
	if strings.HasPrefix(path, "/api/players/") {
		return "/api/players/{id}"
	}
	return path
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	h, ok := m.routes[route]
	if !ok {
		h = &Histogram{}
		m.routes[route] = h
	}
	h.Add(d)
}

// CountRender records one rendered chart.
func (m *Metrics) CountRender() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders++
}

// CountExport records one exported chart.
func (m *Metrics) CountExport() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports++
}

// StatusPayload is the response of /api/status.
type StatusPayload struct {
	Timestamp  int64     `json:"timestamp"` // Unix timestamp of the report
	UptimeSec  int64     `json:"uptimeSec"`
	Players    int       `json:"players"`
	Attributes int       `json:"attributes"`
	Sessions   int       `json:"sessions"`
	Requests   uint64    `json:"requests"`
	Renders    uint64    `json:"renders"`
	Exports    uint64    `json:"exports"`
	P50MS      int64     `json:"p50Ms"`
	P95MS      int64     `json:"p95Ms"`
	Latency    Histogram `json:"latency"`

	Routes map[string]RouteStatus `json:"routes"`
}

// RouteStatus is the latency summary of one route.
type RouteStatus struct {
	Requests uint64 `json:"requests"`
	P95MS    int64  `json:"p95Ms"`
}

// Status reports the counters together with the catalog and session sizes.
func (m *Metrics) Status(c *Catalog, sm *SessionManager) StatusPayload {
	m.mu.Lock()
	var lat Histogram
	p := StatusPayload{
		Requests: m.requests,
		Renders:  m.renders,
		Exports:  m.exports,
		Routes:   make(map[string]RouteStatus, len(m.routes)),
	}
	for route, h := range m.routes {
		lat.Merge(h)
		p.Routes[route] = RouteStatus{Requests: h.Count, P95MS: h.Quantile(0.95).Milliseconds()}
	}
	m.mu.Unlock()

	now := time.Now()
	p.Timestamp = now.Unix()
	p.UptimeSec = int64(now.Sub(m.start).Seconds())
	p.Players = c.Len()
	p.Attributes = len(c.Attributes())
	p.Sessions = sm.Count()
	p.P50MS = lat.Quantile(0.5).Milliseconds()
	p.P95MS = lat.Quantile(0.95).Milliseconds()
	p.Latency = lat
	return p
}

// metricsMiddleware records the latency of every request.
func metricsMiddleware(m *Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		m.ObserveRequest(routeLabel(r.URL.Path), time.Since(start))
	})
}
