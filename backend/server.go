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
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ttbt-io/playerradar/backend/chart"
	"github.com/ttbt-io/playerradar/frontend"
)

const (
	DefaultChartWidth  = 860
	DefaultChartHeight = 460
	maxChartSize       = 2000
)

func generateETag(data []byte) string {
	return fmt.Sprintf("\"%x\"", sha256.Sum256(data))
}

// parseSelection reads the a and b query parameters. Missing ids take the
// catalog defaults; unknown ids are resolved later by Catalog.Lookup.
func parseSelection(r *http.Request, c *Catalog) Selection {
	sel := c.DefaultSelection()
	q := r.URL.Query()
	if a := q.Get("a"); a != "" {
		sel.A = a
	}
	if b := q.Get("b"); b != "" {
		sel.B = b
	}
	return sel
}

func parseChartSize(r *http.Request, defWidth, defHeight int) (int, int) {
	width, height := defWidth, defHeight
	if v := r.URL.Query().Get("width"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			width = n
		}
	}
	if v := r.URL.Query().Get("height"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			height = n
		}
	}
	width = max(chart.MinWidth, min(maxChartSize, width))
	height = max(chart.MinHeight, min(maxChartSize, height))
	return width, height
}

// Options represent server options.
type Options struct {
	Addr     string
	Cert     *tls.Certificate
	Listener net.Listener
	Debug    bool

	// Catalog is the player catalog. It is required.
	Catalog *Catalog

	ChartOptions chart.Options
	ChartWidth   int
	ChartHeight  int
}

// Server represents the running server instance.
type Server struct {
	httpServer *http.Server
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

// StartServer starts the web server and registers the API handlers.
func StartServer(opts Options) (*Server, error) {
	handler, err := NewServerHandler(opts)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:    opts.Addr,
		Handler: handler,
	}
	if opts.Cert != nil {
		httpServer.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{*opts.Cert},
		}
	}

	go func() {
		var err error
		if opts.Listener != nil {
			if httpServer.TLSConfig != nil {
				log.Printf("Starting HTTPS server on provided listener %s...", opts.Listener.Addr())
				err = httpServer.ServeTLS(opts.Listener, "", "")
			} else {
				log.Printf("Starting HTTP server on provided listener %s...", opts.Listener.Addr())
				err = httpServer.Serve(opts.Listener)
			}
		} else {
			log.Printf("Server starting on port %s...\n", opts.Addr)
			if httpServer.TLSConfig != nil {
				err = httpServer.ListenAndServeTLS("", "")
			} else {
				err = httpServer.ListenAndServe()
			}
		}

		if err != nil && !errors.Is(err, net.ErrClosed) && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return &Server{httpServer: httpServer}, nil
}

// NewServerHandler creates and configures the HTTP handler for the server.
func NewServerHandler(opts Options) (http.Handler, error) {
	if opts.Catalog == nil {
		return nil, errors.New("server: catalog is required")
	}
	catalog := opts.Catalog
	if opts.ChartOptions == (chart.Options{}) {
		opts.ChartOptions = chart.DefaultOptions()
	}
	if opts.ChartWidth <= 0 {
		opts.ChartWidth = DefaultChartWidth
	}
	if opts.ChartHeight <= 0 {
		opts.ChartHeight = DefaultChartHeight
	}

	debugf := func(string, ...any) {}
	if opts.Debug {
		debugf = func(f string, a ...any) {
			log.Printf("[DEBUG BACKEND] "+f, a...)
		}
	}
	sessions := NewSessionManager(catalog, opts.ChartOptions, debugf)
	metrics := NewMetrics()

	writeJSON := func(w http.ResponseWriter, r *http.Request, v any) {
		response, err := json.Marshal(v)
		if err != nil {
			log.Printf("Internal Server Error during JSON Marshal: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		etag := generateETag(response)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		w.Header().Set("Content-Type", "application/json")
		w.Write(response)
	}

	// render draws the chart for the request's selection.
	render := func(r *http.Request) (Player, Player, *chart.Radar) {
		sel := parseSelection(r, catalog)
		a := catalog.Lookup(sel.A, SlotA)
		b := catalog.Lookup(sel.B, SlotB)
		width, height := parseChartSize(r, opts.ChartWidth, opts.ChartHeight)
		debugf("render %s vs %s (%dx%d)", a.ID, b.ID, width, height)
		metrics.CountRender()
		return a, b, chart.NewRadar(BuildComparison(a, b), opts.ChartOptions, width, height)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/players", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, r, struct {
			Players    []PlayerSummary `json:"players"`
			Attributes []string        `json:"attributes"`
			Defaults   Selection       `json:"defaults"`
		}{
			Players:    catalog.Summaries(),
			Attributes: catalog.Attributes(),
			Defaults:   catalog.DefaultSelection(),
		})
	})

	mux.HandleFunc("/api/players/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/players/")
		p, ok := catalog.Find(id)
		if !ok {
			http.Error(w, "Not Found: Player not found", http.StatusNotFound)
			return
		}
		writeJSON(w, r, p)
	})

	mux.HandleFunc("/api/options", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, r, opts.ChartOptions)
	})

	mux.HandleFunc("/api/compare", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, r, Compare(catalog, parseSelection(r, catalog), opts.ChartOptions))
	})

	mux.HandleFunc("/api/chart.png", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		_, _, radar := render(r)
		var buf bytes.Buffer
		if err := radar.EncodePNG(&buf); err != nil {
			log.Printf("Error rendering chart: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		etag := generateETag(buf.Bytes())
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	})

	mux.HandleFunc("/api/export", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		a, b, radar := render(r)
		img, ok, err := Export(radar, a, b)
		if err != nil || !ok {
			log.Printf("Error exporting chart: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		log.Printf("Exporting %s", img.Filename)
		metrics.CountExport()
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", img.ContentDisposition())
		w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
		img.WriteTo(w)
	})

	mux.HandleFunc("/api/ws", sessions.ServeWS)

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, r, metrics.Status(catalog, sessions))
	})

	// Serve embedded frontend
	contentStatic, err := fs.Sub(frontend.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("frontend: %w", err)
	}
	mux.HandleFunc("/compare", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, contentStatic, "compare.html")
	})
	mux.Handle("/", contentTypeMiddleware(http.FileServerFS(contentStatic)))

	handler := http.Handler(mux)
	handler = metricsMiddleware(metrics, handler)
	handler = loggingMiddleware(handler)
	handler = securityMiddleware(handler)
	handler = cacheControlMiddleware(handler)
	return handler, nil
}

// cacheControlMiddleware keeps API responses private and lets static
// assets be cached briefly.
func cacheControlMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "private, no-cache, no-transform")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=300, proxy-revalidate, no-transform")
		}
		next.ServeHTTP(w, r)
	})
}

// securityMiddleware adds HTTP security headers to responses.
func securityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: blob:; connect-src 'self'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// contentTypeMiddleware ensures that files are served with the correct MIME type.
func contentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch filepath.Ext(r.URL.Path) {
		case ".js", ".mjs":
			w.Header().Set("Content-Type", "application/javascript")
		case ".css":
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case ".html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		case ".png":
			w.Header().Set("Content-Type", "image/png")
		case ".svg":
			w.Header().Set("Content-Type", "image/svg+xml")
		case ".json":
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs the method and URL path of every incoming HTTP request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Received request: %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
