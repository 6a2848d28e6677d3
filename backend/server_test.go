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
	"encoding/json"
	"image/png"
	"io"
	"mime"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	handler, err := NewServerHandler(Options{Catalog: mustCatalog(t)})
	if err != nil {
		t.Fatalf("NewServerHandler failed: %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, url string, header http.Header) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Reading body failed: %v", err)
	}
	return resp, body
}

func TestNewServerHandlerRequiresCatalog(t *testing.T) {
	if _, err := NewServerHandler(Options{}); err == nil {
		t.Error("NewServerHandler accepted options without a catalog")
	}
}

func TestServerPlayersAPI(t *testing.T) {
	server := newTestServer(t)

	t.Run("List", func(t *testing.T) {
		resp, body := get(t, server.URL+"/api/players", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Status = %d", resp.StatusCode)
		}
		var got struct {
			Players    []PlayerSummary `json:"players"`
			Attributes []string        `json:"attributes"`
			Defaults   Selection       `json:"defaults"`
		}
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if len(got.Players) != 4 || got.Players[0].ID != "messi" || got.Players[1].Name != "Cristiano Ronaldo" {
			t.Errorf("Players = %+v", got.Players)
		}
		if len(got.Attributes) != 6 || got.Defaults != (Selection{A: "messi", B: "ronaldo"}) {
			t.Errorf("Got %+v", got)
		}
		if resp.Header.Get("Cache-Control") != "private, no-cache, no-transform" {
			t.Errorf("Cache-Control = %q", resp.Header.Get("Cache-Control"))
		}
	})

	t.Run("One", func(t *testing.T) {
		resp, body := get(t, server.URL+"/api/players/kante", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Status = %d", resp.StatusCode)
		}
		var p Player
		if err := json.Unmarshal(body, &p); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if p.ID != "kante" || len(p.Stats) != 6 || p.Stats[4] != (Stat{"Defending", 89}) {
			t.Errorf("Got %+v", p)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		resp, _ := get(t, server.URL+"/api/players/pele", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		for _, path := range []string{"/api/players", "/api/compare", "/api/export", "/api/chart.png"} {
			resp, err := http.Post(server.URL+path, "application/json", strings.NewReader("{}"))
			if err != nil {
				t.Fatalf("POST %s failed: %v", path, err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusMethodNotAllowed {
				t.Errorf("POST %s = %d, want 405", path, resp.StatusCode)
			}
		}
	})
}

func TestServerCompareAPI(t *testing.T) {
	server := newTestServer(t)

	t.Run("Selection", func(t *testing.T) {
		resp, body := get(t, server.URL+"/api/compare?a=ronaldo&b=messi", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Status = %d", resp.StatusCode)
		}
		var cmp Comparison
		if err := json.Unmarshal(body, &cmp); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if cmp.Filename != "Cristiano Ronaldo_vs_Lionel Messi.png" {
			t.Errorf("Filename = %q", cmp.Filename)
		}
		if cmp.Options.ScaleMax != 100 || cmp.Options.TickStep != 20 {
			t.Errorf("Options = %+v", cmp.Options)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		_, body := get(t, server.URL+"/api/compare?a=nobody", nil)
		var cmp Comparison
		if err := json.Unmarshal(body, &cmp); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if cmp.Selection != (Selection{A: "messi", B: "ronaldo"}) {
			t.Errorf("Selection = %+v", cmp.Selection)
		}
	})

	t.Run("ETag", func(t *testing.T) {
		resp, _ := get(t, server.URL+"/api/compare", nil)
		etag := resp.Header.Get("ETag")
		if etag == "" {
			t.Fatal("Missing ETag")
		}
		resp, body := get(t, server.URL+"/api/compare", http.Header{"If-None-Match": {etag}})
		if resp.StatusCode != http.StatusNotModified || len(body) != 0 {
			t.Errorf("Status = %d, body %d bytes; want 304", resp.StatusCode, len(body))
		}
	})

	t.Run("Status", func(t *testing.T) {
		get(t, server.URL+"/api/chart.png", nil)
		resp, body := get(t, server.URL+"/api/status", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Status = %d", resp.StatusCode)
		}
		var s StatusPayload
		if err := json.Unmarshal(body, &s); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if s.Players != 4 || s.Renders < 1 || s.Requests < 1 {
			t.Errorf("Got %+v", s)
		}
	})

	t.Run("Options", func(t *testing.T) {
		_, body := get(t, server.URL+"/api/options", nil)
		if !strings.Contains(string(body), `"scales":{"r":{"suggestedMin":0,"suggestedMax":100,"ticks":{"stepSize":20}}}`) {
			t.Errorf("Got %s", body)
		}
	})
}

func TestServerChartAPI(t *testing.T) {
	server := newTestServer(t)

	t.Run("Chart", func(t *testing.T) {
		resp, body := get(t, server.URL+"/api/chart.png?a=messi&b=ronaldo&width=300&height=250", nil)
		if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
			t.Fatalf("Status = %d, Content-Type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
		}
		img, err := png.Decode(bytes.NewReader(body))
		if err != nil {
			t.Fatalf("png.Decode failed: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 250 {
			t.Errorf("Bounds = %v", b)
		}
	})

	t.Run("ClampedSize", func(t *testing.T) {
		_, body := get(t, server.URL+"/api/chart.png?width=10&height=99999", nil)
		img, err := png.Decode(bytes.NewReader(body))
		if err != nil {
			t.Fatalf("png.Decode failed: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 2000 {
			t.Errorf("Bounds = %v", b)
		}
	})

	t.Run("Export", func(t *testing.T) {
		resp, body := get(t, server.URL+"/api/export?a=messi&b=ronaldo", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Status = %d", resp.StatusCode)
		}
		disposition, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
		if err != nil {
			t.Fatalf("ParseMediaType failed: %v", err)
		}
		if disposition != "attachment" || params["filename"] != "Lionel Messi_vs_Cristiano Ronaldo.png" {
			t.Errorf("Content-Disposition = %q", resp.Header.Get("Content-Disposition"))
		}
		if _, err := png.Decode(bytes.NewReader(body)); err != nil {
			t.Errorf("png.Decode failed: %v", err)
		}
	})
}

func TestServerFrontend(t *testing.T) {
	server := newTestServer(t)

	for _, tc := range []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/", "text/html; charset=utf-8", "link-compare"},
		{"/compare", "text/html; charset=utf-8", "btn-swap"},
		{"/js/compare.js", "application/javascript", "COMPARISON"},
		{"/css/style.css", "text/css; charset=utf-8", ""},
	} {
		t.Run(tc.path, func(t *testing.T) {
			resp, body := get(t, server.URL+tc.path, nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Status = %d", resp.StatusCode)
			}
			if got := resp.Header.Get("Content-Type"); got != tc.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tc.contentType)
			}
			if !strings.Contains(string(body), tc.contains) {
				t.Errorf("Body does not contain %q", tc.contains)
			}
			if resp.Header.Get("X-Frame-Options") != "DENY" {
				t.Error("Missing security headers")
			}
		})
	}
}

func TestStartServer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	srv, err := StartServer(Options{Listener: l, Catalog: mustCatalog(t)})
	if err != nil {
		t.Fatalf("StartServer failed: %v", err)
	}

	resp, _ := get(t, "http://"+l.Addr().String()+"/api/players", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Status = %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
