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

package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ttbt-io/playerradar/backend"
	"github.com/ttbt-io/playerradar/backend/chart"
	"github.com/ttbt-io/playerradar/tools/e2ehelpers"
)

var (
	chromeURL  = flag.String("chrome-url", "", "The url of the remote debugging port")
	outputDir  = flag.String("output-dir", "/screenshots", "Directory to save screenshots")
	chartsOnly = flag.Bool("charts-only", false, "Only render the comparison charts of every player pair and exit")
)

func main() {
	flag.Parse()

	// Ensure output dir exists
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	catalog, err := backend.NewCatalog(backend.DefaultPlayers())
	if err != nil {
		log.Fatalf("Failed to build catalog: %v", err)
	}

	if *chartsOnly {
		if err := renderCharts(catalog); err != nil {
			log.Fatalf("Failed to render charts: %v", err)
		}
		return
	}

	if *chromeURL == "" {
		log.Fatal("--chrome-url must be set")
	}

	baseURL := startServer(catalog)
	log.Printf("Server started at %s", baseURL)

	ctx, cancel := chromedp.NewRemoteAllocator(context.Background(), *chromeURL)
	defer cancel()

	ctx, cancel = chromedp.NewContext(ctx, chromedp.WithLogf(log.Printf))
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	log.Println("Starting screenshot generation...")

	if err := generateScreenshots(ctx, baseURL); err != nil {
		log.Fatalf("Failed to generate screenshots: %v", err)
	}

	log.Println("Screenshots generated successfully.")
}

// renderCharts writes the export of every ordered pair of players.
func renderCharts(catalog *backend.Catalog) error {
	players := catalog.Players()
	for _, a := range players {
		for _, b := range players {
			if a.ID == b.ID {
				continue
			}
			radar := chart.NewRadar(backend.BuildComparison(a, b), chart.DefaultOptions(), backend.DefaultChartWidth, backend.DefaultChartHeight)
			img, ok, err := backend.Export(radar, a, b)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := os.WriteFile(filepath.Join(*outputDir, img.Filename), img.Data, 0644); err != nil {
				return err
			}
			log.Printf("Rendered %s", img.Filename)
		}
	}
	return nil
}

func debugFailure(ctx context.Context, name string) {
	log.Printf("DEBUG: capturing failure info for %s", name)
	var htmlContent string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &htmlContent)); err != nil {
		log.Printf("DEBUG: Failed to capture HTML: %v", err)
	} else {
		log.Printf("DEBUG: HTML Dump for %s:\n%s", name, htmlContent)
	}
	if err := e2ehelpers.CaptureScreenshot(ctx, filepath.Join(*outputDir, fmt.Sprintf("debug-%s.png", name))); err != nil {
		log.Printf("DEBUG: Failed to capture screenshot: %v", err)
	}
}

// runAction executes a chromedp action with a timeout and debug capture on failure.
func runAction(ctx context.Context, name string, action chromedp.Action, timeout time.Duration) error {
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- chromedp.Run(stepCtx, action)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Printf("Action '%s' failed: %v", name, err)
			debugFailure(ctx, name+"-failed")
			return err
		}
		return nil
	case <-stepCtx.Done():
		log.Printf("Action '%s' timed out", name)
		debugFailure(ctx, name+"-timeout")
		return stepCtx.Err()
	}
}

func generateScreenshots(ctx context.Context, baseURL string) error {
	log.Println("Capturing: Landing")
	if err := runAction(ctx, "landing", chromedp.Tasks{
		chromedp.EmulateViewport(1200, 800),
		chromedp.Navigate(baseURL + "/"),
		e2ehelpers.DisableCSSAnimations(),
		chromedp.WaitVisible("#link-compare", chromedp.ByID),
	}, 10*time.Second); err != nil {
		return err
	}
	if err := captureScreenshot(ctx, "landing.png"); err != nil {
		return err
	}

	log.Println("Capturing: Comparator")
	if err := e2ehelpers.OpenComparator(ctx, baseURL); err != nil {
		debugFailure(ctx, "comparator")
		return err
	}
	if err := captureScreenshot(ctx, "compare-default.png"); err != nil {
		return err
	}

	log.Println("Capturing: Swap")
	if err := runAction(ctx, "swap", chromedp.Tasks{
		e2ehelpers.Swap(),
		e2ehelpers.WaitNames("Cristiano Ronaldo", "Lionel Messi"),
		e2ehelpers.WaitChart(),
	}, 10*time.Second); err != nil {
		return err
	}
	if err := captureScreenshot(ctx, "compare-swapped.png"); err != nil {
		return err
	}

	log.Println("Capturing: Selection")
	if err := runAction(ctx, "select", chromedp.Tasks{
		e2ehelpers.SelectPlayer("a", "mbappe"),
		e2ehelpers.SelectPlayer("b", "kante"),
		e2ehelpers.WaitNames("Kylian Mbappé", "N'Golo Kanté"),
		e2ehelpers.WaitChart(),
	}, 10*time.Second); err != nil {
		return err
	}
	return captureScreenshot(ctx, "compare-mbappe-kante.png")
}

func captureScreenshot(ctx context.Context, filename string) error {
	return e2ehelpers.CaptureScreenshot(ctx, filepath.Join(*outputDir, filename))
}

func startServer(catalog *backend.Catalog) string {
	cert, err := generateSelfSignedCert()
	if err != nil {
		log.Fatalf("Failed to generate cert: %v", err)
	}
	l, err := net.Listen("tcp", "0.0.0.0:0")
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	if _, err := backend.StartServer(backend.Options{
		Listener: l,
		Cert:     cert,
		Catalog:  catalog,
	}); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	_, port, _ := net.SplitHostPort(l.Addr().String())
	return fmt.Sprintf("https://devtest.local:%s", port)
}

func generateSelfSignedCert() (*tls.Certificate, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
		},
		NotBefore: time.Now(),
		NotAfter:  time.Now().Add(time.Hour * 24),

		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost", "devtest", "devtest.local"},
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return nil, err
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, err
	}
	return &cert, nil
}
