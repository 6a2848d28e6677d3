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
	"crypto/tls"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/c2FmZQ/storage"
	"github.com/ttbt-io/playerradar/backend"
)

// main loads the catalog once and starts the web server.
func main() {
	envCfg, err := backend.ParseEnv()
	if err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}

	var (
		addr        = flag.String("addr", envCfg.Addr, "The TCP address to listen to")
		debugMode   = flag.Bool("debug", envCfg.Debug, "Enable debug mode")
		catalogKind = flag.String("catalog", envCfg.Catalog, "Catalog source: builtin, file, sqlite, postgres or redis")
		catalogDSN  = flag.String("catalog-dsn", envCfg.CatalogDSN, "Database path, postgres DSN or redis URL of the catalog source")
		redisPrefix = flag.String("redis-prefix", envCfg.RedisPrefix, "Key prefix of the redis catalog")
		seedCatalog = flag.Bool("seed-catalog", false, "Write the built-in players into an empty catalog source before loading")
		dataDir     = flag.String("data-dir", envCfg.DataDir, "Directory for the catalog file")
		tlsCert     = flag.String("tls-cert", "", "Path to main HTTP TLS certificate")
		tlsKey      = flag.String("tls-key", "", "Path to main HTTP TLS key")
		chartWidth  = flag.Int("chart-width", envCfg.ChartWidth, "Default width of rendered charts")
		chartHeight = flag.Int("chart-height", envCfg.ChartHeight, "Default height of rendered charts")
	)
	flag.Parse()

	var mainTLSCert *tls.Certificate
	if *tlsCert != "" && *tlsKey != "" {
		cert, err := tls.LoadX509KeyPair(*tlsCert, *tlsKey)
		if err != nil {
			log.Fatalf("Failed to load main TLS cert/key: %v", err)
		}
		mainTLSCert = &cert
	}

	var store *storage.Storage
	if *catalogKind == backend.CatalogFile {
		if store, err = backend.OpenStorage(*dataDir, envCfg.MasterKey); err != nil {
			log.Fatalf("Failed to open storage: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	catalog, err := backend.OpenCatalog(ctx, backend.CatalogConfig{
		Kind:        *catalogKind,
		DSN:         *catalogDSN,
		RedisPrefix: *redisPrefix,
		Seed:        *seedCatalog,
		DataDir:     *dataDir,
		Storage:     store,
	})
	cancel()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	server, err := backend.StartServer(backend.Options{
		Addr:        *addr,
		Cert:        mainTLSCert,
		Debug:       *debugMode,
		Catalog:     catalog,
		ChartWidth:  *chartWidth,
		ChartHeight: *chartHeight,
	})
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	// Wait for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	} else {
		log.Println("Gracefully stopped.")
	}
}
