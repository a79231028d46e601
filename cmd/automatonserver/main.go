/*
Automatonserver starts the finautomata HTTP API and begins listening for new
connections.

Usage:

	automatonserver [flags]
	automatonserver [flags] -l [[ADDRESS]:PORT]

Once started, the server listens for HTTP requests and responds to them using
a JSON REST API rooted at /api/v1. By default it listens on :8080, the
configured default ServerAddr.
This can be changed with the --listen/-l flag or the FINAUTOMATA_LISTEN_ADDRESS
environment variable.

If a JWT token secret is not given, one is automatically generated at
startup. As a consequence, in this mode of operation all tokens become
invalid as soon as the server restarts. This is suitable for local use and
testing, but a stable secret must be given via either the CLI flag or the
environment variable if running in production.

The flags are:

	-v, --version
		Give the current version of automatonserver and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, defaults to the value of environment variable
		FINAUTOMATA_LISTEN_ADDRESS, and if that is not given, defaults to the
		configured ServerAddr, and if that is empty, localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If not given, defaults
		to the value of environment variable FINAUTOMATA_TOKEN_SECRET. If no
		secret is specified, a random one is generated for the life of the
		process.

	--db DRIVER[:PATH]
		Use the given storage backend. DRIVER must be "memory" or "sqlite";
		sqlite requires a path to the database file, e.g. sqlite:/var/lib/
		finautomata/machines.db. If not given, defaults to the value of
		environment variable FINAUTOMATA_DATABASE, and if that is empty, the
		configured Storage backend is used.
*/
package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/brannigan/finautomata/internal/config"
	"github.com/brannigan/finautomata/internal/httpapi"
	"github.com/brannigan/finautomata/internal/store"
	"github.com/brannigan/finautomata/internal/store/memory"
	"github.com/brannigan/finautomata/internal/store/sqlite"
	"github.com/brannigan/finautomata/internal/version"
)

const (
	EnvListen = "FINAUTOMATA_LISTEN_ADDRESS"
	EnvSecret = "FINAUTOMATA_TOKEN_SECRET"
	EnvDB     = "FINAUTOMATA_DATABASE"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of automatonserver and then exit.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for JWT signing.")
	flagDB      = pflag.String("db", "", "Use the given storage backend: memory or sqlite:PATH.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("automatonserver %s\n", version.Current)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %s\n", err.Error())
		os.Exit(1)
	}

	addr := resolveListenAddr(cfg)
	st, err := resolveStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
	defer st.Close()

	secret := resolveSecret()

	api := httpapi.New(st, secret)

	log.Printf("INFO  automatonserver %s listening on %s", version.Current, addr)
	if err := http.ListenAndServe(addr, api.Router()); err != nil {
		log.Fatalf("FATAL server exited: %s", err.Error())
	}
}

func resolveListenAddr(cfg config.Config) string {
	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr != "" {
		return listenAddr
	}
	if cfg.ServerAddr != "" {
		return cfg.ServerAddr
	}
	return "localhost:8080"
}

func resolveStore(cfg config.Config) (store.Store, error) {
	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}

	driver := string(cfg.Storage)
	path := cfg.SQLitePath
	pathFromConfig := true
	if dbConnStr != "" {
		parts := strings.SplitN(dbConnStr, ":", 2)
		driver = parts[0]
		if len(parts) == 2 {
			path = parts[1]
			pathFromConfig = false
		}
	}

	switch strings.ToLower(driver) {
	case "", string(config.StorageMemory):
		return memory.New(), nil
	case string(config.StorageSQLite):
		if path == "" {
			return nil, fmt.Errorf("sqlite storage backend requires a path")
		}
		if pathFromConfig && !filepath.IsAbs(path) {
			resolved, err := config.DataPath(path)
			if err != nil {
				return nil, err
			}
			path = resolved
		}
		return sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", driver)
	}
}

func resolveSecret() []byte {
	secret := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		secret = *flagSecret
	}
	if secret != "" {
		return []byte(secret)
	}

	random := make([]byte, 64)
	if _, err := rand.Read(random); err != nil {
		log.Fatalf("FATAL could not generate token secret: %s", err.Error())
	}
	log.Printf("WARN  using generated token secret; all tokens issued will become invalid at restart")
	return random
}
