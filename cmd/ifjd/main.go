/*
Ifjd runs a compile daemon: a small HTTP service that accepts L source over
POST /v1/compile and returns emitted IFJcode24 (or a structured error),
backed by the result cache in internal/ifjcache so identical sources are not
recompiled.

Usage:

	ifjd [flags]

The flags are:

	-v, --version
		Give the current version of ifjd and then exit.

	-l, --listen ADDRESS
		Listen on the given address. Defaults to the config file's
		daemon.listen_addr, or localhost:8080 if that is empty too.

	-c, --config FILE
		Load daemon and compiler configuration from the given TOML file.

POST /v1/compile requests must carry "Authorization: Bearer <token>", where
the token is a JWT obtained from POST /v1/token by sending a JSON body with
"key_id" and "key"; the key is matched against the bcrypt hash configured
for that ID under daemon.api_key_hashes. GET /v1/healthz and POST /v1/token
need no token. No token is issued if the hash table is empty, which is the
default: an operator must explicitly provision at least one key before the
daemon will compile anything.
*/
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ifj24/ifjc/internal/ifjcache"
	"github.com/ifj24/ifjc/internal/ifjconfig"
	"github.com/ifj24/ifjc/internal/version"
	"github.com/spf13/pflag"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "gives the version info")
	flagListen  = pflag.StringP("listen", "l", "", "listen on the given address")
	flagConfig  = pflag.StringP("config", "c", "", "load daemon configuration from the given TOML file")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, err := ifjconfig.Load(*flagConfig)
	if err != nil {
		log.Fatalf("FATAL could not load config: %s", err.Error())
	}

	listenAddr := cfg.Daemon.ListenAddr
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr == "" {
		listenAddr = "localhost:8080"
	}

	var cache *ifjcache.Store
	if cfg.CachePath != "" {
		cache, err = ifjcache.Open(cfg.CachePath)
		if err != nil {
			log.Fatalf("FATAL could not open result cache: %s", err.Error())
		}
		defer cache.Close()
	}

	d := &daemon{cfg: cfg, cache: cache}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/v1/healthz", d.handleHealthz)
	r.Post("/v1/token", d.handleToken)
	r.Group(func(r chi.Router) {
		r.Use(d.requireJWT)
		r.Post("/v1/compile", d.handleCompile)
	})

	log.Printf("INFO  ifjd %s listening on %s", version.Current, listenAddr)
	if err := http.ListenAndServe(listenAddr, r); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL %s\n", err.Error())
		os.Exit(1)
	}
}
