package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/markmhendrickson/site-mcp/internal/mcpserver"
	"github.com/markmhendrickson/site-mcp/internal/query"
	"github.com/markmhendrickson/site-mcp/internal/server"
	"github.com/markmhendrickson/site-mcp/internal/source"
)

const version = "0.2.0"

var (
	stdioMode  = pflag.Bool("stdio", false, "Serve MCP over stdio (the default mode)")
	httpMode   = pflag.Bool("http", false, "Serve the HTTP API instead of MCP over stdio")
	sourceFlag = pflag.String("source", "", "Record source: http, dir, or postgres (overrides SOURCE)")
)

type config struct {
	Source      string
	BaseURL     string
	DataDir     string
	DatabaseURL string
	Port        string
}

func loadConfig() config {
	_ = godotenv.Load()

	return config{
		Source:      envOrDefault("SOURCE", "http"),
		BaseURL:     envOrDefault("SITE_BASE_URL", source.DefaultBaseURL),
		DataDir:     envOrDefault("DATA_DIR", "data"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        envOrDefault("PORT", "8991"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	pflag.Parse()

	// MCP owns stdout; everything we log goes to stderr.
	log.SetOutput(os.Stderr)

	if *stdioMode && *httpMode {
		log.Fatal("--stdio and --http are mutually exclusive")
	}

	cfg := loadConfig()
	if *sourceFlag != "" {
		cfg.Source = *sourceFlag
	}

	if err := run(cfg, *httpMode); err != nil {
		log.Fatalf("site-mcp: %v", err)
	}
}

// run owns the source lifecycle: its cleanup is deferred here so every exit
// path releases the source before the process ends.
func run(cfg config, serveHTTP bool) error {
	src, cleanup, err := buildSource(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := query.New(src)

	if !serveHTTP {
		if err := mcpserver.New(svc, version).ServeStdio(); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	}

	srv := server.New(cfg.Port, cfg.Source, svc)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server stopped: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func buildSource(cfg config) (source.Source, func(), error) {
	noop := func() {}

	switch cfg.Source {
	case "http":
		return source.NewHTTPSource(cfg.BaseURL), noop, nil
	case "dir":
		return source.NewDirSource(cfg.DataDir), noop, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres source. Set it in .env or as an environment variable")
		}
		pg, err := source.NewPostgresSource(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown source %q (want http, dir, or postgres)", cfg.Source)
}
