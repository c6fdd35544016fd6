package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/localstore"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "seed":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: spacetraveling seed <fixtures.yaml>")
			os.Exit(1)
		}
		if err := runSeed(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("spacetraveling %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func runServe() error {
	cfg, err := spacetraveling.LoadConfig(".env")
	if err != nil {
		return err
	}
	logger := spacetraveling.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	src, closeSource, err := spacetraveling.OpenSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	app, err := spacetraveling.New(cfg, src, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func runSeed(path string) error {
	cfg, err := spacetraveling.LoadConfig(".env")
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	docs, err := localstore.LoadFixtures(f)
	if err != nil {
		return err
	}
	store, err := localstore.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Seed(context.Background(), docs)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d documents into %s\n", n, cfg.DatabasePath)
	return nil
}

func printUsage() {
	fmt.Println(`spacetraveling - A blog front end for Prismic content, built with Go, Echo, and templ

Usage:
  spacetraveling [command] [arguments]

Commands:
  serve                 Start the web server (default)
  seed <fixtures.yaml>  Load YAML fixtures into the local document store
  version               Print the spacetraveling version
  help                  Show this help message

Environment:
  SESSION_SECRET        Required: session encryption secret
  CONTENT_SOURCE        "local" (default) or "prismic"
  PRISMIC_ENDPOINT      e.g. https://your-repo.cdn.prismic.io/api/v2
  PRISMIC_TOKEN         Optional access token
  DATABASE_PATH         Local store path (default data/documents.db)
  SITE_NAME, SITE_URL, SITE_DESCRIPTION, SITE_AUTHOR, SITE_TIMEZONE
  REVALIDATE_SECRET     Enables POST /api/revalidate

Examples:
  spacetraveling seed fixtures.yaml
  CONTENT_SOURCE=prismic spacetraveling serve`)
}
