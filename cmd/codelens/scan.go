package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lenshq/codelens/internal/config"
	"github.com/lenshq/codelens/internal/export"
	"github.com/lenshq/codelens/internal/scan"
)

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	projectRoot := fs.String("project-root", ".", "path to the repository to scan")
	out := fs.String("out", "", "snapshot path (default: <project-root>/.codelens/graph.json)")
	name := fs.String("name", "", "graph name (default: the repository directory name)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := newLogger(*verbose)

	cfg, err := config.Load(*projectRoot)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Verbose {
		log = newLogger(true)
	}

	g, err := scan.Scan(context.Background(), *projectRoot, scan.Options{
		OwnerID:     "cli",
		Name:        *name,
		Languages:   cfg.Languages,
		ExcludeDirs: cfg.ExcludeDirs,
		Log:         log,
	})
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	path := *out
	if path == "" {
		path = defaultGraphPath(*projectRoot)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := export.WriteGraph(path, g); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	stats := g.Stats()
	fmt.Printf("scanned %s: %d nodes, %d relations -> %s\n", g.Name, stats.NodeCount, stats.RelationCount, path)
	return nil
}
