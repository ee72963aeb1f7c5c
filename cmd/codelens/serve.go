package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lenshq/codelens/internal/config"
	"github.com/lenshq/codelens/internal/mcptools"
)

func runServeMCP(args []string) error {
	fs := flag.NewFlagSet("serve-mcp", flag.ContinueOnError)
	addr := fs.String("addr", ":8123", "listen address for the MCP HTTP server")
	projectRoot := fs.String("project-root", ".", "project directory holding codelens.yml")
	graphPath := fs.String("graph", "", "warm-start from a graph snapshot (default: none)")
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

	svc := mcptools.NewGraphService(*cfg, log)

	if *graphPath != "" {
		g, err := loadGraph(*graphPath)
		if err != nil {
			return err
		}
		svc.SetGraph(g)
		log.WithField("graph", g.ID).Info("loaded graph snapshot")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("addr", *addr).Info("serving MCP tools")
	return mcptools.RunMCPServer(ctx, svc, *addr)
}
