package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/lenshq/codelens/internal/export"
	"github.com/lenshq/codelens/internal/flow"
)

func runFlows(args []string) error {
	fs := flag.NewFlagSet("flows", flag.ContinueOnError)
	graphPath := fs.String("graph", defaultGraphPath("."), "path to the graph snapshot")
	scopeID := fs.String("scope", "", "restrict the digest to one top-level module")
	out := fs.String("out", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := loadGraph(*graphPath)
	if err != nil {
		return err
	}

	summary := flow.Build(g, *scopeID)

	if *out != "" {
		if err := export.WriteFlowSummary(*out, summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
