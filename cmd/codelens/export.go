package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/lenshq/codelens/internal/export"
)

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	graphPath := fs.String("graph", defaultGraphPath("."), "path to the graph snapshot")
	out := fs.String("out", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := loadGraph(*graphPath)
	if err != nil {
		return err
	}

	if *out != "" {
		if err := export.WriteGraph(*out, g); err != nil {
			return fmt.Errorf("write graph: %w", err)
		}
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}
