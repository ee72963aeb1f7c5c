package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lenshq/codelens/internal/graph"
	"github.com/lenshq/codelens/internal/render"
)

func runDiagram(args []string) error {
	fs := flag.NewFlagSet("diagram", flag.ContinueOnError)
	graphPath := fs.String("graph", defaultGraphPath("."), "path to the graph snapshot")
	lensID := fs.String("lens", "", "lens to render with (default: the active lens)")
	focusID := fs.String("focus", "", "node id to focus on")
	minDepth := fs.Int("min-depth", -1, "override the lens's minimum visible depth")
	maxDepth := fs.Int("max-depth", -1, "override the lens's maximum visible depth")
	direction := fs.String("direction", "", "layout direction override (TD or LR)")
	out := fs.String("out", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := loadGraph(*graphPath)
	if err != nil {
		return err
	}

	var viewLens graph.ViewLens
	var ok bool
	if *lensID == "" {
		viewLens, ok = g.ActiveLens()
	} else {
		viewLens, ok = g.Lens(*lensID)
	}
	if !ok {
		return fmt.Errorf("unknown lens: %s", *lensID)
	}
	if *direction != "" {
		viewLens.Direction = *direction
	}

	var override *graph.DepthRange
	if *minDepth >= 0 || *maxDepth >= 0 {
		r := viewLens.Depths
		if *minDepth >= 0 {
			r.Min = *minDepth
		}
		if *maxDepth >= 0 {
			r.Max = *maxDepth
		}
		override = &r
	}

	diagram := render.Mermaid(g, viewLens, *focusID, override)

	if *out == "" {
		fmt.Print(diagram)
		return nil
	}
	if err := os.WriteFile(*out, []byte(diagram), 0o644); err != nil {
		return fmt.Errorf("write diagram: %w", err)
	}
	return nil
}
