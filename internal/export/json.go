// Package export reads and writes JSON snapshots of code graphs and flow
// summaries.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lenshq/codelens/internal/flow"
	"github.com/lenshq/codelens/internal/graph"
)

// GraphSnapshot is the top-level JSON export structure for a graph.
type GraphSnapshot struct {
	ExportedAt string          `json:"exportedAt"`
	Graph      graph.CodeGraph `json:"graph"`
}

// WriteGraph writes a snapshot of g to path.
func WriteGraph(path string, g graph.CodeGraph) error {
	snap := GraphSnapshot{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Graph:      g,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	return nil
}

// ReadGraph loads a snapshot written by WriteGraph.
func ReadGraph(path string) (graph.CodeGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return graph.CodeGraph{}, fmt.Errorf("read graph: %w", err)
	}
	var snap GraphSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return graph.CodeGraph{}, fmt.Errorf("unmarshal graph: %w", err)
	}
	g := snap.Graph
	// Maps omitted from older snapshots come back nil; normalize so the
	// store's copy-on-write helpers always have maps to copy.
	if g.Nodes == nil {
		g.Nodes = map[string]graph.GraphNode{}
	}
	if g.Relations == nil {
		g.Relations = map[string]graph.GraphRelation{}
	}
	return g, nil
}

// WriteFlowSummary writes the digest handed to the external narrative
// generator.
func WriteFlowSummary(path string, s flow.Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
