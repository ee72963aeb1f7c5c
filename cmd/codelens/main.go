package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/lenshq/codelens/internal/export"
	"github.com/lenshq/codelens/internal/graph"
)

// version is set by the linker at build time.
var version = "dev"

const usage = `codelens <command> [flags]

Commands:
  scan       scan a repository and snapshot its code graph
  diagram    render the graph through a lens as Mermaid text
  anomalies  run structural checks against the graph
  flows      print the flow digest for an external generator
  export     print the graph snapshot as JSON
  serve-mcp  expose the graph tools over MCP (streamable HTTP)
  version    print the version and exit

Run 'codelens <command> -h' for command flags.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	switch args[0] {
	case "scan":
		return runScan(args[1:])
	case "diagram":
		return runDiagram(args[1:])
	case "anomalies":
		return runAnomalies(args[1:])
	case "flows":
		return runFlows(args[1:])
	case "export":
		return runExport(args[1:])
	case "serve-mcp":
		return runServeMCP(args[1:])
	case "version", "-version", "--version":
		fmt.Println(version)
		return nil
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// defaultGraphPath is where scan snapshots the graph inside a project.
func defaultGraphPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".codelens", "graph.json")
}

// loadGraph reads a snapshot, pointing the user at scan when none exists.
func loadGraph(path string) (graph.CodeGraph, error) {
	g, err := export.ReadGraph(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return graph.CodeGraph{}, fmt.Errorf("no graph snapshot at %s; run 'codelens scan' first", path)
		}
		return graph.CodeGraph{}, err
	}
	return g, nil
}

// newLogger builds the CLI logger; verbose switches it to debug level.
func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}
