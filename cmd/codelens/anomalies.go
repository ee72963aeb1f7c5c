package main

import (
	"flag"
	"fmt"

	"github.com/lenshq/codelens/internal/anomaly"
	"github.com/lenshq/codelens/internal/config"
)

func runAnomalies(args []string) error {
	fs := flag.NewFlagSet("anomalies", flag.ContinueOnError)
	graphPath := fs.String("graph", defaultGraphPath("."), "path to the graph snapshot")
	projectRoot := fs.String("project-root", ".", "project directory holding codelens.yml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := loadGraph(*graphPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(*projectRoot)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	findings := anomaly.Detect(g, anomaly.Thresholds{
		HighCoupling: cfg.HighCouplingThreshold,
		GodNode:      cfg.GodNodeThreshold,
	})

	if len(findings) == 0 {
		fmt.Println("no anomalies found")
		return nil
	}

	for _, f := range findings {
		fmt.Printf("[%s] %s: %s\n", f.Severity, f.Type, f.Message)
	}
	fmt.Printf("%d finding(s)\n", len(findings))
	return nil
}
