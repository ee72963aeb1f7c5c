// Package mcptools exposes the graph over MCP. The service owns the
// canonical graph value behind a single-writer mutex; because every
// mutation produces a new CodeGraph value, readers work on snapshots and
// never block each other.
package mcptools

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/lenshq/codelens/internal/anomaly"
	"github.com/lenshq/codelens/internal/config"
	"github.com/lenshq/codelens/internal/flow"
	"github.com/lenshq/codelens/internal/graph"
	"github.com/lenshq/codelens/internal/render"
	"github.com/lenshq/codelens/internal/scan"
)

// GraphService holds the graph value manipulated by the MCP tool handlers.
type GraphService struct {
	mu  sync.RWMutex
	g   graph.CodeGraph
	cfg config.ProjectConfig
	log *logrus.Logger
}

// NewGraphService creates a GraphService around an empty graph.
func NewGraphService(cfg config.ProjectConfig, log *logrus.Logger) *GraphService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GraphService{
		g:   graph.NewGraph("mcp", "workspace"),
		cfg: cfg,
		log: log,
	}
}

// Graph returns a snapshot of the current graph value.
func (s *GraphService) Graph() graph.CodeGraph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g
}

// SetGraph replaces the current graph value.
func (s *GraphService) SetGraph(g graph.CodeGraph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.g = g
}

// ScanCodebase builds a fresh graph from a repository on disk and makes
// it the current graph.
func (s *GraphService) ScanCodebase(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ScanCodebaseInput,
) (*mcp.CallToolResult, ScanCodebaseOutput, error) {
	if input.RepoPath == "" {
		return nil, ScanCodebaseOutput{}, fmt.Errorf("repoPath is required")
	}

	languages := input.Languages
	if len(languages) == 0 {
		languages = s.cfg.Languages
	}
	excludes := append(append([]string(nil), s.cfg.ExcludeDirs...), input.ExcludeDirs...)

	g, err := scan.Scan(ctx, input.RepoPath, scan.Options{
		OwnerID:     "mcp",
		Languages:   languages,
		ExcludeDirs: excludes,
		Log:         s.log,
	})
	if err != nil {
		return nil, ScanCodebaseOutput{}, fmt.Errorf("scan: %w", err)
	}

	s.SetGraph(g)
	s.log.WithFields(logrus.Fields{"graph": g.ID, "nodes": len(g.Nodes)}).Info("scan complete")
	return nil, ScanCodebaseOutput{GraphID: g.ID, Stats: g.Stats()}, nil
}

// GraphStats reports counts for the current graph.
func (s *GraphService) GraphStats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ GraphStatsInput,
) (*mcp.CallToolResult, GraphStatsOutput, error) {
	g := s.Graph()
	return nil, GraphStatsOutput{GraphID: g.ID, Name: g.Name, Stats: g.Stats()}, nil
}

// RenderDiagram renders the current graph under a lens as Mermaid text.
func (s *GraphService) RenderDiagram(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RenderDiagramInput,
) (*mcp.CallToolResult, RenderDiagramOutput, error) {
	g := s.Graph()

	var viewLens graph.ViewLens
	var ok bool
	if input.LensID == "" {
		viewLens, ok = g.ActiveLens()
	} else {
		viewLens, ok = g.Lens(input.LensID)
	}
	if !ok {
		return nil, RenderDiagramOutput{}, fmt.Errorf("unknown lens: %s", input.LensID)
	}

	var override *graph.DepthRange
	if input.MinDepth != nil || input.MaxDepth != nil {
		r := viewLens.Depths
		if input.MinDepth != nil {
			r.Min = *input.MinDepth
		}
		if input.MaxDepth != nil {
			r.Max = *input.MaxDepth
		}
		override = &r
	}

	diagram := render.Mermaid(g, viewLens, input.FocusID, override)
	return nil, RenderDiagramOutput{LensID: viewLens.ID, Diagram: diagram}, nil
}

// RenderDomainView renders the business-concept projection as Mermaid text.
func (s *GraphService) RenderDomainView(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ RenderDomainViewInput,
) (*mcp.CallToolResult, RenderDomainViewOutput, error) {
	return nil, RenderDomainViewOutput{Diagram: render.DomainView(s.Graph())}, nil
}

// DetectAnomalies runs the structural checks against the current graph.
func (s *GraphService) DetectAnomalies(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ DetectAnomaliesInput,
) (*mcp.CallToolResult, DetectAnomaliesOutput, error) {
	findings := anomaly.Detect(s.Graph(), anomaly.Thresholds{
		HighCoupling: s.cfg.HighCouplingThreshold,
		GodNode:      s.cfg.GodNodeThreshold,
	})
	return nil, DetectAnomaliesOutput{Findings: findings, Total: len(findings)}, nil
}

// FlowSummary builds the structural digest consumed by the external
// narrative generator.
func (s *GraphService) FlowSummary(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input FlowSummaryInput,
) (*mcp.CallToolResult, FlowSummaryOutput, error) {
	return nil, FlowSummaryOutput{Summary: flow.Build(s.Graph(), input.ScopeID)}, nil
}

// SubmitFlows validates externally generated flow candidates and merges
// the accepted ones into the graph.
func (s *GraphService) SubmitFlows(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SubmitFlowsInput,
) (*mcp.CallToolResult, SubmitFlowsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	valid, warning := flow.ValidateBatch(s.g, input.Candidates, s.cfg.FlowAcceptRatio)
	if warning != "" {
		s.log.WithField("candidates", len(input.Candidates)).Warn(warning)
		return nil, SubmitFlowsOutput{Warning: warning}, nil
	}

	g, ids := flow.Merge(s.g, valid)
	s.g = g
	return nil, SubmitFlowsOutput{FlowIDs: ids, Accepted: len(ids)}, nil
}

// AddNode inserts a node under the given parent (default: the root).
func (s *GraphService) AddNode(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AddNodeInput,
) (*mcp.CallToolResult, AddNodeOutput, error) {
	if input.Name == "" {
		return nil, AddNodeOutput{}, fmt.Errorf("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parentID := input.ParentID
	if parentID == "" {
		parentID = s.g.RootID
	}

	g, id := graph.AddNode(s.g, graph.GraphNode{
		Name: input.Name,
		Kind: graph.NodeKind(input.Kind),
		Tags: input.Tags,
	}, parentID)
	if id == "" {
		return nil, AddNodeOutput{}, fmt.Errorf("cannot add node under %s", parentID)
	}

	s.g = g
	return nil, AddNodeOutput{NodeID: id}, nil
}

// AddRelation links two nodes with a typed edge. Endpoints are not
// checked: a relation may reference nodes that arrive later, and the
// anomaly detector reports the ones that never do.
func (s *GraphService) AddRelation(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AddRelationInput,
) (*mcp.CallToolResult, AddRelationOutput, error) {
	if input.SourceID == "" || input.TargetID == "" {
		return nil, AddRelationOutput{}, fmt.Errorf("sourceId and targetId are required")
	}
	if input.Type == "" {
		return nil, AddRelationOutput{}, fmt.Errorf("type is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, id := graph.AddRelation(s.g, input.SourceID, input.TargetID, graph.RelationType(input.Type), input.Label)
	s.g = g
	return nil, AddRelationOutput{RelationID: id}, nil
}

// RemoveNode deletes a node, its descendants, and every relation touching
// them. The root is refused here; clearing a workspace means scanning or
// setting a fresh graph, not beheading the current one.
func (s *GraphService) RemoveNode(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RemoveNodeInput,
) (*mcp.CallToolResult, RemoveNodeOutput, error) {
	if input.NodeID == "" {
		return nil, RemoveNodeOutput{}, fmt.Errorf("nodeId is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if input.NodeID == s.g.RootID {
		return nil, RemoveNodeOutput{}, fmt.Errorf("cannot remove the root node")
	}
	if _, ok := s.g.Nodes[input.NodeID]; !ok {
		return nil, RemoveNodeOutput{}, fmt.Errorf("unknown node: %s", input.NodeID)
	}

	s.g = graph.RemoveNode(s.g, input.NodeID)
	return nil, RemoveNodeOutput{Stats: s.g.Stats()}, nil
}
