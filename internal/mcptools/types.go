package mcptools

import (
	"github.com/lenshq/codelens/internal/anomaly"
	"github.com/lenshq/codelens/internal/flow"
	"github.com/lenshq/codelens/internal/graph"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// ScanCodebaseInput is the input for the scan_codebase MCP tool.
type ScanCodebaseInput struct {
	RepoPath    string   `json:"repoPath" jsonschema:"the absolute path to the repository to scan"`
	Languages   []string `json:"languages,omitempty" jsonschema:"languages to scan (default: all supported). Values: go, typescript, python, rust"`
	ExcludeDirs []string `json:"excludeDirs,omitempty" jsonschema:"directories to exclude from scanning (e.g. vendor, node_modules)"`
}

// ScanCodebaseOutput is the result of the scan_codebase MCP tool.
type ScanCodebaseOutput struct {
	GraphID string           `json:"graphId"`
	Stats   graph.GraphStats `json:"stats"`
}

// GraphStatsInput is the input for the graph_stats MCP tool.
type GraphStatsInput struct{}

// GraphStatsOutput is the result of the graph_stats MCP tool.
type GraphStatsOutput struct {
	GraphID string           `json:"graphId"`
	Name    string           `json:"name"`
	Stats   graph.GraphStats `json:"stats"`
}

// RenderDiagramInput is the input for the render_diagram MCP tool.
type RenderDiagramInput struct {
	LensID   string `json:"lensId,omitempty" jsonschema:"lens to render with (default: the active lens). Builtins: component, flow, domain"`
	FocusID  string `json:"focusId,omitempty" jsonschema:"node id to focus on; keeps the node plus its ancestors and descendants"`
	MinDepth *int   `json:"minDepth,omitempty" jsonschema:"override the lens's minimum visible depth (0=system .. 4=member)"`
	MaxDepth *int   `json:"maxDepth,omitempty" jsonschema:"override the lens's maximum visible depth (0=system .. 4=member)"`
}

// RenderDiagramOutput is the result of the render_diagram MCP tool.
type RenderDiagramOutput struct {
	LensID  string `json:"lensId"`
	Diagram string `json:"diagram"`
}

// RenderDomainViewInput is the input for the render_domain_view MCP tool.
type RenderDomainViewInput struct{}

// RenderDomainViewOutput is the result of the render_domain_view MCP tool.
type RenderDomainViewOutput struct {
	Diagram string `json:"diagram"`
}

// DetectAnomaliesInput is the input for the detect_anomalies MCP tool.
type DetectAnomaliesInput struct{}

// DetectAnomaliesOutput is the result of the detect_anomalies MCP tool.
type DetectAnomaliesOutput struct {
	Findings []anomaly.Finding `json:"findings"`
	Total    int               `json:"total"`
}

// FlowSummaryInput is the input for the flow_summary MCP tool.
type FlowSummaryInput struct {
	ScopeID string `json:"scopeId,omitempty" jsonschema:"restrict the digest to one top-level module and its descendants; empty means the whole graph"`
}

// FlowSummaryOutput is the result of the flow_summary MCP tool.
type FlowSummaryOutput struct {
	Summary flow.Summary `json:"summary"`
}

// SubmitFlowsInput is the input for the submit_flows MCP tool.
type SubmitFlowsInput struct {
	Candidates []flow.Candidate `json:"candidates" jsonschema:"externally generated flow candidates to validate and merge"`
}

// SubmitFlowsOutput is the result of the submit_flows MCP tool.
type SubmitFlowsOutput struct {
	FlowIDs  []string `json:"flowIds,omitempty"`
	Accepted int      `json:"accepted"`
	Warning  string   `json:"warning,omitempty"`
}

// AddNodeInput is the input for the add_node MCP tool.
type AddNodeInput struct {
	Name     string   `json:"name" jsonschema:"display name of the new node"`
	Kind     string   `json:"kind" jsonschema:"node kind: system, package, module, class, function, interface, variable, method, field"`
	ParentID string   `json:"parentId,omitempty" jsonschema:"parent node id (default: the root)"`
	Tags     []string `json:"tags,omitempty" jsonschema:"free-form tags used by lens filtering"`
}

// AddNodeOutput is the result of the add_node MCP tool.
type AddNodeOutput struct {
	NodeID string `json:"nodeId"`
}

// AddRelationInput is the input for the add_relation MCP tool.
type AddRelationInput struct {
	SourceID string `json:"sourceId" jsonschema:"source node id"`
	TargetID string `json:"targetId" jsonschema:"target node id"`
	Type     string `json:"type" jsonschema:"relation type: contains, depends_on, implements, inherits, calls, emits, subscribes, reads, writes"`
	Label    string `json:"label,omitempty" jsonschema:"optional edge label shown in diagrams"`
}

// AddRelationOutput is the result of the add_relation MCP tool.
type AddRelationOutput struct {
	RelationID string `json:"relationId"`
}

// RemoveNodeInput is the input for the remove_node MCP tool.
type RemoveNodeInput struct {
	NodeID string `json:"nodeId" jsonschema:"node to remove; all descendants and touching relations go with it"`
}

// RemoveNodeOutput is the result of the remove_node MCP tool.
type RemoveNodeOutput struct {
	Stats graph.GraphStats `json:"stats"`
}
