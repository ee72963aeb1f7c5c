package flow

import (
	"fmt"
	"sort"

	"github.com/lenshq/codelens/internal/graph"
)

// DefaultAcceptRatio is the share of a candidate batch that must validate
// for the batch to be accepted at all. This is a deliberate leniency
// policy, tunable via configuration, not a derived constant.
const DefaultAcceptRatio = 0.5

// Candidate is one externally generated flow before validation.
type Candidate struct {
	Name    string           `json:"name"`
	ScopeID string           `json:"scopeId"`
	Steps   []graph.FlowStep `json:"steps"`
	Diagram string           `json:"diagram,omitempty"`
}

// ValidateBatch checks externally supplied candidates against the graph.
// A candidate is valid when its scope is the root or a known depth-1
// node, it has at least two steps, and every step references a known
// node. If fewer than acceptRatio of the batch validates, the whole batch
// is rejected: an empty result plus a warning string, never a partial
// silently-corrupted merge. Otherwise only the valid entries are
// returned, their steps sorted by order.
func ValidateBatch(g graph.CodeGraph, candidates []Candidate, acceptRatio float64) ([]graph.GraphFlow, string) {
	if len(candidates) == 0 {
		return nil, ""
	}
	if acceptRatio <= 0 || acceptRatio > 1 {
		acceptRatio = DefaultAcceptRatio
	}

	var valid []graph.GraphFlow
	for _, c := range candidates {
		if !validCandidate(g, c) {
			continue
		}
		steps := append([]graph.FlowStep(nil), c.Steps...)
		sort.SliceStable(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })
		valid = append(valid, graph.GraphFlow{
			Name:    c.Name,
			ScopeID: c.ScopeID,
			Steps:   steps,
			Diagram: c.Diagram,
		})
	}

	if float64(len(valid)) < acceptRatio*float64(len(candidates)) {
		return nil, fmt.Sprintf(
			"flow batch rejected: %d of %d candidates validated (minimum %.0f%%)",
			len(valid), len(candidates), acceptRatio*100)
	}
	return valid, ""
}

// Merge stores validated flows on the graph, returning the new graph
// value and the assigned ids.
func Merge(g graph.CodeGraph, flows []graph.GraphFlow) (graph.CodeGraph, []string) {
	ids := make([]string, 0, len(flows))
	for _, f := range flows {
		var id string
		g, id = graph.AddFlow(g, f)
		ids = append(ids, id)
	}
	return g, ids
}

func validCandidate(g graph.CodeGraph, c Candidate) bool {
	if len(c.Steps) < 2 {
		return false
	}
	scope, ok := g.Nodes[c.ScopeID]
	if !ok {
		return false
	}
	if scope.ID != g.RootID && scope.Depth != graph.DepthPackage {
		return false
	}
	for _, step := range c.Steps {
		if _, ok := g.Nodes[step.NodeID]; !ok {
			return false
		}
	}
	return true
}
