// Package anomaly runs structural validation rules over a full code
// graph, independent of any lens. Detection is read-only and advisory: it
// never mutates the graph and never blocks a mutation.
package anomaly

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lenshq/codelens/internal/graph"
)

// Severity grades a finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// FindingType identifies which check produced a finding.
type FindingType string

const (
	TypeOrphanNode         FindingType = "orphan_node"
	TypeBrokenReference    FindingType = "broken_reference"
	TypeCircularDependency FindingType = "circular_dependency"
	TypeHighCoupling       FindingType = "high_coupling"
	TypeGodNode            FindingType = "god_node"
)

// Finding is one structural issue with the ids it implicates.
type Finding struct {
	Type        FindingType `json:"type"`
	Severity    Severity    `json:"severity"`
	Message     string      `json:"message"`
	NodeIDs     []string    `json:"nodeIds,omitempty"`
	RelationIDs []string    `json:"relationIds,omitempty"`
}

// Thresholds are the tunable limits for the coupling checks.
type Thresholds struct {
	HighCoupling int // max outgoing non-contains relations per node
	GodNode      int // max incoming non-contains relations per node
}

// DefaultThresholds returns the stock limits.
func DefaultThresholds() Thresholds {
	return Thresholds{HighCoupling: 8, GodNode: 10}
}

// Detect runs all five checks and returns findings in a deterministic
// order: check by check, then sorted ids within each check.
func Detect(g graph.CodeGraph, th Thresholds) []Finding {
	if th.HighCoupling <= 0 {
		th.HighCoupling = DefaultThresholds().HighCoupling
	}
	if th.GodNode <= 0 {
		th.GodNode = DefaultThresholds().GodNode
	}

	var findings []Finding
	findings = append(findings, orphanNodes(g)...)
	findings = append(findings, brokenReferences(g)...)
	findings = append(findings, circularDependencies(g)...)
	findings = append(findings, coupling(g, th)...)
	return findings
}

// orphanNodes flags non-root nodes whose ParentID does not resolve.
func orphanNodes(g graph.CodeGraph) []Finding {
	var out []Finding
	for _, id := range sortedNodeIDs(g) {
		node := g.Nodes[id]
		if node.ID == g.RootID {
			continue
		}
		if _, ok := g.Nodes[node.ParentID]; !ok {
			out = append(out, Finding{
				Type:     TypeOrphanNode,
				Severity: SeverityError,
				Message:  fmt.Sprintf("node %q has no resolvable parent", node.Name),
				NodeIDs:  []string{node.ID},
			})
		}
	}
	return out
}

// brokenReferences flags relations with a dangling endpoint. The store
// admits these deliberately (a relation may be added before its target),
// so the condition is surfaced here instead of failing mutation.
func brokenReferences(g graph.CodeGraph) []Finding {
	var out []Finding
	for _, id := range sortedRelationIDs(g) {
		rel := g.Relations[id]
		_, srcOK := g.Nodes[rel.SourceID]
		_, tgtOK := g.Nodes[rel.TargetID]
		if srcOK && tgtOK {
			continue
		}
		out = append(out, Finding{
			Type:        TypeBrokenReference,
			Severity:    SeverityError,
			Message:     fmt.Sprintf("%s relation references a missing node", rel.Type),
			RelationIDs: []string{rel.ID},
		})
	}
	return out
}

// circularDependencies reports each dependency cycle once, with the full
// path of node names. The search runs depth-first over non-contains
// relations, tracking a recursion stack; revisiting a node already on the
// stack closes the cycle from its first occurrence to the current node.
func circularDependencies(g graph.CodeGraph) []Finding {
	adj := make(map[string][]string)
	for _, id := range sortedRelationIDs(g) {
		rel := g.Relations[id]
		if rel.Type == graph.RelationContains {
			continue
		}
		if _, ok := g.Nodes[rel.SourceID]; !ok {
			continue
		}
		if _, ok := g.Nodes[rel.TargetID]; !ok {
			continue
		}
		adj[rel.SourceID] = append(adj[rel.SourceID], rel.TargetID)
	}

	var out []Finding
	seen := map[string]bool{}    // cycles already reported, by canonical key
	visited := map[string]bool{} // fully explored nodes
	onStack := map[string]bool{} // recursion stack membership
	var stack []string

	var dfs func(id string)
	dfs = func(id string) {
		visited[id] = true
		onStack[id] = true
		stack = append(stack, id)

		for _, next := range adj[id] {
			if onStack[next] {
				start := 0
				for i, sid := range stack {
					if sid == next {
						start = i
						break
					}
				}
				cycle := append([]string(nil), stack[start:]...)
				key := canonicalCycleKey(cycle)
				if !seen[key] {
					seen[key] = true
					names := make([]string, len(cycle))
					for i, nid := range cycle {
						names[i] = g.Nodes[nid].Name
					}
					out = append(out, Finding{
						Type:     TypeCircularDependency,
						Severity: SeverityError,
						Message:  fmt.Sprintf("circular dependency: %s", strings.Join(names, " -> ")),
						NodeIDs:  cycle,
					})
				}
				continue
			}
			if !visited[next] {
				dfs(next)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[id] = false
	}

	for _, id := range sortedNodeIDs(g) {
		if !visited[id] {
			dfs(id)
		}
	}
	return out
}

// canonicalCycleKey rotates a cycle so its smallest id comes first, making
// every rotation of the same cycle map to one key.
func canonicalCycleKey(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	lowest := 0
	for i, id := range cycle {
		if id < cycle[lowest] {
			lowest = i
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, cycle[lowest:]...)
	rotated = append(rotated, cycle[:lowest]...)
	return strings.Join(rotated, "|")
}

// coupling flags nodes whose non-contains fan-out exceeds the high
// coupling threshold or whose fan-in exceeds the god-node threshold.
func coupling(g graph.CodeGraph, th Thresholds) []Finding {
	outgoing := map[string]int{}
	incoming := map[string]int{}
	for _, rel := range g.Relations {
		if rel.Type == graph.RelationContains {
			continue
		}
		outgoing[rel.SourceID]++
		incoming[rel.TargetID]++
	}

	var out []Finding
	for _, id := range sortedNodeIDs(g) {
		node := g.Nodes[id]
		if n := outgoing[id]; n > th.HighCoupling {
			out = append(out, Finding{
				Type:     TypeHighCoupling,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("node %q has %d outgoing relations (threshold %d)", node.Name, n, th.HighCoupling),
				NodeIDs:  []string{id},
			})
		}
	}
	for _, id := range sortedNodeIDs(g) {
		node := g.Nodes[id]
		if n := incoming[id]; n > th.GodNode {
			out = append(out, Finding{
				Type:     TypeGodNode,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("node %q has %d incoming relations (threshold %d)", node.Name, n, th.GodNode),
				NodeIDs:  []string{id},
			})
		}
	}
	return out
}

func sortedNodeIDs(g graph.CodeGraph) []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedRelationIDs(g graph.CodeGraph) []string {
	ids := make([]string, 0, len(g.Relations))
	for id := range g.Relations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
