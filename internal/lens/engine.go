// Package lens computes the node and relation subsets visible under a
// view lens, an optional focus node, and an optional depth override.
package lens

import (
	"sort"

	"github.com/lenshq/codelens/internal/graph"
)

// VisibleNodes returns the nodes admitted by the lens, in deterministic
// pre-order of the containment tree (stored child order).
//
// Domain-type lenses short-circuit to nil: the domain projection is
// rendered from the domain model by a separate path and never consults
// the technical node filters.
//
// A node is visible iff its per-lens override does not hide it, its kind
// and tags pass the lens filters, its depth falls within the effective
// range (depthOverride wins over the lens default), and — when a non-root
// focus node is set — it is the focus node, one of its ancestors (kept so
// the renderer can still nest the focused subgraph correctly), or one of
// its descendants.
func VisibleNodes(g graph.CodeGraph, lens graph.ViewLens, focusID string, depthOverride *graph.DepthRange) []graph.GraphNode {
	if lens.Type == graph.LensDomain {
		return nil
	}

	depths := lens.Depths
	if depthOverride != nil {
		depths = *depthOverride
	}

	focus := focusSet(g, focusID)

	var out []graph.GraphNode
	for _, node := range graph.PreOrder(g) {
		if override, ok := node.LensOverrides[lens.ID]; ok && override.Hidden {
			continue
		}
		if !kindAllowed(lens.Kinds, node.Kind) {
			continue
		}
		if !depths.Contains(node.Depth) {
			continue
		}
		if !tagsIntersect(lens.Tags, node.Tags) {
			continue
		}
		if focus != nil && !focus[node.ID] {
			continue
		}
		out = append(out, node)
	}
	return out
}

// VisibleRelations keeps a relation iff both endpoints are in the visible
// set, its type passes the lens's relation-type filter, and its per-lens
// visibility flag is not explicitly false. Results are sorted by relation
// id so emission order is stable.
func VisibleRelations(g graph.CodeGraph, lens graph.ViewLens, visible map[string]bool) []graph.GraphRelation {
	var out []graph.GraphRelation
	for _, rel := range g.Relations {
		if !visible[rel.SourceID] || !visible[rel.TargetID] {
			continue
		}
		if !typeAllowed(lens.RelationTypes, rel.Type) {
			continue
		}
		if flag, ok := rel.LensVisibility[lens.ID]; ok && !flag {
			continue
		}
		out = append(out, rel)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// VisibleSet returns the visible nodes as an id set, for feeding into
// VisibleRelations.
func VisibleSet(nodes []graph.GraphNode) map[string]bool {
	set := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		set[n.ID] = true
	}
	return set
}

// focusSet returns the id set a focus node admits (itself, its ancestors
// and its descendants), or nil when no scoping applies: empty focus, the
// root, or an id that does not resolve.
func focusSet(g graph.CodeGraph, focusID string) map[string]bool {
	if focusID == "" || focusID == g.RootID {
		return nil
	}
	if _, ok := g.Nodes[focusID]; !ok {
		return nil
	}

	set := map[string]bool{focusID: true}
	for _, a := range graph.Ancestors(g, focusID) {
		set[a.ID] = true
	}
	for _, d := range graph.Descendants(g, focusID) {
		set[d.ID] = true
	}
	return set
}

func kindAllowed(filter []graph.NodeKind, kind graph.NodeKind) bool {
	if len(filter) == 0 {
		return true
	}
	for _, k := range filter {
		if k == kind {
			return true
		}
	}
	return false
}

func typeAllowed(filter []graph.RelationType, typ graph.RelationType) bool {
	if len(filter) == 0 {
		return true
	}
	for _, t := range filter {
		if t == typ {
			return true
		}
	}
	return false
}

// tagsIntersect reports whether the node's tag set intersects the lens's
// tag filter. An empty filter admits everything.
func tagsIntersect(filter, tags []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		for _, t := range tags {
			if f == t {
				return true
			}
		}
	}
	return false
}
