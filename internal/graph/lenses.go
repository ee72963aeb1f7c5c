package graph

import "github.com/google/uuid"

// Built-in lens ids. These are stable (not generated) so tooling can refer
// to "component", "flow" and "domain" on any graph.
const (
	ComponentLensID = "component"
	FlowLensID      = "flow"
	DomainLensID    = "domain"
)

// BuiltinLenses returns the three lenses every new graph starts with,
// pre-populated with default filters and style rules.
func BuiltinLenses() []ViewLens {
	return []ViewLens{
		{
			ID:     ComponentLensID,
			Name:   "Components",
			Type:   LensComponent,
			Depths: DepthRange{Min: DepthSystem, Max: DepthFile},
			RelationTypes: []RelationType{
				RelationContains, RelationDependsOn, RelationImplements, RelationInherits,
			},
			StyleRules: []StyleRule{
				{
					Match: StyleMatch{Kinds: []NodeKind{NodeKindSystem}},
					Shape: ShapeHexagon,
					Style: "fill:#1e293b,stroke:#64748b,color:#f8fafc",
				},
				{
					Match: StyleMatch{Kinds: []NodeKind{NodeKindPackage}},
					Shape: ShapeRounded,
					Style: "fill:#134e4a,stroke:#2dd4bf,color:#f0fdfa",
				},
				{
					Match: StyleMatch{Kinds: []NodeKind{NodeKindInterface}},
					Shape: ShapeSubroutine,
					Style: "fill:#312e81,stroke:#818cf8,color:#eef2ff",
				},
			},
			Direction: "TD",
		},
		{
			ID:     FlowLensID,
			Name:   "Runtime Flow",
			Type:   LensFlow,
			Depths: DepthRange{Min: DepthPackage, Max: DepthMember},
			RelationTypes: []RelationType{
				RelationCalls, RelationEmits, RelationSubscribes, RelationReads, RelationWrites,
			},
			StyleRules: []StyleRule{
				{
					Match: StyleMatch{Kinds: []NodeKind{NodeKindFunction, NodeKindMethod}},
					Shape: ShapeStadium,
					Style: "fill:#422006,stroke:#fbbf24,color:#fffbeb",
				},
				{
					Match: StyleMatch{Kinds: []NodeKind{NodeKindVariable, NodeKindField}},
					Shape: ShapeCylinder,
					Style: "fill:#1c1917,stroke:#a8a29e,color:#fafaf9",
				},
			},
			Direction: "LR",
		},
		{
			ID:        DomainLensID,
			Name:      "Domain Concepts",
			Type:      LensDomain,
			Depths:    DepthRange{Min: DepthSystem, Max: DepthMember},
			Direction: "TD",
		},
	}
}

// AddLens attaches a lens to the graph. A lens without an id gets a fresh
// one. Every existing relation is back-filled with a true visibility entry
// for the new lens; without this, relations added before the lens would be
// invisible under it.
func AddLens(g CodeGraph, lens ViewLens) CodeGraph {
	if lens.ID == "" {
		lens.ID = uuid.NewString()
	}
	if _, exists := g.Lens(lens.ID); exists {
		return g
	}

	out := g.cloneRelations()
	out.Lenses = make([]ViewLens, len(g.Lenses), len(g.Lenses)+1)
	copy(out.Lenses, g.Lenses)
	out.Lenses = append(out.Lenses, lens)

	for id, rel := range out.Relations {
		vis := make(map[string]bool, len(rel.LensVisibility)+1)
		for k, v := range rel.LensVisibility {
			vis[k] = v
		}
		vis[lens.ID] = true
		rel.LensVisibility = vis
		out.Relations[id] = rel
	}
	return out
}

// RemoveLens detaches a lens and strips its visibility entries and node
// overrides. Removing the active lens falls back to the first remaining
// lens.
func RemoveLens(g CodeGraph, lensID string) CodeGraph {
	if _, ok := g.Lens(lensID); !ok {
		return g
	}

	out := g.cloneNodes().cloneRelations()
	out.Lenses = make([]ViewLens, 0, len(g.Lenses)-1)
	for _, l := range g.Lenses {
		if l.ID != lensID {
			out.Lenses = append(out.Lenses, l)
		}
	}

	for id, rel := range out.Relations {
		if _, ok := rel.LensVisibility[lensID]; !ok {
			continue
		}
		vis := make(map[string]bool, len(rel.LensVisibility))
		for k, v := range rel.LensVisibility {
			if k != lensID {
				vis[k] = v
			}
		}
		rel.LensVisibility = vis
		out.Relations[id] = rel
	}

	for id, node := range out.Nodes {
		if _, ok := node.LensOverrides[lensID]; !ok {
			continue
		}
		overrides := make(map[string]NodeOverride, len(node.LensOverrides))
		for k, v := range node.LensOverrides {
			if k != lensID {
				overrides[k] = v
			}
		}
		node.LensOverrides = overrides
		out.Nodes[id] = node
	}

	if out.ActiveLensID == lensID {
		out.ActiveLensID = ""
		if len(out.Lenses) > 0 {
			out.ActiveLensID = out.Lenses[0].ID
		}
	}
	return out
}

// SetActiveLens switches the active lens. Unknown ids are a no-op.
func SetActiveLens(g CodeGraph, lensID string) CodeGraph {
	if _, ok := g.Lens(lensID); !ok {
		return g
	}
	out := g.shallow()
	out.ActiveLensID = lensID
	return out
}

// SetNodeOverride records a per-lens visual override for one node.
func SetNodeOverride(g CodeGraph, nodeID, lensID string, override NodeOverride) CodeGraph {
	if _, ok := g.Lens(lensID); !ok {
		return g
	}
	return UpdateNode(g, nodeID, func(n GraphNode) GraphNode {
		overrides := make(map[string]NodeOverride, len(n.LensOverrides)+1)
		for k, v := range n.LensOverrides {
			overrides[k] = v
		}
		overrides[lensID] = override
		n.LensOverrides = overrides
		return n
	})
}
