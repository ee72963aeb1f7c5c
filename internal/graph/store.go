package graph

import "github.com/google/uuid"

// Mutation operations. Every operation takes a CodeGraph by value and
// returns a new one; callers can keep old values for undo or diffing.
// Invalid ids are treated as no-ops rather than errors, because graphs are
// edited incrementally and transiently inconsistent states must not fail.

// NewGraph creates a graph with a single system root node and the three
// built-in lenses (component, flow, domain).
func NewGraph(ownerID, name string) CodeGraph {
	rootID := uuid.NewString()
	g := CodeGraph{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    name,
		RootID:  rootID,
		Nodes: map[string]GraphNode{
			rootID: {ID: rootID, Name: name, Kind: NodeKindSystem, Depth: DepthSystem},
		},
		Relations: map[string]GraphRelation{},
	}
	for _, lens := range BuiltinLenses() {
		g = AddLens(g, lens)
	}
	g.ActiveLensID = g.Lenses[0].ID
	return g
}

// AddNode assigns a fresh id to node, attaches it under parentID and
// returns the new graph plus the id. The parent must exist and must not
// already sit at MaxDepth; otherwise the graph is returned unchanged with
// an empty id. ParentID, Depth and Children of the input are overwritten.
//
// AddNode does not create a contains relation; mirroring the tree in the
// relation set is the caller's choice.
func AddNode(g CodeGraph, node GraphNode, parentID string) (CodeGraph, string) {
	parent, ok := g.Nodes[parentID]
	if !ok || parent.Depth >= MaxDepth {
		return g, ""
	}

	node.ID = uuid.NewString()
	node.ParentID = parentID
	node.Depth = parent.Depth + 1
	node.Children = nil

	out := g.cloneNodes()
	parent.Children = appendCopy(parent.Children, node.ID)
	out.Nodes[parentID] = parent
	out.Nodes[node.ID] = node
	return out, node.ID
}

// UpdateNode applies fn to a copy of the node and stores the result.
// Identity and tree placement (ID, ParentID, Depth, Children) are
// preserved regardless of what fn changes.
func UpdateNode(g CodeGraph, nodeID string, fn func(GraphNode) GraphNode) CodeGraph {
	node, ok := g.Nodes[nodeID]
	if !ok {
		return g
	}
	updated := fn(node)
	updated.ID = node.ID
	updated.ParentID = node.ParentID
	updated.Depth = node.Depth
	updated.Children = node.Children

	out := g.cloneNodes()
	out.Nodes[nodeID] = updated
	return out
}

// RemoveNode removes the node and its full descendant closure, every
// relation touching a removed id, and matching sync-lock entries, then
// detaches the id from its parent's children list. Guarding against root
// removal is a policy decision made one layer up; the store removes
// faithfully whatever it is asked to remove.
func RemoveNode(g CodeGraph, nodeID string) CodeGraph {
	node, ok := g.Nodes[nodeID]
	if !ok {
		return g
	}

	removed := map[string]bool{nodeID: true}
	for _, d := range Descendants(g, nodeID) {
		removed[d.ID] = true
	}

	out := g.clone()
	for id := range removed {
		delete(out.Nodes, id)
		delete(out.SyncLocks, id)
	}
	for id, rel := range out.Relations {
		if removed[rel.SourceID] || removed[rel.TargetID] {
			delete(out.Relations, id)
		}
	}

	if parent, ok := out.Nodes[node.ParentID]; ok {
		parent.Children = removeString(parent.Children, nodeID)
		out.Nodes[node.ParentID] = parent
	}
	return out
}

// AddRelation creates a relation between sourceID and targetID with
// per-lens visibility defaulted to true for every lens currently on the
// graph. Endpoints are not required to resolve yet: a relation may be
// added before its target node, and dangling relations are filtered at
// read time and reported by anomaly detection.
func AddRelation(g CodeGraph, sourceID, targetID string, typ RelationType, label string) (CodeGraph, string) {
	if sourceID == "" || targetID == "" {
		return g, ""
	}

	visibility := make(map[string]bool, len(g.Lenses))
	for _, lens := range g.Lenses {
		visibility[lens.ID] = true
	}

	rel := GraphRelation{
		ID:             uuid.NewString(),
		SourceID:       sourceID,
		TargetID:       targetID,
		Type:           typ,
		Label:          label,
		LensVisibility: visibility,
	}

	out := g.cloneRelations()
	out.Relations[rel.ID] = rel
	return out, rel.ID
}

// RemoveRelation removes a single relation. No cascade.
func RemoveRelation(g CodeGraph, relationID string) CodeGraph {
	if _, ok := g.Relations[relationID]; !ok {
		return g
	}
	out := g.cloneRelations()
	delete(out.Relations, relationID)
	return out
}

// SetSyncLocks replaces the sync-lock map with scanner output, keyed by
// node id. Entries for unknown nodes are dropped.
func SetSyncLocks(g CodeGraph, entries []SyncLockEntry) CodeGraph {
	out := g.shallow()
	out.SyncLocks = make(map[string]SyncLockEntry, len(entries))
	for _, e := range entries {
		if _, ok := g.Nodes[e.NodeID]; ok {
			out.SyncLocks[e.NodeID] = e
		}
	}
	return out
}

// AddFlow stores a flow record under a fresh id.
func AddFlow(g CodeGraph, flow GraphFlow) (CodeGraph, string) {
	flow.ID = uuid.NewString()
	out := g.shallow()
	out.Flows = make(map[string]GraphFlow, len(g.Flows)+1)
	for id, f := range g.Flows {
		out.Flows[id] = f
	}
	out.Flows[flow.ID] = flow
	return out, flow.ID
}

// RemoveFlow removes a flow record.
func RemoveFlow(g CodeGraph, flowID string) CodeGraph {
	if _, ok := g.Flows[flowID]; !ok {
		return g
	}
	out := g.shallow()
	out.Flows = make(map[string]GraphFlow, len(g.Flows))
	for id, f := range g.Flows {
		if id != flowID {
			out.Flows[id] = f
		}
	}
	return out
}

// --- copy-on-write helpers ---

// shallow copies the aggregate without duplicating any map.
func (g CodeGraph) shallow() CodeGraph {
	return g
}

// cloneNodes copies the aggregate with a fresh node map.
func (g CodeGraph) cloneNodes() CodeGraph {
	out := g
	out.Nodes = make(map[string]GraphNode, len(g.Nodes)+1)
	for id, n := range g.Nodes {
		out.Nodes[id] = n
	}
	return out
}

// cloneRelations copies the aggregate with a fresh relation map.
func (g CodeGraph) cloneRelations() CodeGraph {
	out := g
	out.Relations = make(map[string]GraphRelation, len(g.Relations)+1)
	for id, r := range g.Relations {
		out.Relations[id] = r
	}
	return out
}

// clone copies the aggregate with fresh node, relation and sync-lock maps.
func (g CodeGraph) clone() CodeGraph {
	out := g.cloneNodes().cloneRelations()
	out.SyncLocks = make(map[string]SyncLockEntry, len(g.SyncLocks))
	for id, e := range g.SyncLocks {
		out.SyncLocks[id] = e
	}
	return out
}

// appendCopy appends to a copied slice so the original backing array is
// never shared with the new graph value.
func appendCopy(s []string, v string) []string {
	out := make([]string, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

// removeString returns a copy of s without the first occurrence of v.
func removeString(s []string, v string) []string {
	out := make([]string, 0, len(s))
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
