package graph

import "github.com/google/uuid"

// Domain model operations. Domain nodes form a forest parallel to the
// technical tree; they project onto technical nodes but the two structures
// never share ids.

// AddDomainNode attaches a domain concept. parentID may be empty for a
// domain root; a non-empty parentID must resolve to an existing domain
// node or the call is a no-op.
func AddDomainNode(g CodeGraph, node DomainNode, parentID string) (CodeGraph, string) {
	if parentID != "" {
		if _, ok := g.DomainNodes[parentID]; !ok {
			return g, ""
		}
	}

	node.ID = uuid.NewString()
	node.ParentID = parentID
	node.Children = nil

	out := g.cloneDomain()
	if parentID != "" {
		parent := out.DomainNodes[parentID]
		parent.Children = appendCopy(parent.Children, node.ID)
		out.DomainNodes[parentID] = parent
	}
	out.DomainNodes[node.ID] = node
	return out, node.ID
}

// RemoveDomainNode removes a domain concept with its descendant closure,
// any domain relation touching a removed id, and the back-references held
// in technical nodes' DomainIDs lists.
func RemoveDomainNode(g CodeGraph, domainID string) CodeGraph {
	node, ok := g.DomainNodes[domainID]
	if !ok {
		return g
	}

	removed := map[string]bool{}
	stack := []string{domainID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if removed[id] {
			continue
		}
		removed[id] = true
		if d, ok := g.DomainNodes[id]; ok {
			stack = append(stack, d.Children...)
		}
	}

	out := g.cloneDomain().cloneNodes()
	for id := range removed {
		delete(out.DomainNodes, id)
	}
	for id, rel := range out.DomainRelations {
		if removed[rel.SourceID] || removed[rel.TargetID] {
			delete(out.DomainRelations, id)
		}
	}
	if parent, ok := out.DomainNodes[node.ParentID]; ok {
		parent.Children = removeString(parent.Children, domainID)
		out.DomainNodes[node.ParentID] = parent
	}

	for id, n := range out.Nodes {
		changed := false
		kept := make([]string, 0, len(n.DomainIDs))
		for _, did := range n.DomainIDs {
			if removed[did] {
				changed = true
				continue
			}
			kept = append(kept, did)
		}
		if changed {
			n.DomainIDs = kept
			out.Nodes[id] = n
		}
	}
	return out
}

// AddDomainRelation creates an edge between two domain concepts.
func AddDomainRelation(g CodeGraph, sourceID, targetID, typ, label string) (CodeGraph, string) {
	if sourceID == "" || targetID == "" {
		return g, ""
	}
	rel := DomainRelation{
		ID:       uuid.NewString(),
		SourceID: sourceID,
		TargetID: targetID,
		Type:     typ,
		Label:    label,
	}
	out := g.cloneDomain()
	out.DomainRelations[rel.ID] = rel
	return out, rel.ID
}

// SetProjections replaces the projection list of a domain node and keeps
// the DomainIDs back-references on the projected technical nodes in sync.
// Projections onto unknown technical nodes are dropped.
func SetProjections(g CodeGraph, domainID string, projections []DomainProjection) CodeGraph {
	node, ok := g.DomainNodes[domainID]
	if !ok {
		return g
	}

	kept := make([]DomainProjection, 0, len(projections))
	target := map[string]bool{}
	for _, p := range projections {
		if _, ok := g.Nodes[p.NodeID]; ok {
			kept = append(kept, p)
			target[p.NodeID] = true
		}
	}

	out := g.cloneDomain().cloneNodes()
	node.Projections = kept
	out.DomainNodes[domainID] = node

	for id, n := range out.Nodes {
		has := containsString(n.DomainIDs, domainID)
		switch {
		case target[id] && !has:
			n.DomainIDs = appendCopy(n.DomainIDs, domainID)
			out.Nodes[id] = n
		case !target[id] && has:
			n.DomainIDs = removeString(n.DomainIDs, domainID)
			out.Nodes[id] = n
		}
	}
	return out
}

// DomainRoots returns domain nodes with no parent.
func DomainRoots(g CodeGraph) []DomainNode {
	var out []DomainNode
	for _, n := range g.DomainNodes {
		if n.ParentID == "" {
			out = append(out, n)
		}
	}
	return out
}

// cloneDomain copies the aggregate with fresh domain maps.
func (g CodeGraph) cloneDomain() CodeGraph {
	out := g
	out.DomainNodes = make(map[string]DomainNode, len(g.DomainNodes)+1)
	for id, n := range g.DomainNodes {
		out.DomainNodes[id] = n
	}
	out.DomainRelations = make(map[string]DomainRelation, len(g.DomainRelations)+1)
	for id, r := range g.DomainRelations {
		out.DomainRelations[id] = r
	}
	return out
}

// containsString reports whether s contains v.
func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
