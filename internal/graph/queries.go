package graph

// Tree-walk queries. All of them tolerate unknown ids by returning empty
// results, and all iterate stored child order so results are deterministic.

// Children returns the direct children of nodeID in stored order.
func Children(g CodeGraph, nodeID string) []GraphNode {
	node, ok := g.Nodes[nodeID]
	if !ok {
		return nil
	}
	out := make([]GraphNode, 0, len(node.Children))
	for _, id := range node.Children {
		if child, ok := g.Nodes[id]; ok {
			out = append(out, child)
		}
	}
	return out
}

// Descendants returns every node strictly below nodeID in pre-order.
func Descendants(g CodeGraph, nodeID string) []GraphNode {
	node, ok := g.Nodes[nodeID]
	if !ok {
		return nil
	}

	var out []GraphNode
	stack := make([]string, len(node.Children))
	// Reverse so the stack pops children in stored order.
	for i, id := range node.Children {
		stack[len(node.Children)-1-i] = id
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		child, ok := g.Nodes[id]
		if !ok {
			continue
		}
		out = append(out, child)
		for i := len(child.Children) - 1; i >= 0; i-- {
			stack = append(stack, child.Children[i])
		}
	}
	return out
}

// Ancestors walks ParentID links from nodeID up to the root, nearest
// ancestor first. The node itself is not included.
func Ancestors(g CodeGraph, nodeID string) []GraphNode {
	node, ok := g.Nodes[nodeID]
	if !ok {
		return nil
	}

	var out []GraphNode
	seen := map[string]bool{nodeID: true}
	for node.ParentID != "" {
		parent, ok := g.Nodes[node.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		out = append(out, parent)
		node = parent
	}
	return out
}

// AncestorAt returns the ancestor of nodeID at the given depth. When the
// node itself sits at that depth it is returned directly.
func AncestorAt(g CodeGraph, nodeID string, depth int) (GraphNode, bool) {
	node, ok := g.Nodes[nodeID]
	if !ok {
		return GraphNode{}, false
	}
	if node.Depth == depth {
		return node, true
	}
	for _, a := range Ancestors(g, nodeID) {
		if a.Depth == depth {
			return a, true
		}
	}
	return GraphNode{}, false
}

// PreOrder returns every node reachable from the root via Children in
// pre-order, root first. Nodes detached from the tree are not included.
func PreOrder(g CodeGraph) []GraphNode {
	root, ok := g.Root()
	if !ok {
		return nil
	}
	out := make([]GraphNode, 0, len(g.Nodes))
	out = append(out, root)
	return append(out, Descendants(g, root.ID)...)
}
