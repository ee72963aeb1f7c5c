package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree creates root -> pkg -> (fileA, fileB) and returns the graph
// plus the ids in that order.
func buildTree(t *testing.T) (CodeGraph, string, string, string, string) {
	t.Helper()
	g := NewGraph("owner-1", "demo")
	root, ok := g.Root()
	require.True(t, ok)

	g, pkgID := AddNode(g, GraphNode{Name: "api", Kind: NodeKindPackage}, root.ID)
	require.NotEmpty(t, pkgID)
	g, fileA := AddNode(g, GraphNode{Name: "handlers", Kind: NodeKindModule}, pkgID)
	require.NotEmpty(t, fileA)
	g, fileB := AddNode(g, GraphNode{Name: "routes", Kind: NodeKindModule}, pkgID)
	require.NotEmpty(t, fileB)

	return g, root.ID, pkgID, fileA, fileB
}

// assertTreeInvariant checks that every node reachable from the root has a
// ParentID pointing back to the node that lists it, and child depth is
// parent depth plus one.
func assertTreeInvariant(t *testing.T, g CodeGraph) {
	t.Helper()
	for _, node := range PreOrder(g) {
		for _, childID := range node.Children {
			child, ok := g.Nodes[childID]
			require.True(t, ok, "child %s of %s must resolve", childID, node.ID)
			assert.Equal(t, node.ID, child.ParentID)
			assert.Equal(t, node.Depth+1, child.Depth)
		}
	}
}

func TestNewGraph_RootAndBuiltinLenses(t *testing.T) {
	g := NewGraph("owner-1", "demo")

	root, ok := g.Root()
	require.True(t, ok)
	assert.Equal(t, NodeKindSystem, root.Kind)
	assert.Equal(t, DepthSystem, root.Depth)
	assert.Empty(t, root.ParentID)

	require.Len(t, g.Lenses, 3)
	ids := []string{g.Lenses[0].ID, g.Lenses[1].ID, g.Lenses[2].ID}
	assert.Equal(t, []string{ComponentLensID, FlowLensID, DomainLensID}, ids)
	assert.Equal(t, ComponentLensID, g.ActiveLensID)

	lens, ok := g.Lens(ComponentLensID)
	require.True(t, ok)
	assert.NotEmpty(t, lens.StyleRules, "component lens ships default style rules")
}

func TestAddNode_TreeRoundTrip(t *testing.T) {
	g, _, pkgID, fileA, fileB := buildTree(t)

	assertTreeInvariant(t, g)
	assert.Equal(t, []string{fileA, fileB}, g.Nodes[pkgID].Children, "stored child order")
	assert.Equal(t, DepthFile, g.Nodes[fileA].Depth)
}

func TestAddNode_NoOps(t *testing.T) {
	g := NewGraph("owner-1", "demo")

	// Unknown parent.
	g2, id := AddNode(g, GraphNode{Name: "x"}, "nope")
	assert.Empty(t, id)
	assert.Equal(t, len(g.Nodes), len(g2.Nodes))

	// Parent already at MaxDepth.
	root, _ := g.Root()
	cur := g
	parent := root.ID
	for depth := 1; depth <= MaxDepth; depth++ {
		var next string
		cur, next = AddNode(cur, GraphNode{Name: "n", Kind: NodeKindModule}, parent)
		require.NotEmpty(t, next)
		parent = next
	}
	_, id = AddNode(cur, GraphNode{Name: "too-deep"}, parent)
	assert.Empty(t, id, "children below MaxDepth are refused")
}

func TestAddNode_DoesNotMutateOriginal(t *testing.T) {
	g := NewGraph("owner-1", "demo")
	root, _ := g.Root()

	g2, id := AddNode(g, GraphNode{Name: "api", Kind: NodeKindPackage}, root.ID)
	require.NotEmpty(t, id)

	// The original value still has a childless root and no new node.
	assert.Empty(t, g.Nodes[root.ID].Children)
	assert.NotContains(t, g.Nodes, id)
	assert.Contains(t, g2.Nodes, id)
}

func TestRemoveNode_CascadesClosureAndRelations(t *testing.T) {
	g, rootID, pkgID, fileA, fileB := buildTree(t)

	g, relInside := AddRelation(g, fileA, fileB, RelationDependsOn, "utils")
	require.NotEmpty(t, relInside)
	g, relOut := AddRelation(g, rootID, fileA, RelationContains, "")
	require.NotEmpty(t, relOut)
	g = SetSyncLocks(g, []SyncLockEntry{{NodeID: fileA, Status: SyncLocked}})

	g2 := RemoveNode(g, pkgID)

	// pkg and both files are gone, nothing else is.
	assert.NotContains(t, g2.Nodes, pkgID)
	assert.NotContains(t, g2.Nodes, fileA)
	assert.NotContains(t, g2.Nodes, fileB)
	assert.Contains(t, g2.Nodes, rootID)

	// Every relation touching a removed id is gone too.
	assert.Empty(t, g2.Relations)
	assert.Empty(t, g2.SyncLocks)

	// Detached from the parent's children list.
	assert.NotContains(t, g2.Nodes[rootID].Children, pkgID)
	assertTreeInvariant(t, g2)
}

func TestRemoveNode_ReAddDoesNotResurrectRelations(t *testing.T) {
	g, _, pkgID, fileA, fileB := buildTree(t)
	g, _ = AddRelation(g, fileA, fileB, RelationDependsOn, "utils")

	g = RemoveNode(g, fileA)
	g, fileA2 := AddNode(g, GraphNode{Name: "handlers", Kind: NodeKindModule}, pkgID)
	require.NotEmpty(t, fileA2)

	assert.Empty(t, g.Relations, "old relations must not come back with a same-shaped node")
}

func TestRemoveNode_RootIsRemovedFaithfully(t *testing.T) {
	// Guarding root deletion is the caller layer's policy; the store
	// performs the removal it is asked for.
	g, rootID, _, _, _ := buildTree(t)
	g2 := RemoveNode(g, rootID)
	assert.Empty(t, g2.Nodes)
}

func TestAddRelation_DefaultsVisibilityForAllLenses(t *testing.T) {
	g, _, _, fileA, fileB := buildTree(t)

	g, relID := AddRelation(g, fileA, fileB, RelationDependsOn, "utils")
	rel := g.Relations[relID]

	require.Len(t, rel.LensVisibility, 3)
	for _, lens := range g.Lenses {
		assert.True(t, rel.LensVisibility[lens.ID])
	}
}

func TestAddLens_BackfillsRelationVisibility(t *testing.T) {
	g, _, _, fileA, fileB := buildTree(t)
	g, relID := AddRelation(g, fileA, fileB, RelationDependsOn, "")

	g = AddLens(g, ViewLens{Name: "Security", Type: LensCustom, Depths: DepthRange{Min: 0, Max: MaxDepth}})
	require.Len(t, g.Lenses, 4)
	custom := g.Lenses[3]

	rel := g.Relations[relID]
	assert.True(t, rel.LensVisibility[custom.ID],
		"relations added before a lens must default visible under it")
}

func TestRemoveLens_StripsVisibilityAndOverrides(t *testing.T) {
	g, _, _, fileA, fileB := buildTree(t)
	g, relID := AddRelation(g, fileA, fileB, RelationCalls, "")
	g = SetNodeOverride(g, fileA, FlowLensID, NodeOverride{Hidden: true})

	g = RemoveLens(g, FlowLensID)

	_, ok := g.Lens(FlowLensID)
	assert.False(t, ok)
	assert.NotContains(t, g.Relations[relID].LensVisibility, FlowLensID)
	assert.NotContains(t, g.Nodes[fileA].LensOverrides, FlowLensID)
}

func TestRemoveLens_ActiveFallsBack(t *testing.T) {
	g := NewGraph("owner-1", "demo")
	g = SetActiveLens(g, FlowLensID)
	g = RemoveLens(g, FlowLensID)
	assert.Equal(t, ComponentLensID, g.ActiveLensID)
}

func TestUpdateNode_PreservesIdentityAndPlacement(t *testing.T) {
	g, _, pkgID, fileA, _ := buildTree(t)

	g2 := UpdateNode(g, fileA, func(n GraphNode) GraphNode {
		n.Name = "renamed"
		n.ID = "hijack"
		n.ParentID = "elsewhere"
		n.Depth = 99
		return n
	})

	node := g2.Nodes[fileA]
	assert.Equal(t, "renamed", node.Name)
	assert.Equal(t, fileA, node.ID)
	assert.Equal(t, pkgID, node.ParentID)
	assert.Equal(t, DepthFile, node.Depth)

	// Original unchanged.
	assert.Equal(t, "handlers", g.Nodes[fileA].Name)
}

func TestQueries_DescendantsAndAncestors(t *testing.T) {
	g, rootID, pkgID, fileA, fileB := buildTree(t)
	g, symID := AddNode(g, GraphNode{Name: "Handle", Kind: NodeKindFunction}, fileA)

	desc := Descendants(g, rootID)
	ids := make([]string, len(desc))
	for i, d := range desc {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{pkgID, fileA, symID, fileB}, ids, "pre-order over stored children")

	anc := Ancestors(g, symID)
	require.Len(t, anc, 3)
	assert.Equal(t, fileA, anc[0].ID)
	assert.Equal(t, pkgID, anc[1].ID)
	assert.Equal(t, rootID, anc[2].ID)

	at, ok := AncestorAt(g, symID, DepthPackage)
	require.True(t, ok)
	assert.Equal(t, pkgID, at.ID)
}

func TestFlows_AddRemove(t *testing.T) {
	g, rootID, _, fileA, fileB := buildTree(t)

	g, flowID := AddFlow(g, GraphFlow{
		Name:    "request lifecycle",
		ScopeID: rootID,
		Steps: []FlowStep{
			{NodeID: fileA, Order: 0, Label: "parse"},
			{NodeID: fileB, Order: 1, Label: "route"},
		},
	})
	require.NotEmpty(t, flowID)
	assert.Len(t, g.Flows, 1)

	g = RemoveFlow(g, flowID)
	assert.Empty(t, g.Flows)
}
