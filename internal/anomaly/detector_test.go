package anomaly

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenshq/codelens/internal/graph"
)

// triangle builds root -> pkg -> (A, B, C) with depends_on edges forming
// A -> B -> C -> A, returning the graph, the three file ids and the three
// relation ids.
func triangle(t *testing.T) (graph.CodeGraph, [3]string, [3]string) {
	t.Helper()
	g := graph.NewGraph("owner-1", "demo")
	root, _ := g.Root()
	g, pkg := graph.AddNode(g, graph.GraphNode{Name: "pkg", Kind: graph.NodeKindPackage}, root.ID)

	var nodes [3]string
	for i, name := range []string{"A", "B", "C"} {
		g, nodes[i] = graph.AddNode(g, graph.GraphNode{Name: name, Kind: graph.NodeKindModule}, pkg)
	}

	var rels [3]string
	g, rels[0] = graph.AddRelation(g, nodes[0], nodes[1], graph.RelationDependsOn, "")
	g, rels[1] = graph.AddRelation(g, nodes[1], nodes[2], graph.RelationDependsOn, "")
	g, rels[2] = graph.AddRelation(g, nodes[2], nodes[0], graph.RelationDependsOn, "")
	return g, nodes, rels
}

func findByType(findings []Finding, typ FindingType) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Type == typ {
			out = append(out, f)
		}
	}
	return out
}

func TestDetect_CleanGraphHasNoFindings(t *testing.T) {
	g := graph.NewGraph("owner-1", "demo")
	root, _ := g.Root()
	g, pkg := graph.AddNode(g, graph.GraphNode{Name: "pkg", Kind: graph.NodeKindPackage}, root.ID)
	g, a := graph.AddNode(g, graph.GraphNode{Name: "a", Kind: graph.NodeKindModule}, pkg)
	g, b := graph.AddNode(g, graph.GraphNode{Name: "b", Kind: graph.NodeKindModule}, pkg)
	g, _ = graph.AddRelation(g, a, b, graph.RelationDependsOn, "")

	assert.Empty(t, Detect(g, DefaultThresholds()))
}

func TestDetect_CycleReportedOncePerCycle(t *testing.T) {
	g, nodes, rels := triangle(t)

	findings := findByType(Detect(g, DefaultThresholds()), TypeCircularDependency)
	require.Len(t, findings, 1, "A->B->C->A is one cycle regardless of entry point")

	f := findings[0]
	assert.Equal(t, SeverityError, f.Severity)
	assert.ElementsMatch(t, nodes[:], f.NodeIDs, "path covers the cycle up to rotation")
	assert.Contains(t, f.Message, "A")
	assert.Contains(t, f.Message, "B")
	assert.Contains(t, f.Message, "C")

	// Removing any one edge dissolves the cycle.
	for _, relID := range rels {
		broken := graph.RemoveRelation(g, relID)
		assert.Empty(t, findByType(Detect(broken, DefaultThresholds()), TypeCircularDependency))
	}
}

func TestDetect_ContainsRelationsNeverFormCycles(t *testing.T) {
	g, nodes, _ := triangle(t)
	// A contains-cycle on top of the tree is ignored by cycle analysis.
	g, _ = graph.AddRelation(g, nodes[0], nodes[1], graph.RelationContains, "")

	findings := findByType(Detect(g, DefaultThresholds()), TypeCircularDependency)
	assert.Len(t, findings, 1, "only the depends_on cycle is reported")
}

func TestDetect_SelfLoopIsACycle(t *testing.T) {
	g := graph.NewGraph("owner-1", "demo")
	root, _ := g.Root()
	g, a := graph.AddNode(g, graph.GraphNode{Name: "a", Kind: graph.NodeKindModule}, root.ID)
	g, _ = graph.AddRelation(g, a, a, graph.RelationCalls, "")

	findings := findByType(Detect(g, DefaultThresholds()), TypeCircularDependency)
	require.Len(t, findings, 1)
	assert.Equal(t, []string{a}, findings[0].NodeIDs)
}

func TestDetect_OrphanNode(t *testing.T) {
	g := graph.NewGraph("owner-1", "demo")
	root, _ := g.Root()
	g, a := graph.AddNode(g, graph.GraphNode{Name: "a", Kind: graph.NodeKindModule}, root.ID)

	// Hand-corrupt the parent link; the detector is the layer that
	// surfaces this, not the store.
	node := g.Nodes[a]
	node.ParentID = "ghost"
	g.Nodes[a] = node

	findings := findByType(Detect(g, DefaultThresholds()), TypeOrphanNode)
	require.Len(t, findings, 1)
	assert.Equal(t, []string{a}, findings[0].NodeIDs)
}

func TestDetect_BrokenReference(t *testing.T) {
	g := graph.NewGraph("owner-1", "demo")
	root, _ := g.Root()
	g, a := graph.AddNode(g, graph.GraphNode{Name: "a", Kind: graph.NodeKindModule}, root.ID)
	g, relID := graph.AddRelation(g, a, "ghost", graph.RelationDependsOn, "")

	findings := findByType(Detect(g, DefaultThresholds()), TypeBrokenReference)
	require.Len(t, findings, 1)
	assert.Equal(t, []string{relID}, findings[0].RelationIDs)
	assert.Equal(t, SeverityError, findings[0].Severity)
}

func TestDetect_HighCouplingBoundary(t *testing.T) {
	th := Thresholds{HighCoupling: 3, GodNode: 100}

	build := func(t *testing.T, fanOut int) graph.CodeGraph {
		t.Helper()
		g := graph.NewGraph("owner-1", "demo")
		root, _ := g.Root()
		g, hub := graph.AddNode(g, graph.GraphNode{Name: "hub", Kind: graph.NodeKindModule}, root.ID)
		for i := 0; i < fanOut; i++ {
			var target string
			g, target = graph.AddNode(g, graph.GraphNode{Name: fmt.Sprintf("t%d", i), Kind: graph.NodeKindModule}, root.ID)
			g, _ = graph.AddRelation(g, hub, target, graph.RelationDependsOn, "")
		}
		return g
	}

	// Exactly at the threshold: no finding.
	atLimit := build(t, th.HighCoupling)
	assert.Empty(t, findByType(Detect(atLimit, th), TypeHighCoupling))

	// One over: finding.
	over := build(t, th.HighCoupling+1)
	findings := findByType(Detect(over, th), TypeHighCoupling)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityWarning, findings[0].Severity)
}

func TestDetect_GodNodeBoundary(t *testing.T) {
	th := Thresholds{HighCoupling: 100, GodNode: 2}

	g := graph.NewGraph("owner-1", "demo")
	root, _ := g.Root()
	g, sink := graph.AddNode(g, graph.GraphNode{Name: "sink", Kind: graph.NodeKindModule}, root.ID)
	for i := 0; i < th.GodNode+1; i++ {
		var src string
		g, src = graph.AddNode(g, graph.GraphNode{Name: fmt.Sprintf("s%d", i), Kind: graph.NodeKindModule}, root.ID)
		g, _ = graph.AddRelation(g, src, sink, graph.RelationCalls, "")
	}

	findings := findByType(Detect(g, th), TypeGodNode)
	require.Len(t, findings, 1)
	assert.Equal(t, []string{sink}, findings[0].NodeIDs)
}

func TestDetect_IsReadOnly(t *testing.T) {
	g, _, _ := triangle(t)
	nodesBefore := len(g.Nodes)
	relsBefore := len(g.Relations)

	Detect(g, DefaultThresholds())

	assert.Equal(t, nodesBefore, len(g.Nodes))
	assert.Equal(t, relsBefore, len(g.Relations))
}
