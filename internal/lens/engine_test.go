package lens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenshq/codelens/internal/graph"
)

// fixture builds root -> (pkgA -> f1 -> sym, pkgB -> f2) and returns the
// graph plus the ids.
type fixture struct {
	g                             graph.CodeGraph
	root, pkgA, pkgB, f1, f2, sym string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	g := graph.NewGraph("owner-1", "demo")
	root, ok := g.Root()
	require.True(t, ok)

	g, pkgA := graph.AddNode(g, graph.GraphNode{Name: "core", Kind: graph.NodeKindPackage}, root.ID)
	g, pkgB := graph.AddNode(g, graph.GraphNode{Name: "api", Kind: graph.NodeKindPackage, Tags: []string{"http"}}, root.ID)
	g, f1 := graph.AddNode(g, graph.GraphNode{Name: "engine", Kind: graph.NodeKindModule}, pkgA)
	g, f2 := graph.AddNode(g, graph.GraphNode{Name: "server", Kind: graph.NodeKindModule, Tags: []string{"http"}}, pkgB)
	g, sym := graph.AddNode(g, graph.GraphNode{Name: "Run", Kind: graph.NodeKindFunction}, f1)

	return fixture{g: g, root: root.ID, pkgA: pkgA, pkgB: pkgB, f1: f1, f2: f2, sym: sym}
}

// admitAll is a lens whose filters admit every node and relation.
func admitAll() graph.ViewLens {
	return graph.ViewLens{
		ID:     "all",
		Name:   "everything",
		Type:   graph.LensCustom,
		Depths: graph.DepthRange{Min: 0, Max: graph.MaxDepth},
	}
}

func ids(nodes []graph.GraphNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestVisibleNodes_AdmitAllReturnsEveryNode(t *testing.T) {
	fx := newFixture(t)

	nodes := VisibleNodes(fx.g, admitAll(), "", nil)
	assert.Len(t, nodes, len(fx.g.Nodes))
	// Deterministic pre-order over stored children.
	assert.Equal(t, []string{fx.root, fx.pkgA, fx.f1, fx.sym, fx.pkgB, fx.f2}, ids(nodes))
}

func TestVisibleNodes_ExactDepthRange(t *testing.T) {
	fx := newFixture(t)

	lens := admitAll()
	lens.Depths = graph.DepthRange{Min: graph.DepthFile, Max: graph.DepthFile}
	nodes := VisibleNodes(fx.g, lens, "", nil)
	assert.Equal(t, []string{fx.f1, fx.f2}, ids(nodes))
}

func TestVisibleNodes_DepthOverrideWins(t *testing.T) {
	fx := newFixture(t)

	lens := admitAll()
	lens.Depths = graph.DepthRange{Min: 0, Max: 0}
	override := graph.DepthRange{Min: graph.DepthPackage, Max: graph.DepthPackage}
	nodes := VisibleNodes(fx.g, lens, "", &override)
	assert.Equal(t, []string{fx.pkgA, fx.pkgB}, ids(nodes))
}

func TestVisibleNodes_KindAndTagFilters(t *testing.T) {
	fx := newFixture(t)

	lens := admitAll()
	lens.Kinds = []graph.NodeKind{graph.NodeKindPackage}
	assert.Equal(t, []string{fx.pkgA, fx.pkgB}, ids(VisibleNodes(fx.g, lens, "", nil)))

	lens = admitAll()
	lens.Tags = []string{"http"}
	assert.Equal(t, []string{fx.pkgB, fx.f2}, ids(VisibleNodes(fx.g, lens, "", nil)))
}

func TestVisibleNodes_OverrideHides(t *testing.T) {
	fx := newFixture(t)
	lens := admitAll()

	g := graph.AddLens(fx.g, lens)
	g = graph.SetNodeOverride(g, fx.f2, "all", graph.NodeOverride{Hidden: true})

	nodes := VisibleNodes(g, lens, "", nil)
	assert.NotContains(t, ids(nodes), fx.f2)
}

func TestVisibleNodes_FocusKeepsAncestorsAndDescendants(t *testing.T) {
	fx := newFixture(t)

	nodes := VisibleNodes(fx.g, admitAll(), fx.f1, nil)
	// Focus on f1: ancestors (root, pkgA), itself, descendant sym.
	assert.Equal(t, []string{fx.root, fx.pkgA, fx.f1, fx.sym}, ids(nodes))
}

func TestVisibleNodes_RootFocusDisablesScoping(t *testing.T) {
	fx := newFixture(t)
	nodes := VisibleNodes(fx.g, admitAll(), fx.root, nil)
	assert.Len(t, nodes, len(fx.g.Nodes))
}

func TestVisibleNodes_UnknownFocusIgnored(t *testing.T) {
	fx := newFixture(t)
	nodes := VisibleNodes(fx.g, admitAll(), "ghost", nil)
	assert.Len(t, nodes, len(fx.g.Nodes))
}

func TestVisibleNodes_DomainLensShortCircuits(t *testing.T) {
	fx := newFixture(t)
	lens, ok := fx.g.Lens(graph.DomainLensID)
	require.True(t, ok)
	assert.Nil(t, VisibleNodes(fx.g, lens, "", nil))
}

func TestVisibleRelations_EndpointTypeAndFlagChecks(t *testing.T) {
	fx := newFixture(t)
	g := fx.g

	g, depRel := graph.AddRelation(g, fx.f1, fx.f2, graph.RelationDependsOn, "utils")
	g, callRel := graph.AddRelation(g, fx.sym, fx.f2, graph.RelationCalls, "")
	g, dangling := graph.AddRelation(g, fx.f1, "ghost", graph.RelationDependsOn, "")
	require.NotEmpty(t, dangling)

	lens := admitAll()
	visible := VisibleSet(VisibleNodes(g, lens, "", nil))

	rels := VisibleRelations(g, lens, visible)
	relIDs := make([]string, len(rels))
	for i, r := range rels {
		relIDs[i] = r.ID
	}
	assert.ElementsMatch(t, []string{depRel, callRel}, relIDs,
		"dangling endpoints are silently filtered")

	// Type filter.
	lens.RelationTypes = []graph.RelationType{graph.RelationCalls}
	rels = VisibleRelations(g, lens, visible)
	require.Len(t, rels, 1)
	assert.Equal(t, callRel, rels[0].ID)

	// Per-lens visibility flag wins over everything else.
	lens.RelationTypes = nil
	g2 := g
	rel := g2.Relations[depRel]
	rel.LensVisibility = map[string]bool{"all": false}
	g2.Relations[depRel] = rel
	rels = VisibleRelations(g2, lens, visible)
	require.Len(t, rels, 1)
	assert.Equal(t, callRel, rels[0].ID)
}
