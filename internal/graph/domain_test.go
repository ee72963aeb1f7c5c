package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomain_AddAndProject(t *testing.T) {
	g, _, pkgID, fileA, _ := buildTree(t)

	g, billingID := AddDomainNode(g, DomainNode{Name: "Billing"}, "")
	require.NotEmpty(t, billingID)
	g, invoiceID := AddDomainNode(g, DomainNode{Name: "Invoicing"}, billingID)
	require.NotEmpty(t, invoiceID)

	assert.Equal(t, []string{invoiceID}, g.DomainNodes[billingID].Children)

	g = SetProjections(g, invoiceID, []DomainProjection{
		{NodeID: fileA, Role: RolePrimary},
		{NodeID: pkgID, Role: RoleSupporting},
		{NodeID: "ghost", Role: RoleReferenced}, // unknown technical node, dropped
	})

	require.Len(t, g.DomainNodes[invoiceID].Projections, 2)
	assert.Contains(t, g.Nodes[fileA].DomainIDs, invoiceID)
	assert.Contains(t, g.Nodes[pkgID].DomainIDs, invoiceID)
}

func TestDomain_AddUnderUnknownParentIsNoOp(t *testing.T) {
	g := NewGraph("owner-1", "demo")
	g2, id := AddDomainNode(g, DomainNode{Name: "Billing"}, "nope")
	assert.Empty(t, id)
	assert.Empty(t, g2.DomainNodes)
}

func TestDomain_RemoveCascades(t *testing.T) {
	g, _, _, fileA, _ := buildTree(t)

	g, billingID := AddDomainNode(g, DomainNode{Name: "Billing"}, "")
	g, invoiceID := AddDomainNode(g, DomainNode{Name: "Invoicing"}, billingID)
	g, payID := AddDomainNode(g, DomainNode{Name: "Payments"}, "")
	g, relID := AddDomainRelation(g, invoiceID, payID, "triggers", "on settle")
	require.NotEmpty(t, relID)
	g = SetProjections(g, invoiceID, []DomainProjection{{NodeID: fileA, Role: RolePrimary}})

	g = RemoveDomainNode(g, billingID)

	assert.NotContains(t, g.DomainNodes, billingID)
	assert.NotContains(t, g.DomainNodes, invoiceID)
	assert.Contains(t, g.DomainNodes, payID)
	assert.Empty(t, g.DomainRelations, "relations touching removed concepts are gone")
	assert.NotContains(t, g.Nodes[fileA].DomainIDs, invoiceID, "back-references cleaned up")
}

func TestSetProjections_ReplacementRemovesStaleBackrefs(t *testing.T) {
	g, _, _, fileA, fileB := buildTree(t)
	g, conceptID := AddDomainNode(g, DomainNode{Name: "Checkout"}, "")

	g = SetProjections(g, conceptID, []DomainProjection{{NodeID: fileA, Role: RolePrimary}})
	g = SetProjections(g, conceptID, []DomainProjection{{NodeID: fileB, Role: RolePrimary}})

	assert.NotContains(t, g.Nodes[fileA].DomainIDs, conceptID)
	assert.Contains(t, g.Nodes[fileB].DomainIDs, conceptID)
}
