package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenshq/codelens/internal/graph"
)

func goodCandidate(r repo, name string) Candidate {
	return Candidate{
		Name:    name,
		ScopeID: r.root,
		Steps: []graph.FlowStep{
			{NodeID: r.serverFile, Order: 0, Label: "receive"},
			{NodeID: r.engineFile, Order: 1, Label: "process"},
		},
		Diagram: "sequenceDiagram",
	}
}

func TestValidateBatch_AllValid(t *testing.T) {
	r := newRepo(t)

	flows, warning := ValidateBatch(r.g, []Candidate{
		goodCandidate(r, "request path"),
		goodCandidate(r, "startup"),
	}, DefaultAcceptRatio)

	assert.Empty(t, warning)
	require.Len(t, flows, 2)
	assert.Equal(t, "request path", flows[0].Name)
	assert.Len(t, flows[0].Steps, 2)
}

func TestValidateBatch_StepsSortedByOrder(t *testing.T) {
	r := newRepo(t)
	c := goodCandidate(r, "reversed")
	c.Steps = []graph.FlowStep{
		{NodeID: r.engineFile, Order: 5},
		{NodeID: r.serverFile, Order: 1},
	}

	flows, warning := ValidateBatch(r.g, []Candidate{c}, DefaultAcceptRatio)
	assert.Empty(t, warning)
	require.Len(t, flows, 1)
	assert.Equal(t, r.serverFile, flows[0].Steps[0].NodeID)
}

func TestValidateBatch_InvalidCandidates(t *testing.T) {
	r := newRepo(t)

	tooFew := goodCandidate(r, "too few steps")
	tooFew.Steps = tooFew.Steps[:1]

	badScope := goodCandidate(r, "bad scope")
	badScope.ScopeID = r.engineFile // depth-2, not a module

	ghostStep := goodCandidate(r, "ghost step")
	ghostStep.Steps[1].NodeID = "ghost"

	// 1 of 4 valid: below the 50% ratio, the whole batch is rejected.
	flows, warning := ValidateBatch(r.g, []Candidate{
		goodCandidate(r, "ok"), tooFew, badScope, ghostStep,
	}, DefaultAcceptRatio)

	assert.Nil(t, flows, "no partial merge on rejection")
	assert.Contains(t, warning, "1 of 4")
}

func TestValidateBatch_KeepsOnlyValidAboveRatio(t *testing.T) {
	r := newRepo(t)

	bad := goodCandidate(r, "bad")
	bad.Steps = nil

	flows, warning := ValidateBatch(r.g, []Candidate{
		goodCandidate(r, "a"), goodCandidate(r, "b"), goodCandidate(r, "c"), bad,
	}, DefaultAcceptRatio)

	assert.Empty(t, warning)
	require.Len(t, flows, 3, "invalid entries are dropped, valid ones kept")
}

func TestValidateBatch_ModuleScopeAccepted(t *testing.T) {
	r := newRepo(t)
	c := goodCandidate(r, "core only")
	c.ScopeID = r.core
	c.Steps = []graph.FlowStep{
		{NodeID: r.engineFile, Order: 0},
		{NodeID: r.utilFile, Order: 1},
	}

	flows, warning := ValidateBatch(r.g, []Candidate{c}, DefaultAcceptRatio)
	assert.Empty(t, warning)
	require.Len(t, flows, 1)
	assert.Equal(t, r.core, flows[0].ScopeID)
}

func TestValidateBatch_EmptyBatch(t *testing.T) {
	r := newRepo(t)
	flows, warning := ValidateBatch(r.g, nil, DefaultAcceptRatio)
	assert.Nil(t, flows)
	assert.Empty(t, warning)
}

func TestValidateBatch_RatioBoundary(t *testing.T) {
	r := newRepo(t)
	bad := goodCandidate(r, "bad")
	bad.Steps = nil

	// Exactly half valid passes a 0.5 ratio.
	flows, warning := ValidateBatch(r.g, []Candidate{goodCandidate(r, "ok"), bad}, 0.5)
	assert.Empty(t, warning)
	assert.Len(t, flows, 1)
}

func TestMerge_StoresFlowsOnGraph(t *testing.T) {
	r := newRepo(t)
	flows, _ := ValidateBatch(r.g, []Candidate{goodCandidate(r, "request path")}, DefaultAcceptRatio)

	g2, ids := Merge(r.g, flows)
	require.Len(t, ids, 1)
	assert.Len(t, g2.Flows, 1)
	assert.Empty(t, r.g.Flows, "original graph value untouched")
}
