package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJackiMonster/shady/analysis"
	"github.com/TheJackiMonster/shady/ir"
)

func TestBuildCallGraphRecordsDirectCallEdge(t *testing.T) {
	a := newArena()
	m := ir.NewModule(a)

	leaf := ir.DeclareFunctionHeader(a, nil, "leaf", nil, nil)
	ir.PopulateFunctionBody(leaf, ir.NewReturn(a, nil))
	m.AddDecl(leaf)

	caller := ir.DeclareFunctionHeader(a, nil, "caller", nil, nil)
	callee := ir.NewFnAddr(a, leaf)
	ir.PopulateFunctionBody(caller, ir.NewCall(a, callee, nil))
	m.AddDecl(caller)

	cg := analysis.BuildCallGraph(m)
	assert.True(t, cg.Calls(caller, leaf))
	assert.False(t, cg.Calls(leaf, caller))
}

func TestBuildCallGraphReachableIncludesTransitiveCallees(t *testing.T) {
	a := newArena()
	m := ir.NewModule(a)

	c := ir.DeclareFunctionHeader(a, nil, "c", nil, nil)
	ir.PopulateFunctionBody(c, ir.NewReturn(a, nil))
	m.AddDecl(c)

	b := ir.DeclareFunctionHeader(a, nil, "b", nil, nil)
	ir.PopulateFunctionBody(b, ir.NewCall(a, ir.NewFnAddr(a, c), nil))
	m.AddDecl(b)

	aFn := ir.DeclareFunctionHeader(a, nil, "a", nil, nil)
	ir.PopulateFunctionBody(aFn, ir.NewCall(a, ir.NewFnAddr(a, b), nil))
	m.AddDecl(aFn)

	cg := analysis.BuildCallGraph(m)
	reachable := cg.Reachable(aFn)
	require.Len(t, reachable, 3)
	assert.True(t, reachable[aFn])
	assert.True(t, reachable[b])
	assert.True(t, reachable[c])
}

func TestBuildCallGraphTailCallCountsAsEdge(t *testing.T) {
	a := newArena()
	m := ir.NewModule(a)

	leaf := ir.DeclareFunctionHeader(a, nil, "leaf", nil, nil)
	ir.PopulateFunctionBody(leaf, ir.NewReturn(a, nil))
	m.AddDecl(leaf)

	caller := ir.DeclareFunctionHeader(a, nil, "caller", nil, nil)
	ir.PopulateFunctionBody(caller, ir.NewTailCall(a, ir.NewFnAddr(a, leaf), nil))
	m.AddDecl(caller)

	cg := analysis.BuildCallGraph(m)
	assert.True(t, cg.Calls(caller, leaf))
}
