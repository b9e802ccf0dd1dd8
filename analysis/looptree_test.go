package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TheJackiMonster/shady/analysis"
	"github.com/TheJackiMonster/shady/ir"
)

func TestBuildLoopTreeFindsNaturalLoopHeader(t *testing.T) {
	a := newArena()
	entry := ir.DeclareBasicBlockHeader(a, nil, "entry")
	header := ir.DeclareBasicBlockHeader(a, nil, "header")
	body := ir.DeclareBasicBlockHeader(a, nil, "body")
	exit := ir.DeclareBasicBlockHeader(a, nil, "exit")

	ir.PopulateBasicBlockBody(entry, ir.NewJump(a, header, nil, nil))
	ir.PopulateBasicBlockBody(body, ir.NewJump(a, header, nil, nil)) // back edge
	ir.PopulateBasicBlockBody(exit, ir.NewUnreachable(a))

	cond := ir.True(a)
	toBody := ir.NewJump(a, body, nil, nil)
	toExit := ir.NewJump(a, exit, nil, nil)
	ir.PopulateBasicBlockBody(header, ir.NewBranch(a, cond, toBody, toExit))

	g := analysis.BuildCFG(entry, analysis.Config{})
	dom := analysis.BuildDomTree(g)
	lt := analysis.BuildLoopTree(g, dom)

	assert.True(t, lt.IsLoopHeader(header))
	assert.False(t, lt.IsLoopHeader(entry))
	assert.False(t, lt.IsLoopHeader(body))
	assert.False(t, lt.IsLoopHeader(exit))

	loop := lt.ByHeader[header]
	assert.True(t, loop.Body[header])
	assert.True(t, loop.Body[body])
	assert.False(t, loop.Body[exit])
	assert.False(t, loop.Body[entry])
}

func TestBuildLoopTreeAcyclicGraphHasNoLoops(t *testing.T) {
	a := newArena()
	A, _, _, _ := buildDiamond(a)
	g := analysis.BuildCFG(A, analysis.Config{})
	dom := analysis.BuildDomTree(g)
	lt := analysis.BuildLoopTree(g, dom)
	assert.Empty(t, lt.ByHeader)
}
