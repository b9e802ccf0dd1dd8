package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJackiMonster/shady/analysis"
	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
)

func newArena() *arena.Arena {
	return arena.New(arena.Config{AddressSpaces: arena.DefaultAddressSpaces()})
}

// buildDiamond wires A --(branch)--> {B, C} --(jump)--> D, mirroring the
// canonical if/then/else-with-merge shape every structured-construct lowering
// pass eventually unwinds into.
func buildDiamond(a *arena.Arena) (A, B, C, D ir.AbstractionRef) {
	A = ir.DeclareBasicBlockHeader(a, nil, "A")
	B = ir.DeclareBasicBlockHeader(a, nil, "B")
	C = ir.DeclareBasicBlockHeader(a, nil, "C")
	D = ir.DeclareBasicBlockHeader(a, nil, "D")

	ir.PopulateBasicBlockBody(D, ir.NewUnreachable(a))
	ir.PopulateBasicBlockBody(B, ir.NewJump(a, D, nil, nil))
	ir.PopulateBasicBlockBody(C, ir.NewJump(a, D, nil, nil))

	cond := ir.True(a)
	tj := ir.NewJump(a, B, nil, nil)
	fj := ir.NewJump(a, C, nil, nil)
	ir.PopulateBasicBlockBody(A, ir.NewBranch(a, cond, tj, fj))
	return
}

func TestBuildCFGDiscoversAllReachableNodes(t *testing.T) {
	a := newArena()
	A, B, C, D := buildDiamond(a)
	g := analysis.BuildCFG(A, analysis.Config{})

	require.Len(t, g.Nodes, 4)
	for _, n := range []ir.AbstractionRef{A, B, C, D} {
		assert.GreaterOrEqual(t, g.Index(n), 0, "%v should be reachable", n)
	}
}

func TestBuildCFGSuccsAndPredsAreConsistent(t *testing.T) {
	a := newArena()
	A, B, C, D := buildDiamond(a)
	g := analysis.BuildCFG(A, analysis.Config{})

	assert.Len(t, g.Succs[A], 2)
	assert.Len(t, g.Preds[D], 2)
	assert.Empty(t, g.Succs[D])
	assert.Len(t, g.Preds[A], 0)

	var succsOfA []ir.AbstractionRef
	for _, e := range g.Succs[A] {
		succsOfA = append(succsOfA, e.To)
	}
	assert.ElementsMatch(t, []ir.AbstractionRef{B, C}, succsOfA)
}

func TestBuildCFGIndexReturnsMinusOneForUnreachable(t *testing.T) {
	a := newArena()
	_, _, _, _ = buildDiamond(a)
	unreachable := ir.DeclareBasicBlockHeader(a, nil, "orphan")
	g := analysis.BuildCFG(ir.DeclareBasicBlockHeader(a, nil, "solo"), analysis.Config{})
	assert.Equal(t, -1, g.Index(unreachable))
}

func TestBuildCFGIgnoresStructuredEdgesByDefault(t *testing.T) {
	a := newArena()
	i32 := ir.IntType(a, 32, true)
	cond := ir.True(a)
	trueBB := ir.DeclareBasicBlockHeader(a, nil, "t")
	ir.PopulateBasicBlockBody(trueBB, ir.NewMergeSelection(a, nil))
	tail := ir.DeclareBasicBlockHeader(a, nil, "tail")
	ir.PopulateBasicBlockBody(tail, ir.NewUnreachable(a))

	entry := ir.DeclareBasicBlockHeader(a, nil, "entry")
	ifNode := ir.NewIf(a, []*ir.Node{i32}, cond, trueBB, nil, tail)
	ir.PopulateBasicBlockBody(entry, ifNode)

	g := analysis.BuildCFG(entry, analysis.Config{FollowStructured: false})
	assert.Len(t, g.Nodes, 1, "without FollowStructured the If's bodies must not be walked")
}

func TestBuildCFGFollowsStructuredEdgesWhenConfigured(t *testing.T) {
	a := newArena()
	i32 := ir.IntType(a, 32, true)
	cond := ir.True(a)
	trueBB := ir.DeclareBasicBlockHeader(a, nil, "t")
	ir.PopulateBasicBlockBody(trueBB, ir.NewMergeSelection(a, nil))
	tail := ir.DeclareBasicBlockHeader(a, nil, "tail")
	ir.PopulateBasicBlockBody(tail, ir.NewUnreachable(a))

	entry := ir.DeclareBasicBlockHeader(a, nil, "entry")
	ifNode := ir.NewIf(a, []*ir.Node{i32}, cond, trueBB, nil, tail)
	ir.PopulateBasicBlockBody(entry, ifNode)

	g := analysis.BuildCFG(entry, analysis.Config{FollowStructured: true})
	assert.Len(t, g.Nodes, 3)
}
