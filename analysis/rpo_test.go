package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJackiMonster/shady/analysis"
	"github.com/TheJackiMonster/shady/ir"
)

func indexOf(order []ir.AbstractionRef, n ir.AbstractionRef) int {
	for i, o := range order {
		if o == n {
			return i
		}
	}
	return -1
}

func TestReversePostorderStartsAtEntryAndEndsAtMerge(t *testing.T) {
	a := newArena()
	A, B, C, D := buildDiamond(a)
	g := analysis.BuildCFG(A, analysis.Config{})
	rpo := analysis.ReversePostorder(g)

	require.Len(t, rpo, 4)
	assert.Equal(t, A, rpo[0], "entry must always lead reverse postorder")
	assert.Less(t, indexOf(rpo, A), indexOf(rpo, B))
	assert.Less(t, indexOf(rpo, A), indexOf(rpo, C))
	assert.Less(t, indexOf(rpo, B), indexOf(rpo, D))
	assert.Less(t, indexOf(rpo, C), indexOf(rpo, D))
}

func TestReversePostorderSingleNode(t *testing.T) {
	a := newArena()
	solo := ir.DeclareBasicBlockHeader(a, nil, "solo")
	ir.PopulateBasicBlockBody(solo, ir.NewUnreachable(a))
	g := analysis.BuildCFG(solo, analysis.Config{})
	rpo := analysis.ReversePostorder(g)
	assert.Equal(t, []ir.AbstractionRef{solo}, rpo)
}
