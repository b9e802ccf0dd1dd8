package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TheJackiMonster/shady/analysis"
	"github.com/TheJackiMonster/shady/ir"
)

func TestFreeFrontierMarksAllPredecessorsOfTargets(t *testing.T) {
	a := newArena()
	A, B, C, D := buildDiamond(a)
	g := analysis.BuildCFG(A, analysis.Config{})

	needs := analysis.FreeFrontier(g, map[ir.AbstractionRef]bool{D: true})
	assert.True(t, needs[A])
	assert.True(t, needs[B])
	assert.True(t, needs[C])
	assert.False(t, needs[D], "the target itself consumes the join point directly and is not in its own frontier")
}

func TestFreeFrontierEmptyTargetsYieldsNoNeeds(t *testing.T) {
	a := newArena()
	A, _, _, _ := buildDiamond(a)
	g := analysis.BuildCFG(A, analysis.Config{})
	needs := analysis.FreeFrontier(g, nil)
	assert.Empty(t, needs)
}
