package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJackiMonster/shady/analysis"
	"github.com/TheJackiMonster/shady/ir"
)

func TestBuildScheduleIsDominanceRespecting(t *testing.T) {
	a := newArena()
	A, B, C, D := buildDiamond(a)
	g := analysis.BuildCFG(A, analysis.Config{})
	sched := analysis.BuildSchedule(g)

	require.Equal(t, 0, sched.Position(A), "the entry must schedule first")
	assert.True(t, sched.Before(A, B))
	assert.True(t, sched.Before(A, C))
	assert.True(t, sched.Before(B, D))
	assert.True(t, sched.Before(C, D))
}

func TestScheduleUnknownNodePositionIsMinusOne(t *testing.T) {
	a := newArena()
	A, _, _, _ := buildDiamond(a)
	orphan := ir.DeclareBasicBlockHeader(a, nil, "orphan")
	g := analysis.BuildCFG(A, analysis.Config{})
	sched := analysis.BuildSchedule(g)
	assert.Equal(t, -1, sched.Position(orphan))
}
