package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewJumpInternsOnTargetArgsAndMem(t *testing.T) {
	a := newTestArena()
	bb := DeclareBasicBlockHeader(a, nil, "next")
	arg := NewIntLiteral(a, 32, true, 1)
	j1 := NewJump(a, bb, []*Node{arg}, nil)
	j2 := NewJump(a, bb, []*Node{arg}, nil)
	assert.Same(t, j1, j2)

	other := DeclareBasicBlockHeader(a, nil, "other")
	j3 := NewJump(a, other, []*Node{arg}, nil)
	assert.NotSame(t, j1, j3)
}

func TestNewBranchInternsOnCondAndJumps(t *testing.T) {
	a := newTestArena()
	cond := True(a)
	trueBB := DeclareBasicBlockHeader(a, nil, "t")
	falseBB := DeclareBasicBlockHeader(a, nil, "f")
	tj := NewJump(a, trueBB, nil, nil)
	fj := NewJump(a, falseBB, nil, nil)
	b1 := NewBranch(a, cond, tj, fj)
	b2 := NewBranch(a, cond, tj, fj)
	assert.Same(t, b1, b2)

	swapped := NewBranch(a, cond, fj, tj)
	assert.NotSame(t, b1, swapped)
}

func TestNewSwitchInternsOnCasesAndDefault(t *testing.T) {
	a := newTestArena()
	val := NewIntLiteral(a, 32, true, 3)
	case0 := NewIntLiteral(a, 32, true, 0)
	case1 := NewIntLiteral(a, 32, true, 1)
	bb0 := DeclareBasicBlockHeader(a, nil, "c0")
	bb1 := DeclareBasicBlockHeader(a, nil, "c1")
	def := DeclareBasicBlockHeader(a, nil, "def")
	j0 := NewJump(a, bb0, nil, nil)
	j1 := NewJump(a, bb1, nil, nil)
	defJump := NewJump(a, def, nil, nil)

	sw1 := NewSwitch(a, val, []*Node{case0, case1}, []*Node{j0, j1}, defJump)
	sw2 := NewSwitch(a, val, []*Node{case0, case1}, []*Node{j0, j1}, defJump)
	assert.Same(t, sw1, sw2)
}

func TestNewTailCallAndReturn(t *testing.T) {
	a := newTestArena()
	fn := DeclareFunctionHeader(a, nil, "f", nil, nil)
	callee := NewFnAddr(a, fn)
	arg := NewIntLiteral(a, 32, true, 1)
	tc1 := NewTailCall(a, callee, []*Node{arg})
	tc2 := NewTailCall(a, callee, []*Node{arg})
	assert.Same(t, tc1, tc2)

	ret1 := NewReturn(a, []*Node{arg})
	ret2 := NewReturn(a, []*Node{arg})
	assert.Same(t, ret1, ret2)
}

func TestMergeTerminatorsInternOnArgs(t *testing.T) {
	a := newTestArena()
	arg := NewIntLiteral(a, 32, true, 7)
	assert.Same(t, NewMergeSelection(a, []*Node{arg}), NewMergeSelection(a, []*Node{arg}))
	assert.Same(t, NewMergeContinue(a, []*Node{arg}), NewMergeContinue(a, []*Node{arg}))
	assert.Same(t, NewMergeBreak(a, []*Node{arg}), NewMergeBreak(a, []*Node{arg}))
	assert.NotSame(t, NewMergeSelection(a, []*Node{arg}), NewMergeContinue(a, []*Node{arg}))
}

func TestNewUnreachableIsSingleton(t *testing.T) {
	a := newTestArena()
	assert.Same(t, NewUnreachable(a), NewUnreachable(a))
}
