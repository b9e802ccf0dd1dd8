package ir

import (
	"fmt"

	"github.com/TheJackiMonster/shady/arena"
)

type JumpPayload struct {
	Target AbstractionRef
	Args   []*Node
	Mem    *Node // optional explicit memory-ordering token; nil if unused
}

func (p JumpPayload) StructuralKey() string {
	mem := "-"
	if p.Mem != nil {
		mem = fmt.Sprintf("%d", p.Mem.ID)
	}
	return fmt.Sprintf("%d|%s|%s", p.Target.ID, idList(p.Args), mem)
}

func NewJump(a *arena.Arena, target AbstractionRef, args []*Node, mem *Node) *Node {
	return mustIntern(a, KindJump, JumpPayload{Target: target, Args: a.InternNodes(args), Mem: mem}, nil)
}

type BranchPayload struct {
	Cond                *Node
	TrueJump, FalseJump *Node // each itself a Jump node
}

func (p BranchPayload) StructuralKey() string {
	return fmt.Sprintf("%d,%d,%d", p.Cond.ID, p.TrueJump.ID, p.FalseJump.ID)
}

func NewBranch(a *arena.Arena, cond, trueJump, falseJump *Node) *Node {
	return mustIntern(a, KindBranch, BranchPayload{Cond: cond, TrueJump: trueJump, FalseJump: falseJump}, nil)
}

type SwitchPayload struct {
	Value       *Node
	CaseValues  []*Node
	CaseJumps   []*Node
	DefaultJump *Node
}

func (p SwitchPayload) StructuralKey() string {
	return fmt.Sprintf("%d|%s|%s|%d", p.Value.ID, idList(p.CaseValues), idList(p.CaseJumps), p.DefaultJump.ID)
}

func NewSwitch(a *arena.Arena, value *Node, caseValues, caseJumps []*Node, def *Node) *Node {
	return mustIntern(a, KindSwitch, SwitchPayload{
		Value: value, CaseValues: a.InternNodes(caseValues), CaseJumps: a.InternNodes(caseJumps), DefaultJump: def,
	}, nil)
}

type JoinPayload struct {
	JoinPoint *Node
	Args      []*Node
}

func (p JoinPayload) StructuralKey() string { return fmt.Sprintf("%d|%s", p.JoinPoint.ID, idList(p.Args)) }

func NewJoin(a *arena.Arena, joinPoint *Node, args []*Node) *Node {
	return mustIntern(a, KindJoinTerminator, JoinPayload{JoinPoint: joinPoint, Args: a.InternNodes(args)}, nil)
}

type TailCallPayload struct {
	Callee *Node
	Args   []*Node
}

func (p TailCallPayload) StructuralKey() string { return fmt.Sprintf("%d|%s", p.Callee.ID, idList(p.Args)) }

func NewTailCall(a *arena.Arena, callee *Node, args []*Node) *Node {
	return mustIntern(a, KindTailCall, TailCallPayload{Callee: callee, Args: a.InternNodes(args)}, nil)
}

type ReturnPayload struct{ Args []*Node }

func (p ReturnPayload) StructuralKey() string { return idList(p.Args) }

func NewReturn(a *arena.Arena, args []*Node) *Node {
	return mustIntern(a, KindReturn, ReturnPayload{Args: a.InternNodes(args)}, nil)
}

// MergeSelection/Continue/Break only appear at the end of the body of the
// matching structured construct; the Bind/lower_cf
// passes enforce that positionally, not via the node's own payload.

type MergeSelectionPayload struct{ Args []*Node }

func (p MergeSelectionPayload) StructuralKey() string { return idList(p.Args) }

func NewMergeSelection(a *arena.Arena, args []*Node) *Node {
	return mustIntern(a, KindMergeSelection, MergeSelectionPayload{Args: a.InternNodes(args)}, nil)
}

type MergeContinuePayload struct{ Args []*Node }

func (p MergeContinuePayload) StructuralKey() string { return idList(p.Args) }

func NewMergeContinue(a *arena.Arena, args []*Node) *Node {
	return mustIntern(a, KindMergeContinue, MergeContinuePayload{Args: a.InternNodes(args)}, nil)
}

type MergeBreakPayload struct{ Args []*Node }

func (p MergeBreakPayload) StructuralKey() string { return idList(p.Args) }

func NewMergeBreak(a *arena.Arena, args []*Node) *Node {
	return mustIntern(a, KindMergeBreak, MergeBreakPayload{Args: a.InternNodes(args)}, nil)
}

type UnreachablePayload struct{}

func (UnreachablePayload) StructuralKey() string { return "" }

func NewUnreachable(a *arena.Arena) *Node {
	return mustIntern(a, KindUnreachable, UnreachablePayload{}, nil)
}
