package ir

import (
	"fmt"

	"github.com/TheJackiMonster/shady/arena"
)

// PrimOpCode enumerates the built-in operators dispatched by the
// PrimOp typing rule.
type PrimOpCode int

const (
	OpAdd PrimOpCode = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAddCarry
	OpSubBorrow
	OpMulExtended
	OpEq
	OpNeq
	OpLt
	OpLeq
	OpGt
	OpGeq
	OpConvert
	OpReinterpret
	OpSelect
	OpExtract
	OpInsert
	OpShuffle
	// Bitwise family (supplemented from original_source/)
	OpAnd
	OpOr
	OpXor
	OpNot
	OpShl
	OpShr
	// Math family (supplemented from original_source/)
	OpMin
	OpMax
	OpAbs
	OpSign
	OpFloor
	OpCeil
	OpRound
	OpFract
	OpSqrt
	OpRsqrt
	OpExp
	OpLog
	OpSin
	OpCos
	OpTan
	OpPow
	OpFma
	// Stack discipline
	OpStackAllocSize
	// Subgroup
	OpSubgroupBroadcastFirst
	OpSubgroupBallot
	OpSubgroupElect
)

var primOpNames = map[PrimOpCode]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpMod: "mod",
	OpAddCarry: "add_carry", OpSubBorrow: "sub_borrow", OpMulExtended: "mul_extended",
	OpEq: "eq", OpNeq: "neq", OpLt: "lt", OpLeq: "leq", OpGt: "gt", OpGeq: "geq",
	OpConvert: "convert", OpReinterpret: "reinterpret", OpSelect: "select",
	OpExtract: "extract", OpInsert: "insert", OpShuffle: "shuffle",
	OpAnd: "and", OpOr: "or", OpXor: "xor", OpNot: "not", OpShl: "shl", OpShr: "shr",
	OpMin: "min", OpMax: "max", OpAbs: "abs", OpSign: "sign", OpFloor: "floor",
	OpCeil: "ceil", OpRound: "round", OpFract: "fract", OpSqrt: "sqrt", OpRsqrt: "rsqrt",
	OpExp: "exp", OpLog: "log", OpSin: "sin", OpCos: "cos", OpTan: "tan", OpPow: "pow", OpFma: "fma",
	OpStackAllocSize:         "alloc_size",
	OpSubgroupBroadcastFirst: "subgroup_broadcast_first",
	OpSubgroupBallot:         "subgroup_ballot",
	OpSubgroupElect:          "subgroup_elect",
}

func (op PrimOpCode) String() string {
	if s, ok := primOpNames[op]; ok {
		return s
	}
	return "unknown_op"
}

// arithmeticOps, comparisonOps, bitwiseOps and mathOps classify op for the
// typing rules in typing.go.
var arithmeticOps = map[PrimOpCode]bool{OpAdd: true, OpSub: true, OpMul: true, OpDiv: true, OpMod: true}
var extendedArithmeticOps = map[PrimOpCode]bool{OpAddCarry: true, OpSubBorrow: true, OpMulExtended: true}
var comparisonOps = map[PrimOpCode]bool{OpEq: true, OpNeq: true, OpLt: true, OpLeq: true, OpGt: true, OpGeq: true}
var bitwiseOps = map[PrimOpCode]bool{OpAnd: true, OpOr: true, OpXor: true, OpNot: true, OpShl: true, OpShr: true}
var mathUnaryOps = map[PrimOpCode]bool{
	OpAbs: true, OpSign: true, OpFloor: true, OpCeil: true, OpRound: true, OpFract: true,
	OpSqrt: true, OpRsqrt: true, OpExp: true, OpLog: true, OpSin: true, OpCos: true, OpTan: true,
}
var mathBinaryOps = map[PrimOpCode]bool{OpMin: true, OpMax: true, OpPow: true}

type PrimOpPayload struct {
	Op       PrimOpCode
	TypeArgs []*Node
	Operands []*Node
}

func (p PrimOpPayload) StructuralKey() string {
	return fmt.Sprintf("%d|%s|%s", p.Op, idList(p.TypeArgs), idList(p.Operands))
}

func NewPrimOp(a *arena.Arena, op PrimOpCode, typeArgs, operands []*Node) *Node {
	typeArgs = a.InternNodes(typeArgs)
	operands = a.InternNodes(operands)
	if folded := foldReinterpret(a, op, typeArgs, operands); folded != nil {
		return folded
	}
	return mustIntern(a, KindPrimOp, PrimOpPayload{
		Op: op, TypeArgs: typeArgs, Operands: operands,
	}, nil)
}

// foldReinterpret implements spec.md §8 scenario 6 under arena.Config.Fold:
// reinterpreting a value back to the exact type it was itself reinterpreted
// from collapses to that original value, e.g.
// reinterpret(i32, reinterpret(f32, x: i32)) folds to x, rather than
// interning two OpReinterpret nodes. Returns nil when the fold doesn't
// apply, so the caller falls through to ordinary interning.
func foldReinterpret(a *arena.Arena, op PrimOpCode, typeArgs, operands []*Node) *Node {
	if !a.Config.Fold || op != OpReinterpret || len(typeArgs) != 1 || len(operands) != 1 {
		return nil
	}
	inner, ok := operands[0].Payload.(PrimOpPayload)
	if !ok || inner.Op != OpReinterpret || len(inner.Operands) != 1 {
		return nil
	}
	original := inner.Operands[0]
	q, ok := AsQualified(original.Type)
	if !ok || q.Inner != typeArgs[0] {
		return nil
	}
	return original
}

// ---- Call -----------------------------------------------------------------

type CallPayload struct {
	Callee *Node
	Args   []*Node
}

func (p CallPayload) StructuralKey() string {
	return fmt.Sprintf("%d|%s", p.Callee.ID, idList(p.Args))
}

func NewCall(a *arena.Arena, callee *Node, args []*Node) *Node {
	return mustIntern(a, KindCall, CallPayload{Callee: callee, Args: a.InternNodes(args)}, nil)
}

// ---- Memory instructions -----------------------------------------------------

type StackAllocPayload struct{ Type *Node }

func (p StackAllocPayload) StructuralKey() string { return fmt.Sprintf("%d", p.Type.ID) }

func NewStackAlloc(a *arena.Arena, t *Node) *Node {
	return mustIntern(a, KindStackAlloc, StackAllocPayload{Type: t}, nil)
}

type LocalAllocPayload struct{ Type *Node }

func (p LocalAllocPayload) StructuralKey() string { return fmt.Sprintf("%d", p.Type.ID) }

func NewLocalAlloc(a *arena.Arena, t *Node) *Node {
	return mustIntern(a, KindLocalAlloc, LocalAllocPayload{Type: t}, nil)
}

type LoadPayload struct{ Ptr *Node }

func (p LoadPayload) StructuralKey() string { return fmt.Sprintf("%d", p.Ptr.ID) }

func NewLoad(a *arena.Arena, ptr *Node) *Node {
	return mustIntern(a, KindLoad, LoadPayload{Ptr: ptr}, nil)
}

type StorePayload struct{ Ptr, Value *Node }

func (p StorePayload) StructuralKey() string { return fmt.Sprintf("%d,%d", p.Ptr.ID, p.Value.ID) }

func NewStore(a *arena.Arena, ptr, value *Node) *Node {
	return mustIntern(a, KindStore, StorePayload{Ptr: ptr, Value: value}, nil)
}

type PtrArrayElementOffsetPayload struct{ Ptr, Offset *Node }

func (p PtrArrayElementOffsetPayload) StructuralKey() string {
	return fmt.Sprintf("%d,%d", p.Ptr.ID, p.Offset.ID)
}

func NewPtrArrayElementOffset(a *arena.Arena, ptr, offset *Node) *Node {
	return mustIntern(a, KindPtrArrayElementOffset, PtrArrayElementOffsetPayload{Ptr: ptr, Offset: offset}, nil)
}

type PtrCompositeElement struct {
	Ptr   *Node
	Index *Node // constant record-name/pack-lane index, or dynamic for arrays
}

func (p PtrCompositeElement) StructuralKey() string { return fmt.Sprintf("%d,%d", p.Ptr.ID, p.Index.ID) }

func NewPtrCompositeElement(a *arena.Arena, ptr, index *Node) *Node {
	return mustIntern(a, KindPtrCompositeElement, PtrCompositeElement{Ptr: ptr, Index: index}, nil)
}

type CopyBytesPayload struct{ Dst, Src, Count *Node }

func (p CopyBytesPayload) StructuralKey() string {
	return fmt.Sprintf("%d,%d,%d", p.Dst.ID, p.Src.ID, p.Count.ID)
}

func NewCopyBytes(a *arena.Arena, dst, src, count *Node) *Node {
	return mustIntern(a, KindCopyBytes, CopyBytesPayload{Dst: dst, Src: src, Count: count}, nil)
}

type FillBytesPayload struct{ Dst, Value, Count *Node }

func (p FillBytesPayload) StructuralKey() string {
	return fmt.Sprintf("%d,%d,%d", p.Dst.ID, p.Value.ID, p.Count.ID)
}

func NewFillBytes(a *arena.Arena, dst, value, count *Node) *Node {
	return mustIntern(a, KindFillBytes, FillBytesPayload{Dst: dst, Value: value, Count: count}, nil)
}

type DebugPrintfPayload struct {
	Format *Node
	Args   []*Node
}

func (p DebugPrintfPayload) StructuralKey() string {
	return fmt.Sprintf("%d|%s", p.Format.ID, idList(p.Args))
}

func NewDebugPrintf(a *arena.Arena, format *Node, args []*Node) *Node {
	return mustIntern(a, KindDebugPrintf, DebugPrintfPayload{Format: format, Args: a.InternNodes(args)}, nil)
}

type CommentPayload struct{ Text string }

func (p CommentPayload) StructuralKey() string { return p.Text }

func NewComment(a *arena.Arena, text string) *Node {
	return mustIntern(a, KindComment, CommentPayload{Text: a.InternString(text)}, nil)
}

// ---- Stack discipline ops -----------------------------------------------------

type PushStackPayload struct{ Value *Node }

func (p PushStackPayload) StructuralKey() string { return fmt.Sprintf("%d", p.Value.ID) }

func NewPushStack(a *arena.Arena, value *Node) *Node {
	return mustIntern(a, KindPushStack, PushStackPayload{Value: value}, nil)
}

type PopStackPayload struct{ Type *Node }

func (p PopStackPayload) StructuralKey() string { return fmt.Sprintf("%d", p.Type.ID) }

func NewPopStack(a *arena.Arena, t *Node) *Node {
	return mustIntern(a, KindPopStack, PopStackPayload{Type: t}, nil)
}

type GetStackPointerPayload struct{}

func (GetStackPointerPayload) StructuralKey() string { return "" }

func NewGetStackPointer(a *arena.Arena) *Node {
	return mustIntern(a, KindGetStackPointer, GetStackPointerPayload{}, nil)
}

type SetStackPointerPayload struct{ Value *Node }

func (p SetStackPointerPayload) StructuralKey() string { return fmt.Sprintf("%d", p.Value.ID) }

func NewSetStackPointer(a *arena.Arena, value *Node) *Node {
	return mustIntern(a, KindSetStackPointer, SetStackPointerPayload{Value: value}, nil)
}

// ---- Structured constructs: If, Match, Loop, Control --------------------------

// Abstraction is either a *Function or a *BasicBlock: a named
// body with parameters" (glossary). Structured-construct bodies and tails
// are always BasicBlocks.
type AbstractionRef = *Node

type IfPayload struct {
	YieldTypes  []*Node
	Cond        *Node
	True        AbstractionRef
	False       AbstractionRef // nil if there is no else branch
	Tail        AbstractionRef
}

func (p IfPayload) StructuralKey() string {
	f := "-"
	if p.False != nil {
		f = fmt.Sprintf("%d", p.False.ID)
	}
	return fmt.Sprintf("%s|%d|%d|%s|%d", idList(p.YieldTypes), p.Cond.ID, p.True.ID, f, p.Tail.ID)
}

func NewIf(a *arena.Arena, yieldTypes []*Node, cond *Node, trueBB, falseBB, tail AbstractionRef) *Node {
	return mustIntern(a, KindIf, IfPayload{
		YieldTypes: a.InternNodes(yieldTypes), Cond: cond, True: trueBB, False: falseBB, Tail: tail,
	}, nil)
}

type MatchPayload struct {
	YieldTypes []*Node
	Inspect    *Node
	Literals   []*Node
	Cases      []AbstractionRef
	Default    AbstractionRef
	Tail       AbstractionRef
}

func (p MatchPayload) StructuralKey() string {
	return fmt.Sprintf("%s|%d|%s|%s|%d|%d", idList(p.YieldTypes), p.Inspect.ID, idList(p.Literals), idList(p.Cases), p.Default.ID, p.Tail.ID)
}

func NewMatch(a *arena.Arena, yieldTypes []*Node, inspect *Node, literals []*Node, cases []AbstractionRef, def, tail AbstractionRef) *Node {
	return mustIntern(a, KindMatch, MatchPayload{
		YieldTypes: a.InternNodes(yieldTypes), Inspect: inspect, Literals: a.InternNodes(literals),
		Cases: cases, Default: def, Tail: tail,
	}, nil)
}

type LoopPayload struct {
	YieldTypes   []*Node
	Params       []*Node
	Body         AbstractionRef
	InitialArgs  []*Node
	Tail         AbstractionRef
}

func (p LoopPayload) StructuralKey() string {
	return fmt.Sprintf("%s|%s|%d|%s|%d", idList(p.YieldTypes), idList(p.Params), p.Body.ID, idList(p.InitialArgs), p.Tail.ID)
}

func NewLoop(a *arena.Arena, yieldTypes, params []*Node, body AbstractionRef, initialArgs []*Node, tail AbstractionRef) *Node {
	return mustIntern(a, KindLoop, LoopPayload{
		YieldTypes: a.InternNodes(yieldTypes), Params: a.InternNodes(params), Body: body,
		InitialArgs: a.InternNodes(initialArgs), Tail: tail,
	}, nil)
}

type ControlPayload struct {
	YieldTypes []*Node
	Inside     AbstractionRef // sole parameter is a JoinPointType{YieldTypes}
	Tail       AbstractionRef
}

func (p ControlPayload) StructuralKey() string {
	return fmt.Sprintf("%s|%d|%d", idList(p.YieldTypes), p.Inside.ID, p.Tail.ID)
}

func NewControl(a *arena.Arena, yieldTypes []*Node, inside, tail AbstractionRef) *Node {
	return mustIntern(a, KindControl, ControlPayload{YieldTypes: a.InternNodes(yieldTypes), Inside: inside, Tail: tail}, nil)
}

// BindIdentifiersPayload is a let-binding: it evaluates Value, binds it to
// each of Names in Body's scope, then continues into Body. It sequences a
// side-effecting Value (a Store, Call, ...) the way an expression-statement
// does, so passes.Bind only resolves names against it; it does not remove
// the node.
type BindIdentifiersPayload struct {
	Names []string
	Value *Node
	Body  AbstractionRef
}

func (p BindIdentifiersPayload) StructuralKey() string {
	return fmt.Sprintf("%v|%d|%d", p.Names, p.Value.ID, p.Body.ID)
}

func NewBindIdentifiers(a *arena.Arena, names []string, value *Node, body AbstractionRef) *Node {
	return mustIntern(a, KindBindIdentifiers, BindIdentifiersPayload{Names: names, Value: value, Body: body}, nil)
}
