package passes

import (
	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// LowerInt64 is pipeline step 8: it erases every Int{64} into a two-lane
// RecordType{lo: uint32, hi: int32-or-uint32} and rewrites the handful of
// PrimOps whose result depends on the 64-bit magnitude (the arithmetic,
// bitwise and comparison families) into the equivalent pair-of-32-bit-ops
// expansion, for targets (most of emit/cfamily's dialects included) with no
// native 64-bit integer. Anything that only moves a 64-bit value around
// without interpreting it — Select, Extract, Insert, Convert/Reinterpret
// between two equal-width types — already works once its type is lowered,
// because the record is just another structural type to those ops.
//
// Known gap, left for a future pass rather than guessed at here: Convert
// between Int{64} and a 64-bit Float is not handled (GPU targets narrow
// enough to need int64 emulation in the first place rarely have doubles
// either); DefaultRewrite still rebuilds such a Convert structurally, which
// will simply fail ir.TypeOf's width check once the int64 side is an
// unsized record — caught at the same point a real type error would be.
func LowerInt64(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	l := &int64Lowerer{ctx: ctx}
	r := rewrite.New(src, dst, l.process)
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

type int64Lowerer struct{ ctx *Context }

func (l *int64Lowerer) process(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	dst := r.DstModule.Arena
	switch p := n.Payload.(type) {
	case ir.IntPayload:
		if p.Width != 64 {
			return DefaultRewriteTyped(r, n)
		}
		return int64RecordType(dst, p.Signed)

	case ir.IntLiteralPayload:
		if p.Width != 64 {
			return DefaultRewriteTyped(r, n)
		}
		lo := ir.NewIntLiteral(dst, 32, false, p.Value&0xffffffff)
		hi := ir.NewIntLiteral(dst, 32, p.Signed, p.Value>>32)
		return typed(dst, ir.NewComposite(dst, int64RecordType(dst, p.Signed), []*ir.Node{lo, hi}))

	case ir.PrimOpPayload:
		if out, ok := l.lowerPrimOp(r, p); ok {
			return out
		}
		return DefaultRewriteTyped(r, n)

	default:
		return DefaultRewriteTyped(r, n)
	}
}

// typed is retype without the no-op-if-already-typed short circuit retype
// needs for instructions already carrying a cached type; every node built in
// this file is brand new, so it always needs the assignment, and a typing
// failure here means this pass built something ill-typed — a bug in the
// lowering itself, worth surfacing immediately rather than letting a nil
// Type surface three passes later in the emitter.
func typed(a *arena.Arena, n *ir.Node) *ir.Node {
	t, err := ir.TypeOf(a, n)
	if err != nil {
		panic(err)
	}
	n.Type = t
	return n
}

func int64RecordType(a *arena.Arena, signed bool) *ir.Node {
	lo := ir.IntType(a, 32, false)
	hi := ir.IntType(a, 32, signed)
	return ir.NewRecordType(a, []*ir.Node{lo, hi}, []string{"lo", "hi"}, ir.RecordPlain)
}

func is64(t *ir.Node) (signed bool, ok bool) {
	if t == nil {
		return false, false
	}
	inner := ir.Inner(t)
	if ir.KindOf(inner) != ir.KindInt {
		return false, false
	}
	p := inner.Payload.(ir.IntPayload)
	return p.Signed, p.Width == 64
}

func extractLane(dst *arena.Arena, composite *ir.Node, lane int) *ir.Node {
	idx := ir.NewIntLiteral(dst, 32, false, uint64(lane))
	return typed(dst, ir.NewPrimOp(dst, ir.OpExtract, nil, []*ir.Node{composite, idx}))
}

func lowerOf(dst *arena.Arena, v *ir.Node) (lo, hi *ir.Node) {
	return extractLane(dst, v, 0), extractLane(dst, v, 1)
}

func boolAnd(dst *arena.Arena, a, b *ir.Node) *ir.Node {
	return typed(dst, ir.NewPrimOp(dst, ir.OpSelect, nil, []*ir.Node{a, b, ir.False(dst)}))
}

func boolOr(dst *arena.Arena, a, b *ir.Node) *ir.Node {
	return typed(dst, ir.NewPrimOp(dst, ir.OpSelect, nil, []*ir.Node{a, ir.True(dst), b}))
}

// lowerPrimOp reports ok=false for any PrimOp none of whose operands is a
// 64-bit int, so the caller falls back to the ordinary structural rewrite.
func (l *int64Lowerer) lowerPrimOp(r *rewrite.Rewriter, p ir.PrimOpPayload) (*ir.Node, bool) {
	dst := r.DstModule.Arena
	rw := func(x *ir.Node) *ir.Node { return rewrite.RewriteNode(r, x) }

	if len(p.Operands) == 0 {
		return nil, false
	}
	signed, ok := is64(p.Operands[0].Type)
	if !ok {
		return nil, false
	}

	switch p.Op {
	case ir.OpAdd, ir.OpSub:
		a, b := rw(p.Operands[0]), rw(p.Operands[1])
		loA, hiA := lowerOf(dst, a)
		loB, hiB := lowerOf(dst, b)
		hiType := ir.IntType(dst, 32, signed)
		if p.Op == ir.OpAdd {
			sumCarry := typed(dst, ir.NewPrimOp(dst, ir.OpAddCarry, nil, []*ir.Node{loA, loB}))
			lo, carry := lowerOf(dst, sumCarry)
			carryConv := typed(dst, ir.NewPrimOp(dst, ir.OpConvert, []*ir.Node{hiType}, []*ir.Node{carry}))
			hiSum := typed(dst, ir.NewPrimOp(dst, ir.OpAdd, nil, []*ir.Node{hiA, hiB}))
			hi := typed(dst, ir.NewPrimOp(dst, ir.OpAdd, nil, []*ir.Node{hiSum, carryConv}))
			return typed(dst, ir.NewComposite(dst, int64RecordType(dst, signed), []*ir.Node{lo, hi})), true
		}
		diffBorrow := typed(dst, ir.NewPrimOp(dst, ir.OpSubBorrow, nil, []*ir.Node{loA, loB}))
		lo, borrow := lowerOf(dst, diffBorrow)
		borrowConv := typed(dst, ir.NewPrimOp(dst, ir.OpConvert, []*ir.Node{hiType}, []*ir.Node{borrow}))
		hiDiff := typed(dst, ir.NewPrimOp(dst, ir.OpSub, nil, []*ir.Node{hiA, hiB}))
		hi := typed(dst, ir.NewPrimOp(dst, ir.OpSub, nil, []*ir.Node{hiDiff, borrowConv}))
		return typed(dst, ir.NewComposite(dst, int64RecordType(dst, signed), []*ir.Node{lo, hi})), true

	case ir.OpAnd, ir.OpOr, ir.OpXor:
		a, b := rw(p.Operands[0]), rw(p.Operands[1])
		loA, hiA := lowerOf(dst, a)
		loB, hiB := lowerOf(dst, b)
		lo := typed(dst, ir.NewPrimOp(dst, p.Op, nil, []*ir.Node{loA, loB}))
		hi := typed(dst, ir.NewPrimOp(dst, p.Op, nil, []*ir.Node{hiA, hiB}))
		return typed(dst, ir.NewComposite(dst, int64RecordType(dst, signed), []*ir.Node{lo, hi})), true

	case ir.OpNot:
		a := rw(p.Operands[0])
		loA, hiA := lowerOf(dst, a)
		lo := typed(dst, ir.NewPrimOp(dst, ir.OpNot, nil, []*ir.Node{loA}))
		hi := typed(dst, ir.NewPrimOp(dst, ir.OpNot, nil, []*ir.Node{hiA}))
		return typed(dst, ir.NewComposite(dst, int64RecordType(dst, signed), []*ir.Node{lo, hi})), true

	case ir.OpShl, ir.OpShr:
		_, amountIs64 := is64(p.Operands[1].Type)
		return l.lowerShift(dst, p.Op, rw(p.Operands[0]), rw(p.Operands[1]), amountIs64, signed), true

	case ir.OpEq, ir.OpNeq, ir.OpLt, ir.OpLeq, ir.OpGt, ir.OpGeq:
		return l.lowerCompare(dst, p.Op, rw(p.Operands[0]), rw(p.Operands[1])), true
	}
	return nil, false
}

// lowerShift splits a shift by a dynamic amount into the standard
// legalizer idiom: shift each half by (amount mod 32), then fold in the
// bits crossing the lane boundary, selecting the saturated all-or-nothing
// result once the amount reaches or exceeds 32. The amount's own 64-bit
// value (if it is one) is truncated to its low lane: a shift count beyond a
// few dozen bits has no defined meaning here any more than it does in C.
func (l *int64Lowerer) lowerShift(dst *arena.Arena, op ir.PrimOpCode, v, amount *ir.Node, amountIs64, signed bool) *ir.Node {
	amtRaw := amount
	if amountIs64 {
		amtRaw, _ = lowerOf(dst, amount)
	}
	i32u := ir.IntType(dst, 32, false)
	i32s := ir.IntType(dst, 32, signed)
	// Canonicalize to unsigned so the magnitude arithmetic below never has
	// to reconcile a signed shift-count's type against these unsigned
	// literals; arithmeticOps/comparisonOps require exact operand-type
	// matches, bitwiseOps doesn't care what type the shift count itself is.
	amt32 := typed(dst, ir.NewPrimOp(dst, ir.OpConvert, []*ir.Node{i32u}, []*ir.Node{amtRaw}))
	lo, hi := lowerOf(dst, v)

	c32 := ir.NewIntLiteral(dst, 32, false, 32)
	zero32 := ir.NewIntLiteral(dst, 32, false, 0)
	lt32 := typed(dst, ir.NewPrimOp(dst, ir.OpLt, nil, []*ir.Node{amt32, c32}))
	amtOver := typed(dst, ir.NewPrimOp(dst, ir.OpSub, nil, []*ir.Node{amt32, c32}))
	amtComp := typed(dst, ir.NewPrimOp(dst, ir.OpSub, nil, []*ir.Node{c32, amt32}))
	isZero := typed(dst, ir.NewPrimOp(dst, ir.OpEq, nil, []*ir.Node{amt32, zero32}))

	var loResult, hiResult *ir.Node
	if op == ir.OpShl {
		loShifted := typed(dst, ir.NewPrimOp(dst, ir.OpShl, nil, []*ir.Node{lo, amt32}))
		hiLowShift := typed(dst, ir.NewPrimOp(dst, ir.OpShl, nil, []*ir.Node{hi, amt32}))
		crossed := typed(dst, ir.NewPrimOp(dst, ir.OpShr, nil, []*ir.Node{
			typed(dst, ir.NewPrimOp(dst, ir.OpReinterpret, []*ir.Node{i32u}, []*ir.Node{lo})), amtComp,
		}))
		hiNear := typed(dst, ir.NewPrimOp(dst, ir.OpOr, nil, []*ir.Node{hiLowShift, typed(dst, ir.NewPrimOp(dst, ir.OpReinterpret, []*ir.Node{i32s}, []*ir.Node{crossed}))}))
		hiNear = boolOr0(dst, isZero, hi, hiNear)
		loFar := zeroOrSame(dst, isZero, lo, zero32)
		hiFarU := typed(dst, ir.NewPrimOp(dst, ir.OpShl, nil, []*ir.Node{lo, amtOver}))
		hiFar := typed(dst, ir.NewPrimOp(dst, ir.OpReinterpret, []*ir.Node{i32s}, []*ir.Node{hiFarU}))
		loResult = typed(dst, ir.NewPrimOp(dst, ir.OpSelect, nil, []*ir.Node{lt32, loShifted, loFar}))
		hiResult = typed(dst, ir.NewPrimOp(dst, ir.OpSelect, nil, []*ir.Node{lt32, hiNear, hiFar}))
	} else {
		hiShifted := typed(dst, ir.NewPrimOp(dst, ir.OpShr, nil, []*ir.Node{hi, amt32}))
		loNearShift := typed(dst, ir.NewPrimOp(dst, ir.OpShr, nil, []*ir.Node{
			typed(dst, ir.NewPrimOp(dst, ir.OpReinterpret, []*ir.Node{i32u}, []*ir.Node{lo})), amt32,
		}))
		crossed := typed(dst, ir.NewPrimOp(dst, ir.OpShl, nil, []*ir.Node{hi, amtComp}))
		loNear := typed(dst, ir.NewPrimOp(dst, ir.OpOr, nil, []*ir.Node{loNearShift, typed(dst, ir.NewPrimOp(dst, ir.OpReinterpret, []*ir.Node{i32u}, []*ir.Node{crossed}))}))
		loNear = boolOr0(dst, isZero, lo, loNear)
		loFar := typed(dst, ir.NewPrimOp(dst, ir.OpShr, nil, []*ir.Node{hi, amtOver}))
		hiFar := signExtendOrZero(dst, signed, hi)
		loResult = typed(dst, ir.NewPrimOp(dst, ir.OpSelect, nil, []*ir.Node{lt32, loNear, typed(dst, ir.NewPrimOp(dst, ir.OpReinterpret, []*ir.Node{i32u}, []*ir.Node{loFar}))}))
		hiResult = typed(dst, ir.NewPrimOp(dst, ir.OpSelect, nil, []*ir.Node{lt32, hiShifted, hiFar}))
	}
	return typed(dst, ir.NewComposite(dst, int64RecordType(dst, signed), []*ir.Node{loResult, hiResult}))
}

// boolOr0 returns same when cond holds, otherwise alt; used where a shift
// amount of exactly zero must leave a lane untouched rather than run it
// through the cross-lane OR (which a zero complementary shift would
// otherwise corrupt: a shift by 32 of an unsigned value is undefined in most
// backends).
func boolOr0(dst *arena.Arena, cond, same, alt *ir.Node) *ir.Node {
	return typed(dst, ir.NewPrimOp(dst, ir.OpSelect, nil, []*ir.Node{cond, same, alt}))
}

func zeroOrSame(dst *arena.Arena, cond, same, zero *ir.Node) *ir.Node {
	return typed(dst, ir.NewPrimOp(dst, ir.OpSelect, nil, []*ir.Node{cond, same, zero}))
}

func signExtendOrZero(dst *arena.Arena, signed bool, hi *ir.Node) *ir.Node {
	if !signed {
		return ir.NewIntLiteral(dst, 32, false, 0)
	}
	thirtyOne := ir.NewIntLiteral(dst, 32, true, 31)
	return typed(dst, ir.NewPrimOp(dst, ir.OpShr, nil, []*ir.Node{hi, thirtyOne}))
}

// lowerCompare implements the standard split-compare idiom: compare the
// high lanes first (using their declared signedness), falling through to an
// unsigned low-lane compare only when the high lanes are equal.
func (l *int64Lowerer) lowerCompare(dst *arena.Arena, op ir.PrimOpCode, a, b *ir.Node) *ir.Node {
	loA, hiA := lowerOf(dst, a)
	loB, hiB := lowerOf(dst, b)

	hiEq := typed(dst, ir.NewPrimOp(dst, ir.OpEq, nil, []*ir.Node{hiA, hiB}))
	loEq := typed(dst, ir.NewPrimOp(dst, ir.OpEq, nil, []*ir.Node{loA, loB}))

	switch op {
	case ir.OpEq:
		return boolAnd(dst, hiEq, loEq)
	case ir.OpNeq:
		eq := boolAnd(dst, hiEq, loEq)
		return typed(dst, ir.NewPrimOp(dst, ir.OpSelect, nil, []*ir.Node{eq, ir.False(dst), ir.True(dst)}))
	}

	hiLt := typed(dst, ir.NewPrimOp(dst, ir.OpLt, nil, []*ir.Node{hiA, hiB}))
	loLt := typed(dst, ir.NewPrimOp(dst, ir.OpLt, nil, []*ir.Node{loA, loB}))
	lt := boolOr(dst, hiLt, boolAnd(dst, hiEq, loLt))

	switch op {
	case ir.OpLt:
		return lt
	case ir.OpLeq:
		return boolOr(dst, lt, boolAnd(dst, hiEq, loEq))
	case ir.OpGt:
		leq := boolOr(dst, lt, boolAnd(dst, hiEq, loEq))
		return typed(dst, ir.NewPrimOp(dst, ir.OpSelect, nil, []*ir.Node{leq, ir.False(dst), ir.True(dst)}))
	case ir.OpGeq:
		return typed(dst, ir.NewPrimOp(dst, ir.OpSelect, nil, []*ir.Node{lt, ir.False(dst), ir.True(dst)}))
	}
	panic("lower_int64: unreachable comparison op")
}
