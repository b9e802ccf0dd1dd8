package ir

import (
	"fmt"

	"github.com/TheJackiMonster/shady/arena"
)

// TypeOf implements the total typing function: given an arena
// and a node, it derives (or re-derives) that node's type. It never reads
// n.Type; callers that want the cached result should read n.Type directly,
// and passes.Infer is the one place that calls TypeOf and assigns the
// result back into n.Type.
//
// Zero-result instructions (Store, and any terminator) return Noret or an
// "empty multi-return" Noret.
func TypeOf(a *arena.Arena, n *Node) (*Node, error) {
	switch KindOf(n) {
	// Types are their own (meta) classification; TypeOf is not defined on
	// them and callers should not ask.
	case KindParam:
		return n.Payload.(ParamPayload).DeclaredType, nil

	case KindIntLiteral:
		p := n.Payload.(IntLiteralPayload)
		return UniformType(a, IntType(a, p.Width, p.Signed)), nil

	case KindFloatLiteral:
		p := n.Payload.(FloatLiteralPayload)
		return UniformType(a, FloatType(a, p.Width)), nil

	case KindTrue, KindFalse:
		return UniformType(a, BoolType(a)), nil

	case KindStringLiteral:
		return UniformType(a, NewPtrType(a, IntType(a, 8, false), Private, false)), nil

	case KindNullPtr:
		p := n.Payload.(NullPtrPayload)
		return UniformType(a, p.PtrType), nil

	case KindUndef:
		return UniformType(a, n.Payload.(UndefPayload).Type), nil

	case KindFill:
		p := n.Payload.(FillPayload)
		return UniformType(a, p.Type), nil

	case KindComposite:
		p := n.Payload.(CompositePayload)
		if p.Type == nil {
			return nil, fmt.Errorf("composite has no explicit type and no inference context")
		}
		return UniformType(a, p.Type), nil

	case KindFnAddr:
		fn := n.Payload.(FnAddrPayload).Fn
		return UniformType(a, NewPtrType(a, Inner(fn.Type), ProgramCode, false)), nil

	case KindRefDecl:
		decl := n.Payload.(RefDeclPayload).Decl
		return refDeclType(a, decl), nil

	case KindTuple:
		p := n.Payload.(TuplePayload)
		members := make([]*Node, len(p.Elems))
		uniform := true
		for i, e := range p.Elems {
			members[i] = Inner(e.Type)
			uniform = uniform && IsUniform(e.Type)
		}
		return Qualified(a, uniform, NewRecordType(a, members, nil, RecordMultipleReturn)), nil

	case KindPrimOp:
		return typePrimOp(a, n.Payload.(PrimOpPayload))

	case KindCall:
		return typeCall(a, n.Payload.(CallPayload))

	case KindLoad:
		ptr := n.Payload.(LoadPayload).Ptr
		pt, ok := Inner(ptr.Type).Payload.(PtrTypePayload)
		if !ok {
			return nil, fmt.Errorf("load: operand is not a pointer")
		}
		uniform := IsUniform(ptr.Type) && addressSpaceUniform(a, pt.AddressSpace)
		return Qualified(a, uniform, pt.Pointee), nil

	case KindStore:
		p := n.Payload.(StorePayload)
		pt, ok := Inner(p.Ptr.Type).Payload.(PtrTypePayload)
		if !ok {
			return nil, fmt.Errorf("store: operand is not a pointer")
		}
		if !IsSubtype(Inner(p.Value.Type), pt.Pointee) {
			return nil, fmt.Errorf("store: value type is not a subtype of pointee type")
		}
		return NoRet(a), nil

	case KindStackAlloc, KindLocalAlloc:
		var t *Node
		if KindOf(n) == KindStackAlloc {
			t = n.Payload.(StackAllocPayload).Type
		} else {
			t = n.Payload.(LocalAllocPayload).Type
		}
		as := Function
		if KindOf(n) == KindStackAlloc {
			as = Private
		}
		return UniformType(a, NewPtrType(a, t, as, false)), nil

	case KindPtrArrayElementOffset:
		p := n.Payload.(PtrArrayElementOffsetPayload)
		offT := Inner(p.Offset.Type)
		if KindOf(offT) != KindInt {
			return nil, fmt.Errorf("ptr_array_element_offset: offset must be int")
		}
		pt, ok := Inner(p.Ptr.Type).Payload.(PtrTypePayload)
		if !ok {
			return nil, fmt.Errorf("ptr_array_element_offset: base is not a pointer")
		}
		if pt.IsReference && !isStaticZero(p.Offset) {
			return nil, fmt.Errorf("ptr_array_element_offset: reference pointer requires a statically-zero offset")
		}
		uniform := MeetUniformity(IsUniform(p.Ptr.Type), IsUniform(p.Offset.Type))
		return Qualified(a, uniform, NewPtrType(a, pt.Pointee, pt.AddressSpace, false)), nil

	case KindPtrCompositeElement:
		p := n.Payload.(PtrCompositeElement)
		pt, ok := Inner(p.Ptr.Type).Payload.(PtrTypePayload)
		if !ok {
			return nil, fmt.Errorf("ptr_composite_element: base is not a pointer")
		}
		elem, err := navigateComposite(pt.Pointee, p.Index)
		if err != nil {
			return nil, err
		}
		return Qualified(a, IsUniform(p.Ptr.Type), NewPtrType(a, elem, pt.AddressSpace, false)), nil

	case KindCopyBytes, KindFillBytes, KindDebugPrintf, KindComment,
		KindPushStack, KindPopStack, KindSetStackPointer:
		return NoRet(a), nil

	case KindGetStackPointer:
		return UniformType(a, NewPtrType(a, IntType(a, 8, false), Private, false)), nil

	case KindIf, KindMatch, KindLoop, KindControl:
		return typeStructured(a, n)

	case KindJump, KindBranch, KindSwitch, KindJoinTerminator, KindTailCall,
		KindReturn, KindMergeSelection, KindMergeContinue, KindMergeBreak, KindUnreachable:
		return NoRet(a), nil

	default:
		return nil, fmt.Errorf("TypeOf: unsupported node kind %v", KindOf(n))
	}
}

func refDeclType(a *arena.Arena, decl *Node) *Node {
	switch KindOf(decl) {
	case KindFunction:
		return UniformType(a, NewPtrType(a, Inner(decl.Type), ProgramCode, false))
	case KindGlobalVariable, KindConstant:
		return decl.Type
	default:
		return UniformType(a, NewPtrType(a, decl.Type, Generic, false))
	}
}

func addressSpaceUniform(a *arena.Arena, as AddressSpace) bool {
	if info, ok := a.Config.AddressSpaces[as]; ok {
		return info.Uniform
	}
	return false
}

func isStaticZero(n *Node) bool {
	if KindOf(n) != KindIntLiteral {
		return false
	}
	return n.Payload.(IntLiteralPayload).Value == 0
}

// navigateComposite implements the PtrCompositeElement navigation rule: a
// constant record-name / pack-lane index navigates statically, a dynamic
// index is accepted only for arrays.
func navigateComposite(pointee *Node, index *Node) (*Node, error) {
	switch KindOf(pointee) {
	case KindRecordType:
		rt := pointee.Payload.(RecordTypePayload)
		i, ok := constIndex(index)
		if !ok {
			return nil, fmt.Errorf("ptr_composite_element: record navigation requires a constant index")
		}
		if i < 0 || i >= len(rt.Members) {
			return nil, fmt.Errorf("ptr_composite_element: record index %d out of range", i)
		}
		return rt.Members[i], nil
	case KindPackType:
		pt := pointee.Payload.(PackTypePayload)
		if i, ok := constIndex(index); ok && (i < 0 || i >= pt.Width) {
			return nil, fmt.Errorf("ptr_composite_element: pack lane %d out of range", i)
		}
		return pt.Elem, nil
	case KindArrType:
		at := pointee.Payload.(ArrTypePayload)
		return at.Elem, nil
	default:
		return nil, fmt.Errorf("ptr_composite_element: %v is not navigable", KindOf(pointee))
	}
}

func constIndex(n *Node) (int, bool) {
	if KindOf(n) != KindIntLiteral {
		return 0, false
	}
	return int(n.Payload.(IntLiteralPayload).Value), true
}

func typePrimOp(a *arena.Arena, p PrimOpPayload) (*Node, error) {
	ops := p.Operands
	switch {
	case arithmeticOps[p.Op]:
		if len(ops) != 2 {
			return nil, fmt.Errorf("%s: expected 2 operands", p.Op)
		}
		t := Inner(ops[0].Type)
		if !IsArithmetic(t) || !typesEqual(t, Inner(ops[1].Type)) {
			return nil, fmt.Errorf("%s: operands must be identical arithmetic types", p.Op)
		}
		return QualifiedMeet(a, ops[0].Type, ops[1].Type, t), nil

	case extendedArithmeticOps[p.Op]:
		if len(ops) != 2 {
			return nil, fmt.Errorf("%s: expected 2 operands", p.Op)
		}
		t := Inner(ops[0].Type)
		return QualifiedMeet(a, ops[0].Type, ops[1].Type, NewRecordType(a, []*Node{t, t}, nil, RecordMultipleReturn)), nil

	case comparisonOps[p.Op]:
		if len(ops) != 2 {
			return nil, fmt.Errorf("%s: expected 2 operands", p.Op)
		}
		t := Inner(ops[0].Type)
		if !IsComparable(t) {
			return nil, fmt.Errorf("%s: type %v is not comparable", p.Op, KindOf(t))
		}
		return QualifiedMeet(a, ops[0].Type, ops[1].Type, boolLike(a, t)), nil

	case bitwiseOps[p.Op]:
		n := 2
		if p.Op == OpNot {
			n = 1
		}
		if len(ops) != n {
			return nil, fmt.Errorf("%s: expected %d operands", p.Op, n)
		}
		t := Inner(ops[0].Type)
		if KindOf(t) != KindInt && KindOf(t) != KindMask {
			return nil, fmt.Errorf("%s: operand must be int or mask", p.Op)
		}
		if n == 1 {
			return ops[0].Type, nil
		}
		return QualifiedMeet(a, ops[0].Type, ops[1].Type, t), nil

	case mathUnaryOps[p.Op]:
		if len(ops) != 1 {
			return nil, fmt.Errorf("%s: expected 1 operand", p.Op)
		}
		if KindOf(Inner(ops[0].Type)) != KindFloat {
			return nil, fmt.Errorf("%s: operand must be float", p.Op)
		}
		return ops[0].Type, nil

	case mathBinaryOps[p.Op]:
		if len(ops) != 2 {
			return nil, fmt.Errorf("%s: expected 2 operands", p.Op)
		}
		t := Inner(ops[0].Type)
		if KindOf(t) != KindFloat && !IsArithmetic(t) {
			return nil, fmt.Errorf("%s: operand must be arithmetic", p.Op)
		}
		return QualifiedMeet(a, ops[0].Type, ops[1].Type, t), nil

	case p.Op == OpFma:
		if len(ops) != 3 {
			return nil, fmt.Errorf("fma: expected 3 operands")
		}
		return ops[0].Type, nil

	case p.Op == OpConvert:
		if len(p.TypeArgs) != 1 || len(ops) != 1 {
			return nil, fmt.Errorf("convert: expected one type arg and one operand")
		}
		src := Inner(ops[0].Type)
		dst := p.TypeArgs[0]
		if !(arithOrPtr(src) && arithOrPtr(dst)) {
			return nil, fmt.Errorf("convert: both sides must be arithmetic or pointer")
		}
		return Qualified(a, IsUniform(ops[0].Type), dst), nil

	case p.Op == OpReinterpret:
		if len(p.TypeArgs) != 1 || len(ops) != 1 {
			return nil, fmt.Errorf("reinterpret: expected one type arg and one operand")
		}
		src := Inner(ops[0].Type)
		dst := p.TypeArgs[0]
		if isReference(dst) || isReference(src) {
			return nil, fmt.Errorf("reinterpret: neither side may be a reference pointer")
		}
		if bitWidth(src) != bitWidth(dst) {
			return nil, fmt.Errorf("reinterpret: bit widths must match")
		}
		return Qualified(a, IsUniform(ops[0].Type), dst), nil

	case p.Op == OpSelect:
		if len(ops) != 3 {
			return nil, fmt.Errorf("select: expected 3 operands (cond, true, false)")
		}
		if KindOf(Inner(ops[0].Type)) != KindBool {
			return nil, fmt.Errorf("select: condition must be bool")
		}
		if !typesEqual(Inner(ops[1].Type), Inner(ops[2].Type)) {
			return nil, fmt.Errorf("select: alternatives must have equal type")
		}
		uniform := IsUniform(ops[0].Type) && IsUniform(ops[1].Type) && IsUniform(ops[2].Type)
		return Qualified(a, uniform, Inner(ops[1].Type)), nil

	case p.Op == OpExtract:
		if len(ops) != 2 {
			return nil, fmt.Errorf("extract: expected (composite, index)")
		}
		elem, err := navigateComposite(Inner(ops[0].Type), ops[1])
		if err != nil {
			return nil, err
		}
		return Qualified(a, IsUniform(ops[0].Type), elem), nil

	case p.Op == OpInsert:
		if len(ops) != 3 {
			return nil, fmt.Errorf("insert: expected (composite, index, value)")
		}
		return ops[0].Type, nil

	case p.Op == OpShuffle:
		if len(ops) < 2 {
			return nil, fmt.Errorf("shuffle: expected at least (a, b)")
		}
		t := Inner(ops[0].Type)
		pt, ok := t.Payload.(PackTypePayload)
		if !ok {
			return nil, fmt.Errorf("shuffle: operand must be a pack")
		}
		newWidth := len(ops) - 2
		return Qualified(a, false, NewPackType(a, pt.Elem, newWidth)), nil

	case p.Op == OpStackAllocSize:
		if len(ops) != 1 {
			return nil, fmt.Errorf("alloc_size: expected 1 operand")
		}
		if KindOf(Inner(ops[0].Type)) != KindInt {
			return nil, fmt.Errorf("alloc_size: operand must be int")
		}
		return UniformType(a, NewPtrType(a, IntType(a, 8, false), Private, false)), nil

	case p.Op == OpSubgroupBroadcastFirst:
		if len(ops) != 1 {
			return nil, fmt.Errorf("subgroup_broadcast_first: expected 1 operand")
		}
		return UniformType(a, Inner(ops[0].Type)), nil

	case p.Op == OpSubgroupBallot:
		if len(ops) != 1 || KindOf(Inner(ops[0].Type)) != KindBool {
			return nil, fmt.Errorf("subgroup_ballot: expects a single bool operand")
		}
		return UniformType(a, MaskType(a)), nil

	case p.Op == OpSubgroupElect:
		return UniformType(a, BoolType(a)), nil

	default:
		return nil, fmt.Errorf("typePrimOp: unhandled op %s", p.Op)
	}
}

func boolLike(a *arena.Arena, t *Node) *Node {
	if pt, ok := t.Payload.(PackTypePayload); ok {
		return NewPackType(a, BoolType(a), pt.Width)
	}
	return BoolType(a)
}

func arithOrPtr(t *Node) bool { return IsArithmetic(t) || KindOf(t) == KindPtrType }

func isReference(t *Node) bool {
	if pt, ok := t.Payload.(PtrTypePayload); ok {
		return pt.IsReference
	}
	return false
}

func bitWidth(t *Node) int {
	switch KindOf(t) {
	case KindInt:
		return t.Payload.(IntPayload).Width
	case KindFloat:
		return t.Payload.(FloatPayload).Width
	case KindPtrType:
		return 64 // pointer width resolved later by lower_lea/lower_decay against Config.PointerWidth
	default:
		return -1
	}
}

func typeCall(a *arena.Arena, p CallPayload) (*Node, error) {
	calleeT := Inner(p.Callee.Type)
	pt, ok := calleeT.Payload.(PtrTypePayload)
	if !ok {
		return nil, fmt.Errorf("call: callee is not a pointer")
	}
	fnT, ok := pt.Pointee.Payload.(FnTypePayload)
	if !ok {
		return nil, fmt.Errorf("call: callee does not point to a function type")
	}
	if len(fnT.Params) != len(p.Args) {
		return nil, fmt.Errorf("call: expected %d arguments, got %d", len(fnT.Params), len(p.Args))
	}
	for i, param := range fnT.Params {
		if !IsSubtype(Inner(p.Args[i].Type), param) {
			return nil, fmt.Errorf("call: argument %d type mismatch", i)
		}
	}
	uniform := IsUniform(p.Callee.Type)
	switch len(fnT.Returns) {
	case 0:
		return NoRet(a), nil
	case 1:
		return Qualified(a, uniform, fnT.Returns[0]), nil
	default:
		return Qualified(a, uniform, NewRecordType(a, fnT.Returns, nil, RecordMultipleReturn)), nil
	}
}

func typeStructured(a *arena.Arena, n *Node) (*Node, error) {
	var yieldTypes []*Node
	switch p := n.Payload.(type) {
	case IfPayload:
		yieldTypes = p.YieldTypes
	case MatchPayload:
		yieldTypes = p.YieldTypes
	case LoopPayload:
		yieldTypes = p.YieldTypes
	case ControlPayload:
		yieldTypes = p.YieldTypes
	}
	switch len(yieldTypes) {
	case 0:
		return UniformType(a, Unit(a)), nil
	case 1:
		return UniformType(a, yieldTypes[0]), nil
	default:
		return UniformType(a, NewRecordType(a, yieldTypes, nil, RecordMultipleReturn)), nil
	}
}

func typesEqual(a, b *Node) bool { return a == b } // structural interning makes pointer equality exact

// IsSubtype implements the structural subtyping rule: covariant in
// record members / ptr pointees / fn returns, contravariant in fn params,
// uniform <: varying, and unsized array <: any sized array of the same
// element (pointer targets only).
func IsSubtype(sub, super *Node) bool {
	if typesEqual(sub, super) {
		return true
	}
	switch KindOf(super) {
	case KindRecordType:
		subRT, ok := sub.Payload.(RecordTypePayload)
		if !ok {
			return false
		}
		superRT := super.Payload.(RecordTypePayload)
		if len(subRT.Members) != len(superRT.Members) {
			return false
		}
		for i := range subRT.Members {
			if !IsSubtype(subRT.Members[i], superRT.Members[i]) {
				return false
			}
		}
		return true
	case KindPtrType:
		subPT, ok := sub.Payload.(PtrTypePayload)
		if !ok {
			return false
		}
		superPT := super.Payload.(PtrTypePayload)
		if subPT.AddressSpace != superPT.AddressSpace || subPT.IsReference != superPT.IsReference {
			return false
		}
		if IsSubtype(subPT.Pointee, superPT.Pointee) {
			return true
		}
		// Unsized array is a supertype of sized arrays of the same
		// element, for pointer targets only: here super is the
		// unsized-array side, sub may be a sized array.
		if superAT, ok := superPT.Pointee.Payload.(ArrTypePayload); ok && superAT.Size == nil {
			if subAT, ok := subPT.Pointee.Payload.(ArrTypePayload); ok {
				return typesEqual(subAT.Elem, superAT.Elem)
			}
		}
		return false
	case KindFnType:
		subFT, ok := sub.Payload.(FnTypePayload)
		if !ok {
			return false
		}
		superFT := super.Payload.(FnTypePayload)
		if len(subFT.Params) != len(superFT.Params) || len(subFT.Returns) != len(superFT.Returns) {
			return false
		}
		for i := range subFT.Params {
			// contravariant in params: super's param must be a
			// subtype of sub's param.
			if !IsSubtype(superFT.Params[i], subFT.Params[i]) {
				return false
			}
		}
		for i := range subFT.Returns {
			if !IsSubtype(subFT.Returns[i], superFT.Returns[i]) {
				return false
			}
		}
		return true
	case KindQualifiedType:
		subQ, ok := AsQualified(sub)
		if !ok {
			return false
		}
		superQ := super.Payload.(QualifiedTypePayload)
		// uniform is a subtype of varying.
		if !subQ.IsUniform && superQ.IsUniform {
			return false
		}
		return IsSubtype(subQ.Inner, superQ.Inner)
	default:
		return false
	}
}
