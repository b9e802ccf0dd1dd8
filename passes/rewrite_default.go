package passes

import (
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// DefaultRewrite rebuilds n structurally in r.DstModule's arena, rewriting
// every operand through r first. It is the fallback every pass's process
// function delegates to for node kinds it has no special handling for, the
// same role a generic tree-copy plays in any rewriter framework: most of a
// pass's Process function is "this one thing is different", not "rebuild
// everything from scratch".
func DefaultRewrite(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	dst := r.DstModule.Arena
	rw := func(x *ir.Node) *ir.Node { return rewrite.RewriteNode(r, x) }
	rws := func(xs []*ir.Node) []*ir.Node { return rewrite.RewriteNodes(r, xs) }

	switch p := n.Payload.(type) {
	// ---- Types --------------------------------------------------------
	case ir.NoRetPayload:
		return ir.NoRet(dst)
	case ir.UnitPayload:
		return ir.Unit(dst)
	case ir.BoolPayload:
		return ir.BoolType(dst)
	case ir.IntPayload:
		return ir.IntType(dst, p.Width, p.Signed)
	case ir.FloatPayload:
		return ir.FloatType(dst, p.Width)
	case ir.MaskPayload:
		return ir.MaskType(dst)
	case ir.RecordTypePayload:
		return ir.NewRecordType(dst, rws(p.Members), p.Names, p.Special)
	case ir.FnTypePayload:
		return ir.NewFnType(dst, rws(p.Params), rws(p.Returns))
	case ir.BBTypePayload:
		return ir.NewBBType(dst, rws(p.Params))
	case ir.JoinPointTypePayload:
		return ir.NewJoinPointType(dst, rws(p.Yields))
	case ir.PtrTypePayload:
		return ir.NewPtrType(dst, rw(p.Pointee), p.AddressSpace, p.IsReference)
	case ir.ArrTypePayload:
		return ir.NewArrType(dst, rw(p.Elem), rw(p.Size))
	case ir.PackTypePayload:
		return ir.NewPackType(dst, rw(p.Elem), p.Width)
	case ir.NominalTypeRefPayload:
		return ir.NewNominalTypeRef(dst, rw(p.Decl))
	case ir.ImageTypePayload:
		return ir.NewImageType(dst, rw(p.SampledType), p.Dim, p.Depth, p.Arrayed, p.Multisampled)
	case ir.SampledImageTypePayload:
		return ir.NewSampledImageType(dst, rw(p.Image))
	case ir.SamplerTypePayload:
		return ir.SamplerType(dst)
	case ir.QualifiedTypePayload:
		return ir.Qualified(dst, p.IsUniform, rw(p.Inner))

	// ---- Values ---------------------------------------------------------
	case ir.ParamPayload:
		fresh := ir.NewParam(dst, rw(p.DeclaredType), p.Name)
		return fresh
	case ir.IntLiteralPayload:
		return ir.NewIntLiteral(dst, p.Width, p.Signed, p.Value)
	case ir.FloatLiteralPayload:
		return ir.NewFloatLiteral(dst, p.Width, p.Bits)
	case ir.TruePayload:
		return ir.True(dst)
	case ir.FalsePayload:
		return ir.False(dst)
	case ir.StringLiteralPayload:
		return ir.NewStringLiteral(dst, p.Value)
	case ir.NullPtrPayload:
		return ir.NewNullPtr(dst, rw(p.PtrType))
	case ir.CompositePayload:
		return ir.NewComposite(dst, rw(p.Type), rws(p.Contents))
	case ir.FillPayload:
		return ir.NewFill(dst, rw(p.Type), rw(p.Value))
	case ir.UndefPayload:
		return ir.NewUndef(dst, rw(p.Type))
	case ir.FnAddrPayload:
		return ir.NewFnAddr(dst, rw(p.Fn))
	case ir.RefDeclPayload:
		return ir.NewRefDecl(dst, rw(p.Decl))
	case ir.TuplePayload:
		return ir.NewTuple(dst, rws(p.Elems))
	case ir.UnboundPayload:
		return ir.NewUnbound(dst, p.Name)
	case ir.UntypedNumberPayload:
		return ir.NewUntypedNumber(dst, p.Text)

	// ---- Instructions -----------------------------------------------------
	case ir.PrimOpPayload:
		return ir.NewPrimOp(dst, p.Op, rws(p.TypeArgs), rws(p.Operands))
	case ir.CallPayload:
		return ir.NewCall(dst, rw(p.Callee), rws(p.Args))
	case ir.StackAllocPayload:
		return ir.NewStackAlloc(dst, rw(p.Type))
	case ir.LocalAllocPayload:
		return ir.NewLocalAlloc(dst, rw(p.Type))
	case ir.LoadPayload:
		return ir.NewLoad(dst, rw(p.Ptr))
	case ir.StorePayload:
		return ir.NewStore(dst, rw(p.Ptr), rw(p.Value))
	case ir.PtrArrayElementOffsetPayload:
		return ir.NewPtrArrayElementOffset(dst, rw(p.Ptr), rw(p.Offset))
	case ir.PtrCompositeElement:
		return ir.NewPtrCompositeElement(dst, rw(p.Ptr), rw(p.Index))
	case ir.CopyBytesPayload:
		return ir.NewCopyBytes(dst, rw(p.Dst), rw(p.Src), rw(p.Count))
	case ir.FillBytesPayload:
		return ir.NewFillBytes(dst, rw(p.Dst), rw(p.Value), rw(p.Count))
	case ir.DebugPrintfPayload:
		return ir.NewDebugPrintf(dst, rw(p.Format), rws(p.Args))
	case ir.CommentPayload:
		return ir.NewComment(dst, p.Text)
	case ir.PushStackPayload:
		return ir.NewPushStack(dst, rw(p.Value))
	case ir.PopStackPayload:
		return ir.NewPopStack(dst, rw(p.Type))
	case ir.GetStackPointerPayload:
		return ir.NewGetStackPointer(dst)
	case ir.SetStackPointerPayload:
		return ir.NewSetStackPointer(dst, rw(p.Value))
	case ir.IfPayload:
		return ir.NewIf(dst, rws(p.YieldTypes), rw(p.Cond), rw(p.True), rw(p.False), rw(p.Tail))
	case ir.MatchPayload:
		return ir.NewMatch(dst, rws(p.YieldTypes), rw(p.Inspect), rws(p.Literals), rws(p.Cases), rw(p.Default), rw(p.Tail))
	case ir.LoopPayload:
		return ir.NewLoop(dst, rws(p.YieldTypes), rws(p.Params), rw(p.Body), rws(p.InitialArgs), rw(p.Tail))
	case ir.ControlPayload:
		return ir.NewControl(dst, rws(p.YieldTypes), rw(p.Inside), rw(p.Tail))
	case ir.BindIdentifiersPayload:
		return ir.NewBindIdentifiers(dst, p.Names, rw(p.Value), rw(p.Body))

	// ---- Terminators ------------------------------------------------------
	case ir.JumpPayload:
		return ir.NewJump(dst, rw(p.Target), rws(p.Args), rw(p.Mem))
	case ir.BranchPayload:
		return ir.NewBranch(dst, rw(p.Cond), rw(p.TrueJump), rw(p.FalseJump))
	case ir.SwitchPayload:
		return ir.NewSwitch(dst, rw(p.Value), rws(p.CaseValues), rws(p.CaseJumps), rw(p.DefaultJump))
	case ir.JoinPayload:
		return ir.NewJoin(dst, rw(p.JoinPoint), rws(p.Args))
	case ir.TailCallPayload:
		return ir.NewTailCall(dst, rw(p.Callee), rws(p.Args))
	case ir.ReturnPayload:
		return ir.NewReturn(dst, rws(p.Args))
	case ir.MergeSelectionPayload:
		return ir.NewMergeSelection(dst, rws(p.Args))
	case ir.MergeContinuePayload:
		return ir.NewMergeContinue(dst, rws(p.Args))
	case ir.MergeBreakPayload:
		return ir.NewMergeBreak(dst, rws(p.Args))
	case ir.UnreachablePayload:
		return ir.NewUnreachable(dst)

	// ---- Declarations (two-phase) ------------------------------------------
	case *ir.FunctionPayload:
		return rewriteFunction(r, n, p)
	case *ir.BasicBlockPayload:
		return rewriteBasicBlock(r, n, p)
	case *ir.ConstantPayload:
		return rewriteConstant(r, n, p)
	case *ir.GlobalVariablePayload:
		return ir.NewGlobalVariable(dst, p.Annotations, p.Name, rw(p.Type), p.AddressSpace, rw(p.Init))
	case *ir.NominalTypePayload:
		return rewriteNominalType(r, n, p)

	default:
		return n
	}
}

func rewriteFunction(r *rewrite.Rewriter, n *ir.Node, p *ir.FunctionPayload) *ir.Node {
	dst := r.DstModule.Arena
	params := rewrite.RecreateParams(r, p.Params, func(t *ir.Node, name string) *ir.Node { return ir.NewParam(dst, t, name) })
	header := ir.DeclareFunctionHeader(dst, p.Annotations, p.Name, params, rewrite.RewriteNodes(r, p.ReturnTypes))
	rewrite.Memoize(r, n, header)
	if p.Body != nil {
		ir.PopulateFunctionBody(header, rewrite.RewriteNode(r, p.Body))
	}
	return header
}

func rewriteBasicBlock(r *rewrite.Rewriter, n *ir.Node, p *ir.BasicBlockPayload) *ir.Node {
	dst := r.DstModule.Arena
	params := rewrite.RecreateParams(r, p.Params, func(t *ir.Node, name string) *ir.Node { return ir.NewParam(dst, t, name) })
	header := ir.DeclareBasicBlockHeader(dst, params, p.Name)
	rewrite.Memoize(r, n, header)
	if p.Body != nil {
		ir.PopulateBasicBlockBody(header, rewrite.RewriteNode(r, p.Body))
	}
	return header
}

func rewriteConstant(r *rewrite.Rewriter, n *ir.Node, p *ir.ConstantPayload) *ir.Node {
	dst := r.DstModule.Arena
	header := ir.DeclareConstantHeader(dst, p.Annotations, p.Name, rewrite.RewriteNode(r, p.TypeHint))
	rewrite.Memoize(r, n, header)
	if p.Value != nil {
		ir.PopulateConstantValue(header, rewrite.RewriteNode(r, p.Value))
	}
	return header
}

func rewriteNominalType(r *rewrite.Rewriter, n *ir.Node, p *ir.NominalTypePayload) *ir.Node {
	dst := r.DstModule.Arena
	header := ir.DeclareNominalTypeHeader(dst, p.Name)
	rewrite.Memoize(r, n, header)
	if p.Body != nil {
		ir.PopulateNominalTypeBody(header, rewrite.RewriteNode(r, p.Body))
	}
	return header
}
