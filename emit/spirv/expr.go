package spirv

import (
	"fmt"

	"github.com/TheJackiMonster/shady/ir"
)

// expr resolves n to a SPIR-V result id, emitting whatever instructions are
// needed into the current block the first time n is seen. Mirrors
// emit/cfamily/expr.go's exprCtx.expr: a node already bound (a Param,
// let-bound value, or a module-scope declaration) is looked up by pointer
// identity; everything else is built recursively, exactly once per node
// identity thanks to fe.valueID memoizing the result.
func (fe *funcEmitter) expr(n *ir.Node) (uint32, error) {
	if id, ok := fe.valueID[n]; ok {
		return id, nil
	}
	if id, ok := fe.be.declID[n]; ok {
		fe.valueID[n] = id
		return id, nil
	}

	switch p := n.Payload.(type) {
	case ir.ParamPayload:
		return 0, fmt.Errorf("emit/spirv: internal error: reference to an unbound param %q", p.Name)

	case ir.IntLiteralPayload, ir.FloatLiteralPayload, ir.TruePayload, ir.FalsePayload,
		ir.NullPtrPayload, ir.UndefPayload:
		id, err := fe.be.cc.constID(n)
		if err != nil {
			return 0, err
		}
		fe.valueID[n] = id
		return id, nil

	case ir.CompositePayload:
		return fe.composite(n, p)

	case ir.FillPayload:
		return fe.fill(n, p)

	case ir.RefDeclPayload:
		id, ok := fe.be.declID[p.Decl]
		if !ok {
			return 0, fmt.Errorf("emit/spirv: reference to an unemitted declaration %s", p.Decl)
		}
		fe.valueID[n] = id
		return id, nil

	case ir.FnAddrPayload:
		id, ok := fe.be.declID[p.Fn]
		if !ok {
			return 0, fmt.Errorf("emit/spirv: reference to an unemitted function %s", p.Fn)
		}
		fe.valueID[n] = id
		return id, nil

	case ir.PrimOpPayload:
		return fe.primOp(n, p)

	case ir.CallPayload:
		return fe.call(n, p)

	case ir.StackAllocPayload:
		ptrType := fe.be.builder.TypePointer(StorageClassFunction, fe.be.mustTypeID(p.Type))
		id := fe.newID()
		emit(&fe.entryVars, OpVariable, ptrType, id, uint32(StorageClassFunction))
		fe.valueID[n] = id
		return id, nil

	case ir.LocalAllocPayload:
		sc := storageClass(ir.Private)
		ptrType := fe.be.builder.TypePointer(sc, fe.be.mustTypeID(p.Type))
		id := fe.newID()
		emit(&fe.entryVars, OpVariable, ptrType, id, uint32(sc))
		fe.valueID[n] = id
		return id, nil

	case ir.LoadPayload:
		ptr, err := fe.expr(p.Ptr)
		if err != nil {
			return 0, err
		}
		id := fe.newID()
		emit(&fe.cur, OpLoad, fe.be.mustTypeID(n.Type), id, ptr)
		fe.valueID[n] = id
		return id, nil

	case ir.StorePayload:
		ptr, err := fe.expr(p.Ptr)
		if err != nil {
			return 0, err
		}
		val, err := fe.expr(p.Value)
		if err != nil {
			return 0, err
		}
		emit(&fe.cur, OpStore, ptr, val)
		return 0, nil

	case ir.PtrArrayElementOffsetPayload:
		ptr, err := fe.expr(p.Ptr)
		if err != nil {
			return 0, err
		}
		offset, err := fe.expr(p.Offset)
		if err != nil {
			return 0, err
		}
		id := fe.newID()
		emit(&fe.cur, OpAccessChain, fe.be.mustTypeID(n.Type), id, ptr, offset)
		fe.valueID[n] = id
		return id, nil

	case ir.PtrCompositeElement:
		ptr, err := fe.expr(p.Ptr)
		if err != nil {
			return 0, err
		}
		idx, err := fe.expr(p.Index)
		if err != nil {
			return 0, err
		}
		id := fe.newID()
		emit(&fe.cur, OpAccessChain, fe.be.mustTypeID(n.Type), id, ptr, idx)
		fe.valueID[n] = id
		return id, nil

	case ir.TuplePayload:
		return 0, fmt.Errorf("emit/spirv: a bare Tuple reached the backend; lower_callc should have rewritten multi-value results into a record")

	default:
		return 0, fmt.Errorf("emit/spirv: cannot emit value node %s", n)
	}
}

func (fe *funcEmitter) composite(n *ir.Node, p ir.CompositePayload) (uint32, error) {
	parts := make([]uint32, len(p.Contents))
	for i, c := range p.Contents {
		id, err := fe.expr(c)
		if err != nil {
			return 0, err
		}
		parts[i] = id
	}
	id := fe.newID()
	emit(&fe.cur, OpCompositeConstruct, append([]uint32{fe.be.mustTypeID(n.Type), id}, parts...)...)
	fe.valueID[n] = id
	return id, nil
}

func (fe *funcEmitter) fill(n *ir.Node, p ir.FillPayload) (uint32, error) {
	width, err := compositeWidth(p.Type)
	if err != nil {
		return 0, err
	}
	val, err := fe.expr(p.Value)
	if err != nil {
		return 0, err
	}
	parts := make([]uint32, width)
	for i := range parts {
		parts[i] = val
	}
	id := fe.newID()
	emit(&fe.cur, OpCompositeConstruct, append([]uint32{fe.be.mustTypeID(n.Type), id}, parts...)...)
	fe.valueID[n] = id
	return id, nil
}

func compositeWidth(t *ir.Node) (int, error) {
	switch p := t.Payload.(type) {
	case ir.PackTypePayload:
		return p.Width, nil
	case ir.ArrTypePayload:
		il, ok := p.Size.Payload.(ir.IntLiteralPayload)
		if !ok {
			return 0, fmt.Errorf("emit/spirv: Fill of an array with a non-constant size")
		}
		return int(il.Value), nil
	case ir.RecordTypePayload:
		return len(p.Members), nil
	default:
		return 0, fmt.Errorf("emit/spirv: Fill of a non-composite type %s", t)
	}
}

func (fe *funcEmitter) call(n *ir.Node, p ir.CallPayload) (uint32, error) {
	calleeID, ok := fe.be.declID[p.Callee]
	if !ok {
		return 0, fmt.Errorf("emit/spirv: call to an unemitted function %s", p.Callee)
	}
	args := make([]uint32, len(p.Args))
	for i, a := range p.Args {
		id, err := fe.expr(a)
		if err != nil {
			return 0, err
		}
		args[i] = id
	}
	id := fe.newID()
	emit(&fe.cur, OpFunctionCall, append([]uint32{fe.be.mustTypeID(n.Type), id, calleeID}, args...)...)
	fe.valueID[n] = id
	return id, nil
}
