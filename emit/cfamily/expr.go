package cfamily

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/TheJackiMonster/shady/ir"
)

// exprCtx renders a value node as a C expression string. names resolves a
// node that already has an assigned C identifier (a Param, a let-bound
// value, or a hoisted BasicBlock param) by pointer identity; anything else
// is rendered inline, recursively, exactly once per call site, the way
// Normalize leaves a purely-referential node for Bind to inline rather than
// name (ir/instr.go's BindIdentifiers doc comment).
type exprCtx struct {
	e     *emitter
	names map[*ir.Node]string
}

func (ec *exprCtx) expr(n *ir.Node) (string, error) {
	if name, ok := ec.names[n]; ok {
		return name, nil
	}
	switch p := n.Payload.(type) {
	case ir.ParamPayload:
		return "", fmt.Errorf("emit/cfamily: internal error: reference to an unbound param %q", p.Name)

	case ir.IntLiteralPayload:
		return intLiteralText(p), nil
	case ir.FloatLiteralPayload:
		return floatLiteralText(p), nil
	case ir.TruePayload:
		return "true", nil
	case ir.FalsePayload:
		return "false", nil
	case ir.StringLiteralPayload:
		return strconv.Quote(p.Value), nil
	case ir.NullPtrPayload:
		tn, err := ec.e.dialect.TypeName(ec.e.qualify(p.PtrType))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("((%s)0)", tn), nil

	case ir.CompositePayload:
		tn, err := ec.e.dialect.TypeName(ec.e.qualify(p.Type))
		if err != nil {
			return "", err
		}
		parts := make([]string, len(p.Contents))
		for i, c := range p.Contents {
			if parts[i], err = ec.expr(c); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("(%s){%s}", tn, strings.Join(parts, ", ")), nil

	case ir.FillPayload:
		tn, err := ec.e.dialect.TypeName(ec.e.qualify(p.Type))
		if err != nil {
			return "", err
		}
		width, err := compositeWidth(p.Type)
		if err != nil {
			return "", err
		}
		val, err := ec.expr(p.Value)
		if err != nil {
			return "", err
		}
		parts := make([]string, width)
		for i := range parts {
			parts[i] = val
		}
		return fmt.Sprintf("(%s){%s}", tn, strings.Join(parts, ", ")), nil

	case ir.UndefPayload:
		tn, err := ec.e.dialect.TypeName(ec.e.qualify(p.Type))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s){0}", tn), nil

	case ir.FnAddrPayload:
		return ir.DeclName(p.Fn), nil

	case ir.RefDeclPayload:
		return ec.refDecl(p.Decl)

	case ir.TuplePayload:
		return "", unsupported(ec.e.dialect.Name(), "raw tuple value reaching emission")

	case ir.PrimOpPayload:
		return ec.primOp(p)

	case ir.CallPayload:
		callee, err := ec.expr(p.Callee)
		if err != nil {
			return "", err
		}
		args := make([]string, len(p.Args))
		for i, a := range p.Args {
			if args[i], err = ec.expr(a); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", ")), nil

	case ir.LoadPayload:
		ptr, err := ec.expr(p.Ptr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(*(%s))", ptr), nil

	case ir.StorePayload:
		ptr, err := ec.expr(p.Ptr)
		if err != nil {
			return "", err
		}
		val, err := ec.expr(p.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("*(%s) = %s", ptr, val), nil

	case ir.StackAllocPayload:
		return ec.allocaExpr(p.Type)
	case ir.LocalAllocPayload:
		return ec.allocaExpr(p.Type)

	case ir.PtrArrayElementOffsetPayload:
		ptr, err := ec.expr(p.Ptr)
		if err != nil {
			return "", err
		}
		off, err := ec.expr(p.Offset)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s + %s)", ptr, off), nil

	case ir.PtrCompositeElement:
		return ec.ptrCompositeElement(p)

	case ir.CopyBytesPayload:
		dst, err := ec.expr(p.Dst)
		if err != nil {
			return "", err
		}
		src, err := ec.expr(p.Src)
		if err != nil {
			return "", err
		}
		cnt, err := ec.expr(p.Count)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("memcpy(%s, %s, %s)", dst, src, cnt), nil

	case ir.FillBytesPayload:
		dst, err := ec.expr(p.Dst)
		if err != nil {
			return "", err
		}
		val, err := ec.expr(p.Value)
		if err != nil {
			return "", err
		}
		cnt, err := ec.expr(p.Count)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("memset(%s, %s, %s)", dst, val, cnt), nil

	case ir.DebugPrintfPayload:
		format, err := ec.expr(p.Format)
		if err != nil {
			return "", err
		}
		args := make([]string, len(p.Args))
		for i, a := range p.Args {
			if args[i], err = ec.expr(a); err != nil {
				return "", err
			}
		}
		all := append([]string{format}, args...)
		return fmt.Sprintf("printf(%s)", strings.Join(all, ", ")), nil

	case ir.CommentPayload:
		return "", nil

	case ir.PushStackPayload:
		val, err := ec.expr(p.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("__shady_push_stack(%s)", val), nil

	case ir.PopStackPayload:
		tn, err := ec.e.dialect.TypeName(ec.e.qualify(p.Type))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("__shady_pop_stack_%s()", runtimeSuffix(tn)), nil

	case ir.GetStackPointerPayload:
		return "__shady_get_stack_pointer()", nil

	case ir.SetStackPointerPayload:
		val, err := ec.expr(p.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("__shady_set_stack_pointer(%s)", val), nil

	default:
		return "", unsupported(ec.e.dialect.Name(), fmt.Sprintf("value kind %s in expression position", ir.KindOf(n)))
	}
}

func runtimeSuffix(typeName string) string {
	var b strings.Builder
	for _, r := range typeName {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (ec *exprCtx) refDecl(decl *ir.Node) (string, error) {
	switch ir.KindOf(decl) {
	case ir.KindFunction:
		return ir.DeclName(decl), nil
	case ir.KindConstant:
		return ir.DeclName(decl), nil
	case ir.KindGlobalVariable:
		gp := decl.Payload.(*ir.GlobalVariablePayload)
		if gp.AddressSpace == ir.Private {
			if _, ok := ec.e.privateIndex[decl]; ok {
				return fmt.Sprintf("(&__shady_private_globals.%s)", gp.Name), nil
			}
		}
		return ir.DeclName(decl), nil
	default:
		return "", unsupported(ec.e.dialect.Name(), fmt.Sprintf("reference to declaration kind %s", ir.KindOf(decl)))
	}
}

func (ec *exprCtx) allocaExpr(t *ir.Node) (string, error) {
	if ec.e.dialect.Name() == "glsl" {
		return "", unsupported("glsl", "dynamic stack allocation")
	}
	tn, err := ec.e.dialect.TypeName(ec.e.qualify(t))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("((%s*)alloca(sizeof(%s)))", tn, tn), nil
}

func ptrPointee(t *ir.Node) (*ir.Node, error) {
	pt, ok := ir.Inner(t).Payload.(ir.PtrTypePayload)
	if !ok {
		return nil, fmt.Errorf("emit/cfamily: internal error: expected a pointer type")
	}
	return pt.Pointee, nil
}

func elemTypeOf(t *ir.Node) (*ir.Node, error) {
	switch p := t.Payload.(type) {
	case ir.ArrTypePayload:
		return p.Elem, nil
	case ir.PackTypePayload:
		return p.Elem, nil
	}
	return nil, fmt.Errorf("emit/cfamily: internal error: expected an array or pack pointee, got %s", ir.KindOf(t))
}

func constIntIndex(n *ir.Node) (int, bool) {
	lit, ok := n.Payload.(ir.IntLiteralPayload)
	if !ok {
		return 0, false
	}
	return int(lit.Value), true
}

func (ec *exprCtx) ptrCompositeElement(p ir.PtrCompositeElement) (string, error) {
	ptrExpr, err := ec.expr(p.Ptr)
	if err != nil {
		return "", err
	}
	pointee, err := ptrPointee(p.Ptr.Type)
	if err != nil {
		return "", err
	}
	if rt, ok := pointee.Payload.(ir.RecordTypePayload); ok {
		idx, ok := constIntIndex(p.Index)
		if !ok {
			return "", unsupported(ec.e.dialect.Name(), "record field pointer with a dynamic index")
		}
		field := fmt.Sprintf("f%d", idx)
		if idx < len(rt.Names) && rt.Names[idx] != "" {
			field = rt.Names[idx]
		}
		return fmt.Sprintf("(&(%s)->%s)", ptrExpr, field), nil
	}
	elemT, err := elemTypeOf(pointee)
	if err != nil {
		return "", err
	}
	elemName, err := ec.e.dialect.TypeName(ec.e.qualify(elemT))
	if err != nil {
		return "", err
	}
	idxExpr, err := ec.expr(p.Index)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("((%s*)(%s) + %s)", elemName, ptrExpr, idxExpr), nil
}

// compositeWidth returns a Fill's element count: ArrType.Size or
// PackType.Width.
func compositeWidth(t *ir.Node) (int, error) {
	switch p := t.Payload.(type) {
	case ir.ArrTypePayload:
		n, ok := constIntIndex(p.Size)
		if !ok {
			return 0, fmt.Errorf("emit/cfamily: internal error: fill of an array with a non-constant size")
		}
		return n, nil
	case ir.PackTypePayload:
		return p.Width, nil
	}
	return 0, fmt.Errorf("emit/cfamily: internal error: fill of a non-array, non-pack type")
}

func intLiteralText(p ir.IntLiteralPayload) string {
	var text string
	if p.Signed {
		text = strconv.FormatInt(signExtend(p.Value, p.Width), 10)
	} else {
		mask := uint64(1)<<uint(p.Width) - 1
		if p.Width >= 64 {
			mask = ^uint64(0)
		}
		text = strconv.FormatUint(p.Value&mask, 10)
	}
	if p.Width == 64 {
		if p.Signed {
			return text + "ll"
		}
		return text + "ull"
	}
	if !p.Signed {
		return text + "u"
	}
	return text
}

func signExtend(v uint64, width int) int64 {
	if width >= 64 {
		return int64(v)
	}
	signBit := uint64(1) << uint(width-1)
	if v&signBit != 0 {
		v |= ^uint64(0) << uint(width)
	}
	return int64(v)
}

func floatLiteralText(p ir.FloatLiteralPayload) string {
	if p.Width == 64 {
		return strconv.FormatFloat(math.Float64frombits(p.Bits), 'g', -1, 64)
	}
	v := math.Float32frombits(uint32(p.Bits))
	return strconv.FormatFloat(float64(v), 'g', -1, 32) + "f"
}
