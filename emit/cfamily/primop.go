package cfamily

import (
	"fmt"
	"strings"

	"github.com/TheJackiMonster/shady/ir"
)

// primOp renders a PrimOp node. Every op ISel covers (arithmetic,
// comparison, bitwise, unary/binary math) goes through Dialect.ISel keyed
// on its first operand's type, matching typing.go's own Meet-over-operands
// typing rule. Everything ISel doesn't cover (conversions, composite
// manipulation, extended arithmetic, subgroup ops) is hand-written here,
// since it needs access to more than "an infix operator or a call name".
func (ec *exprCtx) primOp(p ir.PrimOpPayload) (string, error) {
	if len(p.Operands) > 0 {
		if entry, ok := ec.e.dialect.ISel(p.Op, p.Operands[0].Type); ok {
			return ec.renderISel(entry, p.Operands)
		}
	}
	switch p.Op {
	case ir.OpConvert:
		return ec.convert(p)
	case ir.OpReinterpret:
		return ec.reinterpret(p)
	case ir.OpSelect:
		return ec.select3(p)
	case ir.OpExtract:
		return ec.extract(p)
	case ir.OpInsert:
		return ec.insert(p)
	case ir.OpShuffle:
		return ec.shuffle(p)
	case ir.OpAddCarry, ir.OpSubBorrow, ir.OpMulExtended:
		return ec.extendedArith(p)
	case ir.OpStackAllocSize:
		return "__shady_stack_alloc_size()", nil
	case ir.OpSubgroupBroadcastFirst:
		v, err := ec.expr(p.Operands[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("__shady_subgroup_broadcast_first(%s)", v), nil
	case ir.OpSubgroupBallot:
		v, err := ec.expr(p.Operands[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("__shady_subgroup_ballot(%s)", v), nil
	case ir.OpSubgroupElect:
		return "__shady_subgroup_elect()", nil
	default:
		return "", unsupported(ec.e.dialect.Name(), fmt.Sprintf("prim op %s", p.Op))
	}
}

func (ec *exprCtx) renderISel(entry ISelEntry, operands []*ir.Node) (string, error) {
	args := make([]string, len(operands))
	for i, o := range operands {
		var err error
		if args[i], err = ec.expr(o); err != nil {
			return "", err
		}
	}
	switch entry.Style {
	case Prefix:
		if len(args) != 1 {
			return "", fmt.Errorf("emit/cfamily: internal error: prefix op %q with %d operands", entry.Symbol, len(args))
		}
		return fmt.Sprintf("(%s%s)", entry.Symbol, args[0]), nil
	case Infix:
		if len(args) != 2 {
			return "", fmt.Errorf("emit/cfamily: internal error: infix op %q with %d operands", entry.Symbol, len(args))
		}
		return fmt.Sprintf("(%s %s %s)", args[0], entry.Symbol, args[1]), nil
	default: // Call
		return fmt.Sprintf("%s(%s)", entry.Symbol, strings.Join(args, ", ")), nil
	}
}

func (ec *exprCtx) convert(p ir.PrimOpPayload) (string, error) {
	v, err := ec.expr(p.Operands[0])
	if err != nil {
		return "", err
	}
	tn, err := ec.e.dialect.TypeName(ec.e.qualify(p.TypeArgs[0]))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("((%s)(%s))", tn, v), nil
}

func (ec *exprCtx) reinterpret(p ir.PrimOpPayload) (string, error) {
	v, err := ec.expr(p.Operands[0])
	if err != nil {
		return "", err
	}
	return ec.e.dialect.Bitcast(v, p.Operands[0].Type, ec.e.qualify(p.TypeArgs[0])), nil
}

func (ec *exprCtx) select3(p ir.PrimOpPayload) (string, error) {
	cond, err := ec.expr(p.Operands[0])
	if err != nil {
		return "", err
	}
	a, err := ec.expr(p.Operands[1])
	if err != nil {
		return "", err
	}
	b, err := ec.expr(p.Operands[2])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s ? %s : %s)", cond, a, b), nil
}

func (ec *exprCtx) extract(p ir.PrimOpPayload) (string, error) {
	composite, err := ec.expr(p.Operands[0])
	if err != nil {
		return "", err
	}
	inner := ir.Inner(p.Operands[0].Type)
	switch it := inner.Payload.(type) {
	case ir.RecordTypePayload:
		idx, ok := constIntIndex(p.Operands[1])
		if !ok {
			return "", unsupported(ec.e.dialect.Name(), "record field extract with a dynamic index")
		}
		field := fmt.Sprintf("f%d", idx)
		if idx < len(it.Names) && it.Names[idx] != "" {
			field = it.Names[idx]
		}
		return fmt.Sprintf("(%s).%s", composite, field), nil
	case ir.PackTypePayload:
		if idx, ok := constIntIndex(p.Operands[1]); ok {
			return packLaneExpr(ec.e.dialect, composite, it.Width, idx), nil
		}
		idxExpr, err := ec.expr(p.Operands[1])
		if err != nil {
			return "", err
		}
		if packIsArrayStyle(ec.e.dialect) {
			return fmt.Sprintf("(%s)[%s]", composite, idxExpr), nil
		}
		return "", unsupported(ec.e.dialect.Name(), "vector lane extract with a dynamic index")
	default: // array
		idxExpr, err := ec.expr(p.Operands[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s)[%s]", composite, idxExpr), nil
	}
}

func (ec *exprCtx) insert(p ir.PrimOpPayload) (string, error) {
	composite, err := ec.expr(p.Operands[0])
	if err != nil {
		return "", err
	}
	newVal, err := ec.expr(p.Operands[2])
	if err != nil {
		return "", err
	}
	idx, ok := constIntIndex(p.Operands[1])
	if !ok {
		return "", unsupported(ec.e.dialect.Name(), "composite insert with a dynamic index")
	}
	inner := ir.Inner(p.Operands[0].Type)
	tn, err := ec.e.dialect.TypeName(p.Operands[0].Type)
	if err != nil {
		return "", err
	}
	switch it := inner.Payload.(type) {
	case ir.RecordTypePayload:
		parts := make([]string, len(it.Members))
		for i := range it.Members {
			if i == idx {
				parts[i] = newVal
				continue
			}
			field := fmt.Sprintf("f%d", i)
			if i < len(it.Names) && it.Names[i] != "" {
				field = it.Names[i]
			}
			parts[i] = fmt.Sprintf("(%s).%s", composite, field)
		}
		return fmt.Sprintf("(%s){%s}", tn, strings.Join(parts, ", ")), nil
	case ir.PackTypePayload:
		parts := make([]string, it.Width)
		for i := range parts {
			if i == idx {
				parts[i] = newVal
				continue
			}
			parts[i] = packLaneExpr(ec.e.dialect, composite, it.Width, i)
		}
		return fmt.Sprintf("(%s){%s}", tn, strings.Join(parts, ", ")), nil
	default:
		at := inner.Payload.(ir.ArrTypePayload)
		width, ok := constIntIndex(at.Size)
		if !ok {
			return "", unsupported(ec.e.dialect.Name(), "insert into an array with a non-constant size")
		}
		parts := make([]string, width)
		for i := range parts {
			if i == idx {
				parts[i] = newVal
				continue
			}
			parts[i] = fmt.Sprintf("(%s)[%d]", composite, i)
		}
		return fmt.Sprintf("(%s){%s}", tn, strings.Join(parts, ", ")), nil
	}
}

func (ec *exprCtx) shuffle(p ir.PrimOpPayload) (string, error) {
	a, err := ec.expr(p.Operands[0])
	if err != nil {
		return "", err
	}
	b, err := ec.expr(p.Operands[1])
	if err != nil {
		return "", err
	}
	aPack, ok := ir.Inner(p.Operands[0].Type).Payload.(ir.PackTypePayload)
	if !ok {
		return "", fmt.Errorf("emit/cfamily: internal error: shuffle's first operand is not a pack")
	}
	tn, err := ec.e.dialect.TypeName(p.TypeArgs[0])
	if err != nil {
		return "", err
	}
	parts := make([]string, len(p.Operands)-2)
	for i, idxNode := range p.Operands[2:] {
		idx, ok := constIntIndex(idxNode)
		if !ok {
			return "", unsupported(ec.e.dialect.Name(), "shuffle with a non-constant lane index")
		}
		if idx < aPack.Width {
			parts[i] = packLaneExpr(ec.e.dialect, a, aPack.Width, idx)
		} else {
			parts[i] = packLaneExpr(ec.e.dialect, b, aPack.Width, idx-aPack.Width)
		}
	}
	return fmt.Sprintf("(%s){%s}", tn, strings.Join(parts, ", ")), nil
}

func (ec *exprCtx) extendedArith(p ir.PrimOpPayload) (string, error) {
	a, err := ec.expr(p.Operands[0])
	if err != nil {
		return "", err
	}
	b, err := ec.expr(p.Operands[1])
	if err != nil {
		return "", err
	}
	name := map[ir.PrimOpCode]string{
		ir.OpAddCarry:    "__shady_add_carry",
		ir.OpSubBorrow:   "__shady_sub_borrow",
		ir.OpMulExtended: "__shady_mul_extended",
	}[p.Op]
	return fmt.Sprintf("%s(%s, %s)", name, a, b), nil
}

// packLaneExpr addresses lane idx of a pack rendered as compositeExpr.
// CUDA/GLSL's native vecN types use named lanes; every other dialect
// renders a pack as a plain array and subscripts it.
func packLaneExpr(d Dialect, compositeExpr string, width, idx int) string {
	switch d.Name() {
	case "cuda", "glsl":
		lanes := []string{"x", "y", "z", "w"}
		if idx >= 0 && idx < len(lanes) {
			return fmt.Sprintf("(%s).%s", compositeExpr, lanes[idx])
		}
	}
	return fmt.Sprintf("(%s)[%d]", compositeExpr, idx)
}

func packIsArrayStyle(d Dialect) bool {
	switch d.Name() {
	case "cuda", "glsl":
		return false
	default:
		return true
	}
}
