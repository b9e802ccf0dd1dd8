package ir

// This file implements String()-style dumping for every node kind, for
// debugging and golden-output tests. It never participates in lowering.

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Print renders n and, recursively, its operands, in the textual notation
// used throughout DESIGN.md and the test fixtures. It is not a parser
// round-trip format.
func Print(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	switch k := KindOf(n); {
	case IsType(k):
		return printType(n)
	case IsDeclaration(k):
		return DeclName(n)
	default:
		return printOperand(n)
	}
}

// printOperand is what a PrimOp/Call/etc. operand list renders each element
// as: a name for anything nominal, otherwise a recursive dump of the value.
func printOperand(n *Node) string {
	switch KindOf(n) {
	case KindParam, KindFunction, KindBasicBlock, KindConstant, KindGlobalVariable, KindUnbound:
		return Name(n)
	default:
		return printValue(n)
	}
}

func printType(t *Node) string {
	switch p := t.Payload.(type) {
	case NoRetPayload:
		return "noret"
	case UnitPayload:
		return "unit"
	case BoolPayload:
		return "bool"
	case IntPayload:
		if p.Signed {
			return fmt.Sprintf("int%d", p.Width)
		}
		return fmt.Sprintf("uint%d", p.Width)
	case FloatPayload:
		return fmt.Sprintf("float%d", p.Width)
	case MaskPayload:
		return "mask"
	case RecordTypePayload:
		members := make([]string, len(p.Members))
		for i, m := range p.Members {
			members[i] = printType(m)
		}
		return fmt.Sprintf("record {%s}", strings.Join(members, ", "))
	case FnTypePayload:
		return fmt.Sprintf("fn(%s) -> (%s)", printTypeList(p.Params), printTypeList(p.Returns))
	case BBTypePayload:
		return fmt.Sprintf("bb(%s)", printTypeList(p.Params))
	case JoinPointTypePayload:
		return fmt.Sprintf("join_point(%s)", printTypeList(p.Yields))
	case PtrTypePayload:
		ref := ""
		if p.IsReference {
			ref = "&"
		}
		return fmt.Sprintf("ptr%s<%s>(%s)", ref, p.AddressSpace, printType(p.Pointee))
	case ArrTypePayload:
		if p.Size == nil {
			return fmt.Sprintf("[%s]", printType(p.Elem))
		}
		return fmt.Sprintf("[%s; %s]", printType(p.Elem), printOperand(p.Size))
	case PackTypePayload:
		return fmt.Sprintf("pack<%d>(%s)", p.Width, printType(p.Elem))
	case NominalTypeRefPayload:
		return DeclName(p.Decl)
	case ImageTypePayload:
		return fmt.Sprintf("image(%s, dim=%d)", printType(p.SampledType), p.Dim)
	case SampledImageTypePayload:
		return fmt.Sprintf("sampled_image(%s)", printType(p.Image))
	case SamplerTypePayload:
		return "sampler"
	case QualifiedTypePayload:
		q := "varying"
		if p.IsUniform {
			q = "uniform"
		}
		return fmt.Sprintf("%s %s", q, printType(p.Inner))
	default:
		return fmt.Sprintf("<type %s>", KindOf(t))
	}
}

func printTypeList(ts []*Node) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = printType(t)
	}
	return strings.Join(parts, ", ")
}

func printOperands(ns []*Node) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = printOperand(n)
	}
	return strings.Join(parts, ", ")
}

func printValue(n *Node) string {
	switch p := n.Payload.(type) {
	case IntLiteralPayload:
		return fmt.Sprintf("%d", p.Value)
	case FloatLiteralPayload:
		return fmt.Sprintf("0x%xf%d", p.Bits, p.Width)
	case TruePayload:
		return "true"
	case FalsePayload:
		return "false"
	case StringLiteralPayload:
		return fmt.Sprintf("%q", p.Value)
	case NullPtrPayload:
		return fmt.Sprintf("null_ptr(%s)", printType(p.PtrType))
	case CompositePayload:
		return fmt.Sprintf("composite(%s)", printOperands(p.Contents))
	case FillPayload:
		return fmt.Sprintf("fill(%s, %s)", printType(p.Type), printOperand(p.Value))
	case UndefPayload:
		return fmt.Sprintf("undef(%s)", printType(p.Type))
	case FnAddrPayload:
		return fmt.Sprintf("fn_addr(%s)", Name(p.Fn))
	case RefDeclPayload:
		return fmt.Sprintf("ref(%s)", DeclName(p.Decl))
	case TuplePayload:
		return fmt.Sprintf("(%s)", printOperands(p.Elems))
	case UnboundPayload:
		return fmt.Sprintf("?%s", p.Name)
	case UntypedNumberPayload:
		return p.Text
	case PrimOpPayload:
		return fmt.Sprintf("prim_op[%s](%s)", p.Op, printOperands(p.Operands))
	case CallPayload:
		return fmt.Sprintf("call %s(%s)", printOperand(p.Callee), printOperands(p.Args))
	case StackAllocPayload:
		return fmt.Sprintf("stack_alloc(%s)", printType(p.Type))
	case LocalAllocPayload:
		return fmt.Sprintf("local_alloc(%s)", printType(p.Type))
	case LoadPayload:
		return fmt.Sprintf("load %s", printOperand(p.Ptr))
	case StorePayload:
		return fmt.Sprintf("store %s <- %s", printOperand(p.Ptr), printOperand(p.Value))
	case PtrArrayElementOffsetPayload:
		return fmt.Sprintf("ptr_array_element_offset(%s, %s)", printOperand(p.Ptr), printOperand(p.Offset))
	case PtrCompositeElement:
		return fmt.Sprintf("ptr_composite_element(%s, %s)", printOperand(p.Ptr), printOperand(p.Index))
	case CopyBytesPayload:
		return fmt.Sprintf("copy_bytes(%s, %s, %s)", printOperand(p.Dst), printOperand(p.Src), printOperand(p.Count))
	case FillBytesPayload:
		return fmt.Sprintf("fill_bytes(%s, %s, %s)", printOperand(p.Dst), printOperand(p.Value), printOperand(p.Count))
	case DebugPrintfPayload:
		return fmt.Sprintf("debug_printf(%s, %s)", printOperand(p.Format), printOperands(p.Args))
	case CommentPayload:
		return fmt.Sprintf("# %s", p.Text)
	case PushStackPayload:
		return fmt.Sprintf("push_stack(%s)", printOperand(p.Value))
	case PopStackPayload:
		return fmt.Sprintf("pop_stack(%s)", printType(p.Type))
	case GetStackPointerPayload:
		return "get_stack_pointer()"
	case SetStackPointerPayload:
		return fmt.Sprintf("set_stack_pointer(%s)", printOperand(p.Value))
	case IfPayload:
		return fmt.Sprintf("if (%s) then %s else %s tail %s", printOperand(p.Cond), Name(p.True), abstractionName(p.False), Name(p.Tail))
	case MatchPayload:
		return fmt.Sprintf("match %s (%d cases) tail %s", printOperand(p.Inspect), len(p.Cases), Name(p.Tail))
	case LoopPayload:
		return fmt.Sprintf("loop %s(%s) tail %s", Name(p.Body), printOperands(p.InitialArgs), Name(p.Tail))
	case ControlPayload:
		return fmt.Sprintf("control %s tail %s", Name(p.Inside), Name(p.Tail))
	case BindIdentifiersPayload:
		return fmt.Sprintf("bind_identifiers [%s] = %s in %s", strings.Join(p.Names, ", "), printOperand(p.Value), Name(p.Body))
	case JumpPayload:
		return fmt.Sprintf("jump %s(%s)", Name(p.Target), printOperands(p.Args))
	case BranchPayload:
		return fmt.Sprintf("branch %s ? %s : %s", printOperand(p.Cond), Print(p.TrueJump), Print(p.FalseJump))
	case SwitchPayload:
		return fmt.Sprintf("switch %s (%d cases) default %s", printOperand(p.Value), len(p.CaseValues), Print(p.DefaultJump))
	case JoinPayload:
		return fmt.Sprintf("join %s(%s)", printOperand(p.JoinPoint), printOperands(p.Args))
	case TailCallPayload:
		return fmt.Sprintf("tail_call %s(%s)", printOperand(p.Callee), printOperands(p.Args))
	case ReturnPayload:
		return fmt.Sprintf("return %s", printOperands(p.Args))
	case MergeSelectionPayload:
		return fmt.Sprintf("merge_selection(%s)", printOperands(p.Args))
	case MergeContinuePayload:
		return fmt.Sprintf("merge_continue(%s)", printOperands(p.Args))
	case MergeBreakPayload:
		return fmt.Sprintf("merge_break(%s)", printOperands(p.Args))
	case UnreachablePayload:
		return "unreachable"
	default:
		return fmt.Sprintf("<%s %s>", KindOf(n), n)
	}
}

func abstractionName(a AbstractionRef) string {
	if a == nil {
		return "-"
	}
	return Name(a)
}

// PrintModule dumps every declaration of m in source order (the order of
// m.Decls, neither sorted nor grouped by kind), suitable for golden-file
// tests.
func PrintModule(m *Module) string {
	var b bytes.Buffer
	for _, d := range m.Decls {
		printDecl(&b, d)
	}
	return b.String()
}

func printDecl(b *bytes.Buffer, d *Node) {
	switch p := d.Payload.(type) {
	case *FunctionPayload:
		fmt.Fprintf(b, "fn %s(%s) -> (%s)", p.Name, printParams(p.Params), printTypeList(p.ReturnTypes))
		if p.Body == nil {
			b.WriteString(" ;\n")
			return
		}
		fmt.Fprintf(b, " { %s }\n", Name(p.Body))
	case *ConstantPayload:
		fmt.Fprintf(b, "const %s", p.Name)
		if p.Value != nil {
			fmt.Fprintf(b, " = %s", printOperand(p.Value))
		}
		b.WriteString("\n")
	case *GlobalVariablePayload:
		fmt.Fprintf(b, "var %s : %s in %s", p.Name, printType(p.Type), p.AddressSpace)
		if p.Init != nil {
			fmt.Fprintf(b, " = %s", printOperand(p.Init))
		}
		b.WriteString("\n")
	case *NominalTypePayload:
		fmt.Fprintf(b, "type %s", p.Name)
		if p.Body != nil {
			fmt.Fprintf(b, " = %s", printType(p.Body))
		}
		b.WriteString("\n")
	default:
		fmt.Fprintf(b, "<decl %s>\n", KindOf(d))
	}
}

func printParams(params []*Node) string {
	parts := make([]string, len(params))
	for i, p := range params {
		pp := p.Payload.(ParamPayload)
		parts[i] = fmt.Sprintf("%s : %s", pp.Name, printType(pp.DeclaredType))
	}
	return strings.Join(parts, ", ")
}

// SortedAnnotationNames returns the distinct names in annotations, sorted
// so the order is deterministic.
func SortedAnnotationNames(annotations []Annotation) []string {
	seen := make(map[string]bool, len(annotations))
	names := make([]string, 0, len(annotations))
	for _, a := range annotations {
		if !seen[a.Name] {
			seen[a.Name] = true
			names = append(names, a.Name)
		}
	}
	sort.Strings(names)
	return names
}
