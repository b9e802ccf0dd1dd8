package ir

import (
	"fmt"
	"strings"

	"github.com/TheJackiMonster/shady/arena"
)

// ---- Param (nominal) --------------------------------------------------------

type ParamPayload struct {
	DeclaredType *Node // the qualified type this param was created with
	Name         string
}

func (ParamPayload) StructuralKey() string { return "" } // nominal: never looked up by key

// NewParam always allocates a fresh Param node (nominal identity).
func NewParam(a *arena.Arena, t *Node, name string) *Node {
	n := nominal(a, KindParam, ParamPayload{DeclaredType: t, Name: a.InternString(name)})
	n.Type = t
	return n
}

// ---- Literals ----------------------------------------------------------------

type IntLiteralPayload struct {
	Width  int
	Signed bool
	Value  uint64 // stored as raw bits; sign-extend per Signed/Width when printing
}

func (p IntLiteralPayload) StructuralKey() string {
	return fmt.Sprintf("%d,%v,%d", p.Width, p.Signed, p.Value)
}

func NewIntLiteral(a *arena.Arena, width int, signed bool, value uint64) *Node {
	n := mustIntern(a, KindIntLiteral, IntLiteralPayload{Width: width, Signed: signed, Value: value}, nil)
	if n.Type == nil {
		n.Type = UniformType(a, IntType(a, width, signed))
	}
	return n
}

type FloatLiteralPayload struct {
	Width int
	Bits  uint64 // IEEE-754 bit pattern, width-appropriate
}

func (p FloatLiteralPayload) StructuralKey() string { return fmt.Sprintf("%d,%d", p.Width, p.Bits) }

func NewFloatLiteral(a *arena.Arena, width int, bits uint64) *Node {
	n := mustIntern(a, KindFloatLiteral, FloatLiteralPayload{Width: width, Bits: bits}, nil)
	if n.Type == nil {
		n.Type = UniformType(a, FloatType(a, width))
	}
	return n
}

type TruePayload struct{}

func (TruePayload) StructuralKey() string { return "" }

func True(a *arena.Arena) *Node {
	n := mustIntern(a, KindTrue, TruePayload{}, nil)
	if n.Type == nil {
		n.Type = UniformType(a, BoolType(a))
	}
	return n
}

type FalsePayload struct{}

func (FalsePayload) StructuralKey() string { return "" }

func False(a *arena.Arena) *Node {
	n := mustIntern(a, KindFalse, FalsePayload{}, nil)
	if n.Type == nil {
		n.Type = UniformType(a, BoolType(a))
	}
	return n
}

type StringLiteralPayload struct{ Value string }

func (p StringLiteralPayload) StructuralKey() string { return p.Value }

func NewStringLiteral(a *arena.Arena, s string) *Node {
	return mustIntern(a, KindStringLiteral, StringLiteralPayload{Value: a.InternString(s)}, nil)
}

type NullPtrPayload struct{ PtrType *Node }

func (p NullPtrPayload) StructuralKey() string { return fmt.Sprintf("%d", p.PtrType.ID) }

func NewNullPtr(a *arena.Arena, ptrType *Node) *Node {
	n := mustIntern(a, KindNullPtr, NullPtrPayload{PtrType: ptrType}, nil)
	if n.Type == nil {
		n.Type = UniformType(a, ptrType)
	}
	return n
}

// ---- Composite, Fill, Undef ----------------------------------------------------

type CompositePayload struct {
	Type     *Node // may be nil: inferred from contents by the caller/infer pass
	Contents []*Node
}

func (p CompositePayload) StructuralKey() string {
	t := "?"
	if p.Type != nil {
		t = fmt.Sprintf("%d", p.Type.ID)
	}
	return t + "|" + idList(p.Contents)
}

func NewComposite(a *arena.Arena, t *Node, contents []*Node) *Node {
	return mustIntern(a, KindComposite, CompositePayload{Type: t, Contents: a.InternNodes(contents)}, nil)
}

type FillPayload struct {
	Type  *Node
	Value *Node
}

func (p FillPayload) StructuralKey() string { return fmt.Sprintf("%d,%d", p.Type.ID, p.Value.ID) }

func NewFill(a *arena.Arena, t, value *Node) *Node {
	return mustIntern(a, KindFill, FillPayload{Type: t, Value: value}, nil)
}

type UndefPayload struct{ Type *Node }

func (p UndefPayload) StructuralKey() string { return fmt.Sprintf("%d", p.Type.ID) }

func NewUndef(a *arena.Arena, t *Node) *Node {
	n := mustIntern(a, KindUndef, UndefPayload{Type: t}, nil)
	if n.Type == nil {
		n.Type = UniformType(a, t)
	}
	return n
}

// ---- FnAddr, RefDecl, Tuple --------------------------------------------------

type FnAddrPayload struct{ Fn *Node }

func (p FnAddrPayload) StructuralKey() string { return fmt.Sprintf("%d", p.Fn.ID) }

func NewFnAddr(a *arena.Arena, fn *Node) *Node {
	return mustIntern(a, KindFnAddr, FnAddrPayload{Fn: fn}, nil)
}

type RefDeclPayload struct{ Decl *Node }

func (p RefDeclPayload) StructuralKey() string { return fmt.Sprintf("%d", p.Decl.ID) }

func NewRefDecl(a *arena.Arena, decl *Node) *Node {
	return mustIntern(a, KindRefDecl, RefDeclPayload{Decl: decl}, nil)
}

type TuplePayload struct{ Elems []*Node }

func (p TuplePayload) StructuralKey() string { return idList(p.Elems) }

func NewTuple(a *arena.Arena, elems []*Node) *Node {
	return mustIntern(a, KindTuple, TuplePayload{Elems: a.InternNodes(elems)}, nil)
}

// ---- Front-end-only: Unbound, UntypedNumber -----------------------------------

// UnboundPayload models a not-yet-resolved identifier reference, produced by
// a front end and consumed exclusively by passes.Bind.
// It never survives past that pass in a successfully compiled module.
type UnboundPayload struct{ Name string }

func (p UnboundPayload) StructuralKey() string { return p.Name }

func NewUnbound(a *arena.Arena, name string) *Node {
	return mustIntern(a, KindUnbound, UnboundPayload{Name: a.InternString(name)}, nil)
}

type UntypedNumberPayload struct{ Text string }

func (p UntypedNumberPayload) StructuralKey() string { return p.Text }

func NewUntypedNumber(a *arena.Arena, text string) *Node {
	return mustIntern(a, KindUntypedNumber, UntypedNumberPayload{Text: a.InternString(text)}, nil)
}

// Name returns a human-readable name for any value node, falling back to its
// id; grounded on ssa/print.go's relName/Value.Name() convention used
// throughout the emitter and diagnostics.
func Name(n *Node) string {
	switch KindOf(n) {
	case KindParam:
		return n.Payload.(ParamPayload).Name
	case KindFunction:
		return n.Payload.(*FunctionPayload).Name
	case KindBasicBlock:
		return n.Payload.(*BasicBlockPayload).Name
	case KindConstant:
		return n.Payload.(*ConstantPayload).Name
	case KindGlobalVariable:
		return n.Payload.(*GlobalVariablePayload).Name
	case KindUnbound:
		return n.Payload.(UnboundPayload).Name
	default:
		return fmt.Sprintf("%%%d", n.ID)
	}
}

func joinNames(ns []*Node) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = Name(n)
	}
	return strings.Join(parts, ", ")
}
