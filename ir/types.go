package ir

import (
	"fmt"
	"strings"

	"github.com/TheJackiMonster/shady/arena"
)

// ---- Noret, Unit, Bool --------------------------------------------------

type NoRetPayload struct{}

func (NoRetPayload) StructuralKey() string { return "" }

// NoRet builds (or fetches the interned) "no value returned" type, the type
// of every terminator.
func NoRet(a *arena.Arena) *Node { return mustIntern(a, KindNoRet, NoRetPayload{}, nil) }

type UnitPayload struct{}

func (UnitPayload) StructuralKey() string { return "" }

func Unit(a *arena.Arena) *Node { return mustIntern(a, KindUnit, UnitPayload{}, nil) }

type BoolPayload struct{}

func (BoolPayload) StructuralKey() string { return "" }

func BoolType(a *arena.Arena) *Node { return mustIntern(a, KindBool, BoolPayload{}, nil) }

// ---- Int, Float, Mask ----------------------------------------------------

type IntPayload struct {
	Width  int // 8, 16, 32, 64
	Signed bool
}

func (p IntPayload) StructuralKey() string { return fmt.Sprintf("%d,%v", p.Width, p.Signed) }

func IntType(a *arena.Arena, width int, signed bool) *Node {
	return mustIntern(a, KindInt, IntPayload{Width: width, Signed: signed}, nil)
}

type FloatPayload struct{ Width int } // 16, 32, 64

func (p FloatPayload) StructuralKey() string { return fmt.Sprintf("%d", p.Width) }

func FloatType(a *arena.Arena, width int) *Node {
	return mustIntern(a, KindFloat, FloatPayload{Width: width}, nil)
}

type MaskPayload struct{}

func (MaskPayload) StructuralKey() string { return "" }

func MaskType(a *arena.Arena) *Node { return mustIntern(a, KindMask, MaskPayload{}, nil) }

// ---- RecordType -----------------------------------------------------------

// RecordSpecial classifies a record's role.
type RecordSpecial int

const (
	RecordPlain RecordSpecial = iota
	RecordMultipleReturn
	RecordDecorateBlock
)

type RecordTypePayload struct {
	Members []*Node
	Names   []string // may be empty (positional record)
	Special RecordSpecial
}

func (p RecordTypePayload) StructuralKey() string {
	var b strings.Builder
	for _, m := range p.Members {
		fmt.Fprintf(&b, "%d,", m.ID)
	}
	b.WriteString("|")
	b.WriteString(strings.Join(p.Names, ","))
	fmt.Fprintf(&b, "|%d", p.Special)
	return b.String()
}

func NewRecordType(a *arena.Arena, members []*Node, names []string, special RecordSpecial) *Node {
	return mustIntern(a, KindRecordType, RecordTypePayload{
		Members: a.InternNodes(members), Names: names, Special: special,
	}, nil)
}

// ---- FnType, BBType, JoinPointType -----------------------------------------

type FnTypePayload struct {
	Params  []*Node
	Returns []*Node
}

func (p FnTypePayload) StructuralKey() string {
	return fmt.Sprintf("%s|%s", idList(p.Params), idList(p.Returns))
}

func NewFnType(a *arena.Arena, params, returns []*Node) *Node {
	return mustIntern(a, KindFnType, FnTypePayload{
		Params: a.InternNodes(params), Returns: a.InternNodes(returns),
	}, nil)
}

type BBTypePayload struct{ Params []*Node }

func (p BBTypePayload) StructuralKey() string { return idList(p.Params) }

func NewBBType(a *arena.Arena, params []*Node) *Node {
	return mustIntern(a, KindBBType, BBTypePayload{Params: a.InternNodes(params)}, nil)
}

type JoinPointTypePayload struct{ Yields []*Node }

func (p JoinPointTypePayload) StructuralKey() string { return idList(p.Yields) }

func NewJoinPointType(a *arena.Arena, yields []*Node) *Node {
	return mustIntern(a, KindJoinPointType, JoinPointTypePayload{Yields: a.InternNodes(yields)}, nil)
}

// ---- PtrType ----------------------------------------------------------------

type PtrTypePayload struct {
	Pointee      *Node
	AddressSpace AddressSpace
	IsReference  bool
}

func (p PtrTypePayload) StructuralKey() string {
	return fmt.Sprintf("%d,%d,%v", p.Pointee.ID, p.AddressSpace, p.IsReference)
}

func NewPtrType(a *arena.Arena, pointee *Node, as AddressSpace, isReference bool) *Node {
	return mustIntern(a, KindPtrType, PtrTypePayload{Pointee: pointee, AddressSpace: as, IsReference: isReference}, nil)
}

// ---- ArrType, PackType -------------------------------------------------------

type ArrTypePayload struct {
	Elem *Node
	Size *Node // nil => unsized array
}

func (p ArrTypePayload) StructuralKey() string {
	sz := "?"
	if p.Size != nil {
		sz = fmt.Sprintf("%d", p.Size.ID)
	}
	return fmt.Sprintf("%d,%s", p.Elem.ID, sz)
}

func NewArrType(a *arena.Arena, elem, size *Node) *Node {
	return mustIntern(a, KindArrType, ArrTypePayload{Elem: elem, Size: size}, nil)
}

type PackTypePayload struct {
	Elem  *Node
	Width int
}

func (p PackTypePayload) StructuralKey() string { return fmt.Sprintf("%d,%d", p.Elem.ID, p.Width) }

func NewPackType(a *arena.Arena, elem *Node, width int) *Node {
	return mustIntern(a, KindPackType, PackTypePayload{Elem: elem, Width: width}, nil)
}

// ---- NominalTypeRef, Image family --------------------------------------------

type NominalTypeRefPayload struct{ Decl *Node }

func (p NominalTypeRefPayload) StructuralKey() string { return fmt.Sprintf("%d", p.Decl.ID) }

func NewNominalTypeRef(a *arena.Arena, decl *Node) *Node {
	return mustIntern(a, KindNominalTypeRef, NominalTypeRefPayload{Decl: decl}, nil)
}

type ImageTypePayload struct {
	SampledType *Node
	Dim         int
	Depth, Arrayed, Multisampled bool
}

func (p ImageTypePayload) StructuralKey() string {
	return fmt.Sprintf("%d,%d,%v,%v,%v", p.SampledType.ID, p.Dim, p.Depth, p.Arrayed, p.Multisampled)
}

func NewImageType(a *arena.Arena, sampled *Node, dim int, depth, arrayed, ms bool) *Node {
	return mustIntern(a, KindImageType, ImageTypePayload{SampledType: sampled, Dim: dim, Depth: depth, Arrayed: arrayed, Multisampled: ms}, nil)
}

type SampledImageTypePayload struct{ Image *Node }

func (p SampledImageTypePayload) StructuralKey() string { return fmt.Sprintf("%d", p.Image.ID) }

func NewSampledImageType(a *arena.Arena, image *Node) *Node {
	return mustIntern(a, KindSampledImageType, SampledImageTypePayload{Image: image}, nil)
}

type SamplerTypePayload struct{}

func (SamplerTypePayload) StructuralKey() string { return "" }

func SamplerType(a *arena.Arena) *Node { return mustIntern(a, KindSamplerType, SamplerTypePayload{}, nil) }

// ---- helpers ------------------------------------------------------------

func idList(ns []*Node) string {
	var b strings.Builder
	for i, n := range ns {
		if i > 0 {
			b.WriteByte(',')
		}
		if n == nil {
			b.WriteString("-")
		} else {
			fmt.Fprintf(&b, "%d", n.ID)
		}
	}
	return b.String()
}

// IsArithmetic reports whether t (an unqualified type node) is a valid
// operand type for the arithmetic PrimOp family.
func IsArithmetic(t *Node) bool {
	switch KindOf(t) {
	case KindInt, KindFloat:
		return true
	case KindPackType:
		p := t.Payload.(PackTypePayload)
		return IsArithmetic(p.Elem)
	default:
		return false
	}
}

// IsComparable reports whether t supports the comparison PrimOp family.
func IsComparable(t *Node) bool {
	if IsArithmetic(t) {
		return true
	}
	switch KindOf(t) {
	case KindBool, KindPtrType:
		return true
	default:
		return false
	}
}
