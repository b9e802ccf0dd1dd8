package ir

import (
	"fmt"

	"github.com/TheJackiMonster/shady/arena"
)

// QualifiedTypePayload pairs a type with its uniformity bit ("qualified
// type"). It is itself a structurally-interned type node: two
// qualified types with the same uniformity and inner type are identical,
// exactly like any other structural type.
type QualifiedTypePayload struct {
	IsUniform bool
	Inner     *Node
}

func (p QualifiedTypePayload) StructuralKey() string {
	return fmt.Sprintf("%v,%d", p.IsUniform, p.Inner.ID)
}

// Qualified builds (or fetches) the qualified type {uniform, inner}.
func Qualified(a *arena.Arena, uniform bool, inner *Node) *Node {
	return mustIntern(a, KindQualifiedType, QualifiedTypePayload{IsUniform: uniform, Inner: inner}, nil)
}

// UniformType is shorthand for Qualified(a, true, inner).
func UniformType(a *arena.Arena, inner *Node) *Node { return Qualified(a, true, inner) }

// VaryingType is shorthand for Qualified(a, false, inner).
func VaryingType(a *arena.Arena, inner *Node) *Node { return Qualified(a, false, inner) }

// AsQualified returns the payload of a qualified type node, or (zero, false)
// if t is not a qualified type.
func AsQualified(t *Node) (QualifiedTypePayload, bool) {
	if KindOf(t) != KindQualifiedType {
		return QualifiedTypePayload{}, false
	}
	return t.Payload.(QualifiedTypePayload), true
}

// Inner unwraps a qualified type to its underlying type, panicking if t is
// not qualified; used in contexts where the typing rules guarantee t must
// already be qualified (e.g. both operands of a binary PrimOp).
func Inner(t *Node) *Node {
	q, ok := AsQualified(t)
	if !ok {
		panic(fmt.Sprintf("ir: %s is not a qualified type", t))
	}
	return q.Inner
}

// IsUniform reports t's uniformity bit, panicking if t is not qualified.
func IsUniform(t *Node) bool {
	q, ok := AsQualified(t)
	if !ok {
		panic(fmt.Sprintf("ir: %s is not a qualified type", t))
	}
	return q.IsUniform
}

// MeetUniformity implements the "u1 ∧ u2" uniformity-meet rule: the result of
// combining two operands is uniform only if both are.
func MeetUniformity(a, b bool) bool { return a && b }

// QualifiedMeet rebuilds a qualified type over inner with the meet of two
// operand qualified types' uniformity bits — the common case for binary
// PrimOp typing rules.
func QualifiedMeet(ar *arena.Arena, lhs, rhs *Node, inner *Node) *Node {
	return Qualified(ar, MeetUniformity(IsUniform(lhs), IsUniform(rhs)), inner)
}
