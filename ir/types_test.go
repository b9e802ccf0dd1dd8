package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJackiMonster/shady/arena"
)

func newTestArena() *arena.Arena {
	return arena.New(arena.Config{AddressSpaces: arena.DefaultAddressSpaces()})
}

func TestScalarTypesInternByStructure(t *testing.T) {
	a := newTestArena()
	assert.Same(t, IntType(a, 32, true), IntType(a, 32, true))
	assert.NotSame(t, IntType(a, 32, true), IntType(a, 32, false), "signedness must distinguish int types")
	assert.NotSame(t, IntType(a, 32, true), IntType(a, 64, true), "width must distinguish int types")
	assert.Same(t, FloatType(a, 32), FloatType(a, 32))
	assert.Same(t, Unit(a), Unit(a))
	assert.Same(t, BoolType(a), BoolType(a))
}

func TestPackTypeInternsOnElemAndWidth(t *testing.T) {
	a := newTestArena()
	f32 := FloatType(a, 32)
	p1 := NewPackType(a, f32, 4)
	p2 := NewPackType(a, f32, 4)
	p3 := NewPackType(a, f32, 3)
	assert.Same(t, p1, p2)
	assert.NotSame(t, p1, p3)
}

func TestArrTypeUnsizedVsSized(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	sized := NewArrType(a, i32, NewIntLiteral(a, 32, false, 4))
	unsized := NewArrType(a, i32, nil)
	assert.NotSame(t, sized, unsized)
	assert.Same(t, unsized, NewArrType(a, i32, nil))
}

func TestPtrTypeInternsOnPointeeAddressSpaceAndReference(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	p1 := NewPtrType(a, i32, Private, false)
	p2 := NewPtrType(a, i32, Private, false)
	p3 := NewPtrType(a, i32, Global, false)
	p4 := NewPtrType(a, i32, Private, true)
	assert.Same(t, p1, p2)
	assert.NotSame(t, p1, p3)
	assert.NotSame(t, p1, p4)
}

func TestRecordTypeInternsOnMembersNamesAndSpecial(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	f32 := FloatType(a, 32)
	r1 := NewRecordType(a, []*Node{i32, f32}, []string{"x", "y"}, RecordPlain)
	r2 := NewRecordType(a, []*Node{i32, f32}, []string{"x", "y"}, RecordPlain)
	r3 := NewRecordType(a, []*Node{i32, f32}, []string{"x", "y"}, RecordMultipleReturn)
	assert.Same(t, r1, r2)
	assert.NotSame(t, r1, r3)
}

func TestIsArithmeticAndIsComparable(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	f32 := FloatType(a, 32)
	b := BoolType(a)
	ptr := NewPtrType(a, i32, Private, false)
	pack := NewPackType(a, f32, 4)

	assert.True(t, IsArithmetic(i32))
	assert.True(t, IsArithmetic(f32))
	assert.True(t, IsArithmetic(pack))
	assert.False(t, IsArithmetic(b))
	assert.False(t, IsArithmetic(ptr))

	assert.True(t, IsComparable(i32))
	assert.True(t, IsComparable(b))
	assert.True(t, IsComparable(ptr))
	assert.False(t, IsComparable(Unit(a)))
}

func TestNominalTypeRefResolvesToBody(t *testing.T) {
	a := newTestArena()
	decl := DeclareNominalTypeHeader(a, "MyType")
	i32 := IntType(a, 32, true)
	PopulateNominalTypeBody(decl, i32)
	ref := NewNominalTypeRef(a, decl)
	require.Equal(t, KindNominalTypeRef, KindOf(ref))
	assert.Same(t, decl, ref.Payload.(NominalTypeRefPayload).Decl)
}
