package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParamIsAlwaysFresh(t *testing.T) {
	a := newTestArena()
	t1 := UniformType(a, IntType(a, 32, true))
	p1 := NewParam(a, t1, "x")
	p2 := NewParam(a, t1, "x")
	assert.NotSame(t, p1, p2, "params are nominal: two identical declarations are distinct nodes")
	assert.Same(t, t1, p1.Type)
}

func TestNewIntLiteralInternsByValueAndCarriesType(t *testing.T) {
	a := newTestArena()
	l1 := NewIntLiteral(a, 32, true, 5)
	l2 := NewIntLiteral(a, 32, true, 5)
	l3 := NewIntLiteral(a, 32, true, 6)
	assert.Same(t, l1, l2)
	assert.NotSame(t, l1, l3)
	require.NotNil(t, l1.Type)
	assert.True(t, IsUniform(l1.Type))
	assert.Same(t, IntType(a, 32, true), Inner(l1.Type))
}

func TestNewFloatLiteralInternsByWidthAndBits(t *testing.T) {
	a := newTestArena()
	f1 := NewFloatLiteral(a, 32, 0x3f800000)
	f2 := NewFloatLiteral(a, 32, 0x3f800000)
	f3 := NewFloatLiteral(a, 64, 0x3f800000)
	assert.Same(t, f1, f2)
	assert.NotSame(t, f1, f3)
}

func TestTrueAndFalseAreSingletons(t *testing.T) {
	a := newTestArena()
	assert.Same(t, True(a), True(a))
	assert.Same(t, False(a), False(a))
	assert.NotSame(t, True(a), False(a))
	assert.Equal(t, KindBool, KindOf(Inner(True(a).Type)))
}

func TestNewStringLiteralInternsByValue(t *testing.T) {
	a := newTestArena()
	s1 := NewStringLiteral(a, "hello")
	s2 := NewStringLiteral(a, "hello")
	s3 := NewStringLiteral(a, "world")
	assert.Same(t, s1, s2)
	assert.NotSame(t, s1, s3)
}

func TestNewNullPtrCarriesPointerType(t *testing.T) {
	a := newTestArena()
	pt := NewPtrType(a, IntType(a, 32, true), Private, false)
	n := NewNullPtr(a, pt)
	require.NotNil(t, n.Type)
	assert.Same(t, pt, Inner(n.Type))
}

func TestNewCompositeInternsOnTypeAndContents(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	x := NewIntLiteral(a, 32, true, 1)
	y := NewIntLiteral(a, 32, true, 2)
	c1 := NewComposite(a, NewArrType(a, i32, nil), []*Node{x, y})
	c2 := NewComposite(a, NewArrType(a, i32, nil), []*Node{x, y})
	c3 := NewComposite(a, NewArrType(a, i32, nil), []*Node{y, x})
	assert.Same(t, c1, c2)
	assert.NotSame(t, c1, c3)
}

func TestNewUndefCarriesQualifiedType(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	u := NewUndef(a, i32)
	require.NotNil(t, u.Type)
	assert.Same(t, i32, Inner(u.Type))
}

func TestNewFnAddrAndRefDeclInternOnTarget(t *testing.T) {
	a := newTestArena()
	fn1 := DeclareFunctionHeader(a, nil, "f", nil, nil)
	fn2 := DeclareFunctionHeader(a, nil, "g", nil, nil)
	assert.Same(t, NewFnAddr(a, fn1), NewFnAddr(a, fn1))
	assert.NotSame(t, NewFnAddr(a, fn1), NewFnAddr(a, fn2))
	assert.Same(t, NewRefDecl(a, fn1), NewRefDecl(a, fn1))
}

func TestNewTupleInternsOnElementOrder(t *testing.T) {
	a := newTestArena()
	x := NewIntLiteral(a, 32, true, 1)
	y := NewFloatLiteral(a, 32, 0)
	assert.Same(t, NewTuple(a, []*Node{x, y}), NewTuple(a, []*Node{x, y}))
	assert.NotSame(t, NewTuple(a, []*Node{x, y}), NewTuple(a, []*Node{y, x}))
}

func TestNewUnboundAndUntypedNumberInternByText(t *testing.T) {
	a := newTestArena()
	assert.Same(t, NewUnbound(a, "foo"), NewUnbound(a, "foo"))
	assert.NotSame(t, NewUnbound(a, "foo"), NewUnbound(a, "bar"))
	assert.Same(t, NewUntypedNumber(a, "42"), NewUntypedNumber(a, "42"))
}

func TestNameFallsBackToIDForUnnamedKinds(t *testing.T) {
	a := newTestArena()
	p := NewParam(a, UniformType(a, IntType(a, 32, true)), "arg")
	assert.Equal(t, "arg", Name(p))

	lit := NewIntLiteral(a, 32, true, 1)
	assert.Contains(t, Name(lit), "%")
}
