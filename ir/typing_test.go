package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeOfLiteralsAreUniform(t *testing.T) {
	a := newTestArena()
	i := NewIntLiteral(a, 32, true, 7)
	ty, err := TypeOf(a, i)
	require.NoError(t, err)
	assert.True(t, IsUniform(ty))
	assert.Same(t, IntType(a, 32, true), Inner(ty))

	f := NewFloatLiteral(a, 32, 0)
	ty, err = TypeOf(a, f)
	require.NoError(t, err)
	assert.Same(t, FloatType(a, 32), Inner(ty))
}

func TestTypeOfArithmeticRequiresMatchingArithmeticOperands(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	lhs := NewIntLiteral(a, 32, true, 1)
	rhs := NewIntLiteral(a, 32, true, 2)
	add := NewPrimOp(a, OpAdd, nil, []*Node{lhs, rhs})
	ty, err := TypeOf(a, add)
	require.NoError(t, err)
	assert.Same(t, i32, Inner(ty))

	b := True(a)
	bad := NewPrimOp(a, OpAdd, nil, []*Node{lhs, b})
	_, err = TypeOf(a, bad)
	assert.Error(t, err)
}

func TestTypeOfArithmeticMeetsUniformity(t *testing.T) {
	a := newTestArena()
	uniformLHS := NewIntLiteral(a, 32, true, 1)
	varyingParam := NewParam(a, VaryingType(a, IntType(a, 32, true)), "x")
	add := NewPrimOp(a, OpAdd, nil, []*Node{uniformLHS, varyingParam})
	ty, err := TypeOf(a, add)
	require.NoError(t, err)
	assert.False(t, IsUniform(ty), "mixing uniform and varying operands must produce a varying result")
}

func TestTypeOfComparisonProducesBool(t *testing.T) {
	a := newTestArena()
	lhs := NewIntLiteral(a, 32, true, 1)
	rhs := NewIntLiteral(a, 32, true, 2)
	eq := NewPrimOp(a, OpEq, nil, []*Node{lhs, rhs})
	ty, err := TypeOf(a, eq)
	require.NoError(t, err)
	assert.Equal(t, KindBool, KindOf(Inner(ty)))
}

func TestTypeOfBitwiseNotIsUnary(t *testing.T) {
	a := newTestArena()
	x := NewIntLiteral(a, 32, true, 1)
	not := NewPrimOp(a, OpNot, nil, []*Node{x})
	ty, err := TypeOf(a, not)
	require.NoError(t, err)
	assert.Same(t, x.Type, ty)

	bad := NewPrimOp(a, OpNot, nil, []*Node{x, x})
	_, err = TypeOf(a, bad)
	assert.Error(t, err)
}

func TestTypeOfMathUnaryRequiresFloat(t *testing.T) {
	a := newTestArena()
	f := NewFloatLiteral(a, 32, 0)
	sqrt := NewPrimOp(a, OpSqrt, nil, []*Node{f})
	_, err := TypeOf(a, sqrt)
	require.NoError(t, err)

	i := NewIntLiteral(a, 32, true, 1)
	bad := NewPrimOp(a, OpSqrt, nil, []*Node{i})
	_, err = TypeOf(a, bad)
	assert.Error(t, err)
}

func TestTypeOfFmaIsStrictlyTernary(t *testing.T) {
	a := newTestArena()
	f := NewFloatLiteral(a, 32, 0)
	ok := NewPrimOp(a, OpFma, nil, []*Node{f, f, f})
	ty, err := TypeOf(a, ok)
	require.NoError(t, err)
	assert.Same(t, f.Type, ty)

	tooFew := NewPrimOp(a, OpFma, nil, []*Node{f, f})
	_, err = TypeOf(a, tooFew)
	assert.Error(t, err, "fma must reject anything other than exactly 3 operands")
}

func TestTypeOfExtendedArithmeticReturnsMultiReturnRecord(t *testing.T) {
	a := newTestArena()
	x := NewIntLiteral(a, 32, false, 1)
	y := NewIntLiteral(a, 32, false, 2)
	addc := NewPrimOp(a, OpAddCarry, nil, []*Node{x, y})
	ty, err := TypeOf(a, addc)
	require.NoError(t, err)
	rt, ok := Inner(ty).Payload.(RecordTypePayload)
	require.True(t, ok)
	assert.Equal(t, RecordMultipleReturn, rt.Special)
	require.Len(t, rt.Members, 2)
	assert.Same(t, IntType(a, 32, false), rt.Members[0])
	assert.Same(t, IntType(a, 32, false), rt.Members[1])
}

func TestTypeOfConvertRequiresArithmeticOrPointerBothSides(t *testing.T) {
	a := newTestArena()
	f32 := FloatType(a, 32)
	x := NewIntLiteral(a, 32, true, 1)
	conv := NewPrimOp(a, OpConvert, []*Node{f32}, []*Node{x})
	ty, err := TypeOf(a, conv)
	require.NoError(t, err)
	assert.Same(t, f32, Inner(ty))
}

func TestTypeOfReinterpretRequiresMatchingBitWidth(t *testing.T) {
	a := newTestArena()
	f32 := FloatType(a, 32)
	f64 := FloatType(a, 64)
	x := NewIntLiteral(a, 32, true, 1)
	reint := NewPrimOp(a, OpReinterpret, []*Node{f32}, []*Node{x})
	_, err := TypeOf(a, reint)
	require.NoError(t, err)

	bad := NewPrimOp(a, OpReinterpret, []*Node{f64}, []*Node{x})
	_, err = TypeOf(a, bad)
	assert.Error(t, err)
}

func TestTypeOfSelectRequiresBoolConditionAndMatchingAlternatives(t *testing.T) {
	a := newTestArena()
	cond := True(a)
	tv := NewIntLiteral(a, 32, true, 1)
	fv := NewIntLiteral(a, 32, true, 2)
	sel := NewPrimOp(a, OpSelect, nil, []*Node{cond, tv, fv})
	ty, err := TypeOf(a, sel)
	require.NoError(t, err)
	assert.Same(t, IntType(a, 32, true), Inner(ty))

	fbad := NewFloatLiteral(a, 32, 0)
	bad := NewPrimOp(a, OpSelect, nil, []*Node{cond, tv, fbad})
	_, err = TypeOf(a, bad)
	assert.Error(t, err)
}

func TestTypeOfSubgroupOps(t *testing.T) {
	a := newTestArena()
	elect := NewPrimOp(a, OpSubgroupElect, nil, nil)
	ty, err := TypeOf(a, elect)
	require.NoError(t, err)
	assert.True(t, IsUniform(ty))
	assert.Equal(t, KindBool, KindOf(Inner(ty)))

	cond := True(a)
	ballot := NewPrimOp(a, OpSubgroupBallot, nil, []*Node{cond})
	ty, err = TypeOf(a, ballot)
	require.NoError(t, err)
	assert.True(t, IsUniform(ty))

	varyingVal := NewParam(a, VaryingType(a, IntType(a, 32, true)), "v")
	bcast := NewPrimOp(a, OpSubgroupBroadcastFirst, nil, []*Node{varyingVal})
	ty, err = TypeOf(a, bcast)
	require.NoError(t, err)
	assert.True(t, IsUniform(ty), "broadcast_first always produces a uniform result")
}

func TestIsSubtypeUniformIsSubtypeOfVarying(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	assert.True(t, IsSubtype(UniformType(a, i32), VaryingType(a, i32)))
	assert.False(t, IsSubtype(VaryingType(a, i32), UniformType(a, i32)))
}

func TestIsSubtypeUnsizedArrayPointerIsSupertypeOfSized(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	sized := NewArrType(a, i32, NewIntLiteral(a, 32, false, 4))
	unsized := NewArrType(a, i32, nil)
	subPtr := NewPtrType(a, sized, Private, false)
	superPtr := NewPtrType(a, unsized, Private, false)
	assert.True(t, IsSubtype(subPtr, superPtr))
	assert.False(t, IsSubtype(superPtr, subPtr))
}

func TestIsSubtypeFnTypeIsContravariantInParams(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	unsized := NewArrType(a, i32, nil)
	sized := NewArrType(a, i32, NewIntLiteral(a, 32, false, 4))
	unsizedPtr := NewPtrType(a, unsized, Private, false)
	sizedPtr := NewPtrType(a, sized, Private, false)

	// A function accepting the wider (unsized) pointer type is a subtype
	// of one accepting the narrower (sized) pointer type.
	wider := NewFnType(a, []*Node{unsizedPtr}, []*Node{i32})
	narrower := NewFnType(a, []*Node{sizedPtr}, []*Node{i32})
	assert.True(t, IsSubtype(wider, narrower))
	assert.False(t, IsSubtype(narrower, wider))
}
