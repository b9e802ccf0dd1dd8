package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJackiMonster/shady/arena"
)

func TestNewStackAllocAndLocalAllocProducePointerTypes(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	sa := NewStackAlloc(a, i32)
	ty, err := TypeOf(a, sa)
	require.NoError(t, err)
	pt, ok := Inner(ty).Payload.(PtrTypePayload)
	require.True(t, ok)
	assert.Equal(t, Private, pt.AddressSpace)

	la := NewLocalAlloc(a, i32)
	ty, err = TypeOf(a, la)
	require.NoError(t, err)
	pt, ok = Inner(ty).Payload.(PtrTypePayload)
	require.True(t, ok)
	assert.Equal(t, Function, pt.AddressSpace)
}

func TestTypeOfLoadRejectsNonPointerOperand(t *testing.T) {
	a := newTestArena()
	notAPtr := NewIntLiteral(a, 32, true, 1)
	load := NewLoad(a, notAPtr)
	_, err := TypeOf(a, load)
	assert.Error(t, err)
}

func TestTypeOfLoadYieldsPointeeType(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	sa := NewStackAlloc(a, i32)
	saType, err := TypeOf(a, sa)
	require.NoError(t, err)
	sa.Type = saType

	load := NewLoad(a, sa)
	ty, err := TypeOf(a, load)
	require.NoError(t, err)
	assert.Same(t, i32, Inner(ty))
}

func TestTypeOfStoreRequiresSubtypeValue(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	sa := NewStackAlloc(a, i32)
	sa.Type, _ = TypeOf(a, sa)

	val := NewIntLiteral(a, 32, true, 5)
	st := NewStore(a, sa, val)
	_, err := TypeOf(a, st)
	require.NoError(t, err)

	mismatched := NewFloatLiteral(a, 32, 0)
	badStore := NewStore(a, sa, mismatched)
	_, err = TypeOf(a, badStore)
	assert.Error(t, err)
}

func TestNewCopyBytesFillBytesAndComment(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	dst := NewStackAlloc(a, i32)
	src := NewStackAlloc(a, i32)
	count := NewIntLiteral(a, 32, false, 4)
	cb1 := NewCopyBytes(a, dst, src, count)
	cb2 := NewCopyBytes(a, dst, src, count)
	assert.Same(t, cb1, cb2)

	val := NewIntLiteral(a, 8, false, 0)
	fb1 := NewFillBytes(a, dst, val, count)
	fb2 := NewFillBytes(a, dst, val, count)
	assert.Same(t, fb1, fb2)

	assert.Same(t, NewComment(a, "note"), NewComment(a, "note"))
}

func TestStackDisciplineOpsIntern(t *testing.T) {
	a := newTestArena()
	val := NewIntLiteral(a, 32, true, 1)
	assert.Same(t, NewPushStack(a, val), NewPushStack(a, val))
	assert.Same(t, NewGetStackPointer(a), NewGetStackPointer(a))

	i32 := IntType(a, 32, true)
	assert.Same(t, NewPopStack(a, i32), NewPopStack(a, i32))
}

func TestNewIfInternsOnComponentsAndYieldsTailType(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	cond := True(a)
	trueBB := DeclareBasicBlockHeader(a, nil, "t")
	falseBB := DeclareBasicBlockHeader(a, nil, "f")
	tailParam := NewParam(a, UniformType(a, i32), "r")
	tail := DeclareBasicBlockHeader(a, []*Node{tailParam}, "tail")

	ifNode := NewIf(a, []*Node{i32}, cond, trueBB, falseBB, tail)
	ty, err := TypeOf(a, ifNode)
	require.NoError(t, err)
	assert.Same(t, i32, Inner(ty))
	assert.True(t, IsUniform(ty))

	same := NewIf(a, []*Node{i32}, cond, trueBB, falseBB, tail)
	assert.Same(t, ifNode, same)
}

func TestNewIfWithNoYieldsProducesUnit(t *testing.T) {
	a := newTestArena()
	cond := True(a)
	trueBB := DeclareBasicBlockHeader(a, nil, "t")
	tail := DeclareBasicBlockHeader(a, nil, "tail")
	ifNode := NewIf(a, nil, cond, trueBB, nil, tail)
	ty, err := TypeOf(a, ifNode)
	require.NoError(t, err)
	assert.Same(t, Unit(a), Inner(ty))
}

func TestNewMatchInternsOnCasesAndLiterals(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	inspect := NewIntLiteral(a, 32, true, 2)
	lit0 := NewIntLiteral(a, 32, true, 0)
	lit1 := NewIntLiteral(a, 32, true, 1)
	case0 := DeclareBasicBlockHeader(a, nil, "c0")
	case1 := DeclareBasicBlockHeader(a, nil, "c1")
	def := DeclareBasicBlockHeader(a, nil, "def")
	tail := DeclareBasicBlockHeader(a, nil, "tail")

	m1 := NewMatch(a, []*Node{i32}, inspect, []*Node{lit0, lit1}, []*Node{case0, case1}, def, tail)
	m2 := NewMatch(a, []*Node{i32}, inspect, []*Node{lit0, lit1}, []*Node{case0, case1}, def, tail)
	assert.Same(t, m1, m2)
}

func TestNewLoopYieldsTailTypeWithMultipleReturns(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	f32 := FloatType(a, 32)
	param := NewParam(a, UniformType(a, i32), "i")
	body := DeclareBasicBlockHeader(a, []*Node{param}, "body")
	tail := DeclareBasicBlockHeader(a, nil, "tail")
	initArg := NewIntLiteral(a, 32, true, 0)

	loop := NewLoop(a, []*Node{i32, f32}, []*Node{param}, body, []*Node{initArg}, tail)
	ty, err := TypeOf(a, loop)
	require.NoError(t, err)
	rt, ok := Inner(ty).Payload.(RecordTypePayload)
	require.True(t, ok)
	assert.Equal(t, RecordMultipleReturn, rt.Special)
	assert.Len(t, rt.Members, 2)
}

// TestNewPrimOpFoldsReinterpretRoundTripUnderFold is spec.md §8 scenario 6:
// reinterpret(i32, reinterpret(f32, x: i32)) must fold to x when
// arena.Config.Fold is set.
func TestNewPrimOpFoldsReinterpretRoundTripUnderFold(t *testing.T) {
	a := arena.New(arena.Config{AddressSpaces: arena.DefaultAddressSpaces(), Fold: true})
	i32 := IntType(a, 32, true)
	f32 := FloatType(a, 32)
	x := NewIntLiteral(a, 32, true, 1)

	toFloat := NewPrimOp(a, OpReinterpret, []*Node{f32}, []*Node{x})
	backToInt := NewPrimOp(a, OpReinterpret, []*Node{i32}, []*Node{toFloat})
	assert.Same(t, x, backToInt)
}

func TestNewPrimOpDoesNotFoldReinterpretRoundTripWithoutFold(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	f32 := FloatType(a, 32)
	x := NewIntLiteral(a, 32, true, 1)

	toFloat := NewPrimOp(a, OpReinterpret, []*Node{f32}, []*Node{x})
	backToInt := NewPrimOp(a, OpReinterpret, []*Node{i32}, []*Node{toFloat})
	assert.NotSame(t, x, backToInt)
}

// TestNewPrimOpFoldDoesNotCollapseMismatchedRoundTrip guards against a fold
// that ignores the requested destination type: reinterpreting back to a
// type other than the original must still intern a fresh node.
func TestNewPrimOpFoldDoesNotCollapseMismatchedRoundTrip(t *testing.T) {
	a := arena.New(arena.Config{AddressSpaces: arena.DefaultAddressSpaces(), Fold: true})
	u32 := IntType(a, 32, false)
	f32 := FloatType(a, 32)
	x := NewIntLiteral(a, 32, true, 1)

	toFloat := NewPrimOp(a, OpReinterpret, []*Node{f32}, []*Node{x})
	backToUnsigned := NewPrimOp(a, OpReinterpret, []*Node{u32}, []*Node{toFloat})
	assert.NotSame(t, x, backToUnsigned)
}

func TestNewControlAndBindIdentifiersIntern(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	inside := DeclareBasicBlockHeader(a, nil, "inside")
	tail := DeclareBasicBlockHeader(a, nil, "tail")
	c1 := NewControl(a, []*Node{i32}, inside, tail)
	c2 := NewControl(a, []*Node{i32}, inside, tail)
	assert.Same(t, c1, c2)

	value := NewIntLiteral(a, 32, true, 1)
	body := DeclareBasicBlockHeader(a, nil, "b")
	bind1 := NewBindIdentifiers(a, []string{"x"}, value, body)
	bind2 := NewBindIdentifiers(a, []string{"x"}, value, body)
	assert.Same(t, bind1, bind2)
}
