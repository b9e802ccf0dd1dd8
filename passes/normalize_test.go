package passes_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/passes"
)

func TestNormalizeUntypedIntegerBecomesInt32Literal(t *testing.T) {
	src := arena.New(arena.Config{})
	srcMod := ir.NewModule(src)
	fn := ir.DeclareFunctionHeader(src, nil, "f", nil, nil)
	ir.PopulateFunctionBody(fn, ir.NewReturn(src, []*ir.Node{ir.NewUntypedNumber(src, "42")}))
	srcMod.AddDecl(fn)

	ctx := passes.NewContext(arena.Config{})
	out, err := passes.Normalize(ctx, srcMod)
	require.NoError(t, err)

	fnOut := out.Decls[0].Payload.(*ir.FunctionPayload)
	ret := fnOut.Body.Payload.(ir.ReturnPayload)
	lit := ret.Args[0].Payload.(ir.IntLiteralPayload)
	assert.Equal(t, uint64(42), lit.Value)
	assert.Equal(t, 32, lit.Width)
}

func TestNormalizeUntypedFloatBecomesFloat32Literal(t *testing.T) {
	src := arena.New(arena.Config{})
	srcMod := ir.NewModule(src)
	fn := ir.DeclareFunctionHeader(src, nil, "f", nil, nil)
	ir.PopulateFunctionBody(fn, ir.NewReturn(src, []*ir.Node{ir.NewUntypedNumber(src, "1.5")}))
	srcMod.AddDecl(fn)

	ctx := passes.NewContext(arena.Config{})
	out, err := passes.Normalize(ctx, srcMod)
	require.NoError(t, err)

	fnOut := out.Decls[0].Payload.(*ir.FunctionPayload)
	ret := fnOut.Body.Payload.(ir.ReturnPayload)
	lit := ret.Args[0].Payload.(ir.FloatLiteralPayload)
	assert.Equal(t, math.Float32bits(1.5), uint32(lit.Bits))
}

func TestNormalizeSingleElementTupleUnwraps(t *testing.T) {
	src := arena.New(arena.Config{})
	srcMod := ir.NewModule(src)
	lit := ir.NewIntLiteral(src, 32, true, 5)
	tup := ir.NewTuple(src, []*ir.Node{lit})
	fn := ir.DeclareFunctionHeader(src, nil, "f", nil, nil)
	ir.PopulateFunctionBody(fn, ir.NewReturn(src, []*ir.Node{tup}))
	srcMod.AddDecl(fn)

	ctx := passes.NewContext(arena.Config{})
	out, err := passes.Normalize(ctx, srcMod)
	require.NoError(t, err)

	fnOut := out.Decls[0].Payload.(*ir.FunctionPayload)
	ret := fnOut.Body.Payload.(ir.ReturnPayload)
	assert.Equal(t, ir.KindIntLiteral, ir.KindOf(ret.Args[0]))
}

func TestNormalizeInvalidNumericLiteralReportsError(t *testing.T) {
	src := arena.New(arena.Config{})
	srcMod := ir.NewModule(src)
	fn := ir.DeclareFunctionHeader(src, nil, "f", nil, nil)
	ir.PopulateFunctionBody(fn, ir.NewReturn(src, []*ir.Node{ir.NewUntypedNumber(src, "not-a-number")}))
	srcMod.AddDecl(fn)

	ctx := passes.NewContext(arena.Config{})
	_, err := passes.Normalize(ctx, srcMod)
	require.Error(t, err)
}
