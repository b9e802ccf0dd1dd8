package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/passes"
)

func TestInferFillsTypeOfUntypedPrimOp(t *testing.T) {
	src := arena.New(arena.Config{})
	srcMod := ir.NewModule(src)

	a := ir.NewIntLiteral(src, 32, true, 1)
	b := ir.NewIntLiteral(src, 32, true, 2)
	op := ir.NewPrimOp(src, ir.OpAdd, nil, []*ir.Node{a, b})

	fn := ir.DeclareFunctionHeader(src, nil, "f", nil, nil)
	ir.PopulateFunctionBody(fn, ir.NewReturn(src, []*ir.Node{op}))
	srcMod.AddDecl(fn)

	ctx := passes.NewContext(arena.Config{})
	out, err := passes.Infer(ctx, srcMod)
	require.NoError(t, err)

	fnOut := out.Decls[0].Payload.(*ir.FunctionPayload)
	ret := fnOut.Body.Payload.(ir.ReturnPayload)
	require.NotNil(t, ret.Args[0].Type)
}

func TestInferLeavesAlreadyTypedNodesUntouched(t *testing.T) {
	src := arena.New(arena.Config{})
	srcMod := ir.NewModule(src)
	lit := ir.NewIntLiteral(src, 32, true, 42)
	fn := ir.DeclareFunctionHeader(src, nil, "f", nil, nil)
	ir.PopulateFunctionBody(fn, ir.NewReturn(src, []*ir.Node{lit}))
	srcMod.AddDecl(fn)

	ctx := passes.NewContext(arena.Config{})
	out, err := passes.Infer(ctx, srcMod)
	require.NoError(t, err)
	assert.Empty(t, ctx.Errors)
	assert.NotNil(t, out)
}
