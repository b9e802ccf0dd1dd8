package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/passes"
)

func TestLowerTailCallsRewritesSingleReturnTailCallToCallThenReturn(t *testing.T) {
	src := arena.New(arena.Config{})
	srcMod := ir.NewModule(src)

	i32 := ir.IntType(src, 32, true)
	callee := ir.DeclareFunctionHeader(src, nil, "callee", nil, []*ir.Node{i32})
	ir.PopulateFunctionBody(callee, ir.NewReturn(src, []*ir.Node{ir.NewIntLiteral(src, 32, true, 1)}))
	srcMod.AddDecl(callee)

	caller := ir.DeclareFunctionHeader(src, nil, "caller", nil, []*ir.Node{i32})
	ir.PopulateFunctionBody(caller, ir.NewTailCall(src, ir.NewFnAddr(src, callee), nil))
	srcMod.AddDecl(caller)

	ctx := passes.NewContext(arena.Config{})
	out, err := passes.LowerTailCalls(ctx, srcMod)
	require.NoError(t, err)

	callerOut := out.Decls[1].Payload.(*ir.FunctionPayload)
	ret := callerOut.Body.Payload.(ir.ReturnPayload)
	require.Len(t, ret.Args, 1)
	assert.Equal(t, ir.KindCall, ir.KindOf(ret.Args[0]))
}

func TestLowerTailCallsExtractsEachReturnOfMultiReturnCallee(t *testing.T) {
	src := arena.New(arena.Config{})
	srcMod := ir.NewModule(src)

	i32 := ir.IntType(src, 32, true)
	f32 := ir.FloatType(src, 32)
	callee := ir.DeclareFunctionHeader(src, nil, "callee", nil, []*ir.Node{i32, f32})
	ir.PopulateFunctionBody(callee, ir.NewReturn(src, []*ir.Node{
		ir.NewIntLiteral(src, 32, true, 1),
		ir.NewFloatLiteral(src, 32, 0),
	}))
	srcMod.AddDecl(callee)

	caller := ir.DeclareFunctionHeader(src, nil, "caller", nil, []*ir.Node{i32, f32})
	ir.PopulateFunctionBody(caller, ir.NewTailCall(src, ir.NewFnAddr(src, callee), nil))
	srcMod.AddDecl(caller)

	ctx := passes.NewContext(arena.Config{})
	out, err := passes.LowerTailCalls(ctx, srcMod)
	require.NoError(t, err)

	callerOut := out.Decls[1].Payload.(*ir.FunctionPayload)
	ret := callerOut.Body.Payload.(ir.ReturnPayload)
	require.Len(t, ret.Args, 2)
	for _, arg := range ret.Args {
		assert.Equal(t, ir.KindPrimOp, ir.KindOf(arg))
		assert.Equal(t, ir.OpExtract, arg.Payload.(ir.PrimOpPayload).Op)
	}
}
