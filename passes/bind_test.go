package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/passes"
)

func TestBindResolvesUnboundIdentifierToModuleDecl(t *testing.T) {
	src := arena.New(arena.Config{})
	srcMod := ir.NewModule(src)

	callee := ir.DeclareFunctionHeader(src, nil, "callee", nil, nil)
	ir.PopulateFunctionBody(callee, ir.NewReturn(src, nil))
	srcMod.AddDecl(callee)

	caller := ir.DeclareFunctionHeader(src, nil, "caller", nil, nil)
	unbound := ir.NewUnbound(src, "callee")
	ir.PopulateFunctionBody(caller, ir.NewTailCall(src, unbound, nil))
	srcMod.AddDecl(caller)

	ctx := passes.NewContext(arena.Config{})
	out, err := passes.Bind(ctx, srcMod)
	require.NoError(t, err)

	callerOut := out.Decls[1].Payload.(*ir.FunctionPayload)
	tc := callerOut.Body.Payload.(ir.TailCallPayload)
	assert.Equal(t, ir.KindFunction, ir.KindOf(tc.Callee))
	assert.Equal(t, "callee", tc.Callee.Payload.(*ir.FunctionPayload).Name)
}

func TestBindReportsUnresolvedIdentifier(t *testing.T) {
	src := arena.New(arena.Config{})
	srcMod := ir.NewModule(src)

	fn := ir.DeclareFunctionHeader(src, nil, "f", nil, nil)
	ir.PopulateFunctionBody(fn, ir.NewReturn(src, []*ir.Node{ir.NewUnbound(src, "missing")}))
	srcMod.AddDecl(fn)

	ctx := passes.NewContext(arena.Config{})
	_, err := passes.Bind(ctx, srcMod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestBindIdentifiersBindsValueIntoScopeForBody(t *testing.T) {
	src := arena.New(arena.Config{})
	srcMod := ir.NewModule(src)

	val := ir.NewIntLiteral(src, 32, true, 9)
	body := ir.NewReturn(src, []*ir.Node{ir.NewUnbound(src, "x")})
	bindExpr := ir.NewBindIdentifiers(src, []string{"x"}, val, body)

	fn := ir.DeclareFunctionHeader(src, nil, "f", nil, nil)
	ir.PopulateFunctionBody(fn, bindExpr)
	srcMod.AddDecl(fn)

	ctx := passes.NewContext(arena.Config{})
	out, err := passes.Bind(ctx, srcMod)
	require.NoError(t, err)

	fnOut := out.Decls[0].Payload.(*ir.FunctionPayload)
	bi := fnOut.Body.Payload.(ir.BindIdentifiersPayload)
	ret := bi.Body.Payload.(ir.ReturnPayload)
	require.Len(t, ret.Args, 1)
	assert.Equal(t, uint64(9), ret.Args[0].Payload.(ir.IntLiteralPayload).Value)
}
