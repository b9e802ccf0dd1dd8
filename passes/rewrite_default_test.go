package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/passes"
	"github.com/TheJackiMonster/shady/rewrite"
)

func newArena() *arena.Arena {
	return arena.New(arena.Config{})
}

func TestDefaultRewriteCopiesIntLiteralIntoDstArena(t *testing.T) {
	src := newArena()
	dst := newArena()
	srcMod := ir.NewModule(src)
	dstMod := ir.NewModule(dst)

	lit := ir.NewIntLiteral(src, 32, true, 7)
	r := rewrite.New(srcMod, dstMod, passes.DefaultRewrite)
	out := rewrite.RewriteNode(r, lit)

	require.NotNil(t, out)
	assert.Equal(t, uint64(7), out.Payload.(ir.IntLiteralPayload).Value)
	assert.NotSame(t, lit, out)
}

func TestDefaultRewriteTwoPhaseFunctionPreservesBody(t *testing.T) {
	src := newArena()
	dst := newArena()
	srcMod := ir.NewModule(src)
	dstMod := ir.NewModule(dst)

	fn := ir.DeclareFunctionHeader(src, nil, "f", nil, nil)
	ir.PopulateFunctionBody(fn, ir.NewReturn(src, nil))
	srcMod.AddDecl(fn)

	r := rewrite.New(srcMod, dstMod, passes.DefaultRewrite)
	rewrite.RewriteModule(r)

	require.Len(t, dstMod.Decls, 1)
	out := dstMod.Decls[0]
	assert.Equal(t, "f", out.Payload.(*ir.FunctionPayload).Name)
	require.NotNil(t, out.Payload.(*ir.FunctionPayload).Body)
	assert.Equal(t, ir.KindReturn, ir.KindOf(out.Payload.(*ir.FunctionPayload).Body))
}

func TestDefaultRewriteTypedFillsTypeOnRebuiltInstruction(t *testing.T) {
	src := newArena()
	dst := newArena()
	srcMod := ir.NewModule(src)
	dstMod := ir.NewModule(dst)

	a := ir.NewIntLiteral(src, 32, true, 1)
	b := ir.NewIntLiteral(src, 32, true, 2)
	op := ir.NewPrimOp(src, ir.OpAdd, nil, []*ir.Node{a, b})

	r := rewrite.New(srcMod, dstMod, passes.DefaultRewriteTyped)
	out := rewrite.RewriteNode(r, op)

	require.NotNil(t, out.Type)
}

func TestDefaultRewriteUnreachableRebuildsInDstArena(t *testing.T) {
	src := newArena()
	dst := newArena()
	srcMod := ir.NewModule(src)
	dstMod := ir.NewModule(dst)

	n := ir.NewUnreachable(src)
	r := rewrite.New(srcMod, dstMod, passes.DefaultRewrite)
	out := rewrite.RewriteNode(r, n)
	assert.Equal(t, ir.KindUnreachable, ir.KindOf(out))
}
