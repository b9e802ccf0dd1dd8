package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

func newArena() *arena.Arena {
	return arena.New(arena.Config{AddressSpaces: arena.DefaultAddressSpaces()})
}

// copyLiterals is a minimal ProcessFunc: it copies int/float literals into
// the destination arena and panics on anything else, enough to exercise the
// Rewriter's memoization without needing a full pass.
func copyLiterals(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	switch ir.KindOf(n) {
	case ir.KindIntLiteral:
		p := n.Payload.(ir.IntLiteralPayload)
		return ir.NewIntLiteral(r.DstModule.Arena, p.Width, p.Signed, p.Value)
	case ir.KindFloatLiteral:
		p := n.Payload.(ir.FloatLiteralPayload)
		return ir.NewFloatLiteral(r.DstModule.Arena, p.Width, p.Bits)
	default:
		panic("copyLiterals: unsupported kind")
	}
}

func TestRewriteNodeMemoizesByIdentity(t *testing.T) {
	src := ir.NewModule(newArena())
	dst := ir.NewModule(newArena())
	r := rewrite.New(src, dst, copyLiterals)

	n := ir.NewIntLiteral(src.Arena, 32, true, 7)
	out1 := rewrite.RewriteNode(r, n)
	out2 := rewrite.RewriteNode(r, n)
	assert.Same(t, out1, out2, "rewriting the same source node twice must return the identical destination node")
	require.NotNil(t, out1)
	assert.Equal(t, dst.Arena, out1.Owner)
}

func TestRewriteNodeNilIsNil(t *testing.T) {
	src := ir.NewModule(newArena())
	dst := ir.NewModule(newArena())
	r := rewrite.New(src, dst, copyLiterals)
	assert.Nil(t, rewrite.RewriteNode(r, nil))
}

func TestRewriteNodesPreservesOrder(t *testing.T) {
	src := ir.NewModule(newArena())
	dst := ir.NewModule(newArena())
	r := rewrite.New(src, dst, copyLiterals)

	a := ir.NewIntLiteral(src.Arena, 32, true, 1)
	b := ir.NewIntLiteral(src.Arena, 32, true, 2)
	out := rewrite.RewriteNodes(r, []*ir.Node{a, b})
	require.Len(t, out, 2)
	assert.Equal(t, uint64(1), out[0].Payload.(ir.IntLiteralPayload).Value)
	assert.Equal(t, uint64(2), out[1].Payload.(ir.IntLiteralPayload).Value)
}

func TestMemoizeShortCircuitsProcess(t *testing.T) {
	src := ir.NewModule(newArena())
	dst := ir.NewModule(newArena())
	called := false
	r := rewrite.New(src, dst, func(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
		called = true
		return copyLiterals(r, n)
	})

	n := ir.NewIntLiteral(src.Arena, 32, true, 3)
	stub := ir.NewIntLiteral(dst.Arena, 32, true, 99)
	rewrite.Memoize(r, n, stub)

	out := rewrite.RewriteNode(r, n)
	assert.Same(t, stub, out)
	assert.False(t, called, "Memoize must pre-empt Process from ever running for that node")
}

func TestChildRewriterFallsBackToParentMemo(t *testing.T) {
	src := ir.NewModule(newArena())
	dst := ir.NewModule(newArena())
	r := rewrite.New(src, dst, copyLiterals)

	n := ir.NewIntLiteral(src.Arena, 32, true, 5)
	parentOut := rewrite.RewriteNode(r, n)

	child := rewrite.NewChildRewriter(r)
	childOut := rewrite.RewriteNode(child, n)
	assert.Same(t, parentOut, childOut, "a lookup miss in the child must fall through to the parent's memo")
}

func TestChildRewriterPrivateEntriesDoNotLeakToParent(t *testing.T) {
	src := ir.NewModule(newArena())
	dst := ir.NewModule(newArena())
	calls := 0
	r := rewrite.New(src, dst, func(rr *rewrite.Rewriter, n *ir.Node) *ir.Node {
		calls++
		return copyLiterals(rr, n)
	})
	child := rewrite.NewChildRewriter(r)

	n := ir.NewIntLiteral(src.Arena, 32, true, 9)
	childStub := ir.NewIntLiteral(dst.Arena, 32, true, 1234)
	rewrite.Memoize(child, n, childStub)

	out := rewrite.RewriteNode(r, n)
	assert.Equal(t, 1, calls, "a node memoized only on the child must still run Process when rewritten through the parent")
	assert.NotSame(t, childStub, out)
}
