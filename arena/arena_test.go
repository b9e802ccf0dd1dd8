package arena

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayload struct{ key string }

func (p fakePayload) StructuralKey() string { return p.key }

func TestInternNodeDeduplicatesByStructuralKey(t *testing.T) {
	a := New(Config{})
	n1, err := a.InternNode(1, fakePayload{key: "a,b"}, nil)
	require.NoError(t, err)
	n2, err := a.InternNode(1, fakePayload{key: "a,b"}, nil)
	require.NoError(t, err)
	assert.Same(t, n1, n2, "two structurally equal payloads of the same kind must intern to the same node")
}

func TestInternNodeDistinguishesKind(t *testing.T) {
	a := New(Config{})
	n1, err := a.InternNode(1, fakePayload{key: "x"}, nil)
	require.NoError(t, err)
	n2, err := a.InternNode(2, fakePayload{key: "x"}, nil)
	require.NoError(t, err)
	assert.NotSame(t, n1, n2, "identical payload keys under different kinds must not collide")
}

func TestInternNodeRunsValidatorOnce(t *testing.T) {
	a := New(Config{})
	calls := 0
	validate := func(a *Arena, n *Node) error {
		calls++
		return nil
	}
	_, err := a.InternNode(1, fakePayload{key: "v"}, validate)
	require.NoError(t, err)
	_, err = a.InternNode(1, fakePayload{key: "v"}, validate)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "validator must not re-run for an already-interned node")
}

func TestInternNodeValidatorFailureIsFatal(t *testing.T) {
	a := New(Config{})
	boom := fmt.Errorf("boom")
	_, err := a.InternNode(1, fakePayload{key: "bad"}, func(a *Arena, n *Node) error { return boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	_, ok := a.byKey[structKey(1, fakePayload{key: "bad"})]
	assert.False(t, ok, "a failed validation must not register the node")
}

func TestNewNominalNeverCoalesces(t *testing.T) {
	a := New(Config{})
	n1 := a.NewNominal(1, fakePayload{key: "same"})
	n2 := a.NewNominal(1, fakePayload{key: "same"})
	assert.NotSame(t, n1, n2)
	assert.NotEqual(t, n1.ID, n2.ID)
	assert.True(t, n1.Nominal)
}

func TestInternStringDeduplicates(t *testing.T) {
	a := New(Config{})
	s1 := a.InternString("hello")
	s2 := a.InternString("hello")
	assert.Equal(t, s1, s2)
}

func TestInternNodesSharesBackingArrayForEqualContents(t *testing.T) {
	a := New(Config{})
	x, err := a.InternNode(1, fakePayload{key: "x"}, nil)
	require.NoError(t, err)
	y, err := a.InternNode(1, fakePayload{key: "y"}, nil)
	require.NoError(t, err)

	l1 := a.InternNodes([]*Node{x, y})
	l2 := a.InternNodes([]*Node{x, y})
	require.Len(t, l1, 2)
	assert.Equal(t, fmt.Sprintf("%p", l1), fmt.Sprintf("%p", l2))
}

func TestInternNodesDistinguishesDifferentContents(t *testing.T) {
	a := New(Config{})
	x, _ := a.InternNode(1, fakePayload{key: "x"}, nil)
	y, _ := a.InternNode(1, fakePayload{key: "y"}, nil)

	l1 := a.InternNodes([]*Node{x, y})
	l2 := a.InternNodes([]*Node{y, x})
	assert.NotEqual(t, fmt.Sprintf("%p", l1), fmt.Sprintf("%p", l2))
}

func TestNodeCountGrowsPerAllocation(t *testing.T) {
	a := New(Config{})
	require.Equal(t, 0, a.NodeCount())
	_, err := a.InternNode(1, fakePayload{key: "one"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, a.NodeCount())
	a.NewNominal(1, fakePayload{key: "two"})
	assert.Equal(t, 2, a.NodeCount())
}

type fakeModule struct{ owner *Arena }

func (m *fakeModule) ArenaOwner() *Arena { return m.owner }

func TestAnchorTracksLiveModules(t *testing.T) {
	a := New(Config{})
	assert.Equal(t, 0, a.LiveModules())
	a.Anchor(&fakeModule{owner: a})
	a.Anchor(&fakeModule{owner: a})
	assert.Equal(t, 2, a.LiveModules())
}

func TestNodeStringOnNil(t *testing.T) {
	var n *Node
	assert.Equal(t, "<nil node>", n.String())
}
