package ir

import "github.com/TheJackiMonster/shady/arena"

// Node is the node handle every pass, analysis, and the emitter operate on.
// It is a straight alias for arena.Node: package ir adds no fields, only
// behavior, keeping a single concrete node representation across the whole
// compiler ("every node carries ... a tag-specific
// payload").
type Node = arena.Node

// KindOf returns n's tag as an ir.Kind, converting from the arena-level
// representation.
func KindOf(n *Node) Kind {
	if n == nil {
		return 0
	}
	return Kind(n.Kind)
}

// TypeNode returns n's cached type node (nil if untyped or not yet filled).
func TypeNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	return n.Type
}

func intern(a *arena.Arena, k Kind, p arena.Payload, validate arena.Validator) (*Node, error) {
	return a.InternNode(arena.Kind(k), p, validate)
}

func nominal(a *arena.Arena, k Kind, p arena.Payload) *Node {
	return a.NewNominal(arena.Kind(k), p)
}

// mustIntern is used by constructors for node kinds that can never fail
// interning validation on their own (the validation closure is nil, or the
// shape is trivially well-formed); it panics on an unexpected error so a
// caller-side bug surfaces immediately rather than producing a malformed
// node.
func mustIntern(a *arena.Arena, k Kind, p arena.Payload, validate arena.Validator) *Node {
	n, err := intern(a, k, p, validate)
	if err != nil {
		panic(err)
	}
	return n
}
