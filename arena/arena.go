// Package arena implements the hash-consing allocator that owns every IR
// node: a bump-style id allocator, a structural interning table keyed by a
// caller-supplied canonical key, and a deduplicated string table.
//
// arena deliberately knows nothing about the concrete IR node shapes defined
// by package ir: it operates on the minimal Payload contract below, the same
// way golang.org/x/tools/pointer's analysis type operates on a nodeid-indexed
// []*node slice without needing to know what an ssa.Value is. The ir package
// is the one that knows how to classify, validate and type a payload; arena
// just gives every payload a stable identity and, for structural payloads,
// uniquifies it.
package arena

import "fmt"

// Kind is an opaque tag. Package ir defines the meaningful constants; arena
// only ever compares them for equality.
type Kind uint16

// NodeID is an arena-local identifier: every Arena counts from 0, so IDs
// are unique only within one Arena. IDs are never reused within an Arena's
// lifetime.
type NodeID uint64

// Payload is implemented by every concrete node shape in package ir.
//
// StructuralKey returns a string that canonically identifies the payload's
// tag and operands for the purpose of hash-consing. Nominal payloads (whose
// identity is their allocation, not their contents — Function, BasicBlock,
// Constant, GlobalVariable, NominalType, Param) must return a key derived
// from a value that is unique per call, e.g. a counter threaded in by the
// caller, so that two nominal nodes are never coalesced.
type Payload interface {
	StructuralKey() string
}

// Node is the fundamental IR atom: a tag, a back-reference to its owning
// Arena, a cached type (nil until filled, and nil forever for nodes to
// which typing does not apply), a unique id, and a tag-specific payload.
type Node struct {
	ID      NodeID
	Kind    Kind
	Nominal bool
	Owner   *Arena
	Payload Payload

	// Type caches the result of the typing function (ir.TypeOf). It is
	// filled lazily and, once set, is never overwritten: re-deriving a
	// node's type must always produce a structurally identical *Node
	// thanks to interning, so the cache is safe to treat as permanent.
	Type *Node
}

func (n *Node) String() string {
	if n == nil {
		return "<nil node>"
	}
	return fmt.Sprintf("n%d", n.ID)
}

// Anchored is implemented by whatever type package ir uses to represent a
// module; arena just needs to know that something was anchored to it so it
// can report how many live modules reference its storage.
type Anchored interface {
	ArenaOwner() *Arena
}

// Config carries the allocator-wide knobs that affect both validation and
// lowering decisions throughout the pipeline.
type Config struct {
	CheckTypes bool // verify every value/instruction has a non-null type
	Fold       bool // allow constant folding during interning (e.g. reinterpret round-trips)
	IsSIMT     bool // whether non-uniform values are permitted at all

	SubgroupSize int
	PointerWidth int // in bits, for emulated/generic pointer lowering

	// AddressSpaces describes every address space recognized by this
	// arena's target. Keyed by the ir package's AddressSpace constants,
	// which are plain ints re-exported through this package to avoid an
	// import cycle (see address_space.go).
	AddressSpaces map[AddressSpace]AddressSpaceInfo
}

// Arena owns a set of IR nodes with a shared lifetime. Dropping an Arena
// (letting it become unreferenced) invalidates every node it owns: no other
// code in this module calls runtime.GC or explicit Close, since nodes are
// plain Go values and the garbage collector reclaims them once the last
// Module built in this Arena (and anything it was rewritten into) is gone.
type Arena struct {
	Config Config

	nextID  NodeID
	byKey   map[string]*Node
	strings map[string]string
	anchors []Anchored
}

// New creates an empty Arena with the given configuration.
func New(cfg Config) *Arena {
	return &Arena{
		Config:  cfg,
		byKey:   make(map[string]*Node),
		strings: make(map[string]string),
	}
}

// NodeCount reports how many distinct nodes this arena has allocated,
// structural and nominal combined (InternNodes list entries included).
// Useful for diagnostics and for sizing dense per-node side tables.
func (a *Arena) NodeCount() int {
	return int(a.nextID)
}

// Validator is supplied by the caller (always package ir, which alone knows
// the typing rules) and is run once, at creation time, for every node this
// arena is asked to intern. A non-nil error aborts interning:
// validation failures are fatal for the current compilation.
type Validator func(a *Arena, n *Node) error

// InternNode returns the existing node for (kind, payload) if the arena's
// structural table already holds one with an equal StructuralKey; otherwise
// it validates the candidate via validate, and on success allocates and
// registers a fresh node.
//
// validate may be nil, e.g. for nodes that are always well-formed by
// construction (literals) or in arenas with Config.CheckTypes == false.
func (a *Arena) InternNode(kind Kind, payload Payload, validate Validator) (*Node, error) {
	key := structKey(kind, payload)
	if existing, ok := a.byKey[key]; ok {
		return existing, nil
	}
	n := &Node{ID: a.allocID(), Kind: kind, Owner: a, Payload: payload}
	if validate != nil {
		if err := validate(a, n); err != nil {
			return nil, fmt.Errorf("shady: invalid node %s (kind %d): %w\n%s", n, kind, err, describe(payload))
		}
	}
	a.byKey[key] = n
	return n, nil
}

// NewNominal always allocates a fresh node: Function, BasicBlock, Constant,
// GlobalVariable, NominalType and Param are identified by creation, not by
// payload, so they are never looked up in the structural table.
func (a *Arena) NewNominal(kind Kind, payload Payload) *Node {
	return &Node{ID: a.allocID(), Kind: kind, Owner: a, Payload: payload, Nominal: true}
}

func (a *Arena) allocID() NodeID {
	id := a.nextID
	a.nextID++
	return id
}

func structKey(kind Kind, payload Payload) string {
	return fmt.Sprintf("%d|%s", kind, payload.StructuralKey())
}

func describe(p Payload) string {
	return fmt.Sprintf("%+v", p)
}

// InternString deduplicates bytes against this arena's string table and
// returns the canonical copy.
func (a *Arena) InternString(s string) string {
	if existing, ok := a.strings[s]; ok {
		return existing
	}
	a.strings[s] = s
	return s
}

// InternNodes deduplicates a node list: two calls with contents that compare
// equal element-wise return the identical backing slice.
func (a *Arena) InternNodes(nodes []*Node) []*Node {
	key := "["
	for i, n := range nodes {
		if i > 0 {
			key += ","
		}
		key += fmt.Sprintf("%d", n.ID)
	}
	key += "]"
	k := "nodelist|" + key
	if existing, ok := a.byKey[k]; ok {
		return existing.Payload.(*nodeListPayload).list
	}
	cp := make([]*Node, len(nodes))
	copy(cp, nodes)
	// Store it in the structural table under a synthetic kind so repeated
	// InternNodes calls with the same contents share the backing array.
	a.byKey[k] = &Node{ID: a.allocID(), Kind: kindNodeList, Owner: a, Payload: &nodeListPayload{list: cp}}
	return cp
}

const kindNodeList Kind = 0xFFFF

type nodeListPayload struct{ list []*Node }

func (p *nodeListPayload) StructuralKey() string { return "" } // never looked up by key directly

// Anchor registers v (expected to be an *ir.Module) as anchored to this
// arena, so LiveModules reports an accurate count for diagnostics.
func (a *Arena) Anchor(v Anchored) {
	a.anchors = append(a.anchors, v)
}

// LiveModules returns how many modules have been anchored to this arena.
func (a *Arena) LiveModules() int {
	return len(a.anchors)
}
