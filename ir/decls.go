package ir

import (
	"fmt"

	"github.com/TheJackiMonster/shady/arena"
)

// AnnotationPayloadKind is one of None, Value, Values, Map.
type AnnotationPayloadKind int

const (
	AnnotationNone AnnotationPayloadKind = iota
	AnnotationValue
	AnnotationValues
	AnnotationMap
)

type Annotation struct {
	Name        string
	PayloadKind AnnotationPayloadKind
	Value       *Node
	Values      []*Node
	Map         map[string]*Node
}

// Well-known annotation names recognized by the pipeline.
const (
	AnnoEntryPoint         = "EntryPoint"
	AnnoWorkgroupSize      = "WorkgroupSize"
	AnnoBuiltin            = "Builtin"
	AnnoLocation           = "Location"
	AnnoDescriptorSet      = "DescriptorSet"
	AnnoDescriptorBinding  = "DescriptorBinding"
	AnnoIO                 = "IO"
	AnnoPrimOpIntrinsic    = "PrimOpIntrinsic"
	AnnoLeaf               = "Leaf"
	AnnoMaybeLeaf          = "MaybeLeaf"
	AnnoStructured         = "Structured"
	AnnoGenerated          = "Generated"
	AnnoLogical            = "Logical"
)

// HasAnnotation reports whether annotations contains one named name.
func HasAnnotation(annotations []Annotation, name string) bool {
	_, ok := FindAnnotation(annotations, name)
	return ok
}

// FindAnnotation returns the first annotation named name.
func FindAnnotation(annotations []Annotation, name string) (Annotation, bool) {
	for _, an := range annotations {
		if an.Name == name {
			return an, true
		}
	}
	return Annotation{}, false
}

// ---- Function ---------------------------------------------------------------

type FunctionPayload struct {
	Annotations []Annotation
	Name        string
	Params      []*Node
	ReturnTypes []*Node
	Body        AbstractionRef // nil until populated
}

func (*FunctionPayload) StructuralKey() string { return "" }

// DeclareFunctionHeader implements the first phase of the two-phase nominal
// rewrite: it creates the Function node with its signature but
// no body, so that recursive and mutually-recursive FnAddr references can be
// resolved against it before the body is rewritten.
func DeclareFunctionHeader(a *arena.Arena, annotations []Annotation, name string, params, returnTypes []*Node) *Node {
	payload := &FunctionPayload{
		Annotations: annotations, Name: a.InternString(name),
		Params: append([]*Node(nil), params...), ReturnTypes: a.InternNodes(returnTypes),
	}
	n := nominal(a, KindFunction, payload)
	n.Type = UniformType(a, NewFnType(a, paramTypes(params), returnTypes))
	return n
}

// PopulateFunctionBody fills in fn's body exactly once; calling it twice
// panics, since nominal declarations may only have body/init/params set
// once after creation.
func PopulateFunctionBody(fn *Node, body AbstractionRef) {
	p := fn.Payload.(*FunctionPayload)
	if p.Body != nil {
		panic("ir: function body already populated")
	}
	p.Body = body
}

func paramTypes(params []*Node) []*Node {
	out := make([]*Node, len(params))
	for i, p := range params {
		out[i] = TypeNode(p)
	}
	return out
}

// ---- BasicBlock ---------------------------------------------------------------

type BasicBlockPayload struct {
	Params []*Node
	Body   AbstractionRef // the instruction/terminator chain root; nil until populated
	Name   string
}

func (*BasicBlockPayload) StructuralKey() string { return "" }

func DeclareBasicBlockHeader(a *arena.Arena, params []*Node, name string) *Node {
	payload := &BasicBlockPayload{Params: append([]*Node(nil), params...), Name: a.InternString(name)}
	n := nominal(a, KindBasicBlock, payload)
	n.Type = UniformType(a, NewBBType(a, params))
	return n
}

func PopulateBasicBlockBody(bb *Node, body AbstractionRef) {
	p := bb.Payload.(*BasicBlockPayload)
	if p.Body != nil {
		panic("ir: basic block body already populated")
	}
	p.Body = body
}

// ---- Constant, GlobalVariable -------------------------------------------------

type ConstantPayload struct {
	Annotations []Annotation
	Name        string
	TypeHint    *Node
	Value       *Node // nil until populated
}

func (*ConstantPayload) StructuralKey() string { return "" }

func DeclareConstantHeader(a *arena.Arena, annotations []Annotation, name string, typeHint *Node) *Node {
	payload := &ConstantPayload{Annotations: annotations, Name: a.InternString(name), TypeHint: typeHint}
	n := nominal(a, KindConstant, payload)
	if typeHint != nil {
		n.Type = UniformType(a, typeHint)
	}
	return n
}

func PopulateConstantValue(c *Node, value *Node) {
	p := c.Payload.(*ConstantPayload)
	if p.Value != nil {
		panic("ir: constant value already populated")
	}
	p.Value = value
	if c.Type == nil {
		c.Type = TypeNode(value)
	}
}

type GlobalVariablePayload struct {
	Annotations  []Annotation
	Name         string
	Type         *Node
	AddressSpace AddressSpace
	Init         *Node // nil if uninitialized
}

func (*GlobalVariablePayload) StructuralKey() string { return "" }

func NewGlobalVariable(a *arena.Arena, annotations []Annotation, name string, t *Node, as AddressSpace, init *Node) *Node {
	payload := &GlobalVariablePayload{Annotations: annotations, Name: a.InternString(name), Type: t, AddressSpace: as, Init: init}
	n := nominal(a, KindGlobalVariable, payload)
	n.Type = UniformType(a, NewPtrType(a, t, as, false))
	return n
}

// ---- NominalType ---------------------------------------------------------------

type NominalTypePayload struct {
	Name string
	Body *Node // the aliased/underlying type; nil until populated
}

func (*NominalTypePayload) StructuralKey() string { return "" }

func DeclareNominalTypeHeader(a *arena.Arena, name string) *Node {
	return nominal(a, KindNominalType, &NominalTypePayload{Name: a.InternString(name)})
}

func PopulateNominalTypeBody(decl *Node, body *Node) {
	p := decl.Payload.(*NominalTypePayload)
	if p.Body != nil {
		panic("ir: nominal type body already populated")
	}
	p.Body = body
}

// ---- Module -------------------------------------------------------------------

// Module is an ordered collection of declarations anchored to one Arena
// Declaration order is preserved and is load-
// bearing for determinism.
type Module struct {
	Arena *arena.Arena
	Decls []*Node
}

func NewModule(a *arena.Arena) *Module {
	m := &Module{Arena: a}
	a.Anchor(m)
	return m
}

// ArenaOwner implements arena.Anchored.
func (m *Module) ArenaOwner() *arena.Arena { return m.Arena }

// AddDecl appends decl to the module, preserving source order.
func (m *Module) AddDecl(decl *Node) {
	if !IsDeclaration(KindOf(decl)) {
		panic(fmt.Sprintf("ir: %s is not a declaration", decl))
	}
	m.Decls = append(m.Decls, decl)
}

// LookupByName returns the first top-level declaration with the given name,
// used by passes.Bind when resolving identifiers against already-rewritten
// or source declarations, during the Bind pass.
func (m *Module) LookupByName(name string) (*Node, bool) {
	for _, d := range m.Decls {
		if DeclName(d) == name {
			return d, true
		}
	}
	return nil, false
}

// DeclName returns a declaration's name.
func DeclName(d *Node) string {
	switch KindOf(d) {
	case KindFunction:
		return d.Payload.(*FunctionPayload).Name
	case KindConstant:
		return d.Payload.(*ConstantPayload).Name
	case KindGlobalVariable:
		return d.Payload.(*GlobalVariablePayload).Name
	case KindNominalType:
		return d.Payload.(*NominalTypePayload).Name
	default:
		return ""
	}
}
