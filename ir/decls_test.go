package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionTwoPhaseDeclareThenPopulate(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	param := NewParam(a, UniformType(a, i32), "x")
	fn := DeclareFunctionHeader(a, nil, "add_one", []*Node{param}, []*Node{i32})
	require.NotNil(t, fn.Type)
	assert.Equal(t, "add_one", DeclName(fn))

	bb := DeclareBasicBlockHeader(a, nil, "entry")
	PopulateFunctionBody(fn, bb)
	assert.Same(t, bb, fn.Payload.(*FunctionPayload).Body)
}

func TestPopulateFunctionBodyPanicsOnSecondCall(t *testing.T) {
	a := newTestArena()
	fn := DeclareFunctionHeader(a, nil, "f", nil, nil)
	bb := DeclareBasicBlockHeader(a, nil, "entry")
	PopulateFunctionBody(fn, bb)
	assert.Panics(t, func() { PopulateFunctionBody(fn, bb) })
}

func TestBasicBlockHeaderCarriesParamsInType(t *testing.T) {
	a := newTestArena()
	p := NewParam(a, UniformType(a, IntType(a, 32, true)), "v")
	bb := DeclareBasicBlockHeader(a, []*Node{p}, "loop")
	require.NotNil(t, bb.Type)
}

func TestConstantPopulateSetsTypeFromValueWhenNoHint(t *testing.T) {
	a := newTestArena()
	c := DeclareConstantHeader(a, nil, "PI", nil)
	assert.Nil(t, c.Type)
	v := NewFloatLiteral(a, 32, 0)
	PopulateConstantValue(c, v)
	require.NotNil(t, c.Type)
	assert.Same(t, c.Type, v.Type)
}

func TestConstantPopulateKeepsExplicitTypeHint(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	c := DeclareConstantHeader(a, nil, "N", i32)
	require.NotNil(t, c.Type)
	originalType := c.Type
	PopulateConstantValue(c, NewIntLiteral(a, 32, true, 4))
	assert.Same(t, originalType, c.Type, "an explicit type hint must not be overwritten by the populated value's type")
}

func TestPopulateConstantValuePanicsOnSecondCall(t *testing.T) {
	a := newTestArena()
	c := DeclareConstantHeader(a, nil, "N", nil)
	PopulateConstantValue(c, NewIntLiteral(a, 32, true, 1))
	assert.Panics(t, func() { PopulateConstantValue(c, NewIntLiteral(a, 32, true, 2)) })
}

func TestNewGlobalVariableTypeIsPointerInAddressSpace(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	gv := NewGlobalVariable(a, nil, "g", i32, Uniform, nil)
	require.NotNil(t, gv.Type)
	pt, ok := Inner(gv.Type).Payload.(PtrTypePayload)
	require.True(t, ok)
	assert.Same(t, i32, pt.Pointee)
	assert.Equal(t, Uniform, pt.AddressSpace)
	assert.Equal(t, "g", DeclName(gv))
}

func TestNominalTypeTwoPhaseDeclareThenPopulate(t *testing.T) {
	a := newTestArena()
	decl := DeclareNominalTypeHeader(a, "Vec3")
	assert.Equal(t, "Vec3", DeclName(decl))
	f32 := FloatType(a, 32)
	body := NewRecordType(a, []*Node{f32, f32, f32}, []string{"x", "y", "z"}, RecordPlain)
	PopulateNominalTypeBody(decl, body)
	assert.Panics(t, func() { PopulateNominalTypeBody(decl, body) })
}

func TestModuleAddDeclRejectsNonDeclarations(t *testing.T) {
	a := newTestArena()
	m := NewModule(a)
	fn := DeclareFunctionHeader(a, nil, "f", nil, nil)
	m.AddDecl(fn)
	require.Len(t, m.Decls, 1)

	notADecl := NewIntLiteral(a, 32, true, 1)
	assert.Panics(t, func() { m.AddDecl(notADecl) })
}

func TestModuleLookupByName(t *testing.T) {
	a := newTestArena()
	m := NewModule(a)
	fn := DeclareFunctionHeader(a, nil, "main", nil, nil)
	m.AddDecl(fn)

	found, ok := m.LookupByName("main")
	require.True(t, ok)
	assert.Same(t, fn, found)

	_, ok = m.LookupByName("missing")
	assert.False(t, ok)
}

func TestHasAnnotationAndFindAnnotation(t *testing.T) {
	annotations := []Annotation{{Name: AnnoEntryPoint}, {Name: AnnoLocation, PayloadKind: AnnotationValue}}
	assert.True(t, HasAnnotation(annotations, AnnoEntryPoint))
	assert.False(t, HasAnnotation(annotations, AnnoBuiltin))

	found, ok := FindAnnotation(annotations, AnnoLocation)
	require.True(t, ok)
	assert.Equal(t, AnnotationValue, found.PayloadKind)
}
