package spirv

import "encoding/binary"

// moduleBuilder accumulates a SPIR-V module as a set of independently
// growable word sections, in the order the SPIR-V physical layout requires
// (capabilities, extensions, ext-inst imports, memory model, entry points,
// execution modes, debug names, decorations, types/constants/globals,
// functions). Because each section is its own slice, callers can populate
// them in whatever order is convenient (entry points are only known once
// function IDs exist, decorations are easiest to emit alongside the
// declaration they annotate) and Build() concatenates them into the one
// legal physical order at the end — the same division of concerns as
// other_examples/.../gogpu-naga__spirv-backend.go's Backend/ModuleBuilder
// split, adapted to this repo's Module/declaration model.
type moduleBuilder struct {
	version Version

	nextID uint32 // result ids start at 1; 0 is never a valid id

	capabilities    []uint32
	extInstImports  []uint32
	memoryModel     []uint32
	entryPoints     []uint32
	executionModes  []uint32
	debugNames      []uint32
	decorations     []uint32
	typesConstsVars []uint32
	functions       []uint32
}

// Version is the target SPIR-V module version.
type Version struct{ Major, Minor int }

func newModuleBuilder(v Version) *moduleBuilder {
	return &moduleBuilder{version: v, nextID: 1}
}

func (b *moduleBuilder) newID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

// emit appends one instruction (opcode + operand words) to *section,
// prefixing it with the packed word-count/opcode header word every SPIR-V
// instruction starts with.
func emit(section *[]uint32, op OpCode, operands ...uint32) {
	wordCount := uint32(len(operands) + 1)
	*section = append(*section, wordCount<<16|uint32(op))
	*section = append(*section, operands...)
}

// encodeString packs s into one or more little-endian words, NUL-terminated
// and zero-padded to a word boundary per the SPIR-V literal-string encoding.
func encodeString(s string) []uint32 {
	b := append([]byte(s), 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words
}

func (b *moduleBuilder) AddCapability(cap Capability) {
	emit(&b.capabilities, OpCapability, uint32(cap))
}

func (b *moduleBuilder) AddExtInstImport(name string) uint32 {
	id := b.newID()
	emit(&b.extInstImports, OpExtInstImport, append([]uint32{id}, encodeString(name)...)...)
	return id
}

func (b *moduleBuilder) SetMemoryModel(am AddressingModel, mm MemoryModel) {
	emit(&b.memoryModel, OpMemoryModel, uint32(am), uint32(mm))
}

func (b *moduleBuilder) AddEntryPoint(model ExecutionModel, fn uint32, name string, interfaces []uint32) {
	operands := append([]uint32{uint32(model), fn}, encodeString(name)...)
	operands = append(operands, interfaces...)
	emit(&b.entryPoints, OpEntryPoint, operands...)
}

func (b *moduleBuilder) AddExecutionMode(fn uint32, mode ExecutionMode, literals ...uint32) {
	emit(&b.executionModes, OpExecutionMode, append([]uint32{fn, uint32(mode)}, literals...)...)
}

func (b *moduleBuilder) AddName(id uint32, name string) {
	if name == "" {
		return
	}
	emit(&b.debugNames, OpName, append([]uint32{id}, encodeString(name)...)...)
}

func (b *moduleBuilder) AddMemberName(id, member uint32, name string) {
	if name == "" {
		return
	}
	emit(&b.debugNames, OpMemberName, append([]uint32{id, member}, encodeString(name)...)...)
}

func (b *moduleBuilder) AddDecorate(id uint32, dec Decoration, literals ...uint32) {
	emit(&b.decorations, OpDecorate, append([]uint32{id, uint32(dec)}, literals...)...)
}

func (b *moduleBuilder) AddMemberDecorate(id, member uint32, dec Decoration, literals ...uint32) {
	emit(&b.decorations, OpMemberDecorate, append([]uint32{id, member, uint32(dec)}, literals...)...)
}

// --- Types, constants, globals (all share the types/consts/vars section) ---

func (b *moduleBuilder) TypeVoid() uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpTypeVoid, id)
	return id
}

func (b *moduleBuilder) TypeBool() uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpTypeBool, id)
	return id
}

func (b *moduleBuilder) TypeInt(width int, signed bool) uint32 {
	id := b.newID()
	s := uint32(0)
	if signed {
		s = 1
	}
	emit(&b.typesConstsVars, OpTypeInt, id, uint32(width), s)
	return id
}

func (b *moduleBuilder) TypeFloat(width int) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpTypeFloat, id, uint32(width))
	return id
}

func (b *moduleBuilder) TypeVector(elem uint32, width int) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpTypeVector, id, elem, uint32(width))
	return id
}

func (b *moduleBuilder) TypeArray(elem, length uint32) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpTypeArray, id, elem, length)
	return id
}

func (b *moduleBuilder) TypeRuntimeArray(elem uint32) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpTypeRuntimeArray, id, elem)
	return id
}

func (b *moduleBuilder) TypeStruct(members []uint32) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpTypeStruct, append([]uint32{id}, members...)...)
	return id
}

func (b *moduleBuilder) TypePointer(sc StorageClass, pointee uint32) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpTypePointer, id, uint32(sc), pointee)
	return id
}

func (b *moduleBuilder) TypeFunction(ret uint32, params []uint32) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpTypeFunction, append([]uint32{id, ret}, params...)...)
	return id
}

func (b *moduleBuilder) TypeImage(sampledType uint32, dim uint32, depth, arrayed, ms, sampled, format uint32) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpTypeImage, id, sampledType, dim, depth, arrayed, ms, sampled, format)
	return id
}

func (b *moduleBuilder) TypeSampler() uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpTypeSampler, id)
	return id
}

func (b *moduleBuilder) TypeSampledImage(image uint32) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpTypeSampledImage, id, image)
	return id
}

func (b *moduleBuilder) ConstantTrue(t uint32) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpConstantTrue, t, id)
	return id
}

func (b *moduleBuilder) ConstantFalse(t uint32) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpConstantFalse, t, id)
	return id
}

// Constant emits a scalar int/float constant. value holds the raw bits;
// for widths <= 32 that's one literal word, for 64-bit it's two words,
// low word first, per the SPIR-V literal-number encoding.
func (b *moduleBuilder) Constant(t uint32, width int, value uint64) uint32 {
	id := b.newID()
	if width > 32 {
		emit(&b.typesConstsVars, OpConstant, t, id, uint32(value), uint32(value>>32))
	} else {
		emit(&b.typesConstsVars, OpConstant, t, id, uint32(value))
	}
	return id
}

func (b *moduleBuilder) ConstantComposite(t uint32, members []uint32) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpConstantComposite, append([]uint32{t, id}, members...)...)
	return id
}

func (b *moduleBuilder) ConstantNull(t uint32) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpConstantNull, t, id)
	return id
}

func (b *moduleBuilder) Undef(t uint32) uint32 {
	id := b.newID()
	emit(&b.typesConstsVars, OpUndef, t, id)
	return id
}

// GlobalVariable emits a module-scope OpVariable (storage class anything
// but Function); init, if nonzero, must be a constant id of the same type.
func (b *moduleBuilder) GlobalVariable(ptrType uint32, sc StorageClass, init uint32) uint32 {
	id := b.newID()
	operands := []uint32{ptrType, id, uint32(sc)}
	if init != 0 {
		operands = append(operands, init)
	}
	emit(&b.typesConstsVars, OpVariable, operands...)
	return id
}

// Build assembles every section into the final SPIR-V binary, little-endian
// per the spec's default byte order.
func (b *moduleBuilder) Build() []byte {
	header := []uint32{
		0x07230203,                                   // magic number
		uint32(b.version.Major)<<16 | uint32(b.version.Minor)<<8, // version
		0,           // generator magic number (none registered)
		b.nextID,    // bound
		0,           // schema (reserved, must be 0)
	}
	var words []uint32
	words = append(words, header...)
	words = append(words, b.capabilities...)
	words = append(words, b.extInstImports...)
	words = append(words, b.memoryModel...)
	words = append(words, b.entryPoints...)
	words = append(words, b.executionModes...)
	words = append(words, b.debugNames...)
	words = append(words, b.decorations...)
	words = append(words, b.typesConstsVars...)
	words = append(words, b.functions...)

	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}
