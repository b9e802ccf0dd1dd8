package spirv

// OpCode is a SPIR-V instruction opcode, the low 16 bits of an
// instruction's first word (the high 16 bits are the instruction's word
// count, computed by moduleBuilder.emit). Values are taken from the
// Khronos SPIR-V specification; only the opcodes this backend emits are
// named here, mirroring how
// other_examples/.../gogpu-naga__spirv-backend.go declares one named
// OpCode constant per instruction it actually uses rather than the whole
// instruction set.
type OpCode uint16

const (
	OpUndef        OpCode = 1
	OpSourceOp     OpCode = 3
	OpName         OpCode = 5
	OpMemberName   OpCode = 6
	OpExtInstImport OpCode = 11
	OpExtInst      OpCode = 12
	OpMemoryModel  OpCode = 14
	OpEntryPoint   OpCode = 15
	OpExecutionMode OpCode = 16
	OpCapability   OpCode = 17

	OpTypeVoid         OpCode = 19
	OpTypeBool         OpCode = 20
	OpTypeInt          OpCode = 21
	OpTypeFloat        OpCode = 22
	OpTypeVector       OpCode = 23
	OpTypeArray        OpCode = 28
	OpTypeRuntimeArray OpCode = 29
	OpTypeStruct       OpCode = 30
	OpTypePointer      OpCode = 32
	OpTypeFunction     OpCode = 33
	OpTypeImage        OpCode = 25
	OpTypeSampler      OpCode = 26
	OpTypeSampledImage OpCode = 27

	OpConstantTrue      OpCode = 41
	OpConstantFalse     OpCode = 42
	OpConstant          OpCode = 43
	OpConstantComposite OpCode = 44
	OpConstantNull      OpCode = 46

	OpFunction          OpCode = 54
	OpFunctionParameter OpCode = 55
	OpFunctionEnd       OpCode = 56
	OpFunctionCall      OpCode = 57

	OpVariable OpCode = 59
	OpLoad     OpCode = 61
	OpStore    OpCode = 62
	OpAccessChain OpCode = 65

	OpDecorate       OpCode = 71
	OpMemberDecorate OpCode = 72

	OpVectorShuffle     OpCode = 79
	OpCompositeConstruct OpCode = 80
	OpCompositeExtract  OpCode = 81
	OpCompositeInsert   OpCode = 82

	OpConvertFToU OpCode = 109
	OpConvertFToS OpCode = 110
	OpConvertSToF OpCode = 111
	OpConvertUToF OpCode = 112
	OpUConvert    OpCode = 113
	OpSConvert    OpCode = 114
	OpFConvert    OpCode = 115
	OpBitcast     OpCode = 124

	OpSNegate OpCode = 126
	OpFNegate OpCode = 127
	OpIAdd    OpCode = 128
	OpFAdd    OpCode = 129
	OpISub    OpCode = 130
	OpFSub    OpCode = 131
	OpIMul    OpCode = 132
	OpFMul    OpCode = 133
	OpUDiv    OpCode = 134
	OpSDiv    OpCode = 135
	OpFDiv    OpCode = 136
	OpUMod    OpCode = 137
	OpSRem    OpCode = 138
	OpSMod    OpCode = 139
	OpFRem    OpCode = 140
	OpFMod    OpCode = 141

	OpIAddCarry    OpCode = 149
	OpISubBorrow   OpCode = 150
	OpUMulExtended OpCode = 151
	OpSMulExtended OpCode = 152

	OpLogicalEqual    OpCode = 164
	OpLogicalNotEqual OpCode = 165
	OpLogicalOr       OpCode = 166
	OpLogicalAnd      OpCode = 167
	OpLogicalNot      OpCode = 168
	OpSelect          OpCode = 169

	OpIEqual               OpCode = 170
	OpINotEqual            OpCode = 171
	OpUGreaterThan         OpCode = 172
	OpSGreaterThan         OpCode = 173
	OpUGreaterThanEqual    OpCode = 174
	OpSGreaterThanEqual    OpCode = 175
	OpULessThan            OpCode = 176
	OpSLessThan            OpCode = 177
	OpULessThanEqual       OpCode = 178
	OpSLessThanEqual       OpCode = 179
	OpFOrdEqual            OpCode = 180
	OpFOrdNotEqual         OpCode = 182
	OpFOrdLessThan         OpCode = 184
	OpFOrdGreaterThan      OpCode = 186
	OpFOrdLessThanEqual    OpCode = 188
	OpFOrdGreaterThanEqual OpCode = 190

	OpShiftRightLogical    OpCode = 194
	OpShiftRightArithmetic OpCode = 195
	OpShiftLeftLogical     OpCode = 196
	OpBitwiseOr            OpCode = 197
	OpBitwiseXor           OpCode = 198
	OpBitwiseAnd           OpCode = 199
	OpNot                  OpCode = 200

	OpPhi            OpCode = 245
	OpLoopMerge      OpCode = 246
	OpSelectionMerge OpCode = 247
	OpLabel          OpCode = 248
	OpBranch         OpCode = 249
	OpBranchConditional OpCode = 250
	OpSwitch         OpCode = 251
	OpReturn         OpCode = 253
	OpReturnValue    OpCode = 254
	OpUnreachable    OpCode = 255

	OpGroupNonUniformElect          OpCode = 333
	OpGroupNonUniformBallot         OpCode = 339
	OpGroupNonUniformBroadcastFirst OpCode = 338
)

// Capability enumerates the SPIR-V capability literals this backend knows.
// Emit declares only CapabilityShader (kernels targeting Vulkan compute
// always need it); there is no option for requesting the others.
type Capability uint32

const (
	CapabilityShader        Capability = 1
	CapabilityFloat64       Capability = 10
	CapabilityInt64         Capability = 11
	CapabilityInt16         Capability = 22
	CapabilityGroupNonUniform           Capability = 61
	CapabilityGroupNonUniformBallot     Capability = 64
	CapabilityVariablePointers          Capability = 4442
	CapabilityGenericPointer            Capability = 38
)

// AddressingModel and MemoryModel select the OpMemoryModel operands; this
// backend always targets Vulkan-flavored Logical/GLSL450, the combination
// every compute shader dialect the rest of the pipeline can produce
// (no raw pointers reaching the emitter: lower_lea/lower_decay already ran).
type AddressingModel uint32

const (
	AddressingLogical         AddressingModel = 0
	AddressingPhysical32      AddressingModel = 1
	AddressingPhysical64      AddressingModel = 2
)

type MemoryModel uint32

const (
	MemoryModelSimple  MemoryModel = 0
	MemoryModelGLSL450 MemoryModel = 1
	MemoryModelOpenCL  MemoryModel = 2
)

// ExecutionModel selects the entry point's shader stage; Shady's
// EntryPoint annotation carries no stage name (spec.md §6), so the backend
// always emits GLCompute, the only stage a compute IR without
// vertex/fragment-specific builtins can target.
type ExecutionModel uint32

const (
	ExecutionModelGLCompute ExecutionModel = 5
)

// ExecutionMode literal values this backend emits.
type ExecutionMode uint32

const (
	ExecutionModeLocalSize ExecutionMode = 17
)

// StorageClass is derived from arena.AddressSpace by storageClass(); the
// mapping is many-to-one (Private and Subgroup both become Private, and any
// space not listed there becomes Generic).
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassWorkgroup       StorageClass = 4
	StorageClassCrossWorkgroup  StorageClass = 5
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
	StorageClassGeneric         StorageClass = 8
	StorageClassPushConstant    StorageClass = 9
	StorageClassStorageBuffer   StorageClass = 12
)

// Decoration literal values this backend emits via OpDecorate.
type Decoration uint32

const (
	DecorationBlock         Decoration = 2
	DecorationBuiltIn       Decoration = 11
	DecorationLocation      Decoration = 30
	DecorationDescriptorSet Decoration = 34
	DecorationBinding       Decoration = 33
)

// BuiltIn literal values recognized from an ir.AnnoBuiltin annotation's
// string payload.
var builtinNames = map[string]uint32{
	"GlobalInvocationId":   28,
	"LocalInvocationId":    27,
	"LocalInvocationIndex": 29,
	"WorkgroupId":          26,
	"NumWorkgroups":        24,
	"SubgroupId":           40,
	"SubgroupLocalInvocationId": 41,
	"NumSubgroups":         38,
}

// ExtInst literals from the GLSL.std.450 extended instruction set, covering
// the math unary/binary PrimOp family.
const (
	GLSLRound       uint32 = 1
	GLSLTrunc       uint32 = 3
	GLSLFAbs        uint32 = 4
	GLSLFSign       uint32 = 6
	GLSLFloor       uint32 = 8
	GLSLCeil        uint32 = 9
	GLSLFract       uint32 = 10
	GLSLSin         uint32 = 13
	GLSLCos         uint32 = 14
	GLSLTan         uint32 = 15
	GLSLPow         uint32 = 26
	GLSLExp         uint32 = 27
	GLSLLog         uint32 = 28
	GLSLSqrt        uint32 = 31
	GLSLInverseSqrt uint32 = 32
	GLSLFMin        uint32 = 37
	GLSLUMin        uint32 = 38
	GLSLSMin        uint32 = 39
	GLSLFMax        uint32 = 40
	GLSLUMax        uint32 = 41
	GLSLSMax        uint32 = 42
	GLSLFma         uint32 = 50
)
