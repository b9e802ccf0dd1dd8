// Package ir defines the Shady node universe: the tagged variants listed in
// the node taxonomy, the total typing function, and the
// Module/Annotation wrapper types. Every concrete node shape here implements
// arena.Payload, so it can be hash-consed by package arena; classification
// (IsType/IsValue/...) and typing live here because only ir knows what each
// tag means.
package ir

import "github.com/TheJackiMonster/shady/arena"

// Kind mirrors arena.Kind's underlying representation. It is a distinct
// defined type (not an alias) so ir can attach its own String method and
// classification helpers; convert with arena.Kind(k) at the few call sites
// that hand a kind to package arena.
type Kind arena.Kind

// AddressSpace re-exports arena.AddressSpace for the same reason: Config
// lives in arena, but most callers only ever think of themselves as using
// package ir.
type AddressSpace = arena.AddressSpace

const (
	Generic         = arena.Generic
	Private         = arena.Private
	Shared          = arena.Shared
	Subgroup        = arena.Subgroup
	Global          = arena.Global
	Function        = arena.Function
	Input           = arena.Input
	Output          = arena.Output
	Uniform         = arena.Uniform
	UniformConstant = arena.UniformConstant
	PushConstant    = arena.PushConstant
	External        = arena.External
	ProgramCode     = arena.ProgramCode
)

const (
	// Types
	KindNoRet Kind = iota + 1
	KindUnit
	KindBool
	KindInt
	KindFloat
	KindMask
	KindRecordType
	KindFnType
	KindBBType
	KindJoinPointType
	KindPtrType
	KindArrType
	KindPackType
	KindNominalTypeRef
	KindImageType
	KindSampledImageType
	KindSamplerType
	KindQualifiedType

	// Values
	KindParam
	KindIntLiteral
	KindFloatLiteral
	KindTrue
	KindFalse
	KindStringLiteral
	KindNullPtr
	KindComposite
	KindFill
	KindUndef
	KindFnAddr
	KindRefDecl
	KindTuple
	KindUnbound
	KindUntypedNumber

	// Instructions
	KindPrimOp
	KindCall
	KindStackAlloc
	KindLocalAlloc
	KindLoad
	KindStore
	KindPtrArrayElementOffset
	KindPtrCompositeElement
	KindCopyBytes
	KindFillBytes
	KindDebugPrintf
	KindComment
	KindPushStack
	KindPopStack
	KindGetStackPointer
	KindSetStackPointer
	KindIf
	KindMatch
	KindLoop
	KindControl
	KindBindIdentifiers

	// Terminators
	KindJump
	KindBranch
	KindSwitch
	KindJoinTerminator
	KindTailCall
	KindReturn
	KindMergeSelection
	KindMergeContinue
	KindMergeBreak
	KindUnreachable

	// Declarations
	KindFunction
	KindBasicBlock
	KindConstant
	KindGlobalVariable
	KindNominalType
)

// IsType reports whether kind classifies as a type node.
func IsType(k Kind) bool {
	return k >= KindNoRet && k <= KindQualifiedType
}

// IsValue reports whether kind classifies as a value node.
func IsValue(k Kind) bool {
	return k >= KindParam && k <= KindUntypedNumber
}

// IsInstruction reports whether kind classifies as a (non-terminator)
// instruction node, including the structured constructs.
func IsInstruction(k Kind) bool {
	return k >= KindPrimOp && k <= KindBindIdentifiers
}

// IsTerminator reports whether kind classifies as a terminator node.
func IsTerminator(k Kind) bool {
	return k >= KindJump && k <= KindUnreachable
}

// IsDeclaration reports whether kind classifies as a nominal declaration.
func IsDeclaration(k Kind) bool {
	return k >= KindFunction && k <= KindNominalType
}

var kindNames = map[Kind]string{
	KindNoRet: "noret", KindUnit: "unit", KindBool: "bool", KindInt: "int", KindFloat: "float",
	KindMask: "mask", KindRecordType: "record_type", KindFnType: "fn_type", KindBBType: "bb_type",
	KindJoinPointType: "join_point_type", KindPtrType: "ptr_type", KindArrType: "arr_type",
	KindPackType: "pack_type", KindNominalTypeRef: "nominal_type_ref", KindImageType: "image_type",
	KindSampledImageType: "sampled_image_type", KindSamplerType: "sampler_type",
	KindQualifiedType: "qualified_type",
	KindParam:         "param", KindIntLiteral: "int_literal", KindFloatLiteral: "float_literal",
	KindTrue: "true", KindFalse: "false", KindStringLiteral: "string_literal", KindNullPtr: "null_ptr",
	KindComposite: "composite", KindFill: "fill", KindUndef: "undef", KindFnAddr: "fn_addr",
	KindRefDecl: "ref_decl", KindTuple: "tuple", KindUnbound: "unbound", KindUntypedNumber: "untyped_number",
	KindPrimOp: "prim_op", KindCall: "call", KindStackAlloc: "stack_alloc", KindLocalAlloc: "local_alloc",
	KindLoad: "load", KindStore: "store", KindPtrArrayElementOffset: "ptr_array_element_offset",
	KindPtrCompositeElement: "ptr_composite_element", KindCopyBytes: "copy_bytes", KindFillBytes: "fill_bytes",
	KindDebugPrintf: "debug_printf", KindComment: "comment", KindPushStack: "push_stack",
	KindPopStack: "pop_stack", KindGetStackPointer: "get_stack_pointer", KindSetStackPointer: "set_stack_pointer",
	KindIf: "if", KindMatch: "match", KindLoop: "loop", KindControl: "control",
	KindBindIdentifiers: "bind_identifiers",
	KindJump:            "jump", KindBranch: "branch", KindSwitch: "switch", KindJoinTerminator: "join",
	KindTailCall: "tail_call", KindReturn: "return", KindMergeSelection: "merge_selection",
	KindMergeContinue: "merge_continue", KindMergeBreak: "merge_break", KindUnreachable: "unreachable",
	KindFunction: "function", KindBasicBlock: "basic_block", KindConstant: "constant",
	KindGlobalVariable: "global_variable", KindNominalType: "nominal_type",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown_kind"
}
