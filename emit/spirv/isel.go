package spirv

import "github.com/TheJackiMonster/shady/ir"

// scalarClass mirrors emit/cfamily/dialect.go's axis for keying an ISel
// table: SPIR-V, like every C-family dialect, picks a different opcode for
// the same PrimOp depending on whether its operand type is signed integer,
// unsigned integer, float or bool.
type scalarClass int

const (
	classSignedInt scalarClass = iota
	classUnsignedInt
	classFloat
	classBool
)

func classify(t *ir.Node) scalarClass {
	inner := t
	if ir.KindOf(t) == ir.KindQualifiedType {
		inner = ir.Inner(t)
	}
	switch p := inner.Payload.(type) {
	case ir.FloatPayload:
		return classFloat
	case ir.BoolPayload:
		return classBool
	case ir.IntPayload:
		if p.Signed {
			return classSignedInt
		}
		return classUnsignedInt
	case ir.PackTypePayload:
		return classify(p.Elem)
	default:
		return classUnsignedInt
	}
}

type iselKey struct {
	op    ir.PrimOpCode
	class scalarClass
}

// binaryOpcodes is the default PrimOp -> SPIR-V opcode table for every
// arithmetic, comparison and bitwise op whose typing rule (typing.go's
// typePrimOp) gives it exactly two operands of the same type producing a
// value of the same or a boolean type, mirroring emit/cfamily/isel.go's
// defaultISel table one opcode at a time instead of one infix operator.
var binaryOpcodes = map[iselKey]OpCode{
	{ir.OpAdd, classSignedInt}:   OpIAdd,
	{ir.OpAdd, classUnsignedInt}: OpIAdd,
	{ir.OpAdd, classFloat}:       OpFAdd,
	{ir.OpSub, classSignedInt}:   OpISub,
	{ir.OpSub, classUnsignedInt}: OpISub,
	{ir.OpSub, classFloat}:       OpFSub,
	{ir.OpMul, classSignedInt}:   OpIMul,
	{ir.OpMul, classUnsignedInt}: OpIMul,
	{ir.OpMul, classFloat}:       OpFMul,
	{ir.OpDiv, classSignedInt}:   OpSDiv,
	{ir.OpDiv, classUnsignedInt}: OpUDiv,
	{ir.OpDiv, classFloat}:       OpFDiv,
	{ir.OpMod, classSignedInt}:   OpSMod,
	{ir.OpMod, classUnsignedInt}: OpUMod,
	{ir.OpMod, classFloat}:       OpFMod,

	{ir.OpEq, classSignedInt}:    OpIEqual,
	{ir.OpEq, classUnsignedInt}: OpIEqual,
	{ir.OpEq, classFloat}:       OpFOrdEqual,
	{ir.OpEq, classBool}:        OpLogicalEqual,
	{ir.OpNeq, classSignedInt}:   OpINotEqual,
	{ir.OpNeq, classUnsignedInt}: OpINotEqual,
	{ir.OpNeq, classFloat}:       OpFOrdNotEqual,
	{ir.OpNeq, classBool}:        OpLogicalNotEqual,
	{ir.OpLt, classSignedInt}:    OpSLessThan,
	{ir.OpLt, classUnsignedInt}:  OpULessThan,
	{ir.OpLt, classFloat}:        OpFOrdLessThan,
	{ir.OpLeq, classSignedInt}:   OpSLessThanEqual,
	{ir.OpLeq, classUnsignedInt}: OpULessThanEqual,
	{ir.OpLeq, classFloat}:       OpFOrdLessThanEqual,
	{ir.OpGt, classSignedInt}:    OpSGreaterThan,
	{ir.OpGt, classUnsignedInt}:  OpUGreaterThan,
	{ir.OpGt, classFloat}:        OpFOrdGreaterThan,
	{ir.OpGeq, classSignedInt}:   OpSGreaterThanEqual,
	{ir.OpGeq, classUnsignedInt}: OpUGreaterThanEqual,
	{ir.OpGeq, classFloat}:       OpFOrdGreaterThanEqual,

	{ir.OpAnd, classSignedInt}:   OpBitwiseAnd,
	{ir.OpAnd, classUnsignedInt}: OpBitwiseAnd,
	{ir.OpAnd, classBool}:        OpLogicalAnd,
	{ir.OpOr, classSignedInt}:    OpBitwiseOr,
	{ir.OpOr, classUnsignedInt}:  OpBitwiseOr,
	{ir.OpOr, classBool}:         OpLogicalOr,
	{ir.OpXor, classSignedInt}:   OpBitwiseXor,
	{ir.OpXor, classUnsignedInt}: OpBitwiseXor,
	{ir.OpShl, classSignedInt}:   OpShiftLeftLogical,
	{ir.OpShl, classUnsignedInt}: OpShiftLeftLogical,
	{ir.OpShr, classSignedInt}:   OpShiftRightArithmetic,
	{ir.OpShr, classUnsignedInt}: OpShiftRightLogical,
}

var unaryOpcodes = map[iselKey]OpCode{
	{ir.OpNot, classSignedInt}:   OpNot,
	{ir.OpNot, classUnsignedInt}: OpNot,
	{ir.OpNot, classBool}:        OpLogicalNot,
}

// glslExtOpcodes is the GLSL.std.450 extended-instruction-set literal for
// every math unary/binary PrimOp, keyed the same way as binaryOpcodes/
// unaryOpcodes but yielding an ExtInst literal instead of a core opcode.
var glslExtOpcodes = map[iselKey]uint32{
	{ir.OpAbs, classSignedInt}:   5, // SAbs
	{ir.OpAbs, classFloat}:       GLSLFAbs,
	{ir.OpSign, classSignedInt}:  7,
	{ir.OpSign, classFloat}:      GLSLFSign,
	{ir.OpFloor, classFloat}:     GLSLFloor,
	{ir.OpCeil, classFloat}:      GLSLCeil,
	{ir.OpRound, classFloat}:     GLSLRound,
	{ir.OpFract, classFloat}:     GLSLFract,
	{ir.OpSqrt, classFloat}:      GLSLSqrt,
	{ir.OpRsqrt, classFloat}:     GLSLInverseSqrt,
	{ir.OpExp, classFloat}:       GLSLExp,
	{ir.OpLog, classFloat}:       GLSLLog,
	{ir.OpSin, classFloat}:       GLSLSin,
	{ir.OpCos, classFloat}:       GLSLCos,
	{ir.OpTan, classFloat}:       GLSLTan,
	{ir.OpPow, classFloat}:       GLSLPow,
	{ir.OpFma, classFloat}:       GLSLFma,
	{ir.OpMin, classSignedInt}:   GLSLSMin,
	{ir.OpMin, classUnsignedInt}: GLSLUMin,
	{ir.OpMin, classFloat}:       GLSLFMin,
	{ir.OpMax, classSignedInt}:   GLSLSMax,
	{ir.OpMax, classUnsignedInt}: GLSLUMax,
	{ir.OpMax, classFloat}:       GLSLFMax,
}
