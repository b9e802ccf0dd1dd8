package spirv

import (
	"fmt"

	"github.com/TheJackiMonster/shady/ir"
)

// primOp renders a PrimOp node as zero or more SPIR-V instructions,
// returning the id of its result. Every op the isel tables cover
// (arithmetic, comparison, bitwise, unary/binary math) goes through a
// one-opcode or one-ExtInst-literal lookup keyed on its first operand's
// scalarClass, mirroring emit/cfamily/primop.go's dispatch structure one
// instruction at a time instead of one infix operator string. Everything
// isel doesn't cover (conversions, composite manipulation, extended
// arithmetic, subgroup ops) is hand-written below, exactly where
// emit/cfamily also hand-writes it.
func (fe *funcEmitter) primOp(n *ir.Node, p ir.PrimOpPayload) (uint32, error) {
	resultType := fe.be.mustTypeID(n.Type)

	if len(p.Operands) == 2 {
		if op, ok := binaryOpcodes[iselKey{p.Op, classify(p.Operands[0].Type)}]; ok {
			a, err := fe.expr(p.Operands[0])
			if err != nil {
				return 0, err
			}
			b, err := fe.expr(p.Operands[1])
			if err != nil {
				return 0, err
			}
			id := fe.newID()
			emit(&fe.cur, op, resultType, id, a, b)
			fe.valueID[n] = id
			return id, nil
		}
		if lit, ok := glslExtOpcodes[iselKey{p.Op, classify(p.Operands[0].Type)}]; ok && mathBinary[p.Op] {
			return fe.glslExtInst(n, lit, p.Operands)
		}
	}
	if len(p.Operands) == 1 {
		if op, ok := unaryOpcodes[iselKey{p.Op, classify(p.Operands[0].Type)}]; ok {
			a, err := fe.expr(p.Operands[0])
			if err != nil {
				return 0, err
			}
			id := fe.newID()
			emit(&fe.cur, op, resultType, id, a)
			fe.valueID[n] = id
			return id, nil
		}
		if lit, ok := glslExtOpcodes[iselKey{p.Op, classify(p.Operands[0].Type)}]; ok {
			return fe.glslExtInst(n, lit, p.Operands)
		}
	}

	switch p.Op {
	case ir.OpFma:
		return fe.glslExtInst(n, GLSLFma, p.Operands)
	case ir.OpConvert:
		return fe.convert(n, p)
	case ir.OpReinterpret:
		return fe.reinterpret(n, p)
	case ir.OpSelect:
		return fe.select3(n, p)
	case ir.OpExtract:
		return fe.extract(n, p)
	case ir.OpInsert:
		return fe.insert(n, p)
	case ir.OpShuffle:
		return fe.shuffle(n, p)
	case ir.OpAddCarry, ir.OpSubBorrow, ir.OpMulExtended:
		return fe.extendedArith(n, p)
	case ir.OpStackAllocSize:
		id := fe.newID()
		emit(&fe.cur, OpUndef, resultType, id) // stack-size introspection has no SPIR-V counterpart without a logical-addressing escape hatch
		fe.valueID[n] = id
		return id, nil
	case ir.OpSubgroupElect:
		boolID := fe.be.mustTypeID(ir.UniformType(fe.be.module.Arena, ir.BoolType(fe.be.module.Arena)))
		subgroupScope, err := fe.constUint(3) // Scope Subgroup
		if err != nil {
			return 0, err
		}
		id := fe.newID()
		emit(&fe.cur, OpGroupNonUniformElect, boolID, id, subgroupScope)
		fe.valueID[n] = id
		return id, nil
	case ir.OpSubgroupBallot:
		v, err := fe.expr(p.Operands[0])
		if err != nil {
			return 0, err
		}
		subgroupScope, err := fe.constUint(3)
		if err != nil {
			return 0, err
		}
		id := fe.newID()
		emit(&fe.cur, OpGroupNonUniformBallot, resultType, id, subgroupScope, v)
		fe.valueID[n] = id
		return id, nil
	case ir.OpSubgroupBroadcastFirst:
		v, err := fe.expr(p.Operands[0])
		if err != nil {
			return 0, err
		}
		subgroupScope, err := fe.constUint(3)
		if err != nil {
			return 0, err
		}
		id := fe.newID()
		emit(&fe.cur, OpGroupNonUniformBroadcastFirst, resultType, id, subgroupScope, v)
		fe.valueID[n] = id
		return id, nil
	default:
		return 0, fmt.Errorf("emit/spirv: prim op %s not supported", p.Op)
	}
}

var mathBinary = map[ir.PrimOpCode]bool{ir.OpMin: true, ir.OpMax: true, ir.OpPow: true}

// constUint emits (or fetches) a uint32 scalar literal used as a Scope/
// MemorySemantics operand, which SPIR-V's group ops always take as a
// compile-time constant rather than a literal operand word.
func (fe *funcEmitter) constUint(v uint32) (uint32, error) {
	n := ir.NewIntLiteral(fe.be.module.Arena, 32, false, uint64(v))
	return fe.be.cc.constID(n)
}

func (fe *funcEmitter) glslExtInst(n *ir.Node, literal uint32, operands []*ir.Node) (uint32, error) {
	args := make([]uint32, len(operands))
	for i, o := range operands {
		id, err := fe.expr(o)
		if err != nil {
			return 0, err
		}
		args[i] = id
	}
	id := fe.newID()
	operandWords := append([]uint32{fe.be.mustTypeID(n.Type), id, fe.be.glslExtID, literal}, args...)
	emit(&fe.cur, OpExtInst, operandWords...)
	fe.valueID[n] = id
	return id, nil
}

func (fe *funcEmitter) convert(n *ir.Node, p ir.PrimOpPayload) (uint32, error) {
	v, err := fe.expr(p.Operands[0])
	if err != nil {
		return 0, err
	}
	srcClass := classify(p.Operands[0].Type)
	dstClass := classify(p.TypeArgs[0])
	var op OpCode
	switch {
	case srcClass == classFloat && (dstClass == classSignedInt):
		op = OpConvertFToS
	case srcClass == classFloat && dstClass == classUnsignedInt:
		op = OpConvertFToU
	case srcClass == classSignedInt && dstClass == classFloat:
		op = OpConvertSToF
	case srcClass == classUnsignedInt && dstClass == classFloat:
		op = OpConvertUToF
	case srcClass == classFloat && dstClass == classFloat:
		op = OpFConvert
	case srcClass == classSignedInt && (dstClass == classSignedInt || dstClass == classUnsignedInt):
		op = OpSConvert
	default:
		op = OpUConvert
	}
	resultType := fe.be.mustTypeID(n.Type)
	id := fe.newID()
	emit(&fe.cur, op, resultType, id, v)
	fe.valueID[n] = id
	return id, nil
}

func (fe *funcEmitter) reinterpret(n *ir.Node, p ir.PrimOpPayload) (uint32, error) {
	v, err := fe.expr(p.Operands[0])
	if err != nil {
		return 0, err
	}
	resultType := fe.be.mustTypeID(n.Type)
	id := fe.newID()
	emit(&fe.cur, OpBitcast, resultType, id, v)
	fe.valueID[n] = id
	return id, nil
}

func (fe *funcEmitter) select3(n *ir.Node, p ir.PrimOpPayload) (uint32, error) {
	cond, err := fe.expr(p.Operands[0])
	if err != nil {
		return 0, err
	}
	a, err := fe.expr(p.Operands[1])
	if err != nil {
		return 0, err
	}
	b, err := fe.expr(p.Operands[2])
	if err != nil {
		return 0, err
	}
	resultType := fe.be.mustTypeID(n.Type)
	id := fe.newID()
	emit(&fe.cur, OpSelect, resultType, id, cond, a, b)
	fe.valueID[n] = id
	return id, nil
}

func (fe *funcEmitter) extract(n *ir.Node, p ir.PrimOpPayload) (uint32, error) {
	composite, err := fe.expr(p.Operands[0])
	if err != nil {
		return 0, err
	}
	resultType := fe.be.mustTypeID(n.Type)
	if idx, ok := constIntIndex(p.Operands[1]); ok {
		id := fe.newID()
		emit(&fe.cur, OpCompositeExtract, resultType, id, composite, uint32(idx))
		fe.valueID[n] = id
		return id, nil
	}
	// A dynamic index into an in-register composite has no direct
	// CompositeExtract form; lower_decay/the frontend normally route this
	// through a pointer (PtrCompositeElement+Load) instead, so this path is
	// only hit for a value the verifier would already have rejected.
	return 0, fmt.Errorf("emit/spirv: extract with a non-constant index requires addressable memory")
}

func (fe *funcEmitter) insert(n *ir.Node, p ir.PrimOpPayload) (uint32, error) {
	composite, err := fe.expr(p.Operands[0])
	if err != nil {
		return 0, err
	}
	idx, ok := constIntIndex(p.Operands[1])
	if !ok {
		return 0, fmt.Errorf("emit/spirv: insert with a non-constant index requires addressable memory")
	}
	newVal, err := fe.expr(p.Operands[2])
	if err != nil {
		return 0, err
	}
	resultType := fe.be.mustTypeID(n.Type)
	id := fe.newID()
	emit(&fe.cur, OpCompositeInsert, resultType, id, newVal, composite, uint32(idx))
	fe.valueID[n] = id
	return id, nil
}

func (fe *funcEmitter) shuffle(n *ir.Node, p ir.PrimOpPayload) (uint32, error) {
	a, err := fe.expr(p.Operands[0])
	if err != nil {
		return 0, err
	}
	b, err := fe.expr(p.Operands[1])
	if err != nil {
		return 0, err
	}
	indices := make([]uint32, len(p.Operands)-2)
	for i, idxNode := range p.Operands[2:] {
		idx, ok := constIntIndex(idxNode)
		if !ok {
			return 0, fmt.Errorf("emit/spirv: shuffle with a non-constant lane index")
		}
		indices[i] = uint32(idx)
	}
	resultType := fe.be.mustTypeID(n.Type)
	id := fe.newID()
	emit(&fe.cur, OpVectorShuffle, append([]uint32{resultType, id, a, b}, indices...)...)
	fe.valueID[n] = id
	return id, nil
}

func (fe *funcEmitter) extendedArith(n *ir.Node, p ir.PrimOpPayload) (uint32, error) {
	a, err := fe.expr(p.Operands[0])
	if err != nil {
		return 0, err
	}
	b, err := fe.expr(p.Operands[1])
	if err != nil {
		return 0, err
	}
	op := map[ir.PrimOpCode]OpCode{
		ir.OpAddCarry:    OpIAddCarry,
		ir.OpSubBorrow:   OpISubBorrow,
		ir.OpMulExtended: OpUMulExtended,
	}[p.Op]
	if p.Op == ir.OpMulExtended && classify(p.Operands[0].Type) == classSignedInt {
		op = OpSMulExtended
	}
	resultType := fe.be.mustTypeID(n.Type)
	id := fe.newID()
	emit(&fe.cur, op, resultType, id, a, b)
	fe.valueID[n] = id
	return id, nil
}

// constIntIndex reports the constant integer value of n, if n is a plain
// IntLiteral (the only shape the Extract/Insert/Shuffle indices in a fully
// lowered module ever take).
func constIntIndex(n *ir.Node) (int, bool) {
	il, ok := n.Payload.(ir.IntLiteralPayload)
	if !ok {
		return 0, false
	}
	return int(il.Value), true
}
