// Package cfamily emits a self-contained C-family translation unit (C11,
// CUDA, GLSL or ISPC, selected by CompilerConfig.Dialect) from a Module that
// has been through the full lowering pipeline. Grounded on
// other_examples/.../gogpu-naga__hlsl-functions.go for the per-dialect
// intrinsic-name table and .../malphas-lang-malphas-lang__internal-codegen-
// mir2llvm-generator.go for the let-binding-vs-inline emission decision.
package cfamily

import (
	"fmt"

	"github.com/TheJackiMonster/shady/ir"
)

// OpStyle is how a PrimOp renders in this dialect's surface syntax.
type OpStyle int

const (
	Infix OpStyle = iota
	Prefix
	Call
)

// ISelEntry is one dialect's chosen rendering for a PrimOp: how to combine
// its operands (Infix "a OP b", Prefix "OP a", Call "name(args...)") and the
// literal operator or function name to use.
type ISelEntry struct {
	Style  OpStyle
	Symbol string
}

// Dialect is the per-backend seam emit.go calls into for everything that
// varies between C11, CUDA, GLSL and ISPC: type spelling, operator
// selection, bitcast strategy, and entry-point decoration.
type Dialect interface {
	Name() string

	// TypeName renders t as this dialect's spelling of a scalar, vector or
	// named type. Returns an error for a type the dialect cannot express at
	// all (e.g. GLSL has no function pointer type).
	TypeName(t *ir.Node) (string, error)

	// ISel resolves op against operandType's scalar kind (signed int,
	// unsigned int, float, bool), falling back to the dialect's own
	// overrides before the shared default table in isel.go.
	ISel(op ir.PrimOpCode, operandType *ir.Node) (ISelEntry, bool)

	// Bitcast renders a same-width reinterpret of exprType to the value
	// expr holds, to targetType.
	Bitcast(expr string, exprType, targetType *ir.Node) string

	// EntryPointPrefix renders the keyword(s)/attribute that mark fn as a
	// kernel/shader entry point in this dialect's syntax (e.g. CUDA's
	// "__global__", GLSL's implicit main(), ISPC's "export").
	EntryPointPrefix(fp *ir.FunctionPayload) string
}

func isSigned(t *ir.Node) bool {
	p, ok := ir.Inner(t).Payload.(ir.IntPayload)
	return ok && p.Signed
}

func isFloat(t *ir.Node) bool {
	_, ok := ir.Inner(t).Payload.(ir.FloatPayload)
	return ok
}

func isBool(t *ir.Node) bool {
	_, ok := ir.Inner(t).Payload.(ir.BoolPayload)
	return ok
}

// scalarClass is the axis every dialect's ISel override table is keyed on
// in addition to the PrimOpCode itself.
type scalarClass int

const (
	classSignedInt scalarClass = iota
	classUnsignedInt
	classFloat
	classBool
)

func classify(t *ir.Node) scalarClass {
	switch {
	case isFloat(t):
		return classFloat
	case isBool(t):
		return classBool
	case isSigned(t):
		return classSignedInt
	default:
		return classUnsignedInt
	}
}

type iselKey struct {
	op    ir.PrimOpCode
	class scalarClass
}

func lookupISel(table map[iselKey]ISelEntry, op ir.PrimOpCode, t *ir.Node) (ISelEntry, bool) {
	e, ok := table[iselKey{op: op, class: classify(t)}]
	return e, ok
}

func unsupported(dialect, what string) error {
	return fmt.Errorf("emit/cfamily: %s: %s not supported", dialect, what)
}
