package cfamily

import "github.com/TheJackiMonster/shady/ir"

// BindingKind classifies how a value's emission is anchored, per spec.md
// §4.6: inlined at every use site, assigned once to a function-local, or
// lifted to a translation-unit-level declaration.
type BindingKind int

const (
	NoBinding BindingKind = iota
	LetBinding
	GlobalBinding
)

// forcesLetBinding reports whether n's side effects (or, on a dialect with
// a known chained-subscript bug, its own node kind) mean it must be
// assigned to a local rather than inlined at its use site. Every value
// actually named by a BindIdentifiers binding already gets a LetBinding
// regardless of this check; forcesLetBinding only matters for a value that
// would otherwise be inlined as a bare sub-expression.
func forcesLetBinding(n *ir.Node, dialect Dialect) bool {
	switch n.Payload.(type) {
	case ir.LoadPayload, ir.StorePayload, ir.CallPayload, ir.StackAllocPayload,
		ir.LocalAllocPayload, ir.PushStackPayload, ir.PopStackPayload,
		ir.GetStackPointerPayload, ir.SetStackPointerPayload, ir.CopyBytesPayload,
		ir.FillBytesPayload, ir.DebugPrintfPayload:
		return true
	case ir.PtrArrayElementOffsetPayload, ir.PtrCompositeElement:
		if ispc, ok := dialect.(*ISPC); ok {
			return ispc.needsScalarization(n.Type)
		}
		return false
	default:
		return false
	}
}
