package cfamily

import (
	"fmt"

	"github.com/TheJackiMonster/shady/ir"
)

// ISPC targets Intel's SPMD compiler: scalar names are its own keywords
// (int8/int16/int32/int64, unsigned variants via "unsigned int8" etc.),
// "uniform"/"varying" qualifiers come from QualifiedType and are rendered
// by the emitter, not here, and intbits/floatbits intrinsics replace a
// bitcast-through-memcpy. LEA chains need scalarization on ISPC per a known
// compiler bug with chained subscripts on a varying pointer; binding.go's
// forcesLetBinding reports every LEA step as needing its own named
// intermediate on this dialect, but the emission driver does not consult
// it, so an LEA chain nested inside one expression is still rendered
// inline.
type ISPC struct{ base }

func NewISPC() *ISPC {
	return &ISPC{base{
		dialectName: "ispc",
		overrides:   map[iselKey]ISelEntry{},
		ints: map[int]map[bool]string{
			8:  {true: "int8", false: "unsigned int8"},
			16: {true: "int16", false: "unsigned int16"},
			32: {true: "int32", false: "unsigned int32"},
			64: {true: "int64", false: "unsigned int64"},
		},
		floatName: func(w int) string { return map[int]string{32: "float", 64: "double"}[w] },
		boolName:  "bool",
	}}
}

func (d *ISPC) Name() string { return d.dialectName }

func (d *ISPC) TypeName(t *ir.Node) (string, error) {
	return renderCLikeType(d, d.dialectName, t)
}

func (d *ISPC) Bitcast(expr string, from, to *ir.Node) string {
	switch {
	case isFloat(to) && !isFloat(from):
		return fmt.Sprintf("floatbits(%s)", expr)
	case !isFloat(to) && isFloat(from):
		return fmt.Sprintf("intbits(%s)", expr)
	default:
		toName, _ := d.TypeName(to)
		return fmt.Sprintf("(%s)(%s)", toName, expr)
	}
}

func (d *ISPC) EntryPointPrefix(fp *ir.FunctionPayload) string {
	if ir.HasAnnotation(fp.Annotations, ir.AnnoEntryPoint) {
		return "export "
	}
	return ""
}

// needsScalarization reports whether t is a LEA result pointer on this
// dialect's known-buggy chained-subscript path.
func (d *ISPC) needsScalarization(t *ir.Node) bool {
	_, ok := ir.Inner(t).Payload.(ir.PtrTypePayload)
	return ok
}
