package cfamily

import (
	"fmt"
	"strings"

	"github.com/TheJackiMonster/shady/ir"
)

// C11 targets plain ISO C with <stdint.h>/<stdbool.h>, the dialect every
// other dialect's TypeName/composite rendering falls back to.
type C11 struct{ base }

func NewC11() *C11 {
	return &C11{base{
		dialectName: "c11",
		overrides:   map[iselKey]ISelEntry{},
		ints:        stdIntTable(),
		floatName:   func(w int) string { return map[int]string{32: "float", 64: "double"}[w] },
		boolName:    "bool",
	}}
}

func (d *C11) Name() string { return d.dialectName }

func (d *C11) TypeName(t *ir.Node) (string, error) {
	return renderCLikeType(d, d.dialectName, t)
}

func (d *C11) Bitcast(expr string, from, to *ir.Node) string {
	toName, _ := d.TypeName(to)
	return fmt.Sprintf("__shady_bitcast_%s(%s)", strings.ReplaceAll(toName, " ", "_"), expr)
}

func (d *C11) EntryPointPrefix(fp *ir.FunctionPayload) string { return "" }

// renderCLikeType is the TypeName body shared by every dialect (CUDA and
// GLSL first try a native vector type for a PackType, and GLSL rejects raw
// pointer types, before falling back to this), grounded on the teacher's DeclName/type-name render split in
// ir/print.go's printType, generalized from the debug notation to valid C
// declarator text.
func renderCLikeType(d Dialect, dialectName string, t *ir.Node) (string, error) {
	inner := ir.Inner(t)
	if name, ok := scalarName(d, inner); ok {
		return name, nil
	}
	switch p := inner.Payload.(type) {
	case ir.UnitPayload, ir.NoRetPayload:
		return "void", nil
	case ir.PtrTypePayload:
		elem, err := d.TypeName(p.Pointee)
		if err != nil {
			return "", err
		}
		return elem + "*", nil
	case ir.ArrTypePayload:
		elem, err := d.TypeName(p.Elem)
		if err != nil {
			return "", err
		}
		if p.Size == nil {
			return "", unsupported(dialectName, "unsized array type outside a pointer")
		}
		return cDeclarator(elem, ir.Print(p.Size)), nil
	case ir.PackTypePayload:
		elem, err := d.TypeName(p.Elem)
		if err != nil {
			return "", err
		}
		return cDeclarator(elem, fmt.Sprintf("%d", p.Width)), nil
	case ir.RecordTypePayload:
		fields := make([]string, len(p.Members))
		for i, m := range p.Members {
			name, err := d.TypeName(m)
			if err != nil {
				return "", err
			}
			fieldName := fmt.Sprintf("f%d", i)
			if i < len(p.Names) && p.Names[i] != "" {
				fieldName = p.Names[i]
			}
			fields[i] = fmt.Sprintf("%s %s;", name, fieldName)
		}
		return fmt.Sprintf("struct { %s }", strings.Join(fields, " ")), nil
	case ir.NominalTypeRefPayload:
		return ir.DeclName(p.Decl), nil
	case ir.FnTypePayload:
		if len(p.Returns) > 1 {
			return "", unsupported(dialectName, "multi-value function pointer type")
		}
		ret := "void"
		if len(p.Returns) == 1 {
			var err error
			ret, err = d.TypeName(p.Returns[0])
			if err != nil {
				return "", err
			}
		}
		params := make([]string, len(p.Params))
		for i, pt := range p.Params {
			var err error
			params[i], err = d.TypeName(pt)
			if err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("%s (*)(%s)", ret, strings.Join(params, ", ")), nil
	default:
		return "", unsupported(dialectName, fmt.Sprintf("type kind %s", ir.KindOf(inner)))
	}
}

func scalarName(d Dialect, t *ir.Node) (string, bool) {
	type scalarNamer interface{ scalarName(*ir.Node) (string, bool) }
	if sn, ok := d.(scalarNamer); ok {
		return sn.scalarName(t)
	}
	return "", false
}
