package cfamily

import (
	"fmt"

	"github.com/TheJackiMonster/shady/ir"
)

// GLSL targets core-profile GLSL (version GLSLVersion from CompilerConfig):
// no 8/16/64-bit integers (narrowed to 32-bit, the simplification every
// shipped CompilerConfig in this module accepts since the SPIR-V path is
// what actually carries exact-width integers through to Vulkan), real
// vecN/ivecN/uvecN/bvecN vector types for width 2-4, and built-in
// bitcast intrinsics instead of a memcpy-through-local.
type GLSL struct {
	base
	Version int
}

func NewGLSL(version int) *GLSL {
	return &GLSL{
		base: base{
			dialectName: "glsl",
			overrides: map[iselKey]ISelEntry{
				{ir.OpMod, classFloat}: {Call, "mod"},
			},
			ints: map[int]map[bool]string{
				8:  {true: "int", false: "uint"},
				16: {true: "int", false: "uint"},
				32: {true: "int", false: "uint"},
				64: {true: "int", false: "uint"},
			},
			floatName: func(w int) string {
				if w == 64 {
					return "double"
				}
				return "float"
			},
			boolName: "bool",
		},
		Version: version,
	}
}

func (d *GLSL) Name() string { return d.dialectName }

var glslVectorPrefix = map[string]string{"float": "", "int": "i", "uint": "u", "bool": "b", "double": "d"}

func (d *GLSL) TypeName(t *ir.Node) (string, error) {
	inner := ir.Inner(t)
	if p, ok := inner.Payload.(ir.PackTypePayload); ok && p.Width >= 2 && p.Width <= 4 {
		elem, err := d.TypeName(p.Elem)
		if err != nil {
			return "", err
		}
		prefix, ok := glslVectorPrefix[elem]
		if !ok {
			return "", unsupported(d.dialectName, fmt.Sprintf("vector of %s", elem))
		}
		return fmt.Sprintf("%svec%d", prefix, p.Width), nil
	}
	if _, ok := inner.Payload.(ir.PtrTypePayload); ok {
		return "", unsupported(d.dialectName, "raw pointer type")
	}
	return renderCLikeType(d, d.dialectName, t)
}

func (d *GLSL) Bitcast(expr string, from, to *ir.Node) string {
	switch {
	case isFloat(to) && !isFloat(from):
		return fmt.Sprintf("intBitsToFloat(%s)", expr)
	case !isFloat(to) && isFloat(from):
		if isSigned(to) {
			return fmt.Sprintf("floatBitsToInt(%s)", expr)
		}
		return fmt.Sprintf("floatBitsToUint(%s)", expr)
	default:
		toName, _ := d.TypeName(to)
		return fmt.Sprintf("%s(%s)", toName, expr)
	}
}

func (d *GLSL) EntryPointPrefix(fp *ir.FunctionPayload) string { return "" }
