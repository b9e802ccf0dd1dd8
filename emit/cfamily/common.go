package cfamily

import (
	"fmt"

	"github.com/TheJackiMonster/shady/ir"
)

// base holds the ISel-override table lookup and the scalar-name table every
// dialect shares; each dialect embeds it and only supplies what actually
// differs (vector spelling, pointer syntax, entry-point decoration).
type base struct {
	dialectName string
	overrides   map[iselKey]ISelEntry
	ints        map[int]map[bool]string // width -> signed -> name
	floatName   func(width int) string
	boolName    string
}

func (b *base) ISel(op ir.PrimOpCode, t *ir.Node) (ISelEntry, bool) {
	if e, ok := lookupISel(b.overrides, op, t); ok {
		return e, true
	}
	return lookupISel(defaultISel, op, t)
}

func (b *base) scalarName(t *ir.Node) (string, bool) {
	switch p := ir.Inner(t).Payload.(type) {
	case ir.BoolPayload:
		return b.boolName, true
	case ir.IntPayload:
		if byWidth, ok := b.ints[p.Width]; ok {
			if name, ok := byWidth[p.Signed]; ok {
				return name, true
			}
		}
		return "", false
	case ir.FloatPayload:
		return b.floatName(p.Width), true
	}
	return "", false
}

// cDeclarator appends a C-style fixed-size array declarator suffix to
// elemName, the fallback every dialect uses for a PackType or ArrType it has
// no native vector/array sugar for.
func cDeclarator(elemName string, arraySize string) string {
	if arraySize == "" {
		return elemName
	}
	return fmt.Sprintf("%s[%s]", elemName, arraySize)
}

func stdIntTable() map[int]map[bool]string {
	return map[int]map[bool]string{
		8:  {true: "int8_t", false: "uint8_t"},
		16: {true: "int16_t", false: "uint16_t"},
		32: {true: "int32_t", false: "uint32_t"},
		64: {true: "int64_t", false: "uint64_t"},
	}
}
