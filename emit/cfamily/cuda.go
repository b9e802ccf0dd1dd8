package cfamily

import (
	"fmt"
	"strings"

	"github.com/TheJackiMonster/shady/ir"
)

// CUDA targets nvcc's C++-flavored dialect: same scalar names as C11, plus
// native float2/float3/float4/int4-style vector types for the pack widths
// CUDA actually defines, and __global__/__device__ entry-point decoration.
type CUDA struct{ base }

func NewCUDA() *CUDA {
	return &CUDA{base{
		dialectName: "cuda",
		overrides: map[iselKey]ISelEntry{
			{ir.OpSqrt, classFloat}: {Call, "__fsqrt_rn"},
			{ir.OpRsqrt, classFloat}: {Call, "rsqrtf"},
		},
		ints:      stdIntTable(),
		floatName: func(w int) string { return map[int]string{32: "float", 64: "double"}[w] },
		boolName:  "bool",
	}}
}

func (d *CUDA) Name() string { return d.dialectName }

var cudaVectorBases = map[string]bool{"float": true, "int32_t": true, "uint32_t": true}

func (d *CUDA) TypeName(t *ir.Node) (string, error) {
	inner := ir.Inner(t)
	if p, ok := inner.Payload.(ir.PackTypePayload); ok && p.Width >= 2 && p.Width <= 4 {
		elem, err := d.TypeName(p.Elem)
		if err == nil && cudaVectorBases[elem] {
			short := map[string]string{"float": "float", "int32_t": "int", "uint32_t": "uint"}[elem]
			return fmt.Sprintf("%s%d", short, p.Width), nil
		}
	}
	return renderCLikeType(d, d.dialectName, t)
}

func (d *CUDA) Bitcast(expr string, from, to *ir.Node) string {
	toName, _ := d.TypeName(to)
	return fmt.Sprintf("__shady_bitcast_%s(%s)", strings.ReplaceAll(toName, " ", "_"), expr)
}

func (d *CUDA) EntryPointPrefix(fp *ir.FunctionPayload) string {
	if ir.HasAnnotation(fp.Annotations, ir.AnnoEntryPoint) {
		return "__global__ "
	}
	return "__device__ "
}
