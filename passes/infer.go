package passes

import (
	"github.com/TheJackiMonster/shady/internal/diag"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// Infer applies the total typing function to every instruction and
// terminator that does not already carry a cached type (literals and Params
// are typed at construction time), the same
// two-pass shape go/types.checker uses — first establish every declaration's
// header/signature, then derive the type of every expression in a body
// against that context — except here "two passes" is "two-phase nominal
// rewrite" rather than a separate deferred-body queue, since passes.Bind
// already guaranteed every reference resolves to an already-declared header.
func Infer(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	r := rewrite.New(src, dst, inferProcess(ctx))
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

func inferProcess(ctx *Context) rewrite.ProcessFunc {
	return func(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
		out := DefaultRewrite(r, n)
		if out == nil || out.Type != nil {
			return out
		}
		if !ir.IsInstruction(ir.KindOf(out)) && !ir.IsTerminator(ir.KindOf(out)) {
			return out
		}
		t, err := ir.TypeOf(r.DstModule.Arena, out)
		if err != nil {
			ctx.Errors.Add(diag.KindPass, "infer", ir.Print(out), err)
			return out
		}
		out.Type = t
		return out
	}
}
