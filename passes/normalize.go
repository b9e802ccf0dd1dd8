package passes

import (
	"math"
	"strconv"
	"strings"

	"github.com/TheJackiMonster/shady/internal/diag"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// Normalize removes front-end sugar that
// survived Bind. Two shapes are handled:
//
//   - UntypedNumber literals are resolved to a concrete IntLiteral or
//     FloatLiteral. Full bidirectional literal inference (propagating an
//     expected type down from the literal's use site) is future work; for
//     now a literal containing "." or an exponent becomes a 32-bit float,
//     otherwise a 32-bit signed int, matching the defaulting rule most
//     untyped-literal front ends fall back to when no context is available.
//   - A single-element Tuple unwraps to its sole element, since a
//     one-element multiple-return is never meaningfully different from a
//     plain value and every downstream pass is simpler if it never has to
//     special-case that.
func Normalize(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	r := rewrite.New(src, dst, normalizeProcess(ctx))
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

func normalizeProcess(ctx *Context) rewrite.ProcessFunc {
	return func(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
		switch ir.KindOf(n) {
		case ir.KindUntypedNumber:
			return normalizeNumber(ctx, r, n)
		case ir.KindTuple:
			p := n.Payload.(ir.TuplePayload)
			if len(p.Elems) == 1 {
				return rewrite.RewriteNode(r, p.Elems[0])
			}
			return DefaultRewrite(r, n)
		default:
			return DefaultRewrite(r, n)
		}
	}
}

func normalizeNumber(ctx *Context, r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	dst := r.DstModule.Arena
	text := n.Payload.(ir.UntypedNumberPayload).Text
	if strings.ContainsAny(text, ".eE") && !strings.HasPrefix(text, "0x") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			ctx.Errors.Addf(diag.KindPass, "normalize", text, "invalid numeric literal %q: %v", text, err)
			return ir.NewFloatLiteral(dst, 32, 0)
		}
		return ir.NewFloatLiteral(dst, 32, uint64(math.Float32bits(float32(f))))
	}
	v, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		ctx.Errors.Addf(diag.KindPass, "normalize", text, "invalid numeric literal %q: %v", text, err)
		return ir.NewIntLiteral(dst, 32, true, 0)
	}
	return ir.NewIntLiteral(dst, 32, true, uint64(v))
}
