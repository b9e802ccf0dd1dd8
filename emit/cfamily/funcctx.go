package cfamily

import (
	"fmt"
	"strings"

	"github.com/TheJackiMonster/shady/ir"
)

// funcCtx carries the per-function state of the emission driver: the C
// identifier assigned to every Param/let-bound value node, the labels
// synthesized for the plain Jump/Branch/Switch residue restructurize could
// not recover into an If/Match/Loop/Control, and the locals that residue
// needs hoisted to the top of the function (a goto may jump over their
// first assignment, so they can't be declared inline the way a BindIdentifiers
// name can).
type funcCtx struct {
	e   *emitter
	out *strings.Builder

	names map[*ir.Node]string
	used  map[string]bool
	tmp   int

	labelSeq   int
	labels     map[*ir.Node]string
	labelOrder []*ir.Node
	localDecls []localDecl
	seen       map[*ir.Node]bool
	done       map[*ir.Node]bool
}

type localDecl struct {
	node *ir.Node
	typ  *ir.Node
	name string
}

// mergeCtx is threaded down through emitChain/emitTerminator so a
// MergeSelection/MergeContinue/MergeBreak/Join reached deep inside a
// structured construct's arm knows which locals to assign and, for a loop,
// that a native continue/break is correct (nesting an If inside a Loop's
// body still lets C's own continue/break see through the if, exactly the
// semantics MergeContinue/MergeBreak need).
type mergeCtx struct {
	tailParams []*ir.Node // MergeSelection's or MergeBreak's assignment target
	loopParams []*ir.Node // MergeContinue's assignment target; nil outside a loop arm
	controls   []controlFrame
}

type controlFrame struct {
	joinPoint  *ir.Node
	label      string
	tailParams []*ir.Node
}

func newFuncCtx(e *emitter, out *strings.Builder) *funcCtx {
	return &funcCtx{
		e: e, out: out,
		names:  map[*ir.Node]string{},
		used:   map[string]bool{},
		labels: map[*ir.Node]string{},
		seen:   map[*ir.Node]bool{},
		done:   map[*ir.Node]bool{},
	}
}

func indentStr(n int) string { return strings.Repeat("\t", n) }

func (c *funcCtx) bindName(n *ir.Node, name string) {
	c.used[name] = true
	c.names[n] = name
}

// identFor returns n's assigned C identifier, registering base (deduplicated
// against every name already handed out in this function) the first time n
// is seen.
func (c *funcCtx) identFor(n *ir.Node, base string) string {
	if name, ok := c.names[n]; ok {
		return name
	}
	name := base
	for c.used[name] {
		c.tmp++
		name = fmt.Sprintf("%s_%d", base, c.tmp)
	}
	c.used[name] = true
	c.names[n] = name
	return name
}

func (c *funcCtx) newLabel(prefix string) string {
	c.labelSeq++
	return fmt.Sprintf("shady_%s_%d", prefix, c.labelSeq)
}

// discoverLabels walks the plain Jump/Branch/Switch residue reachable from
// body, recursing into every structured construct's sub-bodies too (a
// nested region restructurize couldn't recover can be buried arbitrarily
// deep), registering a label and hoisted param locals for every distinct
// jump target found.
func (c *funcCtx) discoverLabels(body *ir.Node) {
	if body == nil {
		return
	}
	n := body
	for {
		bp, ok := n.Payload.(ir.BindIdentifiersPayload)
		if !ok {
			break
		}
		n = bp.Body
	}
	switch p := n.Payload.(type) {
	case ir.JumpPayload:
		c.discoverJumpTarget(p.Target)
	case ir.BranchPayload:
		c.discoverJumpTarget(p.TrueJump.Payload.(ir.JumpPayload).Target)
		c.discoverJumpTarget(p.FalseJump.Payload.(ir.JumpPayload).Target)
	case ir.SwitchPayload:
		for _, j := range p.CaseJumps {
			c.discoverJumpTarget(j.Payload.(ir.JumpPayload).Target)
		}
		c.discoverJumpTarget(p.DefaultJump.Payload.(ir.JumpPayload).Target)
	case ir.IfPayload:
		c.discoverLabels(p.True.Payload.(*ir.BasicBlockPayload).Body)
		if p.False != nil {
			c.discoverLabels(p.False.Payload.(*ir.BasicBlockPayload).Body)
		}
		c.discoverLabels(p.Tail.Payload.(*ir.BasicBlockPayload).Body)
	case ir.MatchPayload:
		for _, cs := range p.Cases {
			c.discoverLabels(cs.Payload.(*ir.BasicBlockPayload).Body)
		}
		if p.Default != nil {
			c.discoverLabels(p.Default.Payload.(*ir.BasicBlockPayload).Body)
		}
		c.discoverLabels(p.Tail.Payload.(*ir.BasicBlockPayload).Body)
	case ir.LoopPayload:
		c.discoverLabels(p.Body.Payload.(*ir.BasicBlockPayload).Body)
		c.discoverLabels(p.Tail.Payload.(*ir.BasicBlockPayload).Body)
	case ir.ControlPayload:
		c.discoverLabels(p.Inside.Payload.(*ir.BasicBlockPayload).Body)
		c.discoverLabels(p.Tail.Payload.(*ir.BasicBlockPayload).Body)
	}
}

func (c *funcCtx) discoverJumpTarget(target *ir.Node) {
	if c.seen[target] {
		return
	}
	c.seen[target] = true
	bp := target.Payload.(*ir.BasicBlockPayload)
	if _, ok := c.labels[target]; !ok {
		base := fmt.Sprintf("shady_L%d", len(c.labelOrder))
		if bp.Name != "" {
			base = fmt.Sprintf("shady_%s_%d", sanitizeIdent(bp.Name), len(c.labelOrder))
		}
		c.labels[target] = base
		c.labelOrder = append(c.labelOrder, target)
		for _, param := range bp.Params {
			pp := param.Payload.(ir.ParamPayload)
			c.localDecls = append(c.localDecls, localDecl{node: param, typ: param.Type, name: sanitizeIdent(pp.Name)})
		}
	}
	c.discoverLabels(bp.Body)
}

func (c *funcCtx) emitLocalDecls() error {
	for _, ld := range c.localDecls {
		name := c.identFor(ld.node, ld.name)
		tn, err := c.e.dialect.TypeName(ld.typ)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "\t%s %s;\n", tn, name)
	}
	return nil
}

// declareParams writes an uninitialized local for every param in params
// (used for a structured construct's Tail, whose params are assigned by
// whichever arm runs and read back only after the construct closes).
func (c *funcCtx) declareParams(params []*ir.Node, indent int) error {
	for _, param := range params {
		pp := param.Payload.(ir.ParamPayload)
		name := c.identFor(param, sanitizeIdent(pp.Name))
		tn, err := c.e.dialect.TypeName(param.Type)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s%s %s;\n", indentStr(indent), tn, name)
	}
	return nil
}

func (c *funcCtx) assignParams(params, args []*ir.Node, indent int) error {
	if len(params) != len(args) {
		return fmt.Errorf("emit/cfamily: internal error: %d params vs %d args at a merge point", len(params), len(args))
	}
	ec := &exprCtx{e: c.e, names: c.names}
	for i, param := range params {
		pp := param.Payload.(ir.ParamPayload)
		name := c.identFor(param, sanitizeIdent(pp.Name))
		val, err := ec.expr(args[i])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s%s = %s;\n", indentStr(indent), name, val)
	}
	return nil
}

// emitChain walks n's BindIdentifiers prefix, then dispatches its terminal
// node: either a structured construct (rendered as native if/switch/while,
// continuing into its Tail) or a plain terminator.
func (c *funcCtx) emitChain(n *ir.Node, indent int, mctx mergeCtx) error {
	for {
		bp, ok := n.Payload.(ir.BindIdentifiersPayload)
		if !ok {
			break
		}
		if err := c.emitBind(bp, indent); err != nil {
			return err
		}
		n = bp.Body
	}
	switch p := n.Payload.(type) {
	case ir.IfPayload:
		return c.emitIf(p, indent, mctx)
	case ir.MatchPayload:
		return c.emitMatch(p, indent, mctx)
	case ir.LoopPayload:
		return c.emitLoop(p, indent, mctx)
	case ir.ControlPayload:
		return c.emitControl(p, indent, mctx)
	default:
		return c.emitTerminator(n, indent, mctx)
	}
}

func (c *funcCtx) emitBind(p ir.BindIdentifiersPayload, indent int) error {
	if _, ok := p.Value.Payload.(ir.CommentPayload); ok {
		fmt.Fprintf(c.out, "%s// %s\n", indentStr(indent), p.Value.Payload.(ir.CommentPayload).Text)
		return nil
	}
	ec := &exprCtx{e: c.e, names: c.names}
	val, err := ec.expr(p.Value)
	if err != nil {
		return err
	}
	if len(p.Names) == 0 {
		if val == "" {
			return nil
		}
		fmt.Fprintf(c.out, "%s%s;\n", indentStr(indent), val)
		return nil
	}
	tn, err := c.e.dialect.TypeName(p.Value.Type)
	if err != nil {
		return err
	}
	name := c.identFor(p.Value, sanitizeIdent(p.Names[0]))
	fmt.Fprintf(c.out, "%s%s %s = %s;\n", indentStr(indent), tn, name, val)
	return nil
}

func (c *funcCtx) emitIf(p ir.IfPayload, indent int, mctx mergeCtx) error {
	ec := &exprCtx{e: c.e, names: c.names}
	cond, err := ec.expr(p.Cond)
	if err != nil {
		return err
	}
	tailBP := p.Tail.Payload.(*ir.BasicBlockPayload)
	if p.False == nil && len(tailBP.Params) > 0 {
		return fmt.Errorf("emit/cfamily: internal error: if with no else arm but a value-producing tail")
	}
	if err := c.declareParams(tailBP.Params, indent); err != nil {
		return err
	}
	armMctx := mctx
	armMctx.tailParams = tailBP.Params

	fmt.Fprintf(c.out, "%sif (%s) {\n", indentStr(indent), cond)
	trueBP := p.True.Payload.(*ir.BasicBlockPayload)
	if trueBP.Body != nil {
		if err := c.emitChain(trueBP.Body, indent+1, armMctx); err != nil {
			return err
		}
	}
	if p.False != nil {
		fmt.Fprintf(c.out, "%s} else {\n", indentStr(indent))
		falseBP := p.False.Payload.(*ir.BasicBlockPayload)
		if falseBP.Body != nil {
			if err := c.emitChain(falseBP.Body, indent+1, armMctx); err != nil {
				return err
			}
		}
	}
	fmt.Fprintf(c.out, "%s}\n", indentStr(indent))

	if tailBP.Body == nil {
		return nil
	}
	return c.emitChain(tailBP.Body, indent, mctx)
}

func (c *funcCtx) emitMatch(p ir.MatchPayload, indent int, mctx mergeCtx) error {
	ec := &exprCtx{e: c.e, names: c.names}
	inspect, err := ec.expr(p.Inspect)
	if err != nil {
		return err
	}
	tailBP := p.Tail.Payload.(*ir.BasicBlockPayload)
	if err := c.declareParams(tailBP.Params, indent); err != nil {
		return err
	}
	armMctx := mctx
	armMctx.tailParams = tailBP.Params

	fmt.Fprintf(c.out, "%sswitch (%s) {\n", indentStr(indent), inspect)
	for i, lit := range p.Literals {
		litExpr, err := ec.expr(lit)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%scase %s: {\n", indentStr(indent+1), litExpr)
		caseBP := p.Cases[i].Payload.(*ir.BasicBlockPayload)
		if caseBP.Body != nil {
			if err := c.emitChain(caseBP.Body, indent+2, armMctx); err != nil {
				return err
			}
		}
		fmt.Fprintf(c.out, "%s} break;\n", indentStr(indent+1))
	}
	fmt.Fprintf(c.out, "%sdefault: {\n", indentStr(indent+1))
	if p.Default != nil {
		defBP := p.Default.Payload.(*ir.BasicBlockPayload)
		if defBP.Body != nil {
			if err := c.emitChain(defBP.Body, indent+2, armMctx); err != nil {
				return err
			}
		}
	}
	fmt.Fprintf(c.out, "%s} break;\n", indentStr(indent+1))
	fmt.Fprintf(c.out, "%s}\n", indentStr(indent))

	if tailBP.Body == nil {
		return nil
	}
	return c.emitChain(tailBP.Body, indent, mctx)
}

func (c *funcCtx) emitLoop(p ir.LoopPayload, indent int, mctx mergeCtx) error {
	ec := &exprCtx{e: c.e, names: c.names}
	for i, param := range p.Params {
		pp := param.Payload.(ir.ParamPayload)
		name := c.identFor(param, sanitizeIdent(pp.Name))
		tn, err := c.e.dialect.TypeName(param.Type)
		if err != nil {
			return err
		}
		init, err := ec.expr(p.InitialArgs[i])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s%s %s = %s;\n", indentStr(indent), tn, name, init)
	}
	tailBP := p.Tail.Payload.(*ir.BasicBlockPayload)
	if err := c.declareParams(tailBP.Params, indent); err != nil {
		return err
	}
	bodyMctx := mctx
	bodyMctx.loopParams = p.Params
	bodyMctx.tailParams = tailBP.Params

	fmt.Fprintf(c.out, "%swhile (1) {\n", indentStr(indent))
	bodyBP := p.Body.Payload.(*ir.BasicBlockPayload)
	if bodyBP.Body != nil {
		if err := c.emitChain(bodyBP.Body, indent+1, bodyMctx); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.out, "%s}\n", indentStr(indent))

	if tailBP.Body == nil {
		return nil
	}
	return c.emitChain(tailBP.Body, indent, mctx)
}

func (c *funcCtx) emitControl(p ir.ControlPayload, indent int, mctx mergeCtx) error {
	tailBP := p.Tail.Payload.(*ir.BasicBlockPayload)
	if err := c.declareParams(tailBP.Params, indent); err != nil {
		return err
	}
	insideBP := p.Inside.Payload.(*ir.BasicBlockPayload)
	if len(insideBP.Params) != 1 {
		return fmt.Errorf("emit/cfamily: internal error: control's inside block must take exactly one join-point parameter")
	}
	label := c.newLabel("join")
	innerMctx := mctx
	innerMctx.controls = append(append([]controlFrame(nil), mctx.controls...), controlFrame{
		joinPoint: insideBP.Params[0], label: label, tailParams: tailBP.Params,
	})
	if insideBP.Body != nil {
		if err := c.emitChain(insideBP.Body, indent, innerMctx); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.out, "%s%s:;\n", indentStr(indent), label)

	if tailBP.Body == nil {
		return nil
	}
	return c.emitChain(tailBP.Body, indent, mctx)
}

func (c *funcCtx) emitJumpTransfer(j *ir.Node, indent int) error {
	jp := j.Payload.(ir.JumpPayload)
	if err := c.assignParams(jp.Target.Payload.(*ir.BasicBlockPayload).Params, jp.Args, indent); err != nil {
		return err
	}
	label, ok := c.labels[jp.Target]
	if !ok {
		return fmt.Errorf("emit/cfamily: internal error: jump target missing a discovered label")
	}
	fmt.Fprintf(c.out, "%sgoto %s;\n", indentStr(indent), label)
	return nil
}

func unreachableStmt(dialectName string) string {
	switch dialectName {
	case "c11", "cuda":
		return "__builtin_unreachable();"
	case "ispc":
		return "assume(false);"
	default:
		return "/* unreachable */;"
	}
}

func (c *funcCtx) emitTerminator(n *ir.Node, indent int, mctx mergeCtx) error {
	ec := &exprCtx{e: c.e, names: c.names}
	switch p := n.Payload.(type) {
	case ir.JumpPayload:
		return c.emitJumpTransfer(n, indent)

	case ir.BranchPayload:
		cond, err := ec.expr(p.Cond)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%sif (%s) {\n", indentStr(indent), cond)
		if err := c.emitJumpTransfer(p.TrueJump, indent+1); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s} else {\n", indentStr(indent))
		if err := c.emitJumpTransfer(p.FalseJump, indent+1); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s}\n", indentStr(indent))
		return nil

	case ir.SwitchPayload:
		val, err := ec.expr(p.Value)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%sswitch (%s) {\n", indentStr(indent), val)
		for i, cv := range p.CaseValues {
			lit, err := ec.expr(cv)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%scase %s: {\n", indentStr(indent+1), lit)
			if err := c.emitJumpTransfer(p.CaseJumps[i], indent+2); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s}\n", indentStr(indent+1))
		}
		fmt.Fprintf(c.out, "%sdefault: {\n", indentStr(indent+1))
		if err := c.emitJumpTransfer(p.DefaultJump, indent+2); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s}\n", indentStr(indent+1))
		fmt.Fprintf(c.out, "%s}\n", indentStr(indent))
		return nil

	case ir.ReturnPayload:
		switch len(p.Args) {
		case 0:
			fmt.Fprintf(c.out, "%sreturn;\n", indentStr(indent))
		case 1:
			v, err := ec.expr(p.Args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%sreturn %s;\n", indentStr(indent), v)
		default:
			return unsupported(c.e.dialect.Name(), "multi-value return not lowered by lower_callc")
		}
		return nil

	case ir.TailCallPayload:
		callee, err := ec.expr(p.Callee)
		if err != nil {
			return err
		}
		args := make([]string, len(p.Args))
		for i, a := range p.Args {
			if args[i], err = ec.expr(a); err != nil {
				return err
			}
		}
		fmt.Fprintf(c.out, "%sreturn %s(%s);\n", indentStr(indent), callee, strings.Join(args, ", "))
		return nil

	case ir.UnreachablePayload:
		fmt.Fprintf(c.out, "%s%s\n", indentStr(indent), unreachableStmt(c.e.dialect.Name()))
		return nil

	case ir.MergeSelectionPayload:
		return c.assignParams(mctx.tailParams, p.Args, indent)

	case ir.MergeContinuePayload:
		if err := c.assignParams(mctx.loopParams, p.Args, indent); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%scontinue;\n", indentStr(indent))
		return nil

	case ir.MergeBreakPayload:
		if err := c.assignParams(mctx.tailParams, p.Args, indent); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%sbreak;\n", indentStr(indent))
		return nil

	case ir.JoinPayload:
		for i := len(mctx.controls) - 1; i >= 0; i-- {
			if mctx.controls[i].joinPoint == p.JoinPoint {
				if err := c.assignParams(mctx.controls[i].tailParams, p.Args, indent); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "%sgoto %s;\n", indentStr(indent), mctx.controls[i].label)
				return nil
			}
		}
		return fmt.Errorf("emit/cfamily: internal error: join point not found in any enclosing control")

	default:
		return unsupported(c.e.dialect.Name(), fmt.Sprintf("terminator kind %s", ir.KindOf(n)))
	}
}
