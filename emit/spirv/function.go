package spirv

import (
	"fmt"

	"github.com/TheJackiMonster/shady/ir"
)

// funcEmitter carries the per-function state of the block-based emission
// driver, the SPIR-V analogue of emit/cfamily/funcctx.go's funcCtx: instead
// of C statements written into one growing string, it appends instructions
// into the current basic block's word buffer and finalizes a block with an
// explicit terminator whenever control forks or merges.
//
// SPIR-V requires every value's definition to dominate its uses, which a
// value computed before a branch and read only after the corresponding
// merge point already satisfies for free. The one place that isn't true is
// exactly where emit/cfamily hoists a C local: the parameters of an If/
// Match/Loop's Tail block, a Loop's own parameters, and a plain Jump
// target's parameters can each receive a different value depending on
// which predecessor reached the merge point. Rather than compute real
// dominance-frontier phi placement, this backend gives each such Param a
// Function-storage OpVariable (declared, as SPIR-V requires, in the
// function's entry block) and threads values through OpStore/OpLoad —
// legal SPIR-V, and the direct translation of emit/cfamily's own
// local-variable strategy for the same problem.
type funcEmitter struct {
	be *Backend

	entryVars []uint32 // OpVariable instructions, prepended to the entry block
	blocks    [][]uint32
	cur       []uint32
	curLabel  uint32

	valueID map[*ir.Node]uint32
	varID   map[*ir.Node]uint32

	labels     map[*ir.Node]uint32
	labelOrder []*ir.Node
	seen       map[*ir.Node]bool
	done       map[*ir.Node]bool
}

func newFuncEmitter(be *Backend) *funcEmitter {
	return &funcEmitter{
		be:      be,
		valueID: map[*ir.Node]uint32{},
		varID:   map[*ir.Node]uint32{},
		labels:  map[*ir.Node]uint32{},
		seen:    map[*ir.Node]bool{},
		done:    map[*ir.Node]bool{},
	}
}

func (fe *funcEmitter) newID() uint32 { return fe.be.builder.newID() }

// startBlock opens a new basic block labelled label by replacing fe.cur
// with a fresh OpLabel. It does not save the block that was current; the
// caller appends that block's terminator and hands it to finishBlock first.
func (fe *funcEmitter) startBlock(label uint32) {
	fe.curLabel = label
	fe.cur = []uint32{}
	emit(&fe.cur, OpLabel, label)
}

// finishBlock appends fe.cur to the function's block list. The entry
// block's pending OpVariable declarations are spliced in once, after every
// block in the function has been emitted (varFor may still be discovering
// new Function-storage slots well after the entry block itself has
// finished), by spliceEntryVars.
func (fe *funcEmitter) finishBlock() {
	fe.blocks = append(fe.blocks, fe.cur)
}

// spliceEntryVars inserts every OpVariable instruction accumulated over the
// whole function's emission right after the entry block's OpLabel
// instruction (OpLabel is always exactly two words: header + result id),
// where SPIR-V requires all of a function's Function-storage OpVariables to
// live.
func (fe *funcEmitter) spliceEntryVars() {
	if len(fe.blocks) == 0 || len(fe.entryVars) == 0 {
		return
	}
	entry := fe.blocks[0]
	out := append([]uint32{}, entry[:2]...)
	out = append(out, fe.entryVars...)
	out = append(out, entry[2:]...)
	fe.blocks[0] = out
}

func (fe *funcEmitter) varFor(param *ir.Node) uint32 {
	if id, ok := fe.varID[param]; ok {
		return id
	}
	ptrType := fe.be.builder.TypePointer(StorageClassFunction, fe.be.mustTypeID(param.Type))
	id := fe.newID()
	emit(&fe.entryVars, OpVariable, ptrType, id, uint32(StorageClassFunction))
	fe.varID[param] = id
	return id
}

// emitFunction renders fn's body (already rewritten to structured or plain
// residue control flow) as the OpFunction...OpFunctionEnd instruction
// sequence, appended to be.builder.functions.
func (be *Backend) emitFunction(fn *ir.Node) error {
	fp := fn.Payload.(*ir.FunctionPayload)
	fe := newFuncEmitter(be)

	retType, err := be.returnTypeID(fp.ReturnTypes)
	if err != nil {
		return err
	}
	paramTypeIDs := make([]uint32, len(fp.Params))
	for i, p := range fp.Params {
		id, err := be.tc.typeID(ir.Inner(p.Type))
		if err != nil {
			return err
		}
		paramTypeIDs[i] = id
	}
	fnType := be.builder.TypeFunction(retType, paramTypeIDs)

	fnID := be.declID[fn]
	emit(&be.builder.functions, OpFunction, retType, fnID, 0 /* no function control */, fnType)
	for _, p := range fp.Params {
		id := fe.newID()
		fe.valueID[p] = id
		emit(&be.builder.functions, OpFunctionParameter, be.mustTypeID(p.Type), id)
	}

	entryLabel := fe.newID()
	fe.startBlock(entryLabel)
	fe.discoverLabels(fp.Body)
	if err := fe.emitChain(fp.Body, mergeCtx{}); err != nil {
		return err
	}
	for _, bb := range fe.labelOrder {
		if fe.done[bb] {
			continue
		}
		fe.done[bb] = true
		fe.startBlock(fe.labels[bb])
		bp := bb.Payload.(*ir.BasicBlockPayload)
		for _, param := range bp.Params {
			id := fe.newID()
			fe.valueID[param] = id
			emit(&fe.cur, OpLoad, be.mustTypeID(param.Type), id, fe.varFor(param))
		}
		if bp.Body == nil {
			emit(&fe.cur, OpUnreachable)
			fe.finishBlock()
			continue
		}
		if err := fe.emitChain(bp.Body, mergeCtx{}); err != nil {
			return err
		}
	}

	fe.spliceEntryVars()
	for _, blk := range fe.blocks {
		be.builder.functions = append(be.builder.functions, blk...)
	}
	emit(&be.builder.functions, OpFunctionEnd)
	return nil
}

func (be *Backend) returnTypeID(returnTypes []*ir.Node) (uint32, error) {
	switch len(returnTypes) {
	case 0:
		return be.tc.typeID(ir.Unit(be.module.Arena))
	case 1:
		return be.tc.typeID(returnTypes[0])
	default:
		return 0, fmt.Errorf("emit/spirv: multi-return function not lowered by lower_callc")
	}
}

func (be *Backend) mustTypeID(t *ir.Node) uint32 {
	id, err := be.tc.typeID(t)
	if err != nil {
		panic(err)
	}
	return id
}

// mergeCtx mirrors emit/cfamily's own mergeCtx: it threads the Param slots a
// MergeSelection/MergeContinue/MergeBreak/Join must store into before
// branching to the right merge block.
type mergeCtx struct {
	tailParams []*ir.Node
	tailLabel  uint32

	loopParams  []*ir.Node
	loopHeader  uint32
	loopMerge   uint32

	controls []controlFrame
}

type controlFrame struct {
	joinPoint  *ir.Node
	label      uint32
	tailParams []*ir.Node
}

func (fe *funcEmitter) discoverLabels(body *ir.Node) {
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
		fe.discoverJumpTarget(p.Target)
	case ir.BranchPayload:
		fe.discoverJumpTarget(p.TrueJump.Payload.(ir.JumpPayload).Target)
		fe.discoverJumpTarget(p.FalseJump.Payload.(ir.JumpPayload).Target)
	case ir.SwitchPayload:
		for _, j := range p.CaseJumps {
			fe.discoverJumpTarget(j.Payload.(ir.JumpPayload).Target)
		}
		fe.discoverJumpTarget(p.DefaultJump.Payload.(ir.JumpPayload).Target)
	case ir.IfPayload:
		fe.discoverLabels(p.True.Payload.(*ir.BasicBlockPayload).Body)
		if p.False != nil {
			fe.discoverLabels(p.False.Payload.(*ir.BasicBlockPayload).Body)
		}
		fe.discoverLabels(p.Tail.Payload.(*ir.BasicBlockPayload).Body)
	case ir.MatchPayload:
		for _, cs := range p.Cases {
			fe.discoverLabels(cs.Payload.(*ir.BasicBlockPayload).Body)
		}
		if p.Default != nil {
			fe.discoverLabels(p.Default.Payload.(*ir.BasicBlockPayload).Body)
		}
		fe.discoverLabels(p.Tail.Payload.(*ir.BasicBlockPayload).Body)
	case ir.LoopPayload:
		fe.discoverLabels(p.Body.Payload.(*ir.BasicBlockPayload).Body)
		fe.discoverLabels(p.Tail.Payload.(*ir.BasicBlockPayload).Body)
	case ir.ControlPayload:
		fe.discoverLabels(p.Inside.Payload.(*ir.BasicBlockPayload).Body)
		fe.discoverLabels(p.Tail.Payload.(*ir.BasicBlockPayload).Body)
	}
}

func (fe *funcEmitter) discoverJumpTarget(target *ir.Node) {
	if fe.seen[target] {
		return
	}
	fe.seen[target] = true
	fe.labels[target] = fe.newID()
	fe.labelOrder = append(fe.labelOrder, target)
	bp := target.Payload.(*ir.BasicBlockPayload)
	for _, param := range bp.Params {
		fe.varFor(param)
	}
	fe.discoverLabels(bp.Body)
}

// emitChain walks n's BindIdentifiers prefix into the current block, then
// dispatches on its terminal node.
func (fe *funcEmitter) emitChain(n *ir.Node, mctx mergeCtx) error {
	for {
		bp, ok := n.Payload.(ir.BindIdentifiersPayload)
		if !ok {
			break
		}
		if err := fe.emitBind(bp); err != nil {
			return err
		}
		n = bp.Body
	}
	switch p := n.Payload.(type) {
	case ir.IfPayload:
		return fe.emitIf(p, mctx)
	case ir.MatchPayload:
		return fe.emitMatch(p, mctx)
	case ir.LoopPayload:
		return fe.emitLoop(p, mctx)
	case ir.ControlPayload:
		return fe.emitControl(p, mctx)
	default:
		return fe.emitTerminator(n, mctx)
	}
}

func (fe *funcEmitter) emitBind(p ir.BindIdentifiersPayload) error {
	if _, ok := p.Value.Payload.(ir.CommentPayload); ok {
		return nil
	}
	id, err := fe.expr(p.Value)
	if err != nil {
		return err
	}
	if len(p.Names) > 0 {
		fe.valueID[p.Value] = id
	}
	return nil
}

// storeToParams assigns args into params' Function-storage slots, the
// SPIR-V counterpart of emit/cfamily's assignParams.
func (fe *funcEmitter) storeToParams(params, args []*ir.Node) error {
	if len(params) != len(args) {
		return fmt.Errorf("emit/spirv: internal error: %d params vs %d args at a merge point", len(params), len(args))
	}
	for i, param := range params {
		v, err := fe.expr(args[i])
		if err != nil {
			return err
		}
		emit(&fe.cur, OpStore, fe.varFor(param), v)
	}
	return nil
}

func (fe *funcEmitter) loadTailParams(params []*ir.Node) {
	for _, param := range params {
		id := fe.newID()
		fe.valueID[param] = id
		emit(&fe.cur, OpLoad, fe.be.mustTypeID(param.Type), id, fe.varFor(param))
	}
}

func (fe *funcEmitter) emitIf(p ir.IfPayload, mctx mergeCtx) error {
	cond, err := fe.expr(p.Cond)
	if err != nil {
		return err
	}
	tailBP := p.Tail.Payload.(*ir.BasicBlockPayload)
	trueLabel := fe.newID()
	mergeLabel := fe.newID()
	falseLabel := mergeLabel
	if p.False != nil {
		falseLabel = fe.newID()
	}

	emit(&fe.cur, OpSelectionMerge, mergeLabel, 0)
	emit(&fe.cur, OpBranchConditional, cond, trueLabel, falseLabel)
	fe.finishBlock()

	armMctx := mctx
	armMctx.tailParams = tailBP.Params
	armMctx.tailLabel = mergeLabel

	fe.startBlock(trueLabel)
	trueBP := p.True.Payload.(*ir.BasicBlockPayload)
	if trueBP.Body != nil {
		if err := fe.emitChain(trueBP.Body, armMctx); err != nil {
			return err
		}
	} else {
		emit(&fe.cur, OpBranch, mergeLabel)
	}
	fe.finishBlock()

	if p.False != nil {
		fe.startBlock(falseLabel)
		falseBP := p.False.Payload.(*ir.BasicBlockPayload)
		if falseBP.Body != nil {
			if err := fe.emitChain(falseBP.Body, armMctx); err != nil {
				return err
			}
		} else {
			emit(&fe.cur, OpBranch, mergeLabel)
		}
		fe.finishBlock()
	}

	fe.startBlock(mergeLabel)
	fe.loadTailParams(tailBP.Params)
	if tailBP.Body == nil {
		emit(&fe.cur, OpUnreachable)
		fe.finishBlock()
		return nil
	}
	return fe.emitChain(tailBP.Body, mctx)
}

func (fe *funcEmitter) emitMatch(p ir.MatchPayload, mctx mergeCtx) error {
	inspect, err := fe.expr(p.Inspect)
	if err != nil {
		return err
	}
	tailBP := p.Tail.Payload.(*ir.BasicBlockPayload)
	mergeLabel := fe.newID()
	defaultLabel := fe.newID()
	caseLabels := make([]uint32, len(p.Cases))
	for i := range p.Cases {
		caseLabels[i] = fe.newID()
	}

	literals := make([]uint32, len(p.Literals))
	for i, lit := range p.Literals {
		il, ok := lit.Payload.(ir.IntLiteralPayload)
		if !ok {
			return fmt.Errorf("emit/spirv: match literal must be a constant int")
		}
		literals[i] = uint32(il.Value)
	}

	emit(&fe.cur, OpSelectionMerge, mergeLabel, 0)
	switchOperands := append([]uint32{inspect, defaultLabel}, interleave(literals, caseLabels)...)
	emit(&fe.cur, OpSwitch, switchOperands...)
	fe.finishBlock()

	armMctx := mctx
	armMctx.tailParams = tailBP.Params
	armMctx.tailLabel = mergeLabel

	for i, cs := range p.Cases {
		fe.startBlock(caseLabels[i])
		csBP := cs.Payload.(*ir.BasicBlockPayload)
		if csBP.Body != nil {
			if err := fe.emitChain(csBP.Body, armMctx); err != nil {
				return err
			}
		} else {
			emit(&fe.cur, OpBranch, mergeLabel)
		}
		fe.finishBlock()
	}

	fe.startBlock(defaultLabel)
	if p.Default != nil {
		defBP := p.Default.Payload.(*ir.BasicBlockPayload)
		if defBP.Body != nil {
			if err := fe.emitChain(defBP.Body, armMctx); err != nil {
				return err
			}
		} else {
			emit(&fe.cur, OpBranch, mergeLabel)
		}
	} else {
		emit(&fe.cur, OpUnreachable)
	}
	fe.finishBlock()

	fe.startBlock(mergeLabel)
	fe.loadTailParams(tailBP.Params)
	if tailBP.Body == nil {
		emit(&fe.cur, OpUnreachable)
		fe.finishBlock()
		return nil
	}
	return fe.emitChain(tailBP.Body, mctx)
}

// interleave zips literal/label pairs the way OpSwitch's variadic operand
// list requires (literal, label, literal, label, ...).
func interleave(literals, labels []uint32) []uint32 {
	out := make([]uint32, 0, 2*len(literals))
	for i := range literals {
		out = append(out, literals[i], labels[i])
	}
	return out
}

func (fe *funcEmitter) emitLoop(p ir.LoopPayload, mctx mergeCtx) error {
	for i, param := range p.Params {
		fe.varFor(param)
		v, err := fe.expr(p.InitialArgs[i])
		if err != nil {
			return err
		}
		emit(&fe.cur, OpStore, fe.varFor(param), v)
	}
	tailBP := p.Tail.Payload.(*ir.BasicBlockPayload)

	headerLabel := fe.newID()
	bodyLabel := fe.newID()
	mergeLabel := fe.newID()
	continueLabel := fe.newID()

	emit(&fe.cur, OpBranch, headerLabel)
	fe.finishBlock()

	fe.startBlock(headerLabel)
	fe.loadTailParams(p.Params)
	emit(&fe.cur, OpLoopMerge, mergeLabel, continueLabel, 0)
	emit(&fe.cur, OpBranch, bodyLabel)
	fe.finishBlock()

	bodyMctx := mctx
	bodyMctx.loopParams = p.Params
	bodyMctx.loopHeader = continueLabel
	bodyMctx.loopMerge = mergeLabel
	bodyMctx.tailParams = tailBP.Params
	bodyMctx.tailLabel = mergeLabel

	fe.startBlock(bodyLabel)
	bodyBP := p.Body.Payload.(*ir.BasicBlockPayload)
	if bodyBP.Body != nil {
		if err := fe.emitChain(bodyBP.Body, bodyMctx); err != nil {
			return err
		}
	} else {
		emit(&fe.cur, OpBranch, continueLabel)
	}
	fe.finishBlock()

	fe.startBlock(continueLabel)
	emit(&fe.cur, OpBranch, headerLabel)
	fe.finishBlock()

	fe.startBlock(mergeLabel)
	fe.loadTailParams(tailBP.Params)
	if tailBP.Body == nil {
		emit(&fe.cur, OpUnreachable)
		fe.finishBlock()
		return nil
	}
	return fe.emitChain(tailBP.Body, mctx)
}

func (fe *funcEmitter) emitControl(p ir.ControlPayload, mctx mergeCtx) error {
	tailBP := p.Tail.Payload.(*ir.BasicBlockPayload)
	insideBP := p.Inside.Payload.(*ir.BasicBlockPayload)
	if len(insideBP.Params) != 1 {
		return fmt.Errorf("emit/spirv: internal error: control's inside block must take exactly one join-point parameter")
	}
	mergeLabel := fe.newID()
	innerMctx := mctx
	innerMctx.controls = append(append([]controlFrame(nil), mctx.controls...), controlFrame{
		joinPoint: insideBP.Params[0], label: mergeLabel, tailParams: tailBP.Params,
	})

	// Control has no branch of its own: its body runs straight-line in the
	// current block until a nested Join transfers control to mergeLabel, so
	// it needs no OpSelectionMerge/OpLabel pair around its entry.
	if insideBP.Body != nil {
		if err := fe.emitChain(insideBP.Body, innerMctx); err != nil {
			return err
		}
	}
	fe.finishBlock()
	fe.startBlock(mergeLabel)
	fe.loadTailParams(tailBP.Params)
	if tailBP.Body == nil {
		emit(&fe.cur, OpUnreachable)
		fe.finishBlock()
		return nil
	}
	return fe.emitChain(tailBP.Body, mctx)
}

func (fe *funcEmitter) jumpTo(target *ir.Node, args []*ir.Node) error {
	bp := target.Payload.(*ir.BasicBlockPayload)
	if err := fe.storeToParams(bp.Params, args); err != nil {
		return err
	}
	label, ok := fe.labels[target]
	if !ok {
		return fmt.Errorf("emit/spirv: internal error: jump target missing a discovered label")
	}
	emit(&fe.cur, OpBranch, label)
	return nil
}

func (fe *funcEmitter) emitTerminator(n *ir.Node, mctx mergeCtx) error {
	switch p := n.Payload.(type) {
	case ir.JumpPayload:
		err := fe.jumpTo(p.Target, p.Args)
		fe.finishBlock()
		return err

	case ir.BranchPayload:
		cond, err := fe.expr(p.Cond)
		if err != nil {
			return err
		}
		tj := p.TrueJump.Payload.(ir.JumpPayload)
		fj := p.FalseJump.Payload.(ir.JumpPayload)
		trueLabel, falseLabel := fe.labels[tj.Target], fe.labels[fj.Target]
		if err := fe.storeToParams(tj.Target.Payload.(*ir.BasicBlockPayload).Params, tj.Args); err != nil {
			return err
		}
		if err := fe.storeToParams(fj.Target.Payload.(*ir.BasicBlockPayload).Params, fj.Args); err != nil {
			return err
		}
		emit(&fe.cur, OpBranchConditional, cond, trueLabel, falseLabel)
		fe.finishBlock()
		return nil

	case ir.SwitchPayload:
		val, err := fe.expr(p.Value)
		if err != nil {
			return err
		}
		if err := fe.storeToParams(p.DefaultJump.Payload.(ir.JumpPayload).Target.Payload.(*ir.BasicBlockPayload).Params,
			p.DefaultJump.Payload.(ir.JumpPayload).Args); err != nil {
			return err
		}
		literals := make([]uint32, len(p.CaseValues))
		labels := make([]uint32, len(p.CaseJumps))
		for i, cv := range p.CaseValues {
			il, ok := cv.Payload.(ir.IntLiteralPayload)
			if !ok {
				return fmt.Errorf("emit/spirv: switch case value must be a constant int")
			}
			literals[i] = uint32(il.Value)
			jp := p.CaseJumps[i].Payload.(ir.JumpPayload)
			if err := fe.storeToParams(jp.Target.Payload.(*ir.BasicBlockPayload).Params, jp.Args); err != nil {
				return err
			}
			labels[i] = fe.labels[jp.Target]
		}
		defLabel := fe.labels[p.DefaultJump.Payload.(ir.JumpPayload).Target]
		operands := append([]uint32{val, defLabel}, interleave(literals, labels)...)
		emit(&fe.cur, OpSwitch, operands...)
		fe.finishBlock()
		return nil

	case ir.ReturnPayload:
		switch len(p.Args) {
		case 0:
			emit(&fe.cur, OpReturn)
		case 1:
			v, err := fe.expr(p.Args[0])
			if err != nil {
				return err
			}
			emit(&fe.cur, OpReturnValue, v)
		default:
			return fmt.Errorf("emit/spirv: multi-value return not lowered by lower_callc")
		}
		fe.finishBlock()
		return nil

	case ir.TailCallPayload:
		// SPIR-V has no tail-call instruction; lower_tailcalls must have
		// already rewritten this into a Call followed by Return before this
		// backend runs.
		return fmt.Errorf("emit/spirv: tail call reached the backend unlowered")

	case ir.UnreachablePayload:
		emit(&fe.cur, OpUnreachable)
		fe.finishBlock()
		return nil

	case ir.MergeSelectionPayload:
		if err := fe.storeToParams(mctx.tailParams, p.Args); err != nil {
			return err
		}
		emit(&fe.cur, OpBranch, mctx.tailLabel)
		fe.finishBlock()
		return nil

	case ir.MergeContinuePayload:
		if err := fe.storeToParams(mctx.loopParams, p.Args); err != nil {
			return err
		}
		emit(&fe.cur, OpBranch, mctx.loopHeader)
		fe.finishBlock()
		return nil

	case ir.MergeBreakPayload:
		if err := fe.storeToParams(mctx.tailParams, p.Args); err != nil {
			return err
		}
		emit(&fe.cur, OpBranch, mctx.loopMerge)
		fe.finishBlock()
		return nil

	case ir.JoinPayload:
		for i := len(mctx.controls) - 1; i >= 0; i-- {
			if mctx.controls[i].joinPoint == p.JoinPoint {
				if err := fe.storeToParams(mctx.controls[i].tailParams, p.Args); err != nil {
					return err
				}
				emit(&fe.cur, OpBranch, mctx.controls[i].label)
				fe.finishBlock()
				return nil
			}
		}
		return fmt.Errorf("emit/spirv: internal error: join point not found in any enclosing control")

	default:
		return fmt.Errorf("emit/spirv: unsupported terminator kind %s", ir.KindOf(n))
	}
}
