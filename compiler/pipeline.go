package compiler

import (
	"github.com/TheJackiMonster/shady/internal/xlog"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/passes"
)

// Pipeline is the ordered list of passes.Pass this CompilerConfig resolves
// to: steps 1-11 always present, steps 12-16 present only when their gating
// CompilerConfig flag is set, matching the teacher's convention of
// expressing an optional rewrite as a pass that's simply absent from the
// list rather than a pass that checks a flag on every node.
type Pipeline struct {
	cfg   CompilerConfig
	stages []namedPass
}

type namedPass struct {
	name string
	run  passes.Pass
}

// NewPipeline builds the pass list for cfg. Construction never fails;
// errors only ever arise once Run is called.
func NewPipeline(cfg CompilerConfig) *Pipeline {
	p := &Pipeline{cfg: cfg}

	// Steps 1-11: unconditional core lowering.
	p.add("bind", passes.Bind)
	p.add("normalize", passes.Normalize)
	p.add("normalize_builtins", passes.NormalizeBuiltins)
	p.add("infer", passes.Infer)
	p.add("lower_cf", passes.LowerCF)
	p.add("restructurize", passes.Restructurize)
	p.add("lift_everything", passes.LiftEverything)
	p.add("lower_int64", passes.LowerInt64)
	p.add("lower_subgroup", passes.LowerSubgroup)
	p.add("lower_lea", passes.LowerLEA)
	p.add("lower_decay", passes.LowerDecay)

	// Steps 12-16: conditional extensions.
	if cfg.Lower.EmulatePhysicalMemory {
		p.add("lower_stack", passes.LowerStack)
	}
	if cfg.Lower.EmulateSubgroupOps {
		p.add("lower_mask", passes.LowerMask)
	}
	if cfg.Target != TargetSPIRV {
		// SPIR-V's OpFunctionCall already has a multi-return-capable ABI
		// and no notion of a tail call to flatten; only the C-family
		// targets, whose functions must come back through an ordinary C
		// call, need both rewrites.
		p.add("lower_callc", passes.LowerCallc)
		p.add("lower_tailcalls", passes.LowerTailCalls)
	}
	if cfg.Lower.CoalesceMemory {
		p.add("coalesce_memory", passes.CoalesceMemory)
	}

	return p
}

func (p *Pipeline) add(name string, run passes.Pass) {
	p.stages = append(p.stages, namedPass{name: name, run: run})
}

// Run executes every stage in order against src, stopping at the first
// failing pass and reporting it as the CompilationResult's single cause.
func (p *Pipeline) Run(src *ir.Module) CompilationResult {
	cur := src
	for _, stage := range p.stages {
		ctx := passes.NewContext(p.cfg.arenaConfig())
		next, err := stage.run(ctx, cur)
		if err != nil {
			xlog.Errorf("%s: %v", stage.name, err)
			return CompilationResult{Err: err}
		}
		xlog.Tracef("%s: %d decls", stage.name, len(next.Decls))
		cur = next
	}
	return CompilationResult{Module: cur}
}
