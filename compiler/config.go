// Package compiler wires the arena, ir, passes and emit packages together
// into one entry point: decode a CompilerConfig, build a Pipeline from it,
// and run it over a frontend-built Module to get a CompilationResult.
package compiler

import "github.com/TheJackiMonster/shady/arena"

// Target selects which of the two emitters (§4.6, §6) a CompilerConfig
// drives: the SPIR-V binary backend, or one of the textual C-family
// dialects. This is independent of Dialect/GLSLVersion, which only select
// the C-family flavor used when Target is TargetCFamily.
type Target int

const (
	TargetSPIRV Target = iota
	TargetCFamily
)

// Dialect selects the C-family backend's output flavor. Meaningless when
// Target is TargetSPIRV.
type Dialect int

const (
	DialectC11 Dialect = iota
	DialectCUDA
	DialectGLSL
	DialectISPC
)

func (d Dialect) String() string {
	switch d {
	case DialectC11:
		return "c11"
	case DialectCUDA:
		return "cuda"
	case DialectGLSL:
		return "glsl"
	case DialectISPC:
		return "ispc"
	default:
		return "unknown"
	}
}

// SPIRVVersion is the target SPIR-V module version.
type SPIRVVersion struct {
	Major, Minor int
}

// LowerConfig groups the flags that gate pipeline extensions 12-16 plus the
// two steps (9, 10) whose emulation is itself target-dependent. The first
// five fields correspond 1:1 to the `lower.*` options in spec.md §6;
// CoalesceMemory gates extension 16 (SPEC_FULL.md §4.5), a supplemented
// pass with no spec.md-level flag of its own, grouped here since it is
// gated the same way as the other pipeline extensions.
type LowerConfig struct {
	Int64                      bool
	EmulateSubgroupOps         bool
	EmulateSubgroupOpsExtended bool
	EmulateGenericPtrs         bool
	EmulatePhysicalMemory      bool
	CoalesceMemory             bool
}

// CompilerConfig is the plain, caller-decoded options struct spec.md §6
// lists; nothing in this package parses flags or files, it only consumes
// an already-built CompilerConfig value.
type CompilerConfig struct {
	AllowFrontendSyntax bool

	PerThreadStackSize   int
	PerSubgroupStackSize int
	SubgroupSize         int

	TargetSPIRVVersion SPIRVVersion

	Lower LowerConfig

	UseLoopForFnBody  bool
	DecayUnsizedArrays bool

	Target      Target
	Dialect     Dialect
	GLSLVersion int

	// CheckTypes and Fold carry straight through to arena.Config; every
	// other arena.Config field is derived from the fields above.
	CheckTypes bool
	Fold       bool
}

// arenaConfig derives the arena.Config each pass's destination arena is
// built with from cfg, the way passes.Context.NewArena expects.
func (cfg CompilerConfig) arenaConfig() arena.Config {
	spaces := arena.DefaultAddressSpaces()
	if cfg.Lower.EmulateGenericPtrs {
		info := spaces[arena.Generic]
		info.Emulated = true
		spaces[arena.Generic] = info
	}
	if cfg.Lower.EmulatePhysicalMemory {
		for as, info := range spaces {
			if info.Physical {
				info.Emulated = true
				spaces[as] = info
			}
		}
	}

	pointerWidth := 64
	if cfg.Target == TargetSPIRV {
		pointerWidth = 32
	}

	return arena.Config{
		CheckTypes:    cfg.CheckTypes,
		Fold:          cfg.Fold,
		IsSIMT:        true,
		SubgroupSize:  cfg.SubgroupSize,
		PointerWidth:  pointerWidth,
		AddressSpaces: spaces,
	}
}
