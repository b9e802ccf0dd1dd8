package compiler

import (
	"fmt"

	"github.com/TheJackiMonster/shady/emit/cfamily"
	"github.com/TheJackiMonster/shady/emit/spirv"
	"github.com/TheJackiMonster/shady/ir"
)

// EmitResult carries whichever of the two backend outputs cfg.Target
// selects: SPIR-V is a binary module, every C-family dialect a source
// string. Only one field is ever populated.
type EmitResult struct {
	SPIRV  []byte
	Source string
}

// cfamilyDialect resolves cfg's Dialect/GLSLVersion pair to a concrete
// cfamily.Dialect, the adapter emit/cfamily.Emit needs in place of this
// package's own enum.
func (cfg CompilerConfig) cfamilyDialect() cfamily.Dialect {
	switch cfg.Dialect {
	case DialectCUDA:
		return cfamily.NewCUDA()
	case DialectGLSL:
		return cfamily.NewGLSL(cfg.GLSLVersion)
	case DialectISPC:
		return cfamily.NewISPC()
	default:
		return cfamily.NewC11()
	}
}

// Emit renders m, which must already have gone through the pipeline
// NewPipeline(cfg) built, in cfg's configured Target: a SPIR-V binary module,
// or source text in whichever C-family Dialect cfg selects.
func (cfg CompilerConfig) Emit(m *ir.Module) (EmitResult, error) {
	if cfg.Target == TargetSPIRV {
		bin, err := spirv.Emit(m, spirv.Options{
			Version: spirv.Version{Major: cfg.TargetSPIRVVersion.Major, Minor: cfg.TargetSPIRVVersion.Minor},
		})
		if err != nil {
			return EmitResult{}, fmt.Errorf("emit spirv: %w", err)
		}
		return EmitResult{SPIRV: bin}, nil
	}

	src, err := cfamily.Emit(m, cfg.cfamilyDialect())
	if err != nil {
		return EmitResult{}, fmt.Errorf("emit %s: %w", cfg.Dialect, err)
	}
	return EmitResult{Source: src}, nil
}
