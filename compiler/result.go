package compiler

import "github.com/TheJackiMonster/shady/ir"

// CompilationResult is the top-level propagation point spec.md §7 describes:
// a single failure cause regardless of which pass raised it, or a Module
// that has run the whole configured pipeline successfully.
type CompilationResult struct {
	Module *ir.Module
	Err    error
}

func (r CompilationResult) Ok() bool { return r.Err == nil }
