// Package passes implements the ordered lowering pipeline: each
// pass consumes one ir.Module built against a source arena.Arena and
// produces a new ir.Module in a fresh arena.Arena, the way the teacher's
// ssa.lift operates in place on one function but, generalized to Shady's
// whole-module rewrite discipline, every pass
// here gets its own destination arena so the source module (and anything
// still referencing it) is never mutated underneath a caller.
package passes

import (
	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/internal/diag"
	"github.com/TheJackiMonster/shady/internal/xlog"
	"github.com/TheJackiMonster/shady/ir"
)

// Context carries one pass invocation's shared state: the arena
// configuration to use for the destination arena, and the diagnostics
// accumulated so far.
type Context struct {
	Config arena.Config
	Errors diag.List
}

// NewContext creates a Context that derives its destination arenas from cfg.
func NewContext(cfg arena.Config) *Context {
	return &Context{Config: cfg}
}

// NewArena allocates a fresh destination arena using ctx's configuration,
// the way every pass function below starts.
func (ctx *Context) NewArena() *arena.Arena {
	return arena.New(ctx.Config)
}

// Fail records a fatal diagnostic for the named pass and returns it as an
// error; passes that can't usefully continue after the first error call
// this and return immediately.
func (ctx *Context) Fail(pass, node string, err error) error {
	ctx.Errors.Add(diag.KindPass, pass, node, err)
	xlog.Errorf("%s: %s: %v", pass, node, err)
	return ctx.Errors.AsError()
}

// Pass is the common shape of every pipeline stage.
type Pass func(ctx *Context, src *ir.Module) (*ir.Module, error)
