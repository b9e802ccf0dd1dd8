package analysis

import "github.com/TheJackiMonster/shady/ir"

// CallGraph is a whole-module analysis recording which functions call
// which, queried through Calls and Reachable. It is a standalone analysis:
// no pass in the lowering pipeline builds one.
type CallGraph struct {
	Edges map[*ir.Node]map[*ir.Node]bool // caller -> set of callees
}

// BuildCallGraph walks every Function declaration in m and records a direct
// edge for every Call/TailCall whose callee resolves (through FnAddr) to
// another Function in the same module.
func BuildCallGraph(m *ir.Module) *CallGraph {
	cg := &CallGraph{Edges: make(map[*ir.Node]map[*ir.Node]bool)}
	for _, decl := range m.Decls {
		fn, ok := decl.Payload.(*ir.FunctionPayload)
		if !ok || fn.Body == nil {
			continue
		}
		cg.Edges[decl] = make(map[*ir.Node]bool)
		walkForCalls(fn.Body, func(callee *ir.Node) {
			if target := resolveFunction(callee); target != nil {
				cg.Edges[decl][target] = true
			}
		})
	}
	return cg
}

func resolveFunction(callee *ir.Node) *ir.Node {
	switch p := callee.Payload.(type) {
	case ir.FnAddrPayload:
		return p.Fn
	case ir.RefDeclPayload:
		if ir.KindOf(p.Decl) == ir.KindFunction {
			return p.Decl
		}
	}
	return nil
}

// walkForCalls performs a best-effort traversal of a body for Call/TailCall
// nodes, descending into structured-construct children. It is intentionally
// shallow (it does not walk into every value operand) since the call graph
// only cares about call sites, which only ever appear as instructions in a
// body's own chain or as terminators.
func walkForCalls(body *ir.Node, found func(callee *ir.Node)) {
	if body == nil {
		return
	}
	switch p := body.Payload.(type) {
	case ir.CallPayload:
		found(p.Callee)
	case ir.TailCallPayload:
		found(p.Callee)
	case ir.BindIdentifiersPayload:
		walkForCalls(p.Value, found)
		walkForCalls(p.Body, found)
	case ir.IfPayload:
		walkForCalls(bodyOf(p.True), found)
		walkForCalls(bodyOf(p.False), found)
		walkForCalls(bodyOf(p.Tail), found)
	case ir.MatchPayload:
		for _, c := range p.Cases {
			walkForCalls(bodyOf(c), found)
		}
		walkForCalls(bodyOf(p.Default), found)
		walkForCalls(bodyOf(p.Tail), found)
	case ir.LoopPayload:
		walkForCalls(bodyOf(p.Body), found)
		walkForCalls(bodyOf(p.Tail), found)
	case ir.ControlPayload:
		walkForCalls(bodyOf(p.Inside), found)
		walkForCalls(bodyOf(p.Tail), found)
	}
}

// Calls reports whether caller has a direct call edge to callee.
func (cg *CallGraph) Calls(caller, callee *ir.Node) bool {
	return cg.Edges[caller][callee]
}

// Reachable returns every function reachable from entry, entry included.
func (cg *CallGraph) Reachable(entry *ir.Node) map[*ir.Node]bool {
	seen := map[*ir.Node]bool{entry: true}
	stack := []*ir.Node{entry}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for callee := range cg.Edges[n] {
			if !seen[callee] {
				seen[callee] = true
				stack = append(stack, callee)
			}
		}
	}
	return seen
}
