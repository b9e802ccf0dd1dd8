package analysis

import "github.com/TheJackiMonster/shady/ir"

// Schedule assigns each reachable Abstraction a linear emission order,
// grounded on ssa/print.go's use of a block's reverse-postorder position to
// decide disassembly order: both emit/spirv and emit/cfamily want a
// dominance-respecting order (a block's dominator is always emitted first)
// so forward references collapse to simple cases.
type Schedule struct {
	Order []ir.AbstractionRef
	pos   map[ir.AbstractionRef]int
}

// BuildSchedule returns g's nodes in reverse postorder, which is already
// dominance-respecting: BuildDomTree relies on exactly this property.
func BuildSchedule(g *CFG) *Schedule {
	order := ReversePostorder(g)
	pos := make(map[ir.AbstractionRef]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	return &Schedule{Order: order, pos: pos}
}

// Position returns n's index in the schedule, or -1 if absent.
func (s *Schedule) Position(n ir.AbstractionRef) int {
	if i, ok := s.pos[n]; ok {
		return i
	}
	return -1
}

// Before reports whether a is scheduled before b.
func (s *Schedule) Before(a, b ir.AbstractionRef) bool {
	return s.Position(a) < s.Position(b)
}
