package arena

// AddressSpace is the closed enumeration of pointer address spaces.
// It lives in package arena (rather than ir) because the Arena's
// Config is what says which spaces are allowed for a given compilation
// target, and we want Config to reference it without ir importing arena
// importing ir.
type AddressSpace int

const (
	Generic AddressSpace = iota
	Private
	Shared
	Subgroup
	Global
	Function
	Input
	Output
	Uniform
	UniformConstant
	PushConstant
	External
	ProgramCode
)

func (s AddressSpace) String() string {
	switch s {
	case Generic:
		return "generic"
	case Private:
		return "private"
	case Shared:
		return "shared"
	case Subgroup:
		return "subgroup"
	case Global:
		return "global"
	case Function:
		return "function"
	case Input:
		return "input"
	case Output:
		return "output"
	case Uniform:
		return "uniform"
	case UniformConstant:
		return "uniform_constant"
	case PushConstant:
		return "push_constant"
	case External:
		return "external"
	case ProgramCode:
		return "program_code"
	default:
		return "unknown_address_space"
	}
}

// AddressSpaceInfo describes the flags attached to every address space:
// whether values in it are per-subgroup uniform in SIMT arenas, whether
// pointer arithmetic against it is meaningful, whether the target allows
// it, and whether its pointers are emulated.
type AddressSpaceInfo struct {
	Uniform    bool
	Physical   bool
	Allowed    bool
	// Emulated marks an address space whose pointers must be lowered to
	// integer arithmetic by passes.LowerLEA because
	// the backend has no native pointer representation for it.
	Emulated bool
}

// DefaultAddressSpaces returns the conventional flags for every address
// space, suitable as a starting point for a target-specific Config. Physical
// address spaces (Global, Shared, Subgroup, Private, Function, Generic)
// allow pointer arithmetic; logical ones (Input, Output, Uniform,
// UniformConstant, PushConstant, External, ProgramCode) do not.
// Subgroup-uniform spaces are those whose values are guaranteed identical
// across every invocation in a subgroup: subgroup memory, push constants,
// uniform buffers, uniform constants and program code qualify, ordinary
// global/shared memory does not because it is written per-lane.
func DefaultAddressSpaces() map[AddressSpace]AddressSpaceInfo {
	mk := func(uniform, physical, allowed bool) AddressSpaceInfo {
		return AddressSpaceInfo{Uniform: uniform, Physical: physical, Allowed: allowed}
	}
	return map[AddressSpace]AddressSpaceInfo{
		Generic:         mk(false, true, true),
		Private:         mk(false, true, true),
		Shared:          mk(false, true, true),
		Subgroup:        mk(true, true, true),
		Global:          mk(false, true, true),
		Function:        mk(false, true, true),
		Input:           mk(false, false, true),
		Output:          mk(false, false, true),
		Uniform:         mk(true, false, true),
		UniformConstant: mk(true, false, true),
		PushConstant:    mk(true, false, true),
		External:        mk(false, false, true),
		ProgramCode:     mk(true, false, true),
	}
}
