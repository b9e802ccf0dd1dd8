package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAddressSpacesCoversEveryConstant(t *testing.T) {
	spaces := DefaultAddressSpaces()
	for _, as := range []AddressSpace{
		Generic, Private, Shared, Subgroup, Global, Function,
		Input, Output, Uniform, UniformConstant, PushConstant, External, ProgramCode,
	} {
		info, ok := spaces[as]
		assert.True(t, ok, "%s missing from DefaultAddressSpaces", as)
		assert.True(t, info.Allowed, "%s should be allowed by default", as)
	}
}

func TestAddressSpacePhysicalVsLogicalPartition(t *testing.T) {
	spaces := DefaultAddressSpaces()
	physical := []AddressSpace{Generic, Private, Shared, Subgroup, Global, Function}
	logical := []AddressSpace{Input, Output, Uniform, UniformConstant, PushConstant, External, ProgramCode}

	for _, as := range physical {
		assert.True(t, spaces[as].Physical, "%s should allow pointer arithmetic", as)
	}
	for _, as := range logical {
		assert.False(t, spaces[as].Physical, "%s should not allow pointer arithmetic", as)
	}
}

func TestAddressSpaceUniformSpaces(t *testing.T) {
	spaces := DefaultAddressSpaces()
	uniform := []AddressSpace{Subgroup, Uniform, UniformConstant, PushConstant, ProgramCode}
	varying := []AddressSpace{Generic, Private, Shared, Global, Function, Input, Output, External}

	for _, as := range uniform {
		assert.True(t, spaces[as].Uniform, "%s should be subgroup-uniform", as)
	}
	for _, as := range varying {
		assert.False(t, spaces[as].Uniform, "%s should not be subgroup-uniform", as)
	}
}

func TestAddressSpaceStringNames(t *testing.T) {
	assert.Equal(t, "private", Private.String())
	assert.Equal(t, "push_constant", PushConstant.String())
	assert.Equal(t, "unknown_address_space", AddressSpace(999).String())
}
