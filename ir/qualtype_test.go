package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualifiedInternsByUniformityAndInner(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	u1 := UniformType(a, i32)
	u2 := UniformType(a, i32)
	v1 := VaryingType(a, i32)
	assert.Same(t, u1, u2)
	assert.NotSame(t, u1, v1)
}

func TestInnerAndIsUniformUnwrap(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	q := UniformType(a, i32)
	assert.Same(t, i32, Inner(q))
	assert.True(t, IsUniform(q))
	assert.False(t, IsUniform(VaryingType(a, i32)))
}

func TestInnerPanicsOnUnqualifiedType(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	assert.Panics(t, func() { Inner(i32) })
}

func TestAsQualifiedReportsFalseForUnqualified(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	_, ok := AsQualified(i32)
	assert.False(t, ok)
	_, ok = AsQualified(UniformType(a, i32))
	assert.True(t, ok)
}

func TestMeetUniformityRequiresBoth(t *testing.T) {
	assert.True(t, MeetUniformity(true, true))
	assert.False(t, MeetUniformity(true, false))
	assert.False(t, MeetUniformity(false, false))
}

func TestQualifiedMeetTakesUniformityMeetOfOperands(t *testing.T) {
	a := newTestArena()
	i32 := IntType(a, 32, true)
	uniformLHS := UniformType(a, i32)
	varyingRHS := VaryingType(a, i32)
	result := QualifiedMeet(a, uniformLHS, varyingRHS, i32)
	assert.False(t, IsUniform(result))

	bothUniform := QualifiedMeet(a, uniformLHS, UniformType(a, i32), i32)
	assert.True(t, IsUniform(bothUniform))
}
