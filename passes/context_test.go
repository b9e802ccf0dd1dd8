package passes_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/passes"
)

func TestNewContextCarriesConfig(t *testing.T) {
	cfg := arena.Config{CheckTypes: true, SubgroupSize: 32}
	ctx := passes.NewContext(cfg)
	require.Equal(t, cfg, ctx.Config)
	assert.Empty(t, ctx.Errors)
}

func TestContextNewArenaUsesStoredConfig(t *testing.T) {
	ctx := passes.NewContext(arena.Config{SubgroupSize: 16})
	a := ctx.NewArena()
	require.NotNil(t, a)
}

func TestContextFailRecordsErrorAndReturnsNonNil(t *testing.T) {
	ctx := passes.NewContext(arena.Config{})
	err := ctx.Fail("somepass", "somenode", errors.New("boom"))
	require.Error(t, err)
	assert.Len(t, ctx.Errors, 1)
	assert.Contains(t, ctx.Errors.Error(), "boom")
}

func TestContextFailAccumulatesAcrossCalls(t *testing.T) {
	ctx := passes.NewContext(arena.Config{})
	_ = ctx.Fail("pass-a", "node-a", errors.New("first"))
	err := ctx.Fail("pass-b", "node-b", errors.New("second"))
	require.Error(t, err)
	assert.Len(t, ctx.Errors, 2)
}
