package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscore/internal/core/value"
)

func TestFlagString(t *testing.T) {
	assert.Equal(t, "INIT|UPDATE", (FlagInit | FlagUpdate).String())
	assert.Equal(t, "NONE", FlagNone.String())
	assert.Equal(t, "CUSTOM|0x100", (FlagCustom | Flag(0x100)).String())
}

func TestFlagHas(t *testing.T) {
	mask := FlagInit | FlagUpdate
	assert.True(t, mask.Has(FlagInit))
	assert.True(t, mask.Has(FlagInit|FlagUpdate))
	assert.False(t, mask.Has(FlagRespawn))
	assert.False(t, mask.Has(FlagUpdate|FlagRespawn))
	assert.False(t, mask.Has(FlagNone))
}

func TestParseFlag(t *testing.T) {
	f, err := ParseFlag("init | Update|LEAVE_AREA")
	require.NoError(t, err)
	assert.Equal(t, FlagInit|FlagUpdate|FlagLeaveArea, f)

	f, err = ParseFlag("none")
	require.NoError(t, err)
	assert.Equal(t, FlagNone, f)

	_, err = ParseFlag("INIT|TELEPORT")
	assert.Error(t, err)
}

func TestWithFrameTimeCopiesData(t *testing.T) {
	original := Custom("hit", map[string]value.Value{"damage": value.Int(3)})
	stamped := original.WithFrameTime(0.016)

	assert.InDelta(t, 0.016, stamped.FrameTime(), 1e-9)
	_, ok := original.Get(FrameTimeKey)
	assert.False(t, ok)

	damage, ok := stamped.Get("damage")
	require.True(t, ok)
	assert.True(t, value.Equal(value.Int(3), damage))
	assert.Equal(t, "CUSTOM(hit)", stamped.String())
}

func TestFrameTimeAbsent(t *testing.T) {
	assert.Equal(t, 0.0, New(FlagUpdate).FrameTime())
}
