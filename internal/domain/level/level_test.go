package level

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDefaults(t *testing.T, rt RoleType) []Level {
	t.Helper()
	levels, err := DefaultLevels(rt)
	require.NoError(t, err)
	return levels
}

func TestDefaultLevels(t *testing.T) {
	ic := mustDefaults(t, RoleTypeIC)
	require.Len(t, ic, 5)
	assert.Equal(t, "p1_entry", ic[0].Key)
	assert.Equal(t, "P5 Principal", ic[4].Label)

	mgmt := mustDefaults(t, RoleTypeManagement)
	require.Len(t, mgmt, 4)
	assert.Equal(t, "m1", ShortCode(mgmt[0].Key))

	for i, l := range ic {
		assert.Equal(t, i, l.OrderIndex)
		assert.NotEmpty(t, l.Description)
	}

	_, err := DefaultLevels("contractor")
	assert.True(t, errors.Is(err, ErrUnknownRoleType))
}

func TestDefaultLevels_ReturnsCopy(t *testing.T) {
	a := mustDefaults(t, RoleTypeIC)
	a[0].Label = "changed"
	b := mustDefaults(t, RoleTypeIC)
	assert.Equal(t, "P1 Entry", b[0].Label)
}

func TestParseRoleType(t *testing.T) {
	rt, err := ParseRoleType(" Management ")
	require.NoError(t, err)
	assert.Equal(t, RoleTypeManagement, rt)

	_, err = ParseRoleType("")
	assert.ErrorIs(t, err, ErrUnknownRoleType)
}

func TestNavigation(t *testing.T) {
	ic := mustDefaults(t, RoleTypeIC)

	below, ok := Below(ic, "p3_career")
	require.True(t, ok)
	assert.Equal(t, "p2_developing", below.Key)

	above, ok := Above(ic, "p3_career")
	require.True(t, ok)
	assert.Equal(t, "p4_advanced", above.Key)

	_, ok = Below(ic, "p1_entry")
	assert.False(t, ok)
	_, ok = Above(ic, "p5_principal")
	assert.False(t, ok)
	_, ok = Above(ic, "nope")
	assert.False(t, ok)
}

func TestNavigation_ClampsByN(t *testing.T) {
	ic := mustDefaults(t, RoleTypeIC)

	top, ok := NAbove(ic, "p5_principal", 10)
	require.True(t, ok)
	assert.Equal(t, "p5_principal", top.Key)

	bottom, ok := NBelow(ic, "p2_developing", 7)
	require.True(t, ok)
	assert.Equal(t, "p1_entry", bottom.Key)

	two, ok := NAbove(ic, "p1_entry", 2)
	require.True(t, ok)
	assert.Equal(t, "p3_career", two.Key)

	same, ok := NBelow(ic, "p3_career", -3)
	require.True(t, ok)
	assert.Equal(t, "p3_career", same.Key)

	_, ok = NAbove(ic, "missing", 1)
	assert.False(t, ok)

	for _, l := range ic {
		for n := 0; n < 8; n++ {
			up, ok := NAbove(ic, l.Key, n)
			require.True(t, ok)
			_, known := Find(ic, up.Key)
			assert.True(t, known)
			down, ok := NBelow(ic, l.Key, n)
			require.True(t, ok)
			_, known = Find(ic, down.Key)
			assert.True(t, known)
		}
	}
}

func TestNavigation_UsesOrderIndexNotSliceOrder(t *testing.T) {
	levels := []Level{
		{Key: "c", OrderIndex: 20},
		{Key: "a", OrderIndex: 0},
		{Key: "b", OrderIndex: 7},
	}
	next, ok := Above(levels, "a")
	require.True(t, ok)
	assert.Equal(t, "b", next.Key)

	prev, ok := Below(levels, "c")
	require.True(t, ok)
	assert.Equal(t, "b", prev.Key)
}

func TestBaseScore(t *testing.T) {
	ic := mustDefaults(t, RoleTypeIC)
	prev := 0
	for _, l := range ic {
		s := BaseScore(ic, l.Key)
		assert.Equal(t, (l.OrderIndex+1)*2, s)
		assert.Greater(t, s, prev)
		prev = s
	}
	assert.Equal(t, 4, BaseScore(ic, "unknown"))
	assert.Equal(t, []int{2, 4, 6, 8, 10}, ScoreScale(ic))
}

func TestMaxChartScale(t *testing.T) {
	ic := mustDefaults(t, RoleTypeIC)

	assert.Equal(t, 6, MaxChartScale(ic, nil))
	assert.Equal(t, 6, MaxChartScale(ic, []string{"p1_entry"}))
	assert.Equal(t, 10, MaxChartScale(ic, []string{"p1_entry", "p3_career"}))
	assert.Equal(t, 14, MaxChartScale(ic, []string{"p5_principal", "p2_developing"}))
	assert.Equal(t, 8, MaxChartScale(ic, []string{"ghost"}))
}

func TestKeyMapping(t *testing.T) {
	for _, legacy := range LegacyKeys() {
		newKey, ok := LegacyToNew(legacy)
		require.True(t, ok)
		back, ok := NewToLegacy(newKey)
		require.True(t, ok)
		assert.Equal(t, legacy, back)
		assert.True(t, IsLegacyKey(legacy))
		assert.False(t, IsLegacyKey(newKey))
	}

	k, ok := MapKey("senior")
	require.True(t, ok)
	assert.Equal(t, "p3_career", k)

	k, ok = MapKey("p4_advanced")
	require.True(t, ok)
	assert.Equal(t, "lead", k)

	_, ok = MapKey("m1_manager")
	assert.False(t, ok)
}
