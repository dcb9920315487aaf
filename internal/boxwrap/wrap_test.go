package boxwrap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentityPassesThrough(t *testing.T) {
	w := Identity()
	lat, lon := w.Wrap(59.4370, 24.7536)
	require.Equal(t, 59.4370, lat)
	require.Equal(t, 24.7536, lon)
}

func TestWrapStaysInBox(t *testing.T) {
	box, err := Parse("59.4,24.7,59.5,24.8")
	require.NoError(t, err)
	w := New(box)

	lat, lon := w.Wrap(0, 0)
	require.GreaterOrEqual(t, lat, 59.4)
	require.Less(t, lat, 59.5)
	require.GreaterOrEqual(t, lon, 24.7)
	require.Less(t, lon, 24.8)
}

func TestWrapNegativeInput(t *testing.T) {
	box, err := Parse("0,0,10,10")
	require.NoError(t, err)
	w := New(box)

	lat, lon := w.Wrap(-3, -25)
	require.GreaterOrEqual(t, lat, 0.0)
	require.Less(t, lat, 10.0)
	require.GreaterOrEqual(t, lon, 0.0)
	require.Less(t, lon, 10.0)
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse("1,2,3")
	require.Error(t, err)

	_, err = Parse("a,b,c,d")
	require.Error(t, err)
}
