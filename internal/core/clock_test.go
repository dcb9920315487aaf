package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFixedClockAdvance(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewFixedClock(start)
	require.Equal(t, start, c.Now())

	c.Advance(10 * time.Second)
	require.Equal(t, start.Add(10*time.Second), c.Now())
}

func TestIDAllocatorMonotonic(t *testing.T) {
	a := NewIDAllocator()
	first := a.Next()
	second := a.Next()
	require.Less(t, first, second)
}

func TestRandomTokenLength(t *testing.T) {
	tok, err := RandomToken(12)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(tok), 16)
}
