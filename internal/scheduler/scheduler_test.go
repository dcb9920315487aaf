package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/aaronlmathis/gosight-server/internal/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type countingTicker struct {
	ticks int
}

func (c *countingTicker) Tick(now time.Time) { c.ticks++ }

func TestSchedulerTicksUntilCancelled(t *testing.T) {
	clock := core.NewFixedClock(time.Unix(0, 0))
	ticker := &countingTicker{}
	s := New(clock, 5*time.Millisecond, zerolog.Nop(), ticker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	require.Greater(t, ticker.ticks, 0)
}

func TestSchedulerTicksAllTargets(t *testing.T) {
	clock := core.NewFixedClock(time.Unix(0, 0))
	a := &countingTicker{}
	var bTicks int
	b := TickerFunc(func(now time.Time) { bTicks++ })
	s := New(clock, 5*time.Millisecond, zerolog.Nop(), a, b)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	require.Greater(t, a.ticks, 0)
	require.Greater(t, bTicks, 0)
	require.Equal(t, a.ticks, bTicks)
}
