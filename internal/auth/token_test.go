package auth

import (
	"testing"
	"time"

	"github.com/aaronlmathis/gosight-server/internal/core"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreIssueAndConsume(t *testing.T) {
	clock := core.NewFixedClock(time.Unix(1_700_000_000, 0))
	ts := NewTokenStore(clock)

	tok, err := ts.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	user, err := ts.Consume(tok)
	require.NoError(t, err)
	require.Equal(t, "alice", user)

	// Not single-use: a second Consume within the TTL still succeeds.
	user, err = ts.Consume(tok)
	require.NoError(t, err)
	require.Equal(t, "alice", user)
}

func TestTokenStoreConsumeUnknown(t *testing.T) {
	clock := core.NewFixedClock(time.Unix(0, 0))
	ts := NewTokenStore(clock)

	_, err := ts.Consume("nonexistent")
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenStoreExpiry(t *testing.T) {
	clock := core.NewFixedClock(time.Unix(0, 0))
	ts := NewTokenStore(clock)

	tok, err := ts.Issue("bob")
	require.NoError(t, err)

	clock.Advance(TokenTTL + time.Second)
	_, err = ts.Consume(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenStoreSweepRemovesExpired(t *testing.T) {
	clock := core.NewFixedClock(time.Unix(0, 0))
	ts := NewTokenStore(clock)

	tok, err := ts.Issue("carol")
	require.NoError(t, err)

	clock.Advance(TokenTTL + time.Second)
	ts.Sweep(clock.Now())

	ts.mu.Lock()
	_, exists := ts.tokens[tok]
	ts.mu.Unlock()
	require.False(t, exists)
}
