package fetchstore

import (
	"testing"
	"time"

	"github.com/aaronlmathis/gosight-server/internal/core"
	"github.com/aaronlmathis/gosight-server/internal/model"
	"github.com/aaronlmathis/gosight-server/internal/tagparser"
	"github.com/stretchr/testify/require"
)

func newTestStore(now time.Time) (*Store, *core.FixedClock) {
	clock := core.NewFixedClock(now)
	return New(core.NewIDAllocator(), clock, time.Hour, AbsoluteMaxPoints), clock
}

func TestCreateOneFetchPerTag(t *testing.T) {
	now := time.Unix(1000, 0)
	s, _ := newTestStore(now)

	res, err := s.Create([]tagparser.TagSpec{
		{Visibility: model.Public, Tag: "everyone"},
		{Visibility: model.Private, Tag: "flux-at-bar"},
	}, 0, 0, now)
	require.NoError(t, err)
	require.Len(t, res.Fetches, 2)
	require.NotEqual(t, res.Fetches[0].FetchID, res.Fetches[1].FetchID)
	require.Equal(t, 2, s.Len())
}

func TestAppendBoundsAndOrders(t *testing.T) {
	now := time.Unix(1000, 0)
	s, clock := newTestStore(now)

	res, err := s.Create([]tagparser.TagSpec{{Visibility: model.Private, Tag: "x"}}, 3, 0, now)
	require.NoError(t, err)

	for _, ts := range []int64{1, 2, 3, 4, 5} {
		clock.Advance(time.Second)
		_, err := s.Append(res.SessionID, []model.Location{{Lat: 1, Lon: 1, Time: ts}}, clock.Now())
		require.NoError(t, err)
	}

	f, ok := s.Get(res.Fetches[0].FetchID)
	require.True(t, ok)
	require.LessOrEqual(t, len(f.Points), 3)
	for i := 1; i < len(f.Points); i++ {
		require.LessOrEqual(t, f.Points[i-1].Time, f.Points[i].Time)
	}
	require.Equal(t, []int64{3, 4, 5}, pointTimes(f.Points))
}

func TestAppendDropsLateArrivals(t *testing.T) {
	now := time.Unix(1000, 0)
	s, _ := newTestStore(now)

	res, err := s.Create([]tagparser.TagSpec{{Visibility: model.Private, Tag: "x"}}, 0, 0, now)
	require.NoError(t, err)

	_, err = s.Append(res.SessionID, []model.Location{{Time: 10}}, now)
	require.NoError(t, err)

	ar, err := s.Append(res.SessionID, []model.Location{{Time: 5}}, now)
	require.NoError(t, err)
	require.Empty(t, ar.Accepted)

	f, _ := s.Get(res.Fetches[0].FetchID)
	require.Len(t, f.Points, 1)
	require.Equal(t, int64(10), f.Points[0].Time)
}

func TestAppendUnknownShare(t *testing.T) {
	s, _ := newTestStore(time.Unix(0, 0))
	_, err := s.Append("nope", nil, time.Unix(0, 0))
	require.Error(t, err)
}

func TestTickEvictsExpired(t *testing.T) {
	now := time.Unix(1000, 0)
	s, clock := newTestStore(now)

	res, err := s.Create([]tagparser.TagSpec{{Visibility: model.Private, Tag: "x"}}, 0, 0, now)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	expired := s.Tick(clock.Now())
	require.Equal(t, []uint64{res.Fetches[0].FetchID}, expired)
	require.Equal(t, 0, s.Len())
}

func TestStopExpiresSiblingsImmediately(t *testing.T) {
	now := time.Unix(1000, 0)
	s, _ := newTestStore(now)

	res, err := s.Create([]tagparser.TagSpec{
		{Visibility: model.Public, Tag: "a"},
		{Visibility: model.Private, Tag: "b"},
	}, 0, 0, now)
	require.NoError(t, err)

	removed, err := s.Stop(res.SessionID, now)
	require.NoError(t, err)
	require.Len(t, removed, 2)
	require.Equal(t, 0, s.Len())
}

func pointTimes(pts []model.Location) []int64 {
	out := make([]int64, len(pts))
	for i, p := range pts {
		out[i] = p.Time
	}
	return out
}
