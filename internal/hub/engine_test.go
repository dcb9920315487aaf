package hub

import (
	"testing"
	"time"

	"github.com/aaronlmathis/gosight-server/internal/core"
	"github.com/aaronlmathis/gosight-server/internal/model"
	"github.com/aaronlmathis/gosight-server/internal/tagparser"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestEngine(now time.Time) (*Engine, *core.FixedClock) {
	clock := core.NewFixedClock(now)
	cfg := DefaultConfig()
	cfg.DefaultTTL = 10 * time.Second
	return New(clock, cfg, zerolog.Nop()), clock
}

func drainChanges(t *testing.T, e *Engine, subID string) []model.UpdateChange {
	t.Helper()
	upd, ok := e.Drain(subID)
	require.True(t, ok)
	return upd.Changes
}

func TestCreatePostExpireScenario(t *testing.T) {
	now := time.Unix(1000, 0)
	e, clock := newTestEngine(now)

	sub := e.Subscribe("sub1", "alice", nil)
	// Initial snapshot with nothing live yet: no pending changes.
	_, ok := e.Drain(sub.ID)
	require.False(t, ok)

	res, err := e.CreateFetch([]tagparser.TagSpec{{Visibility: model.Public, Tag: "museum"}}, 0, 10*time.Second)
	require.NoError(t, err)

	changes := drainChanges(t, e, sub.ID)
	require.Len(t, changes, 1)
	require.Equal(t, model.ChangeAddFetch, changes[0].Kind)
	require.Contains(t, changes[0].AddFetch.Public, "museum")

	_, err = e.AppendPoints(res.SessionID, []model.Location{{Lat: 59.4370, Lon: 24.7536, Time: 1000}})
	require.NoError(t, err)

	changes = drainChanges(t, e, sub.ID)
	require.Len(t, changes, 1)
	require.Equal(t, model.ChangeAddPoints, changes[0].Kind)

	clock.Advance(11 * time.Second)
	e.Tick(clock.Now())

	changes = drainChanges(t, e, sub.ID)
	require.Len(t, changes, 1)
	require.Equal(t, model.ChangeExpireFetch, changes[0].Kind)
}

func TestPrivateIsolation(t *testing.T) {
	now := time.Unix(1000, 0)
	e, _ := newTestEngine(now)

	subAll := e.Subscribe("all", "", nil)
	subFlux := e.Subscribe("flux", "", []string{"flux-at-bar"})
	subNobody := e.Subscribe("nobody", "", []string{"nobody"})

	_, err := e.CreateFetch([]tagparser.TagSpec{{Visibility: model.Private, Tag: "flux-at-bar"}}, 0, 0)
	require.NoError(t, err)
	_, err = e.CreateFetch([]tagparser.TagSpec{{Visibility: model.Public, Tag: "everyone"}}, 0, 0)
	require.NoError(t, err)

	allChanges := collectAllChanges(e, subAll.ID)
	fluxChanges := collectAllChanges(e, subFlux.ID)
	nobodyChanges := collectAllChanges(e, subNobody.ID)

	require.Equal(t, 1, countVisibleFetches(allChanges))  // only "everyone"
	require.Equal(t, 2, countVisibleFetches(fluxChanges)) // both match
	require.Equal(t, 1, countVisibleFetches(nobodyChanges)) // public union still delivered
}

func TestReconnectWithBroaderFilterSnapshots(t *testing.T) {
	now := time.Unix(1000, 0)
	e, _ := newTestEngine(now)

	_, err := e.CreateFetch([]tagparser.TagSpec{{Visibility: model.Private, Tag: "a"}}, 0, 0)
	require.NoError(t, err)

	sub1 := e.Subscribe("s1", "", []string{"a"})
	changes1 := collectAllChanges(e, sub1.ID)
	require.Equal(t, 1, countVisibleFetches(changes1))
	e.Unsubscribe(sub1.ID)

	_, err = e.CreateFetch([]tagparser.TagSpec{{Visibility: model.Private, Tag: "b"}}, 0, 0)
	require.NoError(t, err)

	sub2 := e.Subscribe("s2", "", []string{"a", "b"})
	changes2 := collectAllChanges(e, sub2.ID)
	require.True(t, hasReset(changes2))
	require.Equal(t, 2, countVisibleFetches(changes2))
}

func TestTrimObservedBySubscriber(t *testing.T) {
	now := time.Unix(1000, 0)
	e, clock := newTestEngine(now)

	sub := e.Subscribe("s1", "", nil)
	res, err := e.CreateFetch([]tagparser.TagSpec{{Visibility: model.Public, Tag: "x"}}, 3, 0)
	require.NoError(t, err)
	_, _ = e.Drain(sub.ID)

	for _, ts := range []int64{1, 2, 3, 4, 5} {
		clock.Advance(time.Second)
		_, err := e.AppendPoints(res.SessionID, []model.Location{{Time: ts}})
		require.NoError(t, err)
	}

	changes := drainChanges(t, e, sub.ID)
	require.Len(t, changes, 1)
	pts := changes[0].AddPoints.Points[res.Fetches[0].FetchID]
	require.Len(t, pts, 3)
	require.Equal(t, int64(3), pts[0].Time)
	require.Equal(t, int64(5), pts[2].Time)
}

func collectAllChanges(e *Engine, subID string) []model.UpdateChange {
	var all []model.UpdateChange
	if upd, ok := e.Drain(subID); ok {
		all = append(all, upd.Changes...)
	}
	return all
}

func countVisibleFetches(changes []model.UpdateChange) int {
	seen := make(map[uint64]struct{})
	for _, c := range changes {
		if c.Kind == model.ChangeAddFetch {
			for id := range c.AddFetch.Tags {
				seen[id] = struct{}{}
			}
		}
	}
	return len(seen)
}

func hasReset(changes []model.UpdateChange) bool {
	for _, c := range changes {
		if c.Kind == model.ChangeReset {
			return true
		}
	}
	return false
}
