package tagindex

import (
	"testing"

	"github.com/aaronlmathis/gosight-server/internal/model"
	"github.com/stretchr/testify/require"
)

func TestMatchesEmptySelectionReturnsPublicUnion(t *testing.T) {
	idx := New()
	idx.Insert(1, "everyone", model.Public)
	idx.Insert(2, "flux-at-bar", model.Private)

	got := idx.Matches(nil)
	require.Contains(t, got, uint64(1))
	require.NotContains(t, got, uint64(2))
}

func TestMatchesSelectedAlsoIncludesPublicUnion(t *testing.T) {
	idx := New()
	idx.Insert(1, "flux-at-bar", model.Private)
	idx.Insert(2, "everyone", model.Public)
	idx.Insert(3, "unrelated-private", model.Private)

	selected := map[string]struct{}{"flux-at-bar": {}}
	got := idx.Matches(selected)
	require.Contains(t, got, uint64(1)) // explicit private tag match
	require.Contains(t, got, uint64(2)) // public fetches are always visible
	require.NotContains(t, got, uint64(3))
}

func TestRemoveCleansEmptyTagBucket(t *testing.T) {
	idx := New()
	idx.Insert(1, "museum", model.Public)
	idx.Remove(1)

	require.Empty(t, idx.PublicTags())
	got := idx.Matches(nil)
	require.Empty(t, got)
}

func TestPublicTagsOnlyPublicNamespace(t *testing.T) {
	idx := New()
	idx.Insert(1, "a", model.Public)
	idx.Insert(2, "b", model.Private)

	tags := idx.PublicTags()
	require.Equal(t, []string{"a"}, tags)
}
