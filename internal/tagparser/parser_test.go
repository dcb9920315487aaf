package tagparser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBasicMix(t *testing.T) {
	res, err := Parse("pub:everyone,flux-at-bar")
	require.NoError(t, err)
	require.Equal(t, []TagSpec{
		{Visibility: Public, Tag: "everyone"},
		{Visibility: Private, Tag: "flux-at-bar"},
	}, res.Tags)
}

func TestParsePrefixDoesNotStick(t *testing.T) {
	res, err := Parse("pub:a,b")
	require.NoError(t, err)
	require.Equal(t, []TagSpec{
		{Visibility: Public, Tag: "a"},
		{Visibility: Private, Tag: "b"},
	}, res.Tags)
}

func TestParsePointsOption(t *testing.T) {
	res, err := Parse("museum,points:3")
	require.NoError(t, err)
	require.Equal(t, 3, res.Options.MaxPoints)
	require.Equal(t, []TagSpec{{Visibility: Private, Tag: "museum"}}, res.Tags)
}

func TestParseDuplicatesCollapse(t *testing.T) {
	res, err := Parse("museum,museum,pub:museum")
	require.NoError(t, err)
	require.Equal(t, []TagSpec{
		{Visibility: Private, Tag: "museum"},
		{Visibility: Public, Tag: "museum"},
	}, res.Tags)
}

func TestParseEmptyInputGeneratesRandomPrivateTag(t *testing.T) {
	res, err := Parse("")
	require.NoError(t, err)
	require.Len(t, res.Tags, 1)
	require.Equal(t, Private, res.Tags[0].Visibility)
	require.GreaterOrEqual(t, len(res.Tags[0].Tag), 16)
}

func TestParseCaseAndWhitespace(t *testing.T) {
	res, err := Parse(" PUB:Museum , priv: FluxBar ")
	require.NoError(t, err)
	require.Equal(t, []TagSpec{
		{Visibility: Public, Tag: "museum"},
		{Visibility: Private, Tag: "fluxbar"},
	}, res.Tags)
}

func TestParseInvalidPointsValue(t *testing.T) {
	_, err := Parse("museum,points:abc")
	require.Error(t, err)
}

func TestParseSkipsEmptyItems(t *testing.T) {
	res, err := Parse("museum,,pub:bar")
	require.NoError(t, err)
	require.Len(t, res.Tags, 2)
}
