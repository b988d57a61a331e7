package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListValue(t *testing.T) {
	v, err := StringList{"tacos", "guac"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["tacos","guac"]`, v)

	v, err = StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestStringListScan(t *testing.T) {
	cases := []struct {
		name string
		src  any
		want StringList
	}{
		{"json array", `["a","b"]`, StringList{"a", "b"}},
		{"bytes", []byte(`["a"]`), StringList{"a"}},
		{"empty array", `[]`, StringList{}},
		{"quoted scalar", `"spaghetti"`, StringList{"spaghetti"}},
		{"bare scalar", `spaghetti`, StringList{"spaghetti"}},
		{"empty string", ``, nil},
		{"nil", nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var l StringList
			require.NoError(t, l.Scan(tc.src))
			assert.Equal(t, tc.want, l)
		})
	}
}

func TestStringListScanRejectsOddTypes(t *testing.T) {
	var l StringList
	assert.Error(t, l.Scan(42))
}

func TestContentTypeValid(t *testing.T) {
	assert.True(t, ContentMovieMonday.Valid())
	assert.True(t, ContentWatchlist.Valid())
	assert.True(t, ContentMovie.Valid())
	assert.False(t, ContentType("playlist").Valid())
}
