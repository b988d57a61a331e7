package slug

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Film Club", "film-club"},
		{"  Neo Noir!  ", "neo-noir"},
		{"Already-Slugged", "already-slugged"},
		{"Movie   Night  2025", "movie-night-2025"},
		{"***", ""},
		{"Café & Cinéma", "café-cinéma"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Make(tc.in), "Make(%q)", tc.in)
	}
}

func TestUniqueFirstTry(t *testing.T) {
	got, err := Unique("Film Club", func(string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, "film-club", got)
}

func TestUniqueAppendsSuffix(t *testing.T) {
	taken := map[string]bool{"film-club": true, "film-club-1": true}
	calls := 0
	got, err := Unique("Film Club", func(s string) (bool, error) {
		calls++
		return taken[s], nil
	})
	require.NoError(t, err)
	assert.Equal(t, "film-club-2", got)
	assert.Equal(t, 3, calls)
}

func TestUniqueEmptyNameFallsBack(t *testing.T) {
	got, err := Unique("!!!", func(string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, "untitled", got)
}

func TestUniquePropagatesError(t *testing.T) {
	boom := errors.New("db down")
	_, err := Unique("Film Club", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
