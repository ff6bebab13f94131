package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	for _, tc := range []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"v1.2.3", "1.2.3", 0},
		{"1.10.0", "1.9.9", 1},
		{"0.1.0", "0.1.1", -1},
		{"2.0.0", "10.0.0", -1},
	} {
		got, err := Compare(tc.a, tc.b)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s vs %s", tc.a, tc.b)
	}

	_, err := Compare("one", "1.0.0")
	assert.Error(t, err)
}

func TestSatisfies(t *testing.T) {
	ok, err := Satisfies("0.2.0", "0.1.5")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Satisfies("0.1.0", "v0.1.0")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Satisfies("0.1.0", "1.0.0")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Satisfies("0.1.0", "latest")
	assert.Error(t, err)
}
