package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimit(t *testing.T) {
	limit, err := ParseLimit("", 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, limit)

	limit, err = ParseLimit("5", 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, limit)

	limit, err = ParseLimit("100", 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, limit)

	_, err = ParseLimit("101", 20, 100)
	assert.Error(t, err)

	_, err = ParseLimit("0", 20, 100)
	assert.Error(t, err)

	_, err = ParseLimit("-1", 20, 100)
	assert.Error(t, err)

	_, err = ParseLimit("ten", 20, 100)
	assert.Error(t, err)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 5))
	assert.Equal(t, "ab", TruncateRunes("abc", 2))
	assert.Equal(t, "пр", TruncateRunes("привет", 2))
	assert.Equal(t, "", TruncateRunes("", 2))
}
