package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, st := range Ordered {
		got, err := ParseStatus(string(st))
		require.NoError(t, err, st)
		assert.Equal(t, st, got)
	}
	_, err := ParseStatus("received")
	assert.Error(t, err, "lowercase status")
}

func TestOrderedHasTenStatusesWithTwoTerminals(t *testing.T) {
	require.Len(t, Ordered, 10)
	terminal := 0
	for i, info := range Describe() {
		assert.Equal(t, i, info.Position)
		if info.Terminal {
			terminal++
		}
	}
	assert.Equal(t, 2, terminal)
	assert.Equal(t, 8, StatusCompleted.Position())
	assert.Equal(t, -1, Status("nope").Position())
}
