package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusReserved, StatusDelivered, true},
		{StatusReserved, StatusCancelled, true},
		{StatusDelivered, StatusCancelled, true},
		{StatusDelivered, StatusReserved, false},
		{StatusCancelled, StatusReserved, false},
		{StatusCancelled, StatusDelivered, false},
		// repeating the current status is a legal no-op
		{StatusReserved, StatusReserved, true},
		{StatusDelivered, StatusDelivered, true},
		{StatusCancelled, StatusCancelled, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Reserved")
	require.NoError(t, err)
	assert.Equal(t, StatusReserved, s)

	_, err = ParseStatus("Shipped")
	require.ErrorIs(t, err, ErrInvalidTransition)
}
