package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSwapsReversedBounds(t *testing.T) {
	assert.Equal(t, Interval{Low: 1, High: 5}, New(5, 1))
	assert.Equal(t, Interval{Low: 1, High: 5}, New(1, 5))
}

func TestContains(t *testing.T) {
	testCases := []struct {
		name     string
		i        Interval
		value    int
		expected bool
	}{
		{name: "inside", i: New(10, 20), value: 15, expected: true},
		{name: "low bound inclusive", i: New(10, 20), value: 10, expected: true},
		{name: "high bound inclusive", i: New(10, 20), value: 20, expected: true},
		{name: "below", i: New(10, 20), value: 9, expected: false},
		{name: "above", i: New(10, 20), value: 21, expected: false},
		{name: "degenerate interval", i: New(7, 7), value: 7, expected: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.i.Contains(tc.value))
		})
	}
}

func TestClamp(t *testing.T) {
	i := New(0, 100)
	assert.Equal(t, 0, i.Clamp(-5))
	assert.Equal(t, 100, i.Clamp(250))
	assert.Equal(t, 42, i.Clamp(42))
}
