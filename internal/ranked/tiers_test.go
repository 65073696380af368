package ranked

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	testCases := []struct {
		name     string
		rating   int
		expected Tier
	}{
		{name: "floor of the table", rating: 0, expected: TierTin},
		{name: "top of tin", rating: 909, expected: TierTin},
		{name: "bottom of bronze", rating: 910, expected: TierBronze},
		{name: "mid silver", rating: 1200, expected: TierSilver},
		{name: "top of gold", rating: 1679, expected: TierGold},
		{name: "platinum", rating: 1800, expected: TierPlatinum},
		{name: "diamond", rating: 2100, expected: TierDiamond},
		{name: "below the table clamps to tin", rating: -50, expected: TierTin},
		{name: "above the table clamps to diamond", rating: 9999, expected: TierDiamond},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, TierFor(tc.rating))
		})
	}
}
