package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPtr(t *testing.T) {
	s := ToPtr("2024-01-15")
	assert.Equal(t, "2024-01-15", *s)

	n := ToPtr(42)
	assert.Equal(t, 42, *n)
}

func TestRound2(t *testing.T) {
	tests := map[string]struct {
		in   float64
		want float64
	}{
		"rounds up":            {2.506, 2.51},
		"rounds down":          {2.504, 2.50},
		"negative value":       {-1.005, -1.0},
		"already two decimals": {3.14, 3.14},
		"zero":                 {0, 0},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Round2(tt.in), 1e-9)
		})
	}
}
