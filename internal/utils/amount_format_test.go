package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tallyfin/tally/internal/utils"
)

func TestFormatMinorUnits(t *testing.T) {
	tests := []struct {
		name      string
		amount    int64
		precision int
		want      string
	}{
		{name: "positive with cents", amount: 12345, precision: 2, want: "123.45"},
		{name: "negative below one unit", amount: -30, precision: 2, want: "-0.30"},
		{name: "zero precision", amount: 500, precision: 0, want: "500"},
		{name: "zero amount", amount: 0, precision: 2, want: "0.00"},
		{name: "high precision", amount: 1, precision: 8, want: "0.00000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.FormatMinorUnits(tt.amount, tt.precision))
		})
	}
}
