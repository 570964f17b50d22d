package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoanAmount(t *testing.T) {
	tests := []struct {
		name               string
		offerPrice         float64
		downPaymentPercent float64
		expected           float64
	}{
		{"twenty percent down", 400000, 20, 320000},
		{"all cash", 250000, 100, 0},
		{"zero down", 250000, 0, 250000},
		{"fractional percent", 500000, 3.5, 482500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, LoanAmount(tt.offerPrice, tt.downPaymentPercent), 0.001)
		})
	}
}

func TestEarnestMoney(t *testing.T) {
	tests := []struct {
		name       string
		offerPrice float64
		expected   float64
	}{
		{"round price", 400000, 4000},
		{"rounds to whole dollar", 333333, 3333},
		{"rounds up", 333350, 3334},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EarnestMoney(tt.offerPrice))
		})
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"hundreds of thousands", 450000, "$450,000"},
		{"millions", 1250000, "$1,250,000"},
		{"under a thousand", 950, "$950"},
		{"exactly a thousand", 1000, "$1,000"},
		{"zero", 0, "$0"},
		{"rounds fractional cents", 4999.6, "$5,000"},
		{"negative", -12500, "-$12,500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatUSD(tt.amount))
		})
	}
}

func TestNumberToWords(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		expected string
	}{
		{"zero", 0, "zero"},
		{"teen", 14, "fourteen"},
		{"hyphenated tens", 42, "forty-two"},
		{"even tens", 90, "ninety"},
		{"hundreds", 305, "three hundred five"},
		{"typical offer", 450000, "four hundred fifty thousand"},
		{"millions", 1200000, "one million two hundred thousand"},
		{"mixed", 1234567, "one million two hundred thirty-four thousand five hundred sixty-seven"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NumberToWords(tt.n))
		})
	}
}
