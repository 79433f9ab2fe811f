package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"zero", 0, "$0.00"},
		{"small", 42, "$42.00"},
		{"thousands", 1234.5, "$1,234.50"},
		{"millions", 2500000, "$2,500,000.00"},
		{"negative", -42, "-$42.00"},
		{"negative thousands", -1234.5, "-$1,234.50"},
		{"nan", math.NaN(), "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(tt.value))
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"zero", 0, "0.00%"},
		{"positive", 5, "5.00%"},
		{"fraction", 1.5, "1.50%"},
		{"negative", -3.25, "-3.25%"},
		{"large", 1200, "1,200.00%"},
		{"infinite", math.Inf(1), "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentage(tt.value))
		})
	}
}

func TestSignedCurrency(t *testing.T) {
	assert.Equal(t, "+$25.00", SignedCurrency(25))
	assert.Equal(t, "-$25.00", SignedCurrency(-25))
	assert.Equal(t, "$0.00", SignedCurrency(0))
}

func TestChartColor_Cycles(t *testing.T) {
	assert.Equal(t, "#4CAF50", ChartColor(0))
	assert.Equal(t, "#2196F3", ChartColor(1))
	assert.Equal(t, "#9E9E9E", ChartColor(7))
	assert.Equal(t, ChartColor(0), ChartColor(8))
	assert.Equal(t, ChartColor(3), ChartColor(19))
}

func TestVolume(t *testing.T) {
	tests := []struct {
		vol  int64
		want string
	}{
		{0, "-"},
		{999, "999"},
		{1000, "1,000"},
		{45678901, "45,678,901"},
		{123456, "123,456"},
		{-1500, "-1,500"},
		{-999, "-999"},
		{1234567890123, "1,234,567,890,123"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Volume(tt.vol))
	}
}

func TestParseFloat(t *testing.T) {
	assert.Equal(t, 12.5, ParseFloat(" 12.5 "))
	assert.True(t, math.IsNaN(ParseFloat("abc")))
}
