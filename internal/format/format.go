// Package format turns numeric values into the display strings used across the dashboard.
package format

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// palette is cycled by index for chart slices and series.
var palette = []string{
	"#4CAF50", // green
	"#2196F3", // blue
	"#FFC107", // yellow
	"#9C27B0", // purple
	"#FF5722", // deep orange
	"#00BCD4", // cyan
	"#795548", // brown
	"#9E9E9E", // grey
}

// grouped renders the absolute value of v with two decimals and thousand separators.
func grouped(v float64) string {
	return printer.Sprint(number.Decimal(math.Abs(v), number.Scale(2)))
}

// Currency formats v as US dollars, e.g. "$1,234.50" or "-$42.00".
// NaN and infinities render as "-".
func Currency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	if v < 0 && math.Abs(v) >= 0.005 {
		return "-$" + grouped(v)
	}
	return "$" + grouped(v)
}

// Percentage formats v, already expressed in percent, with two decimals, e.g. "12.50%".
func Percentage(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	if v < 0 && math.Abs(v) >= 0.005 {
		return "-" + grouped(v) + "%"
	}
	return grouped(v) + "%"
}

// SignedCurrency formats v with an explicit sign, e.g. "+$25.00".
func SignedCurrency(v float64) string {
	if v > 0 && v >= 0.005 {
		return "+" + Currency(v)
	}
	return Currency(v)
}

// ChartColor returns the palette color for index i; the palette repeats.
func ChartColor(i int) string {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// Volume formats a volume number with thousand separators.
// Returns "-" for zero values.
func Volume(vol int64) string {
	if vol == 0 {
		return "-"
	}
	return printer.Sprint(number.Decimal(vol))
}

// ParseFloat parses s leniently, returning NaN when s is not a number.
func ParseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
