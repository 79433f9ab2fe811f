package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/chart"
	"github.com/finassist/fin/internal/format"
)

// MinMarketValue is the smallest market value a position needs to be listed.
var MinMarketValue = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// FilterPositions drops positions worth MinMarketValue or less.
func FilterPositions(positions []api.Position) []api.Position {
	out := make([]api.Position, 0, len(positions))
	for _, p := range positions {
		if p.MarketValue.GreaterThan(MinMarketValue) {
			out = append(out, p)
		}
	}
	return out
}

// PositionRow is one formatted line of the positions list.
type PositionRow struct {
	Symbol       string
	Qty          string
	MarketValue  string
	PL           string
	PLPercent    string
	CurrentPrice string
	AvgEntry     string
	Gain         bool
}

// PositionRows formats positions for display. Quantities keep eight decimals
// so fractional holdings stay exact.
func PositionRows(positions []api.Position) []PositionRow {
	rows := make([]PositionRow, len(positions))
	for i, p := range positions {
		rows[i] = PositionRow{
			Symbol:       p.Symbol,
			Qty:          p.Qty.StringFixed(8),
			MarketValue:  format.Currency(p.MarketValue.InexactFloat64()),
			PL:           format.Currency(p.UnrealizedPL.InexactFloat64()),
			PLPercent:    format.Percentage(p.UnrealizedPLPC.InexactFloat64()),
			CurrentPrice: format.Currency(p.CurrentPrice.InexactFloat64()),
			AvgEntry:     format.Currency(p.AvgEntryPrice.InexactFloat64()),
			Gain:         !p.UnrealizedPL.IsNegative(),
		}
	}
	return rows
}

// Slice is one pie slice of the allocation chart.
type Slice struct {
	Symbol  string
	Value   decimal.Decimal
	Percent decimal.Decimal
	Color   string
}

// PieSlices sorts positions by market value, largest first, and computes
// each slice's share of the total with two decimals. Shares are rounded with
// the largest-remainder method so they always add up to exactly 100.
// A zero total yields no slices.
func PieSlices(positions []api.Position) []Slice {
	sorted := make([]api.Position, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MarketValue.GreaterThan(sorted[j].MarketValue)
	})

	total := decimal.Zero
	for _, p := range sorted {
		total = total.Add(p.MarketValue)
	}
	if !total.IsPositive() {
		return nil
	}

	slices := make([]Slice, len(sorted))
	remainders := make([]decimal.Decimal, len(sorted))
	assigned := decimal.Zero
	for i, p := range sorted {
		exact := p.MarketValue.Mul(hundred).DivRound(total, 16)
		floor := exact.Truncate(2)
		slices[i] = Slice{
			Symbol:  p.Symbol,
			Value:   p.MarketValue,
			Percent: floor,
			Color:   format.ChartColor(i),
		}
		remainders[i] = exact.Sub(floor)
		assigned = assigned.Add(floor)
	}

	cent := decimal.New(1, -2)
	left := hundred.Sub(assigned).Div(cent).IntPart()
	order := make([]int, len(slices))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})
	for k := 0; k < int(left) && k < len(order); k++ {
		i := order[k]
		slices[i].Percent = slices[i].Percent.Add(cent)
	}
	return slices
}

// AllocationChart builds the "Portfolio Allocation" pie chart for slices.
func AllocationChart(slices []Slice) chart.Config {
	labels := make([]string, len(slices))
	values := make([]float64, len(slices))
	colors := make([]string, len(slices))
	shares := make([]float64, len(slices))
	for i, s := range slices {
		labels[i] = s.Symbol
		values[i] = s.Value.InexactFloat64()
		colors[i] = s.Color
		shares[i] = s.Percent.InexactFloat64()
	}
	return chart.Pie(chart.Data{Labels: labels, Values: values, Colors: colors, Shares: shares}, chart.Options{
		Title:          "Portfolio Allocation",
		LegendPosition: "right",
	})
}
