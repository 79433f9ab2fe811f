package portfolio

import (
	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/format"
)

// Card is a labelled indicator value.
type Card struct {
	Label    string
	Value    string
	Negative bool
}

// AnalysisCards formats the indicators of a symbol analysis. Missing values
// render as "-".
func AnalysisCards(a *api.AnalysisResponse) []Card {
	if a == nil {
		return nil
	}
	price, change, volume := "-", "-", "-"
	var negative bool
	if a.CurrentPrice.Valid {
		price = format.Currency(a.CurrentPrice.Decimal.InexactFloat64())
	}
	if c := a.Indicators.Change24h; c.Valid {
		change = format.Percentage(c.Decimal.InexactFloat64())
		negative = c.Decimal.IsNegative()
	}
	if v := a.Indicators.Volume; v.Valid {
		volume = format.Volume(v.Decimal.IntPart())
	}
	return []Card{
		{Label: "Current Price", Value: price},
		{Label: "24h Change", Value: change, Negative: negative},
		{Label: "Volume", Value: volume},
	}
}
