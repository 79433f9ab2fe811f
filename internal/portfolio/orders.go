package portfolio

import (
	"strings"
	"time"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/format"
)

// NotFilled is shown in place of a price for orders without fills.
const NotFilled = "Not filled"

// DateLayout formats order and info timestamps.
const DateLayout = "Jan 2, 2006 15:04"

// OrderRow is one formatted line of the orders list.
type OrderRow struct {
	ID        string
	Symbol    string
	Status    string
	TypeSide  string
	Quantity  string
	Price     string
	Submitted string
	Filled    string
}

// OrderRows formats orders for display. An order with a fill quantity shows
// it as filled/qty; an order without an average fill price shows NotFilled.
func OrderRows(orders []api.Order, loc *time.Location) []OrderRow {
	rows := make([]OrderRow, len(orders))
	for i, o := range orders {
		row := OrderRow{
			ID:        o.ID,
			Symbol:    o.Symbol,
			Status:    o.Status,
			TypeSide:  strings.TrimSpace(o.Type + " " + o.Side),
			Quantity:  o.Qty.String(),
			Price:     NotFilled,
			Submitted: FormatTimestamp(o.SubmittedAt, loc),
		}
		if !o.FilledQty.IsZero() {
			row.Quantity = o.FilledQty.String() + "/" + o.Qty.String()
		}
		if o.FilledAvgPrice.Valid && !o.FilledAvgPrice.Decimal.IsZero() {
			row.Price = format.Currency(o.FilledAvgPrice.Decimal.InexactFloat64())
		}
		if o.FilledAt != "" {
			row.Filled = FormatTimestamp(o.FilledAt, loc)
		}
		rows[i] = row
	}
	return rows
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTimestamp parses the timestamp formats the backend emits.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders s in loc using DateLayout. Unparseable input is
// returned unchanged.
func FormatTimestamp(s string, loc *time.Location) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}
