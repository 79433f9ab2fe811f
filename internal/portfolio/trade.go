package portfolio

import (
	"strconv"
	"strings"

	"github.com/finassist/fin/internal/api"
)

// Trade form field names.
const (
	FieldSymbol     = "symbol"
	FieldQty        = "qty"
	FieldSide       = "side"
	FieldType       = "type"
	FieldLimitPrice = "limit_price"
	FieldStopPrice  = "stop_price"
)

// Trade result messages.
const (
	TradeSuccessMessage = "Order placed successfully"
	tradeErrorPrefix    = "Error placing order: "
)

// TradeForm holds the raw text of the trade form.
type TradeForm struct {
	Symbol     string
	Qty        string
	Side       string
	Type       string
	LimitPrice string
	StopPrice  string
}

// VisibleFields returns the fields shown for the form's order type. Stop
// price comes before limit price for stop-limit orders.
func (f TradeForm) VisibleFields() []string {
	fields := []string{FieldSymbol, FieldQty, FieldSide, FieldType}
	if api.NeedsStopPrice(f.Type) {
		fields = append(fields, FieldStopPrice)
	}
	if api.NeedsLimitPrice(f.Type) {
		fields = append(fields, FieldLimitPrice)
	}
	return fields
}

// BuildTradeRequest converts the form into an order and validates it. The
// returned error is a *api.TradeValidationError carrying the message to show.
// Prices are only read for order types that use them.
func BuildTradeRequest(f TradeForm) (api.TradeOrderRequest, error) {
	symbol := strings.ToUpper(strings.TrimSpace(f.Symbol))
	qty := strings.TrimSpace(f.Qty)
	side := strings.ToLower(strings.TrimSpace(f.Side))
	orderType := strings.ToLower(strings.TrimSpace(f.Type))

	if symbol == "" || qty == "" || side == "" || orderType == "" {
		return api.TradeOrderRequest{}, &api.TradeValidationError{Message: "Please fill in all required fields"}
	}

	q, err := strconv.ParseFloat(qty, 64)
	if err != nil {
		return api.TradeOrderRequest{}, &api.TradeValidationError{Message: "Please enter a valid quantity"}
	}

	req := api.TradeOrderRequest{Symbol: symbol, Qty: q, Side: side, Type: orderType}
	if api.NeedsLimitPrice(orderType) {
		req.LimitPrice = parsePrice(f.LimitPrice)
	}
	if api.NeedsStopPrice(orderType) {
		req.StopPrice = parsePrice(f.StopPrice)
	}
	if err := req.Validate(); err != nil {
		return api.TradeOrderRequest{}, err
	}
	return req, nil
}

func parsePrice(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// FormFromAction prefills the trade form from a place_order action payload.
func FormFromAction(d api.PlaceOrderData) TradeForm {
	f := TradeForm{
		Symbol: strings.ToUpper(d.Symbol),
		Side:   strings.ToLower(d.Side),
		Type:   strings.ToLower(d.Type),
	}
	if f.Type == "" {
		f.Type = api.OrderTypeMarket
	}
	if d.Qty.Valid {
		f.Qty = d.Qty.Decimal.String()
	}
	if d.LimitPrice.Valid {
		f.LimitPrice = d.LimitPrice.Decimal.String()
	}
	if d.StopPrice.Valid {
		f.StopPrice = d.StopPrice.Decimal.String()
	}
	return f
}

// TradeErrorMessage formats a failed order submission.
func TradeErrorMessage(err error) string {
	return tradeErrorPrefix + err.Error()
}
