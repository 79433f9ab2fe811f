package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// Envelope
// =============================================================================

// Envelope carries the application-level error every endpoint may embed in
// an otherwise successful response.
type Envelope struct {
	Error string `json:"error,omitempty"`
}

func (e Envelope) appError() error {
	if e.Error != "" {
		return &AppError{Message: e.Error}
	}
	return nil
}

// =============================================================================
// Chat Types
// =============================================================================

// InitMessage asks the assistant for its greeting.
const InitMessage = "__init__"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// Attachment is a file produced by the assistant, base64 encoded.
type Attachment struct {
	Data        string `json:"data"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// Action asks the dashboard to react to a chat answer, e.g. by showing a tool.
type Action struct {
	Type string          `json:"type" validate:"required"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Action types sent by the assistant.
const (
	ActionShowPositions       = "show_positions"
	ActionShowOrders          = "show_orders"
	ActionShowTrade           = "show_trade"
	ActionShowAnalysis        = "show_analysis"
	ActionShowCustomPortfolio = "show_custom_portfolio"
	ActionPlaceOrder          = "place_order"
	ActionAnalyzeSymbol       = "analyze_symbol"
)

// PlaceOrderData is the payload of a place_order action. Numeric fields
// accept JSON strings or numbers and may be omitted.
type PlaceOrderData struct {
	Symbol     string              `json:"symbol"`
	Qty        decimal.NullDecimal `json:"qty"`
	Side       string              `json:"side"`
	Type       string              `json:"type"`
	LimitPrice decimal.NullDecimal `json:"limit_price"`
	StopPrice  decimal.NullDecimal `json:"stop_price"`
}

// AnalyzeSymbolData is the payload of an analyze_symbol action.
type AnalyzeSymbolData struct {
	Symbol string `json:"symbol" validate:"required"`
}

// DecodeData unmarshals the action payload into v.
func (a Action) DecodeData(v any) error {
	if len(a.Data) == 0 {
		return fmt.Errorf("action %s has no data", a.Type)
	}
	if err := json.Unmarshal(a.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", a.Type, err)
	}
	return nil
}

// ChatResponse is returned by POST /chat and POST /api/portfolio/performance.
type ChatResponse struct {
	Envelope
	Response         string      `json:"response"`
	InProgress       bool        `json:"in_progress"`
	ProgressMessages []string    `json:"progress_messages"`
	HasAttachment    bool        `json:"has_attachment"`
	Attachment       *Attachment `json:"attachment"`
	Action           *Action     `json:"action"`
}

// StatusResponse is the {"status": "..."} acknowledgement of POST /chat/clear.
type StatusResponse struct {
	Envelope
	Status string `json:"status"`
}

// =============================================================================
// Metrics Types
// =============================================================================

// Names of the headline portfolio metrics.
const (
	MetricBuyingPower   = "Buying Power"
	MetricCashAvailable = "Cash Available"
	MetricDailyChange   = "Daily Change"
	MetricTotalValue    = "Total Value"
)

// Metrics maps metric names to the values sent by the backend. Values are
// kept as sent; the backend uses both preformatted strings and bare numbers.
type Metrics map[string]string

// UnmarshalJSON accepts string, number and null values.
func (m *Metrics) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		*m = nil
		return nil
	}

	out := make(Metrics, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		switch {
		case bytes.Equal(v, []byte("null")):
			out[k] = ""
		case len(v) > 0 && v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("metric %q: %w", k, err)
			}
			out[k] = s
		default:
			out[k] = string(v)
		}
	}
	*m = out
	return nil
}

// MetricsResponse is returned by GET /api/portfolio/metrics.
type MetricsResponse struct {
	Envelope
	Metrics Metrics `json:"metrics" validate:"required"`
}

// CredentialsRequest is the body of POST /api/store_alpaca_credentials.
type CredentialsRequest struct {
	APIKey    string `json:"alpaca_api_key"`
	SecretKey string `json:"alpaca_secret_key"`
}

// CredentialsResponse acknowledges stored credentials. Metrics is set when
// the backend could already load the account.
type CredentialsResponse struct {
	Envelope
	Message string  `json:"message"`
	Metrics Metrics `json:"metrics"`
}

// =============================================================================
// History Types
// =============================================================================

// HistoryResponse is returned by GET /api/portfolio/history. Missing or
// non-finite samples decode as nil.
type HistoryResponse struct {
	Envelope
	Timestamp     []*int64   `json:"timestamp"`
	Equity        []*float64 `json:"equity"`
	ProfitLossPct []*float64 `json:"profit_loss_pct"`
}

// =============================================================================
// Position & Order Types
// =============================================================================

// Position is an open holding. Numeric fields accept JSON strings or numbers.
type Position struct {
	Symbol         string          `json:"symbol" validate:"required"`
	Qty            decimal.Decimal `json:"qty"`
	MarketValue    decimal.Decimal `json:"market_value"`
	CostBasis      decimal.Decimal `json:"cost_basis"`
	UnrealizedPL   decimal.Decimal `json:"unrealized_pl"`
	UnrealizedPLPC decimal.Decimal `json:"unrealized_plpc"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	AvgEntryPrice  decimal.Decimal `json:"avg_entry_price"`
	ChangeToday    decimal.Decimal `json:"change_today"`
}

// PositionsResponse is returned by GET /api/portfolio/positions.
type PositionsResponse struct {
	Envelope
	Positions []Position `json:"positions" validate:"required,dive"`
}

// Order is a submitted order. Timestamps are kept as sent.
type Order struct {
	ID             string              `json:"id"`
	Symbol         string              `json:"symbol" validate:"required"`
	Side           string              `json:"side"`
	Type           string              `json:"type"`
	Qty            decimal.Decimal     `json:"qty"`
	FilledQty      decimal.Decimal     `json:"filled_qty"`
	LimitPrice     decimal.NullDecimal `json:"limit_price"`
	FilledAvgPrice decimal.NullDecimal `json:"filled_avg_price"`
	Status         string              `json:"status"`
	SubmittedAt    string              `json:"submitted_at"`
	FilledAt       string              `json:"filled_at"`
}

// OrdersResponse is returned by GET /api/portfolio/orders.
type OrdersResponse struct {
	Envelope
	Orders []Order `json:"orders" validate:"required,dive"`
}

// TradeResponse is returned by POST /api/portfolio/trade.
type TradeResponse struct {
	Envelope
	Message string `json:"message"`
	OrderID string `json:"order_id"`
}

// =============================================================================
// Analysis Types
// =============================================================================

// Indicators are the headline figures of a symbol analysis.
type Indicators struct {
	Change24h decimal.NullDecimal `json:"change_24h"`
	Volume    decimal.NullDecimal `json:"volume"`
}

// AnalysisResponse is returned by GET /api/portfolio/analysis.
type AnalysisResponse struct {
	Envelope
	Symbol       string              `json:"symbol" validate:"required"`
	CurrentPrice decimal.NullDecimal `json:"current_price"`
	Indicators   Indicators          `json:"indicators"`
}

// =============================================================================
// Important Info Types
// =============================================================================

// InfoCategoryAssets selects asset entries of the important-info endpoint.
const InfoCategoryAssets = "assets"

// InfoItem is one stored fact about the user.
type InfoItem struct {
	Content   string `json:"content"`
	Type      string `json:"type"`
	UpdatedAt string `json:"updated_at"`
}

// ImportantInfoResponse is returned by GET /api/user/important-info.
type ImportantInfoResponse struct {
	Envelope
	Success bool       `json:"success"`
	Data    []InfoItem `json:"data" validate:"dive"`
}

// =============================================================================
// Legacy Chart Types
// =============================================================================

// Legacy chart-data endpoints.
const (
	LegacyMetrics     = "metrics"
	LegacyAllocation  = "allocation"
	LegacyPerformance = "performance"
)

// LegacyResponse is returned by GET /portfolio/{metrics,allocation,performance}:
// either {metrics} or {type: "chart", config}.
type LegacyResponse struct {
	Envelope
	Type    string          `json:"type"`
	Config  json.RawMessage `json:"config"`
	Metrics Metrics         `json:"metrics"`
}

// IsChart reports whether the response carries a chart configuration.
func (r LegacyResponse) IsChart() bool {
	return r.Type == "chart"
}
