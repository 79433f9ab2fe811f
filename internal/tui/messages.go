package tui

import (
	"github.com/finassist/fin/internal/api"
)

// Message types for async operations

// ChatResponseMsg carries an assistant answer.
type ChatResponseMsg struct {
	Response *api.ChatResponse
	// Init marks the greeting requested on start.
	Init bool
}

// ChatErrorMsg is sent when a chat request fails.
type ChatErrorMsg struct {
	Err  error
	Init bool
}

// ChatStepMsg presents the next queued step of the answer identified by Seq.
type ChatStepMsg struct {
	Seq int
}

// ChatClearedMsg is sent when the conversation was reset.
type ChatClearedMsg struct {
	Err error
}

// CredentialsSavedMsg is sent when broker credentials were stored.
type CredentialsSavedMsg struct {
	Response *api.CredentialsResponse
}

// AttachmentSavedMsg reports the outcome of saving an attachment.
type AttachmentSavedMsg struct {
	Path string
	Err  error
}

// MetricsLoadedMsg is sent when portfolio metrics are loaded successfully.
type MetricsLoadedMsg struct {
	Metrics api.Metrics
}

// MetricsErrorMsg is sent when metrics loading fails.
type MetricsErrorMsg struct {
	Err error
}

// RefreshTickMsg fires the portfolio refresh timer. Ticks whose Gen is not
// the panel's current generation are ignored.
type RefreshTickMsg struct {
	Gen int
}

// HistoryLoadedMsg is sent when the equity history for Timeframe is loaded.
type HistoryLoadedMsg struct {
	Timeframe string
	History   *api.HistoryResponse
}

// HistoryErrorMsg is sent when history loading fails.
type HistoryErrorMsg struct {
	Timeframe string
	Err       error
}

// PositionsLoadedMsg is sent when positions are loaded successfully.
type PositionsLoadedMsg struct {
	Positions []api.Position
}

// PositionsErrorMsg is sent when positions loading fails.
type PositionsErrorMsg struct {
	Err error
}

// OrdersLoadedMsg is sent when orders are loaded successfully.
type OrdersLoadedMsg struct {
	Orders []api.Order
}

// OrdersErrorMsg is sent when orders loading fails.
type OrdersErrorMsg struct {
	Err error
}

// TradePlacedMsg is sent when an order was accepted.
type TradePlacedMsg struct {
	Response *api.TradeResponse
}

// TradeErrorMsg is sent when placing an order fails.
type TradeErrorMsg struct {
	Err error
}

// AnalysisLoadedMsg is sent when a symbol analysis is loaded.
type AnalysisLoadedMsg struct {
	Analysis *api.AnalysisResponse
}

// AnalysisErrorMsg is sent when a symbol analysis fails.
type AnalysisErrorMsg struct {
	Symbol string
	Err    error
}

// InfoLoadedMsg is sent when stored user information is loaded. All is set
// when every category was requested.
type InfoLoadedMsg struct {
	All   bool
	Items []api.InfoItem
}

// InfoErrorMsg is sent when loading stored user information fails.
type InfoErrorMsg struct {
	All bool
	Err error
}
