package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/chat"
)

// InitChat returns a command that requests the assistant's greeting.
func InitChat(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		resp, err := client.InitChat(ctx)
		if err != nil {
			return ChatErrorMsg{Err: err, Init: true}
		}
		return ChatResponseMsg{Response: resp, Init: true}
	}
}

// SendChat returns a command that posts a message to the assistant.
func SendChat(client *api.Client, text string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		resp, err := client.SendChat(ctx, text)
		if err != nil {
			return ChatErrorMsg{Err: err}
		}
		return ChatResponseMsg{Response: resp}
	}
}

// RequestPerformanceReport returns a command that asks for the performance report.
func RequestPerformanceReport(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		resp, err := client.RequestPerformanceReport(ctx)
		if err != nil {
			return ChatErrorMsg{Err: err}
		}
		return ChatResponseMsg{Response: resp}
	}
}

// StoreCredentials returns a command that saves broker credentials.
func StoreCredentials(client *api.Client, creds chat.Credentials) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		resp, err := client.StoreCredentials(ctx, creds.APIKey, creds.SecretKey)
		if err != nil {
			return ChatErrorMsg{Err: err}
		}
		return CredentialsSavedMsg{Response: resp}
	}
}

// ClearChat returns a command that resets the conversation on the backend.
func ClearChat(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		return ChatClearedMsg{Err: client.ClearChat(ctx)}
	}
}

// SaveAttachment returns a command that writes an attachment to dir.
func SaveAttachment(dir string, a *api.Attachment) tea.Cmd {
	return func() tea.Msg {
		path, err := chat.SaveAttachment(dir, a)
		return AttachmentSavedMsg{Path: path, Err: err}
	}
}

// FetchMetrics returns a command that fetches the headline metrics.
func FetchMetrics(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		metrics, err := client.GetMetrics(ctx)
		if err != nil {
			return MetricsErrorMsg{Err: err}
		}
		return MetricsLoadedMsg{Metrics: metrics}
	}
}

// FetchHistory returns a command that fetches the equity history.
func FetchHistory(client *api.Client, timeframe string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		h, err := client.GetHistory(ctx, timeframe)
		if err != nil {
			return HistoryErrorMsg{Timeframe: timeframe, Err: err}
		}
		return HistoryLoadedMsg{Timeframe: timeframe, History: h}
	}
}

// FetchPositions returns a command that fetches open positions.
func FetchPositions(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		positions, err := client.GetPositions(ctx)
		if err != nil {
			return PositionsErrorMsg{Err: err}
		}
		return PositionsLoadedMsg{Positions: positions}
	}
}

// FetchOrders returns a command that fetches recent orders.
func FetchOrders(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		orders, err := client.GetOrders(ctx)
		if err != nil {
			return OrdersErrorMsg{Err: err}
		}
		return OrdersLoadedMsg{Orders: orders}
	}
}

// PlaceTrade returns a command that submits an order.
func PlaceTrade(client *api.Client, req api.TradeOrderRequest) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		resp, err := client.PlaceTrade(ctx, req)
		if err != nil {
			return TradeErrorMsg{Err: err}
		}
		return TradePlacedMsg{Response: resp}
	}
}

// FetchAnalysis returns a command that analyses a symbol.
func FetchAnalysis(client *api.Client, symbol string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		a, err := client.GetAnalysis(ctx, symbol)
		if err != nil {
			return AnalysisErrorMsg{Symbol: symbol, Err: err}
		}
		return AnalysisLoadedMsg{Analysis: a}
	}
}

// FetchInfo returns a command that loads stored user information: asset
// entries only, or every category when all is set.
func FetchInfo(client *api.Client, all bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		category := api.InfoCategoryAssets
		if all {
			category = ""
		}
		items, err := client.GetImportantInfo(ctx, category)
		if err != nil {
			return InfoErrorMsg{All: all, Err: err}
		}
		return InfoLoadedMsg{All: all, Items: items}
	}
}
