package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/bus"
	"github.com/finassist/fin/internal/portfolio"
)

// ToolsModel holds the tools bar and the content of the shown tool.
type ToolsModel struct {
	// Active is the shown tool; empty until one is selected.
	Active string

	Positions *PositionsModel
	Orders    *OrdersModel
	Trade     *TradeModel
	Analysis  *AnalysisModel
	Assets    *AssetsModel

	// Picker is open while a held symbol is being chosen for the trade or
	// analysis tool.
	Picker *SymbolPickerModel

	bus    *bus.Bus[tea.Cmd]
	logger *zap.Logger
}

// NewToolsModel creates the tools panel.
func NewToolsModel(client *api.Client, b *bus.Bus[tea.Cmd], opts Options) *ToolsModel {
	return &ToolsModel{
		Positions: NewPositionsModel(client),
		Orders:    NewOrdersModel(client, opts.Location),
		Trade:     NewTradeModel(client, opts.Logger),
		Analysis:  NewAnalysisModel(client),
		Assets:    NewAssetsModel(client, opts.Location),
		bus:       b,
		logger:    opts.Logger,
	}
}

// SetSize sets the content area's dimensions.
func (m *ToolsModel) SetSize(width, height int) {
	m.Positions.SetSize(width, height)
	m.Orders.SetHeight(max(height-3, 3))
}

// Editing reports whether a form of the shown tool holds keyboard focus.
func (m *ToolsModel) Editing() bool {
	if m.Picker != nil {
		return true
	}
	switch m.Active {
	case portfolio.ToolTrade:
		return m.Trade.Editing
	case portfolio.ToolAnalysis:
		return m.Analysis.Editing
	}
	return false
}

// Show displays tool and loads its data. Unknown tools are ignored.
func (m *ToolsModel) Show(tool string) tea.Cmd {
	if tool != m.Active {
		m.Picker = nil
		m.Trade.StopEditing()
		m.Analysis.StopEditing()
	}

	switch tool {
	case portfolio.ToolPositions:
		m.Active = tool
		return m.Positions.Load()
	case portfolio.ToolOrders:
		m.Active = tool
		return m.Orders.Load()
	case portfolio.ToolTotalAssets:
		m.Active = tool
		return m.Assets.Load()
	case portfolio.ToolTrade, portfolio.ToolAnalysis, portfolio.ToolCustomPortfolio:
		m.Active = tool
		return nil
	}
	m.logger.Debug("unknown tool", zap.String("tool", tool))
	return nil
}

// Reload refetches the data of the shown tool.
func (m *ToolsModel) Reload() tea.Cmd {
	switch m.Active {
	case portfolio.ToolPositions:
		return m.Positions.Load()
	case portfolio.ToolOrders:
		return m.Orders.Load()
	case portfolio.ToolTotalAssets:
		return m.Assets.Load()
	case portfolio.ToolAnalysis:
		if m.Analysis.Analysis != nil {
			return m.Analysis.Analyze(m.Analysis.Analysis.Symbol)
		}
	}
	return nil
}

// Select handles the user picking tool from the tools bar.
func (m *ToolsModel) Select(tool string) tea.Cmd {
	return publish(m.bus, bus.ToolSelected{Tool: tool})
}

// HandleToolSelected shows the tool and asks the assistant about it.
func (m *ToolsModel) HandleToolSelected(e bus.ToolSelected) tea.Cmd {
	chatCmd := publish(m.bus, bus.ChatMessage{Text: portfolio.CompanionMessage(e.Tool)})
	return tea.Batch(chatCmd, m.Show(e.Tool))
}

// HandleBotAction reacts to an action attached to an assistant answer.
func (m *ToolsModel) HandleBotAction(e bus.BotAction) tea.Cmd {
	tool, message := portfolio.ActionTarget(e.Action.Type)
	if tool == "" {
		m.logger.Debug("ignoring assistant action", zap.String("type", e.Action.Type))
		return nil
	}

	var cmds []tea.Cmd
	if message != "" {
		cmds = append(cmds, publish(m.bus, bus.ChatMessage{Text: message}))
	}
	cmds = append(cmds, m.Show(tool))

	switch e.Action.Type {
	case api.ActionPlaceOrder:
		var d api.PlaceOrderData
		if err := e.Action.DecodeData(&d); err != nil {
			m.logger.Warn("bad place_order payload", zap.Error(err))
			break
		}
		m.Trade.SetForm(portfolio.FormFromAction(d))
	case api.ActionAnalyzeSymbol:
		var d api.AnalyzeSymbolData
		if err := e.Action.DecodeData(&d); err != nil || d.Symbol == "" {
			m.logger.Warn("bad analyze_symbol payload", zap.Error(err))
			break
		}
		cmds = append(cmds, m.Analysis.Analyze(d.Symbol))
	}
	return tea.Batch(cmds...)
}

// Update handles messages for the tools panel.
func (m *ToolsModel) Update(msg tea.Msg) (*ToolsModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case PositionsLoadedMsg, PositionsErrorMsg:
		m.Positions, cmd = m.Positions.Update(msg)
		if m.Picker != nil {
			m.Picker.Positions = m.Positions.Positions
		}
		return m, cmd

	case OrdersLoadedMsg, OrdersErrorMsg:
		m.Orders, cmd = m.Orders.Update(msg)
		return m, cmd

	case TradePlacedMsg:
		m.Trade, cmd = m.Trade.Update(msg)
		return m, tea.Batch(cmd, m.Orders.Load())

	case TradeErrorMsg:
		m.Trade, cmd = m.Trade.Update(msg)
		return m, cmd

	case AnalysisLoadedMsg, AnalysisErrorMsg:
		m.Analysis, cmd = m.Analysis.Update(msg)
		return m, cmd

	case InfoLoadedMsg, InfoErrorMsg:
		m.Assets, cmd = m.Assets.Update(msg)
		return m, cmd

	case SymbolPickedMsg:
		m.Picker = nil
		switch msg.Target {
		case portfolio.ToolTrade:
			m.Trade.Symbol.SetValue(msg.Symbol)
		case portfolio.ToolAnalysis:
			return m, m.Analysis.Analyze(msg.Symbol)
		}
		return m, nil

	case SymbolPickerCancelledMsg:
		m.Picker = nil
		return m, nil

	case tea.KeyMsg:
		if m.Picker != nil {
			m.Picker, cmd = m.Picker.Update(msg)
			return m, cmd
		}
		if !m.Editing() {
			if i := toolIndex(msg.String()); i >= 0 {
				return m, m.Select(portfolio.Tools[i])
			}
			if msg.String() == "s" && (m.Active == portfolio.ToolTrade || m.Active == portfolio.ToolAnalysis) {
				m.Picker = NewSymbolPickerModel(m.Positions.Positions, m.Active)
				if m.Positions.State == LoadStateIdle {
					return m, m.Positions.Load()
				}
				return m, nil
			}
		}
		switch m.Active {
		case portfolio.ToolPositions:
			m.Positions, cmd = m.Positions.Update(msg)
		case portfolio.ToolOrders:
			m.Orders, cmd = m.Orders.Update(msg)
		case portfolio.ToolTrade:
			m.Trade, cmd = m.Trade.Update(msg)
		case portfolio.ToolAnalysis:
			m.Analysis, cmd = m.Analysis.Update(msg)
		case portfolio.ToolTotalAssets:
			m.Assets, cmd = m.Assets.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// toolIndex maps the keys 1 to 6 to a position in portfolio.Tools.
func toolIndex(k string) int {
	if len(k) != 1 || k[0] < '1' || int(k[0]-'1') >= len(portfolio.Tools) {
		return -1
	}
	return int(k[0] - '1')
}

// TabsView renders the tools bar.
func (m *ToolsModel) TabsView() string {
	tabs := make([]string, len(portfolio.Tools))
	for i, tool := range portfolio.Tools {
		label := fmt.Sprintf("[%d] %s", i+1, portfolio.ToolTitle(tool))
		if tool == m.Active {
			tabs[i] = ActiveTabStyle.Render(label)
		} else {
			tabs[i] = InactiveTabStyle.Render(label)
		}
	}
	return strings.Join(tabs, "")
}

// View renders the shown tool.
func (m *ToolsModel) View() string {
	if m.Picker != nil {
		return m.Picker.View()
	}
	switch m.Active {
	case portfolio.ToolPositions:
		return m.Positions.View()
	case portfolio.ToolOrders:
		return m.Orders.View()
	case portfolio.ToolTrade:
		return m.Trade.View()
	case portfolio.ToolAnalysis:
		return m.Analysis.View()
	case portfolio.ToolTotalAssets:
		return m.Assets.View()
	case portfolio.ToolCustomPortfolio:
		return WarningStyle.Render(portfolio.ComingSoonTitle) + "\n\n" + LabelStyle.Render(portfolio.ComingSoonMessage)
	}
	return DescStyle.Render("Select a tool with 1-6")
}
