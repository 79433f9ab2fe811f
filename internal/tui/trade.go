package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/portfolio"
)

var (
	tradeSides = []string{"buy", "sell"}
	tradeTypes = []string{api.OrderTypeMarket, api.OrderTypeLimit, api.OrderTypeStop, api.OrderTypeStopLimit}
)

var tradeLabels = map[string]string{
	portfolio.FieldSymbol:     "Symbol",
	portfolio.FieldQty:        "Quantity",
	portfolio.FieldSide:       "Side",
	portfolio.FieldType:       "Order Type",
	portfolio.FieldLimitPrice: "Limit Price",
	portfolio.FieldStopPrice:  "Stop Price",
}

// TradeModel holds the state for the trade form.
type TradeModel struct {
	Symbol     textinput.Model
	Qty        textinput.Model
	LimitPrice textinput.Model
	StopPrice  textinput.Model
	Side       int
	Type       int

	// Editing is set while the form has keyboard focus; it consumes all keys.
	Editing    bool
	Focus      int
	Submitting bool
	Status     string
	StatusErr  bool

	client *api.Client
	logger *zap.Logger
}

// NewTradeModel creates a new trade model.
func NewTradeModel(client *api.Client, logger *zap.Logger) *TradeModel {
	newInput := func(placeholder string, limit int) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		ti.Width = 16
		ti.Prompt = ""
		return ti
	}

	return &TradeModel{
		Symbol:     newInput("AAPL", 10),
		Qty:        newInput("1", 16),
		LimitPrice: newInput("0.00", 16),
		StopPrice:  newInput("0.00", 16),
		client:     client,
		logger:     logger,
	}
}

// Form returns the current form values.
func (m *TradeModel) Form() portfolio.TradeForm {
	return portfolio.TradeForm{
		Symbol:     m.Symbol.Value(),
		Qty:        m.Qty.Value(),
		Side:       tradeSides[m.Side],
		Type:       tradeTypes[m.Type],
		LimitPrice: m.LimitPrice.Value(),
		StopPrice:  m.StopPrice.Value(),
	}
}

// SetForm prefills the form. Unknown sides and types keep the current choice.
func (m *TradeModel) SetForm(f portfolio.TradeForm) {
	m.Symbol.SetValue(f.Symbol)
	m.Qty.SetValue(f.Qty)
	m.LimitPrice.SetValue(f.LimitPrice)
	m.StopPrice.SetValue(f.StopPrice)
	if i := indexOf(tradeSides, f.Side); i >= 0 {
		m.Side = i
	}
	if i := indexOf(tradeTypes, f.Type); i >= 0 {
		m.Type = i
	}
	m.Status = ""
	m.Focus = 0
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

// StartEditing gives the form keyboard focus.
func (m *TradeModel) StartEditing() tea.Cmd {
	m.Editing = true
	return m.focusField()
}

// StopEditing releases keyboard focus.
func (m *TradeModel) StopEditing() {
	m.Editing = false
	m.blurAll()
}

func (m *TradeModel) fields() []string {
	return m.Form().VisibleFields()
}

func (m *TradeModel) input(field string) *textinput.Model {
	switch field {
	case portfolio.FieldSymbol:
		return &m.Symbol
	case portfolio.FieldQty:
		return &m.Qty
	case portfolio.FieldLimitPrice:
		return &m.LimitPrice
	case portfolio.FieldStopPrice:
		return &m.StopPrice
	}
	return nil
}

func (m *TradeModel) blurAll() {
	m.Symbol.Blur()
	m.Qty.Blur()
	m.LimitPrice.Blur()
	m.StopPrice.Blur()
}

func (m *TradeModel) focusField() tea.Cmd {
	m.blurAll()
	fields := m.fields()
	if m.Focus >= len(fields) {
		m.Focus = len(fields) - 1
	}
	if in := m.input(fields[m.Focus]); in != nil {
		return in.Focus()
	}
	return nil
}

// Submit validates the form and places the order.
func (m *TradeModel) Submit() tea.Cmd {
	if m.Submitting {
		return nil
	}
	req, err := portfolio.BuildTradeRequest(m.Form())
	if err != nil {
		m.Status = err.Error()
		m.StatusErr = true
		return nil
	}
	m.Submitting = true
	m.Status = ""
	m.logger.Info("placing order",
		zap.String("symbol", req.Symbol),
		zap.String("side", req.Side),
		zap.String("type", req.Type),
		zap.Float64("qty", req.Qty),
	)
	return PlaceTrade(m.client, req)
}

// Update handles messages for the trade form.
func (m *TradeModel) Update(msg tea.Msg) (*TradeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case TradePlacedMsg:
		m.Submitting = false
		m.Status = portfolio.TradeSuccessMessage
		m.StatusErr = false
		return m, nil

	case TradeErrorMsg:
		m.Submitting = false
		m.Status = portfolio.TradeErrorMessage(msg.Err)
		m.StatusErr = true
		m.logger.Warn("order rejected", zap.Error(msg.Err))
		return m, nil

	case tea.KeyMsg:
		if !m.Editing {
			if msg.Type == tea.KeyEnter {
				return m, m.StartEditing()
			}
			return m, nil
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *TradeModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	fields := m.fields()
	field := fields[m.Focus]

	switch msg.String() {
	case "esc":
		m.StopEditing()
		return nil
	case "enter":
		return m.Submit()
	case "tab", "down":
		m.Focus = (m.Focus + 1) % len(fields)
		return m.focusField()
	case "shift+tab", "up":
		m.Focus = (m.Focus - 1 + len(fields)) % len(fields)
		return m.focusField()
	case "left", "right":
		step := 1
		if msg.String() == "left" {
			step = -1
		}
		switch field {
		case portfolio.FieldSide:
			m.Side = (m.Side + step + len(tradeSides)) % len(tradeSides)
			return nil
		case portfolio.FieldType:
			m.Type = (m.Type + step + len(tradeTypes)) % len(tradeTypes)
			return nil
		}
	}

	in := m.input(field)
	if in == nil {
		return nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	if field == portfolio.FieldSymbol {
		in.SetValue(strings.ToUpper(in.Value()))
	}
	return cmd
}

// View renders the trade form.
func (m *TradeModel) View() string {
	var b strings.Builder
	for i, field := range m.fields() {
		cursor := "  "
		if m.Editing && i == m.Focus {
			cursor = KeyStyle.Render("› ")
		}

		var value string
		switch field {
		case portfolio.FieldSide:
			value = choiceView(tradeSides, m.Side)
		case portfolio.FieldType:
			value = choiceView(tradeTypes, m.Type)
		default:
			value = m.input(field).View()
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, LabelStyle.Render(fmt.Sprintf("%-12s", tradeLabels[field])), value))
	}
	b.WriteString("\n")

	switch {
	case m.Submitting:
		b.WriteString(LabelStyle.Render("Placing order..."))
	case m.Status != "" && m.StatusErr:
		b.WriteString(ErrorStyle.Render(m.Status))
	case m.Status != "":
		b.WriteString(GreenStyle.Render("✓ " + m.Status))
	case !m.Editing:
		b.WriteString(DescStyle.Render("Press enter to edit the order"))
	}
	return b.String()
}

func choiceView(options []string, selected int) string {
	parts := make([]string, len(options))
	for i, o := range options {
		if i == selected {
			parts[i] = ValueStyle.Render("[" + o + "]")
		} else {
			parts[i] = DescStyle.Render(o)
		}
	}
	return strings.Join(parts, " ")
}
