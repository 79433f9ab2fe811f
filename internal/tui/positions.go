package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/chart"
	"github.com/finassist/fin/internal/portfolio"
)

// PositionsLoadError is shown when positions could not be fetched.
const PositionsLoadError = "Failed to load positions"

// LoadState represents the loading state of a tool's data.
type LoadState int

const (
	LoadStateIdle LoadState = iota
	LoadStateLoading
	LoadStateLoaded
	LoadStateError
)

// PositionsModel holds the state for the positions tool.
type PositionsModel struct {
	State     LoadState
	Positions []api.Position
	Err       error
	Table     table.Model
	Canvas    *chart.Canvas

	client *api.Client
	width  int
}

// NewPositionsModel creates a new positions model.
func NewPositionsModel(client *api.Client) *PositionsModel {
	cols := []table.Column{
		{Title: "Symbol", Width: 8},
		{Title: "Qty", Width: 14},
		{Title: "Value", Width: 12},
		{Title: "P/L", Width: 20},
		{Title: "Price", Width: 10},
		{Title: "Avg Entry", Width: 10},
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	t.SetStyles(TableStyles())

	return &PositionsModel{
		Table:  t,
		Canvas: chart.NewCanvas("positions-chart", nil),
		client: client,
	}
}

// SetSize sets the tool's dimensions.
func (m *PositionsModel) SetSize(width, height int) {
	m.width = width
	m.Table.SetHeight(max(height/2, 3))
}

// Load fetches positions.
func (m *PositionsModel) Load() tea.Cmd {
	m.State = LoadStateLoading
	m.Err = nil
	return FetchPositions(m.client)
}

// Update handles messages for the positions tool.
func (m *PositionsModel) Update(msg tea.Msg) (*PositionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case PositionsLoadedMsg:
		m.State = LoadStateLoaded
		m.Positions = portfolio.FilterPositions(msg.Positions)
		m.updateTable()
		// The previous chart is always destroyed; an empty portfolio draws none.
		if slices := portfolio.PieSlices(m.Positions); len(slices) > 0 {
			m.Canvas.Draw(portfolio.AllocationChart(slices))
		} else {
			m.Canvas.Clear()
		}
		return m, nil

	case PositionsErrorMsg:
		m.State = LoadStateError
		m.Err = msg.Err
		return m, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		m.Table, cmd = m.Table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *PositionsModel) updateTable() {
	rows := make([]table.Row, 0, len(m.Positions))
	for _, r := range portfolio.PositionRows(m.Positions) {
		rows = append(rows, table.Row{
			r.Symbol,
			r.Qty,
			r.MarketValue,
			r.PL + " (" + r.PLPercent + ")",
			r.CurrentPrice,
			r.AvgEntry,
		})
	}
	m.Table.SetRows(rows)
}

// View renders the positions tool.
func (m *PositionsModel) View() string {
	switch m.State {
	case LoadStateIdle, LoadStateLoading:
		return LabelStyle.Render("Loading positions...")
	case LoadStateError:
		return ErrorStyle.Render(toolErrorText(m.Err, PositionsLoadError))
	}

	if len(m.Positions) == 0 {
		return LabelStyle.Render("No open positions")
	}

	var b strings.Builder
	b.WriteString(m.Table.View())
	if pie := m.Canvas.View(max(m.width-2, 20), 0); pie != "" {
		b.WriteString("\n\n")
		b.WriteString(pie)
	}
	return b.String()
}

// toolErrorText shows errors reported by the backend as sent and replaces
// anything else with fallback.
func toolErrorText(err error, fallback string) string {
	var appErr *api.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}
