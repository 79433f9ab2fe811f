package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/portfolio"
)

// OrdersLoadError is shown when orders could not be fetched.
const OrdersLoadError = "Failed to load orders"

// OrdersModel holds the state for the orders tool.
type OrdersModel struct {
	State       LoadState
	Orders      []api.Order
	Err         error
	LastUpdated time.Time
	Table       table.Model

	client *api.Client
	loc    *time.Location
}

// NewOrdersModel creates a new orders model.
func NewOrdersModel(client *api.Client, loc *time.Location) *OrdersModel {
	cols := []table.Column{
		{Title: "Symbol", Width: 8},
		{Title: "Status", Width: 10},
		{Title: "Type", Width: 16},
		{Title: "Qty", Width: 10},
		{Title: "Price", Width: 11},
		{Title: "Submitted", Width: 18},
		{Title: "Filled", Width: 18},
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(TableStyles())

	return &OrdersModel{
		Table:  t,
		client: client,
		loc:    loc,
	}
}

// SetHeight sets the table height.
func (m *OrdersModel) SetHeight(height int) {
	m.Table.SetHeight(height)
}

// Load fetches orders.
func (m *OrdersModel) Load() tea.Cmd {
	m.State = LoadStateLoading
	m.Err = nil
	return FetchOrders(m.client)
}

// Update handles messages for the orders tool.
func (m *OrdersModel) Update(msg tea.Msg) (*OrdersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case OrdersLoadedMsg:
		m.State = LoadStateLoaded
		m.Orders = msg.Orders
		m.LastUpdated = time.Now()
		m.updateTable()
		return m, nil

	case OrdersErrorMsg:
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

func (m *OrdersModel) updateTable() {
	var rows []table.Row
	for _, r := range portfolio.OrderRows(m.Orders, m.loc) {
		rows = append(rows, table.Row{
			r.Symbol,
			r.Status,
			r.TypeSide,
			r.Quantity,
			r.Price,
			r.Submitted,
			r.Filled,
		})
	}
	m.Table.SetRows(rows)
}

// View renders the orders tool.
func (m *OrdersModel) View() string {
	switch m.State {
	case LoadStateIdle, LoadStateLoading:
		return LabelStyle.Render("Loading orders...")
	case LoadStateError:
		return ErrorStyle.Render(toolErrorText(m.Err, OrdersLoadError))
	}

	if len(m.Orders) == 0 {
		return LabelStyle.Render("No recent orders")
	}

	var b strings.Builder
	b.WriteString(m.Table.View())
	b.WriteString("\n")
	b.WriteString(DescStyle.Render("updated " + m.LastUpdated.Format("15:04:05")))
	return b.String()
}
