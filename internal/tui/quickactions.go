package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finassist/fin/internal/bus"
)

// QuickAction is one entry of a quick-action menu. Its ID is sent to the
// assistant as the chat message.
type QuickAction struct {
	ID    string
	Label string
}

// QuickCategory is a quick-action menu. A category with Immediate set sends
// its only action when opened instead of showing a menu.
type QuickCategory struct {
	Title     string
	Actions   []QuickAction
	Immediate bool
}

// QuickCategories lists the menus opened with F1 to F4.
var QuickCategories = []QuickCategory{
	{Title: "Portfolio", Actions: []QuickAction{
		{ID: "portfolio-overview", Label: "Overview"},
		{ID: "portfolio-performance", Label: "Performance"},
	}},
	{Title: "Market", Actions: []QuickAction{
		{ID: "market-overview", Label: "Overview"},
		{ID: "market-news", Label: "News"},
	}},
	{Title: "Analysis", Actions: []QuickAction{
		{ID: "risk-analysis", Label: "Risk Analysis"},
		{ID: "technical-indicators", Label: "Technical Indicators"},
	}},
	{Title: "Guide", Immediate: true, Actions: []QuickAction{
		{ID: "start-guide", Label: "Start Guide"},
	}},
}

// QuickActionsModel holds the state of the quick-action menus. At most one
// menu is open.
type QuickActionsModel struct {
	// Open is the index of the open menu or -1.
	Open int

	bus *bus.Bus[tea.Cmd]
}

// NewQuickActionsModel creates the quick-action bar with every menu closed.
func NewQuickActionsModel(b *bus.Bus[tea.Cmd]) *QuickActionsModel {
	return &QuickActionsModel{Open: -1, bus: b}
}

// IsOpen reports whether a menu is open.
func (m *QuickActionsModel) IsOpen() bool {
	return m.Open >= 0
}

// Toggle opens menu i, closing any other, or closes it when already open.
func (m *QuickActionsModel) Toggle(i int) tea.Cmd {
	if i < 0 || i >= len(QuickCategories) {
		return nil
	}
	cat := QuickCategories[i]
	if cat.Immediate {
		m.Open = -1
		return m.choose(cat.Actions[0])
	}
	if m.Open == i {
		m.Open = -1
	} else {
		m.Open = i
	}
	return nil
}

// Close closes every menu.
func (m *QuickActionsModel) Close() {
	m.Open = -1
}

// Pick chooses entry n (1-based) of the open menu.
func (m *QuickActionsModel) Pick(n int) tea.Cmd {
	if !m.IsOpen() {
		return nil
	}
	actions := QuickCategories[m.Open].Actions
	if n < 1 || n > len(actions) {
		return nil
	}
	m.Open = -1
	return m.choose(actions[n-1])
}

func (m *QuickActionsModel) choose(a QuickAction) tea.Cmd {
	return publish(m.bus, bus.ActionSelected{Action: a.ID})
}

// Update handles keys while a menu is open. Any key other than a menu
// entry closes the menu.
func (m *QuickActionsModel) Update(msg tea.Msg) (*QuickActionsModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.IsOpen() {
		return m, nil
	}
	if s := key.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return m, m.Pick(int(s[0] - '0'))
	}
	m.Close()
	return m, nil
}

// View renders the quick-action bar and the open menu.
func (m *QuickActionsModel) View() string {
	cats := make([]string, len(QuickCategories))
	for i, c := range QuickCategories {
		label := fmt.Sprintf("F%d %s", i+1, c.Title)
		if i == m.Open {
			cats[i] = ActiveTabStyle.Render(label)
		} else {
			cats[i] = InactiveTabStyle.Render(label)
		}
	}
	bar := strings.Join(cats, "")
	if !m.IsOpen() {
		return bar
	}

	items := make([]string, 0, len(QuickCategories[m.Open].Actions))
	for i, a := range QuickCategories[m.Open].Actions {
		items = append(items, KeyStyle.Render(fmt.Sprintf("%d", i+1))+" "+ValueStyle.Render(a.Label))
	}
	return bar + "\n" + InputStyle.Render(strings.Join(items, "   "))
}
