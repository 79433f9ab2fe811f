// Package tui implements the interactive dashboard: an assistant chat next
// to the account summary, performance chart and portfolio tools.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/bus"
	"github.com/finassist/fin/internal/performance"
	"github.com/finassist/fin/internal/portfolio"
)

// Focus is the panel receiving keyboard input.
type Focus int

const (
	FocusChat Focus = iota
	FocusDashboard
)

// Model is the main bubbletea model for the TUI.
type Model struct {
	focus  Focus
	width  int
	height int
	ready  bool

	bus         *bus.Bus[tea.Cmd]
	unsubscribe []func()
	logger      *zap.Logger

	// Child view models
	chat         *ChatModel
	portfolio    *PortfolioModel
	performance  *PerformanceModel
	tools        *ToolsModel
	quickActions *QuickActionsModel
}

// New creates a new TUI model talking to the backend through client.
func New(client *api.Client, opts Options) Model {
	opts = opts.withDefaults()
	b := bus.New[tea.Cmd]()

	m := Model{
		focus:        FocusChat,
		bus:          b,
		logger:       opts.Logger,
		chat:         NewChatModel(client, b, opts),
		portfolio:    NewPortfolioModel(client, opts),
		performance:  NewPerformanceModel(client, opts),
		tools:        NewToolsModel(client, b, opts),
		quickActions: NewQuickActionsModel(b),
	}
	m.subscribe()
	return m
}

// subscribe wires the cross-panel events.
func (m *Model) subscribe() {
	chatPanel, portfolioPanel, perfPanel, tools := m.chat, m.portfolio, m.performance, m.tools

	m.unsubscribe = []func(){
		bus.On(m.bus, func(e bus.ActionSelected) tea.Cmd {
			return chatPanel.Submit(e.Action)
		}),
		bus.On(m.bus, func(e bus.ChatMessage) tea.Cmd {
			return chatPanel.Send(e.Text)
		}),
		bus.On(m.bus, tools.HandleToolSelected),
		bus.On(m.bus, tools.HandleBotAction),
		bus.On(m.bus, func(e bus.CredentialsStored) tea.Cmd {
			var render tea.Cmd
			if len(e.Metrics) > 0 {
				render = portfolioPanel.Render(e.Metrics)
			} else {
				render = portfolioPanel.Refresh()
			}
			return tea.Batch(render, perfPanel.Load(performance.DefaultTimeframe))
		}),
	}
}

// publish delivers e on b and batches the handlers' commands.
func publish(b *bus.Bus[tea.Cmd], e bus.Event) tea.Cmd {
	return tea.Batch(b.Publish(e)...)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.chat.Init(),
		m.portfolio.Init(),
		m.chat.Focus(),
	)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.portfolio.Stop()
	for _, unsub := range m.unsubscribe {
		unsub()
	}
	m.unsubscribe = nil
	return m, tea.Quit
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case ChatResponseMsg, ChatErrorMsg, ChatStepMsg, ChatClearedMsg,
		CredentialsSavedMsg, AttachmentSavedMsg, downloadResetMsg, spinner.TickMsg:
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case MetricsLoadedMsg, MetricsErrorMsg, RefreshTickMsg:
		m.portfolio, cmd = m.portfolio.Update(msg)
		return m, cmd

	case HistoryLoadedMsg, HistoryErrorMsg:
		m.performance, cmd = m.performance.Update(msg)
		return m, cmd

	case UIConfigSavedMsg:
		if msg.Err != nil {
			m.logger.Warn("failed to save ui config", zap.Error(msg.Err))
		}
		return m, nil

	default:
		m.tools, cmd = m.tools.Update(msg)
		return m, cmd
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if key.Matches(msg, keys.Quit) {
		return m.quit()
	}

	// An open quick-action menu consumes all keys
	if m.quickActions.IsOpen() {
		for i, b := range keys.Menus {
			if key.Matches(msg, b) {
				return m, m.quickActions.Toggle(i)
			}
		}
		m.quickActions, cmd = m.quickActions.Update(msg)
		return m, cmd
	}
	for i, b := range keys.Menus {
		if key.Matches(msg, b) {
			return m, m.quickActions.Toggle(i)
		}
	}

	if m.focus == FocusDashboard && m.tools.Editing() {
		m.tools, cmd = m.tools.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, keys.Focus) {
		return m, m.toggleFocus()
	}

	if m.focus == FocusChat {
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	switch {
	case msg.String() == "q":
		return m.quit()
	case key.Matches(msg, keys.Escape):
		return m, nil
	case key.Matches(msg, keys.Refresh):
		cmds := []tea.Cmd{m.portfolio.Refresh(), m.tools.Reload()}
		if m.performance.Visible() {
			cmds = append(cmds, m.performance.Load(m.performance.Timeframe))
		}
		return m, tea.Batch(cmds...)
	case key.Matches(msg, keys.Performance):
		return m, m.performance.Toggle()
	}

	switch msg.String() {
	case "[", "]", "v", "pgup", "pgdown":
		m.performance, cmd = m.performance.Update(msg)
		return m, cmd
	}

	m.tools, cmd = m.tools.Update(msg)
	return m, cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == FocusChat {
		m.focus = FocusDashboard
		m.chat.Blur()
		return nil
	}
	m.focus = FocusChat
	return m.chat.Focus()
}

// layout returns the outer widths of both columns and the body height.
func (m Model) layout() (chatWidth, dashWidth, bodyHeight int) {
	chatWidth = m.width * 2 / 5
	dashWidth = m.width - chatWidth
	bodyHeight = m.height - lipgloss.Height(m.renderHeader()) - 1
	return chatWidth, dashWidth, max(bodyHeight, 6)
}

func (m Model) resize() {
	chatWidth, dashWidth, bodyHeight := m.layout()
	// border and padding
	inner := bodyHeight - 2
	m.chat.SetSize(chatWidth-4, inner)
	m.performance.SetSize(dashWidth-4, max(inner/3, 6))
	m.tools.SetSize(dashWidth-4, max(inner/2, 6))
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	chatWidth, dashWidth, bodyHeight := m.layout()

	chatStyle, dashStyle := PanelStyle, PanelStyle
	if m.focus == FocusChat {
		chatStyle = FocusedPanelStyle
	} else {
		dashStyle = FocusedPanelStyle
	}

	inner := bodyHeight - 2
	left := chatStyle.Width(chatWidth - 2).Render(fitLines(m.chat.View(), inner))
	right := dashStyle.Width(dashWidth - 2).Render(fitLines(m.renderDashboard(), inner))

	return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n" + footer
}

func (m Model) renderDashboard() string {
	sections := []string{m.portfolio.View()}
	if m.performance.Visible() {
		sections = append(sections, m.performance.View())
	}
	sections = append(sections, m.tools.TabsView()+"\n"+m.tools.View())
	return strings.Join(sections, "\n\n")
}

// fitLines pads or truncates s to exactly height lines.
func fitLines(s string, height int) string {
	lines := strings.Split(s, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// renderHeader renders the header bar with the quick-action menus.
func (m Model) renderHeader() string {
	title := HeaderStyle.Render("fin")
	headerContent := title + "  " + m.quickActions.View()

	return lipgloss.NewStyle().
		Background(ColorBackground).
		Width(m.width).
		Render(headerContent)
}

// renderFooter renders the footer bar with key hints.
func (m Model) renderFooter() string {
	var parts []string

	switch {
	case m.quickActions.IsOpen():
		parts = []string{
			KeyStyle.Render("1-2") + " " + DescStyle.Render("choose"),
			hint(keys.Escape),
		}
	case m.focus == FocusChat:
		parts = []string{
			KeyStyle.Render("enter") + " " + DescStyle.Render("send"),
			hint(keys.Focus),
			KeyStyle.Render("F1-F4") + " " + DescStyle.Render("quick actions"),
			hint(keys.Save),
			hint(keys.Clear),
			hint(keys.Quit),
		}
	case m.tools.Editing():
		parts = []string{
			KeyStyle.Render("tab") + " " + DescStyle.Render("next field"),
			KeyStyle.Render("←/→") + " " + DescStyle.Render("change"),
			KeyStyle.Render("enter") + " " + DescStyle.Render("submit"),
			KeyStyle.Render("esc") + " " + DescStyle.Render("done"),
		}
	default:
		parts = []string{
			KeyStyle.Render("1-6") + " " + DescStyle.Render("tools"),
			hint(keys.Focus),
			KeyStyle.Render("↑/↓") + " " + DescStyle.Render("navigate"),
			hint(keys.Refresh),
			hint(keys.Performance),
		}
		switch m.tools.Active {
		case portfolio.ToolTrade, portfolio.ToolAnalysis:
			parts = append(parts,
				KeyStyle.Render("enter")+" "+DescStyle.Render("edit"),
				KeyStyle.Render("s")+" "+DescStyle.Render("pick held symbol"),
			)
		case portfolio.ToolTotalAssets:
			parts = append(parts, KeyStyle.Render("i")+" "+DescStyle.Render("all info"))
		}
		if m.performance.Visible() {
			parts = append(parts,
				KeyStyle.Render("[/]")+" "+DescStyle.Render("timeframe"),
				KeyStyle.Render("v")+" "+DescStyle.Render("chart/table"),
			)
		}
		parts = append(parts, KeyStyle.Render("q")+" "+DescStyle.Render("quit"))
	}

	footerContent := strings.Join(parts, "  •  ")

	// Pad to full width
	padding := m.width - lipgloss.Width(footerContent)
	if padding > 0 {
		footerContent += strings.Repeat(" ", padding)
	}

	return lipgloss.NewStyle().
		Background(ColorBackground).
		Width(m.width).
		Render(footerContent)
}
