package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/portfolio"
)

// PortfolioLoadError is shown when metrics could not be fetched at all.
const PortfolioLoadError = "Error loading portfolio data. Please check your Alpaca credentials."

// PortfolioState represents the loading state of portfolio data.
type PortfolioState int

const (
	PortfolioStateLoading PortfolioState = iota
	PortfolioStateLoaded
	PortfolioStateError
)

// PortfolioModel holds the state for the account summary panel.
type PortfolioModel struct {
	State       PortfolioState
	Metrics     api.Metrics
	Err         error
	LastUpdated time.Time

	// gen identifies the live refresh timer. Ticks from older timers are dropped.
	gen     int
	stopped bool

	client   *api.Client
	interval time.Duration
	logger   *zap.Logger
}

// NewPortfolioModel creates a new portfolio model.
func NewPortfolioModel(client *api.Client, opts Options) *PortfolioModel {
	return &PortfolioModel{
		State:    PortfolioStateLoading,
		client:   client,
		interval: opts.RefreshInterval,
		logger:   opts.Logger,
	}
}

// Init fetches the metrics for the first time.
func (m *PortfolioModel) Init() tea.Cmd {
	return FetchMetrics(m.client)
}

// Refresh fetches the metrics now.
func (m *PortfolioModel) Refresh() tea.Cmd {
	if m.State != PortfolioStateLoaded {
		m.State = PortfolioStateLoading
	}
	return FetchMetrics(m.client)
}

// Render shows metrics and restarts the refresh timer.
func (m *PortfolioModel) Render(metrics api.Metrics) tea.Cmd {
	m.State = PortfolioStateLoaded
	m.Metrics = metrics
	m.Err = nil
	m.LastUpdated = time.Now()
	return m.restartTimer()
}

// Stop cancels the refresh timer for good.
func (m *PortfolioModel) Stop() {
	m.stopped = true
	m.gen++
}

// Stopped reports whether Stop was called.
func (m *PortfolioModel) Stopped() bool {
	return m.stopped
}

func (m *PortfolioModel) restartTimer() tea.Cmd {
	if m.stopped {
		return nil
	}
	m.gen++
	return m.tick()
}

func (m *PortfolioModel) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return RefreshTickMsg{Gen: gen}
	})
}

// Update handles messages for the portfolio panel.
func (m *PortfolioModel) Update(msg tea.Msg) (*PortfolioModel, tea.Cmd) {
	switch msg := msg.(type) {
	case MetricsLoadedMsg:
		return m, m.Render(msg.Metrics)

	case MetricsErrorMsg:
		m.State = PortfolioStateError
		m.Err = msg.Err
		m.logger.Warn("metrics refresh failed", zap.Error(msg.Err))
		// A failed refresh keeps the running timer; a failed first load has none.
		return m, nil

	case RefreshTickMsg:
		if msg.Gen != m.gen || m.stopped {
			return m, nil
		}
		return m, tea.Batch(FetchMetrics(m.client), m.tick())
	}
	return m, nil
}

// ErrorText is the message shown for the current error. Errors reported by
// the backend are shown as sent.
func (m *PortfolioModel) ErrorText() string {
	var appErr *api.AppError
	if errors.As(m.Err, &appErr) {
		return appErr.Message
	}
	return PortfolioLoadError
}

// View renders the account summary.
func (m *PortfolioModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Account Summary"))
	if !m.LastUpdated.IsZero() {
		b.WriteString(DescStyle.Render("  updated " + m.LastUpdated.Format("15:04:05")))
	}
	b.WriteString("\n")

	switch m.State {
	case PortfolioStateLoading:
		if m.Metrics == nil {
			b.WriteString(LabelStyle.Render("Loading portfolio..."))
			return b.String()
		}
	case PortfolioStateError:
		b.WriteString(ErrorStyle.Render(m.ErrorText()))
		b.WriteString("\n")
		b.WriteString(DescStyle.Render("Press 'r' to retry"))
		if m.Metrics == nil {
			return b.String()
		}
		b.WriteString("\n")
	}

	cards := make([]string, 0, len(portfolio.MetricFields))
	for _, d := range portfolio.DisplayMetrics(m.Metrics) {
		value := ValueStyle.Render(d.Value)
		if d.ID == "daily-change" && d.Value != "-" {
			value = signStyle(d.Negative).Bold(true).Render(d.Value)
		}
		cards = append(cards, MetricCardStyle.Render(fmt.Sprintf("%s\n%s", LabelStyle.Render(d.Label), value)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	return b.String()
}
