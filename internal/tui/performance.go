package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/chart"
	"github.com/finassist/fin/internal/format"
	"github.com/finassist/fin/internal/performance"
)

// PerformanceLoadError is shown when the history could not be loaded.
const PerformanceLoadError = "Error loading performance data"

// PerformanceState represents the loading state of the history.
type PerformanceState int

const (
	PerformanceStateHidden PerformanceState = iota
	PerformanceStateLoading
	PerformanceStateLoaded
	PerformanceStateError
)

// PerformanceModel holds the state for the performance panel.
type PerformanceModel struct {
	State     PerformanceState
	Timeframe string
	TableView bool
	Points    []performance.Point
	Stats     performance.Stats
	Err       error
	Canvas    *chart.Canvas
	Table     table.Model

	client *api.Client
	loc    *time.Location
	ui     *UIConfig
	path   string
	logger *zap.Logger
	width  int
	height int
}

// NewPerformanceModel creates a hidden performance panel.
func NewPerformanceModel(client *api.Client, opts Options) *PerformanceModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 18},
			{Title: "Value", Width: 14},
			{Title: "Change", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	t.SetStyles(TableStyles())

	return &PerformanceModel{
		State:     PerformanceStateHidden,
		Timeframe: opts.UI.Timeframe,
		TableView: opts.UI.TableView,
		Canvas:    chart.NewCanvas("performance-chart", nil),
		Table:     t,
		client:    client,
		loc:       opts.Location,
		ui:        opts.UI,
		path:      opts.ConfigPath,
		logger:    opts.Logger,
	}
}

// Visible reports whether the panel is shown.
func (m *PerformanceModel) Visible() bool {
	return m.State != PerformanceStateHidden
}

// SetSize sets the panel's dimensions.
func (m *PerformanceModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.Table.SetHeight(max(height-6, 3))
}

// Load shows the panel and fetches the history for timeframe.
func (m *PerformanceModel) Load(timeframe string) tea.Cmd {
	m.State = PerformanceStateLoading
	m.Timeframe = timeframe
	m.Err = nil
	return FetchHistory(m.client, timeframe)
}

// Toggle shows the panel, or hides it when already shown.
func (m *PerformanceModel) Toggle() tea.Cmd {
	if m.Visible() {
		m.State = PerformanceStateHidden
		m.Canvas.Clear()
		return nil
	}
	return m.Load(m.Timeframe)
}

// Update handles messages for the performance panel.
func (m *PerformanceModel) Update(msg tea.Msg) (*PerformanceModel, tea.Cmd) {
	switch msg := msg.(type) {
	case HistoryLoadedMsg:
		// A late answer for another timeframe is still drawn.
		m.Timeframe = msg.Timeframe
		points, err := performance.BuildSeries(msg.History, m.loc)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.State = PerformanceStateLoaded
		m.Points = points
		m.Stats = performance.ComputeStats(msg.History)
		m.Canvas.Draw(performance.ChartConfig(points, performance.Lookup(msg.Timeframe)))
		m.updateTable()
		return m, nil

	case HistoryErrorMsg:
		m.fail(msg.Err)
		return m, nil

	case tea.KeyMsg:
		if !m.Visible() {
			return m, nil
		}
		switch msg.String() {
		case "[":
			return m, tea.Batch(m.Load(performance.Cycle(m.Timeframe, -1)), m.persist())
		case "]":
			return m, tea.Batch(m.Load(performance.Cycle(m.Timeframe, 1)), m.persist())
		case "v":
			m.TableView = !m.TableView
			return m, m.persist()
		}
		if m.TableView {
			var cmd tea.Cmd
			m.Table, cmd = m.Table.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *PerformanceModel) fail(err error) {
	m.State = PerformanceStateError
	m.Err = err
	m.Canvas.Clear()
	m.logger.Warn("history load failed", zap.String("timeframe", m.Timeframe), zap.Error(err))
}

func (m *PerformanceModel) persist() tea.Cmd {
	m.ui.Timeframe = m.Timeframe
	m.ui.TableView = m.TableView
	return saveUIConfig(m.path, *m.ui)
}

func (m *PerformanceModel) updateTable() {
	rows := performance.TableRows(m.Points)
	layout := performance.Lookup(m.Timeframe).TooltipLayout
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		change := "-"
		if r.HasChange {
			change = format.Percentage(r.Change)
		}
		out[i] = table.Row{r.Time.Format(layout), format.Currency(r.Equity), change}
	}
	m.Table.SetRows(out)
	m.Table.GotoTop()
}

// View renders the performance panel.
func (m *PerformanceModel) View() string {
	if !m.Visible() {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Performance"))
	b.WriteString("  ")
	b.WriteString(m.renderTimeframes())
	b.WriteString("\n")

	switch m.State {
	case PerformanceStateLoading:
		b.WriteString(LabelStyle.Render("Loading performance data..."))
		return b.String()
	case PerformanceStateError:
		b.WriteString(ErrorStyle.Render(PerformanceLoadError))
		if m.Err != nil {
			b.WriteString(DescStyle.Render(": " + m.Err.Error()))
		}
		return b.String()
	}

	b.WriteString(m.renderStats())
	b.WriteString("\n")
	if len(m.Points) == 0 {
		b.WriteString(LabelStyle.Render("No performance data for this period"))
		return b.String()
	}
	if m.TableView {
		b.WriteString(m.Table.View())
	} else {
		b.WriteString(m.Canvas.View(max(m.width-2, 10), max(m.height-4, 4)))
	}
	return b.String()
}

func (m *PerformanceModel) renderTimeframes() string {
	parts := make([]string, len(performance.Timeframes))
	for i, tf := range performance.Timeframes {
		if tf == m.Timeframe {
			parts[i] = ActiveTabStyle.Render("[" + tf + "]")
		} else {
			parts[i] = InactiveTabStyle.Render(tf)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *PerformanceModel) renderStats() string {
	ret, high, low := "-", "-", "-"
	style := ValueStyle
	if m.Stats.HasReturn {
		ret = format.Percentage(m.Stats.TotalReturn)
		style = signStyle(m.Stats.TotalReturn < 0).Bold(true)
	}
	if m.Stats.HasRange {
		high = format.Currency(m.Stats.High)
		low = format.Currency(m.Stats.Low)
	}
	return fmt.Sprintf("%s %s   %s %s   %s %s",
		LabelStyle.Render("Total Return:"), style.Render(ret),
		LabelStyle.Render("High:"), ValueStyle.Render(high),
		LabelStyle.Render("Low:"), ValueStyle.Render(low),
	)
}
