package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/portfolio"
)

// AnalysisModel holds the state for the symbol analysis tool.
type AnalysisModel struct {
	State    LoadState
	Input    textinput.Model
	Editing  bool
	Analysis *api.AnalysisResponse
	Err      error

	client *api.Client
}

// NewAnalysisModel creates a new analysis model.
func NewAnalysisModel(client *api.Client) *AnalysisModel {
	ti := textinput.New()
	ti.Placeholder = "Enter symbol (e.g., AAPL)"
	ti.CharLimit = 10
	ti.Width = 20

	return &AnalysisModel{Input: ti, client: client}
}

// Analyze fetches the analysis of symbol.
func (m *AnalysisModel) Analyze(symbol string) tea.Cmd {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil
	}
	m.Input.SetValue(symbol)
	m.State = LoadStateLoading
	m.Err = nil
	return FetchAnalysis(m.client, symbol)
}

// StartEditing focuses the symbol input.
func (m *AnalysisModel) StartEditing() tea.Cmd {
	m.Editing = true
	return m.Input.Focus()
}

// StopEditing blurs the symbol input.
func (m *AnalysisModel) StopEditing() {
	m.Editing = false
	m.Input.Blur()
}

// Update handles messages for the analysis tool.
func (m *AnalysisModel) Update(msg tea.Msg) (*AnalysisModel, tea.Cmd) {
	switch msg := msg.(type) {
	case AnalysisLoadedMsg:
		m.State = LoadStateLoaded
		m.Analysis = msg.Analysis
		return m, nil

	case AnalysisErrorMsg:
		m.State = LoadStateError
		m.Err = msg.Err
		return m, nil

	case tea.KeyMsg:
		if !m.Editing {
			if msg.Type == tea.KeyEnter {
				return m, m.StartEditing()
			}
			return m, nil
		}
		switch msg.Type {
		case tea.KeyEsc:
			m.StopEditing()
			return m, nil
		case tea.KeyEnter:
			m.StopEditing()
			return m, m.Analyze(m.Input.Value())
		}
		var cmd tea.Cmd
		m.Input, cmd = m.Input.Update(msg)
		m.Input.SetValue(strings.ToUpper(m.Input.Value()))
		return m, cmd
	}
	return m, nil
}

// View renders the analysis tool.
func (m *AnalysisModel) View() string {
	var b strings.Builder
	b.WriteString(LabelStyle.Render("Symbol: "))
	b.WriteString(m.Input.View())
	b.WriteString("\n\n")

	switch m.State {
	case LoadStateIdle:
		b.WriteString(DescStyle.Render("Press enter to analyze a symbol"))
	case LoadStateLoading:
		b.WriteString(LabelStyle.Render("Analyzing..."))
	case LoadStateError:
		var appErr *api.AppError
		if errors.As(m.Err, &appErr) {
			b.WriteString(ErrorStyle.Render(appErr.Message))
		} else {
			b.WriteString(ErrorStyle.Render("Error analyzing symbol"))
		}
	case LoadStateLoaded:
		b.WriteString(SummaryStyle.Render(m.Analysis.Symbol))
		b.WriteString("\n")
		cards := make([]string, 0, 3)
		for _, c := range portfolio.AnalysisCards(m.Analysis) {
			value := ValueStyle.Render(c.Value)
			if c.Label == "24h Change" && c.Value != "-" {
				value = signStyle(c.Negative).Bold(true).Render(c.Value)
			}
			cards = append(cards, MetricCardStyle.Render(LabelStyle.Render(c.Label)+"\n"+value))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return b.String()
}
