package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/format"
)

// SymbolPickedMsg is sent when a held symbol is chosen.
type SymbolPickedMsg struct {
	Symbol string
	// Target is the tool that opened the picker.
	Target string
}

// SymbolPickerCancelledMsg is sent when the picker is closed without a choice.
type SymbolPickerCancelledMsg struct{}

// SymbolPickerModel lists held positions to choose a symbol from.
type SymbolPickerModel struct {
	Positions []api.Position
	Cursor    int
	Target    string
}

// NewSymbolPickerModel creates a picker over positions for target.
func NewSymbolPickerModel(positions []api.Position, target string) *SymbolPickerModel {
	return &SymbolPickerModel{Positions: positions, Target: target}
}

// Update handles keys for the picker.
func (m *SymbolPickerModel) Update(msg tea.Msg) (*SymbolPickerModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "enter":
		if m.Cursor < len(m.Positions) {
			picked := SymbolPickedMsg{Symbol: m.Positions[m.Cursor].Symbol, Target: m.Target}
			return m, func() tea.Msg { return picked }
		}
		return m, nil
	case "esc", "q":
		return m, func() tea.Msg { return SymbolPickerCancelledMsg{} }
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Positions)-1 {
			m.Cursor++
		}
	}
	return m, nil
}

// View renders the picker.
func (m *SymbolPickerModel) View() string {
	var b strings.Builder
	b.WriteString(SummaryStyle.Render("Select from Positions"))
	b.WriteString("\n\n")

	if len(m.Positions) == 0 {
		b.WriteString(LabelStyle.Render("No positions loaded. Open the positions tool first."))
		b.WriteString("\n")
	}

	for i, p := range m.Positions {
		line := fmt.Sprintf("%-8s %14s", p.Symbol, format.Currency(p.MarketValue.InexactFloat64()))
		if i == m.Cursor {
			b.WriteString(lipgloss.NewStyle().
				Foreground(ColorSelectedFg).
				Background(ColorSelected).
				Bold(true).
				Render("› " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(KeyStyle.Render("enter") + " " + DescStyle.Render("select") + "  •  " +
		KeyStyle.Render("esc") + " " + DescStyle.Render("cancel"))
	return b.String()
}
