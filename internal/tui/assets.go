package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/portfolio"
)

// AssetsModel holds the state for the total-assets tool, which lists the
// facts the assistant stored about the user.
type AssetsModel struct {
	State LoadState
	// All is set when every category is listed instead of assets only.
	All   bool
	Items []api.InfoItem
	Err   error

	client *api.Client
	loc    *time.Location
}

// NewAssetsModel creates a new assets model.
func NewAssetsModel(client *api.Client, loc *time.Location) *AssetsModel {
	return &AssetsModel{client: client, loc: loc}
}

// Load fetches the current selection.
func (m *AssetsModel) Load() tea.Cmd {
	m.State = LoadStateLoading
	m.Err = nil
	return FetchInfo(m.client, m.All)
}

// ToggleAll switches between assets and all information and reloads.
func (m *AssetsModel) ToggleAll() tea.Cmd {
	m.All = !m.All
	return m.Load()
}

// Update handles messages for the assets tool.
func (m *AssetsModel) Update(msg tea.Msg) (*AssetsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case InfoLoadedMsg:
		if msg.All != m.All {
			return m, nil
		}
		m.State = LoadStateLoaded
		m.Items = msg.Items
		return m, nil

	case InfoErrorMsg:
		if msg.All != m.All {
			return m, nil
		}
		m.State = LoadStateError
		m.Err = msg.Err
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "i" {
			return m, m.ToggleAll()
		}
	}
	return m, nil
}

// View renders the assets tool.
func (m *AssetsModel) View() string {
	title, loadErr := portfolio.AssetsTitle, portfolio.AssetsLoadError
	if m.All {
		title, loadErr = portfolio.AllInfoTitle, portfolio.AllInfoLoadError
	}

	var b strings.Builder
	b.WriteString(SummaryStyle.Render(title))
	b.WriteString("\n\n")

	switch m.State {
	case LoadStateIdle, LoadStateLoading:
		b.WriteString(LabelStyle.Render("Loading..."))
		return b.String()
	case LoadStateError:
		b.WriteString(ErrorStyle.Render(loadErr))
		return b.String()
	}

	if len(m.Items) == 0 {
		b.WriteString(LabelStyle.Render(portfolio.NoAssetsMessage))
		return b.String()
	}

	if !m.All {
		for _, it := range m.Items {
			m.writeItem(&b, it)
		}
		return b.String()
	}

	for i, g := range portfolio.GroupInfo(m.Items) {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(TitleStyle.Render(g.Title))
		b.WriteString("\n")
		for _, it := range g.Items {
			m.writeItem(&b, it)
		}
	}
	return b.String()
}

func (m *AssetsModel) writeItem(b *strings.Builder, it api.InfoItem) {
	b.WriteString("• ")
	b.WriteString(it.Content)
	if it.UpdatedAt != "" {
		b.WriteString(DescStyle.Render("  (" + portfolio.FormatTimestamp(it.UpdatedAt, m.loc) + ")"))
	}
	b.WriteString("\n")
}
