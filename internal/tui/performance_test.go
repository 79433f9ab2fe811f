package tui

import (
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/chart"
	"github.com/finassist/fin/internal/performance"
)

func newTestPerformance(t *testing.T) (*PerformanceModel, *backend) {
	t.Helper()
	b := newBackend(t)
	opts := testOptions(t)
	opts.ConfigPath = filepath.Join(t.TempDir(), "ui.yaml")
	m := NewPerformanceModel(b.client(), opts)
	m.SetSize(60, 16)
	return m, b
}

func loadHistory(t *testing.T, m *PerformanceModel, cmd tea.Cmd) {
	t.Helper()
	loaded, ok := findMsg[HistoryLoadedMsg](runCmd(t, cmd))
	require.True(t, ok)
	m.Update(loaded)
}

func TestPerformance_HiddenUntilLoaded(t *testing.T) {
	m, _ := newTestPerformance(t)

	assert.False(t, m.Visible())
	assert.Empty(t, m.View())
	assert.Equal(t, performance.DefaultTimeframe, m.Timeframe)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	assert.Nil(t, cmd, "keys are ignored while hidden")
}

func TestPerformance_LoadDrawsChart(t *testing.T) {
	m, b := newTestPerformance(t)

	cmd := m.Load("1D")
	assert.Equal(t, PerformanceStateLoading, m.State)
	assert.Contains(t, m.View(), "Loading performance data...")

	loadHistory(t, m, cmd)

	assert.Equal(t, PerformanceStateLoaded, m.State)
	assert.Len(t, m.Points, 3)
	assert.InDelta(t, 5.0, m.Stats.TotalReturn, 1e-9)
	assert.Equal(t, 110.0, m.Stats.High)
	assert.Equal(t, 100.0, m.Stats.Low)

	inst := m.Canvas.Current()
	require.NotNil(t, inst)
	assert.Equal(t, chart.KindLine, inst.Config.Kind)

	view := m.View()
	assert.Contains(t, view, "5.00%")
	assert.Contains(t, view, "$110.00")
	assert.Contains(t, view, "[1D]")

	reqs := b.requestsTo("/api/portfolio/history")
	require.Len(t, reqs, 1)
	assert.Equal(t, "timeframe=1D", reqs[0].Query)
}

func TestPerformance_ReloadReplacesChart(t *testing.T) {
	m, _ := newTestPerformance(t)
	loadHistory(t, m, m.Load("1D"))
	first := m.Canvas.Current()

	loadHistory(t, m, m.Load("1M"))

	assert.True(t, first.Destroyed())
	assert.NotSame(t, first, m.Canvas.Current())
	assert.Equal(t, "1M", m.Timeframe)
}

func TestPerformance_ErrorClearsChart(t *testing.T) {
	m, b := newTestPerformance(t)
	loadHistory(t, m, m.Load("1D"))
	drawn := m.Canvas.Current()

	b.respond("/api/portfolio/history", http.StatusInternalServerError, `{}`)
	failed, ok := findMsg[HistoryErrorMsg](runCmd(t, m.Load("1W")))
	require.True(t, ok)
	m.Update(failed)

	assert.Equal(t, PerformanceStateError, m.State)
	assert.True(t, drawn.Destroyed())
	assert.Nil(t, m.Canvas.Current())
	assert.Contains(t, m.View(), PerformanceLoadError)
}

func TestPerformance_MismatchedHistoryIsAnError(t *testing.T) {
	m, _ := newTestPerformance(t)
	m.Load("1D")

	ts1, ts2, one := int64(1), int64(2), 1.0
	m.Update(HistoryLoadedMsg{Timeframe: "1D", History: &api.HistoryResponse{
		Timestamp: []*int64{&ts1, &ts2},
		Equity:    []*float64{&one},
	}})

	assert.Equal(t, PerformanceStateError, m.State)
	assert.True(t, errors.Is(m.Err, performance.ErrLengthMismatch))
}

func TestPerformance_TimeframeKeysCycleAndPersist(t *testing.T) {
	m, b := newTestPerformance(t)
	loadHistory(t, m, m.Load("1D"))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	msgs := runCmd(t, cmd)

	assert.Equal(t, "1W", m.Timeframe)
	saved, ok := findMsg[UIConfigSavedMsg](msgs)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	reqs := b.requestsTo("/api/portfolio/history")
	assert.Equal(t, "timeframe=1W", reqs[len(reqs)-1].Query)

	cfg, err := loadConfigFrom(m.path)
	require.NoError(t, err)
	assert.Equal(t, "1W", cfg.Timeframe)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})
	assert.Equal(t, "ALL", m.Timeframe, "cycling wraps around")
}

func TestPerformance_ViewToggle(t *testing.T) {
	m, _ := newTestPerformance(t)
	loadHistory(t, m, m.Load("1D"))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("v")})
	runCmd(t, cmd)

	assert.True(t, m.TableView)
	assert.Len(t, m.Table.Rows(), 3)
	assert.Equal(t, "-", m.Table.Rows()[2][2], "oldest row has no change")
	assert.Contains(t, m.View(), "Change")

	cfg, err := loadConfigFrom(m.path)
	require.NoError(t, err)
	assert.True(t, cfg.TableView)
}

func TestPerformance_ToggleHides(t *testing.T) {
	m, _ := newTestPerformance(t)
	loadHistory(t, m, m.Toggle())
	require.True(t, m.Visible())

	assert.Nil(t, m.Toggle())
	assert.False(t, m.Visible())
	assert.Nil(t, m.Canvas.Current())
}

func TestUIConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ui.yaml")

	cfg, err := loadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, &UIConfig{}, cfg)

	require.NoError(t, saveConfigTo(path, &UIConfig{Timeframe: "3M", TableView: true}))

	cfg, err = loadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "3M", cfg.Timeframe)
	assert.True(t, cfg.TableView)
}

func TestUIConfig_SaveDisabledWithoutPath(t *testing.T) {
	assert.Nil(t, saveUIConfig("", UIConfig{}))
}
