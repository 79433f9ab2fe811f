package tui

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finassist/fin/internal/api"
)

func newTestPortfolio(t *testing.T) (*PortfolioModel, *backend) {
	t.Helper()
	b := newBackend(t)
	return NewPortfolioModel(b.client(), testOptions(t)), b
}

func TestPortfolio_InitLoadsMetrics(t *testing.T) {
	m, _ := newTestPortfolio(t)
	assert.Equal(t, PortfolioStateLoading, m.State)
	assert.Contains(t, m.View(), "Loading portfolio...")

	msgs := runCmd(t, m.Init())
	loaded, ok := findMsg[MetricsLoadedMsg](msgs)
	require.True(t, ok)

	_, cmd := m.Update(loaded)

	assert.NotNil(t, cmd, "render starts the refresh timer")
	assert.Equal(t, PortfolioStateLoaded, m.State)
	assert.Equal(t, 1, m.gen)
	assert.False(t, m.LastUpdated.IsZero())

	view := m.View()
	assert.Contains(t, view, "Total Value")
	assert.Contains(t, view, "12,345.67")
	assert.Contains(t, view, "-0.50%")
}

func TestPortfolio_RenderRestartsTimer(t *testing.T) {
	m, b := newTestPortfolio(t)

	m.Render(api.Metrics{api.MetricTotalValue: "1"})
	m.Render(api.Metrics{api.MetricTotalValue: "2"})
	require.Equal(t, 2, m.gen)

	_, cmd := m.Update(RefreshTickMsg{Gen: 1})
	assert.Nil(t, cmd, "tick from a replaced timer")

	_, cmd = m.Update(RefreshTickMsg{Gen: 2})
	require.NotNil(t, cmd)
	msgs := runCmd(t, cmd)
	_, ok := findMsg[MetricsLoadedMsg](msgs)
	assert.True(t, ok)
	assert.Len(t, b.requestsTo("/api/portfolio/metrics"), 1)
}

func TestPortfolio_ErrorKeepsTimer(t *testing.T) {
	m, _ := newTestPortfolio(t)
	m.Render(api.Metrics{api.MetricTotalValue: "100"})
	gen := m.gen

	_, cmd := m.Update(MetricsErrorMsg{Err: errors.New("boom")})

	assert.Nil(t, cmd)
	assert.Equal(t, PortfolioStateError, m.State)
	assert.Equal(t, gen, m.gen)
	assert.Equal(t, PortfolioLoadError, m.ErrorText())

	_, cmd = m.Update(RefreshTickMsg{Gen: gen})
	assert.NotNil(t, cmd, "the running timer still fires")

	view := m.View()
	assert.Contains(t, view, PortfolioLoadError)
	assert.Contains(t, view, "Press 'r' to retry")
	assert.Contains(t, view, "100.00", "last known metrics stay visible")
}

func TestPortfolio_BackendErrorShownVerbatim(t *testing.T) {
	m, b := newTestPortfolio(t)
	b.respond("/api/portfolio/metrics", http.StatusOK, `{"error": "Alpaca credentials not configured"}`)

	msgs := runCmd(t, m.Refresh())
	failed, ok := findMsg[MetricsErrorMsg](msgs)
	require.True(t, ok)
	m.Update(failed)

	assert.Equal(t, "Alpaca credentials not configured", m.ErrorText())
	assert.Contains(t, m.View(), "Alpaca credentials not configured")
}

func TestPortfolio_Stop(t *testing.T) {
	m, _ := newTestPortfolio(t)
	m.Render(api.Metrics{})
	gen := m.gen

	m.Stop()

	assert.True(t, m.Stopped())
	_, cmd := m.Update(RefreshTickMsg{Gen: gen})
	assert.Nil(t, cmd)
	_, cmd = m.Update(RefreshTickMsg{Gen: m.gen})
	assert.Nil(t, cmd)
	assert.Nil(t, m.Render(api.Metrics{}), "no timer after stop")
}

func TestPortfolio_RefreshKeepsLoadedState(t *testing.T) {
	m, _ := newTestPortfolio(t)
	m.Render(api.Metrics{api.MetricTotalValue: "5"})

	m.Refresh()

	assert.Equal(t, PortfolioStateLoaded, m.State)
}

func TestPortfolio_MissingMetricsRenderDash(t *testing.T) {
	m, _ := newTestPortfolio(t)
	m.Render(api.Metrics{api.MetricTotalValue: "not a number"})

	assert.Contains(t, m.View(), "-")
}
