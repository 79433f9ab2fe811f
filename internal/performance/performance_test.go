package performance

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/chart"
)

func i64(v int64) *int64 { return &v }

func f64(v float64) *float64 { return &v }

func utc(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func ts(s string) int64 { return utc(s).Unix() }

func ptrs(vs ...int64) []*int64 {
	out := make([]*int64, len(vs))
	for i := range vs {
		out[i] = i64(vs[i])
	}
	return out
}

func TestLookup(t *testing.T) {
	tests := []struct {
		tf     string
		unit   string
		layout string
	}{
		{"1D", "hour", "Jan 2, 15:04"},
		{"1W", "day", "Jan 2, 15:04"},
		{"1M", "day", "Jan 2, 15:04"},
		{"3M", "day", "Jan 2, 15:04"},
		{"1Y", "month", "Jan 2, 2006"},
		{"ALL", "month", "Jan 2, 2006"},
		{"5Y", "hour", "Jan 2, 15:04"},
	}
	for _, tt := range tests {
		t.Run(tt.tf, func(t *testing.T) {
			got := Lookup(tt.tf)
			assert.Equal(t, tt.unit, got.Unit)
			assert.Equal(t, tt.layout, got.TooltipLayout)
		})
	}
}

func TestCycle(t *testing.T) {
	assert.Equal(t, "1W", Cycle("1D", 1))
	assert.Equal(t, "1D", Cycle("ALL", 1))
	assert.Equal(t, "ALL", Cycle("1D", -1))
	assert.Equal(t, "1W", Cycle("unknown", 1))
}

func TestBuildSeries_DropsInvalidAndSorts(t *testing.T) {
	h := &api.HistoryResponse{
		Timestamp: []*int64{
			i64(ts("2024-01-03T00:00:00Z")),
			i64(ts("2024-01-01T00:00:00Z")),
			nil,
			i64(ts("2024-01-02T00:00:00Z")),
			i64(ts("2024-01-04T00:00:00Z")),
		},
		Equity: []*float64{f64(1300), f64(1000), f64(5), nil, f64(math.NaN())},
	}

	points, err := BuildSeries(h, time.UTC)

	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, utc("2024-01-01T00:00:00Z"), points[0].Time)
	assert.Equal(t, 1000.0, points[0].Equity)
	assert.Equal(t, 1300.0, points[1].Equity)
}

func TestBuildSeries_LengthMismatch(t *testing.T) {
	h := &api.HistoryResponse{
		Timestamp: ptrs(1, 2, 3),
		Equity:    []*float64{f64(1), f64(2)},
	}

	assert.NotPanics(t, func() {
		points, err := BuildSeries(h, time.UTC)
		assert.True(t, errors.Is(err, ErrLengthMismatch))
		assert.Nil(t, points)
	})
}

func TestBuildSeries_Nil(t *testing.T) {
	points, err := BuildSeries(nil, nil)
	assert.NoError(t, err)
	assert.Empty(t, points)
}

func TestComputeStats(t *testing.T) {
	h := &api.HistoryResponse{
		Equity:        []*float64{f64(1000), nil, f64(1200), f64(900)},
		ProfitLossPct: []*float64{f64(0), f64(0.01), f64(0.0525)},
	}

	s := ComputeStats(h)

	assert.True(t, s.HasReturn)
	assert.InDelta(t, 5.25, s.TotalReturn, 1e-9)
	assert.True(t, s.HasRange)
	assert.Equal(t, 1200.0, s.High)
	assert.Equal(t, 900.0, s.Low)
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(&api.HistoryResponse{ProfitLossPct: []*float64{nil}})
	assert.False(t, s.HasReturn)
	assert.False(t, s.HasRange)
	assert.Zero(t, s.High)
}

func TestTableRows(t *testing.T) {
	points := []Point{
		{Time: utc("2024-01-01T00:00:00Z"), Equity: 1000},
		{Time: utc("2024-01-02T00:00:00Z"), Equity: 1100},
		{Time: utc("2024-01-03T00:00:00Z"), Equity: 990},
	}

	rows := TableRows(points)

	require.Len(t, rows, 3)
	assert.Equal(t, 990.0, rows[0].Equity)
	assert.True(t, rows[0].HasChange)
	assert.InDelta(t, -10.0, rows[0].Change, 1e-9)
	assert.InDelta(t, 10.0, rows[1].Change, 1e-9)
	assert.False(t, rows[2].HasChange)
	assert.True(t, rows[0].Time.After(rows[1].Time))
}

func TestTableRows_ZeroPrevious(t *testing.T) {
	rows := TableRows([]Point{{Equity: 0}, {Equity: 10}})
	assert.False(t, rows[0].HasChange)
}

func TestChartConfig_YearUsesMonths(t *testing.T) {
	points := []Point{
		{Time: utc("2024-01-15T00:00:00Z"), Equity: 1000},
		{Time: utc("2024-06-15T00:00:00Z"), Equity: 1200},
	}

	cfg := ChartConfig(points, Lookup("1Y"))

	assert.Equal(t, chart.KindLine, cfg.Kind)
	assert.Equal(t, "month", cfg.Options.TimeUnit)
	assert.Equal(t, []string{"Jan 2024", "Jun 2024"}, cfg.Labels)
	assert.Equal(t, []float64{1000, 1200}, cfg.Datasets[0].Values)
	require.NotNil(t, cfg.Options.BeginAtZero)
	assert.False(t, *cfg.Options.BeginAtZero)
}
