// Package performance turns portfolio history responses into chart series,
// summary statistics and table rows.
package performance

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/chart"
)

// DefaultTimeframe is selected when the panel first opens.
const DefaultTimeframe = "1D"

// Timeframes lists the selectable history ranges in display order.
var Timeframes = []string{"1D", "1W", "1M", "3M", "1Y", "ALL"}

// Timeframe describes how a history range is displayed.
type Timeframe struct {
	Name string
	// Unit is the x-axis granularity: hour, day or month.
	Unit string
	// TooltipLayout formats the time of a single point.
	TooltipLayout string
}

const (
	layoutDayTime = "Jan 2, 15:04"
	layoutDate    = "Jan 2, 2006"
)

var timeframes = map[string]Timeframe{
	"1D":  {Name: "1D", Unit: "hour", TooltipLayout: layoutDayTime},
	"1W":  {Name: "1W", Unit: "day", TooltipLayout: layoutDayTime},
	"1M":  {Name: "1M", Unit: "day", TooltipLayout: layoutDayTime},
	"3M":  {Name: "3M", Unit: "day", TooltipLayout: layoutDayTime},
	"1Y":  {Name: "1Y", Unit: "month", TooltipLayout: layoutDate},
	"ALL": {Name: "ALL", Unit: "month", TooltipLayout: layoutDate},
}

// Lookup returns the display settings for name. Unknown names fall back to
// hourly granularity.
func Lookup(name string) Timeframe {
	if tf, ok := timeframes[name]; ok {
		return tf
	}
	return Timeframe{Name: name, Unit: "hour", TooltipLayout: layoutDayTime}
}

// AxisLayout formats tick labels for a unit.
func AxisLayout(unit string) string {
	switch unit {
	case "day", "week":
		return "Jan 2"
	case "month":
		return "Jan 2006"
	default:
		return "15:04"
	}
}

// Cycle returns the timeframe step positions away from current, wrapping
// around the list.
func Cycle(current string, step int) string {
	idx := 0
	for i, tf := range Timeframes {
		if tf == current {
			idx = i
			break
		}
	}
	n := len(Timeframes)
	return Timeframes[((idx+step)%n+n)%n]
}

// Point is one valid sample of the equity series.
type Point struct {
	Time   time.Time
	Equity float64
}

// ErrLengthMismatch is returned when timestamps and equity values do not pair up.
var ErrLengthMismatch = errors.New("timestamp and equity lengths differ")

// BuildSeries pairs timestamps with equity values, drops missing or
// non-finite samples and sorts the rest by time.
func BuildSeries(h *api.HistoryResponse, loc *time.Location) ([]Point, error) {
	if h == nil {
		return nil, nil
	}
	if len(h.Timestamp) != len(h.Equity) {
		return nil, fmt.Errorf("%w: %d timestamps, %d equity values", ErrLengthMismatch, len(h.Timestamp), len(h.Equity))
	}
	if loc == nil {
		loc = time.Local
	}

	points := make([]Point, 0, len(h.Timestamp))
	for i, ts := range h.Timestamp {
		eq := h.Equity[i]
		if ts == nil || *ts == 0 || eq == nil || !finite(*eq) {
			continue
		}
		points = append(points, Point{Time: time.Unix(*ts, 0).In(loc), Equity: *eq})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

// Stats summarises a history response.
type Stats struct {
	TotalReturn float64
	HasReturn   bool
	High        float64
	Low         float64
	HasRange    bool
}

// ComputeStats takes the total return from the last cumulative return value
// and the range from every valid equity value.
func ComputeStats(h *api.HistoryResponse) Stats {
	var s Stats
	if h == nil {
		return s
	}
	if n := len(h.ProfitLossPct); n > 0 && h.ProfitLossPct[n-1] != nil && finite(*h.ProfitLossPct[n-1]) {
		s.TotalReturn = *h.ProfitLossPct[n-1] * 100
		s.HasReturn = true
	}

	s.High, s.Low = math.Inf(-1), math.Inf(1)
	for _, eq := range h.Equity {
		if eq == nil || !finite(*eq) {
			continue
		}
		s.High = math.Max(s.High, *eq)
		s.Low = math.Min(s.Low, *eq)
		s.HasRange = true
	}
	if !s.HasRange {
		s.High, s.Low = 0, 0
	}
	return s
}

// Row is one line of the table view.
type Row struct {
	Time      time.Time
	Equity    float64
	Change    float64
	HasChange bool
}

// TableRows returns points newest first, each with its percent change from
// the chronologically previous point. The oldest row has no change.
func TableRows(points []Point) []Row {
	rows := make([]Row, len(points))
	for i := range points {
		p := points[len(points)-1-i]
		rows[i] = Row{Time: p.Time, Equity: p.Equity}
		if prevIdx := len(points) - 2 - i; prevIdx >= 0 {
			prev := points[prevIdx].Equity
			if prev != 0 {
				rows[i].Change = (p.Equity - prev) / prev * 100
				rows[i].HasChange = true
			}
		}
	}
	return rows
}

// ChartConfig builds the line chart for a series.
func ChartConfig(points []Point, tf Timeframe) chart.Config {
	labels := make([]string, len(points))
	values := make([]float64, len(points))
	layout := AxisLayout(tf.Unit)
	for i, p := range points {
		labels[i] = p.Time.Format(layout)
		values[i] = p.Equity
	}
	return chart.Line(chart.Data{
		Labels:   labels,
		Datasets: []chart.Dataset{{Label: "Portfolio Value", Values: values}},
	}, chart.Options{
		Title:         "Portfolio Value (" + tf.Name + ")",
		BeginAtZero:   chart.Bool(false),
		TimeUnit:      tf.Unit,
		TooltipFormat: tf.TooltipLayout,
	})
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
