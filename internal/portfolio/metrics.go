// Package portfolio maps portfolio API responses to the values shown by the
// dashboard: headline metrics, positions, orders, trade requests and stored
// user information.
package portfolio

import (
	"strings"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/format"
)

// MetricField is one headline metric slot of the dashboard.
type MetricField struct {
	ID         string
	Key        string
	Percentage bool
}

// MetricFields lists the displayed metrics in screen order. Metric keys not
// listed here are never shown.
var MetricFields = []MetricField{
	{ID: "total-value", Key: api.MetricTotalValue},
	{ID: "daily-change", Key: api.MetricDailyChange, Percentage: true},
	{ID: "cash-available", Key: api.MetricCashAvailable},
	{ID: "buying-power", Key: api.MetricBuyingPower},
}

// MetricDisplay is a formatted metric ready to render.
type MetricDisplay struct {
	ID       string
	Label    string
	Value    string
	Negative bool
}

var metricNoise = strings.NewReplacer("$", "", ",", "", "+", "", "%", "")

// ParseMetricValue parses a metric as sent by the backend. Values may be
// preformatted ("$1,234.56", "+1.25%") or bare numbers. Unparseable values
// return NaN.
func ParseMetricValue(s string) float64 {
	return format.ParseFloat(metricNoise.Replace(s))
}

// DisplayMetrics formats the headline metrics. Missing or unparseable values
// render as "-".
func DisplayMetrics(m api.Metrics) []MetricDisplay {
	out := make([]MetricDisplay, 0, len(MetricFields))
	for _, f := range MetricFields {
		v := ParseMetricValue(m[f.Key])
		d := MetricDisplay{ID: f.ID, Label: f.Key, Negative: v < 0}
		if f.Percentage {
			d.Value = format.Percentage(v)
		} else {
			d.Value = format.Currency(v)
		}
		out = append(out, d)
	}
	return out
}
