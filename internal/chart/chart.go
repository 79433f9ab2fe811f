// Package chart builds pie, line and bar chart configurations and draws them
// onto named canvases. Building a configuration is pure; drawing is delegated
// to a Renderer.
package chart

import (
	"github.com/finassist/fin/internal/format"
)

// Kind is the chart type.
type Kind string

const (
	KindPie  Kind = "pie"
	KindLine Kind = "line"
	KindBar  Kind = "bar"
)

// Dataset is one series of values.
type Dataset struct {
	Label  string
	Values []float64
	Colors []string
	Fill   bool
	// Shares are precomputed pie percentages, one per value.
	Shares []float64
}

// Data is the input to the builders. Pie charts read Values, Colors and
// Shares; line and bar charts read Datasets.
type Data struct {
	Labels   []string
	Values   []float64
	Colors   []string
	Shares   []float64
	Datasets []Dataset
}

// Options controls presentation. Zero values mean "use the default".
type Options struct {
	Title          string
	LegendPosition string
	BeginAtZero    *bool
	TimeUnit       string
	TooltipFormat  string
	// ValueFormatter renders axis and tooltip values.
	ValueFormatter func(float64) string
}

// Merge returns o with every non-zero field of override applied on top.
func (o Options) Merge(override Options) Options {
	if override.Title != "" {
		o.Title = override.Title
	}
	if override.LegendPosition != "" {
		o.LegendPosition = override.LegendPosition
	}
	if override.BeginAtZero != nil {
		v := *override.BeginAtZero
		o.BeginAtZero = &v
	}
	if override.TimeUnit != "" {
		o.TimeUnit = override.TimeUnit
	}
	if override.TooltipFormat != "" {
		o.TooltipFormat = override.TooltipFormat
	}
	if override.ValueFormatter != nil {
		o.ValueFormatter = override.ValueFormatter
	}
	return o
}

// Config is a complete, renderer-independent chart description.
type Config struct {
	Kind     Kind
	Labels   []string
	Datasets []Dataset
	Options  Options
}

// Bool returns a pointer to b, for Options.BeginAtZero.
func Bool(b bool) *bool {
	return &b
}

func defaultOptions(kind Kind) Options {
	o := Options{
		Title:          "Chart",
		LegendPosition: "top",
		ValueFormatter: format.Currency,
	}
	switch kind {
	case KindPie:
		o.LegendPosition = "right"
	case KindLine, KindBar:
		o.BeginAtZero = Bool(true)
	}
	return o
}

// Pie builds a pie chart from data.Labels and data.Values. Slice colors come
// from data.Colors when present and from the palette otherwise. Without
// data.Shares the renderer derives each share from the values.
func Pie(data Data, opts Options) Config {
	colors := data.Colors
	if len(colors) == 0 {
		colors = make([]string, len(data.Values))
		for i := range data.Values {
			colors[i] = format.ChartColor(i)
		}
	}
	return Config{
		Kind:   KindPie,
		Labels: data.Labels,
		Datasets: []Dataset{{
			Values: data.Values,
			Colors: colors,
			Shares: data.Shares,
		}},
		Options: defaultOptions(KindPie).Merge(opts),
	}
}

// Line builds a line chart; dataset i is drawn in palette color i.
func Line(data Data, opts Options) Config {
	return Config{
		Kind:     KindLine,
		Labels:   data.Labels,
		Datasets: colorDatasets(data.Datasets, true),
		Options:  defaultOptions(KindLine).Merge(opts),
	}
}

// Bar builds a bar chart; dataset i is drawn in palette color i.
func Bar(data Data, opts Options) Config {
	return Config{
		Kind:     KindBar,
		Labels:   data.Labels,
		Datasets: colorDatasets(data.Datasets, false),
		Options:  defaultOptions(KindBar).Merge(opts),
	}
}

func colorDatasets(in []Dataset, fill bool) []Dataset {
	out := make([]Dataset, len(in))
	for i, ds := range in {
		out[i] = Dataset{
			Label:  ds.Label,
			Values: ds.Values,
			Colors: []string{format.ChartColor(i)},
			Fill:   fill,
		}
	}
	return out
}

// Total returns the sum of the first dataset's values.
func (c Config) Total() float64 {
	if len(c.Datasets) == 0 {
		return 0
	}
	var total float64
	for _, v := range c.Datasets[0].Values {
		total += v
	}
	return total
}
