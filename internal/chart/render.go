package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/finassist/fin/internal/format"
)

var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// TermRenderer draws charts with block characters for a terminal.
type TermRenderer struct {
	titleStyle lipgloss.Style
	axisStyle  lipgloss.Style
}

// NewTermRenderer creates a terminal renderer.
func NewTermRenderer() *TermRenderer {
	return &TermRenderer{
		titleStyle: lipgloss.NewStyle().Bold(true),
		axisStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Render implements Renderer.
func (r *TermRenderer) Render(cfg Config, width, height int) string {
	if width < 10 {
		width = 10
	}
	if height < 2 {
		height = 2
	}

	var b strings.Builder
	if cfg.Options.Title != "" {
		b.WriteString(r.titleStyle.Render(cfg.Options.Title))
		b.WriteString("\n")
	}

	switch cfg.Kind {
	case KindPie:
		b.WriteString(r.renderPie(cfg, width))
	case KindLine:
		b.WriteString(r.renderLine(cfg, width, height))
	case KindBar:
		b.WriteString(r.renderBar(cfg, width))
	default:
		b.WriteString(r.axisStyle.Render(fmt.Sprintf("unsupported chart type %q", cfg.Kind)))
	}
	return b.String()
}

func (r *TermRenderer) valueFormatter(cfg Config) func(float64) string {
	if cfg.Options.ValueFormatter != nil {
		return cfg.Options.ValueFormatter
	}
	return format.Currency
}

// renderPie draws one proportional bar per slice followed by its share.
// Precomputed shares win over shares derived from the values.
func (r *TermRenderer) renderPie(cfg Config, width int) string {
	if len(cfg.Datasets) == 0 {
		return ""
	}
	ds := cfg.Datasets[0]
	total := cfg.Total()
	if total <= 0 {
		return r.axisStyle.Render("No data")
	}

	fmtValue := r.valueFormatter(cfg)
	labelWidth := 0
	for _, l := range cfg.Labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}
	barWidth := max(width-labelWidth-30, 5)

	var lines []string
	for i, v := range ds.Values {
		label := ""
		if i < len(cfg.Labels) {
			label = cfg.Labels[i]
		}
		color := format.ChartColor(i)
		if i < len(ds.Colors) {
			color = ds.Colors[i]
		}
		percent := v / total * 100
		if i < len(ds.Shares) {
			percent = ds.Shares[i]
		}
		n := min(max(int(math.Round(percent/100*float64(barWidth))), 0), barWidth)
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(strings.Repeat("█", n))
		lines = append(lines, fmt.Sprintf("%-*s %s%s %6.2f%% (%s)",
			labelWidth, label, bar, strings.Repeat(" ", barWidth-n), percent, fmtValue(v)))
	}
	return strings.Join(lines, "\n")
}

// renderBar draws horizontal bars for the first dataset.
func (r *TermRenderer) renderBar(cfg Config, width int) string {
	if len(cfg.Datasets) == 0 {
		return ""
	}
	ds := cfg.Datasets[0]
	fmtValue := r.valueFormatter(cfg)

	maxAbs := 0.0
	for _, v := range ds.Values {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	labelWidth := 0
	for _, l := range cfg.Labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}
	barWidth := max(width-labelWidth-20, 5)
	color := format.ChartColor(0)
	if len(ds.Colors) > 0 {
		color = ds.Colors[0]
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))

	var lines []string
	for i, v := range ds.Values {
		label := ""
		if i < len(cfg.Labels) {
			label = cfg.Labels[i]
		}
		n := 0
		if maxAbs > 0 {
			n = int(math.Round(math.Abs(v) / maxAbs * float64(barWidth)))
		}
		lines = append(lines, fmt.Sprintf("%-*s %s %s", labelWidth, label, style.Render(strings.Repeat("■", n)), fmtValue(v)))
	}
	return strings.Join(lines, "\n")
}

// renderLine draws the first dataset as a filled area plot.
func (r *TermRenderer) renderLine(cfg Config, width, height int) string {
	if len(cfg.Datasets) == 0 || len(cfg.Datasets[0].Values) == 0 {
		return r.axisStyle.Render("No data")
	}
	ds := cfg.Datasets[0]
	fmtValue := r.valueFormatter(cfg)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range ds.Values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if cfg.Options.BeginAtZero != nil && *cfg.Options.BeginAtZero && lo > 0 {
		lo = 0
	}

	axisLabelWidth := max(lipgloss.Width(fmtValue(hi)), lipgloss.Width(fmtValue(lo)))
	plotWidth := max(width-axisLabelWidth-2, 4)
	cols := resample(ds.Values, plotWidth)

	color := format.ChartColor(0)
	if len(ds.Colors) > 0 {
		color = ds.Colors[0]
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))

	span := hi - lo
	rows := make([]string, height)
	for row := 0; row < height; row++ {
		var line strings.Builder
		base := float64(height-1-row) * 8
		for _, v := range cols {
			level := float64(height * 8)
			if span > 0 {
				level = (v - lo) / span * float64(height*8)
			}
			fill := int(math.Round(level - base))
			fill = min(max(fill, 0), 8)
			line.WriteRune(blocks[fill])
		}
		axis := ""
		switch row {
		case 0:
			axis = fmtValue(hi)
		case height - 1:
			axis = fmtValue(lo)
		}
		rows[row] = r.axisStyle.Render(fmt.Sprintf("%*s │", axisLabelWidth, axis)) + style.Render(line.String())
	}

	out := strings.Join(rows, "\n")
	if len(cfg.Labels) > 0 {
		first, last := cfg.Labels[0], cfg.Labels[len(cfg.Labels)-1]
		gap := max(plotWidth-lipgloss.Width(first)-lipgloss.Width(last), 1)
		out += "\n" + r.axisStyle.Render(strings.Repeat(" ", axisLabelWidth+2)+first+strings.Repeat(" ", gap)+last)
	}
	return out
}

// resample picks n evenly spaced values from values.
func resample(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		idx := i * (len(values) - 1) / max(n-1, 1)
		out[i] = values[idx]
	}
	return out
}
