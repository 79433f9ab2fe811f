package chart

import (
	"encoding/json"
	"fmt"
)

// serverConfig mirrors the chart configuration returned by the legacy
// /portfolio/* endpoints.
type serverConfig struct {
	Type string `json:"type"`
	Data struct {
		Labels   []string `json:"labels"`
		Datasets []struct {
			Label           string          `json:"label"`
			Data            []float64       `json:"data"`
			BackgroundColor json.RawMessage `json:"backgroundColor"`
		} `json:"datasets"`
	} `json:"data"`
	Options struct {
		Plugins struct {
			Title struct {
				Text string `json:"text"`
			} `json:"title"`
		} `json:"plugins"`
	} `json:"options"`
}

// FromServer converts a server-provided chart configuration into a Config.
func FromServer(raw json.RawMessage) (Config, error) {
	var sc serverConfig
	if err := json.Unmarshal(raw, &sc); err != nil {
		return Config{}, fmt.Errorf("failed to decode chart config: %w", err)
	}

	opts := Options{Title: sc.Options.Plugins.Title.Text}
	switch Kind(sc.Type) {
	case KindPie:
		if len(sc.Data.Datasets) == 0 {
			return Config{}, fmt.Errorf("pie chart has no dataset")
		}
		ds := sc.Data.Datasets[0]
		var colors []string
		_ = json.Unmarshal(ds.BackgroundColor, &colors)
		return Pie(Data{Labels: sc.Data.Labels, Values: ds.Data, Colors: colors}, opts), nil
	case KindLine, KindBar:
		sets := make([]Dataset, len(sc.Data.Datasets))
		for i, ds := range sc.Data.Datasets {
			sets[i] = Dataset{Label: ds.Label, Values: ds.Data}
		}
		data := Data{Labels: sc.Data.Labels, Datasets: sets}
		if Kind(sc.Type) == KindLine {
			return Line(data, opts), nil
		}
		return Bar(data, opts), nil
	default:
		return Config{}, fmt.Errorf("unsupported chart type %q", sc.Type)
	}
}
