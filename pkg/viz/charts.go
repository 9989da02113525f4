package viz

import (
	"fmt"
	"strings"

	"github.com/getlens/lens/pkg/bi"
)

// Chart.js color palette shared across pie-family charts.
var (
	paletteFill = []string{
		"rgba(255, 99, 132, 0.7)",
		"rgba(54, 162, 235, 0.7)",
		"rgba(255, 205, 86, 0.7)",
		"rgba(75, 192, 192, 0.7)",
		"rgba(153, 102, 255, 0.7)",
		"rgba(255, 159, 64, 0.7)",
	}
	paletteBorder = []string{
		"rgba(255, 99, 132, 1)",
		"rgba(54, 162, 235, 1)",
		"rgba(255, 205, 86, 1)",
		"rgba(75, 192, 192, 1)",
		"rgba(153, 102, 255, 1)",
		"rgba(255, 159, 64, 1)",
	}
	lineColors = []string{
		"rgba(255, 99, 132, 1)",
		"rgba(54, 162, 235, 1)",
		"rgba(255, 205, 86, 1)",
		"rgba(75, 192, 192, 1)",
		"rgba(153, 102, 255, 1)",
	}
)

func boolPtr(b bool) *bool { return &b }

func titleOption(text string) map[string]any {
	return map[string]any{"display": true, "text": text}
}

func axisTitle(text string) map[string]any {
	return map[string]any{"title": titleOption(text)}
}

func zeroAxisTitle(text string) map[string]any {
	return map[string]any{"beginAtZero": true, "title": titleOption(text)}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func stringify(v any) string {
	return fmt.Sprintf("%v", v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

func buildChart(kind bi.ChartKind, s series) (bi.Visualization, bool) {
	switch kind {
	case bi.ChartBar:
		return barChart(s, false), true
	case bi.ChartHorizontalBar:
		return horizontalBarChart(s), true
	case bi.ChartStackedBar:
		return stackedBarChart(s), true
	case bi.ChartLine:
		return lineChart(s, false), true
	case bi.ChartArea:
		return lineChart(s, true), true
	case bi.ChartMultiLine:
		if len(s.measures) < 2 {
			return bi.Visualization{}, false
		}
		return multiLineChart(s), true
	case bi.ChartPie:
		return pieChart(s, bi.ChartPie), true
	case bi.ChartDoughnut:
		return pieChart(s, bi.ChartDoughnut), true
	case bi.ChartRadar:
		return radarChart(s), true
	case bi.ChartScatter:
		if len(s.measures) < 2 {
			return bi.Visualization{}, false
		}
		return scatterChart(s), true
	case bi.ChartBubble:
		if len(s.measures) < 3 {
			return bi.Visualization{}, false
		}
		return bubbleChart(s), true
	default:
		return bi.Visualization{}, false
	}
}

func barChart(s series, stacked bool) bi.Visualization {
	m := s.primary()
	title := fmt.Sprintf("%s by %s", m.label, s.dimLabel)

	return bi.Visualization{
		Type:        bi.ChartBar,
		Title:       title,
		DataSource:  string(s.source),
		DataPoints:  len(s.labels),
		ColumnsUsed: []string{s.dimKey, m.key},
		ChartData: bi.ChartData{
			Type: "bar",
			Data: bi.ChartDataBody{
				Labels: s.labels,
				Datasets: []bi.Dataset{{
					Label:           m.label,
					Data:            m.values,
					BackgroundColor: "rgba(54, 162, 235, 0.7)",
					BorderColor:     "rgba(54, 162, 235, 1)",
					BorderWidth:     1,
				}},
			},
			Options: map[string]any{
				"responsive": true,
				"plugins": map[string]any{
					"title":  titleOption(title),
					"legend": map[string]any{"display": true},
				},
				"scales": map[string]any{
					"y": zeroAxisTitle(m.label),
					"x": axisTitle(s.dimLabel),
				},
			},
		},
	}
}

func horizontalBarChart(s series) bi.Visualization {
	m := s.primary()
	title := fmt.Sprintf("%s by %s", m.label, s.dimLabel)

	return bi.Visualization{
		Type:        bi.ChartHorizontalBar,
		Title:       title,
		DataSource:  string(s.source),
		DataPoints:  len(s.labels),
		ColumnsUsed: []string{s.dimKey, m.key},
		ChartData: bi.ChartData{
			Type: "bar",
			Data: bi.ChartDataBody{
				Labels: s.labels,
				Datasets: []bi.Dataset{{
					Label:           m.label,
					Data:            m.values,
					BackgroundColor: "rgba(75, 192, 192, 0.7)",
					BorderColor:     "rgba(75, 192, 192, 1)",
					BorderWidth:     1,
				}},
			},
			Options: map[string]any{
				"indexAxis":  "y",
				"responsive": true,
				"plugins": map[string]any{
					"title":  titleOption(title),
					"legend": map[string]any{"display": true},
				},
				"scales": map[string]any{
					"x": zeroAxisTitle(m.label),
					"y": axisTitle(s.dimLabel),
				},
			},
		},
	}
}

func stackedBarChart(s series) bi.Visualization {
	m := s.primary()
	title := fmt.Sprintf("%s by %s (Stacked)", m.label, s.dimLabel)

	return bi.Visualization{
		Type:        bi.ChartStackedBar,
		Title:       title,
		DataSource:  string(s.source),
		DataPoints:  len(s.labels),
		ColumnsUsed: []string{s.dimKey, m.key},
		ChartData: bi.ChartData{
			Type: "bar",
			Data: bi.ChartDataBody{
				Labels: s.labels,
				Datasets: []bi.Dataset{{
					Label:           m.label,
					Data:            m.values,
					BackgroundColor: "rgba(255, 99, 132, 0.7)",
					BorderColor:     "rgba(255, 99, 132, 1)",
					BorderWidth:     1,
					Stack:           "Stack 0",
				}},
			},
			Options: map[string]any{
				"responsive": true,
				"plugins": map[string]any{
					"title":  titleOption(title),
					"legend": map[string]any{"display": true},
				},
				"scales": map[string]any{
					"x": map[string]any{"stacked": true, "title": titleOption(s.dimLabel)},
					"y": map[string]any{"stacked": true, "beginAtZero": true, "title": titleOption(m.label)},
				},
			},
		},
	}
}

func lineChart(s series, area bool) bi.Visualization {
	m := s.primary()

	kind := bi.ChartLine
	title := fmt.Sprintf("%s Trend over %s", m.label, s.dimLabel)
	fill := "rgba(75, 192, 192, 0.2)"
	if area {
		kind = bi.ChartArea
		title = fmt.Sprintf("%s Area Chart over %s", m.label, s.dimLabel)
		fill = "rgba(75, 192, 192, 0.3)"
	}

	return bi.Visualization{
		Type:        kind,
		Title:       title,
		DataSource:  string(s.source),
		DataPoints:  len(s.labels),
		ColumnsUsed: []string{s.dimKey, m.key},
		ChartData: bi.ChartData{
			Type: "line",
			Data: bi.ChartDataBody{
				Labels: s.labels,
				Datasets: []bi.Dataset{{
					Label:           m.label,
					Data:            m.values,
					BorderColor:     "rgba(75, 192, 192, 1)",
					BackgroundColor: fill,
					BorderWidth:     2,
					Fill:            boolPtr(area),
					Tension:         0.1,
				}},
			},
			Options: map[string]any{
				"responsive": true,
				"plugins": map[string]any{
					"title":  titleOption(title),
					"legend": map[string]any{"display": true},
				},
				"scales": map[string]any{
					"y": zeroAxisTitle(m.label),
					"x": axisTitle(s.dimLabel),
				},
			},
		},
	}
}

func multiLineChart(s series) bi.Visualization {
	title := fmt.Sprintf("Multiple Metrics over %s", s.dimLabel)

	// Readability bound of three lines.
	measures := s.measures
	if len(measures) > 3 {
		measures = measures[:3]
	}

	datasets := make([]bi.Dataset, 0, len(measures))
	columns := []string{s.dimKey}
	for i, m := range measures {
		color := lineColors[i%len(lineColors)]
		datasets = append(datasets, bi.Dataset{
			Label:           m.label,
			Data:            m.values,
			BorderColor:     color,
			BackgroundColor: strings.Replace(color, "1)", "0.2)", 1),
			BorderWidth:     2,
			Fill:            boolPtr(false),
			Tension:         0.1,
		})
		columns = append(columns, m.key)
	}

	return bi.Visualization{
		Type:        bi.ChartMultiLine,
		Title:       title,
		DataSource:  string(s.source),
		DataPoints:  len(s.labels),
		ColumnsUsed: columns,
		ChartData: bi.ChartData{
			Type: "line",
			Data: bi.ChartDataBody{
				Labels:   s.labels,
				Datasets: datasets,
			},
			Options: map[string]any{
				"responsive": true,
				"plugins": map[string]any{
					"title":  titleOption(title),
					"legend": map[string]any{"display": true},
				},
				"scales": map[string]any{
					"y": zeroAxisTitle("Value"),
					"x": axisTitle(s.dimLabel),
				},
			},
		},
	}
}

func pieChart(s series, kind bi.ChartKind) bi.Visualization {
	m := s.primary()
	title := fmt.Sprintf("Distribution of %s by %s", m.label, s.dimLabel)

	chartType := "pie"
	fill := paletteFill
	borderWidth := 1
	if kind == bi.ChartDoughnut {
		chartType = "doughnut"
		borderWidth = 2
		fill = make([]string, len(paletteFill))
		for i, c := range paletteFill {
			fill[i] = strings.Replace(c, "0.7)", "0.8)", 1)
		}
	}

	return bi.Visualization{
		Type:        kind,
		Title:       title,
		DataSource:  string(s.source),
		DataPoints:  len(s.labels),
		ColumnsUsed: []string{s.dimKey, m.key},
		ChartData: bi.ChartData{
			Type: chartType,
			Data: bi.ChartDataBody{
				Labels: s.labels,
				Datasets: []bi.Dataset{{
					Data:            m.values,
					BackgroundColor: fill,
					BorderColor:     paletteBorder,
					BorderWidth:     borderWidth,
				}},
			},
			Options: map[string]any{
				"responsive": true,
				"plugins": map[string]any{
					"title":  titleOption(title),
					"legend": map[string]any{"display": true, "position": "bottom"},
				},
			},
		},
	}
}

func radarChart(s series) bi.Visualization {
	m := s.primary()
	title := fmt.Sprintf("%s by %s", m.label, s.dimLabel)

	return bi.Visualization{
		Type:        bi.ChartRadar,
		Title:       title,
		DataSource:  string(s.source),
		DataPoints:  len(s.labels),
		ColumnsUsed: []string{s.dimKey, m.key},
		ChartData: bi.ChartData{
			Type: "radar",
			Data: bi.ChartDataBody{
				Labels: s.labels,
				Datasets: []bi.Dataset{{
					Label:           m.label,
					Data:            m.values,
					BackgroundColor: "rgba(54, 162, 235, 0.2)",
					BorderColor:     "rgba(54, 162, 235, 1)",
					BorderWidth:     2,
				}},
			},
			Options: map[string]any{
				"responsive": true,
				"plugins": map[string]any{
					"title":  titleOption(title),
					"legend": map[string]any{"display": true},
				},
				"scales": map[string]any{
					"r": zeroAxisTitle(m.label),
				},
			},
		},
	}
}

func scatterChart(s series) bi.Visualization {
	x, y := s.measures[0], s.measures[1]
	title := fmt.Sprintf("%s vs %s", y.label, x.label)

	points := make([]bi.Point, len(x.values))
	for i := range x.values {
		points[i] = bi.Point{X: x.values[i], Y: y.values[i]}
	}

	return bi.Visualization{
		Type:        bi.ChartScatter,
		Title:       title,
		DataSource:  string(s.source),
		DataPoints:  len(points),
		ColumnsUsed: []string{x.key, y.key},
		ChartData: bi.ChartData{
			Type: "scatter",
			Data: bi.ChartDataBody{
				Datasets: []bi.Dataset{{
					Label:           title,
					Data:            points,
					BackgroundColor: "rgba(255, 99, 132, 0.7)",
					BorderColor:     "rgba(255, 99, 132, 1)",
					BorderWidth:     1,
				}},
			},
			Options: map[string]any{
				"responsive": true,
				"plugins": map[string]any{
					"title":  titleOption(title),
					"legend": map[string]any{"display": true},
				},
				"scales": map[string]any{
					"y": zeroAxisTitle(y.label),
					"x": zeroAxisTitle(x.label),
				},
			},
		},
	}
}

func bubbleChart(s series) bi.Visualization {
	x, y, r := s.measures[0], s.measures[1], s.measures[2]
	title := fmt.Sprintf("%s vs %s (Size: %s)", y.label, x.label, r.label)

	points := make([]bi.Point, len(x.values))
	for i := range x.values {
		points[i] = bi.Point{X: x.values[i], Y: y.values[i], R: r.values[i]}
	}

	return bi.Visualization{
		Type:        bi.ChartBubble,
		Title:       title,
		DataSource:  string(s.source),
		DataPoints:  len(points),
		ColumnsUsed: []string{x.key, y.key, r.key},
		ChartData: bi.ChartData{
			Type: "bubble",
			Data: bi.ChartDataBody{
				Datasets: []bi.Dataset{{
					Label:           fmt.Sprintf("%s vs %s", y.label, x.label),
					Data:            points,
					BackgroundColor: "rgba(255, 99, 132, 0.6)",
					BorderColor:     "rgba(255, 99, 132, 1)",
					BorderWidth:     1,
				}},
			},
			Options: map[string]any{
				"responsive": true,
				"plugins": map[string]any{
					"title":  titleOption(title),
					"legend": map[string]any{"display": true},
				},
				"scales": map[string]any{
					"y": zeroAxisTitle(y.label),
					"x": zeroAxisTitle(x.label),
				},
			},
		},
	}
}
