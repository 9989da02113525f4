package bi

// ChartKind identifies a renderable chart shape.
type ChartKind string

const (
	ChartBar           ChartKind = "bar_chart"
	ChartLine          ChartKind = "line_chart"
	ChartPie           ChartKind = "pie_chart"
	ChartDoughnut      ChartKind = "doughnut_chart"
	ChartScatter       ChartKind = "scatter_plot"
	ChartBubble        ChartKind = "bubble_chart"
	ChartRadar         ChartKind = "radar_chart"
	ChartHorizontalBar ChartKind = "horizontal_bar_chart"
	ChartStackedBar    ChartKind = "stacked_bar_chart"
	ChartMultiLine     ChartKind = "multi_line_chart"
	ChartArea          ChartKind = "area_chart"
)

// ChartKinds is the closed set of valid chart kinds.
var ChartKinds = []ChartKind{
	ChartBar, ChartLine, ChartPie, ChartDoughnut, ChartScatter,
	ChartBubble, ChartRadar, ChartHorizontalBar, ChartStackedBar,
	ChartMultiLine, ChartArea,
}

// Valid reports whether the kind belongs to the closed set.
func (k ChartKind) Valid() bool {
	for _, v := range ChartKinds {
		if k == v {
			return true
		}
	}
	return false
}

// MaxChartDataPoints caps the points encoded in one chart; larger contexts
// are trimmed to the top-N by primary measure.
const MaxChartDataPoints = 50

// Point is one scatter or bubble datum.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r,omitempty"`
}

// Dataset is one series in a chart payload, shaped for Chart.js-style
// renderers on the client. Data holds []float64 for most kinds and
// []Point for scatter and bubble charts.
type Dataset struct {
	Label           string  `json:"label,omitempty"`
	Data            any     `json:"data"`
	BackgroundColor any     `json:"backgroundColor,omitempty"` // string or []string
	BorderColor     any     `json:"borderColor,omitempty"`
	BorderWidth     int     `json:"borderWidth,omitempty"`
	Fill            *bool   `json:"fill,omitempty"`
	Tension         float64 `json:"tension,omitempty"`
	Stack           string  `json:"stack,omitempty"`
}

// ChartData is the opaque chart payload handed to the client renderer.
type ChartData struct {
	Type    string         `json:"type"`
	Data    ChartDataBody  `json:"data"`
	Options map[string]any `json:"options"`
}

// ChartDataBody holds the encoded labels and series.
type ChartDataBody struct {
	Labels   []string  `json:"labels,omitempty"`
	Datasets []Dataset `json:"datasets"`
}

// Visualization is a complete chart specification. Built once from a
// DataContext, immutable afterwards.
type Visualization struct {
	Type        ChartKind `json:"type"`
	Title       string    `json:"title"`
	DataSource  string    `json:"data_source"`
	DataPoints  int       `json:"data_points"`
	ColumnsUsed []string  `json:"columns_used"`
	ChartData   ChartData `json:"chart_data"`
}
