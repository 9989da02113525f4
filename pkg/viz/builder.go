// Package viz builds client-renderable chart payloads from a query
// intent and its data context.
package viz

import (
	"log/slog"

	"github.com/getlens/lens/pkg/bi"
	"github.com/getlens/lens/pkg/logger"
)

// MaxCharts bounds how many visualizations one response carries.
const MaxCharts = 3

// preferredKinds maps an intent to its chart kinds, in order.
var preferredKinds = map[bi.IntentTag][]bi.ChartKind{
	bi.IntentTrendAnalysis:   {bi.ChartLine, bi.ChartArea, bi.ChartMultiLine},
	bi.IntentComparison:      {bi.ChartBar, bi.ChartHorizontalBar, bi.ChartRadar},
	bi.IntentPrediction:      {bi.ChartLine, bi.ChartScatter},
	bi.IntentRootCause:       {bi.ChartBar, bi.ChartStackedBar},
	bi.IntentRecommendation:  {bi.ChartDoughnut, bi.ChartPie, bi.ChartBar},
	bi.IntentGeneralAnalysis: {bi.ChartBar},
}

// Builder turns contexts into visualizations.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder returns a Builder.
func NewBuilder() *Builder {
	return &Builder{logger: logger.GetLogger()}
}

// Build produces up to MaxCharts visualizations for the intent and
// context. An empty context yields an empty list.
func (b *Builder) Build(intent *bi.Intent, dataCtx bi.DataContext) []bi.Visualization {
	if dataCtx == nil || dataCtx.RowCount() == 0 {
		return nil
	}

	kinds := intent.SuggestedVisualizations
	if len(kinds) == 0 {
		kinds = preferredKinds[intent.Intent]
	}
	if len(kinds) == 0 {
		kinds = []bi.ChartKind{bi.ChartBar}
	}

	var out []bi.Visualization
	seen := make(map[bi.ChartKind]struct{})
	for _, kind := range kinds {
		if len(out) == MaxCharts {
			break
		}
		if _, dup := seen[kind]; dup || !kind.Valid() {
			continue
		}
		seen[kind] = struct{}{}

		s := extract(dataCtx, kind)
		if s.empty() {
			continue
		}
		s.trim(bi.MaxChartDataPoints)

		chart, ok := buildChart(kind, s)
		if !ok {
			b.logger.Debug("chart kind not applicable to context", "kind", kind)
			continue
		}
		out = append(out, chart)
	}

	// Guarantee at least one chart for a non-empty context.
	if len(out) == 0 {
		if s := extract(dataCtx, bi.ChartBar); !s.empty() {
			s.trim(bi.MaxChartDataPoints)
			if chart, ok := buildChart(bi.ChartBar, s); ok {
				out = append(out, chart)
			}
		}
	}

	return out
}
