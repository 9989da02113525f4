package bi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsContextRowCount(t *testing.T) {
	assert.Equal(t, 0, (&MetricsContext{}).RowCount())
	assert.Equal(t, 1, (&MetricsContext{TotalRevenue: 100}).RowCount())
	assert.Equal(t, 1, (&MetricsContext{CustomerCount: 3}).RowCount())
	assert.Equal(t, 1, (&MetricsContext{InventoryTurnover: 0.5}).RowCount())
}

func TestDynamicContextSources(t *testing.T) {
	assert.Equal(t, []DataSource{SourceFallback}, (&DynamicContext{}).Sources())
	assert.Equal(t, []DataSource{SourceMetrics},
		(&DynamicContext{Srcs: []DataSource{SourceMetrics}}).Sources())
}
