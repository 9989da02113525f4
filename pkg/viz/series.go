package viz

import (
	"sort"

	"github.com/getlens/lens/pkg/bi"
)

// measure is one numeric series over the dimension labels.
type measure struct {
	key    string // column identifier, e.g. "revenue"
	label  string // display name, e.g. "Revenue"
	values []float64
}

// series is the chart-ready projection of a data context: one dimension
// plus one or more measures aligned to it.
type series struct {
	dimKey   string // column identifier of the dimension
	dimLabel string // display name of the dimension
	labels   []string
	measures []measure
	source   bi.DataSource
}

func (s *series) empty() bool {
	return len(s.labels) == 0 || len(s.measures) == 0
}

// primary is the measure charts rank and trim by.
func (s *series) primary() measure {
	return s.measures[0]
}

// temporal kinds plot over the date dimension when one exists.
func temporalKind(kind bi.ChartKind) bool {
	switch kind {
	case bi.ChartLine, bi.ChartArea, bi.ChartMultiLine, bi.ChartScatter, bi.ChartBubble:
		return true
	default:
		return false
	}
}

// extract projects a data context onto a series for the given kind.
// An empty or unchartable context returns a series with no labels.
func extract(dataCtx bi.DataContext, kind bi.ChartKind) series {
	switch c := dataCtx.(type) {
	case *bi.SalesContext:
		return salesSeries(c, kind)
	case *bi.InventoryContext:
		return inventorySeries(c)
	case *bi.CustomerContext:
		return customerSeries(c)
	case *bi.MetricsContext:
		return metricsSeries(c)
	case *bi.DynamicContext:
		return dynamicSeries(c)
	default:
		return series{}
	}
}

// salesSeries aggregates transactions per date for temporal kinds and
// per product otherwise.
func salesSeries(c *bi.SalesContext, kind bi.ChartKind) series {
	if len(c.Records) == 0 {
		return series{}
	}

	type bucket struct {
		revenue  float64
		profit   float64
		quantity float64
	}

	byDim := make(map[string]*bucket)
	dimOf := func(r bi.SalesRecord) string { return r.Product }
	dimKey, dimLabel := "product", "Product"
	if temporalKind(kind) {
		dimOf = func(r bi.SalesRecord) string { return r.Date }
		dimKey, dimLabel = "date", "Date"
	}

	for _, r := range c.Records {
		d := dimOf(r)
		b := byDim[d]
		if b == nil {
			b = &bucket{}
			byDim[d] = b
		}
		b.revenue += r.Revenue
		b.profit += r.Profit
		b.quantity += float64(r.Quantity)
	}

	labels := make([]string, 0, len(byDim))
	for d := range byDim {
		labels = append(labels, d)
	}
	sort.Strings(labels)

	s := series{
		dimKey:   dimKey,
		dimLabel: dimLabel,
		labels:   labels,
		source:   bi.SourceSales,
		measures: []measure{
			{key: "revenue", label: "Revenue"},
			{key: "profit", label: "Profit"},
			{key: "quantity_sold", label: "Quantity"},
		},
	}
	for _, d := range labels {
		b := byDim[d]
		s.measures[0].values = append(s.measures[0].values, b.revenue)
		s.measures[1].values = append(s.measures[1].values, b.profit)
		s.measures[2].values = append(s.measures[2].values, b.quantity)
	}

	return s
}

func inventorySeries(c *bi.InventoryContext) series {
	if len(c.Items) == 0 {
		return series{}
	}

	byProduct := make(map[string]float64)
	for _, it := range c.Items {
		byProduct[it.Product] += float64(it.CurrentStock)
	}

	labels := make([]string, 0, len(byProduct))
	for p := range byProduct {
		labels = append(labels, p)
	}
	sort.Strings(labels)

	stock := measure{key: "current_stock", label: "Stock"}
	for _, p := range labels {
		stock.values = append(stock.values, byProduct[p])
	}

	return series{
		dimKey:   "product",
		dimLabel: "Product",
		labels:   labels,
		measures: []measure{stock},
		source:   bi.SourceInventory,
	}
}

// customerSeries groups spend and purchase volume by age segment.
func customerSeries(c *bi.CustomerContext) series {
	if len(c.Customers) == 0 {
		return series{}
	}

	type bucket struct {
		spent     float64
		purchases float64
	}
	bySegment := make(map[string]*bucket)
	for _, cust := range c.Customers {
		seg := cust.AgeGroup
		if seg == "" {
			seg = "unknown"
		}
		b := bySegment[seg]
		if b == nil {
			b = &bucket{}
			bySegment[seg] = b
		}
		b.spent += cust.TotalSpent
		b.purchases += cust.TotalPurchases
	}

	labels := make([]string, 0, len(bySegment))
	for seg := range bySegment {
		labels = append(labels, seg)
	}
	sort.Strings(labels)

	s := series{
		dimKey:   "age_group",
		dimLabel: "Segment",
		labels:   labels,
		source:   bi.SourceCustomers,
		measures: []measure{
			{key: "total_spent", label: "Total Spent"},
			{key: "total_purchases", label: "Purchases"},
		},
	}
	for _, seg := range labels {
		b := bySegment[seg]
		s.measures[0].values = append(s.measures[0].values, b.spent)
		s.measures[1].values = append(s.measures[1].values, b.purchases)
	}

	return s
}

func metricsSeries(c *bi.MetricsContext) series {
	return series{
		dimKey:   "metric",
		dimLabel: "Metric",
		labels: []string{
			"Total Revenue", "Total Profit", "Margin %",
			"Customers", "Avg Order Value", "Inventory Turnover",
		},
		measures: []measure{{
			key:   "value",
			label: "Value",
			values: []float64{
				c.TotalRevenue, c.TotalProfit, c.Margin,
				float64(c.CustomerCount), c.AverageOrderValue, c.InventoryTurnover,
			},
		}},
		source: bi.SourceMetrics,
	}
}

// dynamicSeries charts the first string column against every numeric one.
func dynamicSeries(c *bi.DynamicContext) series {
	if len(c.Rows) == 0 || len(c.Cols) == 0 {
		return series{}
	}

	dimIdx := -1
	var numIdx []int
	for j := range c.Cols {
		numeric := true
		for _, row := range c.Rows {
			if j >= len(row) {
				numeric = false
				break
			}
			if _, ok := toFloat(row[j]); !ok {
				numeric = false
				break
			}
		}
		if numeric {
			numIdx = append(numIdx, j)
		} else if dimIdx == -1 {
			dimIdx = j
		}
	}

	if dimIdx == -1 || len(numIdx) == 0 {
		return series{}
	}

	s := series{
		dimKey:   c.Cols[dimIdx],
		dimLabel: titleCase(c.Cols[dimIdx]),
		source:   bi.SourceFallback,
	}
	if len(c.Srcs) > 0 {
		s.source = c.Srcs[0]
	}

	for _, j := range numIdx {
		s.measures = append(s.measures, measure{key: c.Cols[j], label: titleCase(c.Cols[j])})
	}
	for _, row := range c.Rows {
		s.labels = append(s.labels, stringify(row[dimIdx]))
		for mi, j := range numIdx {
			v, _ := toFloat(row[j])
			s.measures[mi].values = append(s.measures[mi].values, v)
		}
	}

	return s
}

// trim keeps the top-N labels by primary measure, ties broken by label
// ascending, then restores label order.
func (s *series) trim(n int) {
	if len(s.labels) <= n {
		return
	}

	idx := make([]int, len(s.labels))
	for i := range idx {
		idx[i] = i
	}
	primary := s.primary().values
	sort.Slice(idx, func(a, b int) bool {
		if primary[idx[a]] != primary[idx[b]] {
			return primary[idx[a]] > primary[idx[b]]
		}
		return s.labels[idx[a]] < s.labels[idx[b]]
	})

	idx = idx[:n]
	sort.Ints(idx)

	labels := make([]string, n)
	for i, j := range idx {
		labels[i] = s.labels[j]
	}
	for mi := range s.measures {
		values := make([]float64, n)
		for i, j := range idx {
			values[i] = s.measures[mi].values[j]
		}
		s.measures[mi].values = values
	}
	s.labels = labels
}
