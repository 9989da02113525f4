// Package retriever selects and fetches the data context for a question
// and renders the bounded text summary fed to insight generation.
package retriever

import (
	"context"
	"sort"
	"strings"

	"github.com/getlens/lens/pkg/bi"
)

// Warehouse is the analytical-store surface the retriever needs.
type Warehouse interface {
	Sales(ctx context.Context, days int) []bi.SalesRecord
	Inventory(ctx context.Context) []bi.InventoryItem
	Customers(ctx context.Context, limit int) []bi.CustomerRecord
	Metrics(ctx context.Context) *bi.MetricsContext
}

// Retriever routes questions to data sources.
type Retriever struct {
	warehouse      Warehouse
	salesWindow    int
	customerSample int
}

// New builds a Retriever. salesWindow is the sales lookback in days and
// customerSample the customer profile count.
func New(warehouse Warehouse, salesWindow, customerSample int) *Retriever {
	if salesWindow < 1 {
		salesWindow = 30
	}
	if customerSample < 1 {
		customerSample = 100
	}
	return &Retriever{
		warehouse:      warehouse,
		salesWindow:    salesWindow,
		customerSample: customerSample,
	}
}

// Routing keyword sets, evaluated in order. First match wins.
var (
	salesKeywords     = []string{"sale", "revenue", "profit", "product", "store"}
	inventoryKeywords = []string{"inventory", "stock", "restock", "reorder"}
	customerKeywords  = []string{"customer", "segment", "purchase"}
	metricsKeywords   = []string{"metric", "kpi", "performance", "summary"}
)

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// Retrieve fetches the data context for a question and returns it with
// its rendered summary. An unroutable question yields a DynamicContext
// with no rows.
func (r *Retriever) Retrieve(ctx context.Context, question string, intent *bi.Intent) (bi.DataContext, string) {
	lowered := strings.ToLower(question)

	var dataCtx bi.DataContext
	switch {
	case containsAny(lowered, salesKeywords):
		dataCtx = r.salesContext(ctx)
	case containsAny(lowered, inventoryKeywords):
		dataCtx = r.inventoryContext(ctx)
	case containsAny(lowered, customerKeywords):
		dataCtx = r.customerContext(ctx)
	case containsAny(lowered, metricsKeywords):
		dataCtx = r.metricsContext(ctx)
	default:
		dataCtx = &bi.DynamicContext{Note: "no matched source"}
	}

	return dataCtx, FormatSummary(dataCtx)
}

func (r *Retriever) salesContext(ctx context.Context) *bi.SalesContext {
	records := r.warehouse.Sales(ctx, r.salesWindow)

	sc := &bi.SalesContext{Records: records}
	productRevenue := make(map[string]float64)
	storeRevenue := make(map[string]float64)

	for _, rec := range records {
		sc.TotalRevenue += rec.Revenue
		sc.TotalProfit += rec.Profit
		sc.TotalUnits += rec.Quantity
		productRevenue[rec.Product] += rec.Revenue
		storeRevenue[rec.Store] += rec.Revenue
	}

	denom := sc.TotalRevenue
	if denom < 1 {
		denom = 1
	}
	sc.Margin = sc.TotalProfit / denom * 100

	sc.TopProducts = topN(productRevenue, 5)
	sc.TopStores = topN(storeRevenue, 3)

	return sc
}

func (r *Retriever) inventoryContext(ctx context.Context) *bi.InventoryContext {
	items := r.warehouse.Inventory(ctx)

	ic := &bi.InventoryContext{Items: items}
	for _, it := range items {
		ic.TotalStock += it.CurrentStock
		if it.CurrentStock <= it.ReorderLevel {
			ic.LowStock = append(ic.LowStock, it)
		}
	}

	return ic
}

// metricsContext fetches the KPI snapshot. A nil snapshot means the
// warehouse could not be reached; that degrades to a dynamic context with
// a note instead of an all-zero MetricsContext that would read as real
// figures downstream.
func (r *Retriever) metricsContext(ctx context.Context) bi.DataContext {
	m := r.warehouse.Metrics(ctx)
	if m == nil {
		return &bi.DynamicContext{
			Note: "metrics unavailable",
			Srcs: []bi.DataSource{bi.SourceMetrics},
		}
	}
	return m
}

func (r *Retriever) customerContext(ctx context.Context) *bi.CustomerContext {
	customers := r.warehouse.Customers(ctx, r.customerSample)

	cc := &bi.CustomerContext{Customers: customers}
	for _, c := range customers {
		cc.TotalPurchases += c.TotalPurchases
	}
	if len(customers) > 0 {
		cc.AveragePurchases = cc.TotalPurchases / float64(len(customers))
	}

	return cc
}

// topN ranks map entries by value descending, ties broken by label
// ascending, and keeps the first n.
func topN(values map[string]float64, n int) []bi.RankedMetric {
	ranked := make([]bi.RankedMetric, 0, len(values))
	for label, value := range values {
		ranked = append(ranked, bi.RankedMetric{Label: label, Value: value})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Label < ranked[j].Label
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
