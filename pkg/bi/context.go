package bi

// ContextKind discriminates the DataContext variants.
type ContextKind string

const (
	ContextSales     ContextKind = "sales"
	ContextInventory ContextKind = "inventory"
	ContextCustomers ContextKind = "customers"
	ContextMetrics   ContextKind = "metrics"
	ContextDynamic   ContextKind = "dynamic"
)

// DataContext is the grounding evidence fetched for a question. Exactly one
// variant is produced per pipeline run; consumers switch exhaustively on
// Kind().
type DataContext interface {
	Kind() ContextKind
	RowCount() int
	Columns() []string
	Sources() []DataSource
}

// SalesRecord is one warehouse transaction row.
type SalesRecord struct {
	Date     string  `json:"date"`
	Product  string  `json:"product"`
	Category string  `json:"category"`
	Store    string  `json:"store"`
	Quantity int     `json:"quantity_sold"`
	Revenue  float64 `json:"revenue"`
	Cost     float64 `json:"cost"`
	Profit   float64 `json:"profit"`
	Region   string  `json:"region"`
}

// RankedMetric pairs a dimension label with its aggregated measure.
type RankedMetric struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// SalesContext grounds sales-flavoured questions.
type SalesContext struct {
	Records      []SalesRecord  `json:"records"`
	TotalRevenue float64        `json:"total_revenue"`
	TotalProfit  float64        `json:"total_profit"`
	TotalUnits   int            `json:"total_units"`
	Margin       float64        `json:"margin"`
	TopProducts  []RankedMetric `json:"top_products"`
	TopStores    []RankedMetric `json:"top_stores"`
}

func (c *SalesContext) Kind() ContextKind { return ContextSales }
func (c *SalesContext) RowCount() int     { return len(c.Records) }
func (c *SalesContext) Columns() []string {
	return []string{"date", "product", "category", "store", "quantity_sold", "revenue", "cost", "profit", "region"}
}
func (c *SalesContext) Sources() []DataSource { return []DataSource{SourceSales} }

// InventoryItem is one per-(store, product) stock row.
type InventoryItem struct {
	Store         string `json:"store"`
	Product       string `json:"product"`
	CurrentStock  int    `json:"current_stock"`
	ReorderLevel  int    `json:"reorder_level"`
	MaxStock      int    `json:"max_stock"`
	LastRestocked string `json:"last_restocked,omitempty"`
	Supplier      string `json:"supplier"`
	Status        string `json:"status"`
}

// InventoryContext grounds stock-flavoured questions.
type InventoryContext struct {
	Items      []InventoryItem `json:"items"`
	TotalStock int             `json:"total_stock"`
	LowStock   []InventoryItem `json:"low_stock_items"`
}

func (c *InventoryContext) Kind() ContextKind { return ContextInventory }
func (c *InventoryContext) RowCount() int     { return len(c.Items) }
func (c *InventoryContext) Columns() []string {
	return []string{"store", "product", "current_stock", "reorder_level", "max_stock", "last_restocked", "supplier", "status"}
}
func (c *InventoryContext) Sources() []DataSource { return []DataSource{SourceInventory} }

// CustomerRecord is one customer profile with purchase aggregates.
type CustomerRecord struct {
	CustomerID        string  `json:"customer_id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Region            string  `json:"region"`
	AgeGroup          string  `json:"age_group"`
	TotalPurchases    float64 `json:"total_purchases"`
	TotalSpent        float64 `json:"total_spent"`
	LastPurchase      string  `json:"last_purchase,omitempty"`
	PreferredStore    string  `json:"preferred_store"`
	PreferredCategory string  `json:"preferred_category"`
}

// CustomerContext grounds customer-flavoured questions.
type CustomerContext struct {
	Customers        []CustomerRecord `json:"customers"`
	TotalPurchases   float64          `json:"total_purchases"`
	AveragePurchases float64          `json:"average_purchases"`
}

func (c *CustomerContext) Kind() ContextKind { return ContextCustomers }
func (c *CustomerContext) RowCount() int     { return len(c.Customers) }
func (c *CustomerContext) Columns() []string {
	return []string{"customer_id", "name", "email", "region", "age_group", "total_purchases", "total_spent", "last_purchase", "preferred_store", "preferred_category"}
}
func (c *CustomerContext) Sources() []DataSource { return []DataSource{SourceCustomers} }

// MetricsContext grounds KPI-flavoured questions with derived measures.
type MetricsContext struct {
	TotalRevenue      float64 `json:"total_revenue"`
	TotalProfit       float64 `json:"total_profit"`
	Margin            float64 `json:"profit_margin"`
	CustomerCount     int     `json:"customer_count"`
	AverageOrderValue float64 `json:"average_order_value"`
	InventoryTurnover float64 `json:"inventory_turnover"`
}

func (c *MetricsContext) Kind() ContextKind { return ContextMetrics }

// RowCount is 1 for a populated snapshot and 0 for the all-zero state a
// degraded warehouse produces, so downstream consumers treat the latter
// as no data rather than charting zeros.
func (c *MetricsContext) RowCount() int {
	if c.TotalRevenue == 0 && c.TotalProfit == 0 && c.CustomerCount == 0 &&
		c.AverageOrderValue == 0 && c.InventoryTurnover == 0 {
		return 0
	}
	return 1
}
func (c *MetricsContext) Columns() []string {
	return []string{"total_revenue", "total_profit", "profit_margin", "customer_count", "average_order_value", "inventory_turnover"}
}
func (c *MetricsContext) Sources() []DataSource { return []DataSource{SourceMetrics} }

// DynamicContext carries rows from a parameterized aggregate read, or an
// empty result with a note when no source matched the question.
type DynamicContext struct {
	Cols []string `json:"columns"`
	Rows [][]any  `json:"rows"`
	Note string   `json:"note,omitempty"`
	Srcs []DataSource `json:"data_sources,omitempty"`
}

func (c *DynamicContext) Kind() ContextKind { return ContextDynamic }
func (c *DynamicContext) RowCount() int     { return len(c.Rows) }
func (c *DynamicContext) Columns() []string { return c.Cols }
func (c *DynamicContext) Sources() []DataSource {
	if len(c.Srcs) == 0 {
		return []DataSource{SourceFallback}
	}
	return c.Srcs
}
