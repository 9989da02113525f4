package bi

import "fmt"

// IntentTag classifies what a question is asking for.
type IntentTag string

const (
	IntentTrendAnalysis   IntentTag = "trend_analysis"
	IntentComparison      IntentTag = "comparison"
	IntentPrediction      IntentTag = "prediction"
	IntentRootCause       IntentTag = "root_cause"
	IntentRecommendation  IntentTag = "recommendation"
	IntentGeneralAnalysis IntentTag = "general_analysis"
)

// IntentTags is the closed set of valid intent tags.
var IntentTags = []IntentTag{
	IntentTrendAnalysis,
	IntentComparison,
	IntentPrediction,
	IntentRootCause,
	IntentRecommendation,
	IntentGeneralAnalysis,
}

// Valid reports whether the tag belongs to the closed set.
func (t IntentTag) Valid() bool {
	for _, v := range IntentTags {
		if t == v {
			return true
		}
	}
	return false
}

// DataSource labels where grounding data came from.
type DataSource string

const (
	SourceSales     DataSource = "sales_data"
	SourceInventory DataSource = "inventory_data"
	SourceCustomers DataSource = "customer_data"
	SourceMetrics   DataSource = "business_metrics"
	// SourceFallback marks insights produced without live data.
	SourceFallback DataSource = "fallback"
)

// Valid reports whether the data source belongs to the closed set.
func (s DataSource) Valid() bool {
	switch s {
	case SourceSales, SourceInventory, SourceCustomers, SourceMetrics, SourceFallback:
		return true
	}
	return false
}

// Intent is the classification of a question. Derived once, never mutated.
type Intent struct {
	Intent                  IntentTag    `json:"intent"`
	Confidence              float64      `json:"confidence"`
	Categories              []string     `json:"categories"`
	DataSources             []DataSource `json:"data_sources"`
	SuggestedVisualizations []ChartKind  `json:"suggested_visualizations"`
}

// Validate checks the intent against the entity contract.
func (i *Intent) Validate() error {
	if !i.Intent.Valid() {
		return fmt.Errorf("%w: unknown intent tag %q", ErrValidation, i.Intent)
	}
	if i.Confidence < 0 || i.Confidence > 1 {
		return fmt.Errorf("%w: intent confidence %f out of [0,1]", ErrValidation, i.Confidence)
	}
	if len(i.Categories) == 0 {
		return fmt.Errorf("%w: intent categories must be non-empty", ErrValidation)
	}
	if len(i.DataSources) == 0 {
		return fmt.Errorf("%w: intent data sources must be non-empty", ErrValidation)
	}
	for _, s := range i.DataSources {
		if !s.Valid() {
			return fmt.Errorf("%w: unknown data source %q", ErrValidation, s)
		}
	}
	if len(i.SuggestedVisualizations) == 0 {
		return fmt.Errorf("%w: suggested visualizations must be non-empty", ErrValidation)
	}
	for _, k := range i.SuggestedVisualizations {
		if !k.Valid() {
			return fmt.Errorf("%w: unknown visualization kind %q", ErrValidation, k)
		}
	}
	return nil
}
