package gateway

import (
	"math"
	"sync/atomic"
)

// CostLedger tracks cumulative spend across all LLM calls in-process.
type CostLedger struct {
	costMicros atomic.Int64
	tokens     atomic.Int64
	requests   atomic.Int64
}

// CostSnapshot is a point-in-time read of the ledger.
type CostSnapshot struct {
	TotalCostUSD    float64 `json:"total_cost_usd"`
	TotalTokens     int64   `json:"total_tokens"`
	TotalRequests   int64   `json:"total_requests"`
	AvgCostPer1KUSD float64 `json:"avg_cost_per_1k_tokens_usd"`
}

// Record adds one completed call to the ledger. Cost is stored in
// micro-dollars so the counters stay atomic.
func (l *CostLedger) Record(tokens int, costUSD float64) {
	l.costMicros.Add(int64(math.Round(costUSD * 1e6)))
	l.tokens.Add(int64(tokens))
	l.requests.Add(1)
}

// Snapshot returns the cumulative totals.
func (l *CostLedger) Snapshot() CostSnapshot {
	s := CostSnapshot{
		TotalCostUSD:  float64(l.costMicros.Load()) / 1e6,
		TotalTokens:   l.tokens.Load(),
		TotalRequests: l.requests.Load(),
	}
	if s.TotalTokens > 0 {
		s.AvgCostPer1KUSD = s.TotalCostUSD / float64(s.TotalTokens) * 1000
	}
	return s
}
