package bi

import "time"

// ResponseEnvelope is the full record returned to callers and cached under
// the question fingerprint.
type ResponseEnvelope struct {
	Success         bool            `json:"success"`
	Query           Question        `json:"query"`
	Intent          Intent          `json:"intent"`
	Insights        []Insight       `json:"insights"`
	Recommendations []string        `json:"recommendations"`
	Visualizations  []Visualization `json:"visualizations"`
	ProcessedAt     time.Time       `json:"processed_at"`
	CachedAt        *time.Time      `json:"cached_at,omitempty"`
}

// ErrorBody is the user-visible error payload. Only validation errors are
// ever surfaced; everything else degrades internally.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ErrorEnvelope is the failure response shape.
type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}
