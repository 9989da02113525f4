package bi

import "errors"

// Error kinds form a closed set. Components return these wrapped with
// context; only the HTTP boundary translates them into user-visible
// payloads, and only ErrValidation ever reaches a client.
var (
	ErrValidation           = errors.New("validation")
	ErrLLMUnavailable       = errors.New("llm_unavailable")
	ErrLLMSchema            = errors.New("llm_schema")
	ErrWarehouseUnavailable = errors.New("warehouse_unavailable")
	ErrMetadataUnavailable  = errors.New("metadata_unavailable")
	ErrCacheUnavailable     = errors.New("cache_unavailable")
)

// ErrorKind returns the wire name for a known error kind, or "internal"
// for anything else.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrLLMUnavailable):
		return "llm_unavailable"
	case errors.Is(err, ErrLLMSchema):
		return "llm_schema"
	case errors.Is(err, ErrWarehouseUnavailable):
		return "warehouse_unavailable"
	case errors.Is(err, ErrMetadataUnavailable):
		return "metadata_unavailable"
	case errors.Is(err, ErrCacheUnavailable):
		return "cache_unavailable"
	default:
		return "internal"
	}
}
