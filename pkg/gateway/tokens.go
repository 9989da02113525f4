package gateway

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// tokenCounter estimates token usage when the provider omits it.
type tokenCounter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

var (
	encodingCache   = make(map[string]*tiktoken.Tiktoken)
	encodingCacheMu sync.RWMutex
)

// newTokenCounter builds a counter for the model, falling back to the
// cl100k_base encoding when the model is unknown. A nil encoding means
// estimation degrades to a character heuristic.
func newTokenCounter(model string) *tokenCounter {
	encodingCacheMu.RLock()
	cached, ok := encodingCache[model]
	encodingCacheMu.RUnlock()

	if ok {
		return &tokenCounter{encoding: cached}
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return &tokenCounter{}
		}
	}

	encodingCacheMu.Lock()
	encodingCache[model] = encoding
	encodingCacheMu.Unlock()

	return &tokenCounter{encoding: encoding}
}

// Count returns the token count for text, estimating at roughly four
// characters per token when no encoding is available.
func (tc *tokenCounter) Count(text string) int {
	if tc == nil || tc.encoding == nil {
		return len(text) / 4
	}

	tc.mu.RLock()
	defer tc.mu.RUnlock()

	return len(tc.encoding.Encode(text, nil, nil))
}
