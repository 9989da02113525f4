// Package bi defines the entities that flow through the query-to-insight
// pipeline: questions, intents, data contexts, insights, visualizations and
// the response envelope returned to clients.
package bi

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MinQuestionLen and MaxQuestionLen bound the trimmed question text.
	MinQuestionLen = 3
	MaxQuestionLen = 2000

	// MaxUserIDLen bounds the opaque user tag.
	MaxUserIDLen = 255
)

// Question is a user-submitted natural language question. Text is immutable
// after creation; the orchestrator flips Processed exactly once.
type Question struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	UserID    string    `json:"user_id,omitempty"`
	Processed bool      `json:"processed"`
	Response  string    `json:"response,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize trims the text and collapses internal whitespace runs into
// single spaces. Idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Fingerprint returns the stable cache key component for a question text:
// the SHA-256 hex digest of the lowercased normalized text. Hashing the full
// text avoids the prefix collisions a truncated key would produce on long
// near-duplicate questions.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(Normalize(text))))
	return hex.EncodeToString(sum[:])
}

// ValidateQuestion checks the raw submission against the input contract.
// The returned error wraps ErrValidation.
func ValidateQuestion(text, userID string) error {
	n := utf8.RuneCountInString(Normalize(text))
	if n < MinQuestionLen {
		return fmt.Errorf("%w: question text must be at least %d characters", ErrValidation, MinQuestionLen)
	}
	if utf8.RuneCountInString(text) > MaxQuestionLen {
		return fmt.Errorf("%w: question text must be at most %d characters", ErrValidation, MaxQuestionLen)
	}
	if utf8.RuneCountInString(userID) > MaxUserIDLen {
		return fmt.Errorf("%w: user id must be at most %d characters", ErrValidation, MaxUserIDLen)
	}
	return nil
}
