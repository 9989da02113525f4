package bi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "show me sales", Normalize("  show   me\tsales \n"))
	assert.Equal(t, "", Normalize("   "))

	// Idempotent.
	once := Normalize("  a  b  ")
	assert.Equal(t, once, Normalize(once))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("Show me SALES trends")
	b := Fingerprint("  show me sales   trends ")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	assert.NotEqual(t, a, Fingerprint("show me revenue trends"))
}

func TestValidateQuestion(t *testing.T) {
	assert.NoError(t, ValidateQuestion("show me sales", "user-1"))
	assert.NoError(t, ValidateQuestion("abc", ""))

	err := ValidateQuestion("ab", "")
	assert.ErrorIs(t, err, ErrValidation)

	// Whitespace alone never satisfies the minimum.
	err = ValidateQuestion("  a   b ", "")
	assert.ErrorIs(t, err, ErrValidation)

	err = ValidateQuestion(strings.Repeat("x", MaxQuestionLen+1), "")
	assert.ErrorIs(t, err, ErrValidation)

	err = ValidateQuestion("valid question", strings.Repeat("u", MaxUserIDLen+1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "validation", ErrorKind(ValidateQuestion("a", "")))
	assert.Equal(t, "internal", ErrorKind(assert.AnError))
}
