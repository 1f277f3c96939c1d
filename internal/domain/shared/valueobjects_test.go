package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncatedPercent(t *testing.T) {
	assert.Equal(t, Percent(33), TruncatedPercent(1, 3))
	assert.Equal(t, Percent(66), TruncatedPercent(2, 3))
	assert.Equal(t, Percent(100), TruncatedPercent(3, 3))
	assert.Equal(t, Percent(0), TruncatedPercent(0, 5))
	assert.Equal(t, Percent(0), TruncatedPercent(0, 0))
	assert.Equal(t, Percent(0), TruncatedPercent(3, 0))
}

func TestPercentIsComplete(t *testing.T) {
	assert.True(t, Percent(100).IsComplete())
	assert.False(t, Percent(99).IsComplete())
}

func TestNewEmailNormalizes(t *testing.T) {
	e, err := NewEmail("  Alice@Example.COM ")
	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", e.String())
}

func TestNewEmailRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "no-at-sign", "a@b", "two@@example.com"} {
		_, err := NewEmail(raw)
		assert.Error(t, err, raw)
		assert.True(t, IsValidation(err), raw)
	}
}

func TestDomainErrorMatching(t *testing.T) {
	assert.True(t, IsNotFound(ErrCourseNotFound))
	assert.True(t, IsAlreadyExists(ErrLearnerAlreadyExists))
	assert.True(t, IsValidation(ErrNegativeScore))
	assert.True(t, IsValidation(ErrScoreOutOfRange))
	assert.False(t, IsNotFound(ErrScoreOutOfRange))

	wrapped := WrapError("assessment", "Submit", ErrStorage, "append failed", ErrTimeout)
	assert.ErrorIs(t, wrapped, ErrStorage)
	assert.ErrorIs(t, wrapped, ErrTimeout)
	assert.Contains(t, wrapped.Error(), "assessment.Submit")
}
