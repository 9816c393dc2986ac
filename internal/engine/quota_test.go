package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQuotaEnforcer_WithinLimit tests normal operation within quota.
func TestQuotaEnforcer_WithinLimit(t *testing.T) {
	q := NewQuotaEnforcer(10)

	for i := 0; i < 10; i++ {
		err := q.Check()
		assert.NoError(t, err, "step %d should be allowed", i+1)
	}

	assert.Equal(t, int64(10), q.Current())
	assert.Equal(t, int64(10), q.MaxSteps())
}

// TestQuotaEnforcer_ExceedsLimit tests quota exceeded error.
func TestQuotaEnforcer_ExceedsLimit(t *testing.T) {
	q := NewQuotaEnforcer(5)

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Check())
	}

	// 6th should fail
	err := q.Check()
	require.Error(t, err)

	var stepsErr *StepsExceededError
	require.ErrorAs(t, err, &stepsErr)
	assert.Equal(t, int64(6), stepsErr.Steps)
	assert.Equal(t, int64(5), stepsErr.Limit)
}

// TestQuotaEnforcer_Unlimited tests that zero disables enforcement.
func TestQuotaEnforcer_Unlimited(t *testing.T) {
	q := NewQuotaEnforcer(0)

	for i := 0; i < 10_000; i++ {
		require.NoError(t, q.Check())
	}
	assert.Equal(t, int64(10_000), q.Current())
}

// TestQuotaEnforcer_Reset tests resetting the counter.
func TestQuotaEnforcer_Reset(t *testing.T) {
	q := NewQuotaEnforcer(5)

	for i := 0; i < 5; i++ {
		_ = q.Check()
	}
	assert.Equal(t, int64(5), q.Current())

	q.Reset()
	assert.Equal(t, int64(0), q.Current())

	for i := 0; i < 5; i++ {
		assert.NoError(t, q.Check())
	}
}

// TestStepsExceededError_Error tests error message formatting.
func TestStepsExceededError_Error(t *testing.T) {
	err := &StepsExceededError{Steps: 1001, Limit: 1000}
	assert.Equal(t, "exceeded max steps quota: 1001 steps > 1000 limit", err.Error())
}

// TestIsStepsExceededError tests the helper with wrapped errors.
func TestIsStepsExceededError(t *testing.T) {
	err := &StepsExceededError{Steps: 2, Limit: 1}

	assert.True(t, IsStepsExceededError(err))
	assert.True(t, IsStepsExceededError(fmt.Errorf("wrapped: %w", err)))
	assert.True(t, IsStepLimitError(err))
	assert.False(t, IsStepsExceededError(fmt.Errorf("other")))
}
