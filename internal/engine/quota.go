package engine

import (
	"errors"
	"fmt"
)

// QuotaEnforcer counts executed instructions and enforces an optional
// maximum.
//
// A limit of zero disables enforcement; the counter still advances so the
// step count is available for stats.
type QuotaEnforcer struct {
	maxSteps int64 // 0 means unlimited
	current  int64
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int64) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check increments the step counter and validates against the limit.
//
// Returns StepsExceededError if the quota is exceeded.
// Called before each instruction executes.
func (q *QuotaEnforcer) Check() error {
	q.current++
	if q.maxSteps > 0 && q.current > q.maxSteps {
		return &StepsExceededError{
			Steps: q.current,
			Limit: q.maxSteps,
		}
	}
	return nil
}

// Reset resets the step counter to 0.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the current step count.
func (q *QuotaEnforcer) Current() int64 {
	return q.current
}

// MaxSteps returns the maximum steps limit.
func (q *QuotaEnforcer) MaxSteps() int64 {
	return q.maxSteps
}

// StepsExceededError is returned when a run exceeds its step limit.
type StepsExceededError struct {
	Steps int64 // Number of steps attempted
	Limit int64 // Maximum allowed steps
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("exceeded max steps quota: %d steps > %d limit", e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
