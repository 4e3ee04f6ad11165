package testutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"studioshell/pkg/studiotypes"
)

// stubContext implements just enough of the context interface for the
// deterministic helpers.
type stubContext struct {
	studiotypes.Context
	testMode bool
}

func (s *stubContext) IsTestMode() bool { return s.testMode }

func TestGenerateUUID_DeterministicInTestMode(t *testing.T) {
	ResetTestCounters()
	ctx := &stubContext{testMode: true}

	assert.Equal(t, "00000001-0000-4000-8000-000000000001", GenerateUUID(ctx))
	assert.Equal(t, "00000002-0000-4000-8000-000000000002", GenerateUUID(ctx))

	ResetTestCounters()
	assert.Equal(t, "00000001-0000-4000-8000-000000000001", GenerateUUID(ctx))
}

func TestGenerateUUID_RandomInProduction(t *testing.T) {
	ctx := &stubContext{testMode: false}

	first := GenerateUUID(ctx)
	second := GenerateUUID(ctx)
	assert.NotEqual(t, first, second)
	assert.Len(t, first, 36)
}

func TestGetCurrentTime_IncrementsInTestMode(t *testing.T) {
	ResetTestCounters()
	ctx := &stubContext{testMode: true}

	first := GetCurrentTime(ctx)
	second := GetCurrentTime(ctx)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC), first)
	assert.Equal(t, time.Second, second.Sub(first))
}

func TestFormatISOTime(t *testing.T) {
	ts := time.Date(2025, 6, 1, 15, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "2025-06-01T13:30:00Z", FormatISOTime(ts))
}
