package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestObjectKey_Format(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 26, 15, 12, 3, 42917*int(time.Microsecond), time.UTC)
	require.Equal(t, "2026-08-26/20260826_151203_042917.json", ObjectKey(at))
}

func TestObjectKey_DatePartitionMatchesWriteDate(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 12, 31, 23, 59, 59, 999999*int(time.Microsecond), time.UTC)
	require.Equal(t, "2025-12-31/20251231_235959_999999.json", ObjectKey(at))
}

func TestObjectKey_LexicallySortableByCreationOrder(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 26, 15, 12, 3, 0, time.UTC)
	previous := ObjectKey(base)
	for _, step := range []time.Duration{
		time.Microsecond,
		time.Millisecond,
		time.Second,
		time.Minute,
		24 * time.Hour,
	} {
		base = base.Add(step)
		key := ObjectKey(base)
		require.Greater(t, key, previous)
		previous = key
	}
}
