package storage

import (
	"fmt"
	"time"
)

// ObjectKey derives the storage key for a record written at t: a date
// partition prefix plus a microsecond-resolution timestamp filename,
// e.g. "2026-08-26/20260826_151203_042917.json". Keys are lexically
// sortable by creation order while the clock is monotonic; two writes
// within the same microsecond would collide, which is accepted as
// negligible risk.
func ObjectKey(t time.Time) string {
	return fmt.Sprintf("%s/%s_%06d.json",
		t.Format("2006-01-02"),
		t.Format("20060102_150405"),
		t.Nanosecond()/int(time.Microsecond),
	)
}
