// Package clock abstracts wall-clock reads so time-derived values can be
// pinned in tests.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}
