package domain

import "time"

// Timer is a pending delayed callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call stopped it.
	Stop() bool
}

// Clock provides the time source and delayed-callback scheduling for the dispatcher.
type Clock interface {
	Now() time.Time
	// AfterFunc runs f in its own turn once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}
