package schedule

import "time"

// Scheduler runs callbacks serially on one logical loop.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// Post queues fn to run on the loop. It is safe to call from any goroutine.
	Post(fn func())

	// AfterFunc runs fn on the loop once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer

	// Every runs fn on the loop every d until the timer is stopped.
	Every(d time.Duration, fn func()) Timer
}

// Timer is a pending AfterFunc or Every registration.
type Timer interface {
	// Stop cancels the timer. Once Stop returns on the loop, the callback
	// will not run again. Stop is idempotent.
	Stop()
}
