// Package scheduler abstracts time and asynchronous execution so that the
// interpreter runs unchanged on real goroutines and timers or on virtual time.
package scheduler

import "time"

// Timer is a pending callback created by AfterFunc.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
	// Go starts fn asynchronously. fn never runs before Go returns.
	Go(fn func())
}
