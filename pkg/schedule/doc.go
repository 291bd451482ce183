// Package schedule provides the clock and callback loop the client logic is
// affined to.
//
// Every callback handed to a Scheduler runs on one logical loop, one at a
// time, so code running under it needs no locking of its own. Loop is the
// production implementation backed by a goroutine and the wall clock;
// Manual is a virtual clock for deterministic tests.
//
//	loop := schedule.NewLoop(logger)
//	go loop.Run(ctx)
//
//	t := loop.Every(time.Second, tick)
//	defer t.Stop()
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package schedule
