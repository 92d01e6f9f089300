// Package fiberpool recycles the goroutines that back coroutine.Thread
// values, so that spawning many short-lived coroutines in a row (the
// common case for a build tool driving thousands of small tasks) does not
// pay for a fresh OS-level goroutine stack on every Create call.
//
// The shape of this package mirrors a worker pool: Get returns an idle
// carrier ready to run a new coroutine body, Put returns it once the body
// has finished. Unlike a worker pool, the carrier itself never executes
// more than one coroutine body concurrently — recycling only amortizes
// goroutine creation, it never reintroduces parallel execution.
package fiberpool

// Pool hands out and reclaims reusable fiber carriers.
type Pool interface {
	// Get returns an idle carrier, creating one if none is available.
	Get() interface{}
	// Put returns a carrier to the pool once its coroutine body has ended.
	Put(interface{})
}
