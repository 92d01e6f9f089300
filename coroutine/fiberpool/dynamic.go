package fiberpool

import "sync"

// NewDynamic returns an unbounded Pool built on sync.Pool: it grows on
// demand and lets the runtime reclaim idle carriers under memory pressure.
// This is the default — most hosts don't need a hard cap on live fibers.
func NewDynamic(newFn func() interface{}) Pool {
	return &sync.Pool{New: newFn}
}
