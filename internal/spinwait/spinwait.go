// Package spinwait provides the CPU-level spin-wait hint used by the
// ring's blocking Write/Read. It is designed for brief waits only: no
// kernel park, and starvation is possible when writer count exceeds
// hardware parallelism (spec §4.4, §5).
package spinwait

import "runtime"

// Hint yields the current goroutine's timeslice without parking it.
// Call it once per zero-progress retry.
func Hint() {
	runtime.Gosched()
}
