// backoff.go: spin-wait helper for the growth, closer-protocol and reclamation wait loops
package growtable

import "runtime"

const backoffSpinLimit = 32

// backoff implements a small spin/yield escalation: pure busy-spin for the
// first few rounds, then runtime.Gosched to let other goroutines make
// progress. There is no sleep tier; every site that uses backoff is waiting
// on another goroutine's CAS to land within microseconds, not on I/O.
type backoff struct {
	n int
}

func (b *backoff) wait() {
	if b.n < backoffSpinLimit {
		for i := 0; i < (1 << uint(b.n%10)); i++ {
			// busy-spin
		}
	} else {
		runtime.Gosched()
	}
	b.n++
}
