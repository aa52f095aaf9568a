package explore

import (
	"context"
	"sync"
)

// Latest implements latest-request-wins for one surface. Each Start cancels
// the previous request; Deliver runs only for the newest one.
type Latest struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Start supersedes any in-flight request and returns the new request's
// context and sequence number.
func (l *Latest) Start(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	l.cancel = cancel
	return ctx, l.seq
}

func (l *Latest) Current(seq uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return seq == l.seq
}

// Deliver calls fn if seq is still the newest request and reports whether
// it did. No Start can interleave with fn.
func (l *Latest) Deliver(seq uint64, fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return false
	}
	fn()
	return true
}

// Stop cancels the in-flight request, if any.
func (l *Latest) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.seq++
}
