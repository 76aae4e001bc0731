package classifier

import "sync"

// Breaker disables the remote path once a fatal provider error is seen.
// It stays open until Reset.
type Breaker struct {
	mu      sync.RWMutex
	tripped bool
	reason  string
}

func NewBreaker() *Breaker { return &Breaker{} }

// Allow reports whether remote calls may be made.
func (b *Breaker) Allow() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.tripped
}

// Trip opens the breaker. The first reason is kept.
func (b *Breaker) Trip(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.tripped {
		b.tripped = true
		b.reason = reason
	}
}

func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tripped = false
	b.reason = ""
}

// Tripped returns the breaker state and the reason it was opened.
func (b *Breaker) Tripped() (bool, string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tripped, b.reason
}
