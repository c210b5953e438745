package mana

import (
	"errors"
	"sync"
)

// ErrInsufficient is returned when a spend exceeds the available mana.
var ErrInsufficient = errors.New("insufficient mana")

// Pool is a player's mana, bounded by [0, max].
type Pool struct {
	mu sync.RWMutex

	current int
	max     int
}

// NewPool creates a pool holding start mana, clamped to [0, max].
func NewPool(start, max int) *Pool {
	if max < 0 {
		max = 0
	}
	return &Pool{current: clamp(start, 0, max), max: max}
}

// Available returns the spendable mana.
func (p *Pool) Available() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Max returns the pool's capacity.
func (p *Pool) Max() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.max
}

// Add restores mana up to the pool's capacity and returns how much was
// actually added.
func (p *Pool) Add(amount int) int {
	if amount <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	added := min(amount, p.max-p.current)
	p.current += added
	return added
}

// CanPay reports whether amount could be spent right now.
func (p *Pool) CanPay(amount int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return amount <= p.current
}

// Spend removes amount from the pool. Nothing is spent on failure.
func (p *Pool) Spend(amount int) error {
	if amount <= 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current < amount {
		return ErrInsufficient
	}
	p.current -= amount
	return nil
}

// Copy creates a deep copy of the pool.
func (p *Pool) Copy() *Pool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &Pool{current: p.current, max: p.max}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
