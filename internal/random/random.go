// Package random isolates every source of randomness used by the pipeline so
// tests can substitute deterministic sequences.
package random

import (
	"math/rand/v2"
	"sync"
)

// Source is the subset of a random generator the pipeline needs.
type Source interface {
	// Float64 returns a value in [0,1).
	Float64() float64
	// IntN returns a value in [0,n).
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

type global struct{}

// New returns a Source backed by the goroutine-safe top-level generator.
func New() Source { return global{} }

func (global) Float64() float64                   { return rand.Float64() }
func (global) IntN(n int) int                     { return rand.IntN(n) }
func (global) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Locked wraps a *rand.Rand with a mutex.
type Locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded returns a reproducible Source safe for concurrent use.
func NewSeeded(seed uint64) *Locked {
	return &Locked{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *Locked) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
