// Package entropy supplies the random draws used to pick community events.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// Source yields uniform floats in [0, 1).
type Source interface {
	Float() float64
}

// Crypto draws from crypto/rand.
type Crypto struct{}

func (Crypto) Float() float64 { return cryptoFloat() }

func cryptoFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0.5
	}
	// 53 bits for a uniform float64.
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Seeded is a reproducible source for tests and replays.
type Seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded returns a PCG-backed source seeded with seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Seeded) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Fixed always returns the same value.
type Fixed float64

func (f Fixed) Float() float64 { return float64(f) }
