// Package dice provides the randomness abstraction and roll-result
// types for the Arbiter combat resolution engine.
package dice

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mathrand "math/rand"
)

// Source yields uniformly distributed integers for die rolls.  Injecting a
// Source lets tests pin every roll while production code draws from
// crypto/rand.
type Source interface {
	// Intn returns a uniform value in [0, n).  Implementations panic when
	// n <= 0.
	Intn(n int) int
}

type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
// Postcondition: the returned Source is safe for concurrent use.
func NewCryptoSource() Source {
	return cryptoSource{}
}

func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("dice: Intn called with n = %d", n))
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("dice: crypto/rand failure: %v", err))
	}
	return int(v.Int64())
}

type seededSource struct {
	rng *mathrand.Rand
}

// NewSeededSource returns a pseudo-random Source with a fixed seed, for
// reproducible encounter playback.  Not safe for concurrent use.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: mathrand.New(mathrand.NewSource(seed))}
}

func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("dice: Intn called with n = %d", n))
	}
	return s.rng.Intn(n)
}

// SequenceSource replays a fixed sequence of values, cycling when exhausted.
// It exists for deterministic tests: to force a natural 20 on a d20, queue 19.
type SequenceSource struct {
	values []int
	next   int
}

// NewSequenceSource builds a SequenceSource from the given values.
// Precondition: at least one value.
func NewSequenceSource(values ...int) *SequenceSource {
	if len(values) == 0 {
		panic("dice: NewSequenceSource requires at least one value")
	}
	return &SequenceSource{values: values}
}

func (s *SequenceSource) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("dice: Intn called with n = %d", n))
	}
	v := s.values[s.next%len(s.values)] % n
	if v < 0 {
		v += n
	}
	s.next++
	return v
}
