package draw

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	"math/rand/v2"
)

// RandomSource abstract

type RandomSource interface {
	IntN(n int) int // [0, n)
}

// crypto random : used when no seed is given
type cryptoRNG struct{}

func (cryptoRNG) IntN(n int) int {
	v, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// back to math/rand/v2
		return rand.IntN(n)
	}
	return int(v.Int64())
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG: same seed, same spoiler log
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) IntN(n int) int { return s.r.IntN(n) }

// NewSeed returns a fresh seed from crypto/rand for runs started without
// one. The seed is printed in the option log so the run can be replayed.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := cryptoRand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
