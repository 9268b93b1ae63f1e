package internal

import (
	"math/rand"
	"time"
)

// ByteSource supplies the random bytes used by the Cxkk instruction.
type ByteSource interface {
	RandomByte() uint8
}

// Random is a ByteSource backed by the standard library generator.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a generator that repeats the same sequence for the same seed.
func NewRandom(seed int64) *Random {
	return &Random{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewTimeSeededRandom returns a generator seeded from the current time.
func NewTimeSeededRandom() *Random {
	return NewRandom(time.Now().UnixNano())
}

// RandomByte returns the next byte of the sequence.
func (rnd *Random) RandomByte() uint8 {
	return uint8(rnd.rng.Intn(256))
}

// FixedBytes replays its bytes in order, wrapping around at the end.
// An empty FixedBytes always returns 0.
type FixedBytes struct {
	Bytes []uint8
	pos   int
}

// RandomByte returns the next byte of the sequence.
func (f *FixedBytes) RandomByte() uint8 {
	if len(f.Bytes) == 0 {
		return 0
	}
	b := f.Bytes[f.pos%len(f.Bytes)]
	f.pos++
	return b
}
