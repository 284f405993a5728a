package pairing

import "math/rand"

// Rand is the source of every random choice the engine makes.
// *rand.Rand satisfies it; tests pass a seeded one.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// sharedRand forwards to the math/rand top-level functions, which are safe
// for concurrent use, so one source serves the whole process.
type sharedRand struct{}

func (sharedRand) Intn(n int) int                     { return rand.Intn(n) }
func (sharedRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }
