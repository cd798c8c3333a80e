package forage

import "math/rand/v2"

// Source is the random dependency of the engine. Every random decision
// (pellet sampling, spawns, hazard wandering, freeze jitter) goes through an
// injected Source so that seeded sessions are exactly reproducible.
type Source interface {
	// Intn returns a uniform integer in [0, n). It panics if n <= 0.
	Intn(n int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
}

// LCG is a 32-bit linear congruential generator (Numerical Recipes constants).
// A seed yields the same sequence on every platform.
type LCG struct {
	state uint32
}

const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
)

// NewLCG creates a generator from a seed. Only the low 32 bits matter.
func NewLCG(seed uint64) *LCG {
	return &LCG{state: uint32(seed)}
}

func (g *LCG) next() uint32 {
	g.state = g.state*lcgMultiplier + lcgIncrement
	return g.state
}

// Float64 returns a uniform float in [0, 1).
func (g *LCG) Float64() float64 {
	return float64(g.next()) / (1 << 32)
}

// Intn returns a uniform integer in [0, n).
func (g *LCG) Intn(n int) int {
	if n <= 0 {
		panic("forage: Intn called with non-positive n")
	}
	return int(g.Float64() * float64(n))
}

type entropySource struct {
	r *rand.Rand
}

// NewEntropySource returns a non-deterministic Source for unseeded sessions.
// It is seeded once here; core logic never reads a global random function.
func NewEntropySource() Source {
	return entropySource{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

func (s entropySource) Intn(n int) int {
	return s.r.IntN(n)
}

func (s entropySource) Float64() float64 {
	return s.r.Float64()
}
