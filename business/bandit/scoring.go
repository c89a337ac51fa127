package bandit

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"myCampaignEngine/domain"
)

// sampler owns the engine's random source. *rand.Rand is not safe for
// concurrent use, so every draw happens under mu.
type sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newSampler(seed uint64) *sampler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &sampler{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// thompson draws one Beta sample per belief and returns the index of the
// largest draw. Exact ties are broken uniformly at random.
func (s *sampler) thompson(beliefs []domain.BeliefParameters) (int, []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	samples := make([]float64, len(beliefs))
	best := math.Inf(-1)
	ties := make([]int, 0, 1)
	for i, b := range beliefs {
		x := betaSample(s.rng, b.Alpha, b.Beta)
		samples[i] = x
		switch {
		case x > best:
			best = x
			ties = append(ties[:0], i)
		case x == best:
			ties = append(ties, i)
		}
	}
	if len(ties) == 0 {
		return -1, samples
	}
	winner := ties[0]
	if len(ties) > 1 {
		winner = ties[s.rng.IntN(len(ties))]
	}
	return winner, samples
}

func (s *sampler) beta(a, b float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return betaSample(s.rng, a, b)
}

// betaSample draws from Beta(a, b) as X/(X+Y) with X ~ Gamma(a), Y ~ Gamma(b).
func betaSample(r *rand.Rand, a, b float64) float64 {
	x := gammaSample(r, a)
	y := gammaSample(r, b)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}

// gammaSample draws from Gamma(shape, 1) using Marsaglia & Tsang (2000).
// Shapes below 1 use the Gamma(shape+1)·U^(1/shape) boost.
func gammaSample(r *rand.Rand, shape float64) float64 {
	if shape <= 0 {
		return 0
	}
	if shape < 1 {
		u := r.Float64()
		for u == 0 {
			u = r.Float64()
		}
		return gammaSample(r, shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		x := r.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := r.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if u > 0 && math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
