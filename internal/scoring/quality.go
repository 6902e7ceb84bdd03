package scoring

import (
	"math/rand/v2"
	"sync"

	"github.com/david/syncscout/internal/models"
)

// Factor names an unmeasured quality term in the scoring formulas.
type Factor int

const (
	FactorRepetition Factor = iota
	FactorCatchiness
	FactorShortFormCatchiness
	FactorAesthetic
	FactorHookMemorability
	FactorShareability
	FactorChartSimilarity
	FactorProduction
)

func (f Factor) String() string {
	switch f {
	case FactorRepetition:
		return "repetition"
	case FactorCatchiness:
		return "catchiness"
	case FactorShortFormCatchiness:
		return "short_form_catchiness"
	case FactorAesthetic:
		return "aesthetic"
	case FactorHookMemorability:
		return "hook_memorability"
	case FactorShareability:
		return "shareability"
	case FactorChartSimilarity:
		return "chart_similarity"
	case FactorProduction:
		return "production"
	}
	return "unknown"
}

// QualitySignal supplies the terms no feature in the profile measures.
// Measure returns a value in [0,1]; each formula scales it to its own bound.
//
// No real measurement exists yet. NoSignal keeps scoring deterministic and
// RandomSignal reproduces the simulated behaviour for demos.
type QualitySignal interface {
	Measure(profile models.FeatureProfile, factor Factor) float64
}

// NoSignal contributes nothing.
type NoSignal struct{}

func (NoSignal) Measure(models.FeatureProfile, Factor) float64 { return 0 }

// RandomSignal draws uniform values from a seeded generator.
type RandomSignal struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomSignal(seed uint64) *RandomSignal {
	return &RandomSignal{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *RandomSignal) Measure(models.FeatureProfile, Factor) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// NewSignal builds the signal named in configuration.
func NewSignal(kind string, seed uint64) QualitySignal {
	if kind == "random" {
		return NewRandomSignal(seed)
	}
	return NoSignal{}
}

func measure(q QualitySignal, p models.FeatureProfile, f Factor) float64 {
	if q == nil {
		return 0
	}
	v := q.Measure(p, f)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
