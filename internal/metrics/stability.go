package metrics

import (
	"math"

	"github.com/san-kum/nbody/internal/dynamo"
)

// Bounded is the fraction of observed states in which every position
// coordinate of the flat state stays within radius. Escaping or exploding
// orbits pull it below 1.
type Bounded struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewBounded(radius float64) *Bounded {
	return &Bounded{
		name:   "bounded",
		radius: radius,
	}
}

func (b *Bounded) Name() string {
	return b.name
}

func (b *Bounded) Observe(x dynamo.State, t float64) {
	b.samples++
	for _, val := range x[:len(x)/2] {
		if math.IsNaN(val) || math.Abs(val) > b.radius {
			b.violations++
			break
		}
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounded) Reset() {
	b.violations = 0
	b.samples = 0
}
