package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/nbody/internal/dynamo"
	"github.com/san-kum/nbody/internal/physics"
)

// Divergence estimates the largest Lyapunov exponent (1/years) of the
// five-body kernel by the two-trajectory method. The shadow system starts
// with Jupiter displaced by perturbation AU along x and is pulled back to the
// initial separation every renorm steps.
func Divergence(steps int, dt, perturbation float64, renorm int) (float64, error) {
	if steps <= 0 || dt <= 0 || perturbation <= 0 || renorm <= 0 {
		return 0, fmt.Errorf("steps=%d dt=%g perturbation=%g renorm=%d: %w",
			steps, dt, perturbation, renorm, dynamo.ErrInvalidArgument)
	}

	flat := physics.NewPlanetary()
	base := physics.NewJovian()

	bodies := physics.NewSystem().Bodies()
	bodies[1].Position[0] += perturbation
	shadow := physics.NewSystemFrom(bodies)
	shadow.OffsetMomentum()

	d0 := shadow.State().Sub(base.State()).Norm()

	sumLog := 0.0
	intervals := 0

	for step := 1; step <= steps; step++ {
		base.Advance(dt)
		shadow.Advance(dt)

		if step%renorm != 0 {
			continue
		}

		x, xp := base.State(), shadow.State()
		d := xp.Sub(x).Norm()
		if d == 0 {
			continue
		}

		sumLog += math.Log(d / d0)
		intervals++

		scale := d0 / d
		for i := range xp {
			xp[i] = x[i] + (xp[i]-x[i])*scale
		}
		shadow = flat.System(xp)
	}

	if intervals == 0 {
		return 0, nil
	}
	return sumLog / (float64(intervals*renorm) * dt), nil
}
