package physics

const (
	Pi          = 3.141592653589793
	SolarMass   = 4 * Pi * Pi
	DaysPerYear = 365.24
	NumBodies   = 5
)

// Names lists the bodies in kernel order. Body 0 absorbs the momentum offset.
var Names = [NumBodies]string{"sun", "jupiter", "saturn", "uranus", "neptune"}

// jovian holds the standard dataset: positions in AU, velocities in AU/day
// and masses in solar masses, before unit scaling.
var jovian = [NumBodies][7]float64{
	{0, 0, 0, 0, 0, 0, 1},
	{
		4.84143144246472090e+00, -1.16032004402742839e+00, -1.03622044471123109e-01,
		1.66007664274403694e-03, 7.69901118419740425e-03, -6.90460016972063023e-05,
		9.54791938424326609e-04,
	},
	{
		8.34336671824457987e+00, 4.12479856412430479e+00, -4.03523417114321381e-01,
		-2.76742510726862411e-03, 4.99852801234917238e-03, 2.30417297573763929e-05,
		2.85885980666130812e-04,
	},
	{
		1.28943695621391310e+01, -1.51111514016986312e+01, -2.23307578892655734e-01,
		2.96460137564761618e-03, 2.37847173959480950e-03, -2.96589568540237556e-05,
		4.36624404335156298e-05,
	},
	{
		1.53796971148509165e+01, -2.59193146099879641e+01, 1.79258772950371181e-01,
		2.68067772490389322e-03, 1.62824170038242295e-03, -9.51592254519715870e-05,
		5.15138902046611451e-05,
	},
}

func jovianBodies() [NumBodies]Body {
	var bodies [NumBodies]Body
	for i, c := range jovian {
		bodies[i] = Body{
			Position: [3]float64{c[0], c[1], c[2]},
			Velocity: [3]float64{c[3] * DaysPerYear, c[4] * DaysPerYear, c[5] * DaysPerYear},
			Mass:     c[6] * SolarMass,
		}
	}
	return bodies
}
