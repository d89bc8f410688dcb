// Package automation runs scripted benchmark scenarios loaded from YAML.
//
// A scenario file looks like:
//
//	name: timestep check
//	steps:
//	  - preset: benchmark
//	  - preset: benchmark
//	    dt: 0.005
//	    steps: 2000
//	    save_as: half_dt
package automation
