// Package energy measures how much electrical energy a benchmark run uses.
//
// A Meter reads the Intel RAPL counters the powercap driver exposes under
// /sys/class/powercap, discovered through procfs's sysfs package. Only package
// and DRAM domains are counted: core and uncore are already part of the
// package reading. Counters are cumulative
// microjoule values that wrap at max_energy_range_uj, so a Meter samples
// them in the background while a run is active and adds up the deltas.
//
// A Meter implements bench.Hook and stores its result in Report.Joules.
// Hosts without readable RAPL counters, and non-linux hosts, get
// dynamo.ErrNoData from NewMeter.
package energy
