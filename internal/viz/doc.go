// Package viz provides the terminal live view of the five-body kernel.
//
// [Model] is a Bubble Tea model that advances the kernel every frame and
// draws a top-down projection on a braille [Canvas], with per-body trails,
// the current energy and an energy error graph.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the initial system
//	+/-   - Zoom in/out
//	Q     - Quit
package viz
