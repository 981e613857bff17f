// Package viz renders solver runs in the terminal.
//
// [Model] is a Bubble Tea program that steps a [sim.Scene] live, drawing each
// constraint's relative velocity against its target on a Braille [Canvas].
// [PlotResiduals] and [MetricsTable] format finished runs for the CLI.
//
// # Key Bindings
//
//	Space - Pause/Resume stepping
//	N     - Single step while paused
//	R     - Rebuild the scene from its config
//	+/-   - Change solver iterations for new scenes
//	Q     - Quit
package viz
