// Package viz renders runs in the terminal.
//
//   - [Model]: live Bubble Tea view of particles moving on the ellipse
//   - [Canvas]: braille dot canvas with a world-to-dot mapping
//   - [Plot] and [RenderSummary]: asciigraph series and the styled run report
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the initial particles
//	+/-   - Double or halve steps per frame
//	Q     - Quit
package viz
