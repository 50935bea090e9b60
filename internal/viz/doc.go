// Package viz provides the terminal view of a cloth simulation.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: steps one cloth per tick and draws it on a [Canvas]
//   - [Canvas]: Braille-based pixel canvas, 2x4 dots per cell
//   - [Viewport]: world to sub-pixel mapping and back, for mouse cuts
//   - [RunInteractive]: preset picker in front of the live view
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Step one frame while paused
//	R     - Rebuild the cloth
//	Tab   - Select parameter, Up/Down to tune it
//	T     - Cycle color themes
//	Click - Cut the first thread near the cell
package viz
