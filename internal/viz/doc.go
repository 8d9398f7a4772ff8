// Package viz renders a running gas in the terminal with Bubble Tea.
//
//   - [Model]: live view of the arena, the occupancy of every level and its
//     convergence toward the microstate count
//   - [Canvas]: braille pixel canvas the arena is drawn on
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+/-   - More/fewer steps per frame
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
