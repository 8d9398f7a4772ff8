// Package gas provides the primitives shared by every part of the coin gas
// simulation.
//
// The package defines:
//
//   - [Disk]: a moving equal-mass disk carrying discrete energy units
//   - [Distance] and [Overlaps]: the pairwise geometry used for collision detection
//   - [Source]: the uniform [0,1) random source consumed by exchange policies
//   - [ErrConfiguration] and [ErrInvariant]: the error taxonomy
//
// # Conservation
//
// The sum of [Disk.Energy] over a world is fixed for the whole run. Any code
// that observes a different total, or a disk outside [0, capacity], reports an
// [InvariantError] instead of correcting the value:
//
//	if err := exchange.Check(e1, e2, c, n1, n2); err != nil {
//	    return err // wraps gas.ErrInvariant
//	}
package gas
