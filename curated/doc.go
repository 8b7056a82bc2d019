// This file is part of GopherStation.
//
// GopherStation is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherStation is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherStation.  If not, see <https://www.gnu.org/licenses/>.

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error.
//
// The Is() function can be used to check whether an error was created by the
// Errorf() function with a specific pattern. Packages that produce curated
// errors declare their patterns as exported string constants. For example,
// checking whether a state load failed because of a layout change:
//
//	err := pad.DoState(st, false)
//	if curated.Is(err, ports.StateVersionMismatch) {
//		// recoverable. the snapshot is simply not loadable
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the error chain. Chains are built by using a curated error as a placeholder
// value in another call to Errorf().
package curated
