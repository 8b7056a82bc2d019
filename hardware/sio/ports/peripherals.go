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

package ports

import (
	"github.com/jetsetilly/gopherstation/hardware/preferences"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports/plugging"
	"github.com/jetsetilly/gopherstation/savestate"
)

// Peripheral represents a device that can be plugged into one of the
// controller ports of the console.
type Peripheral interface {
	// String should return information about the state of the peripheral
	String() string

	// Peripheral is to be removed
	Unplug()

	// Snapshot the instance of the Peripheral
	Snapshot() Peripheral

	// Plumb a new set of preferences into the Peripheral. Snapshotted
	// peripherals are plumbed when they are put back into service by the
	// rewind system
	Plumb(prf *preferences.Controller)

	// The port the peripheral is plugged into
	PortID() plugging.PortID

	// The ID of the peripheral being represented
	ID() plugging.PeripheralID

	// Reset the peripheral to its power-on state. Externally loaded
	// configuration (axis scale, rumble bias, etc.) is preserved
	Reset()

	// DoState passes every field of the peripheral through the savestate
	// serializer, in a fixed order. If ignoreInput is true then live
	// button/axis values are not restored from a reading stream. Fails with
	// a curated error matching the StateVersionMismatch pattern if the
	// stream's declared layout is incompatible
	DoState(st *savestate.State, ignoreInput bool) error

	// SetBindState applies one normalised input value to the peripheral.
	// The index is an offset into the peripheral's BindingInfo list. Button
	// bindings expect 0.0 or 1.0; half-axis bindings a value in the range
	// [0.0, 1.0]; full-axis bindings a value in the range [-1.0, 1.0].
	// Out-of-range indices are ignored
	SetBindState(index uint32, value float32)

	// ButtonStateBits returns the raw active-low button bitmask. For
	// diagnostic overlays
	ButtonStateBits() uint32

	// AnalogInputBytes returns the packed analog axis sample for the
	// peripheral. The second return value is false for peripherals without
	// analog channels
	AnalogInputBytes() (uint32, bool)

	// ResetTransferState is called when the bus deselects the peripheral.
	// It clears the in-progress command and transfer buffers. Button, axis
	// and mode state are untouched
	ResetTransferState()

	// Transfer is the half-duplex byte exchange, invoked once per serial
	// clock edge. The returned bool is the ack signal, indicating that the
	// peripheral has more response bytes pending
	Transfer(data uint8) (uint8, bool)
}

// NewPeripheral defines the function signature for creating a new peripheral,
// suitable for use with the Plug() function of the Ports type.
type NewPeripheral func(port plugging.PortID, prf *preferences.Controller) Peripheral
