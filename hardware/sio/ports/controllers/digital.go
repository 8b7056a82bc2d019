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

package controllers

import (
	"fmt"

	"github.com/jetsetilly/gopherstation/curated"
	"github.com/jetsetilly/gopherstation/hardware/preferences"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports/plugging"
	"github.com/jetsetilly/gopherstation/logger"
	"github.com/jetsetilly/gopherstation/savestate"
)

// the steps of a digital pad exchange.
type digitalStep uint8

const (
	digitalIdle digitalStep = iota
	digitalReady
	digitalStatus
	digitalButtonsLSB
	digitalButtonsMSB
)

// serialized layout version for the Digital type.
const digitalStateVersion = 1

// Digital represents the original digital controller.
type Digital struct {
	port plugging.PortID
	prf  *preferences.Controller

	// buttons are active low
	buttonState uint16

	// transient cursor into the in-progress exchange. cleared on deselect
	step digitalStep

	// the command byte of the in-progress exchange
	command uint8
}

// NewDigital is the preferred method of initialisation for the Digital type.
// Satisfies the ports.NewPeripheral interface and can be used as an argument
// to the Plug() function of the ports.Ports type.
func NewDigital(port plugging.PortID, prf *preferences.Controller) ports.Peripheral {
	if prf == nil {
		prf = preferences.NewPreferences().Controller(port)
	}
	pad := &Digital{
		port: port,
		prf:  prf,
	}
	pad.Reset()
	return pad
}

// Snapshot implements the ports.Peripheral interface.
func (pad *Digital) Snapshot() ports.Peripheral {
	n := *pad
	return &n
}

// Plumb implements the ports.Peripheral interface.
func (pad *Digital) Plumb(prf *preferences.Controller) {
	pad.prf = prf
}

// String implements the ports.Peripheral interface.
func (pad *Digital) String() string {
	return fmt.Sprintf("digital: buttons=%04x", pad.buttonState)
}

// PortID implements the ports.Peripheral interface.
func (pad *Digital) PortID() plugging.PortID {
	return pad.port
}

// ID implements the ports.Peripheral interface.
func (pad *Digital) ID() plugging.PeripheralID {
	return plugging.PeriphDigital
}

// Unplug implements the ports.Peripheral interface.
func (pad *Digital) Unplug() {
	logger.Logf("digital pad", "unplugged from %s", pad.port)
}

// Reset implements the ports.Peripheral interface.
func (pad *Digital) Reset() {
	pad.buttonState = 0xffff
	pad.ResetTransferState()
}

// ResetTransferState implements the ports.Peripheral interface.
func (pad *Digital) ResetTransferState() {
	pad.step = digitalIdle
	pad.command = 0x00
}

// SetBindState implements the ports.Peripheral interface.
func (pad *Digital) SetBindState(index uint32, value float32) {
	if index > ButtonSquare {
		return
	}
	if value >= 0.5 {
		pad.buttonState &= ^(uint16(1) << index)
	} else {
		pad.buttonState |= uint16(1) << index
	}
}

// ButtonStateBits implements the ports.Peripheral interface.
func (pad *Digital) ButtonStateBits() uint32 {
	return uint32(pad.buttonState)
}

// AnalogInputBytes implements the ports.Peripheral interface. The digital
// pad has no analog channels.
func (pad *Digital) AnalogInputBytes() (uint32, bool) {
	return 0, false
}

// Transfer implements the ports.Peripheral interface.
func (pad *Digital) Transfer(data uint8) (uint8, bool) {
	switch pad.step {
	case digitalIdle:
		if data == 0x01 {
			pad.step = digitalReady
			return 0xff, true
		}
		return 0xff, false

	case digitalReady:
		// the reply to the command byte is the low ID byte. an unrecognised
		// command still gets the minimal ID/status response
		pad.command = data
		pad.step = digitalStatus
		if data != 0x42 {
			logger.Logf("digital pad", "unrecognised command %#02x", data)
		}
		return 0x41, true

	case digitalStatus:
		if pad.command != 0x42 {
			pad.step = digitalIdle
			return 0x5a, false
		}
		pad.step = digitalButtonsLSB
		return 0x5a, true

	case digitalButtonsLSB:
		pad.step = digitalButtonsMSB
		return uint8(pad.buttonState & 0xff), true

	case digitalButtonsMSB:
		pad.step = digitalIdle
		return uint8(pad.buttonState >> 8), false
	}

	return 0xff, false
}

// DoState implements the ports.Peripheral interface.
func (pad *Digital) DoState(st *savestate.State, ignoreInput bool) error {
	version := uint8(digitalStateVersion)
	st.Do8(&version)
	if st.IsReading() && version != digitalStateVersion {
		return curated.Errorf(ports.StateVersionMismatch, "digital pad")
	}

	buttonState := pad.buttonState
	st.Do16(&buttonState)
	if !(st.IsReading() && ignoreInput) {
		pad.buttonState = buttonState
	}

	step := uint8(pad.step)
	st.Do8(&step)
	st.Do8(&pad.command)
	if st.IsReading() {
		pad.step = digitalStep(step)
	}

	return st.Error()
}
