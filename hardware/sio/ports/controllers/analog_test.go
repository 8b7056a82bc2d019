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

package controllers_test

import (
	"testing"

	"github.com/jetsetilly/gopherstation/curated"
	"github.com/jetsetilly/gopherstation/hardware/preferences"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports/controllers"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports/plugging"
	"github.com/jetsetilly/gopherstation/savestate"
	"github.com/jetsetilly/gopherstation/test"
)

// exchange clocks a full select-to-deselect exchange through the peripheral.
// the first byte of send is the command byte. the exchange runs until the
// peripheral stops acking, padding the send bytes with zeroes if necessary.
func exchange(t *testing.T, pad ports.Peripheral, send ...uint8) []uint8 {
	t.Helper()

	// address byte. the pad acks and goes hi-z
	b, ack := pad.Transfer(0x01)
	test.DemandEquality(t, b, uint8(0xff), "address byte response")
	test.DemandSuccess(t, ack, "address byte ack")

	var resp []uint8
	i := 0
	for {
		var data uint8
		if i < len(send) {
			data = send[i]
		}
		b, more := pad.Transfer(data)
		resp = append(resp, b)
		i++
		if !more {
			break
		}
	}

	// bus deselects at the end of the exchange
	pad.ResetTransferState()

	return resp
}

func expectResponse(t *testing.T, resp []uint8, expected ...uint8) {
	t.Helper()
	test.DemandEquality(t, len(resp), len(expected), "response length")
	for i := range resp {
		test.ExpectEquality(t, resp[i], expected[i], "response byte", i)
	}
}

// enterConfig and leaveConfig bracket a configuration sub-protocol session.
func enterConfig(t *testing.T, pad ports.Peripheral) {
	t.Helper()
	exchange(t, pad, 0x43, 0x00, 0x01)
}

func leaveConfig(t *testing.T, pad ports.Peripheral) {
	t.Helper()
	exchange(t, pad, 0x43, 0x00, 0x00)
}

// switch the pad into analog reporting through the configuration
// sub-protocol, the way a guest program does it.
func enableAnalogMode(t *testing.T, pad ports.Peripheral) {
	t.Helper()
	enterConfig(t, pad)
	exchange(t, pad, 0x44, 0x00, 0x01)
	leaveConfig(t, pad)
}

func TestReadPadDigital(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	// digital mode, no buttons pressed
	resp := exchange(t, pad, 0x42, 0x00, 0x00, 0x00)
	expectResponse(t, resp, 0x41, 0x5a, 0xff, 0xff)

	// cross pressed. active low so bit 14 of the button state clears
	pad.SetBindState(controllers.ButtonCross, 1.0)
	resp = exchange(t, pad, 0x42, 0x00, 0x00, 0x00)
	expectResponse(t, resp, 0x41, 0x5a, 0xff, 0xbf)

	pad.SetBindState(controllers.ButtonCross, 0.0)
	resp = exchange(t, pad, 0x42, 0x00, 0x00, 0x00)
	expectResponse(t, resp, 0x41, 0x5a, 0xff, 0xff)
}

func TestReadPadAnalog(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)
	enableAnalogMode(t, pad)

	// left stick pushed fully right, all else centred
	pad.SetBindState(controllers.BindLeftStickRight, 1.0)
	resp := exchange(t, pad, 0x42, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
	expectResponse(t, resp, 0x73, 0x5a, 0xff, 0xff, 0x80, 0x80, 0xff, 0x80)
}

func TestResponseLengths(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	// digital mode. two fixed ID/status bytes plus one halfword of buttons
	test.ExpectEquality(t, len(exchange(t, pad, 0x42)), 4, "0x42 digital")
	test.ExpectEquality(t, len(exchange(t, pad, 0x43, 0x00, 0x00)), 4, "0x43 digital")

	// config-only commands outside configuration mode degrade to the
	// minimal ID/status response
	for _, cmd := range []uint8{0x44, 0x45, 0x46, 0x47, 0x4c, 0x4d} {
		test.ExpectEquality(t, len(exchange(t, pad, cmd)), 2, "config command outside config mode", cmd)
	}

	// all commands have a fixed length inside configuration mode. the
	// parameter byte is 0x01 so the 0x43 iteration does not exit the mode
	enterConfig(t, pad)
	for _, cmd := range []uint8{0x42, 0x43, 0x44, 0x45, 0x46, 0x47, 0x4c, 0x4d} {
		resp := exchange(t, pad, cmd, 0x00, 0x01)
		test.ExpectEquality(t, len(resp), 8, "config command length", cmd)
		test.ExpectEquality(t, resp[0], uint8(0xf3), "config mode ID byte", cmd)
		test.ExpectEquality(t, resp[1], uint8(0x5a), "status byte", cmd)
	}
	leaveConfig(t, pad)

	// analog mode grows the pad response by four axis bytes
	enableAnalogMode(t, pad)
	resp := exchange(t, pad, 0x42)
	test.ExpectEquality(t, len(resp), 8, "0x42 analog")
	test.ExpectEquality(t, resp[0], uint8(0x73), "analog mode ID byte")
}

func TestUnrecognisedCommand(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	// a protocol violation degrades to the minimal ID/status response and
	// never corrupts the exchange
	resp := exchange(t, pad, 0x99)
	expectResponse(t, resp, 0x41, 0x5a)

	// and the pad is immediately usable again
	resp = exchange(t, pad, 0x42, 0x00, 0x00, 0x00)
	expectResponse(t, resp, 0x41, 0x5a, 0xff, 0xff)
}

func TestResetTransferState(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	// abandon an exchange halfway through
	_, ack := pad.Transfer(0x01)
	test.DemandSuccess(t, ack)
	_, ack = pad.Transfer(0x42)
	test.DemandSuccess(t, ack)
	pad.ResetTransferState()

	// a fresh select-and-command sequence yields the same ID response
	// regardless of command history
	resp := exchange(t, pad, 0x42, 0x00, 0x00, 0x00)
	expectResponse(t, resp, 0x41, 0x5a, 0xff, 0xff)
}

func TestStagedModeCommit(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	// a mode change must not take effect until configuration mode is left
	enterConfig(t, pad)
	exchange(t, pad, 0x44, 0x00, 0x01)
	resp := exchange(t, pad, 0x42)
	test.ExpectEquality(t, resp[0], uint8(0xf3), "ID byte before commit")

	// staged twice in one session. only the last staged value applies
	exchange(t, pad, 0x44, 0x00, 0x00)
	leaveConfig(t, pad)

	resp = exchange(t, pad, 0x42)
	test.ExpectEquality(t, len(resp), 4, "digital response length after commit")
	test.ExpectEquality(t, resp[0], uint8(0x41), "digital ID byte after commit")
}

func TestConfigModeNonZeroParameter(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	// any nonzero parameter enters configuration mode, not just 0x01
	exchange(t, pad, 0x43, 0x00, 0x02)
	resp := exchange(t, pad, 0x42)
	test.ExpectEquality(t, resp[0], uint8(0xf3), "config mode ID byte")

	leaveConfig(t, pad)
	resp = exchange(t, pad, 0x42, 0x00, 0x00, 0x00)
	test.ExpectEquality(t, resp[0], uint8(0x41), "digital ID byte after exit")
}

func TestConfigModeIdempotent(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	enterConfig(t, pad)
	enterConfig(t, pad)
	exchange(t, pad, 0x44, 0x00, 0x01)
	leaveConfig(t, pad)
	leaveConfig(t, pad)

	resp := exchange(t, pad, 0x42)
	test.ExpectEquality(t, resp[0], uint8(0x73), "analog ID byte")
}

func TestGetAnalogMode(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	enterConfig(t, pad)
	resp := exchange(t, pad, 0x45, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
	expectResponse(t, resp, 0xf3, 0x5a, 0x01, 0x02, 0x00, 0x02, 0x01, 0x00)

	exchange(t, pad, 0x44, 0x00, 0x01)
	leaveConfig(t, pad)
	enterConfig(t, pad)
	resp = exchange(t, pad, 0x45, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
	expectResponse(t, resp, 0xf3, 0x5a, 0x01, 0x02, 0x01, 0x02, 0x01, 0x00)
}

func TestLookupCommands(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)
	enterConfig(t, pad)

	resp := exchange(t, pad, 0x46, 0x00, 0x00)
	expectResponse(t, resp, 0xf3, 0x5a, 0x00, 0x00, 0x01, 0x02, 0x00, 0x0a)
	resp = exchange(t, pad, 0x46, 0x00, 0x01)
	expectResponse(t, resp, 0xf3, 0x5a, 0x00, 0x00, 0x01, 0x01, 0x01, 0x14)

	resp = exchange(t, pad, 0x47, 0x00, 0x00)
	expectResponse(t, resp, 0xf3, 0x5a, 0x00, 0x00, 0x02, 0x00, 0x01, 0x00)
	resp = exchange(t, pad, 0x47, 0x00, 0x01)
	expectResponse(t, resp, 0xf3, 0x5a, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)

	resp = exchange(t, pad, 0x4c, 0x00, 0x00)
	expectResponse(t, resp, 0xf3, 0x5a, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00)
	resp = exchange(t, pad, 0x4c, 0x00, 0x01)
	expectResponse(t, resp, 0xf3, 0x5a, 0x00, 0x00, 0x00, 0x07, 0x00, 0x00)
}

func TestRumbleIndirection(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil).(*controllers.Analog)

	// slot 0 drives the large motor, slot 1 the small motor
	enterConfig(t, pad)
	exchange(t, pad, 0x4d, 0x00, 0x00, 0x01, 0xff, 0xff, 0xff, 0xff)
	leaveConfig(t, pad)

	// full intensity on the large channel
	exchange(t, pad, 0x42, 0x00, 0xff, 0x00)
	test.ExpectEquality(t, pad.MotorState(controllers.MotorLarge), uint8(0xff), "large motor")
	test.ExpectEquality(t, pad.MotorState(controllers.MotorSmall), uint8(0x00), "small motor")

	// the small motor is on/off only
	exchange(t, pad, 0x42, 0x00, 0x00, 0x01)
	test.ExpectEquality(t, pad.MotorState(controllers.MotorLarge), uint8(0x00), "large motor off")
	test.ExpectEquality(t, pad.MotorState(controllers.MotorSmall), uint8(0xff), "small motor on")

	// host strengths are normalised
	large, small := pad.HostVibration()
	test.ExpectEquality(t, large, float32(0.0), "large host strength")
	test.ExpectSuccess(t, small > 0.9 && small <= 1.0, "small host strength")
}

func TestRumbleIdentityDefault(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil).(*controllers.Analog)

	// rumble is inert until the pad has seen configuration mode
	exchange(t, pad, 0x42, 0x00, 0xff, 0x00)
	test.ExpectEquality(t, pad.MotorState(controllers.MotorLarge), uint8(0x00), "large motor before config")

	// entering configuration mode enables the dualshock features. without
	// an explicit rumble config the identity mapping applies
	enterConfig(t, pad)
	leaveConfig(t, pad)
	exchange(t, pad, 0x42, 0x00, 0xab, 0x01)
	test.ExpectEquality(t, pad.MotorState(controllers.MotorLarge), uint8(0xab), "large motor identity")
	test.ExpectEquality(t, pad.MotorState(controllers.MotorSmall), uint8(0xff), "small motor identity")
}

func TestRumbleConfigReadback(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	enterConfig(t, pad)
	exchange(t, pad, 0x4d, 0x00, 0x00, 0x01, 0xff, 0xff, 0xff, 0xff)

	// a second 0x4d reads back the previous configuration
	resp := exchange(t, pad, 0x4d, 0x00, 0x00, 0x01, 0xff, 0xff, 0xff, 0xff)
	expectResponse(t, resp, 0xf3, 0x5a, 0x00, 0x01, 0xff, 0xff, 0xff, 0xff)
}

func TestHalfAxisMerge(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil).(*controllers.Analog)
	enableAnalogMode(t, pad)

	axes := func() uint8 {
		packed, ok := pad.AnalogInputBytes()
		test.DemandSuccess(t, ok)
		return uint8(packed >> 16) // LeftX
	}

	pad.SetBindState(controllers.BindLeftStickRight, 1.0)
	test.ExpectEquality(t, axes(), uint8(0xff), "full right")

	// both directions non-zero. the most recent write wins
	pad.SetBindState(controllers.BindLeftStickLeft, 1.0)
	test.ExpectEquality(t, axes(), uint8(0x00), "last write wins")

	// releasing the winner reverts to the other direction
	pad.SetBindState(controllers.BindLeftStickLeft, 0.0)
	test.ExpectEquality(t, axes(), uint8(0xff), "revert to other direction")

	pad.SetBindState(controllers.BindLeftStickRight, 0.0)
	test.ExpectEquality(t, axes(), uint8(0x80), "centred")
}

func TestAnalogToggleButton(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	pad.SetBindState(controllers.ButtonAnalogToggle, 1.0)
	resp := exchange(t, pad, 0x42)
	test.ExpectEquality(t, resp[0], uint8(0x73), "analog after toggle")

	pad.SetBindState(controllers.ButtonAnalogToggle, 0.0)
	pad.SetBindState(controllers.ButtonAnalogToggle, 1.0)
	resp = exchange(t, pad, 0x42, 0x00, 0x00, 0x00)
	test.ExpectEquality(t, resp[0], uint8(0x41), "digital after second toggle")
}

func TestAnalogToggleQueued(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	// a toggle press in the middle of an exchange must not affect the
	// in-progress response
	_, ack := pad.Transfer(0x01)
	test.DemandSuccess(t, ack)
	b, _ := pad.Transfer(0x42)
	test.ExpectEquality(t, b, uint8(0x41), "ID byte unaffected by toggle")
	pad.SetBindState(controllers.ButtonAnalogToggle, 1.0)
	for {
		if _, more := pad.Transfer(0x00); !more {
			break
		}
	}
	pad.ResetTransferState()

	// the queued toggle applies before the next exchange
	resp := exchange(t, pad, 0x42)
	test.ExpectEquality(t, resp[0], uint8(0x73), "queued toggle applied")
}

func TestAnalogLocked(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	// the guest locks the pad to digital mode
	enterConfig(t, pad)
	exchange(t, pad, 0x44, 0x00, 0x00, 0x03)
	leaveConfig(t, pad)

	// toggle button is ignored while locked
	pad.SetBindState(controllers.ButtonAnalogToggle, 1.0)
	resp := exchange(t, pad, 0x42)
	test.ExpectEquality(t, resp[0], uint8(0x41), "locked to digital")

	// unlock and try again
	enterConfig(t, pad)
	exchange(t, pad, 0x44, 0x00, 0x00, 0x02)
	leaveConfig(t, pad)
	pad.SetBindState(controllers.ButtonAnalogToggle, 1.0)
	resp = exchange(t, pad, 0x42)
	test.ExpectEquality(t, resp[0], uint8(0x73), "unlocked toggle")
}

func TestPreconditionViolations(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	// 0x44 outside configuration mode is a silent no-op. nothing is staged
	exchange(t, pad, 0x44, 0x00, 0x01)
	enterConfig(t, pad)
	leaveConfig(t, pad)

	resp := exchange(t, pad, 0x42)
	test.ExpectEquality(t, resp[0], uint8(0x41), "mode unchanged")
}

func TestDPadInDigitalMode(t *testing.T) {
	prefs := preferences.NewPreferences()
	prefs.PortOne.AnalogDPadInDigitalMode = true
	pad := controllers.NewAnalog(plugging.PortOne, prefs.Controller(plugging.PortOne))

	pad.SetBindState(controllers.BindLeftStickLeft, 1.0)
	resp := exchange(t, pad, 0x42, 0x00, 0x00, 0x00)
	expectResponse(t, resp, 0x41, 0x5a, 0x7f, 0xff)

	// the mapping does not apply in analog mode
	enableAnalogMode(t, pad)
	resp = exchange(t, pad, 0x42)
	test.ExpectEquality(t, resp[2], uint8(0xff), "no mapping in analog mode")
}

func TestForceAnalogOnReset(t *testing.T) {
	prefs := preferences.NewPreferences()
	prefs.PortOne.ForceAnalogOnReset = true
	pad := controllers.NewAnalog(plugging.PortOne, prefs.Controller(plugging.PortOne))

	resp := exchange(t, pad, 0x42)
	test.ExpectEquality(t, resp[0], uint8(0x73), "analog from power-on")

	pad.Reset()
	resp = exchange(t, pad, 0x42)
	test.ExpectEquality(t, resp[0], uint8(0x73), "analog after reset")
}

func TestDoStateRoundTrip(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil).(*controllers.Analog)

	enableAnalogMode(t, pad)
	enterConfig(t, pad)
	exchange(t, pad, 0x4d, 0x00, 0x00, 0x01, 0xff, 0xff, 0xff, 0xff)
	leaveConfig(t, pad)
	pad.SetBindState(controllers.ButtonStart, 1.0)
	pad.SetBindState(controllers.BindLeftStickRight, 0.5)
	exchange(t, pad, 0x42, 0x00, 0xea, 0x01, 0x00, 0x00, 0x00, 0x00)

	w := savestate.NewWriting()
	err := pad.DoState(w, false)
	test.DemandSuccess(t, err)

	restored := controllers.NewAnalog(plugging.PortOne, nil).(*controllers.Analog)
	r := savestate.NewReading(w.Data())
	err = restored.DoState(r, false)
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, restored.ButtonStateBits(), pad.ButtonStateBits())

	a, ok := pad.AnalogInputBytes()
	test.DemandSuccess(t, ok)
	b, ok := restored.AnalogInputBytes()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, b, a, "axis state")

	test.ExpectEquality(t, restored.MotorState(controllers.MotorLarge), pad.MotorState(controllers.MotorLarge))
	test.ExpectEquality(t, restored.MotorState(controllers.MotorSmall), pad.MotorState(controllers.MotorSmall))

	// protocol behaviour is indistinguishable after restoration
	expResp := exchange(t, pad, 0x42, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
	resp := exchange(t, restored, 0x42, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
	expectResponse(t, resp, expResp...)
}

func TestDoStateIgnoreInput(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil).(*controllers.Analog)
	enableAnalogMode(t, pad)
	pad.SetBindState(controllers.ButtonStart, 1.0)

	w := savestate.NewWriting()
	test.DemandSuccess(t, pad.DoState(w, false))

	// the restoring pad has different input held. ignoreInput keeps the
	// held input but adopts the protocol/mode state
	restored := controllers.NewAnalog(plugging.PortOne, nil).(*controllers.Analog)
	restored.SetBindState(controllers.ButtonCross, 1.0)

	r := savestate.NewReading(w.Data())
	test.DemandSuccess(t, restored.DoState(r, true))

	test.ExpectEquality(t, restored.ButtonStateBits()&(1<<controllers.ButtonCross), uint32(0), "held button kept")
	test.ExpectInequality(t, restored.ButtonStateBits()&(1<<controllers.ButtonStart), uint32(0), "stream button not restored")

	resp := exchange(t, restored, 0x42)
	test.ExpectEquality(t, resp[0], uint8(0x73), "mode state adopted")
}

func TestDoStateVersionMismatch(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	w := savestate.NewWriting()
	test.DemandSuccess(t, pad.DoState(w, false))

	data := w.Data()
	data[0] = 0x7f

	restored := controllers.NewAnalog(plugging.PortOne, nil)
	err := restored.DoState(savestate.NewReading(data), false)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, ports.StateVersionMismatch), "curated error pattern")
}

func TestSnapshotIndependence(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)
	enableAnalogMode(t, pad)

	snapshot := pad.Snapshot()

	// changing the original does not affect the snapshot
	pad.SetBindState(controllers.ButtonAnalogToggle, 1.0)
	resp := exchange(t, pad, 0x42, 0x00, 0x00, 0x00)
	test.ExpectEquality(t, resp[0], uint8(0x41), "original toggled to digital")

	resp = exchange(t, snapshot, 0x42)
	test.ExpectEquality(t, resp[0], uint8(0x73), "snapshot still analog")
}

func TestOutOfRangeBindings(t *testing.T) {
	pad := controllers.NewAnalog(plugging.PortOne, nil)

	// out-of-range binding indices are ignored
	pad.SetBindState(1000, 1.0)
	resp := exchange(t, pad, 0x42, 0x00, 0x00, 0x00)
	expectResponse(t, resp, 0x41, 0x5a, 0xff, 0xff)
}
