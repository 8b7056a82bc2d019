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
	"math"

	"github.com/jetsetilly/gopherstation/curated"
	"github.com/jetsetilly/gopherstation/hardware/preferences"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports/plugging"
	"github.com/jetsetilly/gopherstation/logger"
	"github.com/jetsetilly/gopherstation/savestate"
)

// command records how incoming bytes to the analog pad will be interpreted.
type command uint8

// List of valid command values. the values from cmdReadPad onwards each
// correspond to one command byte of the pad protocol.
const (
	cmdIdle command = iota
	cmdReady
	cmdReadPad           // 0x42
	cmdConfigModeSetMode // 0x43
	cmdSetAnalogMode     // 0x44
	cmdGetAnalogMode     // 0x45
	cmdCommand46         // 0x46
	cmdCommand47         // 0x47
	cmdCommand4C         // 0x4C
	cmdGetSetRumble      // 0x4D

	// an unrecognised command byte. the pad still completes a minimal
	// two-byte ID/status exchange so the bus is never left in a bad state
	cmdInvalid
)

// transmit and receive buffers, not including the initial hi-z response to
// the address byte.
const maxResponseLength = 8

// indices into the half-axis state of the left stick.
const (
	halfLeft = iota
	halfRight
	halfDown
	halfUp
)

// serialized layout version for the Analog type.
const analogStateVersion = 1

// Analog represents the analog controller, better known as the DualShock.
// The guest program drives it through a small command set, two of which
// (enter/leave configuration mode) bracket a sub-protocol for switching
// between digital and analog reporting and for mapping the rumble channels
// onto the two physical motors.
type Analog struct {
	port plugging.PortID
	prf  *preferences.Controller

	// transient cursor into the in-progress exchange
	command     command
	commandStep int

	rxBuffer       [maxResponseLength]uint8
	txBuffer       [maxResponseLength]uint8
	responseLength int

	// protocol mode flags
	analogMode        bool
	analogLocked      bool
	dualshockEnabled  bool
	configurationMode bool

	// staged mode change awaiting configuration-mode exit. a mode change
	// must not alter the response length mid-poll-cycle so command 0x44
	// stages the new mode here and it is committed when the guest leaves
	// configuration mode
	analogStaged     bool
	analogStagedMode bool

	// the analog toggle button was pressed while an exchange was in
	// progress. processed when the pad is next idle
	toggleQueued bool

	statusByte uint8

	// number of reserved-for-compatibility halfwords appended to the
	// digital mode pad response
	digitalModeExtraHalfwords uint8

	// buttons are active low
	buttonState uint16

	// axis state in the order LeftX, LeftY, RightX, RightY. centre is 0x80
	axisState [4]uint8

	// both directions of the left stick, merged into axisState on write
	halfAxisState [4]uint8

	// effective rumble intensities delivered to the host
	motorState [2]uint8

	// the rumble channel indirection assigned by command 0x4D. an index of
	// -1 means unconfigured. when both are unconfigured the identity mapping
	// applies (slot 0 drives the large motor, slot 1 the small motor)
	rumbleConfig    [6]uint8
	largeMotorIndex int32
	smallMotorIndex int32

	// fields that are no longer used, but kept and serialized for
	// compatibility with older save states
	legacyCommandParam   uint8
	legacyRumbleUnlocked bool
}

// NewAnalog is the preferred method of initialisation for the Analog type.
// Satisfies the ports.NewPeripheral interface and can be used as an argument
// to the Plug() function of the ports.Ports type.
func NewAnalog(port plugging.PortID, prf *preferences.Controller) ports.Peripheral {
	if prf == nil {
		prf = preferences.NewPreferences().Controller(port)
	}
	pad := &Analog{
		port: port,
		prf:  prf,
	}
	pad.Reset()
	return pad
}

// Snapshot implements the ports.Peripheral interface.
func (pad *Analog) Snapshot() ports.Peripheral {
	n := *pad
	return &n
}

// Plumb implements the ports.Peripheral interface.
func (pad *Analog) Plumb(prf *preferences.Controller) {
	pad.prf = prf
}

// String implements the ports.Peripheral interface.
func (pad *Analog) String() string {
	mode := "digital"
	if pad.analogMode {
		mode = "analog"
	}
	if pad.configurationMode {
		mode += " (config)"
	}
	return fmt.Sprintf("analog: buttons=%04x mode=%s", pad.buttonState, mode)
}

// PortID implements the ports.Peripheral interface.
func (pad *Analog) PortID() plugging.PortID {
	return pad.port
}

// ID implements the ports.Peripheral interface.
func (pad *Analog) ID() plugging.PeripheralID {
	return plugging.PeriphAnalog
}

// Unplug implements the ports.Peripheral interface.
func (pad *Analog) Unplug() {
	logger.Logf("analog pad", "unplugged from %s", pad.port)
}

// Reset implements the ports.Peripheral interface. Externally loaded
// configuration is preserved.
func (pad *Analog) Reset() {
	pad.ResetTransferState()

	pad.analogMode = false
	pad.analogLocked = false
	pad.dualshockEnabled = false
	pad.configurationMode = false
	pad.analogStaged = false
	pad.analogStagedMode = false
	pad.toggleQueued = false
	pad.statusByte = 0x5a
	pad.digitalModeExtraHalfwords = 0

	pad.buttonState = 0xffff
	pad.axisState = [4]uint8{0x80, 0x80, 0x80, 0x80}
	pad.halfAxisState = [4]uint8{}
	pad.resetRumbleConfig()

	pad.legacyCommandParam = 0
	pad.legacyRumbleUnlocked = false

	if pad.prf.ForceAnalogOnReset {
		pad.setAnalogMode(true)
	}
}

// ResetTransferState implements the ports.Peripheral interface. Button, axis
// and mode state are untouched.
func (pad *Analog) ResetTransferState() {
	pad.command = cmdIdle
	pad.commandStep = 0
	pad.rxBuffer = [maxResponseLength]uint8{}
	pad.txBuffer = [maxResponseLength]uint8{}
	pad.responseLength = 0
}

func (pad *Analog) resetRumbleConfig() {
	pad.rumbleConfig = [6]uint8{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	pad.largeMotorIndex = -1
	pad.smallMotorIndex = -1
	pad.setMotorState(MotorLarge, 0)
	pad.setMotorState(MotorSmall, 0)
}

// setAnalogMode changes the reporting mode immediately. Callers outside of a
// transfer must make sure a mode change cannot happen mid-exchange.
func (pad *Analog) setAnalogMode(enabled bool) {
	if pad.analogMode == enabled {
		return
	}
	pad.analogMode = enabled
	if enabled {
		logger.Logf("analog pad", "%s: switched to analog mode", pad.port)
	} else {
		logger.Logf("analog pad", "%s: switched to digital mode", pad.port)
	}
}

// processAnalogModeToggle handles a press of the pad's analog toggle button.
func (pad *Analog) processAnalogModeToggle() {
	if pad.analogLocked {
		logger.Logf("analog pad", "%s: toggle ignored. mode is locked by the guest", pad.port)
		return
	}
	pad.setAnalogMode(!pad.analogMode)
	if pad.dualshockEnabled {
		pad.statusByte = 0x5a
	}
}

func (pad *Analog) setButtonState(index uint32, pressed bool) {
	if pressed {
		pad.buttonState &= ^(uint16(1) << index)
	} else {
		pad.buttonState |= uint16(1) << index
	}
}

// pairs of half-axis indices and the axis/direction they merge into.
func halfAxisTarget(index uint32) (axis int, positive bool, other uint32) {
	switch index {
	case halfLeft:
		return AxisLeftX, false, halfRight
	case halfRight:
		return AxisLeftX, true, halfLeft
	case halfDown:
		return AxisLeftY, true, halfUp
	default:
		return AxisLeftY, false, halfDown
	}
}

// mergedAxisValue converts a half-axis magnitude into a full axis value
// around the 0x80 centre point.
func mergedAxisValue(mag uint8, positive bool) uint8 {
	if positive {
		return 0x80 + mag/2
	}
	return 0x80 - uint8((uint16(mag)+1)/2)
}

// setHalfAxisState merges a half-axis magnitude into the axis state. The
// direction being written wins when both directions of the pair are non-zero
// (last-write-wins).
func (pad *Analog) setHalfAxisState(index uint32, value float32) {
	mag := quantiseMagnitude(value * pad.prf.AxisScale)
	if pad.halfAxisState[index] == mag {
		return
	}
	pad.halfAxisState[index] = mag

	axis, positive, other := halfAxisTarget(index)
	switch {
	case mag != 0:
		pad.axisState[axis] = mergedAxisValue(mag, positive)
	case pad.halfAxisState[other] != 0:
		pad.axisState[axis] = mergedAxisValue(pad.halfAxisState[other], !positive)
	default:
		pad.axisState[axis] = 0x80
	}
}

// quantiseMagnitude converts a normalised half-axis value to a byte
// magnitude.
func quantiseMagnitude(v float32) uint8 {
	f := v * 255.0
	if f <= 0.0 {
		return 0
	}
	if f >= 255.0 {
		return 255
	}
	return uint8(f + 0.5)
}

// quantiseAxis converts a normalised full-axis value to a byte value around
// the 0x80 centre point.
func quantiseAxis(v float32) uint8 {
	f := (v + 1.0) * 0.5 * 255.0
	if f <= 0.0 {
		return 0
	}
	if f >= 255.0 {
		return 255
	}
	return uint8(f + 0.5)
}

// SetBindState implements the ports.Peripheral interface.
func (pad *Analog) SetBindState(index uint32, value float32) {
	switch {
	case index == ButtonAnalogToggle:
		if value >= 0.5 {
			if pad.command == cmdIdle {
				pad.processAnalogModeToggle()
			} else {
				pad.toggleQueued = true
			}
		}

	case index <= ButtonSquare:
		pad.setButtonState(index, value >= 0.5)

	case index >= BindLeftStickLeft && index <= BindLeftStickUp:
		pad.setHalfAxisState(index-BindLeftStickLeft, value)

	case index == BindRightStickX:
		pad.axisState[AxisRightX] = quantiseAxis(value * pad.prf.AxisScale)

	case index == BindRightStickY:
		pad.axisState[AxisRightY] = quantiseAxis(value * pad.prf.AxisScale)

	default:
		// out-of-range binding indices are ignored
	}
}

// ButtonStateBits implements the ports.Peripheral interface.
func (pad *Analog) ButtonStateBits() uint32 {
	return uint32(pad.buttonState)
}

// AnalogInputBytes implements the ports.Peripheral interface.
func (pad *Analog) AnalogInputBytes() (uint32, bool) {
	return uint32(pad.axisState[AxisLeftY])<<24 | uint32(pad.axisState[AxisLeftX])<<16 |
		uint32(pad.axisState[AxisRightY])<<8 | uint32(pad.axisState[AxisRightX]), true
}

// MotorState returns the effective intensity of the specified motor as most
// recently commanded by the guest.
func (pad *Analog) MotorState(motor int) uint8 {
	return pad.motorState[motor]
}

// HostVibration returns the strengths to be delivered to the host vibration
// hardware, normalised to the range [0.0, 1.0] and with the rumble bias
// applied.
func (pad *Analog) HostVibration() (large float32, small float32) {
	return pad.hostStrength(pad.motorState[MotorLarge]), pad.hostStrength(pad.motorState[MotorSmall])
}

func (pad *Analog) hostStrength(v uint8) float32 {
	if v == 0 {
		return 0
	}

	// cubic response curve fitted to the measured response of the real
	// motors, shifted by the configured bias
	x := float64(v) + float64(pad.prf.RumbleBias)
	if x > 255 {
		x = 255
	}
	strength := 0.006474549734772402*math.Pow(x, 3.0) - 1.258165252213538*math.Pow(x, 2.0) + 156.82454281087692*x

	return float32(strength / 65535.0)
}

func (pad *Analog) setMotorState(motor int, value uint8) {
	if pad.motorState[motor] != value {
		pad.motorState[motor] = value
	}
}

// effectiveMotorIndices returns the rumble channel indirection, defaulting
// to the identity mapping when unconfigured.
func (pad *Analog) effectiveMotorIndices() (large int32, small int32) {
	large = pad.largeMotorIndex
	small = pad.smallMotorIndex
	if large < 0 && small < 0 {
		large = 0
		small = 1
	}
	return large, small
}

// motorStep applies one rumble byte from the guest to whichever motor the
// slot is configured to drive. The small motor is a simple on/off device
// while the large motor takes the full intensity byte.
func (pad *Analog) motorStep(slot int32, data uint8) {
	if !pad.dualshockEnabled {
		return
	}

	large, small := pad.effectiveMotorIndices()
	switch slot {
	case small:
		if data&0x01 != 0 {
			pad.setMotorState(MotorSmall, 255)
		} else {
			pad.setMotorState(MotorSmall, 0)
		}
	case large:
		pad.setMotorState(MotorLarge, data)
	}
}

// responseNumHalfwords returns the number of response halfwords, excluding
// the initial ID/status halfword.
func (pad *Analog) responseNumHalfwords() uint8 {
	if pad.configurationMode || pad.analogMode {
		return 3
	}
	return 1 + pad.digitalModeExtraHalfwords
}

// modeID returns the high nibble of the ID byte.
func (pad *Analog) modeID() uint8 {
	if pad.configurationMode {
		return 0xf
	}
	if pad.analogMode {
		return 0x7
	}
	return 0x4
}

// idByte returns the low ID byte sent in response to a command byte. 0xF3
// in configuration mode, 0x73 in analog mode, 0x41 in digital mode.
func (pad *Analog) idByte() uint8 {
	return pad.modeID()<<4 | pad.responseNumHalfwords()
}

// extraButtonMaskLSB maps left-stick deflection onto the d-pad bits of the
// low button byte, when the host configuration asks for it and the pad is in
// digital mode.
func (pad *Analog) extraButtonMaskLSB() uint8 {
	if !pad.prf.AnalogDPadInDigitalMode || pad.analogMode || pad.configurationMode {
		return 0xff
	}

	// half of full deflection in either direction
	const negThreshold = uint8(128 - 127/2)
	const posThreshold = uint8(128 + 127/2)

	var mask uint8
	if pad.axisState[AxisLeftX] <= negThreshold {
		mask |= 1 << ButtonLeft
	}
	if pad.axisState[AxisLeftX] >= posThreshold {
		mask |= 1 << ButtonRight
	}
	if pad.axisState[AxisLeftY] <= negThreshold {
		mask |= 1 << ButtonUp
	}
	if pad.axisState[AxisLeftY] >= posThreshold {
		mask |= 1 << ButtonDown
	}

	return ^mask
}

// decodeCommand interprets a command byte received in the ready state. It
// decides the command class, the response length and the fixed part of the
// response.
func (pad *Analog) decodeCommand(data uint8) {
	pad.responseLength = int(pad.responseNumHalfwords()+1) * 2
	pad.txBuffer = [maxResponseLength]uint8{pad.idByte(), pad.statusByte}

	switch {
	case data == 0x42:
		pad.command = cmdReadPad

	case data == 0x43:
		pad.command = cmdConfigModeSetMode

	case pad.configurationMode && data == 0x44:
		pad.command = cmdSetAnalogMode
		pad.resetRumbleConfig()

	case pad.configurationMode && data == 0x45:
		pad.command = cmdGetAnalogMode
		pad.txBuffer[2] = 0x01
		pad.txBuffer[3] = 0x02
		if pad.analogMode {
			pad.txBuffer[4] = 0x01
		}
		pad.txBuffer[5] = 0x02
		pad.txBuffer[6] = 0x01
		pad.txBuffer[7] = 0x00

	case pad.configurationMode && data == 0x46:
		pad.command = cmdCommand46

	case pad.configurationMode && data == 0x47:
		pad.command = cmdCommand47
		pad.txBuffer[4] = 0x02
		pad.txBuffer[6] = 0x01

	case pad.configurationMode && data == 0x4c:
		pad.command = cmdCommand4C

	case pad.configurationMode && data == 0x4d:
		pad.command = cmdGetSetRumble
		pad.largeMotorIndex = -1
		pad.smallMotorIndex = -1

	default:
		// protocol violation. degrade to the minimal ID/status response
		pad.command = cmdInvalid
		pad.responseLength = 2
		if pad.configurationMode {
			logger.Logf("analog pad", "%s: unrecognised config command %#02x", pad.port, data)
		} else {
			logger.Logf("analog pad", "%s: unrecognised command %#02x", pad.port, data)
		}
	}
}

// padResponseStep fills one byte of the button/axis response shared by
// commands 0x42 and 0x43 (the latter only when the pad is not already in
// configuration mode). Command 0x42 also interprets the incoming bytes as
// rumble data.
func (pad *Analog) padResponseStep(data uint8) {
	if pad.command == cmdConfigModeSetMode && pad.configurationMode {
		return
	}

	rumble := pad.command == cmdReadPad
	slot := int32(pad.commandStep - 2)

	switch pad.commandStep {
	case 2:
		pad.txBuffer[2] = uint8(pad.buttonState&0xff) & pad.extraButtonMaskLSB()
		if rumble {
			pad.motorStep(slot, data)
		}

	case 3:
		pad.txBuffer[3] = uint8(pad.buttonState >> 8)
		if rumble {
			if pad.dualshockEnabled {
				pad.motorStep(slot, data)
			} else {
				// pre-configuration rumble. some guests drive the small
				// motor with this fixed parameter pattern
				legacyRumbleOn := (pad.rxBuffer[2]&0xc0) == 0x40 && (data&0x01) != 0
				if legacyRumbleOn {
					pad.setMotorState(MotorSmall, 255)
				} else {
					pad.setMotorState(MotorSmall, 0)
				}
			}
		}

	case 4:
		pad.txBuffer[4] = pad.axisState[AxisRightX]
		if rumble {
			pad.motorStep(slot, data)
		}

	case 5:
		pad.txBuffer[5] = pad.axisState[AxisRightY]
		if rumble {
			pad.motorStep(slot, data)
		}

	case 6:
		pad.txBuffer[6] = pad.axisState[AxisLeftX]
		if rumble {
			pad.motorStep(slot, data)
		}

	case 7:
		pad.txBuffer[7] = pad.axisState[AxisLeftY]
		if rumble {
			pad.motorStep(slot, data)
		}
	}
}

// commandStepInput applies the incoming byte of the current step to the
// current command.
func (pad *Analog) commandStepInput(data uint8) {
	switch pad.command {
	case cmdReadPad, cmdConfigModeSetMode:
		pad.padResponseStep(data)

	case cmdSetAnalogMode:
		switch pad.commandStep {
		case 2:
			if data == 0x00 || data == 0x01 {
				pad.analogStaged = true
				pad.analogStagedMode = data == 0x01
				if pad.analogStagedMode {
					logger.Logf("analog pad", "%s: staged analog mode", pad.port)
				} else {
					logger.Logf("analog pad", "%s: staged digital mode", pad.port)
				}
			}
		case 3:
			if data == 0x02 || data == 0x03 {
				pad.analogLocked = data == 0x03
			}
		}

	case cmdGetAnalogMode:
		// response is fixed at decode time

	case cmdCommand46:
		if pad.commandStep == 2 {
			switch data {
			case 0x00:
				pad.txBuffer[4] = 0x01
				pad.txBuffer[5] = 0x02
				pad.txBuffer[6] = 0x00
				pad.txBuffer[7] = 0x0a
			case 0x01:
				pad.txBuffer[4] = 0x01
				pad.txBuffer[5] = 0x01
				pad.txBuffer[6] = 0x01
				pad.txBuffer[7] = 0x14
			}
		}

	case cmdCommand47:
		if pad.commandStep == 2 && data != 0x00 {
			pad.txBuffer[4] = 0x00
			pad.txBuffer[5] = 0x00
			pad.txBuffer[6] = 0x00
			pad.txBuffer[7] = 0x00
		}

	case cmdCommand4C:
		if pad.commandStep == 2 {
			switch data {
			case 0x00:
				pad.txBuffer[5] = 0x04
			case 0x01:
				pad.txBuffer[5] = 0x07
			}
		}

	case cmdGetSetRumble:
		slot := pad.commandStep - 2
		if slot >= 0 && slot < len(pad.rumbleConfig) {
			pad.txBuffer[pad.commandStep] = pad.rumbleConfig[slot]
			pad.rumbleConfig[slot] = data

			// sentinal values assign which physical motor the slot drives
			if data == 0x00 {
				pad.largeMotorIndex = int32(slot)
			} else if data == 0x01 {
				pad.smallMotorIndex = int32(slot)
			}
		}
	}
}

// endCommand completes the current command after the final response byte has
// been sent.
func (pad *Analog) endCommand() {
	switch pad.command {
	case cmdConfigModeSetMode:
		// any nonzero parameter enters configuration mode. zero exits
		enter := pad.rxBuffer[2] != 0x00
		if enter != pad.configurationMode {
			if enter {
				logger.Logf("analog pad", "%s: entered configuration mode", pad.port)
			} else {
				logger.Logf("analog pad", "%s: left configuration mode", pad.port)
			}
		}
		pad.configurationMode = enter

		if pad.configurationMode {
			// configuration mode is only reachable on a DualShock so the
			// first entry reveals the pad's full capabilities
			pad.dualshockEnabled = true
		} else if pad.analogStaged {
			// two-phase apply. the staged mode from command 0x44 is
			// committed now that the response length can safely change
			pad.setAnalogMode(pad.analogStagedMode)
			pad.analogStaged = false
		}

	case cmdGetSetRumble:
		if pad.largeMotorIndex < 0 {
			pad.setMotorState(MotorLarge, 0)
		}
		if pad.smallMotorIndex < 0 {
			pad.setMotorState(MotorSmall, 0)
		}
	}

	pad.command = cmdIdle
	pad.commandStep = 0
}

// Transfer implements the ports.Peripheral interface.
func (pad *Analog) Transfer(data uint8) (uint8, bool) {
	if pad.command == cmdIdle {
		if pad.toggleQueued {
			pad.processAnalogModeToggle()
			pad.toggleQueued = false
		}

		if data == 0x01 {
			pad.command = cmdReady
			pad.commandStep = 0
			return 0xff, true
		}

		// not an address byte for this peripheral. stay hi-z
		return 0xff, false
	}

	if pad.commandStep < maxResponseLength {
		pad.rxBuffer[pad.commandStep] = data
	}

	if pad.command == cmdReady {
		pad.decodeCommand(data)
	} else {
		pad.commandStepInput(data)
	}

	var out uint8 = 0xff
	if pad.commandStep < pad.responseLength {
		out = pad.txBuffer[pad.commandStep]
	}

	pad.commandStep++
	ack := pad.commandStep < pad.responseLength
	if !ack {
		pad.endCommand()
	}

	return out, ack
}

// DoState implements the ports.Peripheral interface. The field order below
// is the serialized layout and must never change. Fields that fall out of
// use are kept in place, written as zero and ignored on read.
func (pad *Analog) DoState(st *savestate.State, ignoreInput bool) error {
	version := uint8(analogStateVersion)
	st.Do8(&version)
	if st.IsReading() && version != analogStateVersion {
		return curated.Errorf(ports.StateVersionMismatch, "analog pad")
	}

	// live input state. not restored when the caller asks for the currently
	// held physical input to be kept
	buttonState := pad.buttonState
	axisState := pad.axisState
	halfAxisState := pad.halfAxisState
	st.Do16(&buttonState)
	st.DoBytes(axisState[:])
	st.DoBytes(halfAxisState[:])
	if !(st.IsReading() && ignoreInput) {
		pad.buttonState = buttonState
		pad.axisState = axisState
		pad.halfAxisState = halfAxisState
	}

	st.DoBool(&pad.analogMode)
	st.DoBool(&pad.analogLocked)
	st.DoBool(&pad.dualshockEnabled)
	st.DoBool(&pad.configurationMode)
	st.DoBool(&pad.analogStaged)
	st.DoBool(&pad.analogStagedMode)
	st.DoBool(&pad.toggleQueued)
	st.Do8(&pad.statusByte)
	st.Do8(&pad.digitalModeExtraHalfwords)

	st.DoBytes(pad.rumbleConfig[:])
	st.DoInt32(&pad.largeMotorIndex)
	st.DoInt32(&pad.smallMotorIndex)
	st.DoBytes(pad.motorState[:])

	cmd := uint8(pad.command)
	step := uint8(pad.commandStep)
	respLen := uint8(pad.responseLength)
	st.Do8(&cmd)
	st.Do8(&step)
	st.DoBytes(pad.rxBuffer[:])
	st.DoBytes(pad.txBuffer[:])
	st.Do8(&respLen)
	if st.IsReading() {
		pad.command = command(cmd)
		pad.commandStep = int(step)
		pad.responseLength = int(respLen)
	}

	// legacy fields. kept in the layout for compatibility with older save
	// states. never recomputed, never interpreted
	st.Do8(&pad.legacyCommandParam)
	st.DoBool(&pad.legacyRumbleUnlocked)

	return st.Error()
}
