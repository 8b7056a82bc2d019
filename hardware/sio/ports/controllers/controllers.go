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

// Package controllers contains the controller implementations that can be
// plugged into the console's ports, along with the static descriptor catalog
// consumed by configuration front-ends.
//
// The centre piece of the package is the Analog type, a byte-for-byte model
// of the analog pad's command/response protocol, including the nested
// configuration sub-protocol used by guest programs to switch pad modes and
// to map the rumble channels.
package controllers

import (
	"github.com/jetsetilly/gopherstation/hardware/sio/ports/plugging"
)

// BindKind describes how the value given to SetBindState() is to be
// interpreted for a binding.
type BindKind int

// List of valid BindKind values.
const (
	// a button value is 0.0 or 1.0
	BindButton BindKind = iota

	// a half-axis value is a push magnitude in the range [0.0, 1.0]
	BindHalfAxis

	// a full-axis value is a deflection in the range [-1.0, 1.0]
	BindAxis
)

// VibrationCapability describes the motor complement of a controller
// variant.
type VibrationCapability int

// List of valid VibrationCapability values.
const (
	VibrationNone VibrationCapability = iota
	VibrationSingle
	VibrationLargeSmall
)

// BindingInfo describes a single bindable input of a controller variant. The
// Index field is the value to use with SetBindState(). For button bindings
// it is also the bit index into the active-low button state.
type BindingInfo struct {
	Name  string
	Kind  BindKind
	Index uint32
}

// ControllerInfo is the static descriptor for a controller variant. One
// instance per variant, compiled in, read-only.
type ControllerInfo struct {
	ID        plugging.PeripheralID
	Name      string
	Bindings  []BindingInfo
	Vibration VibrationCapability
}

// Button bit indices into the active-low button state. These double as the
// binding indices for the button bindings of both controller variants.
const (
	ButtonSelect   = 0
	ButtonL3       = 1
	ButtonR3       = 2
	ButtonStart    = 3
	ButtonUp       = 4
	ButtonRight    = 5
	ButtonDown     = 6
	ButtonLeft     = 7
	ButtonL2       = 8
	ButtonR2       = 9
	ButtonL1       = 10
	ButtonR1       = 11
	ButtonTriangle = 12
	ButtonCircle   = 13
	ButtonCross    = 14
	ButtonSquare   = 15

	// the analog pad's mode toggle button. not part of the button state
	// reported to the guest
	ButtonAnalogToggle = 16
)

// Binding indices for the analog pad's stick inputs.
const (
	// left stick half axes
	BindLeftStickLeft  = 17
	BindLeftStickRight = 18
	BindLeftStickDown  = 19
	BindLeftStickUp    = 20

	// right stick full axes
	BindRightStickX = 21
	BindRightStickY = 22
)

// Axis indices into the axis state of the analog pad.
const (
	AxisLeftX  = 0
	AxisLeftY  = 1
	AxisRightX = 2
	AxisRightY = 3
)

// Motor indices for the analog pad.
const (
	MotorLarge = 0
	MotorSmall = 1
)

// digitalButtonBindings is the button complement of the original controller.
// L3 and R3 are stick buttons and not present on the variant.
var digitalButtonBindings = []BindingInfo{
	{Name: "Up", Kind: BindButton, Index: ButtonUp},
	{Name: "Down", Kind: BindButton, Index: ButtonDown},
	{Name: "Left", Kind: BindButton, Index: ButtonLeft},
	{Name: "Right", Kind: BindButton, Index: ButtonRight},
	{Name: "Triangle", Kind: BindButton, Index: ButtonTriangle},
	{Name: "Circle", Kind: BindButton, Index: ButtonCircle},
	{Name: "Cross", Kind: BindButton, Index: ButtonCross},
	{Name: "Square", Kind: BindButton, Index: ButtonSquare},
	{Name: "Select", Kind: BindButton, Index: ButtonSelect},
	{Name: "Start", Kind: BindButton, Index: ButtonStart},
	{Name: "L1", Kind: BindButton, Index: ButtonL1},
	{Name: "L2", Kind: BindButton, Index: ButtonL2},
	{Name: "R1", Kind: BindButton, Index: ButtonR1},
	{Name: "R2", Kind: BindButton, Index: ButtonR2},
}

// DigitalInfo is the static descriptor for the Digital type.
var DigitalInfo = ControllerInfo{
	ID:        plugging.PeriphDigital,
	Name:      "Digital Controller",
	Bindings:  digitalButtonBindings,
	Vibration: VibrationNone,
}

// AnalogInfo is the static descriptor for the Analog type.
var AnalogInfo = ControllerInfo{
	ID:   plugging.PeriphAnalog,
	Name: "Analog Controller (DualShock)",
	Bindings: append(append([]BindingInfo{}, digitalButtonBindings...), []BindingInfo{
		{Name: "L3", Kind: BindButton, Index: ButtonL3},
		{Name: "R3", Kind: BindButton, Index: ButtonR3},
		{Name: "Analog Toggle", Kind: BindButton, Index: ButtonAnalogToggle},
		{Name: "Left Stick Left", Kind: BindHalfAxis, Index: BindLeftStickLeft},
		{Name: "Left Stick Right", Kind: BindHalfAxis, Index: BindLeftStickRight},
		{Name: "Left Stick Down", Kind: BindHalfAxis, Index: BindLeftStickDown},
		{Name: "Left Stick Up", Kind: BindHalfAxis, Index: BindLeftStickUp},
		{Name: "Right Stick X", Kind: BindAxis, Index: BindRightStickX},
		{Name: "Right Stick Y", Kind: BindAxis, Index: BindRightStickY},
	}...),
	Vibration: VibrationLargeSmall,
}

// Catalog is the list of controller variants implemented by the package,
// in the order they should be presented by a configuration front-end.
var Catalog = []*ControllerInfo{
	&DigitalInfo,
	&AnalogInfo,
}

// Info returns the descriptor for the specified peripheral ID.
func Info(id plugging.PeripheralID) (*ControllerInfo, bool) {
	for _, inf := range Catalog {
		if inf.ID == id {
			return inf, true
		}
	}
	return nil, false
}
