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

// Package plugging conceptualises the act of plugging a peripheral into one
// of the controller ports of the console. It exists as a seperate package to
// avoid import cycles between the ports package and anything (a GUI for
// example) that needs to monitor which peripherals are plugged in where.
package plugging

// PortID differentiates the two controller ports on the front of the
// console into which peripherals can be plugged.
type PortID string

// List of defined PortIDs.
const (
	PortUnplugged PortID = "Unplugged"
	PortOne       PortID = "PortOne"
	PortTwo       PortID = "PortTwo"
)

func (id PortID) String() string {
	return string(id)
}

// PeripheralID identifies the class of peripheral attached to a port.
type PeripheralID string

// List of defined PeripheralIDs.
const (
	PeriphNone    PeripheralID = "None"
	PeriphDigital PeripheralID = "Digital"
	PeriphAnalog  PeripheralID = "AnalogController"
)

func (id PeripheralID) String() string {
	return string(id)
}

// PlugMonitor implementations are notified of newly plugged peripherals.
type PlugMonitor interface {
	Plugged(port PortID, peripheral PeripheralID)
}

// Monitorable implementations are capable of having a PlugMonitor attached.
//
// It is common for operations like snapshot/plumb (used extensively in the
// rewind system) to create new peripheral instances. Attaching the monitor
// through the Monitorable interface means the new instance keeps reporting
// to the existing monitor.
type Monitorable interface {
	AttachPlugMonitor(m PlugMonitor)
}
