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

// Package ports represents the controller ports of the console. It is the
// meeting point of three different parts of the system: the serial bus
// emulation, which exchanges bytes with whatever peripheral is currently
// selected; the host input layer, which pushes normalised input values onto
// the input queue; and the peripherals themselves.
//
// The serial bus emulation selects a port with the Select() function before
// clocking bytes through the Transfer() function. Deselect() ends the
// exchange. The scheduling of those calls, and all questions of bus timing,
// are firmly the business of the bus emulation and not of this package.
package ports

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/gopherstation/curated"
	"github.com/jetsetilly/gopherstation/hardware/preferences"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports/plugging"
	"github.com/jetsetilly/gopherstation/logger"
	"github.com/jetsetilly/gopherstation/savestate"
)

// Error pattern for DoState() implementations, here and in the peripheral
// packages.
const StateVersionMismatch = "state version mismatch: %s"

// serialized layout version for the Ports type itself. individual peripherals
// version their own layouts.
const stateVersion = 1

// Ports represents the two controller ports of the console.
type Ports struct {
	prefs *preferences.Preferences

	PortOne Peripheral
	PortTwo Peripheral

	// the port currently selected by the serial bus. only one port can be
	// selected at a time
	selected plugging.PortID

	monitor plugging.PlugMonitor

	// input events pushed from the host input layer. drained by
	// HandleInputQueue() once per emulation tick, before any Transfer()
	// calls for that tick, so that every poll cycle sees a consistent view
	// of the input state
	pushed chan InputEvent
}

// NewPorts is the preferred method of initialisation for the Ports type.
// Both ports are unplugged.
func NewPorts(prefs *preferences.Preferences) *Ports {
	if prefs == nil {
		prefs = preferences.NewPreferences()
	}
	return &Ports{
		prefs:    prefs,
		selected: plugging.PortUnplugged,
		pushed:   make(chan InputEvent, 64),
	}
}

// Snapshot returns a copy of the Ports sub-system in its current state.
func (p *Ports) Snapshot() *Ports {
	n := *p
	if p.PortOne != nil {
		n.PortOne = p.PortOne.Snapshot()
	}
	if p.PortTwo != nil {
		n.PortTwo = p.PortTwo.Snapshot()
	}
	return &n
}

// Plumb a new preferences instance into the Ports sub-system and into the
// attached peripherals.
func (p *Ports) Plumb(prefs *preferences.Preferences) {
	if prefs == nil {
		prefs = preferences.NewPreferences()
	}
	p.prefs = prefs
	if p.PortOne != nil {
		p.PortOne.Plumb(prefs.Controller(plugging.PortOne))
	}
	if p.PortTwo != nil {
		p.PortTwo.Plumb(prefs.Controller(plugging.PortTwo))
	}
}

func (p *Ports) String() string {
	s := strings.Builder{}
	if p.PortOne != nil {
		s.WriteString(fmt.Sprintf("port one: %s\n", p.PortOne.String()))
	}
	if p.PortTwo != nil {
		s.WriteString(fmt.Sprintf("port two: %s\n", p.PortTwo.String()))
	}
	return strings.TrimSuffix(s.String(), "\n")
}

// Plug a new peripheral into the port. An existing peripheral in that port is
// unplugged first.
func (p *Ports) Plug(port plugging.PortID, c NewPeripheral) {
	periph := c(port, p.prefs.Controller(port))

	switch port {
	case plugging.PortOne:
		if p.PortOne != nil {
			p.PortOne.Unplug()
		}
		p.PortOne = periph
	case plugging.PortTwo:
		if p.PortTwo != nil {
			p.PortTwo.Unplug()
		}
		p.PortTwo = periph
	default:
		logger.Logf("ports", "cannot plug %s into unknown port %s", periph.ID(), port)
		return
	}

	if m, ok := periph.(plugging.Monitorable); ok && p.monitor != nil {
		m.AttachPlugMonitor(p.monitor)
	}
	if p.monitor != nil {
		p.monitor.Plugged(port, periph.ID())
	}

	logger.Logf("ports", "%s plugged into %s", periph.ID(), port)
}

// AttachPlugMonitor implements the plugging.Monitorable interface.
func (p *Ports) AttachPlugMonitor(m plugging.PlugMonitor) {
	p.monitor = m
	if c, ok := p.PortOne.(plugging.Monitorable); ok {
		c.AttachPlugMonitor(m)
	}
	if c, ok := p.PortTwo.(plugging.Monitorable); ok {
		c.AttachPlugMonitor(m)
	}
}

// peripheral returns the peripheral in the specified port, or nil.
func (p *Ports) peripheral(port plugging.PortID) Peripheral {
	switch port {
	case plugging.PortOne:
		return p.PortOne
	case plugging.PortTwo:
		return p.PortTwo
	}
	return nil
}

// Select asserts the select line for the specified port. Any previously
// selected peripheral is deselected first.
func (p *Ports) Select(port plugging.PortID) {
	if p.selected == port {
		return
	}
	p.Deselect()
	p.selected = port
}

// Deselect releases the select line. The deselected peripheral abandons any
// in-progress exchange.
func (p *Ports) Deselect() {
	if periph := p.peripheral(p.selected); periph != nil {
		periph.ResetTransferState()
	}
	p.selected = plugging.PortUnplugged
}

// Transfer exchanges one byte with the currently selected peripheral. An
// unselected or empty port responds the way the real bus does, with a hi-z
// byte and no ack.
func (p *Ports) Transfer(data uint8) (uint8, bool) {
	periph := p.peripheral(p.selected)
	if periph == nil {
		return 0xff, false
	}
	return periph.Transfer(data)
}

// Reset peripherals to their power-on state.
func (p *Ports) Reset() {
	if p.PortOne != nil {
		p.PortOne.Reset()
	}
	if p.PortTwo != nil {
		p.PortTwo.Reset()
	}
	p.selected = plugging.PortUnplugged
}

// DoState passes the Ports sub-system and both attached peripherals through
// the savestate serializer.
//
// The caller must quiesce the emulation before calling DoState(). It must
// never run concurrently with Transfer() or with input mutation.
func (p *Ports) DoState(st *savestate.State, ignoreInput bool) error {
	version := uint8(stateVersion)
	st.Do8(&version)
	if st.IsReading() && version != stateVersion {
		return curated.Errorf(StateVersionMismatch, "ports")
	}

	selected := string(p.selected)
	var l uint8 = uint8(len(selected))
	st.Do8(&l)
	b := make([]byte, l)
	copy(b, selected)
	st.DoBytes(b)
	if st.IsReading() {
		p.selected = plugging.PortID(b)
	}

	if p.PortOne != nil {
		if err := p.PortOne.DoState(st, ignoreInput); err != nil {
			return err
		}
	}
	if p.PortTwo != nil {
		if err := p.PortTwo.DoState(st, ignoreInput); err != nil {
			return err
		}
	}

	return st.Error()
}
