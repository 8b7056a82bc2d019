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
	"github.com/jetsetilly/gopherstation/curated"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports/plugging"
)

// InputEvent is a single normalised input value, keyed against the binding
// list of the peripheral in the named port.
type InputEvent struct {
	Port  plugging.PortID
	Bind  uint32
	Value float32
}

// Error pattern returned by PushInput when the queue is full.
const InputQueueFull = "ports: input queue full"

// PushInput puts an input event onto the queue. It is safe to call from
// a different goroutine to the emulation loop. The event does not reach the
// peripheral until the emulation loop next calls HandleInputQueue().
func (p *Ports) PushInput(ev InputEvent) error {
	select {
	case p.pushed <- ev:
	default:
		return curated.Errorf(InputQueueFull)
	}
	return nil
}

// HandleInputQueue drains the input queue and applies the events to the
// relevant peripherals. To be called from the emulation loop once per tick,
// before any Transfer() calls for that tick. The peripherals then see a
// consistent view of the input state for the whole of the poll cycle.
func (p *Ports) HandleInputQueue() {
	for {
		select {
		case ev := <-p.pushed:
			if periph := p.peripheral(ev.Port); periph != nil {
				periph.SetBindState(ev.Bind, ev.Value)
			}
		default:
			return
		}
	}
}
