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

package main

import (
	"fmt"

	"github.com/pkg/term"

	"github.com/jetsetilly/gopherstation/hardware/sio/ports"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports/controllers"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports/plugging"
)

type keysCmd struct{}

// keyBindings maps terminal keys onto the bindings of the analog pad. keys
// toggle the binding between released and fully applied.
var keyBindings = map[byte]uint32{
	'w': controllers.ButtonUp,
	's': controllers.ButtonDown,
	'a': controllers.ButtonLeft,
	'd': controllers.ButtonRight,
	'x': controllers.ButtonCross,
	'c': controllers.ButtonCircle,
	't': controllers.ButtonTriangle,
	'q': controllers.ButtonSquare,
	'e': controllers.ButtonSelect,
	'r': controllers.ButtonStart,
	'm': controllers.ButtonAnalogToggle,
	'j': controllers.BindLeftStickLeft,
	'l': controllers.BindLeftStickRight,
	'i': controllers.BindLeftStickUp,
	'k': controllers.BindLeftStickDown,
}

func (cmd *keysCmd) Run(p *ports.Ports) error {
	t, err := term.Open("/dev/tty", term.CBreakMode)
	if err != nil {
		return err
	}
	defer func() {
		_ = t.Restore()
		_ = t.Close()
	}()

	fmt.Println("keys toggle pad inputs. <space> polls the pad. <esc> quits")

	held := make(map[uint32]bool)
	buf := make([]byte, 1)

	for {
		if _, err := t.Read(buf); err != nil {
			return err
		}

		switch buf[0] {
		case 0x1b:
			return nil

		case ' ':
			// apply queued input before polling, the way the emulation loop
			// would at the start of a tick
			p.HandleInputQueue()
			exchange(p, []uint8{0x01, 0x42, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})

		default:
			bind, ok := keyBindings[buf[0]]
			if !ok {
				continue
			}
			held[bind] = !held[bind]
			var value float32
			if held[bind] {
				value = 1.0
			}
			if err := p.PushInput(ports.InputEvent{Port: plugging.PortOne, Bind: bind, Value: value}); err != nil {
				return err
			}
		}
	}
}
