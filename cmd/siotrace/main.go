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

// siotrace is a diagnostic tool for the controller protocol emulation. It
// attaches a pad to port one and exchanges bytes with it, printing both
// sides of every exchange.
//
// The trace command runs a scripted sequence of exchanges given as hex bytes
// on the command line. For example, entering configuration mode and asking
// for the current pad mode:
//
//	siotrace trace 01,43,00,01,00 01,45,00,00,00,00,00,00,00
//
// The keys command drives the pad interactively from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/jetsetilly/gopherstation/hardware/preferences"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports/controllers"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports/plugging"
	"github.com/jetsetilly/gopherstation/logger"
)

type cli struct {
	Prefs string `help:"Controller preferences file (YAML)." type:"path"`
	Pad   string `help:"Peripheral to attach to port one." default:"analog" enum:"analog,digital"`
	Log   bool   `help:"Echo the emulation log to stderr."`

	Trace traceCmd `cmd:"" help:"Run scripted exchanges against the pad."`
	Keys  keysCmd  `cmd:"" help:"Drive the pad interactively from the keyboard."`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("siotrace"),
		kong.Description("Diagnostic tool for the controller protocol emulation."),
		kong.UsageOnError(),
	)

	if c.Log {
		logger.SetEcho(os.Stderr)
	}

	prefs := preferences.NewPreferences()
	if c.Prefs != "" {
		var err error
		prefs, err = preferences.Load(c.Prefs)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(2)
		}
	}

	p := ports.NewPorts(prefs)
	switch c.Pad {
	case "digital":
		p.Plug(plugging.PortOne, controllers.NewDigital)
	default:
		p.Plug(plugging.PortOne, controllers.NewAnalog)
	}

	ctx.Bind(p)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// exchange clocks one scripted exchange through the selected pad and prints
// both directions of travel.
func exchange(p *ports.Ports, send []uint8) {
	p.Select(plugging.PortOne)
	defer p.Deselect()

	recv := make([]uint8, 0, len(send))
	for _, b := range send {
		r, ack := p.Transfer(b)
		recv = append(recv, r)
		if !ack {
			break
		}
	}

	fmt.Print(">")
	for _, b := range send[:len(recv)] {
		fmt.Printf(" %02x", b)
	}
	fmt.Println()
	fmt.Print("<")
	for _, b := range recv {
		fmt.Printf(" %02x", b)
	}
	fmt.Println()
}
