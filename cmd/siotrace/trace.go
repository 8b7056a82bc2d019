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
	"strconv"
	"strings"

	"github.com/jetsetilly/gopherstation/hardware/sio/ports"
)

type traceCmd struct {
	Exchanges []string `arg:"" help:"Exchanges to run. Each argument is a comma separated list of hex bytes."`
}

func (cmd *traceCmd) Run(p *ports.Ports) error {
	for _, ex := range cmd.Exchanges {
		send, err := parseExchange(ex)
		if err != nil {
			return err
		}
		exchange(p, send)
	}
	return nil
}

func parseExchange(s string) ([]uint8, error) {
	var send []uint8
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("bad hex byte '%s' in exchange '%s'", f, s)
		}
		send = append(send, uint8(v))
	}
	if len(send) == 0 {
		return nil, fmt.Errorf("empty exchange")
	}
	return send, nil
}
