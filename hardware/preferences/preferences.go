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

// Package preferences holds the externally loaded configuration consumed by
// the peripherals at construction (or plumb) time. These are host side
// calibration values. They are not part of the emulated state and are
// deliberately not touched by Reset() or by the savestate serializer.
package preferences

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jetsetilly/gopherstation/curated"
	"github.com/jetsetilly/gopherstation/hardware/sio/ports/plugging"
)

// Error patterns for the preferences package.
const (
	LoadError = "preferences: load: %v"
	SaveError = "preferences: save: %v"
)

// Controller is the group of configuration values consumed by a single
// controller instance.
type Controller struct {
	// begin every hardware reset in analog mode
	ForceAnalogOnReset bool `yaml:"forceAnalogOnReset"`

	// map left-stick deflection onto the d-pad while the pad is in digital
	// mode
	AnalogDPadInDigitalMode bool `yaml:"analogDPadInDigitalMode"`

	// multiplier applied to incoming axis values before they are quantised
	AxisScale float32 `yaml:"axisScale"`

	// calibration added to rumble intensities before delivery to the host
	// vibration hardware
	RumbleBias uint8 `yaml:"rumbleBias"`
}

// Preferences brings together the controller configuration for both ports.
type Preferences struct {
	PortOne Controller `yaml:"portOne"`
	PortTwo Controller `yaml:"portTwo"`
}

// SetDefaults reverts all preference values to the defaults.
func (p *Preferences) SetDefaults() {
	p.PortOne = Controller{AxisScale: 1.00, RumbleBias: 8}
	p.PortTwo = Controller{AxisScale: 1.00, RumbleBias: 8}
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type.
func NewPreferences() *Preferences {
	p := &Preferences{}
	p.SetDefaults()
	return p
}

// Controller returns the configuration group for the specified port. An
// unrecognised port returns the PortOne group.
func (p *Preferences) Controller(port plugging.PortID) *Controller {
	if port == plugging.PortTwo {
		return &p.PortTwo
	}
	return &p.PortOne
}

// Load preferences from the YAML file at the specified path. Values missing
// from the file keep their defaults.
func Load(path string) (*Preferences, error) {
	p := NewPreferences()

	d, err := os.ReadFile(path)
	if err != nil {
		return nil, curated.Errorf(LoadError, err)
	}
	if err := yaml.Unmarshal(d, p); err != nil {
		return nil, curated.Errorf(LoadError, err)
	}

	return p, nil
}

// Save preferences to the YAML file at the specified path.
func (p *Preferences) Save(path string) error {
	d, err := yaml.Marshal(p)
	if err != nil {
		return curated.Errorf(SaveError, err)
	}
	if err := os.WriteFile(path, d, 0644); err != nil {
		return curated.Errorf(SaveError, err)
	}
	return nil
}
