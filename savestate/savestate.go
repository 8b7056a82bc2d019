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

// Package savestate defines the serializer used by the peripherals (and any
// other part of the emulation) to persist state across snapshot boundaries.
//
// The same Do*() functions are used for both directions of travel. When the
// State was created with NewWriting() the functions append the value to the
// stream; when created with NewReading() the functions replace the value with
// the next field in the stream. State owners must therefore call the Do*()
// functions in exactly the same order in both directions. Field order is the
// de facto layout version so owners should also write an explicit version
// field and check it on read, keeping dead fields in place forever.
//
// Errors are sticky. The first error (eg. reading past the end of a stream)
// poisons the State and subsequent Do*() calls are no-ops. Check Error() once
// all fields have been processed.
package savestate

import (
	"encoding/binary"

	"github.com/jetsetilly/gopherstation/curated"
)

// Sentinal error returned when a read continues past the end of the stream.
const EndOfStream = "savestate: end of stream"

// Mode records the direction of travel for a State instance.
type Mode int

// List of valid Mode values.
const (
	Writing Mode = iota
	Reading
)

// State is an ordered stream of primitive fields. All fields are stored
// little-endian.
type State struct {
	mode Mode
	data []byte
	pos  int
	err  error
}

// NewWriting is the preferred method of initialisation for a State that
// gathers fields into a new stream.
func NewWriting() *State {
	return &State{
		mode: Writing,
		data: make([]byte, 0, 64),
	}
}

// NewReading is the preferred method of initialisation for a State that
// distributes fields from an existing stream.
func NewReading(data []byte) *State {
	return &State{
		mode: Reading,
		data: data,
	}
}

// Mode returns the direction of travel for the State.
func (st *State) Mode() Mode {
	return st.mode
}

// IsReading is a convenience function. Equivalent to Mode() == Reading.
func (st *State) IsReading() bool {
	return st.mode == Reading
}

// Data returns the stream gathered so far.
func (st *State) Data() []byte {
	return st.data
}

// Error returns the first error encountered by the State, if any.
func (st *State) Error() error {
	return st.err
}

// take returns the next n bytes of a reading stream.
func (st *State) take(n int) []byte {
	if st.err != nil {
		return nil
	}
	if st.pos+n > len(st.data) {
		st.err = curated.Errorf(EndOfStream)
		return nil
	}
	b := st.data[st.pos : st.pos+n]
	st.pos += n
	return b
}

// Do8 writes/reads a single byte field.
func (st *State) Do8(v *uint8) {
	if st.err != nil {
		return
	}
	if st.mode == Writing {
		st.data = append(st.data, *v)
		return
	}
	if b := st.take(1); b != nil {
		*v = b[0]
	}
}

// Do16 writes/reads a 16bit field.
func (st *State) Do16(v *uint16) {
	if st.err != nil {
		return
	}
	if st.mode == Writing {
		st.data = binary.LittleEndian.AppendUint16(st.data, *v)
		return
	}
	if b := st.take(2); b != nil {
		*v = binary.LittleEndian.Uint16(b)
	}
}

// Do32 writes/reads a 32bit field.
func (st *State) Do32(v *uint32) {
	if st.err != nil {
		return
	}
	if st.mode == Writing {
		st.data = binary.LittleEndian.AppendUint32(st.data, *v)
		return
	}
	if b := st.take(4); b != nil {
		*v = binary.LittleEndian.Uint32(b)
	}
}

// DoInt32 writes/reads a signed 32bit field. Useful for fields that use a
// negative value as an "unset" sentinal.
func (st *State) DoInt32(v *int32) {
	u := uint32(*v)
	st.Do32(&u)
	*v = int32(u)
}

// DoBool writes/reads a boolean field. Stored as a single byte. On reading,
// any non-zero byte is true.
func (st *State) DoBool(v *bool) {
	var b uint8
	if *v {
		b = 1
	}
	st.Do8(&b)
	*v = b != 0
}

// DoBytes writes/reads a fixed-length byte array field. The length of the
// field is taken from the length of the argument, which must be the same in
// both directions of travel.
func (st *State) DoBytes(v []byte) {
	if st.err != nil {
		return
	}
	if st.mode == Writing {
		st.data = append(st.data, v...)
		return
	}
	if b := st.take(len(v)); b != nil {
		copy(v, b)
	}
}
