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

// Package test contains helper functions to remove common boilerplate from
// the package tests of the emulation. The Expect* group of functions record a
// test error and continue, while the Demand* group end the test immediately.
//
// Success and failure values are judged by type. For a bool, true is a
// success. For an error, nil is a success. These are the success rules needed
// by the peripheral tests: for example, the second return value of a
// Transfer() call is a bool indicating that the peripheral expects more bytes
// in the exchange.
package test
