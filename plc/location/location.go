/*
 * OPCBridge - IEC located variable address parser
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package location

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidLocation = errors.New("invalid location")

// Location is a parsed IEC address such as %IX0.1, %QW10 or %MD954.
// Bit is meaningful only when Width is 'X'.
type Location struct {
	Area  byte // 'I', 'Q' or 'M'.
	Width byte // 'X', 'B', 'W', 'D', 'L', 'R' or 'F'.
	Index int
	Bit   int
}

/* Location token format:
 *
 * <location> ::= '%' <area> <width> <index> ['.' <bit>]
 * <area>     ::= 'I' | 'Q' | 'M'
 * <width>    ::= 'X' | 'B' | 'W' | 'D' | 'L' | 'R' | 'F'
 * <index>    ::= 1*digit
 * <bit>      ::= digit, required for width 'X', range 0-7,
 *                forbidden for every other width
 */

// Parse decomposes a location token. Any token not matching the
// format above fails with ErrInvalidLocation.
func Parse(token string) (Location, error) {
	if len(token) < 4 || token[0] != '%' {
		return Location{}, ErrInvalidLocation
	}

	area := token[1]
	if area != 'I' && area != 'Q' && area != 'M' {
		return Location{}, ErrInvalidLocation
	}

	width := token[2]
	switch width {
	case 'X', 'B', 'W', 'D', 'L', 'R', 'F':
	default:
		return Location{}, ErrInvalidLocation
	}

	rest := token[3:]
	bit := -1
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		if width != 'X' {
			return Location{}, ErrInvalidLocation
		}
		b, err := parseNumber(rest[dot+1:])
		if err != nil {
			return Location{}, ErrInvalidLocation
		}
		if b > 7 {
			return Location{}, ErrInvalidLocation
		}
		bit = b
		rest = rest[:dot]
	} else if width == 'X' {
		// Bit index is mandatory for single bit addresses.
		return Location{}, ErrInvalidLocation
	}

	index, err := parseNumber(rest)
	if err != nil {
		return Location{}, ErrInvalidLocation
	}

	if bit < 0 {
		bit = 0
	}
	return Location{Area: area, Width: width, Index: index, Bit: bit}, nil
}

// String formats the location back to its token form.
func (loc Location) String() string {
	s := "%" + string(loc.Area) + string(loc.Width) + strconv.Itoa(loc.Index)
	if loc.Width == 'X' {
		s += "." + strconv.Itoa(loc.Bit)
	}
	return s
}

// Only unsigned decimal digits are accepted. strconv alone would
// let signs and leading plus through.
func parseNumber(s string) (int, error) {
	if s == "" {
		return 0, ErrInvalidLocation
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrInvalidLocation
		}
	}
	value, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidLocation
	}
	return value, nil
}
