/*
 * OPCBridge - Located variable type resolver
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

package bridge

import (
	"github.com/rcornwell/OPCBridge/opcua/stack"
	"github.com/rcornwell/OPCBridge/plc/image"
	"github.com/rcornwell/OPCBridge/plc/location"
)

// Resolver outcomes for one located variable.
const (
	resolved = 1 + iota
	unavailable
	unsupported
)

// The width glyph alone fixes the scalar type. The image cells are
// unsigned, so signed IEC declarations resolve to the unsigned type
// of the same width.
var widthTypes = map[byte]stack.TypeID{
	'X': stack.TypeBoolean,
	'B': stack.TypeByte,
	'W': stack.TypeUInt16,
	'D': stack.TypeUInt32,
	'L': stack.TypeUInt64,
	'R': stack.TypeFloat,
	'F': stack.TypeDouble,
}

// resolve maps a location to its image slot and scalar type.
// Memory area single bit and byte addresses are outside the image
// and report unsupported; a cell the compiler never allocated
// reports unavailable.
func resolve(img *image.Image, loc location.Location) (image.Slot, stack.TypeID, int) {
	typ, ok := widthTypes[loc.Width]
	if !ok {
		return image.Slot{}, 0, unsupported
	}
	if loc.Area == 'M' && (loc.Width == 'X' || loc.Width == 'B') {
		return image.Slot{}, 0, unsupported
	}
	slot, ok := img.Slot(loc.Area, loc.Width, loc.Index, loc.Bit)
	if !ok {
		return image.Slot{}, 0, unavailable
	}
	return slot, typ, resolved
}
