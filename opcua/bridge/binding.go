/*
 * OPCBridge - Node bindings and shadow cache
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
	"math"
	"sync/atomic"

	"github.com/rcornwell/OPCBridge/opcua/stack"
	"github.com/rcornwell/OPCBridge/plc/image"
)

// binding ties one address space node to one process image slot.
// The declared type never changes for the binding's lifetime. The
// shadow cell serves every read; the image pointer is the only sink
// for writes. Both are kept coherent under the image buffer lock,
// while readers decode the shadow without any lock.
type binding struct {
	node   stack.NodeID
	name   string
	typ    stack.TypeID
	slot   image.Slot
	shadow atomic.Uint64
}

// snapshot decodes the shadow cell into a variant of the declared
// type.
func (bd *binding) snapshot() stack.Variant {
	return unpack(bd.typ, bd.shadow.Load())
}

// pack encodes a variant value into shadow cell bits.
func pack(v stack.Variant) uint64 {
	switch v.Type {
	case stack.TypeBoolean:
		if v.Bool {
			return 1
		}
		return 0
	case stack.TypeSByte, stack.TypeInt16, stack.TypeInt32, stack.TypeInt64:
		return uint64(v.Int)
	case stack.TypeByte, stack.TypeUInt16, stack.TypeUInt32, stack.TypeUInt64:
		return v.Uint
	case stack.TypeFloat:
		return uint64(math.Float32bits(float32(v.Float)))
	case stack.TypeDouble:
		return math.Float64bits(v.Float)
	}
	return 0
}

// unpack decodes shadow cell bits back into a variant of type t.
func unpack(t stack.TypeID, bits uint64) stack.Variant {
	switch t {
	case stack.TypeBoolean:
		return stack.NewBoolean(bits != 0)
	case stack.TypeSByte:
		return stack.NewSByte(int8(bits))
	case stack.TypeByte:
		return stack.NewByte(uint8(bits))
	case stack.TypeInt16:
		return stack.NewInt16(int16(bits))
	case stack.TypeUInt16:
		return stack.NewUInt16(uint16(bits))
	case stack.TypeInt32:
		return stack.NewInt32(int32(bits))
	case stack.TypeUInt32:
		return stack.NewUInt32(uint32(bits))
	case stack.TypeInt64:
		return stack.NewInt64(int64(bits))
	case stack.TypeUInt64:
		return stack.NewUInt64(bits)
	case stack.TypeFloat:
		return stack.NewFloat(math.Float32frombits(uint32(bits)))
	case stack.TypeDouble:
		return stack.NewDouble(math.Float64frombits(bits))
	}
	return stack.Variant{}
}

// imageVariant reads the slot's current cell value. The caller must
// hold the image buffer lock.
func imageVariant(t stack.TypeID, slot image.Slot) stack.Variant {
	switch slot.Kind {
	case image.KindBool:
		return stack.NewBoolean(*slot.Bool)
	case image.KindByte:
		return stack.NewByte(*slot.Byte)
	case image.KindUint:
		return stack.NewUInt16(*slot.Uint)
	case image.KindUdint:
		return stack.NewUInt32(*slot.Udint)
	case image.KindUlint:
		return stack.NewUInt64(*slot.Ulint)
	case image.KindReal:
		return stack.NewFloat(*slot.Real)
	case image.KindLreal:
		return stack.NewDouble(*slot.Lreal)
	}
	return stack.Zero(t)
}

// storeImage writes a variant into the slot's cell. The caller must
// hold the image buffer lock and have checked the type already.
func storeImage(slot image.Slot, v stack.Variant) {
	switch slot.Kind {
	case image.KindBool:
		*slot.Bool = v.Bool
	case image.KindByte:
		*slot.Byte = uint8(v.Uint)
	case image.KindUint:
		*slot.Uint = uint16(v.Uint)
	case image.KindUdint:
		*slot.Udint = uint32(v.Uint)
	case image.KindUlint:
		*slot.Ulint = v.Uint
	case image.KindReal:
		*slot.Real = float32(v.Float)
	case image.KindLreal:
		*slot.Lreal = v.Float
	}
}
