package image

/*
 * OPCBridge - PLC process image slot tables
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

import (
	"errors"
	"sync"
)

// Number of entries in each slot table.
const BufferSize = 1024

// Scalar cell kinds held by the image.
const (
	KindBool = 1 + iota // Single bit, addressed with a bit index.
	KindByte            // 8 bit unsigned.
	KindUint            // 16 bit unsigned.
	KindUdint           // 32 bit unsigned.
	KindUlint           // 64 bit unsigned.
	KindReal            // IEEE-754 binary32.
	KindLreal           // IEEE-754 binary64.
)

var ErrBadSlot = errors.New("slot address not valid")

// Image holds the live I/O and memory cells the scan cycle mutates.
// A nil cell means the compiler never allocated that address. The
// scan engine owns the cells; everything else borrows the pointers
// for the lifetime of a loaded program. Lock is the buffer lock all
// slot access outside the scan thread must honor.
type Image struct {
	Lock sync.Mutex

	BoolInput   [BufferSize][8]*bool
	BoolOutput  [BufferSize][8]*bool
	ByteInput   [BufferSize]*uint8
	ByteOutput  [BufferSize]*uint8
	IntInput    [BufferSize]*uint16
	IntOutput   [BufferSize]*uint16
	DintInput   [BufferSize]*uint32
	DintOutput  [BufferSize]*uint32
	LintInput   [BufferSize]*uint64
	LintOutput  [BufferSize]*uint64
	RealInput   [BufferSize]*float32
	RealOutput  [BufferSize]*float32
	FloatInput  [BufferSize]*float64
	FloatOutput [BufferSize]*float64

	IntMemory   [BufferSize]*uint16
	DintMemory  [BufferSize]*uint32
	LintMemory  [BufferSize]*uint64
	RealMemory  [BufferSize]*float32
	FloatMemory [BufferSize]*float64
}

// Slot is a borrowed pointer into the image plus its cell kind.
// Exactly one pointer field matching Kind is non nil.
type Slot struct {
	Kind  int
	Bool  *bool
	Byte  *uint8
	Uint  *uint16
	Udint *uint32
	Ulint *uint64
	Real  *float32
	Lreal *float64
}

// Slot looks up the cell at (area, width, index, bit). The second
// return is false when the address is out of range, the combination
// is not part of the image, or the compiler never allocated the
// cell. The lookup never touches cell contents.
func (img *Image) Slot(area, width byte, index, bit int) (Slot, bool) {
	if index < 0 || index >= BufferSize {
		return Slot{}, false
	}
	if width == 'X' && (bit < 0 || bit > 7) {
		return Slot{}, false
	}

	switch area {
	case 'I':
		switch width {
		case 'X':
			return boolSlot(img.BoolInput[index][bit])
		case 'B':
			return byteSlot(img.ByteInput[index])
		case 'W':
			return uintSlot(img.IntInput[index])
		case 'D':
			return udintSlot(img.DintInput[index])
		case 'L':
			return ulintSlot(img.LintInput[index])
		case 'R':
			return realSlot(img.RealInput[index])
		case 'F':
			return lrealSlot(img.FloatInput[index])
		}
	case 'Q':
		switch width {
		case 'X':
			return boolSlot(img.BoolOutput[index][bit])
		case 'B':
			return byteSlot(img.ByteOutput[index])
		case 'W':
			return uintSlot(img.IntOutput[index])
		case 'D':
			return udintSlot(img.DintOutput[index])
		case 'L':
			return ulintSlot(img.LintOutput[index])
		case 'R':
			return realSlot(img.RealOutput[index])
		case 'F':
			return lrealSlot(img.FloatOutput[index])
		}
	case 'M':
		switch width {
		case 'W':
			return uintSlot(img.IntMemory[index])
		case 'D':
			return udintSlot(img.DintMemory[index])
		case 'L':
			return ulintSlot(img.LintMemory[index])
		case 'R':
			return realSlot(img.RealMemory[index])
		case 'F':
			return lrealSlot(img.FloatMemory[index])
		}
	}
	return Slot{}, false
}

// Allocate creates the cell at (area, width, index, bit) the way a
// program load would. Allocating an existing cell keeps the cell and
// its value. Returns ErrBadSlot for addresses outside the image.
func (img *Image) Allocate(area, width byte, index, bit int) error {
	if index < 0 || index >= BufferSize {
		return ErrBadSlot
	}
	if width == 'X' && (bit < 0 || bit > 7) {
		return ErrBadSlot
	}

	switch area {
	case 'I':
		switch width {
		case 'X':
			if img.BoolInput[index][bit] == nil {
				img.BoolInput[index][bit] = new(bool)
			}
		case 'B':
			if img.ByteInput[index] == nil {
				img.ByteInput[index] = new(uint8)
			}
		case 'W':
			if img.IntInput[index] == nil {
				img.IntInput[index] = new(uint16)
			}
		case 'D':
			if img.DintInput[index] == nil {
				img.DintInput[index] = new(uint32)
			}
		case 'L':
			if img.LintInput[index] == nil {
				img.LintInput[index] = new(uint64)
			}
		case 'R':
			if img.RealInput[index] == nil {
				img.RealInput[index] = new(float32)
			}
		case 'F':
			if img.FloatInput[index] == nil {
				img.FloatInput[index] = new(float64)
			}
		default:
			return ErrBadSlot
		}
	case 'Q':
		switch width {
		case 'X':
			if img.BoolOutput[index][bit] == nil {
				img.BoolOutput[index][bit] = new(bool)
			}
		case 'B':
			if img.ByteOutput[index] == nil {
				img.ByteOutput[index] = new(uint8)
			}
		case 'W':
			if img.IntOutput[index] == nil {
				img.IntOutput[index] = new(uint16)
			}
		case 'D':
			if img.DintOutput[index] == nil {
				img.DintOutput[index] = new(uint32)
			}
		case 'L':
			if img.LintOutput[index] == nil {
				img.LintOutput[index] = new(uint64)
			}
		case 'R':
			if img.RealOutput[index] == nil {
				img.RealOutput[index] = new(float32)
			}
		case 'F':
			if img.FloatOutput[index] == nil {
				img.FloatOutput[index] = new(float64)
			}
		default:
			return ErrBadSlot
		}
	case 'M':
		switch width {
		case 'W':
			if img.IntMemory[index] == nil {
				img.IntMemory[index] = new(uint16)
			}
		case 'D':
			if img.DintMemory[index] == nil {
				img.DintMemory[index] = new(uint32)
			}
		case 'L':
			if img.LintMemory[index] == nil {
				img.LintMemory[index] = new(uint64)
			}
		case 'R':
			if img.RealMemory[index] == nil {
				img.RealMemory[index] = new(float32)
			}
		case 'F':
			if img.FloatMemory[index] == nil {
				img.FloatMemory[index] = new(float64)
			}
		default:
			return ErrBadSlot
		}
	default:
		return ErrBadSlot
	}
	return nil
}

func boolSlot(p *bool) (Slot, bool) {
	if p == nil {
		return Slot{}, false
	}
	return Slot{Kind: KindBool, Bool: p}, true
}

func byteSlot(p *uint8) (Slot, bool) {
	if p == nil {
		return Slot{}, false
	}
	return Slot{Kind: KindByte, Byte: p}, true
}

func uintSlot(p *uint16) (Slot, bool) {
	if p == nil {
		return Slot{}, false
	}
	return Slot{Kind: KindUint, Uint: p}, true
}

func udintSlot(p *uint32) (Slot, bool) {
	if p == nil {
		return Slot{}, false
	}
	return Slot{Kind: KindUdint, Udint: p}, true
}

func ulintSlot(p *uint64) (Slot, bool) {
	if p == nil {
		return Slot{}, false
	}
	return Slot{Kind: KindUlint, Ulint: p}, true
}

func realSlot(p *float32) (Slot, bool) {
	if p == nil {
		return Slot{}, false
	}
	return Slot{Kind: KindReal, Real: p}, true
}

func lrealSlot(p *float64) (Slot, bool) {
	if p == nil {
		return Slot{}, false
	}
	return Slot{Kind: KindLreal, Lreal: p}, true
}
