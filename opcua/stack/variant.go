/*
 * OPCBridge - OPC UA scalar variants and status codes
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

package stack

import (
	"errors"
	"strconv"
)

// TypeID identifies one of the scalar data types the stack carries.
type TypeID int

const (
	TypeBoolean TypeID = 1 + iota
	TypeSByte
	TypeByte
	TypeInt16
	TypeUInt16
	TypeInt32
	TypeUInt32
	TypeInt64
	TypeUInt64
	TypeFloat
	TypeDouble
)

var typeNames = map[TypeID]string{
	TypeBoolean: "Boolean",
	TypeSByte:   "SByte",
	TypeByte:    "Byte",
	TypeInt16:   "Int16",
	TypeUInt16:  "UInt16",
	TypeInt32:   "Int32",
	TypeUInt32:  "UInt32",
	TypeInt64:   "Int64",
	TypeUInt64:  "UInt64",
	TypeFloat:   "Float",
	TypeDouble:  "Double",
}

func (t TypeID) String() string {
	name, ok := typeNames[t]
	if !ok {
		return "Unknown"
	}
	return name
}

// TypeByName maps a wire type name back to its id.
func TypeByName(name string) (TypeID, bool) {
	for id, n := range typeNames {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

// StatusCode is an OPC UA status word. Zero is Good.
type StatusCode uint32

const (
	Good               StatusCode = 0x00000000
	BadInternalError   StatusCode = 0x80020000
	BadNodeIDUnknown   StatusCode = 0x80340000
	BadParentNodeIDBad StatusCode = 0x805B0000
	BadNodeIDExists    StatusCode = 0x805E0000
	BadTypeMismatch    StatusCode = 0x80740000
	BadInvalidState    StatusCode = 0x80AF0000
)

func (s StatusCode) IsGood() bool {
	return s == Good
}

func (s StatusCode) String() string {
	switch s {
	case Good:
		return "Good"
	case BadInternalError:
		return "BadInternalError"
	case BadNodeIDUnknown:
		return "BadNodeIdUnknown"
	case BadParentNodeIDBad:
		return "BadParentNodeIdInvalid"
	case BadNodeIDExists:
		return "BadNodeIdExists"
	case BadTypeMismatch:
		return "BadTypeMismatch"
	case BadInvalidState:
		return "BadInvalidState"
	}
	return "0x" + strconv.FormatUint(uint64(s), 16)
}

var ErrBadValue = errors.New("value text not valid for type")

// Variant is a tagged scalar. The field matching Type carries the
// value; signed kinds use Int, unsigned kinds use Uint, both float
// kinds use Float with TypeFloat held at binary32 precision.
type Variant struct {
	Type  TypeID
	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
}

func NewBoolean(v bool) Variant {
	return Variant{Type: TypeBoolean, Bool: v}
}

func NewSByte(v int8) Variant {
	return Variant{Type: TypeSByte, Int: int64(v)}
}

func NewByte(v uint8) Variant {
	return Variant{Type: TypeByte, Uint: uint64(v)}
}

func NewInt16(v int16) Variant {
	return Variant{Type: TypeInt16, Int: int64(v)}
}

func NewUInt16(v uint16) Variant {
	return Variant{Type: TypeUInt16, Uint: uint64(v)}
}

func NewInt32(v int32) Variant {
	return Variant{Type: TypeInt32, Int: int64(v)}
}

func NewUInt32(v uint32) Variant {
	return Variant{Type: TypeUInt32, Uint: uint64(v)}
}

func NewInt64(v int64) Variant {
	return Variant{Type: TypeInt64, Int: v}
}

func NewUInt64(v uint64) Variant {
	return Variant{Type: TypeUInt64, Uint: v}
}

func NewFloat(v float32) Variant {
	return Variant{Type: TypeFloat, Float: float64(v)}
}

func NewDouble(v float64) Variant {
	return Variant{Type: TypeDouble, Float: v}
}

// Zero returns the zero value of a type, used as the initial node
// value so the declared data type always matches.
func Zero(t TypeID) Variant {
	return Variant{Type: t}
}

// Format renders the value portion as wire text.
func (v Variant) Format() string {
	switch v.Type {
	case TypeBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case TypeSByte, TypeInt16, TypeInt32, TypeInt64:
		return strconv.FormatInt(v.Int, 10)
	case TypeByte, TypeUInt16, TypeUInt32, TypeUInt64:
		return strconv.FormatUint(v.Uint, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 32)
	case TypeDouble:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	}
	return ""
}

// ParseValue builds a variant of type t from wire text. Range is
// checked exactly, never widened or clamped.
func ParseValue(t TypeID, text string) (Variant, error) {
	switch t {
	case TypeBoolean:
		switch text {
		case "true", "1":
			return NewBoolean(true), nil
		case "false", "0":
			return NewBoolean(false), nil
		}
		return Variant{}, ErrBadValue
	case TypeSByte:
		value, err := strconv.ParseInt(text, 10, 8)
		if err != nil {
			return Variant{}, ErrBadValue
		}
		return NewSByte(int8(value)), nil
	case TypeByte:
		value, err := strconv.ParseUint(text, 10, 8)
		if err != nil {
			return Variant{}, ErrBadValue
		}
		return NewByte(uint8(value)), nil
	case TypeInt16:
		value, err := strconv.ParseInt(text, 10, 16)
		if err != nil {
			return Variant{}, ErrBadValue
		}
		return NewInt16(int16(value)), nil
	case TypeUInt16:
		value, err := strconv.ParseUint(text, 10, 16)
		if err != nil {
			return Variant{}, ErrBadValue
		}
		return NewUInt16(uint16(value)), nil
	case TypeInt32:
		value, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return Variant{}, ErrBadValue
		}
		return NewInt32(int32(value)), nil
	case TypeUInt32:
		value, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return Variant{}, ErrBadValue
		}
		return NewUInt32(uint32(value)), nil
	case TypeInt64:
		value, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Variant{}, ErrBadValue
		}
		return NewInt64(value), nil
	case TypeUInt64:
		value, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return Variant{}, ErrBadValue
		}
		return NewUInt64(value), nil
	case TypeFloat:
		value, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Variant{}, ErrBadValue
		}
		return NewFloat(float32(value)), nil
	case TypeDouble:
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Variant{}, ErrBadValue
		}
		return NewDouble(value), nil
	}
	return Variant{}, ErrBadValue
}
