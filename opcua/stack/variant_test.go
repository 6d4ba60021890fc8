/*
 * OPCBridge - Variant test set.
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
	"math"
	"testing"
)

func TestParseValueEdges(t *testing.T) {
	cases := []struct {
		typ  TypeID
		text string
	}{
		{TypeBoolean, "true"},
		{TypeBoolean, "false"},
		{TypeByte, "0"},
		{TypeByte, "255"},
		{TypeUInt16, "65535"},
		{TypeUInt32, "4294967295"},
		{TypeUInt64, "18446744073709551615"},
		{TypeSByte, "-128"},
		{TypeInt16, "-32768"},
		{TypeInt32, "2147483647"},
		{TypeInt64, "-9223372036854775808"},
		{TypeFloat, "3.5"},
		{TypeDouble, "-2.25"},
	}

	for _, c := range cases {
		v, err := ParseValue(c.typ, c.text)
		if err != nil {
			t.Errorf("ParseValue %s %s failed: %v", c.typ.String(), c.text, err)
			continue
		}
		if v.Type != c.typ {
			t.Errorf("ParseValue %s type got %s", c.text, v.Type.String())
		}
		if v.Format() != c.text && c.typ != TypeBoolean {
			t.Errorf("Round trip %s got %s", c.text, v.Format())
		}
	}
}

func TestParseValueRange(t *testing.T) {
	cases := []struct {
		typ  TypeID
		text string
	}{
		{TypeByte, "256"},
		{TypeByte, "-1"},
		{TypeUInt16, "65536"},
		{TypeSByte, "128"},
		{TypeInt16, "32768"},
		{TypeUInt32, "4294967296"},
		{TypeBoolean, "maybe"},
		{TypeUInt16, "abc"},
	}
	for _, c := range cases {
		if _, err := ParseValue(c.typ, c.text); err == nil {
			t.Errorf("ParseValue %s %s succeeded, want error", c.typ.String(), c.text)
		}
	}
}

func TestParseValueFloatSpecials(t *testing.T) {
	v, err := ParseValue(TypeFloat, "NaN")
	if err != nil {
		t.Fatalf("ParseValue NaN failed: %v", err)
	}
	if !math.IsNaN(v.Float) {
		t.Errorf("NaN not preserved: %v", v.Float)
	}

	v, err = ParseValue(TypeDouble, "+Inf")
	if err != nil {
		t.Fatalf("ParseValue +Inf failed: %v", err)
	}
	if !math.IsInf(v.Float, 1) {
		t.Errorf("+Inf not preserved: %v", v.Float)
	}

	v, err = ParseValue(TypeDouble, "-Inf")
	if err != nil {
		t.Fatalf("ParseValue -Inf failed: %v", err)
	}
	if !math.IsInf(v.Float, -1) {
		t.Errorf("-Inf not preserved: %v", v.Float)
	}
}

func TestTypeByName(t *testing.T) {
	for id, name := range typeNames {
		got, ok := TypeByName(name)
		if !ok || got != id {
			t.Errorf("TypeByName %s got %v ok=%v", name, got, ok)
		}
	}
	if _, ok := TypeByName("String"); ok {
		t.Errorf("TypeByName String succeeded")
	}
}

func TestZero(t *testing.T) {
	for id := range typeNames {
		z := Zero(id)
		if z.Type != id {
			t.Errorf("Zero type got %s want %s", z.Type.String(), id.String())
		}
	}
}
