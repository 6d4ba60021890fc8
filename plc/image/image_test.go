/*
 * OPCBridge - Process image test set.
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

package image

import "testing"

func TestSlotAbsent(t *testing.T) {
	img := &Image{}

	// Nothing allocated yet.
	if _, ok := img.Slot('I', 'X', 0, 1); ok {
		t.Errorf("Unallocated bool input reported present")
	}
	if _, ok := img.Slot('Q', 'L', 7, 0); ok {
		t.Errorf("Unallocated lint output reported present")
	}

	// Out of range is absent, not a panic.
	if _, ok := img.Slot('I', 'W', BufferSize, 0); ok {
		t.Errorf("Out of range index reported present")
	}
	if _, ok := img.Slot('I', 'W', -1, 0); ok {
		t.Errorf("Negative index reported present")
	}
	if _, ok := img.Slot('I', 'X', 0, 8); ok {
		t.Errorf("Bit out of range reported present")
	}

	// Memory area has no bit or byte cells.
	if _, ok := img.Slot('M', 'X', 0, 0); ok {
		t.Errorf("Memory bit slot reported present")
	}
	if _, ok := img.Slot('M', 'B', 0, 0); ok {
		t.Errorf("Memory byte slot reported present")
	}
}

func TestAllocateAndSlot(t *testing.T) {
	img := &Image{}

	cases := []struct {
		area  byte
		width byte
		index int
		bit   int
		kind  int
	}{
		{'Q', 'X', 0, 1, KindBool},
		{'I', 'B', 3, 0, KindByte},
		{'I', 'W', 5, 0, KindUint},
		{'Q', 'D', 9, 0, KindUdint},
		{'Q', 'L', 7, 0, KindUlint},
		{'M', 'R', 2, 0, KindReal},
		{'M', 'F', 954, 0, KindLreal},
		{'M', 'W', 100, 0, KindUint},
	}

	for _, c := range cases {
		if err := img.Allocate(c.area, c.width, c.index, c.bit); err != nil {
			t.Errorf("Allocate %c%c%d failed: %v", c.area, c.width, c.index, err)
			continue
		}
		slot, ok := img.Slot(c.area, c.width, c.index, c.bit)
		if !ok {
			t.Errorf("Allocated slot %c%c%d absent", c.area, c.width, c.index)
			continue
		}
		if slot.Kind != c.kind {
			t.Errorf("Slot %c%c%d kind got %d want %d", c.area, c.width, c.index, slot.Kind, c.kind)
		}
	}
}

func TestAllocateKeepsValue(t *testing.T) {
	img := &Image{}
	if err := img.Allocate('I', 'W', 5, 0); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	slot, ok := img.Slot('I', 'W', 5, 0)
	if !ok {
		t.Fatalf("Slot absent after allocate")
	}
	*slot.Uint = 0xBEEF

	// Allocating the same address again keeps the cell.
	if err := img.Allocate('I', 'W', 5, 0); err != nil {
		t.Fatalf("Second allocate failed: %v", err)
	}
	slot2, _ := img.Slot('I', 'W', 5, 0)
	if slot2.Uint != slot.Uint {
		t.Errorf("Second allocate replaced the cell")
	}
	if *slot2.Uint != 0xBEEF {
		t.Errorf("Cell value lost: %x", *slot2.Uint)
	}
}

func TestAllocateRejected(t *testing.T) {
	img := &Image{}
	cases := []struct {
		area  byte
		width byte
		index int
		bit   int
	}{
		{'M', 'X', 0, 0},
		{'M', 'B', 0, 0},
		{'I', 'W', BufferSize, 0},
		{'I', 'X', 0, 8},
		{'Z', 'W', 0, 0},
		{'I', 'Z', 0, 0},
	}
	for _, c := range cases {
		if err := img.Allocate(c.area, c.width, c.index, c.bit); err == nil {
			t.Errorf("Allocate %c%c%d.%d succeeded, want error", c.area, c.width, c.index, c.bit)
		}
	}
}

func TestSlotDistinctBits(t *testing.T) {
	img := &Image{}
	for bit := 0; bit < 8; bit++ {
		if err := img.Allocate('Q', 'X', 0, bit); err != nil {
			t.Fatalf("Allocate bit %d failed: %v", bit, err)
		}
	}
	one, _ := img.Slot('Q', 'X', 0, 1)
	two, _ := img.Slot('Q', 'X', 0, 2)
	*one.Bool = true
	if *two.Bool {
		t.Errorf("Bit cells alias each other")
	}
}
