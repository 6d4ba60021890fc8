/*
 * OPCBridge - Manifest parser test set.
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

package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleManifest = `// Autogenerated, do not edit.
__LOCATED_VAR(BOOL,__QX0_1,Q,X,0,1)
__LOCATED_VAR(UINT,__IW5,I,W,5)
__LOCATED_VAR( REAL , __MR2 , M , R , 2 )
__LOCATED_VAR(LINT,__QL7,Q,L,7)
int unrelated_line = 0;
`

func TestParseSample(t *testing.T) {
	records, seen, err := Parse(strings.NewReader(sampleManifest))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if seen != 4 {
		t.Errorf("Seen count got %d want 4", seen)
	}
	if len(records) != 4 {
		t.Fatalf("Record count got %d want 4", len(records))
	}

	first := records[0]
	if first.Name != "QX0_1" {
		t.Errorf("Name not stripped: %s", first.Name)
	}
	if first.IECType != "BOOL" {
		t.Errorf("IEC type got %s want BOOL", first.IECType)
	}
	if first.Location.String() != "%QX0.1" {
		t.Errorf("Location got %s want %%QX0.1", first.Location.String())
	}

	spaced := records[2]
	if spaced.Name != "MR2" || spaced.Location.String() != "%MR2" {
		t.Errorf("Whitespace tolerant parse failed: %+v", spaced)
	}
}

func TestParseNoMarker(t *testing.T) {
	text := "int x = 0;\n// LOCATED_VAR mention without the macro shape\n"
	records, seen, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if seen != 0 {
		t.Errorf("Seen count got %d want 0", seen)
	}
	if len(records) != 0 {
		t.Errorf("Record count got %d want 0", len(records))
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []string{
		"__LOCATED_VAR(BOOL,__QX0_1,Q,X)\n",    // Too few fields.
		"__LOCATED_VAR(BOOL,__QX0_1)\n",        // Way too few.
		"__LOCATED_VAR BOOL QX0_1\n",           // No parens.
		"__LOCATED_VAR(BOOL,__QX0_1,Q,X,0)\n",  // X without bit.
		"__LOCATED_VAR(UINT,__IW5,I,W,5,3)\n",  // Bit on non X.
		"__LOCATED_VAR(BOOL,__QX0_1,Q,X,0,8)\n", // Bit out of range.
		"__LOCATED_VAR(BOOL,,Q,X,0,1)\n",       // Empty name.
	}

	for _, text := range cases {
		records, seen, err := Parse(strings.NewReader(text))
		if err != nil {
			t.Errorf("Parse aborted on %q: %v", text, err)
			continue
		}
		if seen != 1 {
			t.Errorf("Seen count got %d want 1 for %q", seen, text)
		}
		if len(records) != 0 {
			t.Errorf("Record count got %d want 0 for %q", len(records), text)
		}
	}
}

// Parsing the same manifest twice yields the same set of addresses.
func TestParseIdempotent(t *testing.T) {
	first, _, err := Parse(strings.NewReader(sampleManifest))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	second, _, err := Parse(strings.NewReader(sampleManifest))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("Record counts differ: %d vs %d", len(first), len(second))
	}
	set := map[string]bool{}
	for _, rec := range first {
		set[rec.Location.String()] = true
	}
	for _, rec := range second {
		if !set[rec.Location.String()] {
			t.Errorf("Second parse has extra record %s", rec.Location.String())
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatalf("Unable to write manifest: %v", err)
	}

	records, seen, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if seen != 4 || len(records) != 4 {
		t.Errorf("Load got seen=%d records=%d want 4/4", seen, len(records))
	}
}

func TestLoadMissing(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), FileName))
	if err == nil {
		t.Errorf("Load of missing file succeeded")
	}
}
