/*
 * OPCBridge - Located variable manifest parser
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
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcornwell/OPCBridge/plc/location"
)

// FileName is the manifest the compiler toolchain emits next to the
// generated program.
const FileName = "LOCATED_VARIABLES.h"

// Marker every relevant manifest line carries.
const marker = "__LOCATED_VAR"

var (
	ErrMalformedManifest = errors.New("malformed manifest line")
	ErrNotFound          = errors.New("manifest file not found")
)

// Directories searched for the manifest, relative to the working
// directory, in order.
var searchDirs = []string{".", "./core", "../core", ".."}

// Record is one located variable from the manifest. Name has the
// leading "__" already stripped and is safe to use as a browse name.
type Record struct {
	IECType  string
	Name     string
	Location location.Location
}

/* Manifest line format, one record per line:
 *
 * __LOCATED_VAR(<IEC_TYPE>,<NAME>,<AREA>,<WIDTH>,<IDX1>[,<IDX2>])
 *
 * Lines without the marker are ignored. Extra whitespace around
 * fields is permitted. <IDX2> is required exactly when <WIDTH> is X.
 */

// Find locates the manifest file in the fixed search directories.
func Find() (string, error) {
	for _, dir := range searchDirs {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}

// Load reads the manifest at path. The second return is the number
// of lines that carried the marker, resolvable or not. Records that
// fail to decompose are reported and skipped, never fatal.
func Load(path string) ([]Record, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()
	return Parse(file)
}

// Parse scans manifest text from r. Per record errors are logged and
// the record skipped; only a read failure aborts the scan.
func Parse(r io.Reader) ([]Record, int, error) {
	var records []Record
	seen := 0
	lineNumber := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if !strings.Contains(line, marker) {
			continue
		}
		seen++
		record, err := parseLine(line)
		if err != nil {
			slog.Warn("Manifest line skipped", "line", lineNumber, "error", err.Error())
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, seen, err
	}
	return records, seen, nil
}

// Decompose one marker line into a record.
func parseLine(line string) (Record, error) {
	open := strings.IndexByte(line, '(')
	end := strings.IndexByte(line, ')')
	if open < 0 || end < 0 || end < open {
		return Record{}, ErrMalformedManifest
	}

	fields := strings.Split(line[open+1:end], ",")
	for i, field := range fields {
		fields[i] = strings.TrimSpace(field)
	}
	if len(fields) < 5 || len(fields) > 6 {
		return Record{}, ErrMalformedManifest
	}
	for _, field := range fields {
		if field == "" {
			return Record{}, ErrMalformedManifest
		}
	}

	// Funnel address validation through the location parser by
	// rebuilding the token the fields describe.
	token := "%" + fields[2] + fields[3] + fields[4]
	if len(fields) == 6 {
		token += "." + fields[5]
	}
	loc, err := location.Parse(token)
	if err != nil {
		return Record{}, err
	}

	name := strings.TrimPrefix(fields[1], "__")
	if name == "" {
		return Record{}, ErrMalformedManifest
	}
	return Record{IECType: fields[0], Name: name, Location: loc}, nil
}
