/*
 * OPCBridge - Log sink with size bound rotation
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

package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// The bridge runs unattended next to a PLC for months; the log file
// is capped and rolled once to <path>.old so it cannot fill the
// controller's disk.
const rotateLimit = 10 * 1024 * 1024

// sink is the shared file target. Handler clones from WithAttrs and
// WithGroup all funnel through one sink so rotation stays
// consistent.
type sink struct {
	mu    sync.Mutex
	path  string
	file  *os.File
	size  int64
	debug bool
}

// Handler renders one "time LEVEL: message key=value ..." line per
// record. Attribute keys carry their group prefixes so a client
// write logged under a session group reads session.id=... in the
// file.
type Handler struct {
	out    *sink
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewHandler opens the log file at path, or logs to stderr only
// when path is empty.
func NewHandler(path string, level slog.Leveler, debug bool) (*Handler, error) {
	out := &sink{path: path, debug: debug}
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		out.file = file
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{out: out, level: level}, nil
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, h.qualify(a))
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	strs := []string{r.Time.Format("2006/01/02 15:04:05"), r.Level.String() + ":", r.Message}

	for _, a := range h.attrs {
		strs = append(strs, a.Key+"="+a.Value.String())
	}
	if r.NumAttrs() != 0 {
		r.Attrs(func(a slog.Attr) bool {
			a = h.qualify(a)
			strs = append(strs, a.Key+"="+a.Value.String())
			return true
		})
	}
	line := []byte(strings.Join(strs, " ") + "\n")

	return h.out.write(line, r.Level)
}

// Prefix an attribute key with the open groups.
func (h *Handler) qualify(a slog.Attr) slog.Attr {
	if len(h.groups) == 0 {
		return a
	}
	a.Key = strings.Join(h.groups, ".") + "." + a.Key
	return a
}

// SetDebug turns stderr mirroring of debug records on or off for
// every clone of the handler.
func (h *Handler) SetDebug(debug bool) {
	h.out.mu.Lock()
	h.out.debug = debug
	h.out.mu.Unlock()
}

func (s *sink) write(line []byte, level slog.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.file != nil {
		if s.size+int64(len(line)) > rotateLimit {
			err = s.rotate()
		}
		if err == nil {
			var n int
			n, err = s.file.Write(line)
			s.size += int64(n)
		}
	}

	if s.debug || level > slog.LevelDebug {
		_, err = os.Stderr.Write(line)
	}
	return err
}

// Roll the current file to <path>.old and start a fresh one. Called
// with the sink locked.
func (s *sink) rotate() error {
	s.file.Close()
	if err := os.Rename(s.path, s.path+".old"); err != nil {
		return err
	}
	file, err := os.Create(s.path)
	if err != nil {
		s.file = nil
		return err
	}
	s.file = file
	s.size = 0
	return nil
}
