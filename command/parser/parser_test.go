/*
 * OPCBridge - Command parser test set.
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

package parser

import (
	"slices"
	"testing"
)

type testController struct {
	started   bool
	stopped   bool
	startPort int
	wrote     map[string]string
}

func newTestController() *testController {
	return &testController{wrote: map[string]string{}}
}

func (c *testController) StartServer(port int) error {
	c.started = true
	c.startPort = port
	return nil
}

func (c *testController) StopServer() {
	c.stopped = true
}

func (c *testController) State() string {
	if c.started && !c.stopped {
		return "RUNNING"
	}
	return "IDLE"
}

func (c *testController) Status() string {
	return "server: IDLE"
}

func (c *testController) Variables() []string {
	return []string{"IW5", "IW6", "QX0_1"}
}

func (c *testController) ReadVariable(name string) (string, error) {
	return "UInt16 0", nil
}

func (c *testController) WriteVariable(name, value string) error {
	c.wrote[name] = value
	return nil
}

func TestProcessCommand(t *testing.T) {
	ctl := newTestController()

	quit, err := ProcessCommand("start 14840", ctl)
	if err != nil || quit {
		t.Fatalf("Start command failed: %v", err)
	}
	if !ctl.started || ctl.startPort != 14840 {
		t.Errorf("Start not applied: %+v", ctl)
	}

	quit, err = ProcessCommand("stop", ctl)
	if err != nil || quit {
		t.Fatalf("Stop command failed: %v", err)
	}
	if !ctl.stopped {
		t.Errorf("Stop not applied")
	}

	quit, err = ProcessCommand("write IW5 1234", ctl)
	if err != nil || quit {
		t.Fatalf("Write command failed: %v", err)
	}
	if ctl.wrote["IW5"] != "1234" {
		t.Errorf("Write not applied: %+v", ctl.wrote)
	}

	quit, err = ProcessCommand("quit", ctl)
	if err != nil || !quit {
		t.Fatalf("Quit did not quit: %v", err)
	}
}

func TestProcessCommandErrors(t *testing.T) {
	ctl := newTestController()

	if _, err := ProcessCommand("bogus", ctl); err == nil {
		t.Errorf("Unknown command accepted")
	}
	if _, err := ProcessCommand("st", ctl); err == nil {
		t.Errorf("Abbreviation below minimum length accepted")
	}
	if _, err := ProcessCommand("write IW5", ctl); err == nil {
		t.Errorf("Missing argument accepted")
	}
	if _, err := ProcessCommand("start notaport", ctl); err == nil {
		t.Errorf("Bad port accepted")
	}
	if quit, err := ProcessCommand("", ctl); err != nil || quit {
		t.Errorf("Empty line not ignored")
	}
}

func TestCompleteCmd(t *testing.T) {
	ctl := newTestController()

	matches := CompleteCmd("s", ctl)
	if !slices.Contains(matches, "start") || !slices.Contains(matches, "stop") || !slices.Contains(matches, "show") {
		t.Errorf("Command completion got %v", matches)
	}

	matches = CompleteCmd("read IW", ctl)
	want := []string{"read IW5", "read IW6"}
	if !slices.Equal(matches, want) {
		t.Errorf("Variable completion got %v want %v", matches, want)
	}
}
