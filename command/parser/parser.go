/*
 * OPCBridge - Operator command parser
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
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Controller is what the console drives: the running bridge plus
// its scan engine.
type Controller interface {
	StartServer(port int) error
	StopServer()
	State() string
	Status() string
	Variables() []string
	ReadVariable(name string) (string, error)
	WriteVariable(name, value string) error
}

type cmd struct {
	Name     string
	Min      int // Minimum abbreviation length.
	Args     int // Arguments required.
	Process  func(args []string, ctl Controller) (bool, error)
	Complete func(prefix string, ctl Controller) []string
}

var cmdList = []cmd{
	{Name: "start", Min: 4, Args: 0, Process: start},
	{Name: "stop", Min: 3, Args: 0, Process: stop},
	{Name: "show", Min: 2, Args: 0, Process: show},
	{Name: "read", Min: 1, Args: 1, Process: read, Complete: variableComplete},
	{Name: "write", Min: 1, Args: 2, Process: write, Complete: variableComplete},
	{Name: "quit", Min: 1, Args: 0, Process: quit},
}

// ProcessCommand runs one console line. The first return reports
// whether the console should exit.
func ProcessCommand(line string, ctl Controller) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	matches := matchList(fields[0])
	if len(matches) == 0 {
		return false, errors.New("unknown command: " + fields[0])
	}
	if len(matches) > 1 {
		return false, errors.New("ambiguous command: " + fields[0])
	}

	args := fields[1:]
	if len(args) < matches[0].Args {
		return false, errors.New(matches[0].Name + ": missing arguments")
	}
	return matches[0].Process(args, ctl)
}

// Match a possibly abbreviated command name.
func matchList(name string) []cmd {
	name = strings.ToLower(name)
	var matches []cmd
	for _, c := range cmdList {
		if len(name) >= c.Min && strings.HasPrefix(c.Name, name) {
			matches = append(matches, c)
		}
	}
	return matches
}

// Called to complete a command line, during line editing.
func CompleteCmd(line string, ctl Controller) []string {
	name, rest, hasArgs := strings.Cut(line, " ")
	if hasArgs {
		matches := matchList(name)
		if len(matches) != 1 || matches[0].Complete == nil {
			return nil
		}
		var result []string
		for _, m := range matches[0].Complete(strings.TrimSpace(rest), ctl) {
			result = append(result, matches[0].Name+" "+m)
		}
		return result
	}

	var result []string
	for _, c := range cmdList {
		if strings.HasPrefix(c.Name, strings.ToLower(name)) {
			result = append(result, c.Name)
		}
	}
	return result
}

func variableComplete(prefix string, ctl Controller) []string {
	var matches []string
	for _, name := range ctl.Variables() {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	return matches
}

// Handle start command.
func start(args []string, ctl Controller) (bool, error) {
	slog.Debug("Command Start")
	port := 0
	if len(args) > 0 {
		p, err := strconv.Atoi(args[0])
		if err != nil {
			return false, errors.New("port not valid: " + args[0])
		}
		port = p
	}
	return false, ctl.StartServer(port)
}

// Handle stop command.
func stop(_ []string, ctl Controller) (bool, error) {
	slog.Debug("Command Stop")
	ctl.StopServer()
	return false, nil
}

// Handle show command.
func show(_ []string, ctl Controller) (bool, error) {
	fmt.Println(ctl.Status())
	return false, nil
}

// Handle read command.
func read(args []string, ctl Controller) (bool, error) {
	value, err := ctl.ReadVariable(args[0])
	if err != nil {
		return false, err
	}
	fmt.Println(args[0] + " = " + value)
	return false, nil
}

// Handle write command.
func write(args []string, ctl Controller) (bool, error) {
	err := ctl.WriteVariable(args[0], args[1])
	if err != nil {
		return false, err
	}
	return false, nil
}

// Handle quit command.
func quit(_ []string, _ Controller) (bool, error) {
	return true, nil
}
