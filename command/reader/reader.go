/*
 * OPCBridge - Operator console reader
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

package reader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/peterh/liner"
	"github.com/rcornwell/OPCBridge/command/parser"
)

// The prompt carries the server state so an operator always knows
// whether clients are being served before typing a command.
func prompt(state string) string {
	if state == "RUNNING" {
		return "OPCB> "
	}
	return "OPCB(" + strings.ToLower(state) + ")> "
}

// ConsoleReader runs the operator console until quit or EOF. State
// transitions caused by a command, or by a failure noticed between
// commands, are echoed so stop/start results are visible without a
// show command.
func ConsoleReader(ctl parser.Controller) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(line string) []string {
		return parser.CompleteCmd(line, ctl)
	})

	last := ctl.State()
	for {
		command, err := line.Prompt(prompt(last))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return
			}
			slog.Error("error reading line: " + err.Error())
			return
		}
		if strings.TrimSpace(command) != "" {
			line.AppendHistory(command)
		}

		quit, err := parser.ProcessCommand(command, ctl)
		if err != nil {
			fmt.Println("Error: " + err.Error())
		}

		state := ctl.State()
		if state != last {
			fmt.Println("server: " + last + " -> " + state)
			last = state
		}

		if quit {
			// Leaving the console tears the server down; make an
			// operator with live client sessions say so.
			if state == "RUNNING" && !confirmQuit(line) {
				continue
			}
			return
		}
	}
}

// Ask before quitting out from under connected clients.
func confirmQuit(line *liner.State) bool {
	answer, err := line.Prompt("Server is RUNNING, stop and quit (y/n)? ")
	if err != nil {
		return true
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")
}
