/*
 * OPCBridge - Client session handling
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
	"bufio"
	"log/slog"
	"net"
	"strings"

	"github.com/google/uuid"
)

/* Session wire protocol, one request per line:
 *
 * browse <ns:id>              list child nodes
 * read <ns:id>                read a variable value
 * write <ns:id> <type> <value> write a variable value
 * bye                         end the session
 *
 * Requests are queued to the iterate thread; the session blocks
 * until its reply arrives or the server shuts down.
 */

// Serve one client connection.
func (l *listener) handleSession(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()

	session := uuid.New().String()
	slog.Info("Session opened", "session", session, "remote", conn.RemoteAddr().String())
	defer slog.Info("Session closed", "session", session)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "bye" {
			_, _ = conn.Write([]byte("bye\n"))
			return
		}

		reply := make(chan string, 1)
		select {
		case l.srv.requests <- request{line: line, reply: reply}:
		case <-l.shutdown:
			return
		}

		select {
		case text := <-reply:
			if _, err := conn.Write([]byte(text + "\n")); err != nil {
				slog.Warn("Session write failed", "session", session, "error", err.Error())
				return
			}
		case <-l.shutdown:
			return
		}
	}
}
