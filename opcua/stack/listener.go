/*
 * OPCBridge - Endpoint listener
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
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"
)

type listener struct {
	wg         sync.WaitGroup
	listener   net.Listener
	shutdown   chan struct{}
	connection chan net.Conn
	srv        *Server
}

// Open a new endpoint listener and start its accept loops.
func newListener(srv *Server) (*listener, error) {
	address := strconv.Itoa(srv.port)
	lst, err := net.Listen("tcp", ":"+address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %s: %w", address, err)
	}

	l := &listener{
		listener:   lst,
		shutdown:   make(chan struct{}),
		connection: make(chan net.Conn),
		srv:        srv,
	}

	host, port, err := net.SplitHostPort(lst.Addr().String())
	if err != nil {
		panic(err)
	}
	if host == "::" {
		host = "localhost"
	}
	slog.Info("Endpoint opened on " + host + ":" + port)

	l.wg.Add(2)
	go l.acceptConnections()
	go l.handleConnections()
	return l, nil
}

// Stop the listener and wait for sessions to finish.
func (l *listener) stop() {
	port := strconv.Itoa(l.srv.port)
	slog.Info("Closing endpoint on port: " + port)

	close(l.shutdown)
	l.listener.Close()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		slog.Warn("Timed out waiting for sessions to finish on port: " + port)
	}
}

// Accept a connection.
func (l *listener) acceptConnections() {
	defer l.wg.Done()

	for {
		select {
		case <-l.shutdown:
			return
		default:
			conn, err := l.listener.Accept()
			if err != nil {
				select {
				case <-l.shutdown:
					return
				default:
					continue
				}
			}
			select {
			case l.connection <- conn:
			case <-l.shutdown:
				conn.Close()
				return
			}
		}
	}
}

// Start processing for a new connection.
func (l *listener) handleConnections() {
	defer l.wg.Done()

	for {
		select {
		case <-l.shutdown:
			return
		case conn := <-l.connection:
			l.wg.Add(1)
			go l.handleSession(conn)
		}
	}
}
