/*
 * OPCBridge - Reference scan engine
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

package scan

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rcornwell/OPCBridge/plc/image"
)

// Publisher is invoked once per cycle after outputs commit, outside
// the buffer lock.
type Publisher interface {
	Publish()
}

// Engine drives the fixed period scan cycle over a process image.
// Cycle runs with the buffer lock held and stands in for input
// refresh, the program body and output commit of a real runtime.
type Engine struct {
	Image     *image.Image
	Ticktime  time.Duration
	Cycle     func(img *image.Image)
	Publisher Publisher

	wg     sync.WaitGroup
	done   chan struct{}
	active bool
}

// Start spins the cycle loop.
func (e *Engine) Start() {
	if e.active {
		return
	}
	if e.Ticktime == 0 {
		e.Ticktime = 50 * time.Millisecond
	}
	e.done = make(chan struct{})
	e.active = true
	e.wg.Add(1)
	go e.run()
	slog.Info("Scan engine started", "ticktime", e.Ticktime.String())
}

func (e *Engine) run() {
	defer e.wg.Done()
	ticker := time.NewTicker(e.Ticktime)
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			if e.Cycle != nil {
				e.Image.Lock.Lock()
				e.Cycle(e.Image)
				e.Image.Lock.Unlock()
			}
			if e.Publisher != nil {
				e.Publisher.Publish()
			}
		}
	}
}

// Stop ends the cycle loop and waits for the current cycle to
// finish.
func (e *Engine) Stop() {
	if !e.active {
		return
	}
	e.active = false
	close(e.done)

	finished := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		slog.Warn("Timed out waiting for scan cycle to finish.")
	}
	slog.Info("Scan engine stopped")
}
