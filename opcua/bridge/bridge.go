/*
 * OPCBridge - Server lifecycle and scan tick publisher
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

package bridge

import (
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rcornwell/OPCBridge/config/manifest"
	"github.com/rcornwell/OPCBridge/opcua/stack"
	"github.com/rcornwell/OPCBridge/plc/image"
)

// Server lifecycle states.
type State int32

const (
	Idle State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Starting:
		return "STARTING"
	case Running:
		return "RUNNING"
	case Stopping:
		return "STOPPING"
	}
	return "UNKNOWN"
}

var ErrUnknownVariable = errors.New("no such variable")

// Stack is the server side API the bridge consumes. One instance
// backs one lifecycle; a fresh instance is created on every start
// because reusing one across restarts leaks internal allocations.
type Stack interface {
	AddNamespace(uri string) uint16
	AddObjectNode(id, parent stack.NodeID, browseName, displayName string) stack.StatusCode
	AddVariableNode(id, parent stack.NodeID, browseName, displayName string,
		dataType stack.TypeID, initial stack.Variant) stack.StatusCode
	SetValueCallback(id stack.NodeID, ctx any, callback stack.ValueCallback) stack.StatusCode
	WriteValue(id stack.NodeID, value stack.Variant) stack.StatusCode
	RunStartup() error
	Iterate(block bool)
	Shutdown()
	Destroy()
}

// Config carries the tunables of one bridge.
type Config struct {
	ManifestPath     string        // Empty means search the fixed directories.
	IterateDelay     time.Duration // Yield between stack iterations.
	LegacyEmptyReads bool          // Reads report Good with no value.
}

// BindingInfo is the console visible view of one binding.
type BindingInfo struct {
	Name string
	Node string
	Type string
}

// Bridge connects a PLC process image to one OPC UA server. The
// bridge lock guards the binding list and lifecycle fields and is
// never held across a call into the stack.
type Bridge struct {
	mu       sync.Mutex
	img      *image.Image
	cfg      Config
	state    atomic.Int32
	running  atomic.Bool
	srv      Stack
	newStack func(port int) Stack
	ns       uint16
	nextNode uint32
	bindings []*binding
	wg       sync.WaitGroup
	done     chan struct{}
	seen     int
	added    int
}

// New creates a bridge over a process image. Nothing runs until
// Start.
func New(img *image.Image, cfg Config) *Bridge {
	if cfg.IterateDelay == 0 {
		cfg.IterateDelay = 50 * time.Millisecond
	}
	return &Bridge{
		img: img,
		cfg: cfg,
		newStack: func(port int) Stack {
			return stack.NewServer(port)
		},
	}
}

// State reports the current lifecycle state.
func (b *Bridge) State() State {
	return State(b.state.Load())
}

// Stats reports the manifest accounting of the current lifetime.
func (b *Bridge) Stats() (seen, added int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seen, b.added
}

// Start brings up a fresh server on port. From any state but IDLE
// this is a logged no-op. Per record manifest problems never abort
// startup; lifecycle failures tear the instance down and return the
// bridge to IDLE.
func (b *Bridge) Start(port int) error {
	if !b.state.CompareAndSwap(int32(Idle), int32(Starting)) {
		slog.Info("Server start ignored", "state", b.State().String())
		return nil
	}

	slog.Info("Starting OPC UA server", "port", port,
		"go", runtime.Version(), "os", runtime.GOOS, "arch", runtime.GOARCH)

	srv := b.newStack(port)
	if err := b.startup(srv, port); err != nil {
		slog.Error("Server start failed", "error", err.Error())
		srv.Destroy()
		b.mu.Lock()
		b.srv = nil
		b.bindings = nil
		b.mu.Unlock()
		b.state.Store(int32(Idle))
		return err
	}

	b.state.Store(int32(Running))
	slog.Info("Server running", "port", port)
	return nil
}

// Bring one fresh stack instance all the way up.
func (b *Bridge) startup(srv Stack, port int) error {
	b.mu.Lock()
	b.srv = srv
	b.bindings = nil
	b.nextNode = firstVariableNode
	b.seen = 0
	b.added = 0
	b.mu.Unlock()

	if err := b.ensureNamespace(srv); err != nil {
		return err
	}
	if err := b.ensureFolders(srv); err != nil {
		return err
	}

	path := b.cfg.ManifestPath
	if path == "" {
		found, err := manifest.Find()
		if err != nil {
			return err
		}
		path = found
	}
	records, seen, err := manifest.Load(path)
	if err != nil {
		return err
	}

	added := 0
	skipped := 0
	for _, rec := range records {
		slot, typ, outcome := resolve(b.img, rec.Location)
		if outcome != resolved {
			skipped++
			continue
		}
		if b.addVariable(srv, rec, slot, typ) {
			added++
		}
	}
	b.mu.Lock()
	b.seen = seen
	b.added = added
	b.mu.Unlock()
	slog.Info("Manifest processed", "seen", seen, "added", added, "skipped", skipped)

	if err := srv.RunStartup(); err != nil {
		return err
	}

	b.running.Store(true)
	b.done = make(chan struct{})
	b.wg.Add(1)
	go b.iterate(srv, b.done)
	return nil
}

// Cooperative iterate loop. Exits when the running flag drops.
func (b *Bridge) iterate(srv Stack, done chan struct{}) {
	defer b.wg.Done()
	for b.running.Load() {
		srv.Iterate(true)
		select {
		case <-done:
			return
		case <-time.After(b.cfg.IterateDelay):
		}
	}
}

// Stop shuts the server down and destroys the instance. From any
// state but RUNNING this is a logged no-op.
func (b *Bridge) Stop() {
	if !b.state.CompareAndSwap(int32(Running), int32(Stopping)) {
		slog.Info("Server stop ignored", "state", b.State().String())
		return
	}

	b.running.Store(false)
	close(b.done)

	finished := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(100 * time.Millisecond):
		slog.Warn("Iterate loop still busy, tearing down anyway")
	}

	b.mu.Lock()
	srv := b.srv
	b.srv = nil
	leaked := len(b.bindings)
	b.bindings = nil
	b.mu.Unlock()

	if srv != nil {
		srv.Shutdown()
		srv.Destroy()
	}
	if leaked > 0 {
		slog.Debug("Released bindings", "count", leaked)
	}

	b.state.Store(int32(Idle))
	slog.Info("Server stopped")
}

// Publish is the scan tick entry point, called by the scan engine
// once per cycle after outputs commit. It snapshots the image into
// the shadow cells under the buffer lock, releases, then pushes the
// values into the stack nodes. The stack is never called while the
// buffer lock is held.
func (b *Bridge) Publish() {
	if b.State() != Running {
		return
	}

	b.mu.Lock()
	srv := b.srv
	bindings := b.bindings
	b.mu.Unlock()
	if srv == nil {
		return
	}

	b.img.Lock.Lock()
	for _, bd := range bindings {
		bd.shadow.Store(pack(imageVariant(bd.typ, bd.slot)))
	}
	b.img.Lock.Unlock()

	for _, bd := range bindings {
		if status := srv.WriteValue(bd.node, bd.snapshot()); !status.IsGood() {
			slog.Warn("Publish write failed", "node", bd.node.String(), "status", status.String())
		}
	}
}

// Bindings lists the current bindings for the console.
func (b *Bridge) Bindings() []BindingInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	infos := make([]BindingInfo, 0, len(b.bindings))
	for _, bd := range b.bindings {
		infos = append(infos, BindingInfo{
			Name: bd.name,
			Node: bd.node.String(),
			Type: bd.typ.String(),
		})
	}
	return infos
}

// ReadVariable returns the shadow value of a variable by browse
// name, formatted as text.
func (b *Bridge) ReadVariable(name string) (string, error) {
	bd := b.findBinding(name)
	if bd == nil {
		return "", ErrUnknownVariable
	}
	value := bd.snapshot()
	return value.Type.String() + " " + value.Format(), nil
}

// WriteVariable applies a console write with the same discipline as
// a client write.
func (b *Bridge) WriteVariable(name, text string) error {
	bd := b.findBinding(name)
	if bd == nil {
		return ErrUnknownVariable
	}
	value, err := stack.ParseValue(bd.typ, text)
	if err != nil {
		return err
	}
	b.applyWrite(bd, value)

	b.mu.Lock()
	srv := b.srv
	b.mu.Unlock()
	if srv != nil {
		if status := srv.WriteValue(bd.node, value); !status.IsGood() {
			slog.Warn("Node value update failed", "node", bd.node.String(), "status", status.String())
		}
	}
	return nil
}

func (b *Bridge) findBinding(name string) *binding {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bd := range b.bindings {
		if bd.name == name {
			return bd
		}
	}
	return nil
}
