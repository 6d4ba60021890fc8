/*
 * OPCBridge - Minimal OPC UA server stack
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
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

var errServerState = errors.New("server already started or destroyed")

// NodeID names a node by namespace index and numeric identifier.
type NodeID struct {
	Namespace uint16
	ID        uint32
}

func (n NodeID) String() string {
	return strconv.Itoa(int(n.Namespace)) + ":" + strconv.FormatUint(uint64(n.ID), 10)
}

// ParseNodeID reads the "ns:id" wire form.
func ParseNodeID(text string) (NodeID, bool) {
	ns, id, ok := strings.Cut(text, ":")
	if !ok {
		return NodeID{}, false
	}
	nsv, err := strconv.ParseUint(ns, 10, 16)
	if err != nil {
		return NodeID{}, false
	}
	idv, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return NodeID{}, false
	}
	return NodeID{Namespace: uint16(nsv), ID: uint32(idv)}, true
}

// ObjectsFolder is the standard Objects folder every object tree
// hangs from.
var ObjectsFolder = NodeID{Namespace: 0, ID: 85}

// DataValue is a variant plus its presence flag. A read may report
// Good with no value.
type DataValue struct {
	Value    Variant
	HasValue bool
}

// ValueCallback is the read/write hook pair attached to a variable
// node. The ctx argument is the opaque node context registered with
// the callback.
type ValueCallback struct {
	OnRead  func(ctx any) (DataValue, StatusCode)
	OnWrite func(ctx any, value DataValue) StatusCode
}

const (
	classObject = 1 + iota
	classVariable
)

type node struct {
	id          NodeID
	class       int
	browseName  string
	displayName string
	dataType    TypeID
	value       DataValue
	children    []NodeID
	ctx         any
	callback    ValueCallback
	hasCallback bool
}

// Session request served on the iterate thread.
type request struct {
	line  string
	reply chan string
}

// Server is one stack instance. Instances are single use: once
// destroyed they are never restarted, a new instance is created
// instead.
type Server struct {
	mu         sync.Mutex
	port       int
	namespaces []string
	nodes      map[NodeID]*node
	requests   chan request
	listener   *listener
	started    bool
	destroyed  bool
}

// NewServer creates a fresh instance configured for one TCP port.
// Nothing listens until RunStartup.
func NewServer(port int) *Server {
	srv := &Server{
		port:       port,
		namespaces: []string{"http://opcfoundation.org/UA/"},
		nodes:      map[NodeID]*node{},
		requests:   make(chan request, 64),
	}
	srv.nodes[ObjectsFolder] = &node{
		id:          ObjectsFolder,
		class:       classObject,
		browseName:  "Objects",
		displayName: "Objects",
	}
	return srv
}

// AddNamespace registers a namespace URI and returns its index. A
// URI already present returns the existing index.
func (srv *Server) AddNamespace(uri string) uint16 {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	for i, ns := range srv.namespaces {
		if ns == uri {
			return uint16(i)
		}
	}
	srv.namespaces = append(srv.namespaces, uri)
	return uint16(len(srv.namespaces) - 1)
}

// AddObjectNode creates a FolderType object node under parent.
func (srv *Server) AddObjectNode(id, parent NodeID, browseName, displayName string) StatusCode {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if _, ok := srv.nodes[id]; ok {
		return BadNodeIDExists
	}
	parentNode, ok := srv.nodes[parent]
	if !ok {
		return BadParentNodeIDBad
	}
	srv.nodes[id] = &node{
		id:          id,
		class:       classObject,
		browseName:  browseName,
		displayName: displayName,
	}
	parentNode.children = append(parentNode.children, id)
	return Good
}

// AddVariableNode creates a scalar variable node under parent with
// read and write access. The initial value must match the declared
// data type.
func (srv *Server) AddVariableNode(id, parent NodeID, browseName, displayName string, dataType TypeID, initial Variant) StatusCode {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if _, ok := srv.nodes[id]; ok {
		return BadNodeIDExists
	}
	parentNode, ok := srv.nodes[parent]
	if !ok {
		return BadParentNodeIDBad
	}
	if initial.Type != dataType {
		return BadTypeMismatch
	}
	srv.nodes[id] = &node{
		id:          id,
		class:       classVariable,
		browseName:  browseName,
		displayName: displayName,
		dataType:    dataType,
		value:       DataValue{Value: initial, HasValue: true},
	}
	parentNode.children = append(parentNode.children, id)
	return Good
}

// SetValueCallback attaches the read/write hook pair and the node
// context to a variable node.
func (srv *Server) SetValueCallback(id NodeID, ctx any, callback ValueCallback) StatusCode {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	n, ok := srv.nodes[id]
	if !ok || n.class != classVariable {
		return BadNodeIDUnknown
	}
	n.ctx = ctx
	n.callback = callback
	n.hasCallback = true
	return Good
}

// WriteValue stores a value directly into a node, bypassing the
// write callback. This is the publisher path.
func (srv *Server) WriteValue(id NodeID, value Variant) StatusCode {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	n, ok := srv.nodes[id]
	if !ok || n.class != classVariable {
		return BadNodeIDUnknown
	}
	if value.Type != n.dataType {
		return BadTypeMismatch
	}
	n.value = DataValue{Value: value, HasValue: true}
	return Good
}

// RunStartup opens the endpoint. Clients are refused at the
// transport level until this succeeds.
func (srv *Server) RunStartup() error {
	srv.mu.Lock()
	if srv.destroyed || srv.started {
		srv.mu.Unlock()
		return errServerState
	}
	srv.mu.Unlock()

	lst, err := newListener(srv)
	if err != nil {
		return err
	}
	srv.mu.Lock()
	srv.listener = lst
	srv.started = true
	srv.mu.Unlock()
	return nil
}

// Iterate serves queued session requests on the caller's thread.
// With block set it waits briefly for the first request.
func (srv *Server) Iterate(block bool) {
	if block {
		select {
		case req := <-srv.requests:
			req.reply <- srv.execute(req.line)
		case <-time.After(50 * time.Millisecond):
			return
		}
	}
	for {
		select {
		case req := <-srv.requests:
			req.reply <- srv.execute(req.line)
		default:
			return
		}
	}
}

// Shutdown closes the endpoint and ends all sessions.
func (srv *Server) Shutdown() {
	srv.mu.Lock()
	lst := srv.listener
	srv.listener = nil
	srv.started = false
	srv.mu.Unlock()
	if lst != nil {
		lst.stop()
	}
}

// Destroy releases the node table. The instance must not be used
// afterwards.
func (srv *Server) Destroy() {
	srv.Shutdown()
	srv.mu.Lock()
	srv.nodes = nil
	srv.destroyed = true
	srv.mu.Unlock()
}

// Execute one session request line. Runs on the iterate thread.
func (srv *Server) execute(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "error empty request"
	}
	switch fields[0] {
	case "browse":
		if len(fields) != 2 {
			return "error usage: browse <ns:id>"
		}
		return srv.browse(fields[1])
	case "read":
		if len(fields) != 2 {
			return "error usage: read <ns:id>"
		}
		return srv.read(fields[1])
	case "write":
		if len(fields) != 4 {
			return "error usage: write <ns:id> <type> <value>"
		}
		return srv.write(fields[1], fields[2], fields[3])
	}
	return "error unknown request " + fields[0]
}

func (srv *Server) browse(idText string) string {
	id, ok := ParseNodeID(idText)
	if !ok {
		return "error " + BadNodeIDUnknown.String()
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	n, ok := srv.nodes[id]
	if !ok {
		return "error " + BadNodeIDUnknown.String()
	}
	parts := []string{}
	for _, child := range n.children {
		c := srv.nodes[child]
		class := "Object"
		if c.class == classVariable {
			class = "Variable"
		}
		parts = append(parts, c.id.String()+" "+c.browseName+" "+class)
	}
	return "nodes " + strconv.Itoa(len(parts)) + " " + strings.Join(parts, ";")
}

func (srv *Server) read(idText string) string {
	id, ok := ParseNodeID(idText)
	if !ok {
		return "error " + BadNodeIDUnknown.String()
	}
	srv.mu.Lock()
	n, ok := srv.nodes[id]
	if !ok || n.class != classVariable {
		srv.mu.Unlock()
		return "error " + BadNodeIDUnknown.String()
	}
	hasCallback := n.hasCallback
	callback := n.callback
	ctx := n.ctx
	value := n.value
	srv.mu.Unlock()

	status := Good
	if hasCallback {
		value, status = callback.OnRead(ctx)
	}
	if !status.IsGood() {
		return "error " + status.String()
	}
	if !value.HasValue {
		return "novalue"
	}
	return "value " + value.Value.Type.String() + " " + value.Value.Format()
}

func (srv *Server) write(idText, typeName, text string) string {
	id, ok := ParseNodeID(idText)
	if !ok {
		return "error " + BadNodeIDUnknown.String()
	}
	dataType, ok := TypeByName(typeName)
	if !ok {
		return "error " + BadTypeMismatch.String()
	}
	value, err := ParseValue(dataType, text)
	if err != nil {
		return "error " + BadTypeMismatch.String()
	}

	srv.mu.Lock()
	n, ok := srv.nodes[id]
	if !ok || n.class != classVariable {
		srv.mu.Unlock()
		return "error " + BadNodeIDUnknown.String()
	}
	if value.Type != n.dataType {
		srv.mu.Unlock()
		return "error " + BadTypeMismatch.String()
	}
	hasCallback := n.hasCallback
	callback := n.callback
	ctx := n.ctx
	srv.mu.Unlock()

	var status StatusCode
	if hasCallback {
		status = callback.OnWrite(ctx, DataValue{Value: value, HasValue: true})
	} else {
		status = srv.WriteValue(id, value)
	}
	if !status.IsGood() {
		slog.Debug("Write rejected", "node", id.String(), "status", status.String())
		return "error " + status.String()
	}
	// Keep the node value current after a callback write.
	if hasCallback {
		srv.WriteValue(id, value)
	}
	return "ok"
}
