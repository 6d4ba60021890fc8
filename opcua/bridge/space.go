/*
 * OPCBridge - Address space construction
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

	"github.com/rcornwell/OPCBridge/config/manifest"
	"github.com/rcornwell/OPCBridge/opcua/stack"
	"github.com/rcornwell/OPCBridge/plc/image"
)

// Namespace all bridge nodes live in.
const namespaceURI = "http://openplc.org/"

// Fixed node ids in the bridge namespace.
const (
	nodeOpenPLC          = 1000
	nodeBooleanInputs    = 2000
	nodeBooleanOutputs   = 2001
	nodeIntegerInputs    = 2002
	nodeIntegerOutputs   = 2003
	nodeMemoryVariables  = 2004
	nodeProgramVariables = 2100

	// Variable node ids count up from here, one per binding.
	firstVariableNode = 4000000
)

var errNamespace = errors.New("stack returned namespace index 0")

type folderSpec struct {
	id     uint32
	parent stack.NodeID
	name   string
}

// ensureNamespace registers the bridge namespace. Index 0 is the
// base OPC UA namespace and means registration failed.
func (b *Bridge) ensureNamespace(srv Stack) error {
	ns := srv.AddNamespace(namespaceURI)
	if ns == 0 {
		return errNamespace
	}
	b.ns = ns
	return nil
}

// ensureFolders builds the fixed object tree. Folders that already
// exist are fine; any other stack status is fatal.
func (b *Bridge) ensureFolders(srv Stack) error {
	root := stack.NodeID{Namespace: b.ns, ID: nodeOpenPLC}
	folders := []folderSpec{
		{nodeOpenPLC, stack.ObjectsFolder, "OpenPLC"},
		{nodeBooleanInputs, root, "BooleanInputs"},
		{nodeBooleanOutputs, root, "BooleanOutputs"},
		{nodeIntegerInputs, root, "IntegerInputs"},
		{nodeIntegerOutputs, root, "IntegerOutputs"},
		{nodeMemoryVariables, root, "MemoryVariables"},
		{nodeProgramVariables, root, "ProgramVariables"},
	}

	for _, folder := range folders {
		id := stack.NodeID{Namespace: b.ns, ID: folder.id}
		status := srv.AddObjectNode(id, folder.parent, folder.name, folder.name)
		if status != stack.Good && status != stack.BadNodeIDExists {
			return errors.New("folder " + folder.name + ": " + status.String())
		}
	}
	return nil
}

// addVariable creates the node for one resolved manifest record and
// its binding. A duplicate node id is logged and skipped, never
// fatal. Returns whether the variable was added.
func (b *Bridge) addVariable(srv Stack, rec manifest.Record, slot image.Slot, typ stack.TypeID) bool {
	b.mu.Lock()
	id := stack.NodeID{Namespace: b.ns, ID: b.nextNode}
	b.nextNode++
	b.mu.Unlock()

	parent := stack.NodeID{Namespace: b.ns, ID: nodeProgramVariables}
	status := srv.AddVariableNode(id, parent, rec.Name, rec.Name, typ, stack.Zero(typ))
	if status == stack.BadNodeIDExists {
		slog.Warn("Node id already exists, skipping", "node", id.String(), "name", rec.Name)
		return false
	}
	if status != stack.Good {
		slog.Warn("Unable to add variable node", "name", rec.Name, "status", status.String())
		return false
	}

	bd := &binding{node: id, name: rec.Name, typ: typ, slot: slot}
	b.mu.Lock()
	b.bindings = append(b.bindings, bd)
	handle := len(b.bindings) - 1
	b.mu.Unlock()

	status = srv.SetValueCallback(id, handle, stack.ValueCallback{
		OnRead:  b.onRead,
		OnWrite: b.onWrite,
	})
	if status != stack.Good {
		slog.Warn("Unable to attach value callback", "name", rec.Name, "status", status.String())
	}
	slog.Debug("Added variable", "name", rec.Name, "node", id.String(), "type", typ.String())
	return true
}
