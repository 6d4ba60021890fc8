/*
 * OPCBridge - Stack value callbacks
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
	"log/slog"

	"github.com/rcornwell/OPCBridge/opcua/stack"
)

// lookupBinding resolves a node context handle to its binding. The
// handle is an index into the current lifetime's binding list: a
// handle outside it resolves to nothing rather than a dangling
// pointer; a handle from a previous lifetime that falls inside it
// resolves to the binding now at that index.
func (b *Bridge) lookupBinding(ctx any) *binding {
	handle, ok := ctx.(int)
	if !ok {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if handle < 0 || handle >= len(b.bindings) {
		return nil
	}
	return b.bindings[handle]
}

// onRead serves a client read from the shadow cell. It never
// touches the live image and never takes the buffer lock. A missing
// binding reports Good with no value.
func (b *Bridge) onRead(ctx any) (stack.DataValue, stack.StatusCode) {
	bd := b.lookupBinding(ctx)
	if bd == nil {
		return stack.DataValue{}, stack.Good
	}
	value := bd.snapshot()
	if b.cfg.LegacyEmptyReads {
		// Mirror of the historical behavior: populate the variant
		// but report no value.
		return stack.DataValue{Value: value, HasValue: false}, stack.Good
	}
	return stack.DataValue{Value: value, HasValue: true}, stack.Good
}

// onWrite applies a client write to the image and the shadow under
// one buffer lock acquisition. The declared type must match exactly.
func (b *Bridge) onWrite(ctx any, value stack.DataValue) stack.StatusCode {
	bd := b.lookupBinding(ctx)
	if bd == nil {
		return stack.BadNodeIDUnknown
	}
	if !value.HasValue || value.Value.Type != bd.typ {
		slog.Debug("Write type mismatch", "name", bd.name,
			"want", bd.typ.String(), "got", value.Value.Type.String())
		return stack.BadTypeMismatch
	}
	b.applyWrite(bd, value.Value)
	return stack.Good
}

// applyWrite stores a checked value into both the image cell and
// the shadow, atomically with respect to the scan tick.
func (b *Bridge) applyWrite(bd *binding, value stack.Variant) {
	b.img.Lock.Lock()
	storeImage(bd.slot, value)
	bd.shadow.Store(pack(value))
	b.img.Lock.Unlock()
}
