/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package request holds the per-connection scratch state of the server: a
// dense table of slots indexed by raw file descriptor, each slot carrying the
// flags the worker reactor schedules on, a response buffer pre-allocated for
// the slot's whole life, and the parsed query string.
//
// Slots are reset, never reallocated: the reset discipline preserves the fd,
// the coroutine, the back-reference to the server and the response buffer
// (truncated, capacity retained), and zeroes everything else.
package request

import (
	"bytes"

	"github.com/X4/lwan/coroutine"
	"github.com/X4/lwan/protocol"
)

// responseBufferSize is the capacity pre-grown into every slot's response
// buffer at table allocation.
const responseBufferSize = 512

// KV is one query-string pair.
type KV struct {
	Key   string
	Value string
}

// Owner is the non-owning back-reference from a slot to the server that
// allocated it.
type Owner interface {
	// KeepAliveTimeout returns the configured keep-alive timeout in worker
	// idle ticks.
	KeepAliveTimeout() uint64
}

// Response is the slot's side of the HTTP exchange: the handler writes the
// body into Buffer and sets MimeType; the processor serializes both.
type Response struct {
	Buffer   *bytes.Buffer
	MimeType string
}

// Request is one slot of the table. The scheduling fields (Alive,
// ShouldResume, WriteEvents, TimeToDie) are owned by the single worker
// driving the slot's fd; nothing else may touch them.
type Request struct {
	// Fd is the socket descriptor, also the slot's index in the table.
	Fd int

	// Alive is true while the slot owns a live connection.
	Alive bool

	// ShouldResume is true while the slot's coroutine has pending work and
	// wants another resume.
	ShouldResume bool

	// WriteEvents is the current readiness interest: false for read, true
	// for write.
	WriteEvents bool

	// KeepAlive is true when the HTTP exchange requested connection reuse.
	KeepAlive bool

	// TimeToDie is the absolute expiry tick on the owning worker's clock.
	TimeToDie uint64

	// Coro drives the connection; nil while the slot is idle.
	Coro coroutine.Coro

	// Owner is the server back-reference. Never reset.
	Owner Owner

	// Method, Path, RawQuery and Version are filled by the request
	// processor.
	Method   string
	Path     string
	RawQuery string
	Version  string

	// Status is the handler's outcome, serialized on the status line.
	Status protocol.Status

	// Response is the slot's response scratch. The buffer exists for the
	// slot's entire life.
	Response Response

	qry      []KV
	qryOwned bool
}

// Table is the dense slot array, indexed by raw fd so readiness events
// dispatch in O(1). It is sized once; the server sizes it to the raised
// process fd soft limit, capped at 16384 slots.
type Table struct {
	slots []Request
}

// NewTable allocates a table of the given size with every slot's response
// buffer pre-grown and the back-reference installed.
func NewTable(size int, own Owner) *Table {
	t := &Table{
		slots: make([]Request, size),
	}

	for i := range t.slots {
		t.slots[i].Fd = i
		t.slots[i].Owner = own
		t.slots[i].Response.Buffer = bytes.NewBuffer(make([]byte, 0, responseBufferSize))
		t.slots[i].qry = emptyQuery
	}

	return t
}

// Get returns the slot for the given fd, or nil when the fd is outside the
// table.
func (t *Table) Get(fd int) *Request {
	if fd < 0 || fd >= len(t.slots) {
		return nil
	}

	return &t.slots[fd]
}

// Size returns the number of slots.
func (t *Table) Size() int {
	return len(t.slots)
}
