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

// Package process drives one HTTP exchange on a connection slot. It runs
// entirely inside the slot's coroutine: it reads the request head from the
// non-blocking socket, parses the request line and headers, dispatches the
// path through the URL trie, invokes the route handler, and serializes the
// response. Writes that would block yield back to the worker, which flips
// the readiness interest to write and resumes the coroutine when the socket
// drains.
package process

import (
	liblog "github.com/nabbar/golib/logger"

	"github.com/X4/lwan/handler"
	"github.com/X4/lwan/request"
	"github.com/X4/lwan/router"
)

// Processor runs HTTP exchanges against a loaded route trie.
type Processor interface {
	// Serve handles one exchange on the given slot. It must be called from
	// inside the slot's coroutine, after the slot has been reset.
	Serve(req *request.Request)
}

// New returns a Processor dispatching through the given trie.
func New(routes router.Trie[*handler.Route], log liblog.FuncLog) Processor {
	return &prc{
		rts: routes,
		log: log,
	}
}
