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

package process

import (
	"errors"

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"

	"github.com/X4/lwan/coroutine"
	"github.com/X4/lwan/handler"
	"github.com/X4/lwan/protocol"
	"github.com/X4/lwan/request"
	"github.com/X4/lwan/router"
)

// headBufferSize bounds the request head: a head that fills the buffer
// before its headers end is rejected with 413; a request line longer than
// the buffer gets 400.
const headBufferSize = 4096

type prc struct {
	rts router.Trie[*handler.Route]
	log liblog.FuncLog
}

func (o *prc) logger() liblog.Logger {
	if o.log != nil {
		if l := o.log(); l != nil {
			return l
		}
	}

	return liblog.New(nil)
}

func (o *prc) Serve(req *request.Request) {
	var buf [headBufferSize]byte

	n := o.readHead(req, buf[:])
	if n <= 0 {
		// nothing readable on a readiness wake is a dead or misbehaving
		// peer; drop without an answer.
		req.KeepAlive = false
		return
	}

	st := o.exchange(req, buf[:n])
	req.Status = st

	o.respond(req, st)
}

func (o *prc) exchange(req *request.Request, head []byte) protocol.Status {
	full := len(head) == headBufferSize

	if !parseRequestLine(req, &head) {
		req.KeepAlive = false
		return protocol.StatusBadRequest
	}

	hdr, ok := parseHeaders(&head)
	if !ok {
		req.KeepAlive = false
		if full {
			return protocol.StatusTooLarge
		}
		return protocol.StatusBadRequest
	}

	req.KeepAlive = wantKeepAlive(req.Version, hdr)

	if req.Method != "GET" && req.Method != "HEAD" {
		return protocol.StatusNotAllowed
	}

	rte, fnd := o.rts.FindPrefix(req.Path)
	if !fnd || rte.Callback == nil {
		return protocol.StatusNotFound
	}

	if rte.Flags&handler.ParseQueryString != 0 {
		parseQueryString(req)
	}

	return o.invoke(req, rte)
}

// invoke shields the worker from handler panics: a failed handler costs the
// offending slot a 500, never the loop.
func (o *prc) invoke(req *request.Request, rte *handler.Route) (st protocol.Status) {
	defer func() {
		if r := recover(); r != nil {
			// the coroutine teardown unwind must keep going
			if e, ok := r.(error); ok && errors.Is(e, coroutine.ErrFreed) {
				panic(r)
			}

			o.logger().Entry(loglvl.ErrorLevel, "route handler panicked").FieldAdd("prefix", rte.Prefix).FieldAdd("recover", r).Log()
			st = protocol.StatusInternalError
		}
	}()

	return rte.Callback(req, &req.Response, rte.Data)
}
