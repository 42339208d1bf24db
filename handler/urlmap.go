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

package handler

import (
	liberr "github.com/nabbar/golib/errors"

	"github.com/X4/lwan/protocol"
	"github.com/X4/lwan/request"
	"github.com/X4/lwan/router"
)

type fctHandler struct {
	fct FuncHandle
	flg ParseFlag
}

func (o *fctHandler) Init(args interface{}) (interface{}, error) {
	return nil, nil
}

func (o *fctHandler) Handle(req *request.Request, rsp *request.Response, data interface{}) protocol.Status {
	return o.fct(req, rsp, data)
}

func (o *fctHandler) Shutdown(data interface{}) {}

func (o *fctHandler) Flags() ParseFlag {
	return o.flg
}

// URLMap is the ordered set of routes loaded into the dispatch trie at
// server init.
type URLMap []*Route

// Load resolves every route (prefix length, handler init, parse flags,
// callback) and stores it into the given trie. A route whose handler Init
// fails aborts the load.
func (m URLMap) Load(t router.Trie[*Route]) liberr.Error {
	for _, u := range m {
		u.PrefixLen = len(u.Prefix)
		t.Add(u.Prefix, u)

		if u.Handler == nil {
			u.Flags = ParseMask
			continue
		}

		d, e := u.Handler.Init(u.Args)
		if e != nil {
			return ErrorRouteInit.ErrorParent(e)
		}

		u.Data = d
		u.Callback = u.Handler.Handle
		u.Flags = u.Handler.Flags()
	}

	return nil
}

// Shutdown invokes each route handler's Shutdown with its opaque state.
func (m URLMap) Shutdown() {
	for _, u := range m {
		if u.Handler != nil {
			u.Handler.Shutdown(u.Data)
		}
	}
}
