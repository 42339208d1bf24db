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

// Package handler defines the route plug-in contract: the handler vtable
// invoked per request, the parse flags a route hands to the request parser,
// and the URL map assembly that loads routes into the dispatch trie.
package handler

import (
	"github.com/X4/lwan/protocol"
	"github.com/X4/lwan/request"
)

// ParseFlag tells the request parser what to parse before the handler runs.
type ParseFlag uint8

const (
	// ParseQueryString asks for the query string to be split into the
	// slot's key/value pairs.
	ParseQueryString ParseFlag = 1 << iota

	// ParseHeaders asks for the request headers to be parsed into a map.
	ParseHeaders
)

// ParseMask is the default when a route has no handler: all parse bits set.
const ParseMask = ParseQueryString | ParseHeaders

// FuncHandle is the per-request callback of a route.
type FuncHandle func(req *request.Request, rsp *request.Response, data interface{}) protocol.Status

// Handler is the route plug-in vtable.
type Handler interface {
	// Init is invoked once per route at server init with the route's args
	// and returns the opaque per-route state passed to Handle and Shutdown.
	Init(args interface{}) (interface{}, error)

	// Handle is invoked per request and returns the HTTP status to
	// serialize.
	Handle(req *request.Request, rsp *request.Response, data interface{}) protocol.Status

	// Shutdown is invoked once per route at server shutdown.
	Shutdown(data interface{})

	// Flags returns the parse bits this handler needs.
	Flags() ParseFlag
}

// Route associates a URL prefix with a handler.
type Route struct {
	// Prefix is the URL prefix the route is dispatched on.
	Prefix string

	// PrefixLen is filled at load time.
	PrefixLen int

	// Handler is the plug-in; may be nil for routes installed with a bare
	// Callback.
	Handler Handler

	// Args is handed to Handler.Init at load time.
	Args interface{}

	// Data is the opaque state returned by Handler.Init.
	Data interface{}

	// Flags are the parse bits; defaulted to ParseMask when no handler is
	// present.
	Flags ParseFlag

	// Callback is the resolved per-request function.
	Callback FuncHandle
}

// NewFunc wraps a bare function as a Handler with the given parse flags and
// no per-route state.
func NewFunc(fct FuncHandle, flags ParseFlag) Handler {
	return &fctHandler{
		fct: fct,
		flg: flags,
	}
}
