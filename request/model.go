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

package request

// emptyQuery is the shared sentinel bound to every slot that carries no
// query string. It marks "nothing owned": Reset rebinds to it instead of
// allocating, and IsQueryOwned discriminates it from handler-owned storage.
var emptyQuery = make([]KV, 0)

// Reset prepares the slot for a new request at the start of a coroutine run.
// It preserves the fd, the owner back-reference, the coroutine and the
// response buffer; the buffer is truncated keeping its capacity, the query
// string returns to the shared sentinel, and every other field is zeroed.
func (r *Request) Reset() {
	var (
		fd  = r.Fd
		own = r.Owner
		cor = r.Coro
		buf = r.Response.Buffer
	)

	*r = Request{}

	r.Fd = fd
	r.Owner = own
	r.Coro = cor
	r.Response.Buffer = buf
	r.Response.Buffer.Reset()
	r.qry = emptyQuery
}

// Query returns the current query-string pairs. The returned slice is the
// shared empty sentinel when no query string was parsed.
func (r *Request) Query() []KV {
	return r.qry
}

// SetQuery installs owned query-string storage on the slot.
func (r *Request) SetQuery(kv []KV) {
	if kv == nil {
		kv = emptyQuery
		r.qry = kv
		r.qryOwned = false
		return
	}

	r.qry = kv
	r.qryOwned = true
}

// IsQueryOwned reports whether the slot points at owned storage rather than
// the shared sentinel.
func (r *Request) IsQueryOwned() bool {
	return r.qryOwned
}

// QueryGet returns the first value stored for the given key.
func (r *Request) QueryGet(key string) (string, bool) {
	for i := range r.qry {
		if r.qry[i].Key == key {
			return r.qry[i].Value, true
		}
	}

	return "", false
}
