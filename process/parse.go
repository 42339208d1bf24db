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
	"bytes"
	"net/url"
	"strings"

	"github.com/X4/lwan/hashmap"
	"github.com/X4/lwan/request"
)

var crlf = []byte("\r\n")

// parseRequestLine consumes the first line of the head, filling the slot's
// method, path (query stripped) and version. The raw query, when present, is
// stashed on the slot for parseQueryString.
func parseRequestLine(req *request.Request, head *[]byte) bool {
	i := bytes.Index(*head, crlf)
	if i < 0 {
		return false
	}

	line := string((*head)[:i])
	*head = (*head)[i+2:]

	m, rest, ok := strings.Cut(line, " ")
	if !ok {
		return false
	}

	p, v, ok := strings.Cut(rest, " ")
	if !ok || p == "" || p[0] != '/' || !strings.HasPrefix(v, "HTTP/") {
		return false
	}

	req.Method = m
	req.Version = v
	req.Path, req.RawQuery = splitQuery(p)

	return true
}

func splitQuery(p string) (string, string) {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		return p[:i], p[i+1:]
	}

	return p, ""
}

// parseHeaders consumes header lines up to the empty line, returning them
// lower-cased in a bucketed map.
func parseHeaders(head *[]byte) (hashmap.Hash[string, string], bool) {
	hdr := hashmap.NewString[string](32)

	for {
		i := bytes.Index(*head, crlf)
		if i < 0 {
			// head ended without the empty line: truncated request
			return nil, false
		}

		line := string((*head)[:i])
		*head = (*head)[i+2:]

		if line == "" {
			return hdr, true
		}

		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return nil, false
		}

		hdr.Add(strings.ToLower(strings.TrimSpace(k)), strings.TrimSpace(v))
	}
}

// wantKeepAlive applies the HTTP/1.x connection-reuse defaults: 1.1 keeps
// alive unless the peer opts out, 1.0 only when it opts in.
func wantKeepAlive(version string, hdr hashmap.Hash[string, string]) bool {
	c, _ := hdr.Get("connection")
	c = strings.ToLower(c)

	if version == "HTTP/1.1" {
		return c != "close"
	}

	return c == "keep-alive"
}

// parseQueryString splits the slot's raw query into owned key/value pairs.
func parseQueryString(req *request.Request) {
	raw := req.RawQuery

	if raw == "" {
		return
	}

	var kv []request.KV

	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}

		k, v, _ := strings.Cut(part, "=")

		if d, err := url.QueryUnescape(k); err == nil {
			k = d
		}
		if d, err := url.QueryUnescape(v); err == nil {
			v = d
		}

		kv = append(kv, request.KV{Key: k, Value: v})
	}

	if len(kv) > 0 {
		req.SetQuery(kv)
	}
}
