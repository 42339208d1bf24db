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
	"fmt"
	"time"

	loglvl "github.com/nabbar/golib/logger/level"

	"golang.org/x/sys/unix"

	"github.com/X4/lwan/protocol"
	"github.com/X4/lwan/request"
)

const dateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// readHead performs the single non-blocking read the parser works from. The
// worker only resumes the slot on read readiness, so a would-block result
// here means a spurious wake and is reported as no data.
func (o *prc) readHead(req *request.Request, buf []byte) int {
	for {
		n, err := unix.Read(req.Fd, buf)

		if err == unix.EINTR {
			continue
		} else if err != nil {
			return 0
		}

		return n
	}
}

// respond serializes the status line, headers and body, then writes them
// out, yielding whenever the socket stops accepting bytes.
func (o *prc) respond(req *request.Request, st protocol.Status) {
	body := req.Response.Buffer

	if st != protocol.StatusOK && body.Len() == 0 {
		req.Response.MimeType = "text/html"
		fmt.Fprintf(body,
			"<html><head><title>%d %s</title></head><body><h1>%s</h1><p>%s</p></body></html>",
			int(st), st.Reason(), st.Reason(), st.Description())
	}

	mime := req.Response.MimeType
	if mime == "" {
		mime = protocol.MimeTypeDefault
	}

	version := req.Version
	if version == "" {
		version = "HTTP/1.0"
	}

	connection := "close"
	if req.KeepAlive {
		connection = "keep-alive"
	}

	head := fmt.Sprintf("%s %d %s\r\nDate: %s\r\nContent-Type: %s\r\nContent-Length: %d\r\nConnection: %s\r\n\r\n",
		version, int(st), st.Reason(),
		time.Now().UTC().Format(dateLayout),
		mime, body.Len(), connection)

	if !o.writeAll(req, []byte(head)) {
		return
	}

	if req.Method == "HEAD" {
		return
	}

	o.writeAll(req, body.Bytes())
}

// writeAll drains the given bytes into the socket. EAGAIN suspends the
// coroutine; the worker flips interest to write and resumes once the socket
// is writable again. Any other failure kills connection reuse.
func (o *prc) writeAll(req *request.Request, b []byte) bool {
	for len(b) > 0 {
		n, err := unix.Write(req.Fd, b)

		if err == unix.EAGAIN {
			req.Coro.Yield()
			continue
		} else if err == unix.EINTR {
			continue
		} else if err != nil {
			o.logger().Entry(loglvl.DebugLevel, "connection write failed").FieldAdd("fd", req.Fd).ErrorAdd(true, err).Log()
			req.KeepAlive = false
			return false
		}

		b = b[n:]
	}

	return true
}
