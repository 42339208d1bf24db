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

// helper_test.go provides the shared helpers of the server specs: server
// bring-up with a demo route set, and a tiny HTTP/1.x test client speaking
// over a raw connection.
package server_test

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/X4/lwan/handler"
	"github.com/X4/lwan/protocol"
	"github.com/X4/lwan/request"
	libsrv "github.com/X4/lwan/server"

	. "github.com/onsi/gomega"
)

func testURLMap() handler.URLMap {
	return handler.URLMap{
		&handler.Route{
			Prefix: "/",
			Handler: handler.NewFunc(func(req *request.Request, rsp *request.Response, data interface{}) protocol.Status {
				name := "world"
				if v, ok := req.QueryGet("name"); ok && v != "" {
					name = v
				}

				rsp.MimeType = "text/plain"
				fmt.Fprintf(rsp.Buffer, "Hello, %s!\n", name)

				return protocol.StatusOK
			}, handler.ParseQueryString),
		},
		&handler.Route{
			Prefix: "/big",
			Handler: handler.NewFunc(func(req *request.Request, rsp *request.Response, data interface{}) protocol.Status {
				rsp.MimeType = "application/octet-stream"
				rsp.Buffer.Write(make([]byte, 256*1024))

				return protocol.StatusOK
			}, 0),
		},
		&handler.Route{
			Prefix: "/boom",
			Handler: handler.NewFunc(func(req *request.Request, rsp *request.Response, data interface{}) protocol.Status {
				panic("boom")
			}, 0),
		},
	}
}

func newTestServer(workers int, keepAlive uint64) libsrv.Server {
	cfg := libsrv.NewConfig()
	cfg.Name = "reactor-test"
	cfg.Listen = "127.0.0.1:0"
	cfg.KeepAliveTimeout = keepAlive
	cfg.Workers = workers

	srv, err := libsrv.New(cfg, nil)
	Expect(err).ToNot(HaveOccurred())
	Expect(srv.SetURLMap(testURLMap())).To(Succeed())

	return srv
}

func newTestServerWithPrefix(prefix string) libsrv.Server {
	cfg := libsrv.NewConfig()
	cfg.Name = "reactor-test"
	cfg.Listen = "127.0.0.1:0"
	cfg.Workers = 1

	srv, err := libsrv.New(cfg, nil)
	Expect(err).ToNot(HaveOccurred())

	m := handler.URLMap{
		&handler.Route{
			Prefix: prefix,
			Handler: handler.NewFunc(func(req *request.Request, rsp *request.Response, data interface{}) protocol.Status {
				rsp.MimeType = "text/plain"
				rsp.Buffer.WriteString("ok")

				return protocol.StatusOK
			}, 0),
		},
	}

	Expect(srv.SetURLMap(m)).To(Succeed())

	return srv
}

func startTestServer(srv libsrv.Server) {
	Expect(srv.Start(globalCtx)).To(Succeed())
	Eventually(srv.IsRunning, 2*time.Second, 10*time.Millisecond).Should(BeTrue())

	// wait until the listening socket is bound and accepting
	Eventually(func() error {
		addr := srv.Addr()
		if strings.HasSuffix(addr, ":0") {
			return fmt.Errorf("socket not bound yet")
		}

		con, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err != nil {
			return err
		}

		return con.Close()
	}, 3*time.Second, 20*time.Millisecond).Should(Succeed())
}

type testClient struct {
	con net.Conn
	rdr *bufio.Reader
}

type testResponse struct {
	Status  int
	Headers map[string]string
	Body    string
}

func connectClient(addr string) *testClient {
	con, err := net.DialTimeout("tcp", addr, 2*time.Second)
	Expect(err).ToNot(HaveOccurred())

	return &testClient{
		con: con,
		rdr: bufio.NewReader(con),
	}
}

func (c *testClient) close() {
	_ = c.con.Close()
}

func (c *testClient) send(raw string) {
	_ = c.con.SetWriteDeadline(time.Now().Add(2 * time.Second))
	_, err := c.con.Write([]byte(raw))
	Expect(err).ToNot(HaveOccurred())
}

// readResponse parses one status line, the headers and a Content-Length
// delimited body.
func (c *testClient) readResponse() testResponse {
	_ = c.con.SetReadDeadline(time.Now().Add(5 * time.Second))

	line, err := c.rdr.ReadString('\n')
	Expect(err).ToNot(HaveOccurred())

	parts := strings.SplitN(strings.TrimRight(line, "\r\n"), " ", 3)
	Expect(len(parts)).To(BeNumerically(">=", 2))

	code, err := strconv.Atoi(parts[1])
	Expect(err).ToNot(HaveOccurred())

	rsp := testResponse{
		Status:  code,
		Headers: make(map[string]string),
	}

	for {
		line, err = c.rdr.ReadString('\n')
		Expect(err).ToNot(HaveOccurred())

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		if k, v, ok := strings.Cut(line, ":"); ok {
			rsp.Headers[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}
	}

	if cl := rsp.Headers["content-length"]; cl != "" {
		n, e := strconv.Atoi(cl)
		Expect(e).ToNot(HaveOccurred())

		body := make([]byte, n)
		_, err = io.ReadFull(c.rdr, body)
		Expect(err).ToNot(HaveOccurred())

		rsp.Body = string(body)
	}

	return rsp
}

// readHead reads a status line and headers but leaves any body unread, for
// HEAD exchanges.
func (c *testClient) readHead() testResponse {
	_ = c.con.SetReadDeadline(time.Now().Add(5 * time.Second))

	line, err := c.rdr.ReadString('\n')
	Expect(err).ToNot(HaveOccurred())

	parts := strings.SplitN(strings.TrimRight(line, "\r\n"), " ", 3)
	Expect(len(parts)).To(BeNumerically(">=", 2))

	code, err := strconv.Atoi(parts[1])
	Expect(err).ToNot(HaveOccurred())

	rsp := testResponse{
		Status:  code,
		Headers: make(map[string]string),
	}

	for {
		line, err = c.rdr.ReadString('\n')
		Expect(err).ToNot(HaveOccurred())

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return rsp
		}

		if k, v, ok := strings.Cut(line, ":"); ok {
			rsp.Headers[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}
	}
}

// waitClosed waits for the server side to close the connection.
func (c *testClient) waitClosed(timeout time.Duration) {
	_ = c.con.SetReadDeadline(time.Now().Add(timeout))

	var one [1]byte

	for {
		_, err := c.con.Read(one[:])
		if err != nil {
			Expect(os.IsTimeout(err)).To(BeFalse(), "connection was not closed by the server in time")
			return
		}
	}
}
