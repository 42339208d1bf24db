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

// lifecycle_test.go covers connection scheduling across time: keep-alive
// reuse, peer hangups, idle reaping, fan-out under load and shutdown.
package server_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/X4/lwan/protocol"
	libsrv "github.com/X4/lwan/server"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server Lifecycle", func() {
	var srv libsrv.Server

	AfterEach(func() {
		if srv != nil {
			_ = srv.Stop(globalCtx)
		}
	})

	Context("keep-alive reuse", func() {
		It("should serve sequential requests over one connection", func() {
			srv = newTestServer(2, 15)
			startTestServer(srv)

			cli := connectClient(srv.Addr())
			defer cli.close()

			cli.send("GET /?name=one HTTP/1.1\r\nHost: t\r\n\r\n")
			rsp := cli.readResponse()
			Expect(rsp.Status).To(Equal(int(protocol.StatusOK)))
			Expect(rsp.Body).To(Equal("Hello, one!\n"))
			Expect(rsp.Headers["connection"]).To(Equal("keep-alive"))

			cli.send("GET /?name=two HTTP/1.1\r\nHost: t\r\n\r\n")
			rsp = cli.readResponse()
			Expect(rsp.Status).To(Equal(int(protocol.StatusOK)))
			Expect(rsp.Body).To(Equal("Hello, two!\n"))
		})

		It("should close an HTTP/1.0 connection after the exchange", func() {
			srv = newTestServer(1, 1)
			startTestServer(srv)

			cli := connectClient(srv.Addr())
			defer cli.close()

			cli.send("GET / HTTP/1.0\r\n\r\n")
			rsp := cli.readResponse()

			Expect(rsp.Status).To(Equal(int(protocol.StatusOK)))
			Expect(rsp.Headers["connection"]).To(Equal("close"))

			cli.waitClosed(5 * time.Second)
		})
	})

	Context("idle timeout", func() {
		It("should reap a keep-alive connection after the grace ticks", func() {
			srv = newTestServer(1, 1)
			startTestServer(srv)

			cli := connectClient(srv.Addr())
			defer cli.close()

			cli.send("GET / HTTP/1.1\r\nHost: t\r\n\r\n")
			Expect(cli.readResponse().Status).To(Equal(int(protocol.StatusOK)))

			// one idle tick expires the slot; the worker closes the fd
			cli.waitClosed(8 * time.Second)
		})
	})

	Context("peer hangup", func() {
		It("should survive clients that connect and leave silently", func() {
			srv = newTestServer(2, 15)
			startTestServer(srv)

			for i := 0; i < 10; i++ {
				cli := connectClient(srv.Addr())
				cli.close()
			}

			// the reactor keeps serving after the hangup storm
			cli := connectClient(srv.Addr())
			defer cli.close()

			cli.send("GET / HTTP/1.1\r\nHost: t\r\n\r\n")
			Expect(cli.readResponse().Status).To(Equal(int(protocol.StatusOK)))
		})
	})

	Context("fan-out", func() {
		It("should serve many concurrent connections", func() {
			srv = newTestServer(2, 15)
			startTestServer(srv)

			var wg sync.WaitGroup

			for i := 0; i < 8; i++ {
				wg.Add(1)

				go func(n int) {
					defer GinkgoRecover()
					defer wg.Done()

					cli := connectClient(srv.Addr())
					defer cli.close()

					cli.send(fmt.Sprintf("GET /?name=c%d HTTP/1.1\r\nHost: t\r\n\r\n", n))
					rsp := cli.readResponse()

					Expect(rsp.Status).To(Equal(int(protocol.StatusOK)))
					Expect(rsp.Body).To(Equal(fmt.Sprintf("Hello, c%d!\n", n)))
				}(i)
			}

			wg.Wait()
		})
	})

	Context("shutdown", func() {
		It("should stop with live keep-alive connections and release them", func() {
			srv = newTestServer(2, 15)
			startTestServer(srv)

			var clis []*testClient

			for i := 0; i < 4; i++ {
				cli := connectClient(srv.Addr())
				cli.send("GET / HTTP/1.1\r\nHost: t\r\n\r\n")
				Expect(cli.readResponse().Status).To(Equal(int(protocol.StatusOK)))
				clis = append(clis, cli)
			}

			Expect(srv.Stop(globalCtx)).To(Succeed())
			Expect(srv.IsRunning()).To(BeFalse())

			for _, cli := range clis {
				cli.waitClosed(5 * time.Second)
				cli.close()
			}
		})

		It("should start again after a stop", func() {
			srv = newTestServer(1, 15)
			startTestServer(srv)

			Expect(srv.Stop(globalCtx)).To(Succeed())
			Eventually(srv.IsRunning, 2*time.Second, 10*time.Millisecond).Should(BeFalse())

			startTestServer(srv)

			cli := connectClient(srv.Addr())
			defer cli.close()

			cli.send("GET / HTTP/1.1\r\nHost: t\r\n\r\n")
			Expect(cli.readResponse().Status).To(Equal(int(protocol.StatusOK)))
		})
	})
})
