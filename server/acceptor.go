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

package server

import (
	liberr "github.com/nabbar/golib/errors"
	loglvl "github.com/nabbar/golib/logger/level"

	"golang.org/x/sys/unix"
)

// acceptor is the single loop draining the listening socket. Its readiness
// set watches three sources: the listening socket, the directory-watch fd
// and a shutdown eventfd written by the lifecycle.
type acceptor struct {
	epl int
	stp int
	srv *srv
	rrc uint64 // round-robin counter over the workers
}

func newAcceptor(s *srv) (*acceptor, liberr.Error) {
	epl, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, ErrorAcceptorCreate.ErrorParent(err)
	}

	stp, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epl)
		return nil, ErrorAcceptorCreate.ErrorParent(err)
	}

	a := &acceptor{
		epl: epl,
		stp: stp,
		srv: s,
	}

	for _, fd := range []int{s.msk, s.wts.Fd(), stp} {
		ev := unix.EpollEvent{Events: uint32(unix.EPOLLIN), Fd: int32(fd)}

		if err = unix.EpollCtl(epl, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
			_ = unix.Close(stp)
			_ = unix.Close(epl)
			return nil, ErrorAcceptorCreate.ErrorParent(err)
		}
	}

	return a, nil
}

func (a *acceptor) run() {
	defer a.srv.wga.Done()

	var events [128]unix.EpollEvent

	for {
		n, err := unix.EpollWait(a.epl, events[:], -1)

		if err == unix.EINTR {
			continue
		} else if err != nil {
			return
		}

		for i := 0; i < n; i++ {
			switch int(events[i].Fd) {
			case a.stp:
				return
			case a.srv.msk:
				a.drainAccept()
			case a.srv.wts.Fd():
				a.srv.wts.ProcessEvents()
			}
		}
	}
}

// drainAccept empties the listening socket on each readiness: under edge
// trigger or a connection burst, a single accept per wake would drop
// acceptance opportunities.
func (a *acceptor) drainAccept() {
	for {
		fd, _, err := unix.Accept4(a.srv.msk, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)

		if err == unix.EAGAIN {
			return
		} else if err == unix.EINTR {
			continue
		} else if err != nil {
			a.srv.logger().Entry(loglvl.WarnLevel, "accept failed").ErrorAdd(true, err).Log()
			return
		}

		a.push(fd)
	}
}

// push registers an accepted fd on the next worker's readiness set with
// edge-triggered read interest.
func (a *acceptor) push(fd int) {
	if a.srv.tbl.Get(fd) == nil {
		a.srv.logger().Entry(loglvl.ErrorLevel, "accepted fd outside slot table").FieldAdd("fd", fd).Log()
		_ = unix.Close(fd)
		return
	}

	w := a.srv.wks[a.rrc%uint64(len(a.srv.wks))]
	a.rrc++

	ev := unix.EpollEvent{Events: epollReadEvents, Fd: int32(fd)}

	if err := unix.EpollCtl(w.epl, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		a.srv.logger().Entry(loglvl.ErrorLevel, "cannot register accepted fd").FieldAdd("fd", fd).FieldAdd("worker", w.idx).ErrorAdd(true, err).Log()
		_ = unix.Close(fd)
	}
}

func (a *acceptor) wake() {
	var one = []byte{0, 0, 0, 0, 0, 0, 0, 1}
	_, _ = unix.Write(a.stp, one)
}

func (a *acceptor) close() {
	_ = unix.Close(a.epl)
	_ = unix.Close(a.stp)
}
