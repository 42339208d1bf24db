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

	"github.com/X4/lwan/coroutine"
	"github.com/X4/lwan/process"
	"github.com/X4/lwan/request"
)

// The two interest shapes a connection alternates between. Reads are
// edge-triggered; hang-up and error are always watched.
const (
	epollReadEvents  = uint32(unix.EPOLLIN|unix.EPOLLRDHUP|unix.EPOLLERR) | uint32(unix.EPOLLET)
	epollWriteEvents = uint32(unix.EPOLLOUT | unix.EPOLLRDHUP | unix.EPOLLERR)
)

// worker is one event-loop: an epoll set over a disjoint subset of the
// accepted fds, the expiry queue for those fds, and the serial coroutine
// scheduling between them. A connection is pinned to the worker that
// registered it for its whole life.
type worker struct {
	idx int
	epl int // readiness set
	stp int // shutdown eventfd, registered in the readiness set
	srv *srv
	prc process.Processor
	kat uint64 // keep-alive timeout in ticks
	que *deathQueue
	dth uint64 // death time, advanced on idle ticks
}

func newWorker(idx int, s *srv, maxFd int) (*worker, liberr.Error) {
	epl, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, ErrorWorkerCreate.ErrorParent(err)
	}

	stp, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epl)
		return nil, ErrorWorkerCreate.ErrorParent(err)
	}

	ev := unix.EpollEvent{Events: uint32(unix.EPOLLIN), Fd: int32(stp)}
	if err = unix.EpollCtl(epl, unix.EPOLL_CTL_ADD, stp, &ev); err != nil {
		_ = unix.Close(stp)
		_ = unix.Close(epl)
		return nil, ErrorWorkerCreate.ErrorParent(err)
	}

	return &worker{
		idx: idx,
		epl: epl,
		stp: stp,
		srv: s,
		prc: s.prc,
		kat: s.cfg.KeepAliveTimeout,
		que: newDeathQueue(maxFd),
	}, nil
}

func (w *worker) run() {
	defer w.srv.wgw.Done()

	events := make([]unix.EpollEvent, w.que.Capacity())

	for {
		timeout := -1
		if w.que.Population() > 0 {
			timeout = 1000
		}

		n, err := unix.EpollWait(w.epl, events, timeout)

		if err == unix.EBADF || err == unix.EINVAL {
			// readiness set closed: shutdown
			return
		} else if err != nil {
			continue
		}

		if n == 0 {
			w.reap()
			continue
		}

		for i := 0; i < n; i++ {
			if int(events[i].Fd) == w.stp {
				return
			}

			w.handle(int(events[i].Fd), events[i].Events)
		}
	}
}

// reap advances the worker clock by one idle tick and closes every expired
// connection at the head of the queue, stopping at the first one still in
// grace.
func (w *worker) reap() {
	w.dth++

	for w.que.Population() > 0 {
		req := w.srv.tbl.Get(w.que.Peek())

		if req.TimeToDie > w.dth {
			break
		}

		w.que.Pop()

		// the slot may have died already from a hangup event
		if !req.Alive {
			continue
		}

		w.freeCoro(req)
		req.Alive = false
		_ = unix.Close(req.Fd)
	}
}

func (w *worker) handle(fd int, events uint32) {
	req := w.srv.tbl.Get(fd)
	if req == nil {
		return
	}

	req.Fd = fd

	if events&(unix.EPOLLRDHUP|unix.EPOLLHUP) != 0 {
		w.hangup(req)
		return
	}

	// captured before the resume: the slot reset inside the coroutine drops
	// the flag, and a re-append would let one chatty keep-alive connection
	// flood the queue with duplicates.
	wasAlive := req.Alive

	w.cleanupCoro(req)
	w.spawnCoroIfNeeded(req)
	w.resumeCoroIfNeeded(req)

	// A keep-alive exchange, or a coroutine still mid-flight, gets the full
	// grace period; anything else is marked to be reaped on the next tick.
	if req.KeepAlive || req.ShouldResume {
		req.TimeToDie = w.dth + w.kat
	} else {
		req.TimeToDie = w.dth
	}

	if !wasAlive {
		w.que.Push(fd)
	}

	req.Alive = true
}

func (w *worker) hangup(req *request.Request) {
	w.freeCoro(req)
	req.Alive = false
	_ = unix.Close(req.Fd)
}

func (w *worker) freeCoro(req *request.Request) {
	if req.Coro != nil {
		req.Coro.Free()
		req.Coro = nil
	}

	req.ShouldResume = false
}

// cleanupCoro releases the coroutine of a slot that went idle since its last
// activity; a coroutine still asking to be resumed is kept.
func (w *worker) cleanupCoro(req *request.Request) {
	if req.Coro == nil || req.ShouldResume {
		return
	}

	req.Coro.Free()
	req.Coro = nil
}

func (w *worker) spawnCoroIfNeeded(req *request.Request) {
	if req.Coro != nil {
		return
	}

	req.Coro = coroutine.New(func(co coroutine.Coro) {
		req.Reset()
		w.prc.Serve(req)
	})

	req.ShouldResume = true
	req.WriteEvents = false
}

// resumeCoroIfNeeded switches into the connection's coroutine and flips the
// readiness interest when the coroutine's next wish disagrees with the
// current direction.
func (w *worker) resumeCoroIfNeeded(req *request.Request) {
	if !req.ShouldResume || req.Coro == nil {
		return
	}

	req.ShouldResume = req.Coro.Resume()

	if req.ShouldResume == req.WriteEvents {
		return
	}

	var ev unix.EpollEvent

	if req.WriteEvents {
		ev = unix.EpollEvent{Events: epollReadEvents, Fd: int32(req.Fd)}
	} else {
		ev = unix.EpollEvent{Events: epollWriteEvents, Fd: int32(req.Fd)}
	}

	if err := unix.EpollCtl(w.epl, unix.EPOLL_CTL_MOD, req.Fd, &ev); err != nil {
		w.srv.logger().Entry(loglvl.ErrorLevel, "cannot flip readiness interest").FieldAdd("fd", req.Fd).ErrorAdd(true, err).Log()
	}

	req.WriteEvents = !req.WriteEvents
}

// wake makes a blocked run loop notice shutdown.
func (w *worker) wake() {
	var one = []byte{0, 0, 0, 0, 0, 0, 0, 1}
	_, _ = unix.Write(w.stp, one)
}

func (w *worker) close() {
	_ = unix.Close(w.epl)
	_ = unix.Close(w.stp)
}
