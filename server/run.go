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
	"context"
	"net"
	"strconv"

	liberr "github.com/nabbar/golib/errors"
	loglvl "github.com/nabbar/golib/logger/level"

	"golang.org/x/sys/unix"

	"github.com/X4/lwan/request"
	"github.com/X4/lwan/watcher"
)

// maxSlotTable caps the dense slot table: raising RLIMIT_NOFILE to the hard
// limit can yield millions of fds, and each slot pre-allocates its response
// buffer. Fds above the cap are refused at accept time.
const maxSlotTable = 16384

func (o *srv) listenHost() string {
	if h, _, err := net.SplitHostPort(o.cfg.Listen); err == nil {
		return h
	}

	return "0.0.0.0"
}

// raiseFdLimit lifts the soft fd limit to the hard one, or eight times the
// current soft limit when the hard limit is unlimited. Returns the resulting
// soft limit.
func raiseFdLimit() (uint64, liberr.Error) {
	var r unix.Rlimit

	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &r); err != nil {
		return 0, ErrorRLimit.ErrorParent(err)
	}

	if r.Max == unix.RLIM_INFINITY {
		if r.Cur != unix.RLIM_INFINITY {
			r.Cur *= 8
		}
	} else if r.Cur < r.Max {
		r.Cur = r.Max
	}

	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &r); err != nil {
		return 0, ErrorRLimit.ErrorParent(err)
	}

	return r.Cur, nil
}

func (o *srv) socketInit(backlog int) (int, int, liberr.Error) {
	host, prt, err := net.SplitHostPort(o.cfg.Listen)
	if err != nil {
		return -1, 0, ErrorSocketCreate.ErrorParent(err)
	}

	port, err := strconv.Atoi(prt)
	if err != nil {
		return -1, 0, ErrorSocketCreate.ErrorParent(err)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, 0, ErrorSocketCreate.ErrorParent(err)
	}

	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, 0, ErrorSocketOption.ErrorParent(err)
	}

	if err = unix.SetsockoptLinger(fd, unix.SOL_SOCKET, unix.SO_LINGER, &unix.Linger{Onoff: 1, Linger: 1}); err != nil {
		_ = unix.Close(fd)
		return -1, 0, ErrorSocketOption.ErrorParent(err)
	}

	sa := &unix.SockaddrInet4{Port: port}

	if host != "" && host != "0.0.0.0" {
		if ip := net.ParseIP(host).To4(); ip != nil {
			copy(sa.Addr[:], ip)
		}
	}

	if err = unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return -1, 0, ErrorSocketBind.ErrorParent(err)
	}

	if err = unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return -1, 0, ErrorSocketListen.ErrorParent(err)
	}

	if err = unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return -1, 0, ErrorSocketOption.ErrorParent(err)
	}

	if lsa, e := unix.Getsockname(fd); e == nil {
		if in4, ok := lsa.(*unix.SockaddrInet4); ok {
			port = in4.Port
		}
	}

	return fd, port, nil
}

func (o *srv) runFuncStart(ctx context.Context) error {
	o.m.Lock()
	defer o.m.Unlock()

	if e := o.loadURLMap(); e != nil {
		return e
	}

	soft, e := raiseFdLimit()
	if e != nil {
		return e
	}

	if soft > maxSlotTable {
		soft = maxSlotTable
	}

	nwk := o.cfg.GetWorkers()
	o.mfd = int(soft) / nwk

	if o.mfd < 1 {
		o.mfd = 1
	}

	o.tbl = request.NewTable(int(soft), o)

	msk, prt, e := o.socketInit(nwk * o.mfd)
	if e != nil {
		return e
	}

	o.msk = msk
	o.prt = prt

	wts, e := watcher.New(o.funcLog())
	if e != nil {
		o.closeSocket()
		return e
	}

	o.wts = wts

	if o.cfg.WatchDir != "" {
		if e = o.wts.Watch(o.cfg.WatchDir, o.watchEvent); e != nil {
			o.teardownLocked()
			return e
		}
	}

	o.wks = make([]*worker, nwk)

	for i := nwk - 1; i >= 0; i-- {
		w, err := newWorker(i, o, o.mfd)
		if err != nil {
			o.teardownLocked()
			return err
		}

		o.wks[i] = w
	}

	for _, w := range o.wks {
		o.wgw.Add(1)
		go w.run()
	}

	acc, e := newAcceptor(o)
	if e != nil {
		o.teardownLocked()
		return e
	}

	o.acc = acc
	o.wga.Add(1)
	go acc.run()

	o.logger().Entry(loglvl.InfoLevel, "server started").
		FieldAdd("name", o.cfg.Name).
		FieldAdd("listen", o.cfg.Listen).
		FieldAdd("port", o.prt).
		FieldAdd("workers", nwk).
		FieldAdd("maxFdPerWorker", o.mfd).
		Log()

	return nil
}

func (o *srv) watchEvent(name string, mask uint32) {
	o.logger().Entry(loglvl.InfoLevel, "directory watch event").FieldAdd("name", name).FieldAdd("mask", mask).Log()
}

func (o *srv) runFuncStop(ctx context.Context) error {
	o.m.Lock()
	defer o.m.Unlock()

	o.teardownLocked()
	o.logger().Entry(loglvl.InfoLevel, "server stopped").FieldAdd("name", o.cfg.Name).Log()

	return nil
}

func (o *srv) closeSocket() {
	if o.msk >= 0 {
		_ = unix.Shutdown(o.msk, unix.SHUT_RDWR)
		_ = unix.Close(o.msk)
		o.msk = -1
	}
}

// teardownLocked runs the shutdown order: stop accepting, wake and join the
// workers, release the listening socket, shut down the route handlers and
// the watcher, then reap whatever slots are still alive.
func (o *srv) teardownLocked() {
	if o.acc != nil {
		o.acc.wake()
		o.wga.Wait()
		o.acc.close()
		o.acc = nil
	}

	for _, w := range o.wks {
		if w != nil {
			w.wake()
		}
	}

	o.wgw.Wait()

	for _, w := range o.wks {
		if w != nil {
			w.close()
		}
	}

	o.wks = nil

	o.closeSocket()

	if o.rts != nil {
		o.ump.Shutdown()
		o.rts = nil
		o.prc = nil
	}

	if o.wts != nil {
		_ = o.wts.Close()
		o.wts = nil
	}

	if o.tbl != nil {
		for i := 0; i < o.tbl.Size(); i++ {
			if r := o.tbl.Get(i); r.Alive {
				if r.Coro != nil {
					r.Coro.Free()
					r.Coro = nil
				}

				r.Alive = false
				_ = unix.Close(r.Fd)
			}
		}

		o.tbl = nil
	}
}
