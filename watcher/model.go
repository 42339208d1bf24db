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

package watcher

import (
	"bytes"
	"sync"
	"unsafe"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"

	"golang.org/x/sys/unix"

	"github.com/X4/lwan/hashmap"
)

const watchMask = unix.IN_CREATE | unix.IN_DELETE | unix.IN_MODIFY | unix.IN_MOVED_FROM | unix.IN_MOVED_TO

type wtc struct {
	m sync.Mutex
	f int
	w hashmap.Hash[int, FuncEvent]
	l liblog.FuncLog
}

func newWatcher(fd int, log liblog.FuncLog) *wtc {
	return &wtc{
		f: fd,
		w: hashmap.NewInt[FuncEvent](64),
		l: log,
	}
}

func (o *wtc) logger() liblog.Logger {
	if o.l != nil {
		if l := o.l(); l != nil {
			return l
		}
	}

	return liblog.New(nil)
}

func (o *wtc) Fd() int {
	return o.f
}

func (o *wtc) Watch(path string, fct FuncEvent) liberr.Error {
	o.m.Lock()
	defer o.m.Unlock()

	wd, err := unix.InotifyAddWatch(o.f, path, watchMask)
	if err != nil {
		return ErrorWatchAdd.ErrorParent(err)
	}

	o.w.Add(wd, fct)

	return nil
}

func (o *wtc) ProcessEvents() {
	var buf [4096]byte

	for {
		n, err := unix.Read(o.f, buf[:])
		if n <= 0 || err != nil {
			// EAGAIN once the queue is drained
			return
		}

		o.m.Lock()

		for p := 0; p+unix.SizeofInotifyEvent <= n; {
			raw := (*unix.InotifyEvent)(unsafe.Pointer(&buf[p]))
			end := p + unix.SizeofInotifyEvent + int(raw.Len)

			if end > n {
				break
			}

			name := ""
			if raw.Len > 0 {
				b := buf[p+unix.SizeofInotifyEvent : end]
				if i := bytes.IndexByte(b, 0); i >= 0 {
					b = b[:i]
				}
				name = string(b)
			}

			if fct, ok := o.w.Get(int(raw.Wd)); ok {
				fct(name, raw.Mask)
			} else {
				o.logger().Entry(loglvl.DebugLevel, "directory watch event without registration").FieldAdd("wd", raw.Wd).Log()
			}

			p = end
		}

		o.m.Unlock()
	}
}

func (o *wtc) Close() liberr.Error {
	o.m.Lock()
	defer o.m.Unlock()

	if o.f < 0 {
		return nil
	}

	if err := unix.Close(o.f); err != nil {
		return ErrorWatcherClose.ErrorParent(err)
	}

	o.f = -1

	return nil
}
