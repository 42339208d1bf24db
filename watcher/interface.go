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

// Package watcher exposes the directory-watch source the acceptor polls: a
// non-blocking inotify descriptor plus a registry of per-directory
// callbacks. The acceptor folds the descriptor into its readiness set and
// calls ProcessEvents whenever it wakes on it.
package watcher

import (
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	"golang.org/x/sys/unix"
)

// FuncEvent is a registered directory callback. It receives the file name
// carried by the event (may be empty) and the raw inotify mask.
type FuncEvent func(name string, mask uint32)

// Watcher is the directory-watch source.
type Watcher interface {
	// Fd returns the descriptor to fold into a readiness set. Readiness
	// means pending events to drain via ProcessEvents.
	Fd() int

	// Watch registers a callback for events under the given directory.
	Watch(path string, fct FuncEvent) liberr.Error

	// ProcessEvents drains all pending events without blocking and
	// dispatches them to the registered callbacks.
	ProcessEvents()

	// Close releases the descriptor and drops all registrations.
	Close() liberr.Error
}

// New returns a Watcher backed by a non-blocking inotify instance.
func New(log liblog.FuncLog) (Watcher, liberr.Error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, ErrorWatcherInit.ErrorParent(err)
	}

	return newWatcher(fd, log), nil
}
