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

	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	librun "github.com/nabbar/golib/runner/startStop"

	"github.com/X4/lwan/handler"
	"github.com/X4/lwan/watcher"
)

// Server is the connection-scheduling reactor: a non-blocking acceptor
// fanning accepted sockets out to per-CPU event-loop workers, each driving
// its connections through cooperative coroutines with a keep-alive expiry
// queue.
type Server interface {
	// Start brings the server up: fd limit raise, slot table, listening
	// socket, workers, acceptor, directory watch.
	Start(ctx context.Context) error

	// Stop tears the server down abruptly: acceptor wake + join, worker
	// wake + join, socket shutdown, route handler shutdown, watcher close,
	// leftover slot reap.
	Stop(ctx context.Context) error

	// Restart chains Stop and Start.
	Restart(ctx context.Context) error

	// IsRunning reports whether the reactor is up.
	IsRunning() bool

	// WaitNotify blocks until SIGINT, SIGTERM, SIGQUIT or context
	// cancellation, then stops the server.
	WaitNotify(ctx context.Context)

	// SetURLMap installs the routes the acceptor dispatches on, shutting
	// down any previously installed map. It must be called before Start.
	SetURLMap(m handler.URLMap) liberr.Error

	// GetConfig returns the server configuration.
	GetConfig() Config

	// Addr returns the bound listen address once the server is started;
	// useful when the config asked for an ephemeral port.
	Addr() string

	// Watcher returns the directory-watch source folded into the acceptor
	// readiness set, or nil while the server is down.
	Watcher() watcher.Watcher

	// KeepAliveTimeout returns the configured keep-alive expiry in worker
	// idle ticks.
	KeepAliveTimeout() uint64
}

// New returns a stopped Server for the given config.
func New(cfg Config, defLog liblog.FuncLog) (Server, liberr.Error) {
	if e := cfg.Validate(); e != nil {
		return nil, e
	}

	o := &srv{
		cfg: cfg,
		log: libatm.NewValue[liblog.FuncLog](),
		run: libatm.NewValue[librun.StartStop](),
		msk: -1,
	}

	if defLog != nil {
		o.log.Store(defLog)
	}

	o.run.Store(librun.New(o.runFuncStart, o.runFuncStop))

	return o, nil
}
